package models

import (
	"time"

	"github.com/google/uuid"
)

// Payment represents a rent payment submitted by a tenant. It is
// created unconfirmed; confirming recomputes the balance delta against
// the tenant's current balance, so BalanceAfter is advisory only.
type Payment struct {
	ID        uuid.UUID `json:"id" db:"id"`
	ChatID    int64     `json:"chatId" db:"chat_id"`
	Date      time.Time `json:"date" db:"date"`
	Amount    float64   `json:"amount" db:"amount"`

	// BalanceAfter is the balance projected at submission time.
	BalanceAfter float64 `json:"balanceAfter" db:"balance_after"`

	// Proof is an opaque reference to the payment receipt.
	Proof     string `json:"proof" db:"proof"`
	Confirmed bool   `json:"confirmed" db:"confirmed"`
}

// Complaint represents a tenant complaint or suggestion.
type Complaint struct {
	ID        uuid.UUID `json:"id" db:"id"`
	ChatID    int64     `json:"chatId" db:"chat_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	Text      string    `json:"text" db:"text"`
	Resolved  bool      `json:"resolved" db:"resolved"`
}
