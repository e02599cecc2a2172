package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents an administrator account for the management API.
type User struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	Email string `json:"email" db:"email"`
	Name  string `json:"name" db:"name"`

	PasswordHash string `json:"-" db:"password_hash"`

	IsAdmin  bool `json:"isAdmin" db:"is_admin"`
	IsActive bool `json:"isActive" db:"is_active"`

	// ChatID links the admin to a chat identity for notifications.
	ChatID *int64 `json:"chatId,omitempty" db:"chat_id"`

	LastLoginAt *time.Time `json:"lastLoginAt,omitempty" db:"last_login_at"`
}
