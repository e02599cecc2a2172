package models

import (
	"time"

	"github.com/google/uuid"
)

// Invoice represents a utility bill registered against a property.
// MeterID is nil for whole-property invoices (shared electricity,
// internet). Multiple invoices for the same meter/property/month are
// summed during proration.
type Invoice struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`

	Service    ServiceType `json:"service" db:"service"`
	Date       time.Time   `json:"date" db:"date"`
	Amount     float64     `json:"amount" db:"amount"`
	PropertyID uuid.UUID   `json:"propertyId" db:"property_id"`
	MeterID    *uuid.UUID  `json:"meterId,omitempty" db:"meter_id"`

	// TotalKWh is only meaningful for electricity invoices.
	TotalKWh float64 `json:"totalKWh" db:"total_kwh"`
}
