package models

import (
	"time"

	"github.com/google/uuid"
)

// Property represents a rental unit containing meters and tenants
type Property struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	Name    string `json:"name" db:"name"`
	Address string `json:"address" db:"address"`

	// Wi-Fi credentials shared with tenants on onboarding
	WifiSSID     *string `json:"wifiSSID,omitempty" db:"wifi_ssid"`
	WifiPassword *string `json:"wifiPassword,omitempty" db:"wifi_password"`
}

// Meter represents a per-service metering point within a property.
// A meter is either assigned to individual tenants (metered billing)
// or acts as the property's shared meter for its service type.
type Meter struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`

	PropertyID uuid.UUID   `json:"propertyId" db:"property_id"`
	Name       string      `json:"name" db:"name"`
	Service    ServiceType `json:"service" db:"service"`
}

// MeterReading is one point in a meter's append-only reading history.
type MeterReading struct {
	ID        uuid.UUID `json:"id" db:"id"`
	MeterID   uuid.UUID `json:"meterId" db:"meter_id"`
	Date      time.Time `json:"date" db:"date"`
	Value     float64   `json:"value" db:"value"`
}
