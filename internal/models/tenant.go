package models

import (
	"time"

	"github.com/google/uuid"
)

// Tenant represents a billed occupant. The primary key is the chat
// identity the tenant registered from, not a generated id.
type Tenant struct {
	ChatID    int64     `json:"chatId" db:"chat_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	Name       string `json:"name" db:"name"`
	NationalID string `json:"nationalId" db:"national_id"`

	// MoveInDate is nil until the admin completes onboarding; such
	// tenants are invisible to billing runs.
	MoveInDate *time.Time `json:"moveInDate,omitempty" db:"move_in_date"`

	BaseRent   float64    `json:"baseRent" db:"base_rent"`
	RentalMode RentalMode `json:"rentalMode" db:"rental_mode"`

	// Balance is signed: positive means the tenant owes money.
	Balance float64 `json:"balance" db:"balance"`

	PropertyID *uuid.UUID `json:"propertyId,omitempty" db:"property_id"`

	// Per-service meter assignments. An assigned electricity meter
	// switches the tenant from headcount to consumption billing.
	ElectricityMeterID *uuid.UUID `json:"electricityMeterId,omitempty" db:"electricity_meter_id"`
	WaterMeterID       *uuid.UUID `json:"waterMeterId,omitempty" db:"water_meter_id"`
	GasMeterID         *uuid.UUID `json:"gasMeterId,omitempty" db:"gas_meter_id"`

	Occupants int `json:"occupants" db:"occupants"`
}

// Onboarded reports whether the tenant has a move-in date and is
// therefore eligible for billing runs.
func (t *Tenant) Onboarded() bool {
	return t.MoveInDate != nil
}

// OccupantCount returns the occupant count, treating the zero value as
// a single occupant.
func (t *Tenant) OccupantCount() int {
	if t.Occupants < 1 {
		return 1
	}
	return t.Occupants
}

// AssignedMeterID returns the tenant's assigned meter for the given
// service, or nil for services without per-tenant assignment.
func (t *Tenant) AssignedMeterID(service ServiceType) *uuid.UUID {
	switch service {
	case ServiceElectricity:
		return t.ElectricityMeterID
	case ServiceWater:
		return t.WaterMeterID
	case ServiceGas:
		return t.GasMeterID
	}
	return nil
}

// SetAssignedMeterID sets the tenant's assigned meter for the given
// service. Passing nil clears the assignment.
func (t *Tenant) SetAssignedMeterID(service ServiceType, meterID *uuid.UUID) {
	switch service {
	case ServiceElectricity:
		t.ElectricityMeterID = meterID
	case ServiceWater:
		t.WaterMeterID = meterID
	case ServiceGas:
		t.GasMeterID = meterID
	}
}
