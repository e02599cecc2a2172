package models

// ServiceType identifies a metered utility service.
type ServiceType string

const (
	ServiceElectricity ServiceType = "electricity"
	ServiceWater       ServiceType = "water"
	ServiceGas         ServiceType = "gas"
	ServiceInternetTV  ServiceType = "internet_tv"
)

// ProratedServices is the fixed order in which per-tenant meters are
// assigned during onboarding and in which charges are itemized.
var ProratedServices = []ServiceType{
	ServiceElectricity,
	ServiceWater,
	ServiceGas,
}

// Label returns a display name for the service.
func (s ServiceType) Label() string {
	switch s {
	case ServiceElectricity:
		return "Electricity"
	case ServiceWater:
		return "Water"
	case ServiceGas:
		return "Gas"
	case ServiceInternetTV:
		return "Internet/TV"
	}
	return string(s)
}

// Valid reports whether s is a known service type.
func (s ServiceType) Valid() bool {
	switch s {
	case ServiceElectricity, ServiceWater, ServiceGas, ServiceInternetTV:
		return true
	}
	return false
}

// RentalMode determines how a tenant's monthly charge is computed.
type RentalMode string

const (
	// RentalAllInclusive charges base rent only; utilities are included.
	RentalAllInclusive RentalMode = "all_inclusive"
	// RentalProrated charges base rent plus a prorated share of the
	// property's utility bills.
	RentalProrated RentalMode = "prorated"
)

// Valid reports whether m is a known rental mode.
func (m RentalMode) Valid() bool {
	return m == RentalAllInclusive || m == RentalProrated
}
