package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/OscarAAV94/VelPra-bot/internal/models"
	"github.com/OscarAAV94/VelPra-bot/internal/storage"
)

// ServiceCharge is one line of a tenant's monthly statement: the cost
// attributed to a service plus a human-readable explanation of how it
// was computed (or why it could not be).
type ServiceCharge struct {
	Service models.ServiceType `json:"service"`
	Cost    float64            `json:"cost"`
	Detail  string             `json:"detail"`
}

// Statement is a tenant's computed monthly charge. For all-inclusive
// tenants Services is empty and Total equals BaseRent.
type Statement struct {
	ChatID     int64             `json:"chatId"`
	TenantName string            `json:"tenantName"`
	Year       int               `json:"year"`
	Month      time.Month        `json:"month"`
	RentalMode models.RentalMode `json:"rentalMode"`
	BaseRent   float64           `json:"baseRent"`
	Services   []ServiceCharge   `json:"services,omitempty"`

	ServicesTotal float64 `json:"servicesTotal"`
	Total         float64 `json:"total"`
}

// Engine computes per-tenant utility proration. Missing data (no
// meters, no invoices, empty headcount pools) degrades to a zero charge
// with an explanatory detail; only genuine store failures return errors,
// so a billing run always produces a number per tenant.
type Engine struct {
	ledger Ledger
}

// NewEngine creates a proration engine over the given ledger.
func NewEngine(ledger Ledger) *Engine {
	return &Engine{ledger: ledger}
}

// Statement computes a tenant's charge for the given billing month.
// It does not mutate any state.
func (e *Engine) Statement(ctx context.Context, tenant *models.Tenant, year int, month time.Month) (*Statement, error) {
	stmt := &Statement{
		ChatID:     tenant.ChatID,
		TenantName: tenant.Name,
		Year:       year,
		Month:      month,
		RentalMode: tenant.RentalMode,
		BaseRent:   tenant.BaseRent,
		Total:      tenant.BaseRent,
	}

	// All-inclusive tenants pay base rent only, whatever the meter
	// and invoice state.
	if tenant.RentalMode != models.RentalProrated || tenant.PropertyID == nil {
		return stmt, nil
	}

	electricity, err := e.electricityCharge(ctx, tenant, year, month)
	if err != nil {
		return nil, err
	}
	stmt.Services = append(stmt.Services, electricity)

	for _, service := range []models.ServiceType{models.ServiceWater, models.ServiceGas} {
		charge, err := e.meterPoolCharge(ctx, tenant, service, year, month)
		if err != nil {
			return nil, err
		}
		stmt.Services = append(stmt.Services, charge)
	}

	internet, err := e.internetCharge(ctx, tenant, year, month)
	if err != nil {
		return nil, err
	}
	stmt.Services = append(stmt.Services, internet)

	for _, charge := range stmt.Services {
		stmt.ServicesTotal += charge.Cost
	}
	stmt.Total = stmt.BaseRent + stmt.ServicesTotal

	return stmt, nil
}

// electricityCharge allocates the property's electricity bill. Tenants
// with an individual meter pay for their metered consumption at the
// property-wide rate; the rest split the bill by occupant headcount.
// The two groups are independent allocation bases: metered tenants are
// excluded from the headcount pool, so the shares need not sum to the
// property bill.
func (e *Engine) electricityCharge(ctx context.Context, tenant *models.Tenant, year int, month time.Month) (ServiceCharge, error) {
	charge := ServiceCharge{Service: models.ServiceElectricity}

	bill, kwhTotal, err := e.ledger.SumInvoicesByPropertyServiceAndMonth(
		ctx, *tenant.PropertyID, models.ServiceElectricity, year, month)
	if err != nil {
		return charge, err
	}

	if tenant.ElectricityMeterID != nil {
		latest, err := e.ledger.LatestReading(ctx, *tenant.ElectricityMeterID)
		if err != nil {
			return charge, err
		}
		prior, err := e.ledger.ReadingAtStartOfPreviousMonth(ctx, *tenant.ElectricityMeterID, year, month)
		if err != nil {
			return charge, err
		}

		// Unclamped on purpose: a reset meter or missing prior
		// reading yields negative or inflated consumption.
		consumed := latest - prior

		if kwhTotal <= 0 {
			charge.Detail = "cannot compute: property kWh total for the month is zero"
			return charge, nil
		}

		rate := bill / kwhTotal
		charge.Cost = rate * consumed
		charge.Detail = fmt.Sprintf("consumption %.2f kWh at %.2f/kWh", consumed, rate)
		return charge, nil
	}

	pool, err := e.ledger.SumOccupantsUnmetered(ctx, *tenant.PropertyID)
	if err != nil {
		return charge, err
	}

	if pool <= 0 {
		charge.Detail = "cannot compute: shared electricity pool is empty"
		return charge, nil
	}

	charge.Cost = bill / float64(pool) * float64(tenant.OccupantCount())
	charge.Detail = fmt.Sprintf("shared bill %.2f split across %d occupants", bill, pool)
	return charge, nil
}

// meterPoolCharge allocates a water or gas meter's bill by headcount
// across the tenants assigned to that exact meter. Without an assigned
// meter the service is included in base rent. Unlike electricity there
// is no property-wide fallback pool; the asymmetry is preserved from
// the system's observed behavior.
func (e *Engine) meterPoolCharge(ctx context.Context, tenant *models.Tenant, service models.ServiceType, year int, month time.Month) (ServiceCharge, error) {
	charge := ServiceCharge{Service: service}

	meterID := tenant.AssignedMeterID(service)
	if meterID == nil {
		charge.Detail = "included in base rent: no meter assigned"
		return charge, nil
	}

	bill, _, err := e.ledger.SumInvoicesByMeterAndMonth(ctx, *meterID, year, month)
	if err != nil {
		return charge, err
	}

	headcount, err := e.ledger.SumOccupantsByAssignedMeter(ctx, service, *meterID)
	if err != nil {
		return charge, err
	}

	if headcount <= 0 {
		charge.Detail = "cannot compute: no occupants share this meter"
		return charge, nil
	}

	charge.Cost = bill / float64(headcount) * float64(tenant.OccupantCount())
	charge.Detail = fmt.Sprintf("meter bill %.2f split across %d occupants", bill, headcount)
	return charge, nil
}

// internetCharge splits the property's internet/TV bill across every
// tenant of the property by headcount, regardless of rental mode. The
// property's first internet_tv meter anchors the bill lookup.
func (e *Engine) internetCharge(ctx context.Context, tenant *models.Tenant, year int, month time.Month) (ServiceCharge, error) {
	charge := ServiceCharge{Service: models.ServiceInternetTV}

	_, err := e.ledger.FirstMeterByService(ctx, *tenant.PropertyID, models.ServiceInternetTV)
	if errors.Is(err, storage.ErrNotFound) {
		charge.Detail = "not applicable: property has no internet/TV meter"
		return charge, nil
	}
	if err != nil {
		return charge, err
	}

	bill, _, err := e.ledger.SumInvoicesByPropertyServiceAndMonth(
		ctx, *tenant.PropertyID, models.ServiceInternetTV, year, month)
	if err != nil {
		return charge, err
	}

	headcount, err := e.ledger.SumOccupantsByProperty(ctx, *tenant.PropertyID)
	if err != nil {
		return charge, err
	}

	if headcount <= 0 {
		charge.Detail = "cannot compute: property has no occupants"
		return charge, nil
	}

	charge.Cost = bill / float64(headcount) * float64(tenant.OccupantCount())
	charge.Detail = fmt.Sprintf("property bill %.2f split across %d occupants", bill, headcount)
	return charge, nil
}
