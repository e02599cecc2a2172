package billing

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/OscarAAV94/VelPra-bot/internal/models"
)

// Ledger is the slice of the storage interface the billing subsystem
// consumes. storage.Store satisfies it; tests supply a fake.
type Ledger interface {
	GetTenant(ctx context.Context, chatID int64) (*models.Tenant, error)
	ListBillableTenants(ctx context.Context, propertyID *uuid.UUID) ([]*models.Tenant, error)
	AdjustTenantBalance(ctx context.Context, chatID int64, delta float64) (float64, error)

	GetMeter(ctx context.Context, id uuid.UUID) (*models.Meter, error)
	FirstMeterByService(ctx context.Context, propertyID uuid.UUID, service models.ServiceType) (*models.Meter, error)

	LatestReading(ctx context.Context, meterID uuid.UUID) (float64, error)
	ReadingAtStartOfPreviousMonth(ctx context.Context, meterID uuid.UUID, year int, month time.Month) (float64, error)

	SumInvoicesByMeterAndMonth(ctx context.Context, meterID uuid.UUID, year int, month time.Month) (float64, float64, error)
	SumInvoicesByPropertyServiceAndMonth(ctx context.Context, propertyID uuid.UUID, service models.ServiceType, year int, month time.Month) (float64, float64, error)

	SumOccupantsByProperty(ctx context.Context, propertyID uuid.UUID) (int, error)
	SumOccupantsByAssignedMeter(ctx context.Context, service models.ServiceType, meterID uuid.UUID) (int, error)
	SumOccupantsUnmetered(ctx context.Context, propertyID uuid.UUID) (int, error)
}

// Notifier delivers formatted text to chat identities. Delivery failure
// never rolls back a charge that was already applied.
type Notifier interface {
	SendToTenant(ctx context.Context, chatID int64, text string) error
	SendToAdmins(ctx context.Context, text string) error
}
