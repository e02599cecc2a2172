package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/OscarAAV94/VelPra-bot/internal/models"
)

// Common errors
var (
	ErrNotFound     = errors.New("not found")
	ErrDuplicateKey = errors.New("duplicate key")
	ErrInvalidData  = errors.New("invalid data")
)

// Store defines the storage interface
type Store interface {
	// Transaction support
	BeginTx(ctx context.Context) (Store, error)
	Commit() error
	Rollback() error

	// User methods
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	ListAdminChatIDs(ctx context.Context) ([]int64, error)

	// Property methods
	CreateProperty(ctx context.Context, property *models.Property) error
	GetProperty(ctx context.Context, id uuid.UUID) (*models.Property, error)
	UpdateProperty(ctx context.Context, property *models.Property) error
	DeleteProperty(ctx context.Context, id uuid.UUID) error
	ListProperties(ctx context.Context) ([]*models.Property, error)

	// Meter methods
	CreateMeter(ctx context.Context, meter *models.Meter) error
	GetMeter(ctx context.Context, id uuid.UUID) (*models.Meter, error)
	DeleteMeter(ctx context.Context, id uuid.UUID) error
	ListMetersByProperty(ctx context.Context, propertyID uuid.UUID, service *models.ServiceType) ([]*models.Meter, error)
	FirstMeterByService(ctx context.Context, propertyID uuid.UUID, service models.ServiceType) (*models.Meter, error)

	// Meter reading history
	CreateMeterReading(ctx context.Context, reading *models.MeterReading) error
	ListReadingsByMeter(ctx context.Context, meterID uuid.UUID, limit int) ([]*models.MeterReading, error)
	LatestReading(ctx context.Context, meterID uuid.UUID) (float64, error)
	ReadingAtStartOfPreviousMonth(ctx context.Context, meterID uuid.UUID, year int, month time.Month) (float64, error)

	// Invoice methods
	CreateInvoice(ctx context.Context, invoice *models.Invoice) error
	ListInvoicesByMonth(ctx context.Context, year int, month time.Month) ([]*models.Invoice, error)
	SumInvoicesByMeterAndMonth(ctx context.Context, meterID uuid.UUID, year int, month time.Month) (float64, float64, error)
	SumInvoicesByPropertyServiceAndMonth(ctx context.Context, propertyID uuid.UUID, service models.ServiceType, year int, month time.Month) (float64, float64, error)

	// Tenant methods
	CreateTenant(ctx context.Context, tenant *models.Tenant) error
	GetTenant(ctx context.Context, chatID int64) (*models.Tenant, error)
	UpdateTenant(ctx context.Context, tenant *models.Tenant) error
	DeleteTenant(ctx context.Context, chatID int64) error
	ListTenants(ctx context.Context) ([]*models.Tenant, error)
	ListTenantsByProperty(ctx context.Context, propertyID uuid.UUID) ([]*models.Tenant, error)
	ListBillableTenants(ctx context.Context, propertyID *uuid.UUID) ([]*models.Tenant, error)
	AdjustTenantBalance(ctx context.Context, chatID int64, delta float64) (float64, error)

	// Occupant headcounts for proration
	SumOccupantsByProperty(ctx context.Context, propertyID uuid.UUID) (int, error)
	SumOccupantsByAssignedMeter(ctx context.Context, service models.ServiceType, meterID uuid.UUID) (int, error)
	SumOccupantsUnmetered(ctx context.Context, propertyID uuid.UUID) (int, error)

	// Payment methods
	CreatePayment(ctx context.Context, payment *models.Payment) error
	GetPayment(ctx context.Context, id uuid.UUID) (*models.Payment, error)
	ListPendingPayments(ctx context.Context) ([]*models.Payment, error)
	ListPaymentsByTenant(ctx context.Context, chatID int64, limit int) ([]*models.Payment, error)
	ListConfirmedPaymentsByMonth(ctx context.Context, year int, month time.Month) ([]*models.Payment, error)
	ConfirmPayment(ctx context.Context, id uuid.UUID) (*models.Payment, float64, error)

	// Complaint methods
	CreateComplaint(ctx context.Context, complaint *models.Complaint) error
	ListOpenComplaints(ctx context.Context) ([]*models.Complaint, error)
	ResolveComplaint(ctx context.Context, id uuid.UUID) error

	// Close the store
	Close() error
}
