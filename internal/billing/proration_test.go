package billing

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OscarAAV94/VelPra-bot/internal/models"
	"github.com/OscarAAV94/VelPra-bot/internal/storage"
)

type fakeLedger struct {
	tenants map[int64]*models.Tenant
	meters  map[uuid.UUID]*models.Meter

	latestReadings map[uuid.UUID]float64
	priorReadings  map[uuid.UUID]float64

	meterBills    map[uuid.UUID]float64
	propertyBills map[string]float64
	propertyKWh   map[string]float64

	occupantsByProperty map[uuid.UUID]int
	occupantsByMeter    map[uuid.UUID]int
	occupantsUnmetered  map[uuid.UUID]int

	adjustErr   error
	adjustCalls []balanceAdjustment
}

type balanceAdjustment struct {
	chatID int64
	delta  float64
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		tenants:             map[int64]*models.Tenant{},
		meters:              map[uuid.UUID]*models.Meter{},
		latestReadings:      map[uuid.UUID]float64{},
		priorReadings:       map[uuid.UUID]float64{},
		meterBills:          map[uuid.UUID]float64{},
		propertyBills:       map[string]float64{},
		propertyKWh:         map[string]float64{},
		occupantsByProperty: map[uuid.UUID]int{},
		occupantsByMeter:    map[uuid.UUID]int{},
		occupantsUnmetered:  map[uuid.UUID]int{},
	}
}

func serviceKey(propertyID uuid.UUID, service models.ServiceType) string {
	return fmt.Sprintf("%s/%s", propertyID, service)
}

func (f *fakeLedger) GetTenant(_ context.Context, chatID int64) (*models.Tenant, error) {
	tenant, ok := f.tenants[chatID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return tenant, nil
}

func (f *fakeLedger) ListBillableTenants(_ context.Context, propertyID *uuid.UUID) ([]*models.Tenant, error) {
	var tenants []*models.Tenant
	for _, tenant := range f.tenants {
		if !tenant.Onboarded() {
			continue
		}
		if propertyID != nil && (tenant.PropertyID == nil || *tenant.PropertyID != *propertyID) {
			continue
		}
		tenants = append(tenants, tenant)
	}
	return tenants, nil
}

func (f *fakeLedger) AdjustTenantBalance(_ context.Context, chatID int64, delta float64) (float64, error) {
	if f.adjustErr != nil {
		return 0, f.adjustErr
	}
	tenant, ok := f.tenants[chatID]
	if !ok {
		return 0, storage.ErrNotFound
	}
	tenant.Balance += delta
	f.adjustCalls = append(f.adjustCalls, balanceAdjustment{chatID: chatID, delta: delta})
	return tenant.Balance, nil
}

func (f *fakeLedger) GetMeter(_ context.Context, id uuid.UUID) (*models.Meter, error) {
	meter, ok := f.meters[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return meter, nil
}

func (f *fakeLedger) FirstMeterByService(_ context.Context, propertyID uuid.UUID, service models.ServiceType) (*models.Meter, error) {
	for _, meter := range f.meters {
		if meter.PropertyID == propertyID && meter.Service == service {
			return meter, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (f *fakeLedger) LatestReading(_ context.Context, meterID uuid.UUID) (float64, error) {
	return f.latestReadings[meterID], nil
}

func (f *fakeLedger) ReadingAtStartOfPreviousMonth(_ context.Context, meterID uuid.UUID, _ int, _ time.Month) (float64, error) {
	return f.priorReadings[meterID], nil
}

func (f *fakeLedger) SumInvoicesByMeterAndMonth(_ context.Context, meterID uuid.UUID, _ int, _ time.Month) (float64, float64, error) {
	return f.meterBills[meterID], 0, nil
}

func (f *fakeLedger) SumInvoicesByPropertyServiceAndMonth(_ context.Context, propertyID uuid.UUID, service models.ServiceType, _ int, _ time.Month) (float64, float64, error) {
	key := serviceKey(propertyID, service)
	return f.propertyBills[key], f.propertyKWh[key], nil
}

func (f *fakeLedger) SumOccupantsByProperty(_ context.Context, propertyID uuid.UUID) (int, error) {
	return f.occupantsByProperty[propertyID], nil
}

func (f *fakeLedger) SumOccupantsByAssignedMeter(_ context.Context, _ models.ServiceType, meterID uuid.UUID) (int, error) {
	return f.occupantsByMeter[meterID], nil
}

func (f *fakeLedger) SumOccupantsUnmetered(_ context.Context, propertyID uuid.UUID) (int, error) {
	return f.occupantsUnmetered[propertyID], nil
}

func (f *fakeLedger) addTenant(tenant *models.Tenant) *models.Tenant {
	f.tenants[tenant.ChatID] = tenant
	return tenant
}

func (f *fakeLedger) addMeter(propertyID uuid.UUID, service models.ServiceType) *models.Meter {
	meter := &models.Meter{ID: uuid.New(), PropertyID: propertyID, Service: service}
	f.meters[meter.ID] = meter
	return meter
}

func chargeFor(t *testing.T, stmt *Statement, service models.ServiceType) ServiceCharge {
	t.Helper()
	for _, charge := range stmt.Services {
		if charge.Service == service {
			return charge
		}
	}
	t.Fatalf("no %s charge in statement", service)
	return ServiceCharge{}
}

func moveIn() *time.Time {
	d := time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)
	return &d
}

func TestStatementAllInclusive(t *testing.T) {
	ledger := newFakeLedger()
	propertyID := uuid.New()

	tenant := ledger.addTenant(&models.Tenant{
		ChatID:     1,
		Name:       "Ana",
		MoveInDate: moveIn(),
		BaseRent:   500,
		RentalMode: models.RentalAllInclusive,
		PropertyID: &propertyID,
		Occupants:  2,
	})

	stmt, err := NewEngine(ledger).Statement(context.Background(), tenant, 2024, time.March)
	require.NoError(t, err)

	assert.Empty(t, stmt.Services)
	assert.Equal(t, 500.0, stmt.Total)
}

func TestStatementMeteredElectricity(t *testing.T) {
	ledger := newFakeLedger()
	propertyID := uuid.New()
	meter := ledger.addMeter(propertyID, models.ServiceElectricity)

	tenant := ledger.addTenant(&models.Tenant{
		ChatID:             1,
		Name:               "Ana",
		MoveInDate:         moveIn(),
		BaseRent:           500,
		RentalMode:         models.RentalProrated,
		PropertyID:         &propertyID,
		ElectricityMeterID: &meter.ID,
		Occupants:          1,
	})

	// 300 over 600 kWh is 0.50/kWh; 160-100 = 60 kWh consumed.
	ledger.propertyBills[serviceKey(propertyID, models.ServiceElectricity)] = 300
	ledger.propertyKWh[serviceKey(propertyID, models.ServiceElectricity)] = 600
	ledger.latestReadings[meter.ID] = 160
	ledger.priorReadings[meter.ID] = 100

	stmt, err := NewEngine(ledger).Statement(context.Background(), tenant, 2024, time.March)
	require.NoError(t, err)

	charge := chargeFor(t, stmt, models.ServiceElectricity)
	assert.InDelta(t, 30.0, charge.Cost, 1e-9)
	assert.Equal(t, 530.0, stmt.Total)
}

func TestStatementMeteredElectricityNegativeConsumption(t *testing.T) {
	ledger := newFakeLedger()
	propertyID := uuid.New()
	meter := ledger.addMeter(propertyID, models.ServiceElectricity)

	tenant := ledger.addTenant(&models.Tenant{
		ChatID:             1,
		MoveInDate:         moveIn(),
		BaseRent:           500,
		RentalMode:         models.RentalProrated,
		PropertyID:         &propertyID,
		ElectricityMeterID: &meter.ID,
		Occupants:          1,
	})

	// A reset meter reads below last month's value. Consumption is not
	// clamped, so the charge goes negative: -50 kWh at 0.50/kWh.
	ledger.propertyBills[serviceKey(propertyID, models.ServiceElectricity)] = 300
	ledger.propertyKWh[serviceKey(propertyID, models.ServiceElectricity)] = 600
	ledger.latestReadings[meter.ID] = 150
	ledger.priorReadings[meter.ID] = 200

	stmt, err := NewEngine(ledger).Statement(context.Background(), tenant, 2024, time.March)
	require.NoError(t, err)

	charge := chargeFor(t, stmt, models.ServiceElectricity)
	assert.InDelta(t, -25.0, charge.Cost, 1e-9)
	assert.Equal(t, 475.0, stmt.Total)
}

func TestStatementMeteredElectricityZeroKWh(t *testing.T) {
	ledger := newFakeLedger()
	propertyID := uuid.New()
	meter := ledger.addMeter(propertyID, models.ServiceElectricity)

	tenant := ledger.addTenant(&models.Tenant{
		ChatID:             1,
		MoveInDate:         moveIn(),
		BaseRent:           500,
		RentalMode:         models.RentalProrated,
		PropertyID:         &propertyID,
		ElectricityMeterID: &meter.ID,
		Occupants:          1,
	})

	ledger.propertyBills[serviceKey(propertyID, models.ServiceElectricity)] = 300
	ledger.latestReadings[meter.ID] = 160
	ledger.priorReadings[meter.ID] = 100

	stmt, err := NewEngine(ledger).Statement(context.Background(), tenant, 2024, time.March)
	require.NoError(t, err)

	charge := chargeFor(t, stmt, models.ServiceElectricity)
	assert.Zero(t, charge.Cost)
	assert.Contains(t, charge.Detail, "cannot compute")
	assert.Equal(t, 500.0, stmt.Total)
}

func TestStatementSharedElectricityPool(t *testing.T) {
	ledger := newFakeLedger()
	propertyID := uuid.New()

	// Tenant A is metered and therefore outside the shared pool; B (2
	// occupants) and C (1 occupant) split the whole bill by headcount.
	tenantB := ledger.addTenant(&models.Tenant{
		ChatID:     2,
		MoveInDate: moveIn(),
		BaseRent:   400,
		RentalMode: models.RentalProrated,
		PropertyID: &propertyID,
		Occupants:  2,
	})
	tenantC := ledger.addTenant(&models.Tenant{
		ChatID:     3,
		MoveInDate: moveIn(),
		BaseRent:   400,
		RentalMode: models.RentalProrated,
		PropertyID: &propertyID,
		Occupants:  1,
	})

	ledger.propertyBills[serviceKey(propertyID, models.ServiceElectricity)] = 300
	ledger.occupantsUnmetered[propertyID] = 3

	engine := NewEngine(ledger)

	stmtB, err := engine.Statement(context.Background(), tenantB, 2024, time.March)
	require.NoError(t, err)
	assert.InDelta(t, 200.0, chargeFor(t, stmtB, models.ServiceElectricity).Cost, 1e-9)

	stmtC, err := engine.Statement(context.Background(), tenantC, 2024, time.March)
	require.NoError(t, err)
	assert.InDelta(t, 100.0, chargeFor(t, stmtC, models.ServiceElectricity).Cost, 1e-9)
}

func TestStatementSharedPoolEmpty(t *testing.T) {
	ledger := newFakeLedger()
	propertyID := uuid.New()

	tenant := ledger.addTenant(&models.Tenant{
		ChatID:     1,
		MoveInDate: moveIn(),
		BaseRent:   400,
		RentalMode: models.RentalProrated,
		PropertyID: &propertyID,
		Occupants:  1,
	})

	ledger.propertyBills[serviceKey(propertyID, models.ServiceElectricity)] = 300

	stmt, err := NewEngine(ledger).Statement(context.Background(), tenant, 2024, time.March)
	require.NoError(t, err)

	charge := chargeFor(t, stmt, models.ServiceElectricity)
	assert.Zero(t, charge.Cost)
	assert.Contains(t, charge.Detail, "cannot compute")
}

func TestStatementWaterMeterPool(t *testing.T) {
	ledger := newFakeLedger()
	propertyID := uuid.New()
	meter := ledger.addMeter(propertyID, models.ServiceWater)

	tenant := ledger.addTenant(&models.Tenant{
		ChatID:       1,
		MoveInDate:   moveIn(),
		BaseRent:     400,
		RentalMode:   models.RentalProrated,
		PropertyID:   &propertyID,
		WaterMeterID: &meter.ID,
		Occupants:    2,
	})

	// 90 across 3 occupants on this meter; 2 of them are the tenant's.
	ledger.meterBills[meter.ID] = 90
	ledger.occupantsByMeter[meter.ID] = 3

	stmt, err := NewEngine(ledger).Statement(context.Background(), tenant, 2024, time.March)
	require.NoError(t, err)

	assert.InDelta(t, 60.0, chargeFor(t, stmt, models.ServiceWater).Cost, 1e-9)
}

func TestStatementWaterSharesSumToBill(t *testing.T) {
	ledger := newFakeLedger()
	propertyID := uuid.New()
	meter := ledger.addMeter(propertyID, models.ServiceWater)

	occupants := []int{1, 2, 3}
	var tenants []*models.Tenant
	for i, n := range occupants {
		tenants = append(tenants, ledger.addTenant(&models.Tenant{
			ChatID:       int64(i + 1),
			MoveInDate:   moveIn(),
			BaseRent:     400,
			RentalMode:   models.RentalProrated,
			PropertyID:   &propertyID,
			WaterMeterID: &meter.ID,
			Occupants:    n,
		}))
	}

	ledger.meterBills[meter.ID] = 90
	ledger.occupantsByMeter[meter.ID] = 6

	engine := NewEngine(ledger)

	var total float64
	for _, tenant := range tenants {
		stmt, err := engine.Statement(context.Background(), tenant, 2024, time.March)
		require.NoError(t, err)
		total += chargeFor(t, stmt, models.ServiceWater).Cost
	}

	// Shares of one meter's pool add up to the meter's bill.
	assert.InDelta(t, 90.0, total, 1e-9)
}

func TestStatementWaterUnassignedIncludedInRent(t *testing.T) {
	ledger := newFakeLedger()
	propertyID := uuid.New()

	tenant := ledger.addTenant(&models.Tenant{
		ChatID:     1,
		MoveInDate: moveIn(),
		BaseRent:   400,
		RentalMode: models.RentalProrated,
		PropertyID: &propertyID,
		Occupants:  2,
	})

	stmt, err := NewEngine(ledger).Statement(context.Background(), tenant, 2024, time.March)
	require.NoError(t, err)

	charge := chargeFor(t, stmt, models.ServiceWater)
	assert.Zero(t, charge.Cost)
	assert.Contains(t, charge.Detail, "included in base rent")
}

func TestStatementInternetSoleTenantPaysFullBill(t *testing.T) {
	ledger := newFakeLedger()
	propertyID := uuid.New()
	ledger.addMeter(propertyID, models.ServiceInternetTV)

	tenant := ledger.addTenant(&models.Tenant{
		ChatID:     1,
		MoveInDate: moveIn(),
		BaseRent:   400,
		RentalMode: models.RentalProrated,
		PropertyID: &propertyID,
		Occupants:  3,
	})

	ledger.propertyBills[serviceKey(propertyID, models.ServiceInternetTV)] = 45
	ledger.occupantsByProperty[propertyID] = 3

	stmt, err := NewEngine(ledger).Statement(context.Background(), tenant, 2024, time.March)
	require.NoError(t, err)

	assert.InDelta(t, 45.0, chargeFor(t, stmt, models.ServiceInternetTV).Cost, 1e-9)
}

func TestStatementInternetSharesSumToBill(t *testing.T) {
	ledger := newFakeLedger()
	propertyID := uuid.New()
	ledger.addMeter(propertyID, models.ServiceInternetTV)

	tenantA := ledger.addTenant(&models.Tenant{
		ChatID:     1,
		MoveInDate: moveIn(),
		BaseRent:   400,
		RentalMode: models.RentalProrated,
		PropertyID: &propertyID,
		Occupants:  1,
	})
	tenantB := ledger.addTenant(&models.Tenant{
		ChatID:     2,
		MoveInDate: moveIn(),
		BaseRent:   400,
		RentalMode: models.RentalProrated,
		PropertyID: &propertyID,
		Occupants:  2,
	})

	ledger.propertyBills[serviceKey(propertyID, models.ServiceInternetTV)] = 45
	ledger.occupantsByProperty[propertyID] = 3

	engine := NewEngine(ledger)

	stmtA, err := engine.Statement(context.Background(), tenantA, 2024, time.March)
	require.NoError(t, err)
	stmtB, err := engine.Statement(context.Background(), tenantB, 2024, time.March)
	require.NoError(t, err)

	costA := chargeFor(t, stmtA, models.ServiceInternetTV).Cost
	costB := chargeFor(t, stmtB, models.ServiceInternetTV).Cost
	assert.InDelta(t, 15.0, costA, 1e-9)
	assert.InDelta(t, 45.0, costA+costB, 1e-9)
}

func TestStatementNoInternetMeter(t *testing.T) {
	ledger := newFakeLedger()
	propertyID := uuid.New()

	tenant := ledger.addTenant(&models.Tenant{
		ChatID:     1,
		MoveInDate: moveIn(),
		BaseRent:   400,
		RentalMode: models.RentalProrated,
		PropertyID: &propertyID,
		Occupants:  1,
	})

	stmt, err := NewEngine(ledger).Statement(context.Background(), tenant, 2024, time.March)
	require.NoError(t, err)

	charge := chargeFor(t, stmt, models.ServiceInternetTV)
	assert.Zero(t, charge.Cost)
	assert.Contains(t, charge.Detail, "not applicable")
}

func TestStatementNoInvoicesChargesNothing(t *testing.T) {
	ledger := newFakeLedger()
	propertyID := uuid.New()
	waterMeter := ledger.addMeter(propertyID, models.ServiceWater)

	tenant := ledger.addTenant(&models.Tenant{
		ChatID:       1,
		MoveInDate:   moveIn(),
		BaseRent:     400,
		RentalMode:   models.RentalProrated,
		PropertyID:   &propertyID,
		WaterMeterID: &waterMeter.ID,
		Occupants:    1,
	})

	ledger.occupantsByMeter[waterMeter.ID] = 1
	ledger.occupantsUnmetered[propertyID] = 1

	stmt, err := NewEngine(ledger).Statement(context.Background(), tenant, 2024, time.March)
	require.NoError(t, err)

	assert.Zero(t, stmt.ServicesTotal)
	assert.Equal(t, 400.0, stmt.Total)
}
