package billing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OscarAAV94/VelPra-bot/internal/models"
)

type fakeNotifier struct {
	tenantMessages map[int64][]string
	adminMessages  []string
	sendErr        error
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{tenantMessages: map[int64][]string{}}
}

func (f *fakeNotifier) SendToTenant(_ context.Context, chatID int64, text string) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.tenantMessages[chatID] = append(f.tenantMessages[chatID], text)
	return nil
}

func (f *fakeNotifier) SendToAdmins(_ context.Context, text string) error {
	f.adminMessages = append(f.adminMessages, text)
	return nil
}

func poolFixture() (*fakeLedger, uuid.UUID) {
	ledger := newFakeLedger()
	propertyID := uuid.New()

	ledger.addTenant(&models.Tenant{
		ChatID:     2,
		Name:       "Bruno",
		MoveInDate: moveIn(),
		BaseRent:   400,
		RentalMode: models.RentalProrated,
		PropertyID: &propertyID,
		Occupants:  2,
	})
	ledger.addTenant(&models.Tenant{
		ChatID:     3,
		Name:       "Carla",
		MoveInDate: moveIn(),
		BaseRent:   400,
		RentalMode: models.RentalProrated,
		PropertyID: &propertyID,
		Occupants:  1,
	})
	// Registered but never onboarded; billing must not see them.
	ledger.addTenant(&models.Tenant{
		ChatID:     4,
		Name:       "Diego",
		BaseRent:   400,
		RentalMode: models.RentalProrated,
		PropertyID: &propertyID,
		Occupants:  1,
	})

	ledger.propertyBills[serviceKey(propertyID, models.ServiceElectricity)] = 300
	ledger.occupantsUnmetered[propertyID] = 3

	return ledger, propertyID
}

func TestRunChargesAndNotifies(t *testing.T) {
	ledger, _ := poolFixture()
	notifier := newFakeNotifier()
	runner := NewRunner(ledger, NewEngine(ledger), notifier)

	result, err := runner.Run(context.Background(), nil, 2024, time.March)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Eligible)
	assert.Equal(t, 2, result.Charged)
	assert.Equal(t, 2, result.Notified)
	assert.False(t, result.DeliveryFailed())

	// 400 rent + 200 electricity share, 400 + 100.
	assert.InDelta(t, 600.0, ledger.tenants[2].Balance, 1e-9)
	assert.InDelta(t, 500.0, ledger.tenants[3].Balance, 1e-9)
	assert.Len(t, notifier.tenantMessages[2], 1)
	assert.Contains(t, notifier.tenantMessages[2][0], "Total charged: 600.00")
}

func TestRunIsAdditive(t *testing.T) {
	ledger, _ := poolFixture()
	runner := NewRunner(ledger, NewEngine(ledger), newFakeNotifier())

	_, err := runner.Run(context.Background(), nil, 2024, time.March)
	require.NoError(t, err)
	_, err = runner.Run(context.Background(), nil, 2024, time.March)
	require.NoError(t, err)

	// No idempotency: the same month charged twice doubles the debt.
	assert.InDelta(t, 1200.0, ledger.tenants[2].Balance, 1e-9)
	assert.InDelta(t, 1000.0, ledger.tenants[3].Balance, 1e-9)
}

func TestRunScopedToProperty(t *testing.T) {
	ledger, propertyID := poolFixture()
	otherProperty := uuid.New()
	ledger.addTenant(&models.Tenant{
		ChatID:     9,
		Name:       "Elsewhere",
		MoveInDate: moveIn(),
		BaseRent:   700,
		RentalMode: models.RentalAllInclusive,
		PropertyID: &otherProperty,
		Occupants:  1,
	})

	runner := NewRunner(ledger, NewEngine(ledger), newFakeNotifier())

	result, err := runner.Run(context.Background(), &propertyID, 2024, time.March)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Eligible)
	assert.Zero(t, ledger.tenants[9].Balance)
}

func TestRunDeliveryFailureKeepsCharge(t *testing.T) {
	ledger, _ := poolFixture()
	notifier := newFakeNotifier()
	notifier.sendErr = errors.New("chat unreachable")
	runner := NewRunner(ledger, NewEngine(ledger), notifier)

	result, err := runner.Run(context.Background(), nil, 2024, time.March)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Charged)
	assert.Zero(t, result.Notified)
	assert.True(t, result.DeliveryFailed())

	// Charges stand even though nothing was delivered.
	assert.InDelta(t, 600.0, ledger.tenants[2].Balance, 1e-9)
	assert.InDelta(t, 500.0, ledger.tenants[3].Balance, 1e-9)
}

func TestRunChargeFailureSkipsTenant(t *testing.T) {
	ledger, _ := poolFixture()
	ledger.adjustErr = errors.New("db down")
	notifier := newFakeNotifier()
	runner := NewRunner(ledger, NewEngine(ledger), notifier)

	result, err := runner.Run(context.Background(), nil, 2024, time.March)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Eligible)
	assert.Zero(t, result.Charged)
	assert.Zero(t, result.Notified)
	assert.Empty(t, notifier.tenantMessages)
}

func TestRunEmptyScope(t *testing.T) {
	ledger := newFakeLedger()
	runner := NewRunner(ledger, NewEngine(ledger), newFakeNotifier())

	result, err := runner.Run(context.Background(), nil, 2024, time.March)
	require.NoError(t, err)

	assert.Zero(t, result.Eligible)
	assert.False(t, result.DeliveryFailed())
}
