package session

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OscarAAV94/VelPra-bot/internal/models"
)

func TestMeterFlowOrder(t *testing.T) {
	flow := NewMeterFlow()

	service, ok := flow.Current()
	require.True(t, ok)
	assert.Equal(t, models.ServiceElectricity, service)

	service, ok = flow.Advance()
	require.True(t, ok)
	assert.Equal(t, models.ServiceWater, service)

	service, ok = flow.Advance()
	require.True(t, ok)
	assert.Equal(t, models.ServiceGas, service)

	_, ok = flow.Advance()
	assert.False(t, ok)
	assert.True(t, flow.Done())

	// Advancing past the end stays done.
	_, ok = flow.Advance()
	assert.False(t, ok)
}

func TestOnboardingAssignAndSkip(t *testing.T) {
	manager := NewManager()

	session, err := manager.Start(42)
	require.NoError(t, err)

	electricityMeter := uuid.New()
	require.NoError(t, session.Assign(electricityMeter))
	require.NoError(t, session.Skip())
	gasMeter := uuid.New()
	require.NoError(t, session.Assign(gasMeter))

	assert.True(t, session.Flow.Done())
	assert.Equal(t, electricityMeter, session.Assignments[models.ServiceElectricity])
	assert.Equal(t, gasMeter, session.Assignments[models.ServiceGas])
	_, hasWater := session.Assignments[models.ServiceWater]
	assert.False(t, hasWater)

	assert.ErrorIs(t, session.Assign(uuid.New()), ErrNoSession)
}

func TestManagerSingleSessionPerTenant(t *testing.T) {
	manager := NewManager()

	_, err := manager.Start(42)
	require.NoError(t, err)

	_, err = manager.Start(42)
	assert.ErrorIs(t, err, ErrSessionActive)

	_, err = manager.Start(43)
	assert.NoError(t, err)
}

func TestManagerEndAndCancel(t *testing.T) {
	manager := NewManager()

	_, err := manager.Start(42)
	require.NoError(t, err)

	session, err := manager.End(42)
	require.NoError(t, err)
	assert.Equal(t, int64(42), session.TenantChatID)

	_, err = manager.Get(42)
	assert.ErrorIs(t, err, ErrNoSession)

	_, err = manager.Start(42)
	require.NoError(t, err)
	manager.Cancel(42)

	_, err = manager.Get(42)
	assert.ErrorIs(t, err, ErrNoSession)
}
