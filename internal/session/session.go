// Package session tracks in-flight multi-step conversations, such as
// tenant onboarding where meters are assigned one service at a time.
// Sessions live in memory only; a restart abandons them.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/OscarAAV94/VelPra-bot/internal/models"
)

var (
	// ErrSessionActive is returned when a session already exists for
	// the tenant.
	ErrSessionActive = errors.New("session already active")
	// ErrNoSession is returned when no session exists for the tenant.
	ErrNoSession = errors.New("no active session")
)

// MeterFlow steps through the services that take a per-tenant meter
// assignment, in fixed order. Each service is visited exactly once.
type MeterFlow struct {
	services []models.ServiceType
	idx      int
}

// NewMeterFlow creates a flow over the prorated services.
func NewMeterFlow() *MeterFlow {
	return &MeterFlow{services: models.ProratedServices}
}

// Current returns the service awaiting an assignment decision. ok is
// false once every service has been visited.
func (f *MeterFlow) Current() (service models.ServiceType, ok bool) {
	if f.idx >= len(f.services) {
		return "", false
	}
	return f.services[f.idx], true
}

// Advance moves past the current service and returns the next one.
func (f *MeterFlow) Advance() (service models.ServiceType, ok bool) {
	if f.idx < len(f.services) {
		f.idx++
	}
	return f.Current()
}

// Done reports whether every service has been visited.
func (f *MeterFlow) Done() bool {
	_, ok := f.Current()
	return !ok
}

// Onboarding is an in-flight onboarding conversation for one tenant.
type Onboarding struct {
	TenantChatID int64
	StartedAt    time.Time
	Flow         *MeterFlow

	// Assignments collects the meters chosen so far; skipped services
	// have no entry.
	Assignments map[models.ServiceType]uuid.UUID
}

// Assign records a meter for the current service and advances the flow.
func (o *Onboarding) Assign(meterID uuid.UUID) error {
	service, ok := o.Flow.Current()
	if !ok {
		return ErrNoSession
	}
	o.Assignments[service] = meterID
	o.Flow.Advance()
	return nil
}

// Skip leaves the current service unassigned and advances the flow.
func (o *Onboarding) Skip() error {
	if _, ok := o.Flow.Current(); !ok {
		return ErrNoSession
	}
	o.Flow.Advance()
	return nil
}

// Manager holds active sessions keyed by tenant chat identity.
type Manager struct {
	mu       sync.Mutex
	sessions map[int64]*Onboarding
}

// NewManager creates an empty session manager.
func NewManager() *Manager {
	return &Manager{sessions: make(map[int64]*Onboarding)}
}

// Start opens an onboarding session for the tenant. Only one session
// per tenant may be active.
func (m *Manager) Start(tenantChatID int64) (*Onboarding, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[tenantChatID]; exists {
		return nil, ErrSessionActive
	}

	session := &Onboarding{
		TenantChatID: tenantChatID,
		StartedAt:    time.Now(),
		Flow:         NewMeterFlow(),
		Assignments:  make(map[models.ServiceType]uuid.UUID),
	}
	m.sessions[tenantChatID] = session

	return session, nil
}

// Get returns the tenant's active session.
func (m *Manager) Get(tenantChatID int64) (*Onboarding, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[tenantChatID]
	if !ok {
		return nil, ErrNoSession
	}
	return session, nil
}

// End removes the tenant's session and returns it, typically after the
// flow completed and its assignments were persisted.
func (m *Manager) End(tenantChatID int64) (*Onboarding, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[tenantChatID]
	if !ok {
		return nil, ErrNoSession
	}
	delete(m.sessions, tenantChatID)
	return session, nil
}

// Cancel discards the tenant's session if one exists.
func (m *Manager) Cancel(tenantChatID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, tenantChatID)
}
