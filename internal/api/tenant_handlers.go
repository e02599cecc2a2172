package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/OscarAAV94/VelPra-bot/internal/billing"
	"github.com/OscarAAV94/VelPra-bot/internal/models"
	"github.com/OscarAAV94/VelPra-bot/internal/session"
	"github.com/OscarAAV94/VelPra-bot/internal/storage"
)

// ========== Tenant handlers ==========

// HandleListTenants lists tenants, optionally scoped to a property
func (s *RESTServer) HandleListTenants(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var (
		tenants []*models.Tenant
		err     error
	)

	if raw := r.URL.Query().Get("property_id"); raw != "" {
		propertyID, perr := uuid.Parse(raw)
		if perr != nil {
			s.respondError(w, http.StatusBadRequest, "invalid property id")
			return
		}
		tenants, err = s.store.ListTenantsByProperty(ctx, propertyID)
	} else {
		tenants, err = s.store.ListTenants(ctx)
	}

	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"tenants": tenants,
		"total":   len(tenants),
	})
}

// HandleRegisterTenant registers a tenant from their chat identity.
// The tenant stays outside billing until onboarding completes.
func (s *RESTServer) HandleRegisterTenant(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ChatID     int64  `json:"chat_id" validate:"required"`
		Name       string `json:"name" validate:"required,min=2,max=100"`
		NationalID string `json:"national_id" validate:"required,min=5,max=30"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.validator.Validate(req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	tenant := &models.Tenant{
		ChatID:     req.ChatID,
		Name:       req.Name,
		NationalID: req.NationalID,
	}

	if err := s.store.CreateTenant(r.Context(), tenant); err != nil {
		if err == storage.ErrDuplicateKey {
			s.respondError(w, http.StatusConflict, "tenant already registered")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if err := s.notifier.SendToAdmins(r.Context(),
		billing.FormatRegistration(tenant.Name, tenant.ChatID, tenant.NationalID)); err != nil {
		log.Warn().Err(err).Int64("chat_id", tenant.ChatID).Msg("Failed to notify admins of registration")
	}

	s.respondJSON(w, http.StatusCreated, tenant)
}

// HandleGetTenant gets a tenant
func (s *RESTServer) HandleGetTenant(w http.ResponseWriter, r *http.Request) {
	chatID, err := chatIDParam(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid chat id")
		return
	}

	tenant, err := s.store.GetTenant(r.Context(), chatID)
	if err != nil {
		if err == storage.ErrNotFound {
			s.respondError(w, http.StatusNotFound, "tenant not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, tenant)
}

// HandleUpdateTenant updates tenant details. Balance is not editable
// here; it changes only through billing runs and payment confirmations.
func (s *RESTServer) HandleUpdateTenant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	chatID, err := chatIDParam(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid chat id")
		return
	}

	tenant, err := s.store.GetTenant(ctx, chatID)
	if err != nil {
		if err == storage.ErrNotFound {
			s.respondError(w, http.StatusNotFound, "tenant not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var req struct {
		Name       string  `json:"name" validate:"required,min=2,max=100"`
		NationalID string  `json:"national_id" validate:"required,min=5,max=30"`
		BaseRent   float64 `json:"base_rent" validate:"min=0"`
		RentalMode string  `json:"rental_mode" validate:"required,oneof=all_inclusive prorated"`
		Occupants  int     `json:"occupants" validate:"min=1,max=20"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.validator.Validate(req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	tenant.Name = req.Name
	tenant.NationalID = req.NationalID
	tenant.BaseRent = req.BaseRent
	tenant.RentalMode = models.RentalMode(req.RentalMode)
	tenant.Occupants = req.Occupants

	if err := s.store.UpdateTenant(ctx, tenant); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, tenant)
}

// HandleDeleteTenant deletes a tenant and their payment history
func (s *RESTServer) HandleDeleteTenant(w http.ResponseWriter, r *http.Request) {
	chatID, err := chatIDParam(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid chat id")
		return
	}

	s.sessions.Cancel(chatID)

	if err := s.store.DeleteTenant(r.Context(), chatID); err != nil {
		if err == storage.ErrNotFound {
			s.respondError(w, http.StatusNotFound, "tenant not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// HandleTenantStatement computes a charge estimate without applying it
func (s *RESTServer) HandleTenantStatement(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	chatID, err := chatIDParam(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid chat id")
		return
	}

	tenant, err := s.store.GetTenant(ctx, chatID)
	if err != nil {
		if err == storage.ErrNotFound {
			s.respondError(w, http.StatusNotFound, "tenant not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	year, month := billingMonth(r)

	stmt, err := s.engine.Statement(ctx, tenant, year, month)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"statement": stmt,
		"text":      billing.FormatEstimate(stmt),
	})
}

// HandleTenantBalance returns a tenant's balance and recent payments
func (s *RESTServer) HandleTenantBalance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	chatID, err := chatIDParam(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid chat id")
		return
	}

	tenant, err := s.store.GetTenant(ctx, chatID)
	if err != nil {
		if err == storage.ErrNotFound {
			s.respondError(w, http.StatusNotFound, "tenant not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	payments, err := s.store.ListPaymentsByTenant(ctx, chatID, 5)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"balance":  tenant.Balance,
		"currency": s.config.Billing.Currency,
		"payments": payments,
	})
}

// HandleTenantProperty returns the tenant's property details, including
// wifi access, for the chat "my home" view
func (s *RESTServer) HandleTenantProperty(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	chatID, err := chatIDParam(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid chat id")
		return
	}

	tenant, err := s.store.GetTenant(ctx, chatID)
	if err != nil {
		if err == storage.ErrNotFound {
			s.respondError(w, http.StatusNotFound, "tenant not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if tenant.PropertyID == nil {
		s.respondError(w, http.StatusNotFound, "tenant has no property assigned")
		return
	}

	property, err := s.store.GetProperty(ctx, *tenant.PropertyID)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, property)
}

// ========== Onboarding handlers ==========

// HandleStartOnboarding assigns the tenant to a property and opens the
// meter assignment flow. The tenant becomes billable only on complete.
func (s *RESTServer) HandleStartOnboarding(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	chatID, err := chatIDParam(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid chat id")
		return
	}

	tenant, err := s.store.GetTenant(ctx, chatID)
	if err != nil {
		if err == storage.ErrNotFound {
			s.respondError(w, http.StatusNotFound, "tenant not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var req struct {
		PropertyID string  `json:"property_id" validate:"required"`
		RentalMode string  `json:"rental_mode" validate:"required,oneof=all_inclusive prorated"`
		BaseRent   float64 `json:"base_rent" validate:"gt=0"`
		Occupants  int     `json:"occupants" validate:"min=1,max=20"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.validator.Validate(req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	propertyID, err := uuid.Parse(req.PropertyID)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid property id")
		return
	}

	if _, err := s.store.GetProperty(ctx, propertyID); err != nil {
		if err == storage.ErrNotFound {
			s.respondError(w, http.StatusNotFound, "property not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	sess, err := s.sessions.Start(chatID)
	if err != nil {
		s.respondError(w, http.StatusConflict, "onboarding already in progress")
		return
	}

	tenant.PropertyID = &propertyID
	tenant.RentalMode = models.RentalMode(req.RentalMode)
	tenant.BaseRent = req.BaseRent
	tenant.Occupants = req.Occupants

	if err := s.store.UpdateTenant(ctx, tenant); err != nil {
		s.sessions.Cancel(chatID)
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondOnboarding(w, sess)
}

// HandleGetOnboarding returns the state of an onboarding session
func (s *RESTServer) HandleGetOnboarding(w http.ResponseWriter, r *http.Request) {
	chatID, err := chatIDParam(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid chat id")
		return
	}

	sess, err := s.sessions.Get(chatID)
	if err != nil {
		s.respondError(w, http.StatusNotFound, "no onboarding in progress")
		return
	}

	s.respondOnboarding(w, sess)
}

// HandleOnboardingAssign assigns a meter for the service the flow is on
func (s *RESTServer) HandleOnboardingAssign(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	chatID, err := chatIDParam(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid chat id")
		return
	}

	sess, err := s.sessions.Get(chatID)
	if err != nil {
		s.respondError(w, http.StatusNotFound, "no onboarding in progress")
		return
	}

	service, ok := sess.Flow.Current()
	if !ok {
		s.respondError(w, http.StatusConflict, "meter assignment already finished")
		return
	}

	var req struct {
		MeterID string `json:"meter_id" validate:"required"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	meterID, err := uuid.Parse(req.MeterID)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid meter id")
		return
	}

	meter, err := s.store.GetMeter(ctx, meterID)
	if err != nil {
		if err == storage.ErrNotFound {
			s.respondError(w, http.StatusNotFound, "meter not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	tenant, err := s.store.GetTenant(ctx, chatID)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if meter.Service != service {
		s.respondError(w, http.StatusBadRequest, "meter is for a different service")
		return
	}
	if tenant.PropertyID == nil || meter.PropertyID != *tenant.PropertyID {
		s.respondError(w, http.StatusBadRequest, "meter belongs to another property")
		return
	}

	if err := sess.Assign(meterID); err != nil {
		s.respondError(w, http.StatusConflict, "meter assignment already finished")
		return
	}

	s.respondOnboarding(w, sess)
}

// HandleOnboardingSkip leaves the current service unmetered
func (s *RESTServer) HandleOnboardingSkip(w http.ResponseWriter, r *http.Request) {
	chatID, err := chatIDParam(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid chat id")
		return
	}

	sess, err := s.sessions.Get(chatID)
	if err != nil {
		s.respondError(w, http.StatusNotFound, "no onboarding in progress")
		return
	}

	if err := sess.Skip(); err != nil {
		s.respondError(w, http.StatusConflict, "meter assignment already finished")
		return
	}

	s.respondOnboarding(w, sess)
}

// HandleCompleteOnboarding persists the session's meter assignments and
// sets the move-in date, making the tenant billable.
func (s *RESTServer) HandleCompleteOnboarding(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	chatID, err := chatIDParam(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid chat id")
		return
	}

	sess, err := s.sessions.Get(chatID)
	if err != nil {
		s.respondError(w, http.StatusNotFound, "no onboarding in progress")
		return
	}

	if !sess.Flow.Done() {
		s.respondError(w, http.StatusConflict, "meter assignment not finished")
		return
	}

	var req struct {
		MoveInDate *time.Time `json:"move_in_date"`
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	tenant, err := s.store.GetTenant(ctx, chatID)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	for service, meterID := range sess.Assignments {
		id := meterID
		tenant.SetAssignedMeterID(service, &id)
	}

	moveIn := time.Now()
	if req.MoveInDate != nil {
		moveIn = *req.MoveInDate
	}
	tenant.MoveInDate = &moveIn

	if err := s.store.UpdateTenant(ctx, tenant); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.sessions.Cancel(chatID)

	// Welcome the tenant with the property's Wi-Fi credentials. Delivery
	// is best-effort; onboarding is already complete.
	var wifiSSID, wifiPassword string
	if tenant.PropertyID != nil {
		property, err := s.store.GetProperty(ctx, *tenant.PropertyID)
		if err != nil {
			log.Warn().Err(err).Int64("chat_id", chatID).Msg("Failed to load property for welcome message")
		} else {
			if property.WifiSSID != nil {
				wifiSSID = *property.WifiSSID
			}
			if property.WifiPassword != nil {
				wifiPassword = *property.WifiPassword
			}
		}
	}

	if err := s.notifier.SendToTenant(ctx, chatID, billing.FormatWelcome(tenant.Name, wifiSSID, wifiPassword)); err != nil {
		log.Warn().Err(err).Int64("chat_id", chatID).Msg("Failed to deliver welcome message")
	}

	s.respondJSON(w, http.StatusOK, tenant)
}

// HandleCancelOnboarding discards an in-flight onboarding session
func (s *RESTServer) HandleCancelOnboarding(w http.ResponseWriter, r *http.Request) {
	chatID, err := chatIDParam(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid chat id")
		return
	}

	s.sessions.Cancel(chatID)
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

func (s *RESTServer) respondOnboarding(w http.ResponseWriter, sess *session.Onboarding) {
	var current interface{}
	if service, ok := sess.Flow.Current(); ok {
		current = service
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"chat_id":         sess.TenantChatID,
		"started_at":      sess.StartedAt,
		"current_service": current,
		"done":            sess.Flow.Done(),
		"assignments":     sess.Assignments,
	})
}
