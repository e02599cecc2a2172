package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/OscarAAV94/VelPra-bot/internal/storage"
)

// ========== Billing handlers ==========

// HandleBillingRun charges every onboarded tenant in scope for the
// given month. Runs are additive; repeating a month charges it again.
func (s *RESTServer) HandleBillingRun(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		PropertyID *string `json:"property_id"`
		Year       int     `json:"year"`
		Month      int     `json:"month"`
	}

	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	year, month := billingMonth(r)
	if req.Year > 0 {
		year = req.Year
	}
	if req.Month >= 1 && req.Month <= 12 {
		month = time.Month(req.Month)
	}

	var propertyID *uuid.UUID
	if req.PropertyID != nil {
		id, err := uuid.Parse(*req.PropertyID)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "invalid property id")
			return
		}
		if _, err := s.store.GetProperty(ctx, id); err != nil {
			if err == storage.ErrNotFound {
				s.respondError(w, http.StatusNotFound, "property not found")
				return
			}
			s.respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		propertyID = &id
	}

	result, err := s.runner.Run(ctx, propertyID, year, month)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if result.DeliveryFailed() {
		log.Error().
			Int("eligible", result.Eligible).
			Msg("Billing run delivered no statements")
	}

	summary := fmt.Sprintf("Billing run %04d-%02d: %d eligible, %d charged, %d notified",
		year, int(month), result.Eligible, result.Charged, result.Notified)
	if err := s.notifier.SendToAdmins(ctx, summary); err != nil {
		log.Warn().Err(err).Msg("Failed to deliver run summary")
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"result":          result,
		"delivery_failed": result.DeliveryFailed(),
	})
}

// HandleBillingSummary reports confirmed income against invoice
// expenses for a month.
func (s *RESTServer) HandleBillingSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	year, month := billingMonth(r)

	payments, err := s.store.ListConfirmedPaymentsByMonth(ctx, year, month)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var income float64
	for _, payment := range payments {
		income += payment.Amount
	}

	invoices, err := s.store.ListInvoicesByMonth(ctx, year, month)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var expenses float64
	for _, invoice := range invoices {
		expenses += invoice.Amount
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"year":     year,
		"month":    int(month),
		"currency": s.config.Billing.Currency,
		"income":   income,
		"expenses": expenses,
		"net":      income - expenses,
		"payments": len(payments),
		"invoices": len(invoices),
	})
}

// ========== Notice handlers ==========

// HandleSendNotice broadcasts a text notice to all tenants, one
// property's tenants, or a single tenant.
func (s *RESTServer) HandleSendNotice(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		Scope      string  `json:"scope" validate:"required,oneof=all property tenant"`
		PropertyID *string `json:"property_id"`
		ChatID     *int64  `json:"chat_id"`
		Text       string  `json:"text" validate:"required,min=1,max=2000"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.validator.Validate(req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var chatIDs []int64

	switch req.Scope {
	case "tenant":
		if req.ChatID == nil {
			s.respondError(w, http.StatusBadRequest, "chat_id is required for tenant scope")
			return
		}
		if _, err := s.store.GetTenant(ctx, *req.ChatID); err != nil {
			if err == storage.ErrNotFound {
				s.respondError(w, http.StatusNotFound, "tenant not found")
				return
			}
			s.respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		chatIDs = []int64{*req.ChatID}

	case "property":
		if req.PropertyID == nil {
			s.respondError(w, http.StatusBadRequest, "property_id is required for property scope")
			return
		}
		propertyID, err := uuid.Parse(*req.PropertyID)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "invalid property id")
			return
		}
		tenants, err := s.store.ListTenantsByProperty(ctx, propertyID)
		if err != nil {
			s.respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		for _, tenant := range tenants {
			chatIDs = append(chatIDs, tenant.ChatID)
		}

	case "all":
		tenants, err := s.store.ListTenants(ctx)
		if err != nil {
			s.respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		for _, tenant := range tenants {
			chatIDs = append(chatIDs, tenant.ChatID)
		}
	}

	delivered := 0
	for _, chatID := range chatIDs {
		if err := s.notifier.SendToTenant(ctx, chatID, req.Text); err != nil {
			log.Warn().Err(err).Int64("chat_id", chatID).Msg("Failed to deliver notice")
			continue
		}
		delivered++
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"recipients": len(chatIDs),
		"delivered":  delivered,
	})
}
