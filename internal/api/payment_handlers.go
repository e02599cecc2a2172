package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/OscarAAV94/VelPra-bot/internal/billing"
	"github.com/OscarAAV94/VelPra-bot/internal/models"
	"github.com/OscarAAV94/VelPra-bot/internal/storage"
)

// ========== Payment handlers ==========

// HandleSubmitPayment records a tenant's payment claim and alerts the
// admins. The balance does not move until an admin confirms.
func (s *RESTServer) HandleSubmitPayment(w http.ResponseWriter, r *http.Request) {
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
		Amount float64 `json:"amount" validate:"gt=0"`
		Proof  string  `json:"proof"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.validator.Validate(req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	payment := &models.Payment{
		ChatID: chatID,
		Amount: req.Amount,
		Proof:  req.Proof,
		// Projection only; the confirmed delta is applied against the
		// balance as it stands at confirmation time.
		BalanceAfter: tenant.Balance - req.Amount,
	}

	if err := s.store.CreatePayment(ctx, payment); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if err := s.notifier.SendToAdmins(ctx,
		billing.FormatPaymentSubmitted(tenant.Name, chatID, payment.Amount, payment.Proof)); err != nil {
		log.Warn().Err(err).Int64("chat_id", chatID).Msg("Failed to notify admins of payment")
	}

	s.respondJSON(w, http.StatusCreated, payment)
}

// HandleListTenantPayments lists a tenant's payments, newest first
func (s *RESTServer) HandleListTenantPayments(w http.ResponseWriter, r *http.Request) {
	chatID, err := chatIDParam(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid chat id")
		return
	}

	payments, err := s.store.ListPaymentsByTenant(r.Context(), chatID, 20)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"payments": payments,
		"total":    len(payments),
	})
}

// HandleListPendingPayments lists payments awaiting confirmation
func (s *RESTServer) HandleListPendingPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := s.store.ListPendingPayments(r.Context())
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"payments": payments,
		"total":    len(payments),
	})
}

// HandleConfirmPayment confirms a payment, applies it to the tenant's
// balance and tells the tenant.
func (s *RESTServer) HandleConfirmPayment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid payment id")
		return
	}

	payment, balance, err := s.store.ConfirmPayment(ctx, id)
	if err != nil {
		switch err {
		case storage.ErrNotFound:
			s.respondError(w, http.StatusNotFound, "payment not found")
		case storage.ErrInvalidData:
			s.respondError(w, http.StatusConflict, "payment already confirmed")
		default:
			s.respondError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	if err := s.notifier.SendToTenant(ctx, payment.ChatID,
		billing.FormatPaymentConfirmed(payment.Amount, balance)); err != nil {
		log.Warn().Err(err).Int64("chat_id", payment.ChatID).Msg("Failed to notify tenant of confirmation")
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"payment": payment,
		"balance": balance,
	})
}

// ========== Complaint handlers ==========

// HandleCreateComplaint records a tenant complaint and alerts admins
func (s *RESTServer) HandleCreateComplaint(w http.ResponseWriter, r *http.Request) {
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
		Text string `json:"text" validate:"required,min=3,max=2000"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.validator.Validate(req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	complaint := &models.Complaint{
		ChatID: chatID,
		Text:   req.Text,
	}

	if err := s.store.CreateComplaint(ctx, complaint); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if err := s.notifier.SendToAdmins(ctx,
		billing.FormatComplaint(tenant.Name, chatID, complaint.Text)); err != nil {
		log.Warn().Err(err).Int64("chat_id", chatID).Msg("Failed to notify admins of complaint")
	}

	s.respondJSON(w, http.StatusCreated, complaint)
}

// HandleListOpenComplaints lists unresolved complaints
func (s *RESTServer) HandleListOpenComplaints(w http.ResponseWriter, r *http.Request) {
	complaints, err := s.store.ListOpenComplaints(r.Context())
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"complaints": complaints,
		"total":      len(complaints),
	})
}

// HandleResolveComplaint marks a complaint resolved
func (s *RESTServer) HandleResolveComplaint(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid complaint id")
		return
	}

	if err := s.store.ResolveComplaint(r.Context(), id); err != nil {
		if err == storage.ErrNotFound {
			s.respondError(w, http.StatusNotFound, "complaint not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]string{"status": "resolved"})
}
