package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/OscarAAV94/VelPra-bot/internal/models"
	"github.com/OscarAAV94/VelPra-bot/internal/storage"
)

// ========== Property handlers ==========

// HandleListProperties lists properties
func (s *RESTServer) HandleListProperties(w http.ResponseWriter, r *http.Request) {
	properties, err := s.store.ListProperties(r.Context())
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"properties": properties,
		"total":      len(properties),
	})
}

// HandleCreateProperty creates a property
func (s *RESTServer) HandleCreateProperty(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name         string  `json:"name" validate:"required,min=2,max=100"`
		Address      string  `json:"address" validate:"required"`
		WifiSSID     *string `json:"wifi_ssid"`
		WifiPassword *string `json:"wifi_password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.validator.Validate(req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	property := &models.Property{
		Name:         req.Name,
		Address:      req.Address,
		WifiSSID:     req.WifiSSID,
		WifiPassword: req.WifiPassword,
	}

	if err := s.store.CreateProperty(r.Context(), property); err != nil {
		if err == storage.ErrDuplicateKey {
			s.respondError(w, http.StatusConflict, "property already exists")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusCreated, property)
}

// HandleGetProperty gets a property with its meters and tenants
func (s *RESTServer) HandleGetProperty(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid property id")
		return
	}

	property, err := s.store.GetProperty(ctx, id)
	if err != nil {
		if err == storage.ErrNotFound {
			s.respondError(w, http.StatusNotFound, "property not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	meters, err := s.store.ListMetersByProperty(ctx, id, nil)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	tenants, err := s.store.ListTenantsByProperty(ctx, id)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"property": property,
		"meters":   meters,
		"tenants":  tenants,
	})
}

// HandleUpdateProperty updates a property
func (s *RESTServer) HandleUpdateProperty(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid property id")
		return
	}

	property, err := s.store.GetProperty(ctx, id)
	if err != nil {
		if err == storage.ErrNotFound {
			s.respondError(w, http.StatusNotFound, "property not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var req struct {
		Name         string  `json:"name" validate:"required,min=2,max=100"`
		Address      string  `json:"address" validate:"required"`
		WifiSSID     *string `json:"wifi_ssid"`
		WifiPassword *string `json:"wifi_password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.validator.Validate(req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	property.Name = req.Name
	property.Address = req.Address
	property.WifiSSID = req.WifiSSID
	property.WifiPassword = req.WifiPassword

	if err := s.store.UpdateProperty(ctx, property); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, property)
}

// HandleDeleteProperty deletes a property and everything scoped to it
func (s *RESTServer) HandleDeleteProperty(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid property id")
		return
	}

	if err := s.store.DeleteProperty(r.Context(), id); err != nil {
		if err == storage.ErrNotFound {
			s.respondError(w, http.StatusNotFound, "property not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ========== Meter handlers ==========

// HandleListMeters lists a property's meters, optionally by service
func (s *RESTServer) HandleListMeters(w http.ResponseWriter, r *http.Request) {
	propertyID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid property id")
		return
	}

	var service *models.ServiceType
	if raw := r.URL.Query().Get("service"); raw != "" {
		st := models.ServiceType(raw)
		if !st.Valid() {
			s.respondError(w, http.StatusBadRequest, "unknown service type")
			return
		}
		service = &st
	}

	meters, err := s.store.ListMetersByProperty(r.Context(), propertyID, service)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"meters": meters,
		"total":  len(meters),
	})
}

// HandleCreateMeter creates a meter under a property
func (s *RESTServer) HandleCreateMeter(w http.ResponseWriter, r *http.Request) {
	propertyID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid property id")
		return
	}

	var req struct {
		Name    string `json:"name" validate:"required,min=1,max=100"`
		Service string `json:"service" validate:"required,oneof=electricity water gas internet_tv"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.validator.Validate(req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := s.store.GetProperty(r.Context(), propertyID); err != nil {
		if err == storage.ErrNotFound {
			s.respondError(w, http.StatusNotFound, "property not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	meter := &models.Meter{
		PropertyID: propertyID,
		Name:       req.Name,
		Service:    models.ServiceType(req.Service),
	}

	if err := s.store.CreateMeter(r.Context(), meter); err != nil {
		if err == storage.ErrDuplicateKey {
			s.respondError(w, http.StatusConflict, "meter already exists")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusCreated, meter)
}

// HandleDeleteMeter deletes a meter and its reading history
func (s *RESTServer) HandleDeleteMeter(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid meter id")
		return
	}

	if err := s.store.DeleteMeter(r.Context(), id); err != nil {
		if err == storage.ErrNotFound {
			s.respondError(w, http.StatusNotFound, "meter not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ========== Reading handlers ==========

// HandleListReadings lists a meter's readings, newest first
func (s *RESTServer) HandleListReadings(w http.ResponseWriter, r *http.Request) {
	meterID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid meter id")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = 12
	}

	readings, err := s.store.ListReadingsByMeter(r.Context(), meterID, limit)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"readings": readings,
		"total":    len(readings),
	})
}

// HandleCreateReading records a meter reading
func (s *RESTServer) HandleCreateReading(w http.ResponseWriter, r *http.Request) {
	meterID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid meter id")
		return
	}

	var req struct {
		Value float64    `json:"value" validate:"min=0"`
		Date  *time.Time `json:"date"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.validator.Validate(req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := s.store.GetMeter(r.Context(), meterID); err != nil {
		if err == storage.ErrNotFound {
			s.respondError(w, http.StatusNotFound, "meter not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	reading := &models.MeterReading{
		MeterID: meterID,
		Value:   req.Value,
	}
	if req.Date != nil {
		reading.Date = *req.Date
	}

	if err := s.store.CreateMeterReading(r.Context(), reading); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusCreated, reading)
}

// ========== Invoice handlers ==========

// HandleListInvoices lists invoices for a billing month
func (s *RESTServer) HandleListInvoices(w http.ResponseWriter, r *http.Request) {
	year, month := billingMonth(r)

	invoices, err := s.store.ListInvoicesByMonth(r.Context(), year, month)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"invoices": invoices,
		"year":     year,
		"month":    int(month),
		"total":    len(invoices),
	})
}

// HandleCreateInvoice records a utility invoice
func (s *RESTServer) HandleCreateInvoice(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PropertyID string     `json:"property_id" validate:"required"`
		MeterID    *string    `json:"meter_id"`
		Service    string     `json:"service" validate:"required,oneof=electricity water gas internet_tv"`
		Amount     float64    `json:"amount" validate:"gt=0"`
		TotalKWh   float64    `json:"total_kwh" validate:"min=0"`
		Date       *time.Time `json:"date"`
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

	if _, err := s.store.GetProperty(r.Context(), propertyID); err != nil {
		if err == storage.ErrNotFound {
			s.respondError(w, http.StatusNotFound, "property not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	invoice := &models.Invoice{
		PropertyID: propertyID,
		Service:    models.ServiceType(req.Service),
		Amount:     req.Amount,
		TotalKWh:   req.TotalKWh,
	}
	if req.Date != nil {
		invoice.Date = *req.Date
	}

	if req.MeterID != nil {
		meterID, err := uuid.Parse(*req.MeterID)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "invalid meter id")
			return
		}
		meter, err := s.store.GetMeter(r.Context(), meterID)
		if err != nil {
			if err == storage.ErrNotFound {
				s.respondError(w, http.StatusNotFound, "meter not found")
				return
			}
			s.respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if meter.PropertyID != propertyID {
			s.respondError(w, http.StatusBadRequest, "meter belongs to another property")
			return
		}
		invoice.MeterID = &meterID
	}

	if err := s.store.CreateInvoice(r.Context(), invoice); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusCreated, invoice)
}
