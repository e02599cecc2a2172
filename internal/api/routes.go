package api

import (
	"github.com/go-chi/chi/v5"
)

// setupAPIRoutes sets up API v1 routes
func (s *RESTServer) setupAPIRoutes(r chi.Router) {
	// Health check
	r.Get("/health", s.HandleHealth)
	r.Get("/", s.HandleRoot)

	// Auth routes (public)
	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", s.HandleLogin)
		r.Post("/refresh", s.HandleRefresh)
	})

	// Protected routes
	r.Group(func(r chi.Router) {
		// Users
		r.Route("/users", func(r chi.Router) {
			r.Use(s.authMiddleware)
			r.Post("/", s.HandleCreateUser)
			r.Get("/me", s.HandleGetCurrentUser)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.HandleGetUser)
				r.Put("/", s.HandleUpdateUser)
			})
		})

		// Properties and their meters
		r.Route("/properties", func(r chi.Router) {
			r.Use(s.authMiddleware)
			r.Get("/", s.HandleListProperties)
			r.Post("/", s.HandleCreateProperty)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.HandleGetProperty)
				r.Put("/", s.HandleUpdateProperty)
				r.Delete("/", s.HandleDeleteProperty)
				r.Get("/meters", s.HandleListMeters)
				r.Post("/meters", s.HandleCreateMeter)
			})
		})

		// Meters and readings
		r.Route("/meters", func(r chi.Router) {
			r.Use(s.authMiddleware)
			r.Route("/{id}", func(r chi.Router) {
				r.Delete("/", s.HandleDeleteMeter)
				r.Get("/readings", s.HandleListReadings)
				r.Post("/readings", s.HandleCreateReading)
			})
		})

		// Invoices
		r.Route("/invoices", func(r chi.Router) {
			r.Use(s.authMiddleware)
			r.Get("/", s.HandleListInvoices)
			r.Post("/", s.HandleCreateInvoice)
		})

		// Tenants
		r.Route("/tenants", func(r chi.Router) {
			r.Use(s.authMiddleware)
			r.Get("/", s.HandleListTenants)
			r.Post("/register", s.HandleRegisterTenant)
			r.Route("/{chat_id}", func(r chi.Router) {
				r.Get("/", s.HandleGetTenant)
				r.Put("/", s.HandleUpdateTenant)
				r.Delete("/", s.HandleDeleteTenant)
				r.Get("/statement", s.HandleTenantStatement)
				r.Get("/balance", s.HandleTenantBalance)
				r.Get("/property", s.HandleTenantProperty)
				r.Get("/payments", s.HandleListTenantPayments)
				r.Post("/payments", s.HandleSubmitPayment)
				r.Post("/complaints", s.HandleCreateComplaint)
				r.Route("/onboarding", func(r chi.Router) {
					r.Post("/", s.HandleStartOnboarding)
					r.Get("/", s.HandleGetOnboarding)
					r.Post("/assign", s.HandleOnboardingAssign)
					r.Post("/skip", s.HandleOnboardingSkip)
					r.Post("/complete", s.HandleCompleteOnboarding)
					r.Delete("/", s.HandleCancelOnboarding)
				})
			})
		})

		// Payments
		r.Route("/payments", func(r chi.Router) {
			r.Use(s.authMiddleware)
			r.Get("/pending", s.HandleListPendingPayments)
			r.Post("/{id}/confirm", s.HandleConfirmPayment)
		})

		// Complaints
		r.Route("/complaints", func(r chi.Router) {
			r.Use(s.authMiddleware)
			r.Get("/", s.HandleListOpenComplaints)
			r.Post("/{id}/resolve", s.HandleResolveComplaint)
		})

		// Billing
		r.Route("/billing", func(r chi.Router) {
			r.Use(s.authMiddleware)
			r.Post("/run", s.HandleBillingRun)
			r.Get("/summary", s.HandleBillingSummary)
		})

		// Notices
		r.Route("/notices", func(r chi.Router) {
			r.Use(s.authMiddleware)
			r.Post("/", s.HandleSendNotice)
		})
	})
}
