package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"

	"github.com/Ngechemoris1/payup/internal/auth"
	"github.com/Ngechemoris1/payup/internal/bill"
	"github.com/Ngechemoris1/payup/internal/payment"
	"github.com/Ngechemoris1/payup/internal/property"
	"github.com/Ngechemoris1/payup/internal/tenant"
	"github.com/Ngechemoris1/payup/internal/transport/middleware"
	"github.com/Ngechemoris1/payup/internal/transport/swagger"
	"github.com/Ngechemoris1/payup/internal/user"
)

func RegisterAllRoutes(
	router *chi.Mux,
	db *sql.DB,
	authHandler *auth.Handler,
	userHandler *user.Handler,
	tenantHandler *tenant.Handler,
	propertyHandler *property.Handler,
	billHandler *bill.Handler,
	paymentHandler *payment.Handler,
	webhookHandler *payment.WebhookHandler,
	logger *slog.Logger,
) {
	healthHandler := NewHealthHandler(db)

	// Apply global middleware
	router.Use(middleware.CORS)
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	// Serve OpenAPI spec at root (outside API prefix)
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		// Provider callback is unauthenticated; the handler validates the
		// payload and matches it to a pending transaction.
		if webhookHandler != nil {
			r.Post("/payments/mpesa/callback", webhookHandler.HandleSTKCallback)
		}

		if authHandler != nil {
			r.Route("/auth", func(sr chi.Router) {
				sr.Post("/login", authHandler.Login)
				sr.Post("/refresh", authHandler.RefreshToken)
				sr.Post("/logout", authHandler.Logout)
			})
		}

		if authHandler != nil {
			// Protected routes that require authentication
			r.Group(func(pr chi.Router) {
				pr.Use(authHandler.AuthMiddleware)

				if userHandler != nil {
					pr.Get("/users/me", userHandler.GetCurrentUser)
				}

				if paymentHandler != nil {
					pr.Group(func(pmr chi.Router) {
						pmr.Use(middleware.RequirePermissions("initiate_payments", "admin"))
						pmr.Post("/payments/initiate", paymentHandler.InitiatePayment)
					})
				}

				if tenantHandler != nil {
					pr.Route("/tenants", func(tr chi.Router) {
						tr.Get("/", tenantHandler.ListTenants)
						tr.Get("/{tenantID}", tenantHandler.GetTenant)

						if paymentHandler != nil {
							tr.Group(func(vr chi.Router) {
								vr.Use(middleware.RequirePermissions("view_payments", "admin"))
								vr.Get("/{tenantID}/payments", paymentHandler.ListTenantPayments)
							})
						}
						if billHandler != nil {
							tr.Get("/{tenantID}/bills", billHandler.ListTenantBills)
						}

						tr.Group(func(mr chi.Router) {
							mr.Use(middleware.RequirePermissions("manage_properties", "admin"))
							mr.Post("/", tenantHandler.CreateTenant)
							mr.Put("/{tenantID}", tenantHandler.UpdateTenant)
							mr.Delete("/{tenantID}", tenantHandler.DeleteTenant)
						})
					})
				}

				if propertyHandler != nil {
					pr.Route("/properties", func(prr chi.Router) {
						prr.Get("/", propertyHandler.ListProperties)
						prr.Get("/{propertyID}", propertyHandler.GetProperty)
						prr.Get("/{propertyID}/rooms/vacant", propertyHandler.ListVacantRooms)

						prr.Group(func(mr chi.Router) {
							mr.Use(middleware.RequirePermissions("manage_properties", "admin"))
							mr.Post("/", propertyHandler.CreateProperty)
							mr.Delete("/{propertyID}", propertyHandler.DeleteProperty)
							mr.Post("/{propertyID}/floors", propertyHandler.AddFloor)
							mr.Post("/rooms", propertyHandler.AddRoom)
						})
					})
				}

				if billHandler != nil {
					pr.Route("/bills", func(br chi.Router) {
						br.Get("/{billID}", billHandler.GetBill)

						br.Group(func(mr chi.Router) {
							mr.Use(middleware.RequirePermissions("manage_bills", "admin"))
							mr.Post("/", billHandler.CreateBill)
							mr.Post("/{billID}/paid", billHandler.MarkBillPaid)
							mr.Delete("/{billID}", billHandler.DeleteBill)
						})
					})
				}
			})
		}
	})
}
