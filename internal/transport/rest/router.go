package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/yardguard/internal/audit"
	"github.com/frahmantamala/yardguard/internal/auth"
	"github.com/frahmantamala/yardguard/internal/authz"
	"github.com/frahmantamala/yardguard/internal/capability"
	"github.com/frahmantamala/yardguard/internal/gatepass"
	"github.com/frahmantamala/yardguard/internal/transport/middleware"
	"github.com/frahmantamala/yardguard/internal/transport/swagger"
	"github.com/frahmantamala/yardguard/internal/user"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, engine *authz.Engine, authHandler *auth.Handler, userHandler *user.Handler, gatepassHandler *gatepass.Handler, capabilityHandler *capability.Handler, auditHandler *audit.Handler, logger *slog.Logger) {
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
	// Swagger UI route at root
	router.Handle("/swagger/*", swagger.Handler())

	// Mount API under /api/v1 to match OpenAPI basePath
	router.Route("/api/v1", func(r chi.Router) {
		// Health check route
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		// Auth routes
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

				// Current user
				if userHandler != nil {
					pr.Get("/users/me", userHandler.GetCurrentUser)
				}

				// Gate pass routes. Record-aware authorization runs inside
				// the service, so no route-level guard here.
				if gatepassHandler != nil {
					pr.Route("/gate-passes", func(gr chi.Router) {
						gr.Post("/", gatepassHandler.IssueGatePass)
						gr.Get("/", gatepassHandler.ListGatePasses)
						gr.Get("/{id}", gatepassHandler.GetGatePass)
						gr.Patch("/{id}", gatepassHandler.UpdateGatePass)
						gr.Patch("/{id}/approve", gatepassHandler.ApproveGatePass)
						gr.Patch("/{id}/reject", gatepassHandler.RejectGatePass)
						gr.Delete("/{id}", gatepassHandler.DeleteGatePass)
					})
				}

				// Capability grant administration
				if capabilityHandler != nil {
					pr.Route("/capabilities", func(cr chi.Router) {
						cr.Group(func(ar chi.Router) {
							ar.Use(middleware.RequireCapability(engine, authz.ModuleUserManagement, authz.ActionRead))
							ar.Get("/", capabilityHandler.ListGrants)
						})
						cr.Group(func(ar chi.Router) {
							ar.Use(middleware.RequireCapability(engine, authz.ModuleUserManagement, authz.ActionCreate))
							ar.Post("/", capabilityHandler.CreateGrant)
						})
						cr.Group(func(ar chi.Router) {
							ar.Use(middleware.RequireCapability(engine, authz.ModuleUserManagement, authz.ActionUpdate))
							ar.Patch("/{id}", capabilityHandler.UpdateGrant)
						})
						cr.Group(func(ar chi.Router) {
							ar.Use(middleware.RequireCapability(engine, authz.ModuleUserManagement, authz.ActionDelete))
							ar.Delete("/{id}", capabilityHandler.RevokeGrant)
						})
					})
				}

				// Audit trail review (requires reports access)
				if auditHandler != nil {
					pr.Group(func(ar chi.Router) {
						ar.Use(middleware.RequireCapability(engine, authz.ModuleReports, authz.ActionRead))
						ar.Get("/audit/decisions", auditHandler.ListDecisions)
					})
				}
			})
		}
	})
}
