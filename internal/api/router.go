package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/asauntung/bumdes/internal/api/handlers"
	"github.com/asauntung/bumdes/internal/api/httpx"
	"github.com/asauntung/bumdes/internal/apperr"
	"github.com/asauntung/bumdes/internal/auth"
	"github.com/asauntung/bumdes/internal/metrics"
	"github.com/asauntung/bumdes/internal/middleware"
	"github.com/asauntung/bumdes/internal/models"
)

type RouterDeps struct {
	TM      *auth.TokenManager
	Users   handlers.Authenticator
	WF      handlers.Workflow
	Reports handlers.Reports
	OrgName string
	RateRPS int

	// Ready reports whether the system of record is reachable; nil means always ready.
	Ready func(ctx context.Context) error
}

func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recover, middleware.HTTPMetrics, middleware.RateLimit(d.RateRPS))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type", handlers.IdempotencyHeader, middleware.RequestIDHeader},
		ExposedHeaders: []string{"Content-Disposition", middleware.RequestIDHeader},
	}))

	// health & metrics
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("ok")) })
	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		if d.Ready != nil {
			if err := d.Ready(r.Context()); err != nil {
				httpx.WriteAppError(w, apperr.Persistence(err, "database unreachable"))
				return
			}
		}
		_, _ = w.Write([]byte("ready"))
	})
	r.Handle("/metrics", metrics.Handler())

	authH := handlers.NewAuthHandler(d.TM, d.Users)
	txH := handlers.NewTransactionHandler(d.WF)
	repH := handlers.NewReportHandler(d.Reports, d.OrgName)
	authMW := middleware.NewAuthMiddleware(d.TM)

	r.Route("/api/v1", func(r chi.Router) {
		// ---------- auth ----------
		r.Post("/auth/login", authH.Login)
		r.Post("/auth/refresh", authH.Refresh)

		// ---------- public ----------
		r.Get("/public/summary", repH.Public)

		// ---------- authenticated ----------
		r.Group(func(r chi.Router) {
			r.Use(authMW.Auth)

			r.Get("/dashboard", repH.Dashboard)
			r.Get("/book", repH.Book)
			r.Get("/book/export.csv", repH.ExportCSV)

			r.Post("/transactions", txH.Create)
			r.Get("/transactions/pending", repH.Pending)
			r.Delete("/transactions/{id}", txH.Delete)

			r.With(middleware.RequireRole(models.RoleDirector)).Post("/transactions/{id}/approve", txH.Approve)
			r.With(middleware.RequireRole(models.RoleDirector)).Post("/transactions/{id}/reject", txH.Reject)
		})
	})

	return r
}
