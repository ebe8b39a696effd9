package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/bus-maintenance/internal/auth"
	"github.com/ukydev/bus-maintenance/internal/db"
	"github.com/ukydev/bus-maintenance/internal/middleware"
	"github.com/ukydev/bus-maintenance/internal/models"
	"github.com/ukydev/bus-maintenance/internal/workflow"
)

// RouterConfig carries the collaborators and limits for NewRouter.
type RouterConfig struct {
	Auth    *auth.Service
	Users   db.UserCollection
	Service workflow.Service
	Logger  log.FieldLogger

	AllowedOrigins   []string
	RateLimitEnabled bool
	RateLimitMax     int
	RateLimitWindow  time.Duration
}

// NewRouter builds the HTTP API.
func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = log.StandardLogger()
	}
	authHandler := NewAuthHandler(cfg.Auth, cfg.Users)
	wf := NewWorkflowHandler(cfg.Service)
	authMiddleware := middleware.NewAuthMiddleware(cfg.Auth)

	mux := chi.NewRouter()
	mux.Use(middleware.RequestID)
	mux.Use(middleware.RequestLogger(cfg.Logger))
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	if cfg.RateLimitEnabled {
		mux.Use(middleware.NewRateLimitMiddleware().RateLimit(cfg.RateLimitMax, cfg.RateLimitWindow))
	}
	mux.Use(authMiddleware.Authenticate)

	mux.NotFound(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteError(w, r, http.StatusNotFound, "not_found", "route not found")
	})
	mux.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	})

	mux.Get("/health", Health)

	mux.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
	})

	mux.Route("/api/users", func(r chi.Router) {
		r.Get("/profile", authHandler.GetProfile)
		r.Get("/dashboard", wf.GetDashboard)
	})

	mux.Route("/api/vendors", func(r chi.Router) {
		r.With(authMiddleware.RequireRole(models.RoleServiceCreator)).Post("/create", authHandler.CreateVendor)
		r.With(authMiddleware.RequireRole(models.RoleVendor)).Get("/tickets", wf.ListTickets)
	})

	mux.Route("/api/bus", func(r chi.Router) {
		r.Post("/create", wf.CreateBus)
		r.Get("/", wf.ListBuses)
		r.Get("/{id}", wf.GetBus)
	})

	mux.Route("/api/tickets", func(r chi.Router) {
		r.Post("/create", wf.CreateTicket)
		r.Get("/", wf.ListTickets)
		r.Get("/{id}", wf.GetTicket)
		r.Put("/approve/{id}", wf.ApproveTicket)
		r.Put("/acknowledge/{id}", wf.AcknowledgeTicket)
		r.Put("/invoice/{id}", wf.SubmitInvoice)
		r.Put("/invoice/accept/{id}", wf.DecideInvoice(true, true))
		r.Put("/invoice/reject/{id}", wf.DecideInvoice(false, true))
		r.Put("/request-repair/{id}", wf.RequestRepair)
		r.Put("/complete/{id}", wf.CompleteTicket)
	})

	mux.Route("/api/invoices/{id}", func(r chi.Router) {
		r.Put("/accept", wf.DecideInvoice(true, false))
		r.Put("/reject", wf.DecideInvoice(false, false))
	})

	mux.Route("/api/repair-requests", func(r chi.Router) {
		r.Post("/", wf.SubmitRepairRequest)
		r.Get("/pending", wf.ListPendingRepairRequests)
		r.Put("/status/{id}", wf.ResolveRepairRequest)
	})

	return mux
}

// Health reports liveness.
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}
