// Package router assembles the HTTP surface: public browse, booking, and
// assistant routes, the password-gated admin routes, and the health and
// metrics endpoints.
package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/healpointhq/clinic-platform/internal/assistant"
	"github.com/healpointhq/clinic-platform/internal/booking"
	"github.com/healpointhq/clinic-platform/internal/directory"
	"github.com/healpointhq/clinic-platform/internal/gate"
	httpmiddleware "github.com/healpointhq/clinic-platform/internal/http/middleware"
	"github.com/healpointhq/clinic-platform/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	DirectoryHandler   *directory.Handler
	BookingHandler     *booking.Handler
	AssistantHandler   *assistant.Handler
	GateHandler        *gate.Handler
	Gate               *gate.Gate
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	r.Use(httpmiddleware.Session)
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints
	r.Group(func(public chi.Router) {
		public.Get("/health", healthCheck)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
		if cfg.DirectoryHandler != nil {
			public.Mount("/", cfg.DirectoryHandler.PublicRoutes())
		}
		if cfg.BookingHandler != nil {
			public.Get("/appointments", cfg.BookingHandler.ListAppointments)
			public.Route("/bookings", func(r chi.Router) {
				r.Post("/", cfg.BookingHandler.Begin)
				r.Get("/draft", cfg.BookingHandler.GetDraft)
				r.Delete("/draft", cfg.BookingHandler.Cancel)
				r.Post("/confirm", cfg.BookingHandler.Confirm)
			})
		}
		if cfg.AssistantHandler != nil {
			public.Mount("/assistant", cfg.AssistantHandler.Routes())
		}
	})

	// Admin surface. Login, logout, and the session probe stay reachable
	// while locked; the management routes sit behind the gate.
	r.Route("/admin", func(admin chi.Router) {
		if cfg.GateHandler != nil {
			admin.Post("/login", cfg.GateHandler.Login)
			admin.Post("/logout", cfg.GateHandler.Logout)
			admin.Get("/session", cfg.GateHandler.Session)
		}
		if cfg.DirectoryHandler != nil {
			admin.Group(func(gated chi.Router) {
				if cfg.Gate != nil {
					gated.Use(cfg.Gate.Middleware)
				}
				gated.Mount("/", cfg.DirectoryHandler.AdminRoutes())
			})
		}
	})

	return r
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]string{
		"status": "ok",
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(response)
}
