// Package router assembles the HTTP API.
package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/hairloft/salon-platform/internal/booking"
	"github.com/hairloft/salon-platform/internal/branch"
	"github.com/hairloft/salon-platform/internal/catalog"
	httpmiddleware "github.com/hairloft/salon-platform/internal/http/middleware"
	"github.com/hairloft/salon-platform/internal/schedule"
	"github.com/hairloft/salon-platform/internal/tenancy"
	"github.com/hairloft/salon-platform/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger             *logging.Logger
	BookingHandler     *booking.Handler
	BranchHandler      *branch.Handler
	CatalogHandler     *catalog.Handler
	ScheduleHandler    *schedule.Handler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
	// RateLimitPerSecond enables per-IP rate limiting when positive.
	RateLimitPerSecond float64
	RateLimitBurst     int
}

// New creates a chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}
	if cfg.RateLimitPerSecond > 0 {
		r.Use(httpmiddleware.RateLimit(cfg.RateLimitPerSecond, cfg.RateLimitBurst))
	}

	// Public endpoints.
	r.Get("/health", healthCheck)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	// Org-scoped API.
	r.Group(func(api chi.Router) {
		api.Use(tenancy.RequireOrg)
		if cfg.BookingHandler != nil {
			api.Mount("/bookings", cfg.BookingHandler.Routes())
		}
		if cfg.BranchHandler != nil {
			api.Mount("/branches", cfg.BranchHandler.Routes())
		}
		if cfg.CatalogHandler != nil {
			api.Mount("/services", cfg.CatalogHandler.Routes())
		}
		if cfg.ScheduleHandler != nil {
			api.Mount("/staff", cfg.ScheduleHandler.Routes())
		}
	})

	return r
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
