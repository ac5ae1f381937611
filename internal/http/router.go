package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Pinger reports whether the database can be reached.
type Pinger interface {
	Ping(ctx context.Context) error
}

type RouterConfig struct {
	Reports        *ReportHandler
	Members        *MemberHandler
	Database       Pinger
	Metrics        http.Handler
	AllowedOrigins []string
	Logger         *slog.Logger
	Middleware     []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestLogger(cfg.Logger))
	r.Use(middleware.Recoverer)
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader},
		MaxAge:         300,
	}))
	for _, mw := range cfg.Middleware {
		if mw != nil {
			r.Use(mw)
		}
	}

	r.Get("/healthz", healthHandler(cfg.Database, newResponder(cfg.Logger)))
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics)
	}

	if cfg.Members != nil {
		r.Post("/members", cfg.Members.Create)
	}

	if cfg.Reports != nil {
		r.Get("/plans", cfg.Reports.Plans)
		r.Route("/reports", func(r chi.Router) {
			r.Get("/roster", cfg.Reports.Roster)
			r.Get("/growth", cfg.Reports.Growth)
			r.Get("/events", cfg.Reports.Events)
			r.Get("/trainers", cfg.Reports.Trainers)
			r.Get("/expiring", cfg.Reports.Expiring)
			r.Get("/trainer-performance", cfg.Reports.TrainerPerformance)
			r.Get("/top-events", cfg.Reports.TopEvents)
			r.Get("/plan-distribution", cfg.Reports.PlanDistribution)
			r.Get("/daily-signups", cfg.Reports.DailySignups)
		})
	}

	return r
}

type healthResponse struct {
	Status string `json:"status"`
}

func healthHandler(db Pinger, resp responder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db == nil {
			resp.writeJSON(r.Context(), w, http.StatusOK, healthResponse{Status: "ok"})
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := db.Ping(ctx); err != nil {
			handlerLogger(r.Context(), resp.logger, "Health", "Ping").WarnContext(r.Context(), "database unreachable", "error", err)
			resp.writeJSON(r.Context(), w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable"})
			return
		}
		resp.writeJSON(r.Context(), w, http.StatusOK, healthResponse{Status: "ok"})
	}
}
