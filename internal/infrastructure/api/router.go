package api

import (
	"net/http"

	securitymiddleware "storefront-analytics/internal/infrastructure/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	httpSwagger "github.com/swaggo/http-swagger"
)

// DefaultSwaggerPath is where the OpenAPI document is read from
const DefaultSwaggerPath = "./docs/swagger.json"

// RouterConfig wires the router's collaborators
type RouterConfig struct {
	Handler        *Handler
	Verifier       *securitymiddleware.SessionVerifier
	Gatherer       prometheus.Gatherer
	AllowedOrigins []string
	SwaggerPath    string
	Logger         zerolog.Logger
}

// NewRouter builds the HTTP routes. Everything under /api requires a session.
func NewRouter(cfg RouterConfig) http.Handler {
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}
	if cfg.SwaggerPath == "" {
		cfg.SwaggerPath = DefaultSwaggerPath
	}
	if cfg.Gatherer == nil {
		cfg.Gatherer = prometheus.DefaultGatherer
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(securitymiddleware.RequestLogger(cfg.Logger))
	r.Use(middleware.Recoverer)
	r.Use(securitymiddleware.SecurityHeadersMiddleware())
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		body := map[string]any{"status": "ok"}
		if cfg.Handler != nil && cfg.Handler.events != nil {
			for k, v := range cfg.Handler.events.GetStats() {
				body[k] = v
			}
		}
		writeJSON(w, http.StatusOK, body)
	})

	r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))

	r.Get("/swagger/doc.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		http.ServeFile(w, r, cfg.SwaggerPath)
	})
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	r.Route("/api", func(r chi.Router) {
		r.Use(securitymiddleware.RequireSession(cfg.Verifier, cfg.Logger))

		h := cfg.Handler
		r.Post("/sync/all", h.SyncAll)
		r.Get("/sync/events", h.SyncEvents)
		r.Post("/sync/{storeId}", h.SyncStore)
		r.Get("/sync/{storeId}/status", h.SyncStatus)

		r.Get("/stores", h.ListStores)
		r.Post("/stores", h.ConnectStore)
		r.Post("/stores/demo", h.CreateDemoStore)
		r.Get("/stores/{storeId}", h.GetStore)

		r.Get("/analytics", h.Overview)
		r.Get("/customers", h.ListCustomers)
	})

	return r
}
