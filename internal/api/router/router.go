package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	httpmiddleware "github.com/wolfman30/assessment-api/internal/http/middleware"
	"github.com/wolfman30/assessment-api/internal/leads"
	"github.com/wolfman30/assessment-api/internal/observability/metrics"
	"github.com/wolfman30/assessment-api/internal/ratelimit"
	"github.com/wolfman30/assessment-api/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger       *logging.Logger
	LeadsHandler *leads.Handler
	// Diagnostics serves the integration self-test. Optional.
	Diagnostics http.Handler
	// Limiter gates lead submissions. Nil disables rate limiting.
	Limiter            *ratelimit.Limiter
	Metrics            *metrics.LeadMetrics
	MetricsHandler     http.Handler
	AdminAuthSecret    string
	CORSAllowedOrigins []string
	// TrustProxyHeaders takes the client address from True-Client-IP,
	// X-Real-IP or X-Forwarded-For. Enable only behind a proxy that
	// overwrites them.
	TrustProxyHeaders bool
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	if cfg.TrustProxyHeaders {
		r.Use(middleware.RealIP)
	}
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", healthCheck)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/api", func(api chi.Router) {
		submit := api.With()
		if cfg.Limiter != nil {
			submit = api.With(httpmiddleware.RateLimit(cfg.Limiter, cfg.Metrics))
		}
		submit.Post("/submit-lead", cfg.LeadsHandler.SubmitLead)

		api.Post("/assessment/preview", cfg.LeadsHandler.Preview)
		api.Get("/airtable-health", cfg.LeadsHandler.StoreHealth)
		api.Get("/validate-fields", cfg.LeadsHandler.ValidateFields)
		api.Post("/validate-fields", cfg.LeadsHandler.ValidateTestData)
		if cfg.Diagnostics != nil {
			api.Method(http.MethodPost, "/test-integration", cfg.Diagnostics)
		}
	})

	if cfg.AdminAuthSecret != "" {
		r.Route("/admin", func(admin chi.Router) {
			admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret, cfg.Logger))
			admin.Get("/submissions", cfg.LeadsHandler.ListSubmissions)
		})
	}

	return r
}

func healthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
