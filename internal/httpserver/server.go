package httpserver

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/abbasi303/Marketting-dashboard/internal/analytics"
	"github.com/abbasi303/Marketting-dashboard/internal/config"
	"github.com/abbasi303/Marketting-dashboard/internal/metrics"
	"github.com/abbasi303/Marketting-dashboard/internal/middleware"
	"github.com/abbasi303/Marketting-dashboard/internal/storage"
)

// Dependencies holds all external dependencies for the server.
type Dependencies struct {
	Cache        storage.ReportCache
	CacheBackend string
	Costs        *storage.CostTable
	Config       *config.Config
	Logger       *zap.Logger
	Metrics      *metrics.Metrics
	// RateLimit is optional; NewServer builds one when nil. main injects a
	// shared instance so it can run the periodic IP-limiter cleanup.
	RateLimit *middleware.RateLimitMiddleware
}

// Server wraps the HTTP handlers over the report cache and cost table.
type Server struct {
	cache        storage.ReportCache
	cacheBackend string
	costs        *storage.CostTable
	config       *config.Config
	logger       *zap.Logger
	metrics      *metrics.Metrics
	analyticsCfg analytics.Config
}

// NewServer constructs a new http.Handler with all routes registered.
func NewServer(deps *Dependencies) http.Handler {
	s := &Server{
		cache:        deps.Cache,
		cacheBackend: deps.CacheBackend,
		costs:        deps.Costs,
		config:       deps.Config,
		logger:       deps.Logger,
		metrics:      deps.Metrics,
		analyticsCfg: analyticsConfig(deps.Config),
	}
	if s.cacheBackend == "" {
		s.cacheBackend = "file"
	}

	recovery := middleware.NewRecoveryMiddleware(deps.Logger)
	logging := middleware.NewLoggingMiddleware(deps.Logger)
	auth := middleware.NewAuthMiddleware(deps.Config.Auth, deps.Logger)
	rateLimit := deps.RateLimit
	if rateLimit == nil {
		rateLimit = middleware.NewRateLimitMiddleware(deps.Config.RateLimit, deps.Logger)
	}
	rateLimit.SetMetrics(deps.Metrics)

	r := chi.NewRouter()
	r.Use(recovery.Handler)
	r.Use(logging.Handler)
	r.Use(s.instrument)
	r.Use(rateLimit.Handler)
	r.Use(auth.Handler)

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		// Uploads additionally get a per-client budget so one tenant cannot
		// exhaust the shared upload bucket.
		r.Method(http.MethodPost, "/upload",
			rateLimit.HandlerPerIP(
				auth.RequireRole(middleware.RoleEditor, http.HandlerFunc(s.handleUpload))))
		r.Post("/validate", s.handleValidate)
		r.Get("/dashboard", s.handleDashboard)
		r.Get("/dashboard/{section}", s.handleSection)
		r.Get("/analytics/report", s.handleAnalyticsReport)
	})

	return r
}

func analyticsConfig(cfg *config.Config) analytics.Config {
	return analytics.Config{
		TopCampaigns:          cfg.Analytics.TopCampaigns,
		TopChannels:           cfg.Analytics.TopChannels,
		TopCompanies:          cfg.Analytics.TopCompanies,
		CACSampleSize:         cfg.Analytics.CACSampleSize,
		CampaignROIMultiplier: cfg.Analytics.CampaignROIMultiplier,
		ChannelROIMultiplier:  cfg.Analytics.ChannelROIMultiplier,
	}
}

// instrument records request counts and latency per route.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.metrics == nil {
			next.ServeHTTP(w, r)
			return
		}
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		s.metrics.RecordHTTPRequest(r.URL.Path, r.Method, sw.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) jsonResponse(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) jsonResponseStatus(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) errorResponse(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
