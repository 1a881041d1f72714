package http

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"insights/internal/aggregate"
	"insights/internal/cache"
	applog "insights/internal/log"
	"insights/internal/middleware/ratelimit"
	"insights/internal/middleware/security"
	"insights/internal/personalization"
	"insights/internal/store"
)

// Options configures a Server. Engine and Transactions are required.
type Options struct {
	Engine       *personalization.Engine
	Transactions store.TransactionSource
	Logger       *applog.Logger

	CacheSize int
	CacheTTL  time.Duration

	// RequestsPerMinute per client; zero uses the limiter default.
	RequestsPerMinute int

	// TrustedProxies are extra CIDRs allowed to set X-Forwarded-For.
	TrustedProxies []string
}

type Server struct {
	http.Server
	engine *personalization.Engine
	source store.TransactionSource
	logger *applog.Logger

	views    *cache.LRUCache[aggregate.View]
	caches   *cache.Manager
	limiter  *ratelimit.Limiter
	detector *security.Detector

	now          func() time.Time
	shutdownOnce sync.Once
}

func NewServer(addr string, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	size := opts.CacheSize
	if size <= 0 {
		size = 16
	}

	s := &Server{
		engine:   opts.Engine,
		source:   opts.Transactions,
		logger:   logger,
		views:    cache.NewLRUCache[aggregate.View](size, opts.CacheTTL),
		caches:   cache.NewManager(),
		limiter:  ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RequestsPerMinute}),
		detector: security.NewDetector(),
		now:      time.Now,
	}

	for _, cidr := range opts.TrustedProxies {
		if err := s.detector.AddTrustedProxy(cidr); err != nil {
			logger.Warn("Ignoring trusted proxy", applog.FieldError, err)
		}
	}

	s.caches.Register(s.views)
	if opts.CacheTTL > 0 {
		s.caches.StartCleanup(opts.CacheTTL)
	}

	s.Addr = addr
	s.Handler = s.routes()
	s.ReadTimeout = 10 * time.Second
	s.WriteTimeout = 10 * time.Second
	s.IdleTimeout = 60 * time.Second
	s.MaxHeaderBytes = 1 << 16
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(applog.Middleware(s.logger))
	r.Use(applog.AccessLog)
	r.Use(middleware.Recoverer)
	r.Use(security.Headers(security.DefaultHeadersConfig()))
	r.Use(s.detector.Middleware)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Route("/api", func(r chi.Router) {
		r.Use(s.limiter.Middleware(s.detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "rate limit exceeded"})
		}))

		r.With(applog.ComponentMiddleware(applog.ComponentDashboard)).Group(func(r chi.Router) {
			r.Get("/dashboard", s.handleDashboard)
			r.Get("/categories", s.handleCategories)
		})

		r.Route("/goals", func(r chi.Router) {
			r.Use(applog.ComponentMiddleware(applog.ComponentGoals))
			r.Get("/", s.handleListGoals)
			r.Post("/", s.handleCreateGoal)
			r.Put("/{id}", s.handleUpdateGoal)
		})

		r.Route("/alerts", func(r chi.Router) {
			r.Use(applog.ComponentMiddleware(applog.ComponentAlerts))
			r.Get("/", s.handleListAlerts)
			r.Post("/", s.handleUpsertAlert)
			r.Get("/status", s.handleAlertStatus)
			r.Patch("/{id}", s.handleToggleAlert)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "method not allowed"})
	})
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady reports ready once the transaction source answers.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if _, err := s.source.ListTransactions(ctx); err != nil {
		applog.FromContext(ctx).WarnContext(ctx, "Readiness check failed", applog.FieldError, err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// Shutdown stops background cleanup, logs the protection counters and then
// stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		s.caches.Stop()

		limits := s.limiter.GetMetrics()
		s.logger.Info("HTTP protection stats",
			applog.FieldOperation, applog.OpShutdown,
			"rate_limited", limits.TotalHits,
			"clients", limits.ClientCount,
			"suspicious_requests", s.detector.GetMetrics().SuspiciousRequests)
	})
	err := s.Server.Shutdown(ctx)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
