// Package http exposes the expense service and its analytics as a JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"tally/internal/analytics"
	"tally/internal/cache"
	"tally/internal/log"
	"tally/internal/middleware/ratelimit"
	"tally/internal/middleware/security"
	"tally/internal/services"
)

type Options struct {
	RateLimitPerMinute int
	CacheTTL           time.Duration
	CacheSize          int
	Logger             *log.Logger
	// ReadyCheck reports whether backing services are usable. Nil means
	// always ready.
	ReadyCheck func(ctx context.Context) error
	// Now overrides the clock used for default reference dates.
	Now func() time.Time
}

type Server struct {
	http.Server

	svc         *services.ExpenseService
	logger      *log.Logger
	rateLimiter *ratelimit.Limiter
	ipResolver  *security.IPResolver
	readyCheck  func(ctx context.Context) error
	now         func() time.Time

	dashCache *cache.LRUCache[analytics.Dashboard]
	cacheMgr  *cache.Manager
	dashGroup singleflight.Group

	shutdownOnce sync.Once
}

// NewServer wires routes and middleware around svc.
func NewServer(addr string, svc *services.ExpenseService, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.Discard()
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 5 * time.Minute
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = 128
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	// Only the built-in CIDRs are used, which always parse.
	resolver, _ := security.NewIPResolver()

	s := &Server{
		svc:         svc,
		logger:      opts.Logger,
		rateLimiter: ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		ipResolver:  resolver,
		readyCheck:  opts.ReadyCheck,
		now:         opts.Now,
		dashCache:   cache.NewLRUCache[analytics.Dashboard](opts.CacheSize, opts.CacheTTL),
		cacheMgr:    cache.NewManager(opts.Logger),
	}
	s.cacheMgr.Register(s.dashCache)
	s.cacheMgr.StartCleanup(opts.CacheTTL)

	limited := s.rateLimiter.Middleware(s.ipResolver.ClientIP, s.onRateLimited)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /api/expenses", s.handleListExpenses)
	mux.Handle("POST /api/expenses", limited(http.HandlerFunc(s.handleAddExpense)))
	mux.HandleFunc("DELETE /api/expenses", s.handleResetExpenses)

	mux.HandleFunc("GET /api/dashboard", s.handleDashboard)
	mux.HandleFunc("GET /api/impulse", s.handleImpulseStats)
	mux.HandleFunc("GET /api/categories", s.handleCategories)
	mux.HandleFunc("GET /api/categories/grouped", s.handleGroupedCategories)

	mux.HandleFunc("GET /load_transcript", s.handleLoadTranscript)
	mux.Handle("POST /save_transcript", limited(http.HandlerFunc(s.handleSaveTranscript)))

	var handler http.Handler = mux
	handler = security.Headers(security.DefaultHeadersConfig())(handler)
	handler = log.Middleware(opts.Logger)(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Shutdown stops background loops and the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.cacheMgr.Stop()
		s.rateLimiter.Stop()
		m := s.rateLimiter.Metrics()
		s.logger.Info("Rate limiter stopped",
			"allowed", m.Allowed, "rejected", m.Rejected, "clients", m.ClientCount)
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func (s *Server) onRateLimited(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WithComponent(log.ComponentRateLimit).WarnContext(r.Context(), "Rate limit exceeded",
		log.NewFields().WithClientIP(s.ipResolver.ClientIP(r)).ToSlice()...)
	ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded, please try again later").Write(w)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.readyCheck != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.readyCheck(ctx); err != nil {
			log.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed", log.FieldError, err)
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
