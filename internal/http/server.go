// Package http is the JSON API over a data backend: record and
// directory CRUD, period reports, CSV import/export.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"registro/internal/backend"
	"registro/internal/cache"
	"registro/internal/report"
	"registro/internal/services"
	"registro/internal/transfer"
)

type Server struct {
	http.Server
	records   *services.RecordService
	directory *services.DirectoryService
	backend   backend.Backend
	importer  *transfer.Importer

	rateLimiter *rateLimiter
	metrics     *securityMetrics

	// Report results are cached per query; any write purges both.
	summaryCache *cache.LRUCache[summaryResponse]
	trendCache   *cache.LRUCache[report.Series]

	stopCacheCleanup chan struct{}
	shutdownOnce     sync.Once
}

// Options tune the server beyond its address.
type Options struct {
	CacheSize int
	CacheTTL  time.Duration
}

func defaultOptions() Options {
	return Options{CacheSize: 100, CacheTTL: 5 * time.Minute}
}

// NewServer wires routes over the given backend. publisher may be nil;
// record writes then skip queue notification and rely on the backlog
// scan.
func NewServer(addr string, be backend.Backend, publisher services.SyncPublisher, opts *Options) *Server {
	o := defaultOptions()
	if opts != nil {
		if opts.CacheSize > 0 {
			o.CacheSize = opts.CacheSize
		}
		if opts.CacheTTL > 0 {
			o.CacheTTL = opts.CacheTTL
		}
	}

	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		records:          services.NewRecordService(be, publisher),
		directory:        services.NewDirectoryService(be),
		backend:          be,
		importer:         transfer.NewImporter(be),
		rateLimiter:      newRateLimiter(),
		metrics:          &securityMetrics{},
		summaryCache:     cache.NewLRUCache[summaryResponse](o.CacheSize, o.CacheTTL),
		trendCache:       cache.NewLRUCache[report.Series](o.CacheSize, o.CacheTTL),
		stopCacheCleanup: make(chan struct{}),
	}

	go s.startCacheCleanup()

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	mux.HandleFunc("GET /api/records", s.withSecurityHeaders(s.handleListRecords))
	mux.HandleFunc("POST /api/records", s.withSecurityHeaders(s.handleCreateRecord))
	mux.HandleFunc("PUT /api/records/{id}", s.withSecurityHeaders(s.handleUpdateRecord))
	mux.HandleFunc("DELETE /api/records/{id}", s.withSecurityHeaders(s.handleDeleteRecord))

	mux.HandleFunc("GET /api/members", s.withSecurityHeaders(s.handleListMembers))
	mux.HandleFunc("POST /api/members", s.withSecurityHeaders(s.handleCreateMember))
	mux.HandleFunc("PUT /api/members/{id}", s.withSecurityHeaders(s.handleRenameMember))
	mux.HandleFunc("DELETE /api/members/{id}", s.withSecurityHeaders(s.handleDeleteMember))

	mux.HandleFunc("GET /api/reasons", s.withSecurityHeaders(s.handleListReasons))
	mux.HandleFunc("POST /api/reasons", s.withSecurityHeaders(s.handleCreateReason))
	mux.HandleFunc("PUT /api/reasons/{id}", s.withSecurityHeaders(s.handleUpdateReason))
	mux.HandleFunc("DELETE /api/reasons/{id}", s.withSecurityHeaders(s.handleDeleteReason))

	mux.HandleFunc("GET /api/report/summary", s.withSecurityHeaders(s.handleReportSummary))
	mux.HandleFunc("GET /api/report/trend", s.withSecurityHeaders(s.handleReportTrend))
	mux.HandleFunc("GET /api/report/reasons", s.withSecurityHeaders(s.handleTopReasons))
	mux.HandleFunc("GET /api/report/balance", s.withSecurityHeaders(s.handleOverallBalance))

	mux.HandleFunc("GET /api/export", s.withSecurityHeaders(s.handleExport))
	mux.HandleFunc("POST /api/import", s.withSecurityHeaders(s.handleImport))

	return s
}

// invalidateReports drops every cached report after a write.
func (s *Server) invalidateReports() {
	s.summaryCache.Purge()
	s.trendCache.Purge()
}

// startCacheCleanup runs periodic cleanup for both report caches.
func (s *Server) startCacheCleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			summaryCleaned := s.summaryCache.CleanExpired()
			trendCleaned := s.trendCache.CleanExpired()
			if summaryCleaned > 0 || trendCleaned > 0 {
				slog.Debug("Cache cleanup completed",
					"summary_entries_removed", summaryCleaned,
					"trend_entries_removed", trendCleaned)
			}
		case <-s.stopCacheCleanup:
			return
		}
	}
}

// Shutdown stops the cleanup goroutines and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.stopCacheCleanup != nil {
			close(s.stopCacheCleanup)
		}
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// withSecurityHeaders adds security headers, rate limiting and request
// logging around a handler.
func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)
		requestID := generateRequestID()

		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP)

		if isMutating(r.Method) && !s.rateLimiter.allow(clientIP, s.metrics) {
			slog.WarnContext(ctx, "Rate limit exceeded", "client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", clientIP)
	}
}

type requestIDKey struct{}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodDelete:
		return true
	}
	return false
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
