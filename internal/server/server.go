package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/vl4dimr/tesis-system-unap/internal/config"
	"github.com/vl4dimr/tesis-system-unap/internal/db"
	"github.com/vl4dimr/tesis-system-unap/internal/engine"
	"github.com/vl4dimr/tesis-system-unap/internal/logging"
	"github.com/vl4dimr/tesis-system-unap/internal/metrics"
	"github.com/vl4dimr/tesis-system-unap/internal/report"
	"github.com/vl4dimr/tesis-system-unap/internal/server/middleware"
	"github.com/vl4dimr/tesis-system-unap/internal/server/ratelimit"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

// AuditStore persists validation and formatting runs.
type AuditStore interface {
	SaveRun(ctx context.Context, input *db.RunInput) (*db.Run, error)
	GetRun(ctx context.Context, id uuid.UUID) (*db.Run, error)
}

// Options wires a Server. Engine and Config are required.
type Options struct {
	Config    *config.Config
	Engine    *engine.Engine
	Audit     AuditStore                // optional
	Tokens    middleware.TokenValidator // nil disables service auth
	RateLimit *ratelimit.Config         // nil uses the environment
	Metrics   *metrics.Metrics
	Logger    *logrus.Entry
	Closers   []func() // run after shutdown
}

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	cfg         *config.Config
	engine      *engine.Engine
	audit       AuditStore
	tokens      middleware.TokenValidator
	rateLimiter *ratelimit.Limiter
	metrics     *metrics.Metrics
	log         *logrus.Entry
	closers     []func()
}

// New creates a new server instance
func New(opts Options) (*Server, error) {
	if opts.Config == nil || opts.Engine == nil {
		return nil, fmt.Errorf("server requires a config and an engine")
	}
	log := opts.Logger
	if log == nil {
		log = logging.Discard()
	}
	rl := opts.RateLimit
	if rl == nil {
		rl = ratelimit.NewConfig(opts.Config.RateLimit)
	}

	s := &Server{
		cfg:         opts.Config,
		engine:      opts.Engine,
		audit:       opts.Audit,
		tokens:      opts.Tokens,
		rateLimiter: ratelimit.NewLimiter(rl),
		metrics:     opts.Metrics,
		log:         log.WithField("component", "http"),
		closers:     opts.Closers,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /config", s.handleConfig)
	mux.HandleFunc("GET /reglas", s.handleRules)
	mux.HandleFunc("GET /reportes/{id}", s.handleReport)
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics.Handler())
	}

	// Document routes carry the service token when auth is enabled
	mux.Handle("POST /validar", s.protect(http.HandlerFunc(s.handleValidate)))
	mux.Handle("POST /formatear", s.protect(http.HandlerFunc(s.handleFormat)))

	s.httpServer = &http.Server{
		Addr:              opts.Config.Addr(),
		Handler:           s.withRateLimit(s.withLogging(s.withCORS(mux))),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       2 * time.Minute,
		WriteTimeout:      5 * time.Minute, // formatting large theses
		IdleTimeout:       60 * time.Second,
	}

	return s, nil
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start listens until SIGINT or SIGTERM, then drains in-flight requests.
func (s *Server) Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return s.Run(ctx)
}

// Run serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.WithFields(logrus.Fields{
			"addr":    s.httpServer.Addr,
			"workers": s.engine.Workers(),
			"reglas":  s.engine.Catalog().Version(),
		}).Info("server starting")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			s.shutdownResources()
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}
	s.log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.shutdownResources()
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.shutdownResources()
	s.log.Info("server stopped")
	return nil
}

func (s *Server) shutdownResources() {
	s.rateLimiter.Stop()
	for _, c := range s.closers {
		c()
	}
}

func (s *Server) protect(h http.Handler) http.Handler {
	if s.tokens == nil {
		return h
	}
	return middleware.AuthMiddleware(s.tokens)(h)
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", s.cfg.CORSOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, Accept, "+RequestIDHeader)
		w.Header().Set("Access-Control-Expose-Headers", headerChanges+", "+headerReportID+", "+RequestIDHeader)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := s.extractClientID(r)

		allowed, info := s.rateLimiter.Allow(clientID, r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, clientID, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the status written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// withLogging tags each request with an id and logs its outcome.
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := r.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, requestID)

		entry := s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"method":     r.Method,
			"path":       r.URL.Path,
		})
		r = r.WithContext(withLogger(r.Context(), entry))
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		took := time.Since(start)
		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		s.metrics.ObserveRequest(r.Method, route, rec.status, took)

		fields := logrus.Fields{"status": rec.status, "duration_ms": took.Milliseconds()}
		switch {
		case rec.status >= 500:
			entry.WithFields(fields).Error("request failed")
		case rec.status >= 400:
			entry.WithFields(fields).Warn("request rejected")
		default:
			entry.WithFields(fields).Info("request completed")
		}
	})
}

type loggerKey struct{}

func withLogger(ctx context.Context, entry *logrus.Entry) context.Context {
	return context.WithValue(ctx, loggerKey{}, entry)
}

// logger returns the request-scoped logger.
func (s *Server) logger(r *http.Request) *logrus.Entry {
	if entry, ok := r.Context().Value(loggerKey{}).(*logrus.Entry); ok {
		return entry
	}
	return s.log
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.WithError(err).Error("error encoding JSON response")
	}
}

// errorResponse writes err as {"detail": ...} with the mapped status.
func (s *Server) errorResponse(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	if status >= 500 && status != http.StatusServiceUnavailable && status != http.StatusGatewayTimeout {
		s.logger(r).WithError(err).Error("internal error")
	}
	if status == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", "1")
	}
	s.jsonResponse(w, status, errorDetail(err))
}

func errorDetail(err error) report.ErrorDetail {
	var (
		validation *ErrValidation
		tooLarge   *ErrPayloadTooLarge
	)
	switch {
	case errors.As(err, &validation):
		return report.ErrorDetail{Detail: validation.Message}
	case errors.As(err, &tooLarge):
		return report.ErrorDetail{Detail: fmt.Sprintf("El archivo excede el tamaño máximo de %d bytes", tooLarge.Limit)}
	case errors.Is(err, engine.ErrOverloaded):
		return report.ErrorDetail{Detail: "El servicio está saturado; intente nuevamente en unos segundos"}
	case errors.Is(err, engine.ErrQueueTimeout):
		return report.ErrorDetail{Detail: "Tiempo de espera agotado en la cola de procesamiento"}
	}
	return report.Detail(err)
}

// extractClientID extracts the client identifier from the request.
// X-Forwarded-For is ignored since the service may not sit behind a trusted proxy.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response.
func (s *Server) rateLimitResponse(w http.ResponseWriter, clientID string, info ratelimit.Info) {
	if info.RetryAfter > 0 {
		seconds := max(int(info.RetryAfter.Seconds()), 1)
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
	}

	s.log.WithFields(logrus.Fields{
		"client":    clientID,
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}).Warn("rate limit exceeded")

	s.jsonResponse(w, http.StatusTooManyRequests, report.ErrorDetail{
		Detail: "Demasiadas solicitudes; intente nuevamente más tarde",
	})
}
