package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/jonathan/cv-builder/internal/export"
	"github.com/jonathan/cv-builder/internal/logging"
	"github.com/jonathan/cv-builder/internal/server/middleware"
	"github.com/jonathan/cv-builder/internal/server/ratelimit"
	"github.com/jonathan/cv-builder/internal/store"
)

// ArtifactStore keeps exported files and returns a download URL.
// *storage.S3 implements it.
type ArtifactStore interface {
	Store(ctx context.Context, name, contentType string, body []byte) (key, url string, err error)
}

// Options configures the HTTP listener.
type Options struct {
	Addr            string
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
	RateLimit       *ratelimit.Config
}

// Deps are the services behind the API. Auth, CVs and Artifacts may be nil;
// the routes they back then answer 503.
type Deps struct {
	Auth      *AuthService
	Tokens    *JWTService
	CVs       *store.Service
	Exports   *export.Pipeline
	Artifacts ArtifactStore
	Logger    logging.Logger
	// Ping reports backing store health for GET /health.
	Ping func(ctx context.Context) error
}

// Server is the HTTP API.
type Server struct {
	opts        Options
	deps        Deps
	logger      logging.Logger
	rateLimiter *ratelimit.Limiter
	progress    *progressHub
	handler     http.Handler
}

// New wires routes and middleware.
func New(opts Options, deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = logging.Discard()
	}
	if deps.Exports == nil {
		deps.Exports = export.NewPipeline(nil, nil, nil, deps.Logger)
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}

	s := &Server{
		opts:        opts,
		deps:        deps,
		logger:      deps.Logger,
		rateLimiter: ratelimit.NewLimiter(opts.RateLimit),
		progress:    newProgressHub(),
	}
	s.observeExports()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /templates", s.handleTemplates)
	mux.HandleFunc("POST /render", s.handleRender)
	mux.HandleFunc("POST /stats", s.handleStats)

	mux.HandleFunc("POST /export/pdf", s.handleExportPDF)
	mux.HandleFunc("POST /export/image", s.handleExportImage)
	mux.HandleFunc("POST /export/print", s.handleExportPrint)
	mux.HandleFunc("GET /export/events/{documentId}", s.handleExportEvents)

	mux.HandleFunc("POST /auth/register", s.handleRegister)
	mux.HandleFunc("POST /auth/login", s.handleLogin)
	mux.HandleFunc("POST /auth/forgot-password", s.handleForgotPassword)
	mux.HandleFunc("POST /auth/reset-password", s.handleResetPassword)

	if deps.Tokens != nil {
		authed := middleware.AuthMiddleware(deps.Tokens.AsTokenValidator(), s.unauthorized)
		mux.Handle("POST /auth/logout", authed(http.HandlerFunc(s.handleLogout)))
		mux.Handle("GET /auth/me", authed(http.HandlerFunc(s.handleMe)))
		mux.Handle("GET /cvs", authed(http.HandlerFunc(s.handleListCVs)))
		mux.Handle("POST /cvs", authed(http.HandlerFunc(s.handleCreateCV)))
		mux.Handle("GET /cvs/{id}", authed(http.HandlerFunc(s.handleGetCV)))
		mux.Handle("PUT /cvs/{id}", authed(http.HandlerFunc(s.handleUpdateCV)))
		mux.Handle("DELETE /cvs/{id}", authed(http.HandlerFunc(s.handleDeleteCV)))
		mux.Handle("PUT /cvs/{id}/{section}/{entityId}", authed(http.HandlerFunc(s.handleReplaceEntity)))
		mux.Handle("DELETE /cvs/{id}/{section}/{entityId}", authed(http.HandlerFunc(s.handleRemoveEntity)))
		mux.Handle("POST /cvs/{id}/{section}/{entityId}/move", authed(http.HandlerFunc(s.handleMoveEntity)))
	}

	s.handler = s.withRateLimit(s.withLogging(s.withCORS(mux)))
	return s
}

// Handler returns the root handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      120 * time.Second, // exports drive a headless browser
		IdleTimeout:       60 * time.Second,
	}
	defer s.rateLimiter.Stop()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "server starting", "addr", s.opts.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info(ctx, "shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.progress.closeAll()
	s.logger.Info(ctx, "server stopped")
	return nil
}

func (s *Server) withCORS(next http.Handler) http.Handler {
	allowed := s.opts.AllowedOrigins
	if len(allowed) == 0 {
		allowed = []string{"*"}
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := allowedOrigin(allowed, r.Header.Get("Origin")); origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			if origin != "*" {
				w.Header().Add("Vary", "Origin")
			}
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Expose-Headers", "Content-Disposition, X-Export-Pages")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func allowedOrigin(allowed []string, origin string) string {
	for _, a := range allowed {
		if a == "*" {
			return "*"
		}
		if origin != "" && strings.EqualFold(a, origin) {
			return origin
		}
	}
	return ""
}

func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(clientID(r), r.URL.Path, r.Method)
		if info.Limit > 0 {
			w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
			w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
			w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
		}
		if !allowed {
			s.rateLimitResponse(w, r, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) rateLimitResponse(w http.ResponseWriter, r *http.Request, info ratelimit.Info) {
	body := map[string]any{
		"error": "Too many requests. Please try again later.",
		"limit": info.Limit,
	}
	if info.RetryAfter > 0 {
		secs := int(info.RetryAfter.Seconds() + 0.999)
		body["retry_after"] = secs
		w.Header().Set("Retry-After", fmt.Sprintf("%d", secs))
	}
	s.logger.Warn(r.Context(), "rate limit exceeded", "client", clientID(r), "path", r.URL.Path, "limit", info.Limit)
	s.jsonResponse(w, http.StatusTooManyRequests, body)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Flush keeps event streams working through the logging middleware.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info(r.Context(), "request",
			"method", r.Method, "path", r.URL.Path, "status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(), "client", clientID(r))
	})
}

// clientID identifies the caller by remote IP.
func clientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.deps.Ping != nil {
		if err := s.deps.Ping(r.Context()); err != nil {
			s.logger.Error(r.Context(), "health check failed", "error", err)
			s.jsonResponse(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error(context.Background(), "failed to encode response", "error", err)
	}
}

// errorResponse writes the user-visible form of err. Details of server-side
// failures are logged only.
func (s *Server) errorResponse(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError || isExportFailure(err) {
		s.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "status", status, "error", err)
	}

	var authErr *AuthError
	if errors.As(err, &authErr) {
		s.jsonResponse(w, status, authErr)
		return
	}
	s.jsonResponse(w, status, map[string]string{"error": UserMessage(err)})
}

func (s *Server) badRequest(w http.ResponseWriter, message string) {
	s.jsonResponse(w, http.StatusBadRequest, map[string]string{"error": message})
}

func (s *Server) unavailable(w http.ResponseWriter, what string) {
	s.jsonResponse(w, http.StatusServiceUnavailable, map[string]string{"error": what + " is not configured"})
}

func (s *Server) unauthorized(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusUnauthorized, newAuthError(CodeInvalidToken, "Please sign in again."))
}

// maxBodyBytes bounds request bodies; photos travel inline as data URLs.
const maxBodyBytes = 8 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}
