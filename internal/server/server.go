// Package server provides the HTTP API for CV analysis, history, reports and
// headshot feedback.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/jonathan/cv-architect/internal/analysis"
	"github.com/jonathan/cv-architect/internal/app"
	"github.com/jonathan/cv-architect/internal/config"
	"github.com/jonathan/cv-architect/internal/ingestion"
	"github.com/jonathan/cv-architect/internal/rendering"
	"github.com/jonathan/cv-architect/internal/server/middleware"
	"github.com/jonathan/cv-architect/internal/server/ratelimit"
	"github.com/jonathan/cv-architect/internal/types"
)

// maxBodyBytes bounds request bodies: one maximum-size upload plus form overhead.
const maxBodyBytes = ingestion.MaxFileSize + 1<<20

// PDFExporter renders a history item's report as PDF.
type PDFExporter interface {
	ReportPDF(ctx context.Context, item types.HistoryItem) (rendering.Document, error)
}

// JobFetcher reads a job description from a URL.
type JobFetcher func(ctx context.Context, url string) (string, error)

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	controller *app.Controller
	history    app.HistoryStore
	pdf        PDFExporter
	fetchJob   JobFetcher
	jwtService *JWTService
	passwords  *config.PasswordConfig
	limiter    *ratelimit.Limiter
	logger     *slog.Logger
}

// Config holds server configuration
type Config struct {
	Port       int
	Controller *app.Controller
	History    app.HistoryStore
	// PDF is optional; without it PDF export reports PresentationBlocked.
	PDF PDFExporter
	// JobFetcher is optional; without it jobUrl inputs are rejected.
	JobFetcher JobFetcher
	// JWT enables bearer authentication when non-nil.
	JWT       *config.JWTConfig
	Passwords *config.PasswordConfig
	// RateLimiter is optional; the caller owns it and calls Stop.
	RateLimiter *ratelimit.Limiter
	Logger      *slog.Logger
}

// New creates a new server instance
func New(cfg Config) (*Server, error) {
	if cfg.Controller == nil {
		return nil, errors.New("server requires a controller")
	}
	if cfg.History == nil {
		return nil, errors.New("server requires a history store")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Port == 0 {
		cfg.Port = config.DefaultPort
	}

	s := &Server{
		controller: cfg.Controller,
		history:    cfg.History,
		pdf:        cfg.PDF,
		fetchJob:   cfg.JobFetcher,
		passwords:  cfg.Passwords,
		limiter:    cfg.RateLimiter,
		logger:     cfg.Logger,
	}
	if cfg.JWT != nil {
		s.jwtService = NewJWTService(cfg.JWT)
	}

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      300 * time.Second, // one model call can take minutes
		IdleTimeout:       60 * time.Second,
	}
	return s, nil
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /auth/token", s.handleToken)

	mux.HandleFunc("POST /analyses", s.handleCreateAnalysis)
	mux.HandleFunc("POST /analyses/stream", s.handleAnalysisStream)

	mux.HandleFunc("GET /history", s.handleListHistory)
	mux.HandleFunc("GET /history/{id}", s.handleGetHistory)
	mux.HandleFunc("DELETE /history/{id}", s.handleDeleteHistory)
	mux.HandleFunc("POST /history/{id}/select", s.handleSelectHistory)
	mux.HandleFunc("GET /history/{id}/report", s.handleReport)
	mux.HandleFunc("GET /history/{id}/report.pdf", s.handleReportPDF)
	mux.HandleFunc("GET /history/{id}/cover-letter.doc", s.handleCoverLetter)

	mux.HandleFunc("GET /templates/{kind}", s.handleTemplate)
	mux.HandleFunc("POST /headshots", s.handleHeadshot)

	mux.HandleFunc("GET /state", s.handleState)
	mux.HandleFunc("PUT /state/tab", s.handleSelectTab)
	mux.HandleFunc("POST /state/reset", s.handleReset)

	// Rate limiting sits inside auth so rejected tokens never spend quota.
	handler := s.withRateLimit(mux)
	if s.jwtService != nil {
		handler = middleware.AuthMiddleware(s.jwtService.AsTokenValidator(), "/health", "/auth/token")(handler)
	}
	return s.withLogging(s.withCORS(s.withBodyLimit(handler)))
}

// Start listens until ctx is canceled or the process is interrupted, then
// shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", s.httpServer.Addr, "auth", s.jwtService != nil)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) withBodyLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		}
		next.ServeHTTP(w, r)
	})
}

// withRateLimit rejects clients that exceeded their quota on an expensive endpoint.
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	if s.limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.limiter.Allow(clientID(r), r.Method, r.URL.Path)
		if info.Limit > 0 {
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		}
		if !allowed {
			retry := int(math.Ceil(info.RetryAfter.Seconds()))
			w.Header().Set("Retry-After", strconv.Itoa(max(1, retry)))
			s.logger.Warn("rate limit exceeded", "client", clientID(r), "path", r.URL.Path)
			s.errorResponse(w, analysis.NewFailure(analysis.KindQuotaExceeded, nil))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientID identifies the caller by remote IP.
func clientID(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Flush keeps SSE streaming working through the recorder.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
			"remote", r.RemoteAddr,
		)
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("failed to encode JSON response", "error", err)
	}
}

// errorResponse writes an error JSON response with the status derived from err.
func (s *Server) errorResponse(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "status", status, "error", err)
	}
	s.jsonResponse(w, status, errorBody(err))
}

// writeDocument sends a downloadable document.
func (s *Server) writeDocument(w http.ResponseWriter, doc rendering.Document) {
	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Disposition", doc.ContentDisposition())
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(doc.Body); err != nil {
		s.logger.Warn("failed to write document", "file", doc.Filename, "error", err)
	}
}
