// Package api serves layouts and allocations over HTTP.
//
// Routes:
//
//	GET  /healthz
//	GET  /v1/strategies
//	GET  /v1/layouts/{strategy}?rows=&columns=&group=
//	POST /v1/plates/{plateID}/allocations
//	GET  /v1/plates/{plateID}/annotations/{key}
//	DELETE /v1/plates/{plateID}/annotations/{key}
//
// Errors are returned as {"code": "...", "error": "..."} with the status
// derived from the error code.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/platekit/pkg/annotation"
	"github.com/matzehuels/platekit/pkg/config"
	perrors "github.com/matzehuels/platekit/pkg/errors"
)

// Server holds the dependencies of the HTTP handlers.
type Server struct {
	store    annotation.Store
	defaults config.Plate
	logger   *log.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request and allocation logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithDefaults sets the plate geometry used when a request omits it.
func WithDefaults(p config.Plate) Option {
	return func(s *Server) { s.defaults = p }
}

// New returns a server backed by store.
func New(store annotation.Store, opts ...Option) *Server {
	s := &Server{
		store:    store,
		defaults: config.Default().Plate,
		logger:   log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/strategies", s.handleStrategies)
		r.Get("/layouts/{strategy}", s.handleLayout)
		r.Route("/plates/{plateID}", func(r chi.Router) {
			r.Post("/allocations", s.handleAllocate)
			r.Get("/annotations/{key}", s.handleAnnotations)
			r.Delete("/annotations/{key}", s.handleClear)
		})
	})
	return r
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// errorResponse is the JSON body of a failed request.
type errorResponse struct {
	Code  perrors.Code `json:"code,omitempty"`
	Error string       `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err)
	}
	writeJSON(w, status, errorResponse{
		Code:  perrors.GetCode(err),
		Error: perrors.UserMessage(err),
	})
}

// statusFor maps error codes to HTTP status codes.
func statusFor(err error) int {
	switch perrors.GetCode(err) {
	case perrors.ErrCodeInvalidInput,
		perrors.ErrCodeInvalidDimensions,
		perrors.ErrCodeInvalidGroupSize,
		perrors.ErrCodeInvalidStrategy,
		perrors.ErrCodeInvalidWell,
		perrors.ErrCodeInvalidSeek,
		perrors.ErrCodeShortGroup:
		return http.StatusBadRequest
	case perrors.ErrCodeNotFound:
		return http.StatusNotFound
	case perrors.ErrCodeExhausted:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
