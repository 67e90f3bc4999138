package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"ridebooking/internal/config"
	"ridebooking/internal/domain"
	"ridebooking/internal/logging"
	"ridebooking/internal/metrics"
	"ridebooking/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
)

// RouterDeps collects what the HTTP surface needs. Checker may be nil.
type RouterDeps struct {
	HTTP     config.HTTPConfig
	CORS     config.CORSConfig
	Auth     *BearerAuth
	Bookings domain.BookingService
	Tracking domain.TrackingService
	Checker  domain.StoreChecker
	Logger   *zerolog.Logger
}

// NewRouter builds the handler chain shared by the long-running server and the Lambda entry.
func NewRouter(deps RouterDeps) http.Handler {
	logger := logging.Component(deps.Logger, "http")
	h := NewHandlers(deps.Bookings, deps.Tracking, deps.Checker, deps.Auth, logger)

	bookingPath := deps.HTTP.BookingPath
	if bookingPath == "" {
		bookingPath = models.DefaultHTTPPath
	}
	trackingPath := deps.HTTP.TrackingPath
	if trackingPath == "" {
		trackingPath = models.DefaultTrackingPath
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(loggingMiddleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware(deps.CORS))

	r.HandleFunc(bookingPath, h.BookRide)
	r.HandleFunc(trackingPath, h.UpdateLocation)
	r.Get("/", h.Root)
	r.Get("/healthz", h.Healthz)
	r.Get("/readyz", h.Readyz)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path == bookingPath || req.URL.Path == trackingPath {
			writeMessage(w, http.StatusMethodNotAllowed, models.MsgMethodNotAllowed)
			return
		}
		writeMessage(w, http.StatusMethodNotAllowed, "Method Not Allowed.")
	})

	return r
}

// corsMiddleware reflects the request origin unless an allow-list is configured.
// Preflight requests are answered with 200 before routing.
func corsMiddleware(cfg config.CORSConfig) func(http.Handler) http.Handler {
	opts := cors.Options{
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch,
			http.MethodDelete, http.MethodHead, http.MethodOptions,
		},
		AllowedHeaders: []string{"*"},
		MaxAge:         cfg.MaxAge,
	}

	if len(cfg.AllowedOrigins) == 0 {
		opts.AllowOriginFunc = func(_ *http.Request, _ string) bool { return true }
	} else {
		opts.AllowedOrigins = cfg.AllowedOrigins
	}
	return cors.Handler(opts)
}

func loggingMiddleware(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(recorder, r)
			dur := time.Since(start)

			metrics.IncHTTP(routeLabel(r), strconv.Itoa(recorder.status))

			logger.Info().
				Str("request_id", middleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", recorder.status).
				Dur("duration", dur).
				Msg("http request")
		})
	}
}

// unmatchedRoute labels requests no route matched, so arbitrary paths never become series.
const unmatchedRoute = "unmatched"

func routeLabel(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
		return rctx.RoutePattern()
	}
	return unmatchedRoute
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// HTTPServer runs the router on the configured port.
type HTTPServer struct {
	server *http.Server
	logger zerolog.Logger
}

func NewHTTPServer(cfg config.HTTPConfig, handler http.Handler, logger *zerolog.Logger) *HTTPServer {
	return &HTTPServer{
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           handler,
			ReadHeaderTimeout: time.Duration(cfg.ReadHeaderTimeoutMS) * time.Millisecond,
			WriteTimeout:      time.Duration(cfg.WriteTimeoutMS) * time.Millisecond,
		},
		logger: logging.Component(logger, "http"),
	}
}

func (s *HTTPServer) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
