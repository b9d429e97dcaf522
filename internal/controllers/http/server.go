package httpctrl

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/Agrid-Dev/thermoprops/internal/ports"
	"github.com/Agrid-Dev/thermoprops/internal/telemetry"
)

const apiPrefix = "/api"

type Config struct {
	Addr              string
	Title             string
	Version           string
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration
	MetricsPath       string // served only when metrics are passed to New
}

func (c Config) withDefaults() Config {
	if c.Title == "" {
		c.Title = "Thermo API"
	}
	if c.Version == "" {
		c.Version = "1.0.0"
	}
	if c.ReadHeaderTimeout <= 0 {
		c.ReadHeaderTimeout = 5 * time.Second
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = 5 * time.Second
	}
	if c.MetricsPath == "" {
		c.MetricsPath = "/metrics"
	}
	return c
}

type Server struct {
	props   ports.PropertiesService
	calc    ports.BleveService
	cfg     Config
	log     *slog.Logger
	metrics *telemetry.Metrics
	srv     *http.Server
}

// New returns a runnable server. logger and m may be nil.
func New(props ports.PropertiesService, calc ports.BleveService, cfg Config, logger *slog.Logger, m *telemetry.Metrics) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	cfg = cfg.withDefaults()
	s := &Server{props: props, calc: calc, cfg: cfg, log: logger, metrics: m}

	mux := http.NewServeMux()

	// Every route is reachable with and without the /api prefix.
	s.handle(mux, http.MethodGet, "/healthz", s.handleHealthz)
	s.handle(mux, http.MethodGet, "/thermo/properties", s.handleProperties)
	s.handle(mux, http.MethodGet, "/version", s.handleVersion)
	if calc != nil {
		s.handle(mux, http.MethodPost, "/bleve", s.handleBleve)
	}

	if m != nil {
		mux.Handle("GET "+cfg.MetricsPath, m.Handler())
	}

	handler := Chain(
		Recovery(logger),
		CORS,
		RequestID(logger),
		Logging(logger),
	)(mux)

	s.srv = &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
	return s
}

func (s *Server) handle(mux *http.ServeMux, method, path string, h http.HandlerFunc) {
	for _, p := range []string{path, apiPrefix + path} {
		pattern := method + " " + p
		mux.Handle(pattern, s.instrument(pattern, h))
	}
}

// Handler exposes the full middleware stack, mostly for tests and embedding.
func (s *Server) Handler() http.Handler { return s.srv.Handler }

func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.log.Info("http controller listening", "addr", s.cfg.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		_ = s.srv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}
