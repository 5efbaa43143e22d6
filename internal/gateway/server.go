// Package gateway is the embedded admin HTTP server serving liveness,
// poll-loop status, and Prometheus metrics. It never receives updates;
// all inbound traffic still arrives through polling.
package gateway

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/botwire/botwire/internal/bot"
)

// Config holds the admin server settings.
type Config struct {
	Bind            string        `yaml:"bind"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Defaults applies default values to unset fields.
func (c *Config) Defaults() {
	if c.Bind == "" {
		c.Bind = "127.0.0.1:8199"
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 10 * time.Second
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 10 * time.Second
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = 5 * time.Second
	}
}

// Server serves the admin endpoints next to a running bot.
type Server struct {
	config    Config
	logger    *slog.Logger
	stats     *bot.Stats
	server    *http.Server
	startedAt time.Time
}

// NewServer creates a Server reading counters from stats.
func NewServer(config Config, logger *slog.Logger, stats *bot.Stats) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{config: config, logger: logger, stats: stats}
}

// router constructs the chi mux with all routes wired.
func (s *Server) router() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", s.handleHealth())
	r.Get("/status", s.handleStatus())
	r.Handle("/metrics", promhttp.Handler())
	return r
}

// Start begins serving in a background goroutine.
func (s *Server) Start() error {
	s.startedAt = time.Now()
	s.server = &http.Server{
		Addr:         s.config.Bind,
		Handler:      s.router(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(context.Background(), "tcp", s.config.Bind)
	if err != nil {
		return errors.New("gateway: listen failed: " + err.Error())
	}

	go func() {
		s.logger.Info("gateway listening", "addr", s.config.Bind)
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("gateway serve error", "error", err)
		}
	}()

	return nil
}

// Stop shuts the server down gracefully within the configured timeout.
func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	s.logger.Info("gateway shutting down")
	return s.server.Shutdown(shutdownCtx)
}
