package server

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"switchboard-ai/hermes/pkg/config"
	"switchboard-ai/hermes/pkg/proxy/handlers"
	"switchboard-ai/hermes/pkg/proxy/middleware"
	"switchboard-ai/hermes/pkg/registry"
	"switchboard-ai/hermes/pkg/security/auth"
	"switchboard-ai/hermes/pkg/telemetry/metrics"
	"switchboard-ai/hermes/pkg/upstream"
)

// Server is the gateway HTTP server. It wires the registry, upstream
// client, metrics, and audit recorder into the endpoint handlers and runs
// the listener with graceful shutdown.
type Server struct {
	cfg       *config.Config
	registry  *registry.Registry
	client    *upstream.Client
	collector *metrics.Collector
	recorder  handlers.Recorder
	version   string
	logger    *slog.Logger

	httpServer   *http.Server
	watcher      *registry.Watcher
	shutdownChan chan struct{}
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// New creates a gateway server. The collector and recorder may be nil when
// metrics or auditing are disabled.
func New(cfg *config.Config, reg *registry.Registry, client *upstream.Client, collector *metrics.Collector, recorder handlers.Recorder, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	return &Server{
		cfg:          cfg,
		registry:     reg,
		client:       client,
		collector:    collector,
		recorder:     recorder,
		version:      version,
		logger:       logger,
		shutdownChan: make(chan struct{}),
	}
}

// Start starts the HTTP server and blocks until shutdown. It also starts
// the registry file watcher when watching is enabled.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.mu.Unlock()

	watchCtx, cancelWatch := context.WithCancel(ctx)
	defer cancelWatch()
	if err := s.startWatcher(watchCtx); err != nil {
		return err
	}

	s.httpServer = &http.Server{
		Addr:           s.cfg.Proxy.ListenAddress,
		Handler:        s.Handler(),
		ReadTimeout:    s.cfg.Proxy.ReadTimeout,
		WriteTimeout:   s.cfg.Proxy.WriteTimeout,
		IdleTimeout:    s.cfg.Proxy.IdleTimeout,
		MaxHeaderBytes: s.cfg.Proxy.MaxHeaderBytes,
	}

	if s.cfg.Security.TLS.Enabled {
		tlsConfig, err := s.configureTLS()
		if err != nil {
			return fmt.Errorf("failed to configure TLS: %w", err)
		}
		s.httpServer.TLSConfig = tlsConfig
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting gateway server",
			"address", s.cfg.Proxy.ListenAddress,
			"tls_enabled", s.cfg.Security.TLS.Enabled,
			"providers", s.registry.Snapshot().ProviderCount(),
		)

		var err error
		if s.cfg.Security.TLS.Enabled {
			err = s.httpServer.ListenAndServeTLS(
				s.cfg.Security.TLS.CertFile,
				s.cfg.Security.TLS.KeyFile,
			)
		} else {
			err = s.httpServer.ListenAndServe()
		}

		if err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case sig := <-sigChan:
		s.logger.Info("received shutdown signal", "signal", sig.String())
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	case <-s.shutdownChan:
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the server, the watcher, and drains the
// audit recorder.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		s.logger.Info("initiating graceful shutdown",
			"timeout", s.cfg.Proxy.ShutdownTimeout.String(),
		)

		shutdownCtx, cancel := context.WithTimeout(ctx, s.cfg.Proxy.ShutdownTimeout)
		defer cancel()

		if s.watcher != nil {
			if err := s.watcher.Stop(); err != nil {
				s.logger.Warn("error stopping registry watcher", "error", err)
			}
		}

		if s.httpServer != nil {
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				s.logger.Error("error during server shutdown", "error", err)
				shutdownErr = fmt.Errorf("server shutdown error: %w", err)
			}
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		s.logger.Info("gateway server stopped")
	})

	return shutdownErr
}

// Handler returns the fully wired HTTP handler, useful for tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	authMiddleware := auth.NewMiddleware(auth.NewTokenValidator(s.registry))

	chatHandler := handlers.NewChatHandler(s.registry, s.client, s.collector, s.recorder, s.logger)
	modelsHandler := handlers.NewModelsHandler(s.registry, s.client, s.collector, s.logger)
	reloadHandler := handlers.NewReloadHandler(s.registry, s.collector, s.logger)
	healthHandler := handlers.NewHealthHandler()
	readyHandler := handlers.NewReadyHandler(s.registry)
	rootHandler := handlers.NewRootHandler(s.registry, s.version)

	// Bounded routes get the timeout middleware. The chat route is excluded
	// so SSE relays are never cut off mid-stream; it is bounded by the
	// upstream client timeout instead.
	bounded := middleware.TimeoutMiddleware(s.cfg.Upstream.Timeout)

	mux.Handle("/v1/chat/completions", authMiddleware.Handle(chatHandler))
	mux.Handle("/v1/models", bounded(modelsHandler))
	mux.Handle("/v1/reload", bounded(reloadHandler))
	mux.Handle("/health", bounded(healthHandler))
	mux.Handle("/ready", bounded(readyHandler))
	mux.Handle("/", rootHandler)

	if s.collector != nil && s.cfg.Telemetry.Metrics.Enabled {
		path := s.cfg.Telemetry.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		mux.Handle(path, s.collector.Handler())
	}

	var handler http.Handler = mux
	handler = middleware.CORSMiddleware(s.cfg.Proxy.CORS)(handler)
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.RequestIDMiddleware(handler)
	handler = middleware.RecoveryMiddleware(handler)

	return handler
}

// startWatcher starts the registry file watcher when enabled.
func (s *Server) startWatcher(ctx context.Context) error {
	if !s.cfg.Registry.Watch {
		return nil
	}

	watcher, err := registry.NewWatcher(s.registry, s.cfg.Registry.WatchDebounce, s.logger)
	if err != nil {
		return fmt.Errorf("failed to create registry watcher: %w", err)
	}
	s.watcher = watcher

	go func() {
		if err := watcher.Watch(ctx); err != nil {
			s.logger.Error("registry watcher exited", "error", err)
		}
	}()

	return nil
}

// configureTLS validates the certificate configuration and returns the TLS
// settings for the listener.
func (s *Server) configureTLS() (*tls.Config, error) {
	tlsCfg := s.cfg.Security.TLS

	if tlsCfg.CertFile == "" {
		return nil, fmt.Errorf("TLS cert file not specified")
	}
	if tlsCfg.KeyFile == "" {
		return nil, fmt.Errorf("TLS key file not specified")
	}
	if _, err := os.Stat(tlsCfg.CertFile); os.IsNotExist(err) {
		return nil, fmt.Errorf("TLS cert file not found: %s", tlsCfg.CertFile)
	}
	if _, err := os.Stat(tlsCfg.KeyFile); os.IsNotExist(err) {
		return nil, fmt.Errorf("TLS key file not found: %s", tlsCfg.KeyFile)
	}

	return &tls.Config{
		MinVersion: tls.VersionTLS13,
	}, nil
}

// Stop requests a graceful shutdown from another goroutine.
func (s *Server) Stop() {
	select {
	case s.shutdownChan <- struct{}{}:
	default:
	}
}

// IsRunning reports whether the server is serving.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}
