package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"switchboard-ai/hermes/pkg/audit"
	"switchboard-ai/hermes/pkg/audit/retention"
	"switchboard-ai/hermes/pkg/audit/storage"
	"switchboard-ai/hermes/pkg/cli"
	"switchboard-ai/hermes/pkg/config"
	"switchboard-ai/hermes/pkg/proxy/handlers"
	"switchboard-ai/hermes/pkg/registry"
	"switchboard-ai/hermes/pkg/server"
	"switchboard-ai/hermes/pkg/telemetry/logging"
	"switchboard-ai/hermes/pkg/telemetry/metrics"
	"switchboard-ai/hermes/pkg/upstream"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the Hermes gateway server",
	Long: `Start the Hermes gateway server with the specified configuration.

The server listens on the configured address and relays OpenAI-compatible
chat completion requests to the provider selected by the model prefix.

Examples:
  # Start with default config
  hermes run

  # Start with custom config
  hermes run --config /etc/hermes/config.yaml

  # Override listen address
  hermes run --listen 0.0.0.0:8080

  # Validate config without starting server
  hermes run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting server")
}

func runServer(cmd *cobra.Command, args []string) error {
	// Load configuration
	if err := config.Initialize(cfgFile); err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	cfg := config.GetConfig()

	// Apply flag overrides
	if runFlags.listenAddress != "" {
		cfg.Proxy.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}

	logger, err := logging.Setup(cfg.Telemetry.Logging)
	if err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}

	if runFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
	}

	printBanner(cfg)

	// Load provider and token tables
	reg, err := registry.New(
		cfg.Registry.ProvidersFile,
		cfg.Registry.TokensFile,
		cfg.Registry.SupportedModels,
		registry.WithLogger(logger),
	)
	if err != nil {
		return cli.NewCommandError("run", fmt.Errorf("failed to create registry: %w", err))
	}
	if err := reg.Load(); err != nil {
		return cli.NewCommandError("run", fmt.Errorf("failed to load routing tables: %w", err))
	}

	snap := reg.Snapshot()
	fmt.Printf("✓ Routing tables loaded (%d providers, %d tokens)\n",
		snap.ProviderCount(), snap.TokenCount())

	// Shared upstream HTTP client
	client := upstream.NewClient(cfg.Upstream, logger)
	defer client.Close()

	// Metrics collector (if enabled)
	var collector *metrics.Collector
	if cfg.Telemetry.Metrics.Enabled {
		collector = metrics.NewCollector(cfg.Telemetry.Metrics, nil)
		collector.UpdateTableSizes(snap.ProviderCount(), snap.TokenCount())
		fmt.Printf("✓ Metrics enabled (%s)\n", cfg.Telemetry.Metrics.Path)
	}

	// Audit recording (if enabled)
	var auditRecorder handlers.Recorder
	if cfg.Audit.Enabled {
		logger.Info("initializing audit recording", "backend", cfg.Audit.Backend)

		auditStorage, err := openAuditStorage(cfg, logger)
		if err != nil {
			return cli.NewCommandError("run", err)
		}
		defer auditStorage.Close()

		recorder := audit.NewRecorder(auditStorage, cfg.Audit.Recorder, logger)
		defer recorder.Close()
		auditRecorder = recorder

		// Scheduled pruning of old audit records
		if cfg.Audit.Retention.PruneSchedule != "" {
			pruner := retention.NewPruner(auditStorage, cfg.Audit.Retention, logger)
			scheduler := retention.NewScheduler(pruner, cfg.Audit.Retention.PruneSchedule, logger)
			if err := scheduler.Start(cmd.Context()); err != nil {
				logger.Warn("failed to start retention scheduler", "error", err)
			} else {
				defer scheduler.Stop()
				if next := scheduler.NextRun(); next != nil {
					logger.Debug("audit retention scheduler started", "next_run", next)
				}
			}
		}

		fmt.Println("✓ Audit store initialized")
	}

	srv := server.New(cfg, reg, client, collector, auditRecorder, Version, logger)

	fmt.Println()
	fmt.Printf("✓ Server listening on %s\n", cfg.Proxy.ListenAddress)
	fmt.Printf("✓ Health endpoint: http://%s/health\n", cfg.Proxy.ListenAddress)
	if cfg.Telemetry.Metrics.Enabled {
		fmt.Printf("✓ Metrics endpoint: http://%s%s\n", cfg.Proxy.ListenAddress, cfg.Telemetry.Metrics.Path)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	// Start blocks until a shutdown signal or a fatal server error.
	if err := srv.Start(cmd.Context()); err != nil {
		return cli.NewCommandError("run", err)
	}

	fmt.Println("✓ Server stopped")
	return nil
}

// openAuditStorage creates the configured audit storage backend.
func openAuditStorage(cfg *config.Config, logger *slog.Logger) (audit.Storage, error) {
	switch cfg.Audit.Backend {
	case "sqlite":
		store, err := storage.NewSQLiteStorage(cfg.Audit.SQLite, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create SQLite storage: %w", err)
		}
		return store, nil
	case "memory":
		return storage.NewMemoryStorage(), nil
	default:
		return nil, fmt.Errorf("unsupported audit backend: %s (supported: sqlite, memory)", cfg.Audit.Backend)
	}
}

func printBanner(cfg *config.Config) {
	fmt.Printf("Hermes v%s\n", Version)
	fmt.Printf("Loading configuration from: %s\n", cfgFile)
	fmt.Println("✓ Configuration loaded")

	if cfg.Registry.Watch {
		slog.Debug("table watching enabled",
			"providers_file", cfg.Registry.ProvidersFile,
			"tokens_file", cfg.Registry.TokensFile,
		)
	}
	if cfg.Audit.Enabled {
		slog.Debug("audit enabled", "backend", cfg.Audit.Backend)
	}
}
