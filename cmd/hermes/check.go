package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"switchboard-ai/hermes/pkg/cli"
	"switchboard-ai/hermes/pkg/config"
	"switchboard-ai/hermes/pkg/registry"
	"switchboard-ai/hermes/pkg/telemetry/logging"
	"switchboard-ai/hermes/pkg/upstream"
)

var checkFlags struct {
	timeout time.Duration
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Probe every configured provider",
	Long: `Probe the model listing endpoint of every provider in the provider
table and report which providers are reachable with the configured
API keys.

A failing provider does not stop the check; all providers are probed
and failures are summarized at the end.

Examples:
  # Probe all providers from the default config
  hermes check

  # Use a shorter per-provider timeout
  hermes check --timeout 5s`,
	RunE: checkProviders,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().DurationVar(&checkFlags.timeout, "timeout", 0, "per-provider timeout (uses upstream config if not specified)")
}

func checkProviders(cmd *cobra.Command, args []string) error {
	if err := config.Initialize(cfgFile); err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	cfg := config.GetConfig()

	if checkFlags.timeout > 0 {
		cfg.Upstream.Timeout = checkFlags.timeout
	}

	logger, err := logging.Setup(cfg.Telemetry.Logging)
	if err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}

	reg, err := registry.New(
		cfg.Registry.ProvidersFile,
		cfg.Registry.TokensFile,
		cfg.Registry.SupportedModels,
		registry.WithLogger(logger),
	)
	if err != nil {
		return cli.NewCommandError("check", err)
	}
	if err := reg.Load(); err != nil {
		return cli.NewCommandError("check", fmt.Errorf("failed to load routing tables: %w", err))
	}

	providers := reg.Snapshot().Providers()
	if len(providers) == 0 {
		fmt.Println("No providers configured.")
		return nil
	}

	client := upstream.NewClient(cfg.Upstream, logger)
	defer client.Close()

	fmt.Printf("Probing %d providers...\n", len(providers))

	type probeResult struct {
		provider string
		models   int
		err      error
	}
	results := make([]probeResult, 0, len(providers))

	progress := cli.NewProgressReporter(os.Stdout, "Probing")
	progress.Start(int64(len(providers)))

	ctx := cmd.Context()
	for i, provider := range providers {
		models, err := client.ListModels(ctx, provider)
		results = append(results, probeResult{
			provider: provider.Name,
			models:   len(models),
			err:      err,
		})
		progress.Update(int64(i + 1))

		if ctx.Err() != nil {
			progress.Error(ctx.Err())
			return cli.NewCommandError("check", ctx.Err())
		}
	}
	progress.Finish()
	fmt.Println()

	failed := 0
	for _, result := range results {
		if result.err != nil {
			failed++
			fmt.Printf("✗ %s: %v\n", result.provider, result.err)
		} else {
			fmt.Printf("✓ %s: %d models\n", result.provider, result.models)
		}
	}

	fmt.Println()
	if failed > 0 {
		return fmt.Errorf("%d of %d providers unreachable", failed, len(providers))
	}
	fmt.Printf("All %d providers reachable\n", len(providers))
	return nil
}
