package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"switchboard-ai/hermes/pkg/cli"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "hermes",
	Short: "Hermes - OpenAI-compatible multi-provider gateway",
	Long: `Hermes is an OpenAI-compatible gateway that routes chat completion
requests across multiple upstream providers.

It acts as a single HTTP endpoint for LLM API clients, providing:
  - Model-prefix routing across upstream providers (OpenAI, Groq, etc.)
  - Static token authentication with per-token descriptions
  - Transparent response relay, including SSE streaming
  - Atomic reload of provider and token tables
  - Request audit trail and Prometheus metrics

For more information, visit: https://github.com/switchboard-ai/hermes`,
	Version: Version,
}

// Execute runs the root command. The command context is cancelled on
// SIGINT or SIGTERM so long-running subcommands shut down cleanly.
func Execute() {
	if err := rootCmd.ExecuteContext(cli.SetupSignalHandler()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
