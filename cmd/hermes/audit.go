package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"switchboard-ai/hermes/pkg/audit"
	"switchboard-ai/hermes/pkg/cli"
	"switchboard-ai/hermes/pkg/config"
)

var auditFlags struct {
	backend   string
	timeRange string
	provider  string
	model     string
	token     string
	status    int
	limit     int
	offset    int
	format    string
	output    string
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Query the audit database",
	Long: `Query and export audit records for completed gateway requests.

The audit command provides access to the audit database for querying
and analyzing the gateway's request history.

Subcommands:
  query   - Query audit records with filters
  stats   - Summarize records per provider

Examples:
  # Query last 24 hours
  hermes audit query --time-range "2026-08-30T00:00:00Z/2026-08-31T00:00:00Z"

  # Filter by provider
  hermes audit query --provider openai

  # Export to JSON file
  hermes audit query --format json --output audit.json`,
}

var auditQueryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query audit records",
	Long: `Query audit records with various filters.

Time Range Format:
  RFC3339 interval format: "start/end"
  Example: "2026-08-30T00:00:00Z/2026-08-31T00:00:00Z"

Examples:
  # Query specific time range
  hermes audit query --time-range "2026-08-30T00:00:00Z/2026-08-31T00:00:00Z"

  # Filter by token description and model
  hermes audit query --token "ci-pipeline" --model "openai/gpt-4o"

  # Only failed requests
  hermes audit query --status 502

  # Export to CSV
  hermes audit query --format csv --output audit.csv`,
	RunE: queryAudit,
}

var auditStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize audit records",
	Long:  `Summarize audit records with per-provider request and token counts.`,
	RunE:  auditStats,
}

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.AddCommand(auditQueryCmd, auditStatsCmd)

	// Flags for query command
	auditQueryCmd.Flags().StringVar(&auditFlags.backend, "backend", "", "backend: sqlite, memory (uses config if not specified)")
	auditQueryCmd.Flags().StringVar(&auditFlags.timeRange, "time-range", "", "time range (RFC3339 interval: start/end)")
	auditQueryCmd.Flags().StringVar(&auditFlags.provider, "provider", "", "filter by provider")
	auditQueryCmd.Flags().StringVar(&auditFlags.model, "model", "", "filter by prefixed model name")
	auditQueryCmd.Flags().StringVar(&auditFlags.token, "token", "", "filter by token description")
	auditQueryCmd.Flags().IntVar(&auditFlags.status, "status", 0, "filter by HTTP status code")
	auditQueryCmd.Flags().IntVar(&auditFlags.limit, "limit", 100, "max results")
	auditQueryCmd.Flags().IntVar(&auditFlags.offset, "offset", 0, "pagination offset")
	auditQueryCmd.Flags().StringVar(&auditFlags.format, "format", "text", "output format: text, json, csv")
	auditQueryCmd.Flags().StringVarP(&auditFlags.output, "output", "o", "", "output file (default: stdout)")

	// Flags for stats command
	auditStatsCmd.Flags().StringVar(&auditFlags.backend, "backend", "", "backend: sqlite, memory")
	auditStatsCmd.Flags().StringVar(&auditFlags.timeRange, "time-range", "", "time range (RFC3339 interval)")
	auditStatsCmd.Flags().IntVar(&auditFlags.limit, "limit", 10000, "max records to summarize")
}

func queryAudit(cmd *cobra.Command, args []string) error {
	store, err := openAuditStore()
	if err != nil {
		return err
	}
	defer store.Close()

	query, err := buildAuditQuery()
	if err != nil {
		return err
	}

	records, err := store.Query(context.Background(), query)
	if err != nil {
		return cli.NewCommandError("audit", fmt.Errorf("query failed: %w", err))
	}

	var output *os.File
	if auditFlags.output != "" {
		output, err = os.Create(auditFlags.output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer output.Close()
	} else {
		output = os.Stdout
	}

	switch auditFlags.format {
	case "json":
		formatter := cli.NewFormatter(cli.FormatJSON)
		return formatter.FormatTo(output, records)
	case "csv":
		return outputAuditCSV(output, records)
	default:
		return outputAuditText(output, records, query)
	}
}

func auditStats(cmd *cobra.Command, args []string) error {
	store, err := openAuditStore()
	if err != nil {
		return err
	}
	defer store.Close()

	query, err := buildAuditQuery()
	if err != nil {
		return err
	}
	query.Limit = auditFlags.limit

	records, err := store.Query(context.Background(), query)
	if err != nil {
		return cli.NewCommandError("audit", fmt.Errorf("query failed: %w", err))
	}

	type providerStats struct {
		requests int
		failed   int
		tokens   int
	}
	stats := make(map[string]*providerStats)
	for _, record := range records {
		s, ok := stats[record.Provider]
		if !ok {
			s = &providerStats{}
			stats[record.Provider] = s
		}
		s.requests++
		s.tokens += record.TotalTokens
		if record.StatusCode >= 400 || record.Error != "" {
			s.failed++
		}
	}

	fmt.Printf("Total records: %d\n\n", len(records))
	for provider, s := range stats {
		fmt.Printf("%s: %d requests (%d failed), %d tokens\n",
			provider, s.requests, s.failed, s.tokens)
	}
	return nil
}

// openAuditStore loads config and opens the audit backend selected by the
// --backend flag, falling back to the configured one.
func openAuditStore() (audit.Storage, error) {
	if err := config.Initialize(cfgFile); err != nil {
		return nil, cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	cfg := config.GetConfig()

	if auditFlags.backend != "" {
		cfg.Audit.Backend = auditFlags.backend
	}
	return openAuditStorage(cfg, nil)
}

func buildAuditQuery() (*audit.Query, error) {
	query := &audit.Query{
		Provider:         auditFlags.provider,
		Model:            auditFlags.model,
		TokenDescription: auditFlags.token,
		StatusCode:       auditFlags.status,
		Limit:            auditFlags.limit,
		Offset:           auditFlags.offset,
	}

	if auditFlags.timeRange != "" {
		parts := strings.Split(auditFlags.timeRange, "/")
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid time range format (expected: start/end)")
		}

		startTime, err := time.Parse(time.RFC3339, parts[0])
		if err != nil {
			return nil, fmt.Errorf("invalid start time: %w", err)
		}
		query.StartTime = &startTime

		endTime, err := time.Parse(time.RFC3339, parts[1])
		if err != nil {
			return nil, fmt.Errorf("invalid end time: %w", err)
		}
		query.EndTime = &endTime
	}

	return query, nil
}

func outputAuditText(output *os.File, records []*audit.Record, query *audit.Query) error {
	if query.StartTime != nil && query.EndTime != nil {
		fmt.Fprintf(output, "Time range: %s to %s\n",
			query.StartTime.Format(time.RFC3339),
			query.EndTime.Format(time.RFC3339))
	}
	fmt.Fprintf(output, "Total records: %d\n", len(records))
	fmt.Fprintln(output)

	if len(records) == 0 {
		fmt.Fprintln(output, "No records found.")
		return nil
	}

	for i, record := range records {
		if i > 0 {
			fmt.Fprintln(output)
		}

		fmt.Fprintf(output, "Record ID: %s\n", record.ID)
		fmt.Fprintf(output, "Timestamp: %s\n", record.RequestTime.Format(time.RFC3339))
		if record.TokenDescription != "" {
			fmt.Fprintf(output, "Token: %s\n", record.TokenDescription)
		}
		fmt.Fprintf(output, "Model: %s\n", record.Model)
		if record.Provider != "" {
			fmt.Fprintf(output, "Provider: %s (upstream model: %s)\n", record.Provider, record.UpstreamModel)
		}
		fmt.Fprintf(output, "Status: %d (latency: %s)\n", record.StatusCode, record.Latency.Round(time.Millisecond))
		if record.Error != "" {
			fmt.Fprintf(output, "Error: %s (%s)\n", record.Error, record.ErrorType)
		}
		fmt.Fprintf(output, "Tokens: %d (prompt: %d, completion: %d)\n",
			record.TotalTokens, record.PromptTokens, record.CompletionTokens)

		// Show limited output for large result sets
		if i >= 9 && len(records) > 10 {
			remaining := len(records) - 10
			fmt.Fprintln(output)
			fmt.Fprintf(output, "... and %d more records\n", remaining)
			fmt.Fprintf(output, "Use --limit and --offset for pagination.\n")
			break
		}
	}

	return nil
}

func outputAuditCSV(output *os.File, records []*audit.Record) error {
	formatter := &cli.CSVFormatter{
		Headers: []string{
			"id", "request_id", "request_time", "model", "provider",
			"upstream_model", "stream", "token_description", "status_code",
			"latency_ms", "prompt_tokens", "completion_tokens", "total_tokens",
			"error_type",
		},
	}

	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.ID,
			r.RequestID,
			r.RequestTime.Format(time.RFC3339),
			r.Model,
			r.Provider,
			r.UpstreamModel,
			strconv.FormatBool(r.Stream),
			r.TokenDescription,
			strconv.Itoa(r.StatusCode),
			strconv.FormatInt(r.Latency.Milliseconds(), 10),
			strconv.Itoa(r.PromptTokens),
			strconv.Itoa(r.CompletionTokens),
			strconv.Itoa(r.TotalTokens),
			r.ErrorType,
		})
	}

	return formatter.FormatTo(output, rows)
}
