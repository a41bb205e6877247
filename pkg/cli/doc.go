/*
Package cli provides command-line interface utilities for Hermes.

The cli package includes output formatters, progress reporters, and common
CLI helpers used by the hermes command.

Output Formatting:

The cli package supports multiple output formats (text, JSON, CSV) for
displaying command results:

	formatter := cli.NewFormatter(cli.FormatJSON)
	if err := formatter.FormatTo(os.Stdout, records); err != nil {
		return err
	}

CSV output expects pre-flattened [][]string rows:

	formatter := &cli.CSVFormatter{Headers: []string{"id", "provider"}}
	err := formatter.FormatTo(os.Stdout, rows)

Progress Reporting:

For long-running operations such as provider probes, use the progress
reporter:

	progress := cli.NewProgressReporter(os.Stdout, "Probing")
	progress.Start(totalItems)
	for i := 0; i < totalItems; i++ {
		// Do work
		progress.Update(int64(i + 1))
	}
	progress.Finish()

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx := cli.SetupSignalHandler()
	// Use ctx for operations that should be cancelled on shutdown
*/
package cli
