/*
Package cli provides command-line interface utilities for Anvil.

The cli package includes output formatters, progress reporters, and common CLI
helpers used by the anvil command.

Output Formatting:

The cli package supports multiple output formats (text, JSON, CSV) for
displaying command results:

	formatter := cli.NewFormatter(cli.FormatJSON)
	data := MyCommandResult{...}
	if err := formatter.FormatTo(os.Stdout, data); err != nil {
		return err
	}

Progress Reporting:

Multi-step operations like the origin probes report progress on one line:

	progress := cli.NewProgressReporter(os.Stdout)
	progress.Start(int64(len(origins)))
	for i, origin := range origins {
		// Probe origin
		progress.Update(int64(i + 1))
	}
	progress.Finish()

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx := cli.SetupSignalHandler()
	// Use ctx for operations that should be cancelled on shutdown
*/
package cli
