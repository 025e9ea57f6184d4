package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/idelchi/dirscan/internal/dirscan"
)

func logic(cmd *cobra.Command, s settings) error {
	stderr := cmd.ErrOrStderr()

	s.Logger = newLogger(s.Debug, stderr)
	defer s.Logger.Sync() //nolint:errcheck // Nothing to do on a failed flush

	enableProgress := s.Output == "table" &&
		!s.Debug &&
		stderr == os.Stderr &&
		isatty.IsTerminal(os.Stderr.Fd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Simple progress callback that prints directly to stderr
	var progressHook func(entries, bytes int64)

	if enableProgress {
		// Hide cursor for in-place updates; restore on exit.
		fmt.Fprint(stderr, "\033[?25l")
		defer fmt.Fprint(stderr, "\033[?25h")

		progressHook = func(entries, bytes int64) {
			msg := fmt.Sprintf("Scanning… %d entries, %s",
				entries, humanize.IBytes(uint64(bytes))) //nolint:gosec // Bytes is always positive
			fmt.Fprintf(stderr, "\r\033[2K%s\r", msg)
		}
	}

	report, err := dirscan.Run(ctx, s.Options, progressHook)

	// Clear the status line
	if enableProgress {
		fmt.Fprint(stderr, "\r\033[2K\r")
	}

	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	switch s.Output {
	case "json":
		return PrintJSON(report, out)
	case "yaml":
		return PrintYAML(report, out)
	case "paths":
		return PrintPaths(report, s.Dirs, out)
	case "table":
		return PrintTable(report, out, TableOptions{Dirs: s.Dirs, Color: s.Color})
	default:
		return fmt.Errorf("unknown output format: %s", s.Output)
	}
}
