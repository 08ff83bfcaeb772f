// Package logging builds the structured logger used by the tomd CLI.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// Options configures the logger.
type Options struct {
	Verbose bool      // Enable debug level logging
	JSON    bool      // Output as JSON
	Output  io.Writer // Output destination (default: stderr)
}

// New returns a logger writing to opts.Output. Without Verbose only warnings
// and errors are emitted.
func New(opts Options) *slog.Logger {
	level := slog.LevelWarn
	if opts.Verbose {
		level = slog.LevelDebug
	}

	output := opts.Output
	if output == nil {
		output = os.Stderr
	}

	handlerOpts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if opts.JSON {
		handler = slog.NewJSONHandler(output, handlerOpts)
	} else {
		handler = slog.NewTextHandler(output, handlerOpts)
	}
	return slog.New(handler)
}
