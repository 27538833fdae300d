// Package logging builds the application logger. The terminal belongs to
// the UI, so log output goes to a file.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/nhle/simpletasks/internal/flow"
)

// Options selects where and how much to log.
type Options struct {
	// Path is the log file. Empty means Writer is used instead.
	Path string

	// Writer receives output when Path is empty. Defaults to io.Discard.
	Writer io.Writer

	// Level is a charmbracelet/log level name. Unknown names mean warn.
	Level string

	// Verbose forces debug level.
	Verbose bool
}

// New returns a logger and a function that closes its file.
func New(opts Options) (*log.Logger, func() error, error) {
	var w io.Writer = io.Discard
	if opts.Writer != nil {
		w = opts.Writer
	}
	closeFn := func() error { return nil }

	if opts.Path != "" {
		if err := os.MkdirAll(filepath.Dir(opts.Path), 0o700); err != nil {
			return nil, nil, fmt.Errorf("creating log directory: %w", err)
		}
		f, err := os.OpenFile(opts.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		w = f
		closeFn = f.Close
	}

	lvl, err := log.ParseLevel(opts.Level)
	if err != nil {
		lvl = log.WarnLevel
	}
	if opts.Verbose {
		lvl = log.DebugLevel
	}

	logger := log.NewWithOptions(w, log.Options{
		Level:           lvl,
		ReportTimestamp: true,
		Prefix:          "simpletasks",
	})
	return logger, closeFn, nil
}

// Observer logs every dispatched action at debug level.
func Observer(l *log.Logger) flow.Observer {
	return flow.ObserverFunc(func(e flow.Event) {
		l.Debug("action", "flow", e.Flow, "type", e.Action)
	})
}
