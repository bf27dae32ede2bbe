// Package wlog wraps zerolog into the small package-scoped logger used by
// the runtime to report wave boundaries, block dispatch, and divergence.
// No call in this package sits on a per-cell path.
package wlog

import (
	"os"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

var (
	base     zerolog.Logger
	initOnce sync.Once
)

func root() zerolog.Logger {
	initOnce.Do(func() {
		noColor := !isatty.IsTerminal(os.Stderr.Fd())
		writer := zerolog.ConsoleWriter{Out: os.Stderr, NoColor: noColor, TimeFormat: "15:04:05"}
		base = zerolog.New(writer).With().Timestamp().Logger()
	})
	return base
}

// Component returns a logger tagged with the subsystem name, e.g.
// wlog.Component("runtime").
func Component(name string) zerolog.Logger {
	return root().With().Str("component", name).Logger()
}
