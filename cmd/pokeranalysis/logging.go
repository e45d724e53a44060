package main

import (
	"os"

	"github.com/rs/zerolog"
)

// setupLogger creates a console logger for pipeline components. Quiet wins
// over debug so batch invocations can suppress per-hand chatter.
func setupLogger(debug, quiet bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	if quiet {
		level = zerolog.ErrorLevel
	}

	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().
		Timestamp().
		Logger()
}
