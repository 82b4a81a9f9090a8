// Package plog provides the profiler's structured logger construction,
// grounded on the zerolog conventions used elsewhere in the ambient stack:
// console-pretty output to stderr in development, level-filterable.
package plog

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New builds a zerolog.Logger writing human-readable output to w (or
// os.Stderr if nil). verbose raises the level to Debug; otherwise Info.
func New(w io.Writer, verbose bool) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	console := zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(console).Level(level).With().Timestamp().Logger()
}

// NewJSON builds a zerolog.Logger emitting line-delimited JSON to w,
// suitable for writing to a rotating file sink rather than a terminal.
func NewJSON(w io.Writer, verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}
