// Copyright 2021 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package log builds the structured logger used by the fetchx command.
package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Format is the log output format.
type Format string

const (
	// FormatText writes human-readable key=value records.
	FormatText Format = "text"
	// FormatJSON writes one JSON object per record.
	FormatJSON Format = "json"
)

// LevelTrace is more verbose than Debug.
const LevelTrace = slog.Level(-8)

// Config holds the logging configuration.
type Config struct {
	// Level is the minimum level: trace, debug, info, warn, or error.
	Level string

	// Format is the output format.
	Format Format

	// Output receives the records. Nil means os.Stderr.
	Output io.Writer

	// AddSource adds the source file and line to each record.
	AddSource bool
}

// DefaultConfig returns the configuration used when nothing else is
// specified: warnings and errors only, as text, to os.Stderr.
func DefaultConfig() *Config {
	return &Config{
		Level:  "warn",
		Format: FormatText,
		Output: os.Stderr,
	}
}

// FromEnv returns DefaultConfig overridden by the environment:
//
//   - FETCHX_DEBUG: true or 1 enables debug level and source locations
//   - FETCHX_LOG_LEVEL: trace, debug, info, warn, error
//   - FETCHX_LOG_FORMAT: text, json
func FromEnv() *Config {
	cfg := DefaultConfig()

	debug := os.Getenv("FETCHX_DEBUG")
	if debug == "true" || debug == "1" {
		cfg.Level = "debug"
		cfg.AddSource = true
	} else if level := os.Getenv("FETCHX_LOG_LEVEL"); level != "" {
		cfg.Level = strings.ToLower(level)
	}

	if format := os.Getenv("FETCHX_LOG_FORMAT"); format != "" {
		cfg.Format = Format(strings.ToLower(format))
	}

	return cfg
}

// Validate reports an unknown level or format.
func (c *Config) Validate() error {
	if _, ok := levels[strings.ToLower(c.Level)]; !ok && c.Level != "" {
		return fmt.Errorf("unknown log level %q", c.Level)
	}
	switch c.Format {
	case "", FormatText, FormatJSON:
		return nil
	default:
		return fmt.Errorf("unknown log format %q", c.Format)
	}
}

// New creates a logger from cfg. A nil cfg means DefaultConfig.
func New(cfg *Config) *slog.Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	opts := &slog.HandlerOptions{
		Level:     parseLevel(cfg.Level),
		AddSource: cfg.AddSource,
	}

	var handler slog.Handler
	switch cfg.Format {
	case FormatJSON:
		handler = slog.NewJSONHandler(out, opts)
	default:
		handler = slog.NewTextHandler(out, opts)
	}

	return slog.New(handler)
}

var levels = map[string]slog.Level{
	"trace":   LevelTrace,
	"debug":   slog.LevelDebug,
	"info":    slog.LevelInfo,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
}

// parseLevel converts a level name to a slog.Level. Unknown names mean
// warn.
func parseLevel(level string) slog.Level {
	if l, ok := levels[strings.ToLower(level)]; ok {
		return l
	}
	return slog.LevelWarn
}
