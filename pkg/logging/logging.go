// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package logging configures structured logging for Aleutian
// components.
//
// The package is a thin layer over the standard library slog package:
// it maps our Level type onto slog levels, builds a text or JSON
// handler, stamps every record with the owning service name, and can
// install the result as the process-wide default so that packages
// logging through slog directly all share one configuration.
//
// Basic usage:
//
//	logging.Init(logging.Config{
//	    Level:   logging.LevelInfo,
//	    Service: "agents",
//	})
//	slog.Info("starting", "addr", addr)
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Level represents log severity. Levels follow the slog convention
// and are ordered Debug < Info < Warn < Error.
type Level int

const (
	// LevelDebug is for development troubleshooting.
	LevelDebug Level = iota

	// LevelInfo is for normal operational messages.
	LevelInfo

	// LevelWarn is for recoverable, unexpected situations.
	LevelWarn

	// LevelError is for failed operations the system survives.
	LevelError
)

// String returns the human-readable name of the level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// toSlogLevel bridges our Level type to the standard library.
func (l Level) toSlogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ParseLevel maps a config string onto a Level. Unknown strings fall
// back to Info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Config configures logger construction. The zero value yields an
// Info-level text logger on stderr.
type Config struct {
	// Level sets the minimum log level. Records below it are dropped.
	Level Level

	// JSON switches output to machine-parseable JSON records.
	JSON bool

	// Service is stamped onto every record as the "service" attribute.
	// Empty means no attribute.
	Service string

	// Output overrides the destination. Nil means stderr.
	Output io.Writer
}

// New builds a logger from the config without touching process-wide
// state.
func New(cfg Config) *slog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: cfg.Level.toSlogLevel()}

	var handler slog.Handler
	if cfg.JSON {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	if cfg.Service != "" {
		handler = handler.WithAttrs([]slog.Attr{slog.String("service", cfg.Service)})
	}
	return slog.New(handler)
}

// Init builds a logger from the config and installs it as the slog
// default, so every package logging through slog inherits it.
func Init(cfg Config) *slog.Logger {
	logger := New(cfg)
	slog.SetDefault(logger)
	return logger
}
