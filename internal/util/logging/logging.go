/*
Copyright 2024 Alexandre Mahdhaoui

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package logging configures the process-wide slog logger and exposes it as a logr.Logger for
// components that take one.
package logging

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/go-logr/logr"
)

const (
	FormatJSON = "json"
	FormatText = "text"
)

var (
	ErrInvalidLevel  = errors.New("invalid log level")
	ErrInvalidFormat = errors.New("invalid log format")
)

// Options configures the logger behavior.
type Options struct {
	// Format is either "json" or "text". Defaults to "json".
	Format string `json:"format"`
	// Level is one of "debug", "info", "warn" or "error". Defaults to "info".
	Level string `json:"level"`
}

// Setup builds a slog handler writing to w, installs it as the slog default logger and returns
// a logr.Logger backed by the same handler.
func Setup(w io.Writer, opts Options) (logr.Logger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return logr.Discard(), err
	}

	handlerOpts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler

	switch strings.ToLower(opts.Format) {
	case "", FormatJSON:
		handler = slog.NewJSONHandler(w, handlerOpts)
	case FormatText:
		handler = slog.NewTextHandler(w, handlerOpts)
	default:
		return logr.Discard(), fmt.Errorf("%w: %q (valid values: json, text)", ErrInvalidFormat, opts.Format)
	}

	slog.SetDefault(slog.New(handler))

	return logr.FromSlogHandler(handler), nil
}

// ParseLevel maps a level name to a slog.Level. The empty string maps to slog.LevelInfo.
func ParseLevel(s string) (slog.Level, error) {
	if s == "" {
		return slog.LevelInfo, nil
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidLevel, s)
	}

	return level, nil
}
