//go:build unit

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

package logging_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexandremahdhaoui/secureboot/internal/util/logging"
)

func TestParseLevel(t *testing.T) {
	for in, expected := range map[string]slog.Level{
		"":      slog.LevelInfo,
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	} {
		level, err := logging.ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, expected, level, in)
	}

	_, err := logging.ParseLevel("verbose")
	assert.ErrorIs(t, err, logging.ErrInvalidLevel)
}

func TestSetup(t *testing.T) {
	defaultLogger := slog.Default()
	t.Cleanup(func() { slog.SetDefault(defaultLogger) })

	t.Run("json", func(t *testing.T) {
		buf := new(bytes.Buffer)

		logger, err := logging.Setup(buf, logging.Options{Level: "debug"})
		require.NoError(t, err)

		logger.V(1).Info("from logr", "node_uuid", "abc")

		out := make(map[string]any)
		require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
		assert.Equal(t, "from logr", out["msg"])
		assert.Equal(t, "abc", out["node_uuid"])
	})

	t.Run("text", func(t *testing.T) {
		buf := new(bytes.Buffer)

		_, err := logging.Setup(buf, logging.Options{Format: "text"})
		require.NoError(t, err)

		slog.Debug("dropped")
		slog.Info("from slog")

		assert.NotContains(t, buf.String(), "dropped")
		assert.Contains(t, buf.String(), "msg=\"from slog\"")
	})

	t.Run("invalid format", func(t *testing.T) {
		_, err := logging.Setup(new(bytes.Buffer), logging.Options{Format: "xml"})
		assert.ErrorIs(t, err, logging.ErrInvalidFormat)
	})
}
