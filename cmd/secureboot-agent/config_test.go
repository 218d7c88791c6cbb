package main

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) {
	t.Helper()

	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0o644))

	t.Setenv(ConfigPathEnvKey, configPath)
}

func TestLoadConfig(t *testing.T) {
	t.Run("valid config with all fields", func(t *testing.T) {
		writeConfig(t, `
httpRoot: /httpboot
imagesPath: /srv/images
logging:
  format: text
  level: debug
httpmi:
  timeout: 30s
  tls:
    caPath: /etc/secureboot/httpmi/ca.crt
    certPath: /etc/secureboot/httpmi/tls.crt
    keyPath: /etc/secureboot/httpmi/tls.key
apiServer:
  port: 9443
  tls:
    enabled: true
    clientAuth: require
    certPath: /etc/secureboot/api/tls.crt
    keyPath: /etc/secureboot/api/tls.key
    caPath: /etc/secureboot/api/ca.crt
probesServer:
  port: 9081
  livenessPath: /livez
  readinessPath: /ready
metricsServer:
  port: 9080
  path: /prom
`)

		config, err := loadConfig()
		require.NoError(t, err)

		assert.Equal(t, "/httpboot", config.HTTPRoot)
		assert.Equal(t, "/srv/images", config.ImagesPath)
		assert.Equal(t, "text", config.Logging.Format)
		assert.Equal(t, "debug", config.Logging.Level)
		assert.Equal(t, 30*time.Second, config.httpmiTimeout())
		assert.Equal(t, "/etc/secureboot/httpmi/ca.crt", config.HTTPMI.TLS.CAPath)
		assert.Equal(t, 9443, config.APIServer.Port)
		assert.True(t, config.APIServer.TLS.Enabled)
		assert.Equal(t, "require", config.APIServer.TLS.ClientAuth)
		assert.Equal(t, 9081, config.ProbesServer.Port)
		assert.Equal(t, "/livez", config.ProbesServer.LivenessPath)
		assert.Equal(t, "/ready", config.ProbesServer.ReadinessPath)
		assert.Equal(t, 9080, config.MetricsServer.Port)
		assert.Equal(t, "/prom", config.MetricsServer.Path)
	})

	t.Run("minimal config gets defaults", func(t *testing.T) {
		writeConfig(t, `httpRoot: /httpboot`)

		config, err := loadConfig()
		require.NoError(t, err)

		assert.Equal(t, "/images", config.ImagesPath)
		assert.Equal(t, time.Duration(0), config.httpmiTimeout())
		assert.False(t, config.APIServer.TLS.Enabled)
		assert.Equal(t, defaultAPIPort, config.APIServer.Port)
		assert.Equal(t, defaultProbesPort, config.ProbesServer.Port)
		assert.Equal(t, defaultLivenessPath, config.ProbesServer.LivenessPath)
		assert.Equal(t, defaultReadinessPath, config.ProbesServer.ReadinessPath)
		assert.Equal(t, defaultMetricsPort, config.MetricsServer.Port)
		assert.Equal(t, defaultMetricsPath, config.MetricsServer.Path)
	})

	t.Run("missing httpRoot", func(t *testing.T) {
		writeConfig(t, `imagesPath: /srv/images`)

		config, err := loadConfig()
		assert.ErrorIs(t, err, ErrInvalidConfig)
		assert.Nil(t, config)
	})

	t.Run("negative timeout", func(t *testing.T) {
		writeConfig(t, "httpRoot: /httpboot\nhttpmi:\n  timeout: -1s\n")

		_, err := loadConfig()
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("unknown field", func(t *testing.T) {
		writeConfig(t, "httpRoot: /httpboot\nhttpRooot: /typo\n")

		_, err := loadConfig()
		assert.Error(t, err)
	})
}

func TestLoadConfig_MissingEnvVar(t *testing.T) {
	t.Setenv(ConfigPathEnvKey, "")

	config, err := loadConfig()

	assert.Error(t, err)
	assert.Nil(t, config)
	assert.Contains(t, err.Error(), ConfigPathEnvKey)
}

func TestLoadConfig_NonExistentFile(t *testing.T) {
	t.Setenv(ConfigPathEnvKey, "/non/existent/path/config.yaml")

	config, err := loadConfig()

	assert.Error(t, err)
	assert.Nil(t, config)
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	writeConfig(t, "invalid: yaml: content: [")

	config, err := loadConfig()

	assert.Error(t, err)
	assert.Nil(t, config)
}

func TestSetupProbesServer(t *testing.T) {
	config := &Config{HTTPRoot: t.TempDir()}
	config.setDefaults()

	handler := setupProbesServer(config).Handler

	probe := func(path string) int {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))

		return rr.Code
	}

	assert.Equal(t, http.StatusOK, probe(defaultLivenessPath))
	assert.Equal(t, http.StatusOK, probe(defaultReadinessPath))

	config.HTTPRoot = filepath.Join(config.HTTPRoot, "missing")
	assert.Equal(t, http.StatusServiceUnavailable, probe(defaultReadinessPath))
}

func TestSetupMetricsServer(t *testing.T) {
	config := &Config{}
	config.setDefaults()

	rr := httptest.NewRecorder()
	setupMetricsServer(config, newRegistry()).Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "go_goroutines")
}
