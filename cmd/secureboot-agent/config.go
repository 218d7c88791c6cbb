package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/yaml"

	"github.com/alexandremahdhaoui/secureboot/internal/adapter"
	"github.com/alexandremahdhaoui/secureboot/internal/util/logging"
	"github.com/alexandremahdhaoui/secureboot/internal/util/tlsutil"
)

const (
	// ConfigPathEnvKey is the environment variable key for the config file path.
	ConfigPathEnvKey = "SECUREBOOT_AGENT_CONFIG_PATH"

	defaultAPIPort       = 8443
	defaultMetricsPort   = 8080
	defaultProbesPort    = 8081
	defaultMetricsPath   = "/metrics"
	defaultLivenessPath  = "/healthz"
	defaultReadinessPath = "/readyz"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// loadConfig loads the configuration from the file specified in the
// SECUREBOOT_AGENT_CONFIG_PATH environment variable, then applies defaults.
func loadConfig() (*Config, error) {
	configPath := os.Getenv(ConfigPathEnvKey)
	if configPath == "" {
		return nil, fmt.Errorf("environment variable %q must be set", ConfigPathEnvKey)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Parse YAML (uses json tags)
	config := &Config{}
	if err := yaml.UnmarshalStrict(data, config); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	config.setDefaults()

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Config is used to configure the secureboot agent.
type Config struct {
	// HTTPRoot is the root of the tree served to booting nodes. Staged files live under
	// <httpRoot>/secure/<uuid> and <httpRoot>/insecure/<uuid>.
	HTTPRoot string `json:"httpRoot"`
	// ImagesPath is the directory holding kernel, ramdisk and squash images.
	ImagesPath string `json:"imagesPath"`

	// Logging configures the process logger.
	Logging logging.Options `json:"logging"`

	// HTTPMI is the configuration of the client reaching httpmi proxies.
	HTTPMI struct {
		// Timeout bounds each proxy call. Zero means no timeout.
		Timeout metav1.Duration `json:"timeout"`
		// TLS is used for https proxy URLs.
		TLS tlsutil.ClientConfig `json:"tls"`
	} `json:"httpmi"`

	// APIServer is the configuration for the API server.
	APIServer struct {
		// Port is the port for the API server.
		Port int `json:"port"`
		// TLS configures the API server listener.
		TLS tlsutil.ServerConfig `json:"tls"`
	} `json:"apiServer"`

	// ProbesServer is the configuration for the probes server.
	ProbesServer struct {
		// LivenessPath is the path for the liveness probe.
		LivenessPath string `json:"livenessPath"`
		// ReadinessPath is the path for the readiness probe.
		ReadinessPath string `json:"readinessPath"`
		// Port is the port for the probes server.
		Port int `json:"port"`
	} `json:"probesServer"`

	// MetricsServer is the configuration for the metrics server.
	MetricsServer struct {
		// Path is the path for the metrics server.
		Path string `json:"path"`
		// Port is the port for the metrics server.
		Port int `json:"port"`
	} `json:"metricsServer"`
}

func (c *Config) setDefaults() {
	if c.ImagesPath == "" {
		c.ImagesPath = adapter.DefaultImagesPath
	}

	if c.APIServer.Port == 0 {
		c.APIServer.Port = defaultAPIPort
	}

	if c.ProbesServer.Port == 0 {
		c.ProbesServer.Port = defaultProbesPort
	}

	if c.ProbesServer.LivenessPath == "" {
		c.ProbesServer.LivenessPath = defaultLivenessPath
	}

	if c.ProbesServer.ReadinessPath == "" {
		c.ProbesServer.ReadinessPath = defaultReadinessPath
	}

	if c.MetricsServer.Port == 0 {
		c.MetricsServer.Port = defaultMetricsPort
	}

	if c.MetricsServer.Path == "" {
		c.MetricsServer.Path = defaultMetricsPath
	}
}

func (c *Config) validate() error {
	if c.HTTPRoot == "" {
		return fmt.Errorf("%w: httpRoot must be set", ErrInvalidConfig)
	}

	if c.HTTPMI.Timeout.Duration < 0 {
		return fmt.Errorf("%w: httpmi.timeout must not be negative", ErrInvalidConfig)
	}

	return nil
}

// httpmiTimeout returns the configured per-call timeout.
func (c *Config) httpmiTimeout() time.Duration {
	return c.HTTPMI.Timeout.Duration
}
