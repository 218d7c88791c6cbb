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

package tlsutil

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
)

var (
	// ErrCertNotFound is returned when the certificate file does not exist.
	ErrCertNotFound = errors.New("certificate file not found")
	// ErrKeyNotFound is returned when the key file does not exist.
	ErrKeyNotFound = errors.New("key file not found")
	// ErrCANotFound is returned when the CA file does not exist.
	ErrCANotFound = errors.New("CA file not found")
	// ErrInvalidClientAuth is returned when the clientAuth value is not valid.
	ErrInvalidClientAuth = errors.New("invalid clientAuth value")
	// ErrIncompleteKeyPair is returned when only one of the certificate and key paths is set.
	ErrIncompleteKeyPair = errors.New("certificate and key must be set together")
	ErrLoadCertFailed    = errors.New("failed to load certificate")
	ErrLoadCAFailed      = errors.New("failed to load CA file")
	ErrParseCAFailed     = errors.New("failed to parse CA certificate")
)

// ----------------------------------------------------- SERVER ----------------------------------------------------- //

// ServerConfig holds the TLS parameters of a listening server.
type ServerConfig struct {
	// Enabled enables TLS for the server.
	Enabled bool `json:"enabled"`
	// ClientAuth specifies the client authentication policy.
	// Valid values: "none", "request", "require".
	ClientAuth string `json:"clientAuth"`
	// CertPath is the path to the server certificate file.
	CertPath string `json:"certPath"`
	// KeyPath is the path to the server private key file.
	KeyPath string `json:"keyPath"`
	// CAPath is the path to the CA certificate file for client verification.
	CAPath string `json:"caPath"`
}

// BuildServerTLSConfig builds a server tls.Config.
//
// Returns nil, nil when TLS is disabled. The CA is only read when ClientAuth is not "none".
func BuildServerTLSConfig(config *ServerConfig) (*tls.Config, error) {
	if config == nil || !config.Enabled {
		return nil, nil
	}

	if err := statFile(config.CertPath, ErrCertNotFound); err != nil {
		return nil, err
	}

	if err := statFile(config.KeyPath, ErrKeyNotFound); err != nil {
		return nil, err
	}

	clientAuthType, err := parseClientAuth(config.ClientAuth)
	if err != nil {
		return nil, err
	}

	cert, err := tls.LoadX509KeyPair(config.CertPath, config.KeyPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadCertFailed, err)
	}

	tlsConfig := &tls.Config{ //nolint:exhaustruct
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
		ClientAuth:   clientAuthType,
	}

	if clientAuthType != tls.NoClientCert {
		if tlsConfig.ClientCAs, err = loadCAPool(config.CAPath); err != nil {
			return nil, err
		}
	}

	return tlsConfig, nil
}

// ----------------------------------------------------- CLIENT ----------------------------------------------------- //

// ClientConfig holds the TLS parameters used to reach an https endpoint.
type ClientConfig struct {
	// CAPath is the path to the CA bundle used to verify the server. The system pool is used when empty.
	CAPath string `json:"caPath"`
	// CertPath is the path to the client certificate presented to the server.
	CertPath string `json:"certPath"`
	// KeyPath is the path to the client private key.
	KeyPath string `json:"keyPath"`
	// ServerName overrides the name used to verify the server certificate.
	ServerName string `json:"serverName"`
	// InsecureSkipVerify disables server certificate verification.
	InsecureSkipVerify bool `json:"insecureSkipVerify"`
}

// BuildClientTLSConfig builds a client tls.Config.
//
// Returns nil, nil when config is nil or zero, letting the transport use its defaults.
func BuildClientTLSConfig(config *ClientConfig) (*tls.Config, error) {
	if config == nil || *config == (ClientConfig{}) {
		return nil, nil
	}

	if (config.CertPath == "") != (config.KeyPath == "") {
		return nil, ErrIncompleteKeyPair
	}

	tlsConfig := &tls.Config{ //nolint:exhaustruct
		MinVersion:         tls.VersionTLS12,
		ServerName:         config.ServerName,
		InsecureSkipVerify: config.InsecureSkipVerify, //nolint:gosec
	}

	if config.CAPath != "" {
		pool, err := loadCAPool(config.CAPath)
		if err != nil {
			return nil, err
		}

		tlsConfig.RootCAs = pool
	}

	if config.CertPath != "" {
		if err := statFile(config.CertPath, ErrCertNotFound); err != nil {
			return nil, err
		}

		if err := statFile(config.KeyPath, ErrKeyNotFound); err != nil {
			return nil, err
		}

		cert, err := tls.LoadX509KeyPair(config.CertPath, config.KeyPath)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadCertFailed, err)
		}

		tlsConfig.Certificates = []tls.Certificate{cert}
	}

	return tlsConfig, nil
}

// ----------------------------------------------------- HELPERS ---------------------------------------------------- //

func statFile(path string, notFound error) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("%w: %s", notFound, path)
	}

	return nil
}

func loadCAPool(path string) (*x509.CertPool, error) {
	if err := statFile(path, ErrCANotFound); err != nil {
		return nil, err
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadCAFailed, err)
	}

	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(b) {
		return nil, fmt.Errorf("%w: %s", ErrParseCAFailed, path)
	}

	return pool, nil
}

// parseClientAuth maps a clientAuth string to tls.ClientAuthType.
func parseClientAuth(clientAuth string) (tls.ClientAuthType, error) {
	switch clientAuth {
	case "", "none":
		return tls.NoClientCert, nil
	case "request":
		return tls.RequestClientCert, nil
	case "require":
		return tls.RequireAndVerifyClientCert, nil
	default:
		return 0, fmt.Errorf("%w: %q (valid values: none, request, require)", ErrInvalidClientAuth, clientAuth)
	}
}
