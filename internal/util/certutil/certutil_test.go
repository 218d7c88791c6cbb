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

package certutil_test

import (
	"crypto/x509"
	"encoding/pem"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexandremahdhaoui/secureboot/internal/util/certutil"
)

func parseCert(t *testing.T, b []byte) *x509.Certificate {
	t.Helper()

	block, rest := pem.Decode(b)
	require.NotNil(t, block)
	assert.Empty(t, rest)
	assert.Equal(t, "CERTIFICATE", block.Type)

	cert, err := x509.ParseCertificate(block.Bytes)
	require.NoError(t, err)

	return cert
}

func TestNewCA(t *testing.T) {
	ca, err := certutil.NewCA()
	require.NoError(t, err)

	cert := parseCert(t, ca.Cert())
	assert.True(t, cert.IsCA)
	assert.True(t, cert.BasicConstraintsValid)
	assert.Contains(t, cert.Subject.Organization, "Use in test only!")
	assert.NotNil(t, ca.Pool())
}

func TestCA_IssueServer(t *testing.T) {
	ca, err := certutil.NewCA()
	require.NoError(t, err)

	kp, err := ca.IssueServer("127.0.0.1", "localhost")
	require.NoError(t, err)

	cert := parseCert(t, kp.Cert)
	assert.Equal(t, []string{"localhost"}, cert.DNSNames)
	require.Len(t, cert.IPAddresses, 1)
	assert.True(t, cert.IPAddresses[0].Equal(net.ParseIP("127.0.0.1")))
	assert.Contains(t, cert.ExtKeyUsage, x509.ExtKeyUsageServerAuth)

	_, err = cert.Verify(x509.VerifyOptions{ //nolint:exhaustruct
		Roots:     ca.Pool(),
		DNSName:   "localhost",
		KeyUsages: []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
	})
	assert.NoError(t, err)

	_, err = kp.TLSCertificate()
	assert.NoError(t, err)
}

func TestCA_IssueClient(t *testing.T) {
	ca, err := certutil.NewCA()
	require.NoError(t, err)

	kp, err := ca.IssueClient("conductor")
	require.NoError(t, err)

	cert := parseCert(t, kp.Cert)
	assert.Equal(t, "conductor", cert.Subject.CommonName)

	_, err = cert.Verify(x509.VerifyOptions{ //nolint:exhaustruct
		Roots:     ca.Pool(),
		KeyUsages: []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth},
	})
	assert.NoError(t, err)

	t.Run("certificates of another CA are rejected", func(t *testing.T) {
		other, err := certutil.NewCA()
		require.NoError(t, err)

		_, err = cert.Verify(x509.VerifyOptions{ //nolint:exhaustruct
			Roots:     other.Pool(),
			KeyUsages: []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth},
		})
		assert.Error(t, err)
	})
}
