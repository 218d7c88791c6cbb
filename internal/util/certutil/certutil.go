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

// Package certutil issues throwaway certificates for exercising mutual TLS in tests.
package certutil

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"fmt"
	"math/big"
	"net"
	"time"
)

var (
	ErrCreateCA     = errors.New("creating certificate authority")
	ErrIssueKeyPair = errors.New("issuing certified key pair")
)

const validity = 2 * time.Hour

// ------------------------------------------------------- CA ------------------------------------------------------- //

// CA is a self-signed certificate authority.
type CA struct {
	key  *ecdsa.PrivateKey
	cert *x509.Certificate
	pool *x509.CertPool
}

// NewCA creates a new self-signed CA.
func NewCA() (*CA, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, errors.Join(err, ErrCreateCA)
	}

	serial, err := newSerial()
	if err != nil {
		return nil, errors.Join(err, ErrCreateCA)
	}

	tpl := &x509.Certificate{ //nolint:exhaustruct
		Subject:               pkix.Name{CommonName: "secureboot test CA", Organization: []string{"Use in test only!"}},
		SerialNumber:          serial,
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(validity),
		IsCA:                  true,
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign | x509.KeyUsageCRLSign,
		BasicConstraintsValid: true,
	}

	raw, err := x509.CreateCertificate(rand.Reader, tpl, tpl, key.Public(), key)
	if err != nil {
		return nil, errors.Join(err, ErrCreateCA)
	}

	cert, err := x509.ParseCertificate(raw)
	if err != nil {
		return nil, errors.Join(err, ErrCreateCA)
	}

	pool := x509.NewCertPool()
	pool.AddCert(cert)

	return &CA{key: key, cert: cert, pool: pool}, nil
}

// Pool returns a pool containing only the CA certificate.
func (ca *CA) Pool() *x509.CertPool {
	return ca.pool
}

// Cert returns the CA certificate in PEM format.
func (ca *CA) Cert() []byte {
	return pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: ca.cert.Raw})
}

// --------------------------------------------------- KEY PAIRS ---------------------------------------------------- //

// KeyPair is a PEM-encoded private key and the certificate issued for it.
type KeyPair struct {
	Key  []byte
	Cert []byte
}

// TLSCertificate parses the key pair.
func (kp KeyPair) TLSCertificate() (tls.Certificate, error) {
	return tls.X509KeyPair(kp.Cert, kp.Key)
}

// IssueServer issues a server certificate valid for hosts. IP addresses are added as IP SANs.
func (ca *CA) IssueServer(hosts ...string) (KeyPair, error) {
	tpl := &x509.Certificate{ //nolint:exhaustruct
		Subject:     pkix.Name{CommonName: "secureboot test server"},
		ExtKeyUsage: []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
	}

	for _, h := range hosts {
		if ip := net.ParseIP(h); ip != nil {
			tpl.IPAddresses = append(tpl.IPAddresses, ip)
		} else {
			tpl.DNSNames = append(tpl.DNSNames, h)
		}
	}

	return ca.issue(tpl)
}

// IssueClient issues a client certificate with the given common name.
func (ca *CA) IssueClient(commonName string) (KeyPair, error) {
	return ca.issue(&x509.Certificate{ //nolint:exhaustruct
		Subject:     pkix.Name{CommonName: commonName},
		ExtKeyUsage: []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth},
	})
}

func (ca *CA) issue(tpl *x509.Certificate) (KeyPair, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return KeyPair{}, errors.Join(err, ErrIssueKeyPair)
	}

	serial, err := newSerial()
	if err != nil {
		return KeyPair{}, errors.Join(err, ErrIssueKeyPair)
	}

	tpl.SerialNumber = serial
	tpl.NotBefore = time.Now().Add(-time.Hour)
	tpl.NotAfter = time.Now().Add(validity)
	tpl.KeyUsage = x509.KeyUsageDigitalSignature

	raw, err := x509.CreateCertificate(rand.Reader, tpl, ca.cert, key.Public(), ca.key)
	if err != nil {
		return KeyPair{}, errors.Join(err, ErrIssueKeyPair)
	}

	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return KeyPair{}, errors.Join(fmt.Errorf("marshaling private key: %w", err), ErrIssueKeyPair)
	}

	return KeyPair{
		Key:  pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}),
		Cert: pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: raw}),
	}, nil
}

func newSerial() (*big.Int, error) {
	return rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 62))
}
