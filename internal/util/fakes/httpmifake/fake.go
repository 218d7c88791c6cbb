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

// Package httpmifake provides a scripted httpmi proxy for tests.
package httpmifake

import (
	"crypto/tls"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexandremahdhaoui/secureboot/internal/util/certutil"
)

// Request is a call received by the fake.
type Request struct {
	Method string
	Path   string
	Form   url.Values
}

// Expectation answers the n-th call with a status code and a body. A nil body writes nothing,
// a []byte body is written verbatim and anything else is JSON-encoded.
type Expectation = func(req Request) (int, any)

// Respond returns an Expectation answering with status and body.
func Respond(status int, body any) Expectation {
	return func(_ Request) (int, any) {
		return status, body
	}
}

type Fake struct {
	t *testing.T

	mu           sync.Mutex
	expectations []Expectation
	requests     []Request

	Server *httptest.Server
}

// New starts a fake serving plain http.
func New(t *testing.T) *Fake {
	t.Helper()

	f := &Fake{t: t}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serveHTTP))

	return f
}

// NewMTLS starts a fake serving https with a certificate issued by ca. Clients must present a
// certificate issued by ca.
func NewMTLS(t *testing.T, ca *certutil.CA) *Fake {
	t.Helper()

	kp, err := ca.IssueServer("127.0.0.1")
	require.NoError(t, err)

	cert, err := kp.TLSCertificate()
	require.NoError(t, err)

	f := &Fake{t: t}
	f.Server = httptest.NewUnstartedServer(http.HandlerFunc(f.serveHTTP))
	f.Server.TLS = &tls.Config{ //nolint:exhaustruct
		MinVersion:   tls.VersionTLS12,
		Certificates: []tls.Certificate{cert},
		ClientCAs:    ca.Pool(),
		ClientAuth:   tls.RequireAndVerifyClientCert,
	}
	f.Server.StartTLS()

	return f
}

// URL is the base URL to store in a node's httpmi_url.
func (f *Fake) URL() string {
	return f.Server.URL
}

func (f *Fake) AppendExpectation(expectation Expectation) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.expectations = append(f.expectations, expectation)

	return f
}

// Requests returns a copy of the calls received so far.
func (f *Fake) Requests() []Request {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]Request(nil), f.requests...)
}

func (f *Fake) AssertExpectationsAndShutdown() *Fake {
	f.t.Helper()

	f.Server.Close()

	f.mu.Lock()
	defer f.mu.Unlock()

	assert.Equal(f.t, len(f.expectations), len(f.requests), "unexpected number of httpmi calls")

	return f
}

func (f *Fake) serveHTTP(w http.ResponseWriter, r *http.Request) {
	// ParseForm ignores the body of GET requests, the proxy protocol does not.
	b, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	form, err := url.ParseQuery(string(b))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	req := Request{Method: r.Method, Path: r.URL.Path, Form: form}

	f.mu.Lock()
	n := len(f.requests)
	f.requests = append(f.requests, req)

	var expectation Expectation
	if n < len(f.expectations) {
		expectation = f.expectations[n]
	}
	f.mu.Unlock()

	if expectation == nil {
		f.t.Errorf("unexpected httpmi call #%d: %s %s", n, req.Method, req.Path)
		http.Error(w, "unexpected call", http.StatusInternalServerError)

		return
	}

	status, body := expectation(req)

	switch v := body.(type) {
	case nil:
		w.WriteHeader(status)
	case []byte:
		w.WriteHeader(status)
		_, _ = w.Write(v)
	default:
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}
}
