// Copyright 2024 Alexandre Mahdhaoui
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package adapter

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/alexandremahdhaoui/secureboot/internal/types"
)

var errMalformedResponse = errors.New("malformed httpmi response")

// Method is the kind of call made to the httpmi proxy.
type Method string

const (
	// MethodRead reads state from the proxy.
	MethodRead Method = http.MethodGet
	// MethodWrite changes state through the proxy.
	MethodWrite Method = http.MethodPost
)

// --------------------------------------------------- INTERFACE ---------------------------------------------------- //

// HTTPMI calls the httpmi proxy fronting a node's BMC.
//
// Calls are never retried. Transport failures, non-200 responses and undecodable bodies are all
// reported as a *types.RemoteControlError.
type HTTPMI interface {
	// Call sends the node's BMC credentials merged with fields to the node's proxy at path.
	// Fields override credentials on key collision.
	// It returns the JSON-decoded response body.
	Call(
		ctx context.Context,
		node types.Node,
		method Method,
		path string,
		fields map[string]string,
	) (map[string]any, error)
}

// -------------------------------------------------- CONSTRUCTOR --------------------------------------------------- //

// HTTPMIOptions configures the httpmi client.
type HTTPMIOptions struct {
	// TLSConfig is used to authenticate against proxies served over https. Optional.
	TLSConfig *tls.Config
	// Timeout bounds every call. Zero means no timeout.
	Timeout time.Duration
	// Metrics records calls. Optional.
	Metrics *Metrics
}

// NewHTTPMI returns a new HTTPMI client.
func NewHTTPMI(opts HTTPMIOptions) HTTPMI {
	transport := http.DefaultTransport.(*http.Transport).Clone() //nolint:forcetypeassert
	transport.TLSClientConfig = opts.TLSConfig

	return &httpmi{
		client: &http.Client{ //nolint:exhaustruct
			Transport: transport,
			Timeout:   opts.Timeout,
		},
		metrics: opts.Metrics,
	}
}

// ------------------------------------------------- HTTPMI CLIENT -------------------------------------------------- //

type httpmi struct {
	client  *http.Client
	metrics *Metrics
}

func (h *httpmi) Call(
	ctx context.Context,
	node types.Node,
	method Method,
	path string,
	fields map[string]string,
) (map[string]any, error) {
	baseURL := node.DriverInfo[types.DriverInfoHTTPMIURL]
	if baseURL == "" {
		return nil, &types.MissingParameterError{
			NodeUUID: node.UUID,
			Section:  types.DriverInfoSection,
			Keys:     []string{types.DriverInfoHTTPMIURL},
		}
	}

	credentials, err := BMCCredentials(node)
	if err != nil {
		return nil, err
	}

	payload := url.Values{}
	for k, v := range credentials.Fields() {
		payload.Set(k, v)
	}

	for k, v := range fields {
		payload.Set(k, v)
	}

	fail := func(statusCode int, err error) error {
		return &types.RemoteControlError{
			Method:     string(method),
			Path:       path,
			Fields:     fields,
			StatusCode: statusCode,
			Err:        err,
		}
	}

	req, err := http.NewRequestWithContext(ctx, string(method), baseURL+path, strings.NewReader(payload.Encode()))
	if err != nil {
		return nil, fail(0, err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	slog.DebugContext(ctx, "calling httpmi",
		"node_uuid", node.UUID.String(),
		"method", string(method),
		"path", path,
	)

	start := time.Now()

	resp, err := h.client.Do(req)
	if err != nil {
		h.metrics.observeHTTPMICall(string(method), path, transportErrorCode, time.Since(start))
		return nil, fail(0, err)
	}

	defer func() { _ = resp.Body.Close() }()

	h.metrics.observeHTTPMICall(string(method), path, strconv.Itoa(resp.StatusCode), time.Since(start))

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fail(resp.StatusCode, nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fail(resp.StatusCode, err)
	}

	out := make(map[string]any)
	if len(bytes.TrimSpace(body)) == 0 {
		return out, nil
	}

	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fail(resp.StatusCode, errors.Join(err, errMalformedResponse))
	}

	return out, nil
}
