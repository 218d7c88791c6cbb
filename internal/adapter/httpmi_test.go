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

package adapter_test

import (
	"context"
	"crypto/tls"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexandremahdhaoui/secureboot/internal/adapter"
	"github.com/alexandremahdhaoui/secureboot/internal/types"
	"github.com/alexandremahdhaoui/secureboot/internal/util/certutil"
	"github.com/alexandremahdhaoui/secureboot/internal/util/fakes/httpmifake"
	"github.com/alexandremahdhaoui/secureboot/internal/util/testutil"
)

func TestHTTPMI_Call(t *testing.T) {
	var (
		ctx   context.Context
		fake  *httpmifake.Fake
		node  types.Node
		reg   *prometheus.Registry
		httpm adapter.HTTPMI
	)

	setup := func(t *testing.T) func() {
		t.Helper()

		ctx = context.Background()
		fake = httpmifake.New(t)
		node = testutil.NewTypesNode(fake.URL())
		reg = prometheus.NewRegistry()
		httpm = adapter.NewHTTPMI(adapter.HTTPMIOptions{Metrics: adapter.NewMetrics(reg)})

		return func() {
			t.Helper()

			fake.AssertExpectationsAndShutdown()
		}
	}

	t.Run("Success", func(t *testing.T) {
		t.Run("read", func(t *testing.T) {
			defer setup(t)()

			fake.AppendExpectation(httpmifake.Respond(http.StatusOK, map[string]string{"state": "power on"}))

			out, err := httpm.Call(ctx, node, adapter.MethodRead, "/power", nil)
			require.NoError(t, err)
			assert.Equal(t, map[string]any{"state": "power on"}, out)

			reqs := fake.Requests()
			require.Len(t, reqs, 1)
			assert.Equal(t, http.MethodGet, reqs[0].Method)
			assert.Equal(t, "/power", reqs[0].Path)
			assert.Equal(t, testutil.IPMIUsername, reqs[0].Form.Get("user"))
			assert.Equal(t, testutil.IPMIPassword, reqs[0].Form.Get("password"))
			assert.Equal(t, testutil.IPMIAddress, reqs[0].Form.Get("bmc"))
			assert.False(t, reqs[0].Form.Has("port"))

			expected := `
# HELP secureboot_httpmi_requests_total Number of calls made to httpmi proxies, by method, path and response code.
# TYPE secureboot_httpmi_requests_total counter
secureboot_httpmi_requests_total{code="200",method="GET",path="/power"} 1
`
			assert.NoError(t, promtestutil.GatherAndCompare(
				reg, strings.NewReader(expected), "secureboot_httpmi_requests_total"))
		})

		t.Run("write merges fields over credentials", func(t *testing.T) {
			defer setup(t)()

			node.DriverInfo[types.DriverInfoIPMIPort] = testutil.IPMIPort
			fake.AppendExpectation(httpmifake.Respond(http.StatusOK, map[string]string{}))

			_, err := httpm.Call(ctx, node, adapter.MethodWrite, "/boot-device", map[string]string{
				"device": "hd",
				"user":   "override",
			})
			require.NoError(t, err)

			reqs := fake.Requests()
			require.Len(t, reqs, 1)
			assert.Equal(t, http.MethodPost, reqs[0].Method)
			assert.Equal(t, "/boot-device", reqs[0].Path)
			assert.Equal(t, "hd", reqs[0].Form.Get("device"))
			assert.Equal(t, "override", reqs[0].Form.Get("user"))
			assert.Equal(t, testutil.IPMIPort, reqs[0].Form.Get("port"))
		})

		t.Run("empty body", func(t *testing.T) {
			defer setup(t)()

			fake.AppendExpectation(httpmifake.Respond(http.StatusOK, nil))

			out, err := httpm.Call(ctx, node, adapter.MethodWrite, "/power", map[string]string{"state": "power on"})
			require.NoError(t, err)
			assert.Empty(t, out)
		})
	})

	t.Run("Failure", func(t *testing.T) {
		t.Run("non-200 status", func(t *testing.T) {
			defer setup(t)()

			fake.AppendExpectation(httpmifake.Respond(http.StatusBadGateway, map[string]string{"error": "bmc unreachable"}))

			_, err := httpm.Call(ctx, node, adapter.MethodWrite, "/power", map[string]string{"state": "power off"})
			assert.ErrorIs(t, err, types.ErrRemoteControl)

			var rcErr *types.RemoteControlError
			require.True(t, errors.As(err, &rcErr))
			assert.Equal(t, http.MethodPost, rcErr.Method)
			assert.Equal(t, "/power", rcErr.Path)
			assert.Equal(t, http.StatusBadGateway, rcErr.StatusCode)
			assert.Equal(t, map[string]string{"state": "power off"}, rcErr.Fields)
			assert.NotContains(t, err.Error(), testutil.IPMIPassword)
		})

		t.Run("malformed body", func(t *testing.T) {
			defer setup(t)()

			fake.AppendExpectation(httpmifake.Respond(http.StatusOK, []byte("<html>oops</html>")))

			_, err := httpm.Call(ctx, node, adapter.MethodRead, "/boot-device", nil)
			assert.ErrorIs(t, err, types.ErrRemoteControl)
		})

		t.Run("transport failure", func(t *testing.T) {
			defer setup(t)()

			// closing the server up front makes the connection fail.
			fake.Server.Close()

			_, err := httpm.Call(ctx, node, adapter.MethodRead, "/power", nil)
			assert.ErrorIs(t, err, types.ErrRemoteControl)

			var rcErr *types.RemoteControlError
			require.True(t, errors.As(err, &rcErr))
			assert.Zero(t, rcErr.StatusCode)
			assert.Equal(t, http.MethodGet, rcErr.Method)
		})

		t.Run("missing proxy url", func(t *testing.T) {
			defer setup(t)()

			node = testutil.WithoutDriverInfo(node, types.DriverInfoHTTPMIURL)

			_, err := httpm.Call(ctx, node, adapter.MethodRead, "/power", nil)
			assert.ErrorIs(t, err, types.ErrConfiguration)
			assert.NotErrorIs(t, err, types.ErrRemoteControl)
		})

		t.Run("missing credentials", func(t *testing.T) {
			defer setup(t)()

			node = testutil.WithoutDriverInfo(node, types.DriverInfoIPMIPassword)

			_, err := httpm.Call(ctx, node, adapter.MethodRead, "/power", nil)
			assert.ErrorIs(t, err, types.ErrConfiguration)
		})
	})
}

func TestHTTPMI_Call_MTLS(t *testing.T) {
	ca, err := certutil.NewCA()
	require.NoError(t, err)

	client, err := ca.IssueClient("conductor")
	require.NoError(t, err)

	clientCert, err := client.TLSCertificate()
	require.NoError(t, err)

	t.Run("client certificate is presented", func(t *testing.T) {
		fake := httpmifake.NewMTLS(t, ca)
		defer fake.AssertExpectationsAndShutdown()

		fake.AppendExpectation(httpmifake.Respond(http.StatusOK, map[string]string{"device": "pxe"}))

		httpm := adapter.NewHTTPMI(adapter.HTTPMIOptions{
			TLSConfig: &tls.Config{ //nolint:exhaustruct
				MinVersion:   tls.VersionTLS12,
				RootCAs:      ca.Pool(),
				Certificates: []tls.Certificate{clientCert},
			},
		})

		out, err := httpm.Call(context.Background(), testutil.NewTypesNode(fake.URL()), adapter.MethodRead, "/boot-device", nil)
		require.NoError(t, err)
		assert.Equal(t, "pxe", out["device"])
	})

	t.Run("handshake fails without client certificate", func(t *testing.T) {
		fake := httpmifake.NewMTLS(t, ca)
		defer fake.AssertExpectationsAndShutdown()

		httpm := adapter.NewHTTPMI(adapter.HTTPMIOptions{
			TLSConfig: &tls.Config{ //nolint:exhaustruct
				MinVersion: tls.VersionTLS12,
				RootCAs:    ca.Pool(),
			},
		})

		_, err := httpm.Call(context.Background(), testutil.NewTypesNode(fake.URL()), adapter.MethodRead, "/boot-device", nil)
		assert.ErrorIs(t, err, types.ErrRemoteControl)
	})
}
