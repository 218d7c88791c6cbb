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

package controller_test

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexandremahdhaoui/secureboot/internal/adapter"
	"github.com/alexandremahdhaoui/secureboot/internal/controller"
	"github.com/alexandremahdhaoui/secureboot/internal/types"
	"github.com/alexandremahdhaoui/secureboot/internal/util/fakes/httpmifake"
	"github.com/alexandremahdhaoui/secureboot/internal/util/testutil"
)

func TestSecurebootHardware(t *testing.T) {
	var (
		ctx      context.Context
		fake     *httpmifake.Fake
		paths    adapter.Paths
		hardware *controller.Hardware
	)

	setup := func(t *testing.T) {
		t.Helper()

		ctx = context.Background()
		fake = httpmifake.New(t)
		paths = adapter.NewPaths(t.TempDir(), testutil.NewImageStore(t))

		metrics := adapter.NewMetrics(prometheus.NewRegistry())
		hardware = controller.NewSecurebootHardware(
			adapter.NewHTTPMI(adapter.HTTPMIOptions{Metrics: metrics}),
			adapter.NewStager(paths, metrics),
		)
	}

	t.Run("Name", func(t *testing.T) {
		setup(t)
		defer fake.AssertExpectationsAndShutdown()

		assert.Equal(t, "secureboot_httpmi", hardware.Name)
	})

	t.Run("Properties", func(t *testing.T) {
		setup(t)
		defer fake.AssertExpectationsAndShutdown()

		props := hardware.Properties()
		for _, key := range append(append([]string{types.DriverInfoHTTPMIURL}, types.BMCKeys...), types.SecurebootKeys...) {
			assert.Contains(t, props, key)
		}
	})

	t.Run("Validate", func(t *testing.T) {
		setup(t)
		defer fake.AssertExpectationsAndShutdown()

		node := testutil.NewTypesNode(fake.URL())
		require.NoError(t, hardware.Validate(ctx, node))

		err := hardware.Validate(ctx, types.Node{UUID: node.UUID})
		assert.ErrorIs(t, err, types.ErrConfiguration)
		assert.Empty(t, fake.Requests())
	})

	t.Run("PrepareInstance then CleanUpInstance", func(t *testing.T) {
		setup(t)
		defer fake.AssertExpectationsAndShutdown()

		fake.AppendExpectation(httpmifake.Respond(http.StatusOK, map[string]string{}))

		node := testutil.NewTypesNode(fake.URL())
		require.NoError(t, hardware.Boot.PrepareInstance(ctx, node))

		// boot device is pinned to disk
		reqs := fake.Requests()
		require.Len(t, reqs, 1)
		assert.Equal(t, http.MethodPost, reqs[0].Method)
		assert.Equal(t, "/boot-device", reqs[0].Path)
		assert.Equal(t, "hd", reqs[0].Form.Get("device"))
		assert.Equal(t, testutil.IPMIUsername, reqs[0].Form.Get("user"))

		// secure root
		secure := paths.SecureRoot(node.UUID)
		for name, id := range map[string]string{
			"kernel":  testutil.KernelImageID,
			"ramdisk": testutil.RamdiskImageID,
			"squash":  testutil.SquashImageID,
		} {
			target, err := os.Readlink(filepath.Join(secure, name))
			require.NoError(t, err)
			assert.Equal(t, paths.ImagePath(id), target)
		}

		// insecure root
		insecure := paths.InsecureRoot(node.UUID)

		b, err := os.ReadFile(filepath.Join(insecure, adapter.KeyDatFilename))
		require.NoError(t, err)
		assert.Equal(t, testutil.SecurebootKeyDatPlain, string(b))

		b, err = os.ReadFile(filepath.Join(insecure, adapter.KeyFilename))
		require.NoError(t, err)
		assert.Equal(t, testutil.SecurebootKey, string(b))

		b, err = os.ReadFile(filepath.Join(insecure, adapter.CertificateFilename))
		require.NoError(t, err)
		assert.Equal(t, testutil.SecurebootCertificate, string(b))

		require.NoError(t, hardware.Boot.CleanUpInstance(ctx, node))
		assert.Nil(t, testutil.ListTree(t, secure))
		assert.Nil(t, testutil.ListTree(t, insecure))
	})

	t.Run("CleanUpInstance on a node never prepared", func(t *testing.T) {
		setup(t)
		defer fake.AssertExpectationsAndShutdown()

		assert.NoError(t, hardware.Boot.CleanUpInstance(ctx, testutil.NewTypesNode(fake.URL())))
	})

	t.Run("PrepareInstance surfaces proxy failures", func(t *testing.T) {
		setup(t)
		defer fake.AssertExpectationsAndShutdown()

		fake.AppendExpectation(httpmifake.Respond(http.StatusBadGateway, nil))

		err := hardware.Boot.PrepareInstance(ctx, testutil.NewTypesNode(fake.URL()))

		var rcErr *types.RemoteControlError
		require.True(t, errors.As(err, &rcErr))
		assert.Equal(t, http.StatusBadGateway, rcErr.StatusCode)
		assert.Equal(t, "/boot-device", rcErr.Path)
	})

	t.Run("Reboot", func(t *testing.T) {
		setup(t)
		defer fake.AssertExpectationsAndShutdown()

		fake.
			AppendExpectation(httpmifake.Respond(http.StatusOK, map[string]string{})).
			AppendExpectation(httpmifake.Respond(http.StatusOK, map[string]string{})).
			AppendExpectation(httpmifake.Respond(http.StatusOK, map[string]string{"state": "power on"}))

		node := testutil.NewTypesNode(fake.URL())
		require.NoError(t, hardware.Power.Reboot(ctx, node))

		state, err := hardware.Power.GetPowerState(ctx, node)
		require.NoError(t, err)
		assert.Equal(t, types.PowerOn, state)

		reqs := fake.Requests()
		require.Len(t, reqs, 3)
		assert.Equal(t, http.MethodGet, reqs[2].Method)
	})
}
