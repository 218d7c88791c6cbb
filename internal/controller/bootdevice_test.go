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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexandremahdhaoui/secureboot/internal/controller"
	"github.com/alexandremahdhaoui/secureboot/internal/types"
	"github.com/alexandremahdhaoui/secureboot/internal/util/mocks/mockcontroller"
	"github.com/alexandremahdhaoui/secureboot/internal/util/testutil"
)

func TestBootDeviceSetter(t *testing.T) {
	ctx := context.Background()
	node := testutil.NewTypesNode("http://proxy")
	supported := []types.BootDevice{types.BootDevicePXE, types.BootDeviceDisk}

	t.Run("supported devices are delegated", func(t *testing.T) {
		management := mockcontroller.NewMockManagementInterface(t)
		management.On("GetSupportedBootDevices", ctx, node).Return(supported).Once()
		management.On("SetBootDevice", ctx, node, types.BootDeviceDisk, true).Return(nil).Once()

		setter := controller.NewBootDeviceSetter(management)
		assert.NoError(t, setter.SetBootDevice(ctx, node, types.BootDeviceDisk, true))
	})

	t.Run("unsupported devices are rejected", func(t *testing.T) {
		management := mockcontroller.NewMockManagementInterface(t)
		management.On("GetSupportedBootDevices", ctx, node).Return(supported).Once()

		setter := controller.NewBootDeviceSetter(management)
		err := setter.SetBootDevice(ctx, node, types.BootDevice("cdrom"), false)

		var invalid *types.InvalidParameterError
		require.True(t, errors.As(err, &invalid))
		assert.Equal(t, "cdrom", invalid.Value)
		assert.ErrorIs(t, err, types.ErrConfiguration)
		management.AssertNotCalled(t, "SetBootDevice")
	})
}
