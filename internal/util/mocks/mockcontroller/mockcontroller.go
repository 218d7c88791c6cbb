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

// Package mockcontroller provides testify mocks of the controller interfaces.
package mockcontroller

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/alexandremahdhaoui/secureboot/internal/controller"
	"github.com/alexandremahdhaoui/secureboot/internal/types"
)

type testingT interface {
	mock.TestingT
	Cleanup(func())
}

// ----------------------------------------------- BOOT DEVICE SETTER ----------------------------------------------- //

var _ controller.BootDeviceSetter = &MockBootDeviceSetter{}

type MockBootDeviceSetter struct {
	mock.Mock
}

// NewMockBootDeviceSetter returns a MockBootDeviceSetter whose expectations are asserted on test cleanup.
func NewMockBootDeviceSetter(t testingT) *MockBootDeviceSetter {
	m := &MockBootDeviceSetter{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockBootDeviceSetter) SetBootDevice(
	ctx context.Context,
	node types.Node,
	device types.BootDevice,
	persistent bool,
) error {
	return m.Called(ctx, node, device, persistent).Error(0)
}

// ---------------------------------------------- MANAGEMENT INTERFACE ---------------------------------------------- //

var _ controller.ManagementInterface = &MockManagementInterface{}

type MockManagementInterface struct {
	mock.Mock
}

// NewMockManagementInterface returns a MockManagementInterface whose expectations are asserted on test cleanup.
func NewMockManagementInterface(t testingT) *MockManagementInterface {
	m := &MockManagementInterface{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockManagementInterface) Properties() map[string]string {
	v, _ := m.Called().Get(0).(map[string]string)
	return v
}

func (m *MockManagementInterface) Validate(ctx context.Context, node types.Node) error {
	return m.Called(ctx, node).Error(0)
}

func (m *MockManagementInterface) GetSupportedBootDevices(ctx context.Context, node types.Node) []types.BootDevice {
	v, _ := m.Called(ctx, node).Get(0).([]types.BootDevice)
	return v
}

func (m *MockManagementInterface) SetBootDevice(
	ctx context.Context,
	node types.Node,
	device types.BootDevice,
	persistent bool,
) error {
	return m.Called(ctx, node, device, persistent).Error(0)
}

func (m *MockManagementInterface) GetBootDevice(ctx context.Context, node types.Node) (types.BootDevice, error) {
	args := m.Called(ctx, node)
	v, _ := args.Get(0).(types.BootDevice)

	return v, args.Error(1)
}

func (m *MockManagementInterface) GetSensorsData(ctx context.Context, node types.Node) (map[string]any, error) {
	args := m.Called(ctx, node)
	v, _ := args.Get(0).(map[string]any)

	return v, args.Error(1)
}
