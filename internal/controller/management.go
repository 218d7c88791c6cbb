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

package controller

import (
	"context"

	"github.com/alexandremahdhaoui/secureboot/internal/adapter"
	"github.com/alexandremahdhaoui/secureboot/internal/types"
)

// --------------------------------------------------- INTERFACES --------------------------------------------------- //

// ManagementInterface selects the boot device of a node.
type ManagementInterface interface {
	// Properties describes the driver info keys this interface reads.
	Properties() map[string]string
	// Validate checks the node can be reached through its httpmi proxy.
	Validate(ctx context.Context, node types.Node) error
	// GetSupportedBootDevices returns the boot devices SetBootDevice accepts.
	GetSupportedBootDevices(ctx context.Context, node types.Node) []types.BootDevice
	// SetBootDevice selects the boot device of the node.
	SetBootDevice(ctx context.Context, node types.Node, device types.BootDevice, persistent bool) error
	// GetBootDevice returns the boot device reported by the proxy, verbatim.
	GetBootDevice(ctx context.Context, node types.Node) (types.BootDevice, error)
	// GetSensorsData returns sensor readings of the node.
	GetSensorsData(ctx context.Context, node types.Node) (map[string]any, error)
}

// -------------------------------------------------- CONSTRUCTORS -------------------------------------------------- //

// NewHTTPMIManagement returns a ManagementInterface backed by the node's httpmi proxy.
func NewHTTPMIManagement(httpmi adapter.HTTPMI) ManagementInterface {
	return &httpmiManagement{httpmi: httpmi}
}

// ----------------------------------------------- HTTPMI MANAGEMENT ------------------------------------------------ //

type httpmiManagement struct {
	httpmi adapter.HTTPMI
}

func (m *httpmiManagement) Properties() map[string]string {
	return httpmiProperties()
}

func (m *httpmiManagement) Validate(_ context.Context, node types.Node) error {
	return validateHTTPMI(node)
}

func (m *httpmiManagement) GetSupportedBootDevices(_ context.Context, _ types.Node) []types.BootDevice {
	return []types.BootDevice{types.BootDevicePXE, types.BootDeviceDisk}
}

// SetBootDevice sends the device to the proxy, translating BootDeviceDisk to the proxy's token.
// The proxy has no notion of persistence, so persistent is ignored.
func (m *httpmiManagement) SetBootDevice(
	ctx context.Context,
	node types.Node,
	device types.BootDevice,
	_ bool,
) error {
	token := string(device)
	if device == types.BootDeviceDisk {
		token = types.HTTPMIDiskToken
	}

	_, err := m.httpmi.Call(ctx, node, adapter.MethodWrite, bootDevicePath, map[string]string{
		deviceField: token,
	})

	return err
}

// GetBootDevice returns the proxy's token as-is: a disk boot device reads back as "hd".
func (m *httpmiManagement) GetBootDevice(ctx context.Context, node types.Node) (types.BootDevice, error) {
	data, err := m.httpmi.Call(ctx, node, adapter.MethodRead, bootDevicePath, nil)
	if err != nil {
		return "", err
	}

	device, err := stringField(data, adapter.MethodRead, bootDevicePath, deviceField)
	if err != nil {
		return "", err
	}

	return types.BootDevice(device), nil
}

// GetSensorsData always returns an empty mapping: httpmi exposes no sensors.
func (m *httpmiManagement) GetSensorsData(_ context.Context, _ types.Node) (map[string]any, error) {
	return map[string]any{}, nil
}
