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
	"errors"
	"fmt"
	"net/http"

	"github.com/alexandremahdhaoui/secureboot/internal/adapter"
	"github.com/alexandremahdhaoui/secureboot/internal/types"
)

const (
	powerPath      = "/power"
	bootDevicePath = "/boot-device"

	stateField  = "state"
	deviceField = "device"
)

var errMissingResponseField = errors.New("missing field in httpmi response")

// --------------------------------------------------- INTERFACES --------------------------------------------------- //

// PowerInterface controls the power state of a node.
type PowerInterface interface {
	// Properties describes the driver info keys this interface reads.
	Properties() map[string]string
	// Validate checks the node can be reached through its httpmi proxy.
	Validate(ctx context.Context, node types.Node) error
	// GetPowerState returns the power state reported by the proxy, verbatim.
	GetPowerState(ctx context.Context, node types.Node) (types.PowerState, error)
	// SetPowerState requests a power state change. It does not wait for the node to reach it.
	SetPowerState(ctx context.Context, node types.Node, state types.PowerState) error
	// Reboot powers the node off, then on.
	Reboot(ctx context.Context, node types.Node) error
}

// -------------------------------------------------- CONSTRUCTORS -------------------------------------------------- //

// NewHTTPMIPower returns a PowerInterface backed by the node's httpmi proxy.
func NewHTTPMIPower(httpmi adapter.HTTPMI) PowerInterface {
	return &httpmiPower{httpmi: httpmi}
}

// -------------------------------------------------- HTTPMI POWER -------------------------------------------------- //

type httpmiPower struct {
	httpmi adapter.HTTPMI
}

func (p *httpmiPower) Properties() map[string]string {
	return httpmiProperties()
}

func (p *httpmiPower) Validate(_ context.Context, node types.Node) error {
	return validateHTTPMI(node)
}

func (p *httpmiPower) GetPowerState(ctx context.Context, node types.Node) (types.PowerState, error) {
	data, err := p.httpmi.Call(ctx, node, adapter.MethodRead, powerPath, nil)
	if err != nil {
		return "", err
	}

	state, err := stringField(data, adapter.MethodRead, powerPath, stateField)
	if err != nil {
		return "", err
	}

	return types.PowerState(state), nil
}

func (p *httpmiPower) SetPowerState(ctx context.Context, node types.Node, state types.PowerState) error {
	_, err := p.httpmi.Call(ctx, node, adapter.MethodWrite, powerPath, map[string]string{
		stateField: string(state),
	})

	return err
}

// Reboot issues a power off then a power on, without waiting in between. The power on is never
// sent if the power off fails.
func (p *httpmiPower) Reboot(ctx context.Context, node types.Node) error {
	if err := p.SetPowerState(ctx, node, types.PowerOff); err != nil {
		return err
	}

	return p.SetPowerState(ctx, node, types.PowerOn)
}

// ---------------------------------------------------- HELPERS ----------------------------------------------------- //

func httpmiProperties() map[string]string {
	return map[string]string{
		types.DriverInfoHTTPMIURL:    "Base URL of the httpmi proxy fronting the BMC. Required.",
		types.DriverInfoIPMIUsername: "BMC username, forwarded to the httpmi proxy. Required.",
		types.DriverInfoIPMIPassword: "BMC password, forwarded to the httpmi proxy. Required.",
		types.DriverInfoIPMIAddress:  "BMC address, forwarded to the httpmi proxy. Required.",
		types.DriverInfoIPMIPort:     "BMC port, forwarded to the httpmi proxy. Optional.",
	}
}

func validateHTTPMI(node types.Node) error {
	keys := append([]string{types.DriverInfoHTTPMIURL}, types.BMCKeys...)

	if missing := node.MissingDriverInfo(keys...); len(missing) > 0 {
		return &types.MissingParameterError{
			NodeUUID: node.UUID,
			Section:  types.DriverInfoSection,
			Keys:     missing,
		}
	}

	return nil
}

// stringField extracts a string field from a decoded httpmi response.
func stringField(data map[string]any, method adapter.Method, path, field string) (string, error) {
	v, ok := data[field].(string)
	if !ok {
		return "", &types.RemoteControlError{
			Method:     string(method),
			Path:       path,
			StatusCode: http.StatusOK,
			Err:        fmt.Errorf("%w: %q", errMissingResponseField, field),
		}
	}

	return v, nil
}
