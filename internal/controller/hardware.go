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
	"maps"

	"github.com/alexandremahdhaoui/secureboot/internal/adapter"
	"github.com/alexandremahdhaoui/secureboot/internal/types"
)

// SecurebootHardwareName is the name of the hardware type composed by NewSecurebootHardware.
const SecurebootHardwareName = "secureboot_httpmi"

// Hardware is a static composition of one interface per capability, resolved at startup.
type Hardware struct {
	Name       string
	Boot       BootInterface
	Power      PowerInterface
	Management ManagementInterface
}

// NewSecurebootHardware composes the secureboot boot interface with httpmi power and management.
// The boot interface pins the boot device through the httpmi management interface.
func NewSecurebootHardware(httpmi adapter.HTTPMI, stager adapter.Stager) *Hardware {
	power := NewHTTPMIPower(httpmi)
	management := NewHTTPMIManagement(httpmi)
	boot := NewSecureboot(stager, NewBootDeviceSetter(management))

	return &Hardware{
		Name:       SecurebootHardwareName,
		Boot:       boot,
		Power:      power,
		Management: management,
	}
}

// Validate runs the validation of every interface and joins their errors.
func (h *Hardware) Validate(ctx context.Context, node types.Node) error {
	return errors.Join(
		h.Boot.Validate(ctx, node),
		h.Power.Validate(ctx, node),
		h.Management.Validate(ctx, node),
	)
}

// Properties merges the properties of every interface.
func (h *Hardware) Properties() map[string]string {
	out := make(map[string]string)

	maps.Copy(out, h.Boot.Properties())
	maps.Copy(out, h.Power.Properties())
	maps.Copy(out, h.Management.Properties())

	return out
}
