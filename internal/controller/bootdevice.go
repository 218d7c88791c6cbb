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
	"fmt"

	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/alexandremahdhaoui/secureboot/internal/types"
)

const unsupportedBootDeviceFmt = "boot device is not supported by the management interface; supported: %v"

// BootDeviceSetter sets the boot device of a node on behalf of the host framework.
type BootDeviceSetter interface {
	SetBootDevice(ctx context.Context, node types.Node, device types.BootDevice, persistent bool) error
}

// NewBootDeviceSetter returns a BootDeviceSetter that only forwards devices the management
// interface supports.
func NewBootDeviceSetter(management ManagementInterface) BootDeviceSetter {
	return &bootDeviceSetter{management: management}
}

type bootDeviceSetter struct {
	management ManagementInterface
}

func (s *bootDeviceSetter) SetBootDevice(
	ctx context.Context,
	node types.Node,
	device types.BootDevice,
	persistent bool,
) error {
	supported := sets.New(s.management.GetSupportedBootDevices(ctx, node)...)
	if !supported.Has(device) {
		return &types.InvalidParameterError{
			NodeUUID: node.UUID,
			Key:      "boot_device",
			Value:    string(device),
			Reason:   fmt.Sprintf(unsupportedBootDeviceFmt, sets.List(supported)),
		}
	}

	return s.management.SetBootDevice(ctx, node, device, persistent)
}
