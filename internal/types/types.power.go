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

package types

// ----------------------------------------------------- POWER ------------------------------------------------------ //

// PowerState is the power state of a node as reported by the httpmi proxy.
//
// Values other than PowerOn and PowerOff are passed through as-is.
type PowerState string

const (
	PowerOn  PowerState = "power on"
	PowerOff PowerState = "power off"
)

// -------------------------------------------------- BOOT DEVICE --------------------------------------------------- //

// BootDevice is a boot device as understood by the host framework.
type BootDevice string

const (
	// BootDevicePXE boots from the network.
	BootDevicePXE BootDevice = "pxe"
	// BootDeviceDisk boots from the local disk.
	BootDeviceDisk BootDevice = "disk"
)

// HTTPMIDiskToken is the token the httpmi proxy expects for BootDeviceDisk.
const HTTPMIDiskToken = "hd"
