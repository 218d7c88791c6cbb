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

import (
	"github.com/google/uuid"
)

// ------------------------------------------------- DRIVER INFO ---------------------------------------------------- //

const (
	// DriverInfoIPMIUsername is the BMC user forwarded to the httpmi proxy.
	DriverInfoIPMIUsername = "ipmi_username"
	// DriverInfoIPMIPassword is the BMC password forwarded to the httpmi proxy.
	DriverInfoIPMIPassword = "ipmi_password"
	// DriverInfoIPMIAddress is the address of the physical BMC.
	DriverInfoIPMIAddress = "ipmi_address"
	// DriverInfoIPMIPort is the optional port of the physical BMC.
	DriverInfoIPMIPort = "ipmi_port"
	// DriverInfoHTTPMIURL is the base URL of the httpmi proxy fronting the BMC.
	DriverInfoHTTPMIURL = "httpmi_url"

	// DriverInfoSecurebootKey is the PEM-wrapped encrypted private key used by the node for mutual TLS.
	DriverInfoSecurebootKey = "secureboot_key"
	// DriverInfoSecurebootKeyDat is the base64-encoded encrypted private key.
	DriverInfoSecurebootKeyDat = "secureboot_key_dat"
	// DriverInfoSecurebootCertificate is the client certificate used by the node for mutual TLS.
	DriverInfoSecurebootCertificate = "secureboot_certificate"
)

// SecurebootKeys lists the driver info keys required to boot a node over mutual TLS.
var SecurebootKeys = []string{ //nolint:gochecknoglobals
	DriverInfoSecurebootKey,
	DriverInfoSecurebootKeyDat,
	DriverInfoSecurebootCertificate,
}

// BMCKeys lists the driver info keys required to reach the BMC through the httpmi proxy.
var BMCKeys = []string{ //nolint:gochecknoglobals
	DriverInfoIPMIUsername,
	DriverInfoIPMIPassword,
	DriverInfoIPMIAddress,
}

// ------------------------------------------------ INSTANCE INFO --------------------------------------------------- //

const (
	InstanceInfoKernel  = "kernel"
	InstanceInfoRamdisk = "ramdisk"
	InstanceInfoSquash  = "squash"
)

// ImageKeys lists the instance info keys linked into the secure staging root, in link order.
// The key doubles as the file name of the link.
var ImageKeys = []string{ //nolint:gochecknoglobals
	InstanceInfoKernel,
	InstanceInfoRamdisk,
	InstanceInfoSquash,
}

// -------------------------------------------------------- NODE ---------------------------------------------------- //

// Node is the subset of a provisioned machine this driver reads.
// It is owned by the host provisioning framework and is never mutated here.
type Node struct {
	// UUID identifies the node.
	UUID uuid.UUID `json:"uuid"`
	// DriverInfo holds BMC, proxy and secureboot credentials.
	DriverInfo map[string]string `json:"driverInfo"`
	// InstanceInfo holds the image identifiers of the instance to boot.
	InstanceInfo map[string]string `json:"instanceInfo"`
}

const (
	DriverInfoSection   = "driver_info"
	InstanceInfoSection = "instance_info"
)

// MissingDriverInfo returns the keys that are absent or empty in the node's driver info.
// The order of keys is preserved.
func (n Node) MissingDriverInfo(keys ...string) []string {
	return missingKeys(n.DriverInfo, keys)
}

// MissingInstanceInfo returns the keys that are absent or empty in the node's instance info.
func (n Node) MissingInstanceInfo(keys ...string) []string {
	return missingKeys(n.InstanceInfo, keys)
}

func missingKeys(m map[string]string, keys []string) []string {
	var out []string

	for _, key := range keys {
		if m[key] == "" {
			out = append(out, key)
		}
	}

	return out
}
