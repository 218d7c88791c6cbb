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
	"log/slog"

	"github.com/alexandremahdhaoui/secureboot/internal/adapter"
	"github.com/alexandremahdhaoui/secureboot/internal/types"
)

// RamdiskBootCapability tells the host framework the instance boots from a ramdisk.
const RamdiskBootCapability = "ramdisk_boot"

var (
	ErrPrepareInstance = errors.New("preparing instance")

	errLinkingImages      = errors.New("linking images")
	errWritingCredentials = errors.New("writing key and certificate")
)

// --------------------------------------------------- INTERFACES --------------------------------------------------- //

// BootInterface prepares and tears down what a node needs to boot.
type BootInterface interface {
	// Capabilities lists the boot capabilities of the interface.
	Capabilities() []string
	// Properties describes the driver info keys this interface reads.
	Properties() map[string]string
	// Validate checks the node carries everything PrepareInstance needs. It has no side effect.
	Validate(ctx context.Context, node types.Node) error

	PrepareRamdisk(ctx context.Context, node types.Node, ramdiskParams map[string]string) error
	CleanUpRamdisk(ctx context.Context, node types.Node) error

	// PrepareInstance stages the node's boot artifacts and pins its boot device.
	PrepareInstance(ctx context.Context, node types.Node) error
	// CleanUpInstance removes everything PrepareInstance staged.
	CleanUpInstance(ctx context.Context, node types.Node) error
}

// -------------------------------------------------- CONSTRUCTORS -------------------------------------------------- //

// NewSecureboot returns a BootInterface serving the instance's images and mutual TLS credentials
// from per-node staging roots. bootDevice is used to pin the node to its local disk once staged.
func NewSecureboot(stager adapter.Stager, bootDevice BootDeviceSetter) BootInterface {
	return &secureboot{
		stager:     stager,
		bootDevice: bootDevice,
	}
}

// --------------------------------------------------- SECUREBOOT --------------------------------------------------- //

type secureboot struct {
	stager     adapter.Stager
	bootDevice BootDeviceSetter
}

func (b *secureboot) Capabilities() []string {
	return []string{RamdiskBootCapability}
}

func (b *secureboot) Properties() map[string]string {
	return map[string]string{
		types.DriverInfoSecurebootKey: "PEM-wrapped encrypted private key for mutual TLS " +
			"authentication to image server. Required.",
		types.DriverInfoSecurebootKeyDat: "Encrypted private key for mutual TLS " +
			"authentication to image server, base64-encoded. Required.",
		types.DriverInfoSecurebootCertificate: "Client certificate for mutual TLS " +
			"authentication to image server. Required.",
	}
}

// Validate reports every missing secureboot key at once.
func (b *secureboot) Validate(_ context.Context, node types.Node) error {
	if missing := node.MissingDriverInfo(types.SecurebootKeys...); len(missing) > 0 {
		return &types.MissingParameterError{
			NodeUUID: node.UUID,
			Section:  types.DriverInfoSection,
			Keys:     missing,
		}
	}

	return nil
}

// PrepareRamdisk is a no-op: secureboot never stages a deploy ramdisk.
func (b *secureboot) PrepareRamdisk(_ context.Context, _ types.Node, _ map[string]string) error {
	return nil
}

// CleanUpRamdisk is a no-op: secureboot never stages a deploy ramdisk.
func (b *secureboot) CleanUpRamdisk(_ context.Context, _ types.Node) error {
	return nil
}

// PrepareInstance links the images, writes the credentials then sets the boot device to disk,
// persistently. Each step runs only if the previous one succeeded and nothing is rolled back on
// failure. The boot device error is returned as-is.
func (b *secureboot) PrepareInstance(ctx context.Context, node types.Node) error {
	if err := b.Validate(ctx, node); err != nil {
		return errors.Join(err, ErrPrepareInstance)
	}

	if err := b.stager.LinkImages(ctx, node); err != nil {
		return errors.Join(err, errLinkingImages, ErrPrepareInstance)
	}

	if err := b.stager.WriteCredentials(ctx, node); err != nil {
		return errors.Join(err, errWritingCredentials, ErrPrepareInstance)
	}

	if err := b.bootDevice.SetBootDevice(ctx, node, types.BootDeviceDisk, true); err != nil {
		return err
	}

	slog.InfoContext(ctx, "instance_prepared", "node_uuid", node.UUID.String())

	return nil
}

// CleanUpInstance removes both staging roots. It never fails, so teardown cannot block the node.
func (b *secureboot) CleanUpInstance(ctx context.Context, node types.Node) error {
	b.stager.Remove(ctx, node)

	slog.InfoContext(ctx, "instance_cleaned_up", "node_uuid", node.UUID.String())

	return nil
}
