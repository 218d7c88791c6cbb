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

package adapter

import (
	"path/filepath"

	"github.com/google/uuid"

	"github.com/alexandremahdhaoui/secureboot/internal/types"
)

const (
	// DefaultImagesPath is the default location of the shared image store.
	DefaultImagesPath = "/images"

	secureSegment   = "secure"
	insecureSegment = "insecure"
)

// ----------------------------------------------------- PATHS ------------------------------------------------------ //

// Paths resolves the per-node staging roots and image store locations.
type Paths struct {
	// HTTPRoot is the document root of the boot file server.
	HTTPRoot string
	// ImagesPath is the shared image store boot artifacts are linked from.
	ImagesPath string
}

// NewPaths returns a new Paths. An empty imagesPath defaults to DefaultImagesPath.
func NewPaths(httpRoot, imagesPath string) Paths {
	if imagesPath == "" {
		imagesPath = DefaultImagesPath
	}

	return Paths{
		HTTPRoot:   httpRoot,
		ImagesPath: imagesPath,
	}
}

// SecureRoot returns the directory holding the node's boot image links.
func (p Paths) SecureRoot(nodeUUID uuid.UUID) string {
	return filepath.Join(p.HTTPRoot, secureSegment, nodeUUID.String())
}

// InsecureRoot returns the directory holding the node's TLS key and certificate.
func (p Paths) InsecureRoot(nodeUUID uuid.UUID) string {
	return filepath.Join(p.HTTPRoot, insecureSegment, nodeUUID.String())
}

// ImagePath returns the location of an image in the image store.
func (p Paths) ImagePath(imageID string) string {
	return filepath.Join(p.ImagesPath, imageID)
}

// -------------------------------------------------- CREDENTIALS --------------------------------------------------- //

// BMCCredentials extracts the BMC connection parameters from the node's driver info.
// They are recomputed on every call and never stored.
func BMCCredentials(node types.Node) (types.BMCCredentials, error) {
	if missing := node.MissingDriverInfo(types.BMCKeys...); len(missing) > 0 {
		return types.BMCCredentials{}, &types.MissingParameterError{
			NodeUUID: node.UUID,
			Section:  types.DriverInfoSection,
			Keys:     missing,
		}
	}

	return types.BMCCredentials{
		User:     node.DriverInfo[types.DriverInfoIPMIUsername],
		Password: node.DriverInfo[types.DriverInfoIPMIPassword],
		Address:  node.DriverInfo[types.DriverInfoIPMIAddress],
		Port:     node.DriverInfo[types.DriverInfoIPMIPort],
	}, nil
}
