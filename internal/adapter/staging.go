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
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alexandremahdhaoui/secureboot/internal/types"
)

var (
	ErrLinkImages       = errors.New("linking boot images")
	ErrWriteCredentials = errors.New("writing secureboot credentials")

	errImageNotFound     = errors.New("image not found in image store")
	errDestinationExists = errors.New("destination exists and is not a symbolic link")
	errRemoveStagingRoot = errors.New("removing staging root")
)

const (
	// KeyFilename holds the PEM-wrapped encrypted private key.
	KeyFilename = "key"
	// KeyDatFilename holds the decoded encrypted private key.
	KeyDatFilename = "key.dat"
	// CertificateFilename holds the client certificate.
	CertificateFilename = "certificate"

	secureRootMode     fs.FileMode = 0o755
	insecureRootMode   fs.FileMode = 0o700
	credentialFileMode fs.FileMode = 0o600

	operationLinkImages       = "link_images"
	operationWriteCredentials = "write_credentials"
	operationRemove           = "remove"

	invalidImageIDReason = "image identifier must be a single path element"
)

// --------------------------------------------------- INTERFACE ---------------------------------------------------- //

// Stager materializes a node's boot artifacts and TLS credentials in its staging roots.
//
// Staging is not transactional: a failure may leave a partially populated root behind. Every
// operation can be re-run safely and Remove always cleans up whatever is left.
type Stager interface {
	// LinkImages symlinks the node's kernel, ramdisk and squash images from the image store into
	// the node's secure root. Links left by a previous run are replaced.
	LinkImages(ctx context.Context, node types.Node) error
	// WriteCredentials writes the node's key, decoded key and certificate to the node's insecure root.
	WriteCredentials(ctx context.Context, node types.Node) error
	// Remove deletes both staging roots of the node. Failures are logged, never returned.
	Remove(ctx context.Context, node types.Node)
}

// -------------------------------------------------- CONSTRUCTOR --------------------------------------------------- //

// NewStager returns a new Stager.
func NewStager(paths Paths, metrics *Metrics) Stager {
	return &stager{
		paths:   paths,
		metrics: metrics,
	}
}

// ----------------------------------------------------- STAGER ----------------------------------------------------- //

type stager struct {
	paths   Paths
	metrics *Metrics
}

func (s *stager) LinkImages(ctx context.Context, node types.Node) error {
	err := s.linkImages(ctx, node)
	s.metrics.observeStaging(operationLinkImages, err)

	return err
}

func (s *stager) linkImages(ctx context.Context, node types.Node) error {
	if missing := node.MissingInstanceInfo(types.ImageKeys...); len(missing) > 0 {
		return &types.MissingParameterError{
			NodeUUID: node.UUID,
			Section:  types.InstanceInfoSection,
			Keys:     missing,
		}
	}

	for _, key := range types.ImageKeys {
		if id := node.InstanceInfo[key]; !isPathElement(id) {
			return &types.InvalidParameterError{
				NodeUUID: node.UUID,
				Key:      key,
				Value:    id,
				Reason:   invalidImageIDReason,
			}
		}
	}

	root := s.paths.SecureRoot(node.UUID)
	if err := os.MkdirAll(root, secureRootMode); err != nil {
		return errors.Join(err, ErrLinkImages, types.ErrFilesystem)
	}

	for _, key := range types.ImageKeys {
		source := s.paths.ImagePath(node.InstanceInfo[key])

		if _, err := os.Stat(source); err != nil {
			return errors.Join(err, fmt.Errorf("%w: %s", errImageNotFound, source), ErrLinkImages, types.ErrFilesystem)
		}

		if err := replaceSymlink(source, filepath.Join(root, key)); err != nil {
			return errors.Join(err, ErrLinkImages, types.ErrFilesystem)
		}
	}

	slog.InfoContext(ctx, "images_linked",
		"node_uuid", node.UUID.String(),
		"secure_root", root,
	)

	return nil
}

func (s *stager) WriteCredentials(ctx context.Context, node types.Node) error {
	err := s.writeCredentials(ctx, node)
	s.metrics.observeStaging(operationWriteCredentials, err)

	return err
}

func (s *stager) writeCredentials(ctx context.Context, node types.Node) error {
	if missing := node.MissingDriverInfo(types.SecurebootKeys...); len(missing) > 0 {
		return &types.MissingParameterError{
			NodeUUID: node.UUID,
			Section:  types.DriverInfoSection,
			Keys:     missing,
		}
	}

	// decode before touching the disk, so a bad payload leaves no credential behind.
	keyDat, err := decodeKeyDat(node.DriverInfo[types.DriverInfoSecurebootKeyDat])
	if err != nil {
		return errors.Join(err, ErrWriteCredentials, types.ErrDecode)
	}

	root := s.paths.InsecureRoot(node.UUID)
	if err := os.MkdirAll(root, insecureRootMode); err != nil {
		return errors.Join(err, ErrWriteCredentials, types.ErrFilesystem)
	}

	files := []struct {
		name string
		data []byte
	}{
		{name: KeyFilename, data: []byte(node.DriverInfo[types.DriverInfoSecurebootKey])},
		{name: CertificateFilename, data: []byte(node.DriverInfo[types.DriverInfoSecurebootCertificate])},
		{name: KeyDatFilename, data: keyDat},
	}

	for _, f := range files {
		if err := os.WriteFile(filepath.Join(root, f.name), f.data, credentialFileMode); err != nil {
			return errors.Join(err, ErrWriteCredentials, types.ErrFilesystem)
		}
	}

	slog.InfoContext(ctx, "credentials_written",
		"node_uuid", node.UUID.String(),
		"insecure_root", root,
	)

	return nil
}

func (s *stager) Remove(ctx context.Context, node types.Node) {
	var failed bool

	for _, root := range []string{
		s.paths.InsecureRoot(node.UUID),
		s.paths.SecureRoot(node.UUID),
	} {
		if err := os.RemoveAll(root); err != nil {
			failed = true

			slog.WarnContext(ctx, "failed to remove staging root",
				"node_uuid", node.UUID.String(),
				"path", root,
				"error", err.Error(),
			)
		}
	}

	var err error
	if failed {
		err = errRemoveStagingRoot
	}

	s.metrics.observeStaging(operationRemove, err)
}

// ---------------------------------------------------- HELPERS ----------------------------------------------------- //

// replaceSymlink links dest to source, replacing dest if it is already a symbolic link.
func replaceSymlink(source, dest string) error {
	fi, err := os.Lstat(dest)

	switch {
	case err == nil && fi.Mode()&fs.ModeSymlink == 0:
		return fmt.Errorf("%w: %s", errDestinationExists, dest)
	case err == nil:
		if err := os.Remove(dest); err != nil {
			return err
		}
	case !errors.Is(err, fs.ErrNotExist):
		return err
	}

	return os.Symlink(source, dest)
}

// decodeKeyDat decodes the standard base64 key payload. Whitespace, such as line wrapping, is ignored.
func decodeKeyDat(encoded string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(strings.Join(strings.Fields(encoded), ""))
}

func isPathElement(s string) bool {
	return s != "" && s != "." && s != ".." && !strings.ContainsAny(s, `/\`)
}
