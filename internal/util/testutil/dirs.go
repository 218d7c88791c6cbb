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

package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// NewImageStore creates an image store holding the kernel, ramdisk and squash images
// referenced by NewTypesNode.
func NewImageStore(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()

	for _, id := range []string{KernelImageID, RamdiskImageID, SquashImageID} {
		if err := os.WriteFile(filepath.Join(dir, id), []byte(id), 0o644); err != nil {
			t.Fatalf("writing image %q: %v", id, err)
		}
	}

	return dir
}

// ListTree returns every path below root, relative to root. It returns nil if root does not exist.
func ListTree(t *testing.T, root string) []string {
	t.Helper()

	var out []string

	err := filepath.WalkDir(root, func(path string, _ os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if path == root {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		out = append(out, rel)

		return nil
	})
	if os.IsNotExist(err) {
		return nil
	}

	if err != nil {
		t.Fatalf("walking %s: %v", root, err)
	}

	return out
}
