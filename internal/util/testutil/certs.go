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

	"github.com/alexandremahdhaoui/secureboot/internal/util/certutil"
)

// WriteKeyPair writes kp to dir as <name>.crt and <name>.key and returns both paths.
func WriteKeyPair(t *testing.T, dir, name string, kp certutil.KeyPair) (certPath, keyPath string) {
	t.Helper()

	certPath = filepath.Join(dir, name+".crt")
	keyPath = filepath.Join(dir, name+".key")

	if err := os.WriteFile(certPath, kp.Cert, 0o644); err != nil {
		t.Fatalf("writing %s: %v", certPath, err)
	}

	if err := os.WriteFile(keyPath, kp.Key, 0o600); err != nil {
		t.Fatalf("writing %s: %v", keyPath, err)
	}

	return certPath, keyPath
}

// WriteCA writes the CA certificate to dir/ca.crt and returns its path.
func WriteCA(t *testing.T, dir string, ca *certutil.CA) string {
	t.Helper()

	path := filepath.Join(dir, "ca.crt")
	if err := os.WriteFile(path, ca.Cert(), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}

	return path
}
