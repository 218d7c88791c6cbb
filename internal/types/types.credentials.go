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

const (
	credentialUserField     = "user"
	credentialPasswordField = "password"
	credentialBMCField      = "bmc"
	credentialPortField     = "port"
)

// BMCCredentials are the BMC connection parameters sent with every httpmi call.
type BMCCredentials struct {
	User     string
	Password string
	Address  string
	// Port is optional. It is omitted from the wire payload when empty.
	Port string
}

// Fields returns the wire representation of the credentials.
func (c BMCCredentials) Fields() map[string]string {
	out := map[string]string{
		credentialUserField:     c.User,
		credentialPasswordField: c.Password,
		credentialBMCField:      c.Address,
	}

	if c.Port != "" {
		out[credentialPortField] = c.Port
	}

	return out
}
