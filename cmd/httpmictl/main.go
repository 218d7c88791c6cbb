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

// Package main is the entry point for httpmictl.
//
// httpmictl drives the power and boot device of a node through its httpmi proxy, using the same
// client as the secureboot agent. The node is described by a YAML file:
//
//	uuid: 5f0c2a5e-9b0d-4f6e-9d55-3a1c7f3f0b42
//	driverInfo:
//	  httpmi_url: https://httpmi.example.com
//	  ipmi_username: admin
//	  ipmi_password: secret
//	  ipmi_address: 10.0.0.42
package main

import (
	"fmt"
	"os"

	"github.com/alexandremahdhaoui/secureboot/cmd/httpmictl/commands"
)

var (
	Version        = "dev" //nolint:gochecknoglobals // set by ldflags
	CommitSHA      = "n/a" //nolint:gochecknoglobals // set by ldflags
	BuildTimestamp = "n/a" //nolint:gochecknoglobals // set by ldflags
)

func main() {
	commands.SetVersionInfo(Version, CommitSHA, BuildTimestamp)

	if err := commands.Root().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
