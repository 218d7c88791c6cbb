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
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Error categories recognized by the host framework. Every error returned by this module matches
// exactly one of them through errors.Is.
var (
	// ErrConfiguration is returned when a required field is absent or malformed.
	ErrConfiguration = errors.New("configuration error")
	// ErrRemoteControl is returned when a call to the httpmi proxy fails.
	ErrRemoteControl = errors.New("remote control error")
	// ErrFilesystem is returned when staging boot artifacts or credentials fails.
	ErrFilesystem = errors.New("filesystem error")
	// ErrDecode is returned when a base64 credential payload is malformed.
	ErrDecode = errors.New("decode error")
)

// --------------------------------------------- MISSING PARAMETER -------------------------------------------------- //

// MissingParameterError lists every required key absent from a node's configuration.
type MissingParameterError struct {
	NodeUUID uuid.UUID
	// Section is the node mapping the keys were looked up in, e.g. "driver_info".
	Section string
	Keys    []string
}

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("node %s is missing %s parameters: [%s]",
		e.NodeUUID, e.Section, strings.Join(e.Keys, ", "))
}

func (e *MissingParameterError) Is(target error) bool {
	return target == ErrConfiguration
}

// --------------------------------------------- INVALID PARAMETER -------------------------------------------------- //

// InvalidParameterError reports a present but unusable configuration value.
type InvalidParameterError struct {
	NodeUUID uuid.UUID
	Key      string
	Value    string
	Reason   string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("node %s has invalid parameter %s=%q: %s", e.NodeUUID, e.Key, e.Value, e.Reason)
}

func (e *InvalidParameterError) Is(target error) bool {
	return target == ErrConfiguration
}

// ----------------------------------------------- REMOTE CONTROL --------------------------------------------------- //

// RemoteControlError is returned for both non-200 responses and transport failures.
type RemoteControlError struct {
	Method string
	Path   string
	// Fields are the operation-specific fields of the call. Credentials are never included.
	Fields map[string]string
	// StatusCode is 0 when no response was received. It is 200 when the body could not be decoded.
	StatusCode int
	Err        error
}

func (e *RemoteControlError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	args := make([]string, 0, len(keys))
	for _, k := range keys {
		args = append(args, fmt.Sprintf("%s=%s", k, e.Fields[k]))
	}

	msg := fmt.Sprintf("httpmi call %s %s with args [%s] failed", e.Method, e.Path, strings.Join(args, " "))
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s: status %d", msg, e.StatusCode)
	}

	if e.Err != nil {
		msg = fmt.Sprintf("%s: %s", msg, e.Err.Error())
	}

	return msg
}

func (e *RemoteControlError) Is(target error) bool {
	return target == ErrRemoteControl
}

func (e *RemoteControlError) Unwrap() error {
	return e.Err
}
