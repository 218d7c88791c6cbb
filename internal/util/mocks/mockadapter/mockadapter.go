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

// Package mockadapter provides testify mocks of the adapter interfaces.
package mockadapter

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/alexandremahdhaoui/secureboot/internal/adapter"
	"github.com/alexandremahdhaoui/secureboot/internal/types"
)

type testingT interface {
	mock.TestingT
	Cleanup(func())
}

// ---------------------------------------------------- HTTPMI ------------------------------------------------------ //

var _ adapter.HTTPMI = &MockHTTPMI{}

type MockHTTPMI struct {
	mock.Mock
}

// NewMockHTTPMI returns a MockHTTPMI whose expectations are asserted on test cleanup.
func NewMockHTTPMI(t testingT) *MockHTTPMI {
	m := &MockHTTPMI{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockHTTPMI) Call(
	ctx context.Context,
	node types.Node,
	method adapter.Method,
	path string,
	fields map[string]string,
) (map[string]any, error) {
	args := m.Called(ctx, node, method, path, fields)

	var out map[string]any
	if v := args.Get(0); v != nil {
		out = v.(map[string]any) //nolint:forcetypeassert
	}

	return out, args.Error(1)
}

// ---------------------------------------------------- STAGER ------------------------------------------------------ //

var _ adapter.Stager = &MockStager{}

type MockStager struct {
	mock.Mock
}

// NewMockStager returns a MockStager whose expectations are asserted on test cleanup.
func NewMockStager(t testingT) *MockStager {
	m := &MockStager{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockStager) LinkImages(ctx context.Context, node types.Node) error {
	return m.Called(ctx, node).Error(0)
}

func (m *MockStager) WriteCredentials(ctx context.Context, node types.Node) error {
	return m.Called(ctx, node).Error(0)
}

func (m *MockStager) Remove(ctx context.Context, node types.Node) {
	m.Called(ctx, node)
}
