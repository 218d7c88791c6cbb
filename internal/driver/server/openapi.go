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

package server

import (
	"context"
	_ "embed"
	"errors"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/routers"
	legacyrouter "github.com/getkin/kin-openapi/routers/legacy"
)

var (
	ErrLoadOpenAPI  = errors.New("loading openapi document")
	ErrOpenAPIRoute = errors.New("building openapi router")
)

//go:embed openapi.yaml
var openAPIDocument []byte

// OpenAPI returns the parsed and validated OpenAPI document describing the API.
func OpenAPI(ctx context.Context) (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	loader.Context = ctx

	doc, err := loader.LoadFromData(openAPIDocument)
	if err != nil {
		return nil, errors.Join(err, ErrLoadOpenAPI)
	}

	if err := doc.Validate(ctx); err != nil {
		return nil, errors.Join(err, ErrLoadOpenAPI)
	}

	return doc, nil
}

func newRouter(ctx context.Context) (routers.Router, error) {
	doc, err := OpenAPI(ctx)
	if err != nil {
		return nil, err
	}

	router, err := legacyrouter.NewRouter(doc)
	if err != nil {
		return nil, errors.Join(err, ErrOpenAPIRoute)
	}

	return router, nil
}
