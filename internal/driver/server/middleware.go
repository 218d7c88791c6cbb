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
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/go-logr/logr"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// ClientIPContextKey is the context key for storing the client IP address.
	ClientIPContextKey contextKey = "client_ip"

	requestInfoContextKey contextKey = "request_info"
)

// Middleware wraps an http.Handler.
type Middleware func(http.Handler) http.Handler

// Chain applies middlewares so that the first one is the outermost.
func Chain(h http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}

	return h
}

// ---------------------------------------------------- CLIENT IP --------------------------------------------------- //

// ClientIPMiddleware extracts the client IP from the request and adds it to the context.
// It checks X-Forwarded-For header first (for proxied requests), then falls back to RemoteAddr.
func ClientIPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), ClientIPContextKey, extractClientIP(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func extractClientIP(r *http.Request) string {
	// the first X-Forwarded-For entry is the original client.
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}

	return ip
}

// GetClientIP retrieves the client IP from the context. Returns empty string if not found.
func GetClientIP(ctx context.Context) string {
	if ip, ok := ctx.Value(ClientIPContextKey).(string); ok {
		return ip
	}

	return ""
}

// ----------------------------------------------------- LOGGING ---------------------------------------------------- //

// requestInfo is filled by inner middlewares and read by the logging middleware once the request is served.
type requestInfo struct {
	operation string
}

func requestInfoFrom(ctx context.Context) *requestInfo {
	info, _ := ctx.Value(requestInfoContextKey).(*requestInfo)
	return info
}

type statusRecorder struct {
	http.ResponseWriter

	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}

	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}

	return r.ResponseWriter.Write(b)
}

// LoggingMiddleware logs every request once served and records it in metrics. The request context
// carries a logger annotated with the request attributes.
func LoggingMiddleware(log logr.Logger, metrics *Metrics) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			info := &requestInfo{}
			reqLog := log.WithValues("method", r.Method, "path", r.URL.Path, "clientIP", GetClientIP(r.Context()))

			ctx := context.WithValue(r.Context(), requestInfoContextKey, info)
			ctx = logr.NewContext(ctx, reqLog)

			rec := &statusRecorder{ResponseWriter: w}
			next.ServeHTTP(rec, r.WithContext(ctx))

			if rec.status == 0 {
				rec.status = http.StatusOK
			}

			d := time.Since(start)
			metrics.observeRequest(info.operation, rec.status, d)
			reqLog.Info("served request", "operation", info.operation, "status", rec.status, "duration", d)
		})
	}
}

// --------------------------------------------------- VALIDATION --------------------------------------------------- //

// ValidationMiddleware rejects requests that do not match an operation of the OpenAPI document.
func ValidationMiddleware(router routers.Router) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route, pathParams, err := router.FindRoute(r)
			if err != nil {
				writeError(w, r, routeErrorStatus(err), err)
				return
			}

			if info := requestInfoFrom(r.Context()); info != nil {
				info.operation = route.Operation.OperationID
			}

			if err := openapi3filter.ValidateRequest(r.Context(), &openapi3filter.RequestValidationInput{ //nolint:exhaustruct
				Request:    r,
				PathParams: pathParams,
				Route:      route,
			}); err != nil {
				writeError(w, r, http.StatusBadRequest, err)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func routeErrorStatus(err error) int {
	var routeErr *routers.RouteError
	if !errors.As(err, &routeErr) {
		return http.StatusBadRequest
	}

	switch routeErr.Reason {
	case routers.ErrPathNotFound.Error():
		return http.StatusNotFound
	case routers.ErrMethodNotAllowed.Error():
		return http.StatusMethodNotAllowed
	default:
		return http.StatusBadRequest
	}
}
