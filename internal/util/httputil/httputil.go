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

package httputil

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
)

type contextKey string

const serverNameContextKey contextKey = "server_name"

// WithServerName returns a copy of ctx carrying the name of the server handling the request.
func WithServerName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, serverNameContextKey, name)
}

// ServerName returns the name set by WithServerName, or the empty string.
func ServerName(ctx context.Context) string {
	name, _ := ctx.Value(serverNameContextKey).(string)
	return name
}

// WriteJSON encodes v as the JSON body of a response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("writing json response", "error", err.Error())
	}
}

// StatusHandler answers every request with status and a plain text body.
func StatusHandler(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}
