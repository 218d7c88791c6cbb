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
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/alexandremahdhaoui/secureboot/internal/util/gracefulshutdown"
)

const shutdownTimeout = time.Minute

// Serve runs every server until the GracefulShutdown context is done, then shuts them down.
// A server serves TLS when its TLSConfig carries certificates.
func Serve(servers map[string]*http.Server, gs *gracefulshutdown.GracefulShutdown) {
	for name, server := range servers {
		ctx := WithServerName(gs.Context(), name)

		server.BaseContext = func(_ net.Listener) context.Context {
			return ctx
		}

		gs.Go(func(context.Context) error {
			slog.InfoContext(ctx, "starting server", "server", name, "addr", server.Addr)

			var err error
			if server.TLSConfig != nil && len(server.TLSConfig.Certificates) > 0 {
				err = server.ListenAndServeTLS("", "")
			} else {
				err = server.ListenAndServe()
			}

			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}

			return nil
		})
	}

	gs.Ready()

	<-gs.Context().Done()

	for name, server := range servers {
		go func() {
			ctx, cancel := context.WithTimeout(WithServerName(context.Background(), name), shutdownTimeout)
			defer cancel()

			if err := server.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.ErrorContext(ctx, "❌ received error while shutting down server", "server", name, "error", err)
				return
			}

			slog.Info("✅ gracefully shut down server", "server", name)
		}()
	}
}
