package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/alexandremahdhaoui/secureboot/internal/util/httputil"
)

// setupProbesServer creates an HTTP server for liveness and readiness probes. The agent is ready once
// its HTTP root is a directory.
func setupProbesServer(config *Config) *http.Server {
	mux := http.NewServeMux()

	mux.Handle(config.ProbesServer.LivenessPath, httputil.StatusHandler(http.StatusOK, "OK"))

	mux.HandleFunc(config.ProbesServer.ReadinessPath, func(w http.ResponseWriter, r *http.Request) {
		if fi, err := os.Stat(config.HTTPRoot); err != nil || !fi.IsDir() {
			httputil.StatusHandler(http.StatusServiceUnavailable, "http root is not a directory").ServeHTTP(w, r)
			return
		}

		httputil.StatusHandler(http.StatusOK, "OK").ServeHTTP(w, r)
	})

	return &http.Server{ //nolint:exhaustruct
		Addr:              fmt.Sprintf(":%d", config.ProbesServer.Port),
		Handler:           mux,
		ReadHeaderTimeout: time.Second,
	}
}
