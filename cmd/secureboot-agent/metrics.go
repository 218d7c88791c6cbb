package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// newRegistry returns the registry collecting the agent metrics, including the go runtime and process collectors.
func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}), //nolint:exhaustruct
	)

	return reg
}

// setupMetricsServer creates an HTTP server for Prometheus metrics.
func setupMetricsServer(config *Config, reg *prometheus.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle(config.MetricsServer.Path, promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})) //nolint:exhaustruct

	return &http.Server{ //nolint:exhaustruct
		Addr:              fmt.Sprintf(":%d", config.MetricsServer.Port),
		Handler:           mux,
		ReadHeaderTimeout: time.Second,
	}
}
