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

package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/alexandremahdhaoui/secureboot/internal/adapter"
	"github.com/alexandremahdhaoui/secureboot/internal/controller"
	"github.com/alexandremahdhaoui/secureboot/internal/driver/server"
	"github.com/alexandremahdhaoui/secureboot/internal/util/gracefulshutdown"
	"github.com/alexandremahdhaoui/secureboot/internal/util/httputil"
	"github.com/alexandremahdhaoui/secureboot/internal/util/logging"
	"github.com/alexandremahdhaoui/secureboot/internal/util/tlsutil"
)

const (
	Name = "secureboot-agent"
)

var (
	Version        = "dev" //nolint:gochecknoglobals // set by ldflags
	CommitSHA      = "n/a" //nolint:gochecknoglobals // set by ldflags
	BuildTimestamp = "n/a" //nolint:gochecknoglobals // set by ldflags
)

// ------------------------------------------------- Main ----------------------------------------------------------- //

func main() {
	_, _ = fmt.Fprintf(
		os.Stdout,
		"Starting %s version %s (%s) %s\n",
		Name,
		Version,
		CommitSHA,
		BuildTimestamp,
	)

	// --------------------------------------------- Graceful Shutdown ---------------------------------------------- //

	gs := gracefulshutdown.New(Name)
	ctx := gs.Context()

	// --------------------------------------------- Config --------------------------------------------------------- //

	config, err := loadConfig()
	if err != nil {
		slog.ErrorContext(ctx, "loading configuration", "error", err.Error())
		gs.Shutdown(1)
	}

	log, err := logging.Setup(os.Stdout, config.Logging)
	if err != nil {
		slog.ErrorContext(ctx, "setting up logging", "error", err.Error())
		gs.Shutdown(1)
	}

	// --------------------------------------------- Adapter -------------------------------------------------------- //

	reg := newRegistry()
	metrics := adapter.NewMetrics(reg)

	httpmiTLS, err := tlsutil.BuildClientTLSConfig(&config.HTTPMI.TLS)
	if err != nil {
		slog.ErrorContext(ctx, "building httpmi client tls config", "error", err.Error())
		gs.Shutdown(1)
	}

	httpmi := adapter.NewHTTPMI(adapter.HTTPMIOptions{
		TLSConfig: httpmiTLS,
		Timeout:   config.httpmiTimeout(),
		Metrics:   metrics,
	})

	stager := adapter.NewStager(adapter.NewPaths(config.HTTPRoot, config.ImagesPath), metrics)

	// --------------------------------------------- Controller ----------------------------------------------------- //

	hardware := controller.NewSecurebootHardware(httpmi, stager)

	// --------------------------------------------- App ------------------------------------------------------------ //

	apiHandler, err := server.New(ctx, hardware, server.Options{
		Log:     log.WithName("api"),
		Metrics: server.NewMetrics(reg),
	})
	if err != nil {
		slog.ErrorContext(ctx, "creating api server", "error", err.Error())
		gs.Shutdown(1)
	}

	apiTLS, err := tlsutil.BuildServerTLSConfig(&config.APIServer.TLS)
	if err != nil {
		slog.ErrorContext(ctx, "building api server tls config", "error", err.Error())
		gs.Shutdown(1)
	}

	apiServer := &http.Server{ //nolint:exhaustruct
		Addr:              fmt.Sprintf(":%d", config.APIServer.Port),
		Handler:           apiHandler,
		TLSConfig:         apiTLS,
		ReadHeaderTimeout: time.Second,
	}

	// --------------------------------------------- Run Server ----------------------------------------------------- //


	httputil.Serve(map[string]*http.Server{
		"api":     apiServer,
		"metrics": setupMetricsServer(config, reg),
		"probes":  setupProbesServer(config),
	}, gs)

	slog.Info("✅ gracefully stopped", "binary", Name)
}
