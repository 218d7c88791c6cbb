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
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics records API requests. A nil *Metrics records nothing.
type Metrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{ //nolint:exhaustruct
			Namespace: "secureboot",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Requests served by the secureboot API, by operation and status code.",
		}, []string{"operation", "code"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{ //nolint:exhaustruct
			Namespace: "secureboot",
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "Duration of requests served by the secureboot API.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}
}

func (m *Metrics) observeRequest(operation string, status int, d time.Duration) {
	if m == nil {
		return
	}

	if operation == "" {
		operation = "unknown"
	}

	m.requestsTotal.WithLabelValues(operation, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}
