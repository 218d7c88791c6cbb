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

package adapter

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	metricsNamespace = "secureboot"

	resultSuccess = "success"
	resultFailure = "failure"

	// transportErrorCode labels httpmi calls that did not receive a response.
	transportErrorCode = "error"
)

// Metrics holds the collectors of the adapter package. A nil *Metrics records nothing.
type Metrics struct {
	httpmiRequests    *prometheus.CounterVec
	httpmiDuration    *prometheus.HistogramVec
	stagingOperations *prometheus.CounterVec
}

// NewMetrics creates the adapter collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		httpmiRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "httpmi",
			Name:      "requests_total",
			Help:      "Number of calls made to httpmi proxies, by method, path and response code.",
		}, []string{"method", "path", "code"}),

		httpmiDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "httpmi",
			Name:      "request_duration_seconds",
			Help:      "Duration of calls made to httpmi proxies.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),

		stagingOperations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "staging",
			Name:      "operations_total",
			Help:      "Number of staging operations, by operation and result.",
		}, []string{"operation", "result"}),
	}
}

func (m *Metrics) observeHTTPMICall(method, path, code string, d time.Duration) {
	if m == nil {
		return
	}

	m.httpmiRequests.WithLabelValues(method, path, code).Inc()
	m.httpmiDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

func (m *Metrics) observeStaging(operation string, err error) {
	if m == nil {
		return
	}

	result := resultSuccess
	if err != nil {
		result = resultFailure
	}

	m.stagingOperations.WithLabelValues(operation, result).Inc()
}
