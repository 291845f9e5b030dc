// Copyright 2025 Meridian
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

package document

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Prometheus metrics
var (
	promOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docstore_operations_total",
			Help: "Total number of document operations processed",
		},
		[]string{"op", "status"},
	)
	promOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "docstore_operation_duration_milliseconds",
			Help:    "Document operation duration in milliseconds",
			Buckets: []float64{1, 5, 10, 50, 100, 200, 500, 1000, 2000, 5000},
		},
		[]string{"op"},
	)
	promFanoutProbes = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "docstore_fanout_probes_total",
			Help: "Total number of per-collection probes issued by id lookups",
		},
	)
	promCacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docstore_cache_lookups_total",
			Help: "Total number of DTO cache lookups by outcome",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(promOperationsTotal)
	prometheus.MustRegister(promOperationDuration)
	prometheus.MustRegister(promFanoutProbes)
	prometheus.MustRegister(promCacheHits)
}

func observeOp(op string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	promOperationsTotal.WithLabelValues(op, status).Inc()
	promOperationDuration.WithLabelValues(op).Observe(float64(time.Since(start).Milliseconds()))
}
