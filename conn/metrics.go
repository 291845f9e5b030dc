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

package conn

import "github.com/prometheus/client_golang/prometheus"

// Prometheus metrics
var (
	promConnectionOpens = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docstore_connection_opens_total",
			Help: "Total number of lazy connection opens attempted by Acquire",
		},
		[]string{"status"},
	)
	promLifecycleWait = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "docstore_lifecycle_wait_milliseconds",
			Help:    "Time spent waiting out transitional connection states",
			Buckets: []float64{10, 100, 500, 1000, 2000, 5000, 10000, 30000},
		},
	)
)

func init() {
	prometheus.MustRegister(promConnectionOpens)
	prometheus.MustRegister(promLifecycleWait)
}
