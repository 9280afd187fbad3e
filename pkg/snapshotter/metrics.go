// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
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

package snapshotter

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Collection cycle metrics
	cycleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sdmon_cycle_duration_seconds",
			Help:    "Time taken to collect a complete snapshot",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60},
		},
	)

	cycleTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sdmon_cycle_total",
			Help: "Total number of collection cycles",
		},
		[]string{"status"}, // success or error
	)

	collectorDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sdmon_collector_duration_seconds",
			Help:    "Time taken by individual collectors",
			Buckets: []float64{0.01, 0.1, 0.5, 1, 5, 10, 30},
		},
		[]string{"collector"},
	)

	collectorsSucceeded = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sdmon_collectors_succeeded",
			Help: "Number of collectors that succeeded in the last cycle",
		},
	)

	machinesUnreachable = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sdmon_machines_unreachable_total",
			Help: "Total number of machine connections that failed",
		},
	)
)
