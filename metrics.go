/*
   Copyright 2025 The DIRPX Authors

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

package osreason

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	created       prometheus.Counter
	destroyed     prometheus.Counter
	live          prometheus.Gauge
	allocFailures *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	return &metrics{
		created: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "osreason_records_created_total",
			Help: "Total number of termination reason records created.",
		}),
		destroyed: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "osreason_records_destroyed_total",
			Help: "Total number of termination reason records destroyed by their last release.",
		}),
		live: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "osreason_records_live",
			Help: "Number of termination reason records currently holding a slot.",
		}),
		allocFailures: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "osreason_payload_alloc_failures_total",
			Help: "Total number of failed payload allocations.",
		}, []string{"mode", "code"}),
	}
}

// registerHeapGauge exports the heap's in-use bytes when it can report them.
func registerHeapGauge(reg prometheus.Registerer, h any) {
	sized, ok := h.(interface{ InUse() int64 })
	if !ok {
		return
	}
	promauto.With(reg).NewGaugeFunc(prometheus.GaugeOpts{
		Name: "osreason_heap_bytes_in_use",
		Help: "Payload bytes currently allocated from the heap.",
	}, func() float64 { return float64(sized.InUse()) })
}
