// Copyright 2025 Blink Labs Software
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

package objectstore

import "github.com/prometheus/client_golang/prometheus"

type storeMetrics struct {
	reads  prometheus.Counter
	writes prometheus.Counter
}

func newStoreMetrics(registry prometheus.Registerer, prefix string) *storeMetrics {
	m := &storeMetrics{
		reads: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: prefix + "reads_total",
				Help: "Total number of object store reads",
			},
		),
		writes: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: prefix + "writes_total",
				Help: "Total number of object store writes",
			},
		),
	}
	registry.MustRegister(m.reads, m.writes)
	return m
}

func (m *storeMetrics) read() {
	if m != nil {
		m.reads.Inc()
	}
}

func (m *storeMetrics) write() {
	if m != nil {
		m.writes.Inc()
	}
}
