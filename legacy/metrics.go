// Copyright 2026 Blink Labs Software
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

package legacy

import "github.com/prometheus/client_golang/prometheus"

type programMetrics struct {
	instructions *prometheus.CounterVec
	duration     *prometheus.HistogramVec
}

func newProgramMetrics(promRegistry prometheus.Registerer) *programMetrics {
	m := &programMetrics{
		instructions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "legacy_instructions_total",
				Help: "total executed instructions, by name and result",
			},
			[]string{"instruction", "result"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "legacy_instruction_duration_seconds",
				Help:    "instruction execution time, by name",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"instruction"},
		),
	}
	promRegistry.MustRegister(m.instructions, m.duration)
	return m
}

func (m *programMetrics) observe(name string, err error, seconds float64) {
	if m == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "failure"
	}
	m.instructions.WithLabelValues(name, result).Inc()
	m.duration.WithLabelValues(name).Observe(seconds)
}
