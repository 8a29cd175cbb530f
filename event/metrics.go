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

package event

import "github.com/prometheus/client_golang/prometheus"

type eventMetrics struct {
	eventsTotal  *prometheus.CounterVec
	droppedTotal *prometheus.CounterVec
	subscribers  *prometheus.GaugeVec
}

func newEventMetrics(promRegistry prometheus.Registerer) *eventMetrics {
	m := &eventMetrics{
		eventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "event_published_total",
				Help: "total events published, by type",
			},
			[]string{"type"},
		),
		droppedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "event_dropped_total",
				Help: "total events not delivered because a queue was full, by type",
			},
			[]string{"type"},
		),
		subscribers: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "event_subscribers",
				Help: "current subscribers, by type",
			},
			[]string{"type"},
		),
	}
	promRegistry.MustRegister(m.eventsTotal, m.droppedTotal, m.subscribers)
	return m
}

func (m *eventMetrics) published(eventType EventType) {
	if m != nil {
		m.eventsTotal.WithLabelValues(string(eventType)).Inc()
	}
}

func (m *eventMetrics) dropped(eventType EventType) {
	if m != nil {
		m.droppedTotal.WithLabelValues(string(eventType)).Inc()
	}
}

func (m *eventMetrics) subscriberAdded(eventType EventType) {
	if m != nil {
		m.subscribers.WithLabelValues(string(eventType)).Inc()
	}
}

func (m *eventMetrics) subscriberRemoved(eventType EventType) {
	if m != nil {
		m.subscribers.WithLabelValues(string(eventType)).Dec()
	}
}
