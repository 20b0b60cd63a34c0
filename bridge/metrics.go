// Copyright 2026 The Simbridge Authors
// SPDX-License-Identifier: Apache-2.0

package bridge

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/oddrunner/simbridge/simapi"
)

// Metrics records dispatcher activity. A nil *Metrics records nothing.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	entities prometheus.Gauge
	sessions prometheus.Counter
}

// NewMetrics creates the collectors and registers them with registerer
// when it is non-nil.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "simbridge_requests_total",
				Help: "Requests handled, by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "simbridge_request_duration_seconds",
				Help:    "Handler latency, including simulator round trips",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"kind"},
		),
		entities: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "simbridge_entities",
			Help: "Entities registered in the current session, ego included",
		}),
		sessions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "simbridge_sessions_total",
			Help: "Successful Initialize requests",
		}),
	}
	if registerer != nil {
		registerer.MustRegister(m.requests, m.duration, m.entities, m.sessions)
	}
	return m
}

// ObserveRequest records one handled request.
func (m *Metrics) ObserveRequest(kind simapi.Kind, response simapi.Response, elapsed time.Duration) {
	if m == nil {
		return
	}
	outcome := "success"
	if !response.Result.Success {
		outcome = "failure"
	}
	m.requests.WithLabelValues(kind.String(), outcome).Inc()
	m.duration.WithLabelValues(kind.String()).Observe(elapsed.Seconds())
	if kind == simapi.KindInitialize && response.Result.Success {
		m.sessions.Inc()
	}
}

// SetEntities records the current registry size.
func (m *Metrics) SetEntities(count int) {
	if m == nil {
		return
	}
	m.entities.Set(float64(count))
}
