// Copyright 2026 The Simbridge Authors
// SPDX-License-Identifier: Apache-2.0

package bridge

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/oddrunner/simbridge/simapi"
)

func TestMetricsObserveRequest(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := NewMetrics(registry)

	metrics.ObserveRequest(simapi.KindInitialize, simapi.Succeeded("ok"), 20*time.Millisecond)
	metrics.ObserveRequest(simapi.KindInitialize, simapi.Failed("no"), 10*time.Millisecond)
	metrics.ObserveRequest(simapi.KindAttachLidarSensor, simapi.NotImplemented(simapi.KindAttachLidarSensor), 0)
	metrics.SetEntities(3)

	if v := promtestutil.ToFloat64(metrics.requests.WithLabelValues("Initialize", "success")); v != 1 {
		t.Errorf("initialize successes = %v, want 1", v)
	}
	if v := promtestutil.ToFloat64(metrics.requests.WithLabelValues("Initialize", "failure")); v != 1 {
		t.Errorf("initialize failures = %v, want 1", v)
	}
	if v := promtestutil.ToFloat64(metrics.requests.WithLabelValues("AttachLidarSensor", "failure")); v != 1 {
		t.Errorf("lidar failures = %v, want 1", v)
	}
	if v := promtestutil.ToFloat64(metrics.sessions); v != 1 {
		t.Errorf("sessions = %v, want 1", v)
	}
	if v := promtestutil.ToFloat64(metrics.entities); v != 3 {
		t.Errorf("entities = %v, want 3", v)
	}
	if n := promtestutil.CollectAndCount(metrics.duration); n != 2 {
		t.Errorf("duration series = %d, want 2", n)
	}
}

func TestNilMetricsIsANoOp(t *testing.T) {
	var metrics *Metrics
	metrics.ObserveRequest(simapi.KindUpdateFrame, simapi.Succeeded(""), time.Millisecond)
	metrics.SetEntities(1)
}
