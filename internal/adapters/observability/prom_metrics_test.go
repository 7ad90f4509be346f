package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPromObsMetrics(t *testing.T) {
	origReg := prometheus.DefaultRegisterer
	origGatherer := prometheus.DefaultGatherer
	t.Cleanup(func() {
		prometheus.DefaultRegisterer = origReg
		prometheus.DefaultGatherer = origGatherer
	})

	reg := prometheus.NewRegistry()
	prometheus.DefaultRegisterer = reg
	prometheus.DefaultGatherer = reg

	obs := NewPromObs()

	obs.IncCounter("nexus_blocks_delivered_total", 3)
	if got := testutil.ToFloat64(obs.counters["nexus_blocks_delivered_total"]); got != 3 {
		t.Fatalf("expected delivered counter 3, got %f", got)
	}

	obs.IncCounter("nexus_samples_polled_total", 128)
	if got := testutil.ToFloat64(obs.counters["nexus_samples_polled_total"]); got != 128 {
		t.Fatalf("expected polled counter 128, got %f", got)
	}

	obs.SetGauge("nexus_buffer_blocks", 7)
	if got := testutil.ToFloat64(obs.gauges["nexus_buffer_blocks"]); got != 7 {
		t.Fatalf("expected buffer gauge 7, got %f", got)
	}

	obs.ObserveLatency("poll_sink_latency_seconds", 0.25)
	hCollector := obs.histos["poll_sink_latency_seconds"].(prometheus.Collector)
	if samples := testutil.CollectAndCount(hCollector); samples != 1 {
		t.Fatalf("expected latency histogram to record 1 sample, got %d", samples)
	}

	// unknown names must be ignored, not panic
	obs.IncCounter("nexus_unknown_metric", 1)
	obs.SetGauge("nexus_unknown_gauge", 1)
	obs.ObserveLatency("nexus_unknown_latency", 1)
}
