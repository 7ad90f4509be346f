package observability

import (
	"log"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/avanlier/NexusEdge/internal/ports"
)

type PromObs struct {
	counters map[string]prometheus.Counter
	gauges   map[string]prometheus.Gauge
	histos   map[string]prometheus.Observer
}

func NewPromObs() *PromObs {
	delivered := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "nexus_blocks_delivered_total",
		Help: "Delivery events received from the native driver.",
	})
	polled := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "nexus_samples_polled_total",
		Help: "Sample rows handed to the host pipeline.",
	})
	empty := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "nexus_poll_empty_total",
		Help: "Polls that found no pending delivery.",
	})
	retained := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "nexus_sink_retained_total",
		Help: "Blocks kept in the journal after a sink write failure.",
	})
	dropped := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "nexus_blocks_dropped_total",
		Help: "Blocks discarded after a sink write failure (on_sink_error=drop).",
	})
	bufferGauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "nexus_buffer_blocks",
		Help: "Delivery events currently waiting in the ingest buffer.",
	})
	journalGauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "nexus_recorder_size_bytes",
		Help: "Size of the block journal on disk.",
	})
	latency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "poll_sink_latency_seconds",
		Help:    "Latency from poll to sink commit.",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
	})

	prometheus.MustRegister(delivered, polled, empty, retained, dropped,
		bufferGauge, journalGauge, latency)

	return &PromObs{
		counters: map[string]prometheus.Counter{
			"nexus_blocks_delivered_total": delivered,
			"nexus_samples_polled_total":   polled,
			"nexus_poll_empty_total":       empty,
			"nexus_sink_retained_total":    retained,
			"nexus_blocks_dropped_total":   dropped,
		},
		gauges: map[string]prometheus.Gauge{
			"nexus_buffer_blocks":       bufferGauge,
			"nexus_recorder_size_bytes": journalGauge,
		},
		histos: map[string]prometheus.Observer{
			"poll_sink_latency_seconds": latency,
		},
	}
}

func (p *PromObs) LogInfo(msg string, fields ...ports.Field) {}

func (p *PromObs) LogError(msg string, err error, fields ...ports.Field) {
	if err != nil {
		log.Printf("ERROR: %s: %v", msg, err)
	}
}

func (p *PromObs) LogCritical(msg string, err error, fields ...ports.Field) {
	if err != nil {
		log.Printf("CRITICAL: %s: %v", msg, err)
	}
}

func (p *PromObs) IncCounter(name string, v float64) {
	if c, ok := p.counters[name]; ok {
		c.Add(v)
	}
}

func (p *PromObs) ObserveLatency(name string, seconds float64) {
	if h, ok := p.histos[name]; ok {
		h.Observe(seconds)
	}
}

func (p *PromObs) SetGauge(name string, v float64) {
	if g, ok := p.gauges[name]; ok {
		g.Set(v)
	}
}

var _ ports.Observability = (*PromObs)(nil)
