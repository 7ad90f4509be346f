package pipeline

import (
	"context"
	"time"

	"github.com/avanlier/NexusEdge/internal/ports"
)

// RunPollPipeline drains the source once per tick, journals each block, and
// forwards it to the sink. A journal entry is committed only after the sink
// accepts the block, so blocks written while the sink was down replay on
// the next session start.
func RunPollPipeline(ctx context.Context, src ports.BlockSource, rec ports.Recorder, sink ports.BlockSink, pol ports.Policy, obs ports.Observability) {
	interval := pol.PollInterval
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			PollOnce(src, rec, sink, pol, obs)
		}
	}
}

// PollOnce runs a single polling cycle.
func PollOnce(src ports.BlockSource, rec ports.Recorder, sink ports.BlockSink, pol ports.Policy, obs ports.Observability) {
	blk, ok := src.Poll()
	if !ok {
		obs.IncCounter("nexus_poll_empty_total", 1)
		return
	}

	id, err := rec.Append(blk)
	if err != nil {
		// the block still goes to the sink; only replay coverage is lost
		obs.LogCritical("recorder_append_failed", err)
		id = 0
	}

	start := time.Now()
	if err := sink.WriteBlock(blk); err != nil {
		obs.LogError("sink_write_failed", err)
		if pol.OnSinkError == "drop" && id != 0 {
			if cerr := rec.Commit(id); cerr != nil {
				obs.LogError("recorder_commit_failed", cerr)
			}
			obs.IncCounter("nexus_blocks_dropped_total", 1)
			return
		}
		obs.IncCounter("nexus_sink_retained_total", 1)
		return
	}
	obs.ObserveLatency("poll_sink_latency_seconds", time.Since(start).Seconds())
	obs.IncCounter("nexus_samples_polled_total", float64(blk.Rows))

	if id != 0 {
		if err := rec.Commit(id); err != nil {
			obs.LogError("recorder_commit_failed", err)
		}
	}
}
