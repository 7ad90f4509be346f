package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/avanlier/NexusEdge/internal/domain"
	"github.com/avanlier/NexusEdge/internal/ports"
)

type fakeSource struct {
	mu     sync.Mutex
	blocks []*domain.SampleBlock
}

func (s *fakeSource) push(b *domain.SampleBlock) {
	s.mu.Lock()
	s.blocks = append(s.blocks, b)
	s.mu.Unlock()
}

func (s *fakeSource) Poll() (*domain.SampleBlock, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.blocks) == 0 {
		return nil, false
	}
	b := s.blocks[0]
	s.blocks = s.blocks[1:]
	return b, true
}

func (s *fakeSource) Device() domain.DeviceDescriptor     { return domain.DeviceDescriptor{} }
func (s *fakeSource) Channels() []domain.ChannelDescriptor { return nil }
func (s *fakeSource) Close() error                         { return nil }

type memRecorder struct {
	mu        sync.Mutex
	nextID    ports.EntryID
	committed ports.EntryID
	entries   map[ports.EntryID]*domain.SampleBlock
}

func newMemRecorder() *memRecorder {
	return &memRecorder{entries: make(map[ports.EntryID]*domain.SampleBlock)}
}

func (r *memRecorder) Append(b *domain.SampleBlock) (ports.EntryID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	r.entries[r.nextID] = b
	return r.nextID, nil
}

func (r *memRecorder) Iterate(from ports.EntryID, fn func(ports.EntryID, *domain.SampleBlock) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id := from; id <= r.nextID; id++ {
		if b, ok := r.entries[id]; ok {
			if err := fn(id, b); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *memRecorder) Commit(upto ports.EntryID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if upto > r.committed {
		r.committed = upto
	}
	return nil
}

func (r *memRecorder) TruncateCommitted() error { return nil }

func (r *memRecorder) Stats() ports.RecorderStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return ports.RecorderStats{
		OldestUncommitted: r.committed + 1,
		LatestAppended:    r.nextID,
	}
}

type fakeSink struct {
	mu     sync.Mutex
	err    error
	blocks []*domain.SampleBlock
}

func (s *fakeSink) WriteBlock(b *domain.SampleBlock) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.blocks = append(s.blocks, b)
	return nil
}

func (s *fakeSink) Name() string { return "fake" }

func (s *fakeSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.blocks)
}

type countingObs struct {
	mu       sync.Mutex
	counters map[string]float64
}

func newCountingObs() *countingObs {
	return &countingObs{counters: make(map[string]float64)}
}

func (o *countingObs) LogInfo(string, ...ports.Field)            {}
func (o *countingObs) LogError(string, error, ...ports.Field)    {}
func (o *countingObs) LogCritical(string, error, ...ports.Field) {}
func (o *countingObs) ObserveLatency(string, float64)            {}
func (o *countingObs) SetGauge(string, float64)                  {}

func (o *countingObs) IncCounter(name string, v float64) {
	o.mu.Lock()
	o.counters[name] += v
	o.mu.Unlock()
}

func (o *countingObs) get(name string) float64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.counters[name]
}

func TestPollOnceCommitsAfterSinkSuccess(t *testing.T) {
	src := &fakeSource{}
	rec := newMemRecorder()
	snk := &fakeSink{}
	obs := newCountingObs()

	src.push(&domain.SampleBlock{Rows: 3, Cols: 2, Data: make([]float64, 6)})
	PollOnce(src, rec, snk, ports.Policy{OnSinkError: "retain"}, obs)

	if snk.count() != 1 {
		t.Fatalf("expected 1 block at sink, got %d", snk.count())
	}
	if stats := rec.Stats(); stats.OldestUncommitted != 2 {
		t.Fatalf("expected entry committed, stats %+v", stats)
	}
	if got := obs.get("nexus_samples_polled_total"); got != 3 {
		t.Fatalf("expected 3 polled samples, got %f", got)
	}
}

func TestPollOnceEmpty(t *testing.T) {
	src := &fakeSource{}
	rec := newMemRecorder()
	snk := &fakeSink{}
	obs := newCountingObs()

	PollOnce(src, rec, snk, ports.Policy{}, obs)

	if got := obs.get("nexus_poll_empty_total"); got != 1 {
		t.Fatalf("expected empty poll counter 1, got %f", got)
	}
	if snk.count() != 0 || rec.Stats().LatestAppended != 0 {
		t.Fatalf("empty poll must not touch recorder or sink")
	}
}

func TestPollOnceRetainsOnSinkError(t *testing.T) {
	src := &fakeSource{}
	rec := newMemRecorder()
	snk := &fakeSink{err: errors.New("db down")}
	obs := newCountingObs()

	src.push(&domain.SampleBlock{Rows: 1, Cols: 1, Data: []float64{1}})
	PollOnce(src, rec, snk, ports.Policy{OnSinkError: "retain"}, obs)

	if stats := rec.Stats(); stats.OldestUncommitted != 1 {
		t.Fatalf("expected entry retained uncommitted, stats %+v", stats)
	}
	if got := obs.get("nexus_sink_retained_total"); got != 1 {
		t.Fatalf("expected retained counter 1, got %f", got)
	}
}

func TestPollOnceDropsOnSinkErrorWhenConfigured(t *testing.T) {
	src := &fakeSource{}
	rec := newMemRecorder()
	snk := &fakeSink{err: errors.New("db down")}
	obs := newCountingObs()

	src.push(&domain.SampleBlock{Rows: 1, Cols: 1, Data: []float64{1}})
	PollOnce(src, rec, snk, ports.Policy{OnSinkError: "drop"}, obs)

	if stats := rec.Stats(); stats.OldestUncommitted != 2 {
		t.Fatalf("expected entry committed despite failure, stats %+v", stats)
	}
	if got := obs.get("nexus_blocks_dropped_total"); got != 1 {
		t.Fatalf("expected dropped counter 1, got %f", got)
	}
}

func TestRunPollPipelineDrainsUntilCancelled(t *testing.T) {
	src := &fakeSource{}
	rec := newMemRecorder()
	snk := &fakeSink{}
	obs := newCountingObs()

	for i := 0; i < 3; i++ {
		src.push(&domain.SampleBlock{Rows: 1, Cols: 1, Data: []float64{float64(i)}})
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		RunPollPipeline(ctx, src, rec, snk, ports.Policy{PollInterval: time.Millisecond}, obs)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for snk.count() < 3 {
		select {
		case <-deadline:
			t.Fatalf("pipeline drained %d of 3 blocks before deadline", snk.count())
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("pipeline did not stop after cancel")
	}
}
