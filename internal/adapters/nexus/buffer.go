package nexus

import (
	"sync"

	"github.com/avanlier/NexusEdge/internal/domain"
)

// ingestBuffer accumulates whole delivery events from the native thread
// until the host drains them. The delivery thread holds the lock only long
// enough to append; there is no backpressure, so a host that stops polling
// lets the buffer grow without bound.
type ingestBuffer struct {
	mu      sync.Mutex
	pending []domain.SampleBlock
}

func (b *ingestBuffer) append(blk domain.SampleBlock) {
	b.mu.Lock()
	b.pending = append(b.pending, blk)
	b.mu.Unlock()
}

// drain removes and returns every pending block in arrival order. The
// returned slice is owned by the caller.
func (b *ingestBuffer) drain() []domain.SampleBlock {
	b.mu.Lock()
	out := b.pending
	b.pending = nil
	b.mu.Unlock()
	return out
}

func (b *ingestBuffer) len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}
