package nexusedge

import (
	"errors"
	"fmt"
	"sync"

	"github.com/avanlier/NexusEdge/internal/domain"
)

// ErrChannelSinkClosed is returned when a channel sink is written to after
// being closed.
var ErrChannelSinkClosed = errors.New("nexusedge: channel sink closed")

// BlockFunc is invoked with each block drained from the pipeline.
type BlockFunc func(*Block) error

// NewCallbackSink adapts a BlockFunc into a full BlockSink implementation so
// callers can plug arbitrary functions without defining structs.
func NewCallbackSink(name string, fn BlockFunc) BlockSink {
	if name == "" {
		name = "callback"
	}
	return &callbackSink{name: name, fn: fn}
}

// NewChannelSink exposes blocks via a channel; it returns the sink, the
// read-only channel, and a close function the caller should invoke during
// shutdown.
func NewChannelSink(name string, buffer int) (BlockSink, <-chan *Block, func()) {
	if name == "" {
		name = "channel"
	}
	if buffer < 0 {
		buffer = 0
	}
	ch := make(chan *Block, buffer)
	s := &channelSink{
		name:   name,
		ch:     ch,
		closed: make(chan struct{}),
	}
	return s, ch, func() { s.close() }
}

type callbackSink struct {
	name string
	fn   BlockFunc
}

func (s *callbackSink) WriteBlock(b *domain.SampleBlock) error {
	if s.fn == nil {
		return fmt.Errorf("callback sink %q: nil handler", s.name)
	}
	if b == nil || b.Rows == 0 {
		return nil
	}
	return s.fn(b)
}

func (s *callbackSink) Name() string { return s.name }

type channelSink struct {
	name   string
	ch     chan *Block
	closed chan struct{}
	once   sync.Once
}

func (s *channelSink) WriteBlock(b *domain.SampleBlock) error {
	select {
	case <-s.closed:
		return ErrChannelSinkClosed
	default:
	}

	if b == nil || b.Rows == 0 {
		return nil
	}

	select {
	case <-s.closed:
		return ErrChannelSinkClosed
	case s.ch <- b:
		return nil
	}
}

func (s *channelSink) Name() string { return s.name }

func (s *channelSink) close() {
	s.once.Do(func() {
		close(s.closed)
		close(s.ch)
	})
}
