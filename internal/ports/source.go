package ports

import "github.com/avanlier/NexusEdge/internal/domain"

// BlockSource is the pull side of a streaming acquisition: each Poll drains
// whatever arrived since the previous one into a single labeled block.
type BlockSource interface {
	// Poll returns the pending samples as one contiguous block, or false
	// when nothing arrived. An empty poll is a normal outcome, not an error.
	Poll() (*domain.SampleBlock, bool)
	Device() domain.DeviceDescriptor
	Channels() []domain.ChannelDescriptor
	// Close stops native streaming; the source is inert afterwards.
	Close() error
}
