package ports

import "github.com/avanlier/NexusEdge/internal/domain"

type BlockSink interface {
	WriteBlock(b *domain.SampleBlock) error
	Name() string
}
