package ports

import "github.com/avanlier/NexusEdge/internal/domain"

type EntryID uint64

// Recorder journals polled blocks to stable storage so an interrupted
// session can replay blocks the sink never acknowledged.
type Recorder interface {
	Append(b *domain.SampleBlock) (EntryID, error)
	Iterate(from EntryID, fn func(id EntryID, b *domain.SampleBlock) error) error
	Commit(upto EntryID) error
	TruncateCommitted() error
	Stats() RecorderStats
}

type RecorderStats struct {
	OldestUncommitted EntryID
	LatestAppended    EntryID
	SizeBytes         int64
}
