package domain

// SampleBlock is a contiguous run of acquired samples: Rows time points by
// Cols channels, flat row-major, column order matching the device channel
// order. Blocks carry no timestamps; a row's time position is its offset
// within the block.
type SampleBlock struct {
	Channels []string  `json:"channels,omitempty"`
	Rows     int       `json:"rows"`
	Cols     int       `json:"cols"`
	Data     []float64 `json:"data"`
}

// At returns the sample at the given row and channel.
func (b *SampleBlock) At(row, ch int) float64 {
	return b.Data[row*b.Cols+ch]
}

// Row returns one time point as a channel-ordered slice view.
func (b *SampleBlock) Row(row int) []float64 {
	return b.Data[row*b.Cols : (row+1)*b.Cols]
}

// ConcatBlocks joins whole delivery blocks in order into a single block
// labeled with the given channel names. Each input block stays contiguous
// in the result; rows are never interleaved across blocks.
func ConcatBlocks(channels []string, blocks []SampleBlock) *SampleBlock {
	if len(blocks) == 0 {
		return nil
	}
	cols := blocks[0].Cols
	rows := 0
	for _, blk := range blocks {
		rows += blk.Rows
	}
	out := &SampleBlock{
		Channels: channels,
		Rows:     rows,
		Cols:     cols,
		Data:     make([]float64, 0, rows*cols),
	}
	for _, blk := range blocks {
		out.Data = append(out.Data, blk.Data...)
	}
	return out
}
