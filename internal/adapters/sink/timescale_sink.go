package sink

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/avanlier/NexusEdge/internal/domain"
	"github.com/avanlier/NexusEdge/internal/ports"
)

// TimescaleSink persists polled blocks into a hypertable, one row per time
// point with the channel values as jsonb. Blocks carry no timestamps, so
// rows are keyed by a per-session block sequence plus the row offset.
type TimescaleSink struct {
	db        *sql.DB
	tableName string
	serial    string
	blockSeq  atomic.Uint64
}

func NewTimescaleSink(db *sql.DB, table, deviceSerial string) *TimescaleSink {
	return &TimescaleSink{db: db, tableName: table, serial: deviceSerial}
}

func (t *TimescaleSink) Name() string { return "timescaledb" }

func (t *TimescaleSink) WriteBlock(b *domain.SampleBlock) error {
	if b == nil || b.Rows == 0 {
		return nil
	}

	seq := int64(t.blockSeq.Add(1))

	var sb strings.Builder
	sb.WriteString("INSERT INTO ")
	sb.WriteString(t.tableName)
	// "values" is a reserved word in PostgreSQL, hence channel_values.
	sb.WriteString(" (device_serial, block_seq, row_offset, channel_values) VALUES ")

	args := make([]any, 0, b.Rows*4)
	for row := 0; row < b.Rows; row++ {
		if row > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(fmt.Sprintf("($%d,$%d,$%d,$%d)",
			len(args)+1, len(args)+2, len(args)+3, len(args)+4))

		values := make(map[string]float64, b.Cols)
		for ch := 0; ch < b.Cols; ch++ {
			name := fmt.Sprintf("ch%d", ch)
			if ch < len(b.Channels) {
				name = b.Channels[ch]
			}
			values[name] = b.At(row, ch)
		}
		vals, err := json.Marshal(values)
		if err != nil {
			return fmt.Errorf("marshal values: %w", err)
		}

		args = append(args, t.serial, seq, row, vals)
	}

	sb.WriteString(" ON CONFLICT (device_serial, block_seq, row_offset) DO NOTHING")

	_, err := t.db.Exec(sb.String(), args...)
	return err
}

var _ ports.BlockSink = (*TimescaleSink)(nil)
