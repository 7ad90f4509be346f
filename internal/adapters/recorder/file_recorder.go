package recorder

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/avanlier/NexusEdge/internal/domain"
	"github.com/avanlier/NexusEdge/internal/ports"
)

const recordHeaderLen = 12

// FileRecorder journals polled sample blocks to an append-only file so that
// blocks the sink never acknowledged survive a crash and can be replayed on
// the next session. A sidecar meta file tracks the committed watermark.
type FileRecorder struct {
	mu        sync.Mutex
	path      string
	metaPath  string
	file      *os.File
	writer    *bufio.Writer
	nextID    ports.EntryID
	committed ports.EntryID
	sizeBytes int64
}

func NewFileRecorder(dir string) (*FileRecorder, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	path := filepath.Join(dir, "blocks.log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}

	r := &FileRecorder{
		path:     path,
		metaPath: filepath.Join(dir, "blocks.meta"),
		file:     f,
		writer:   bufio.NewWriterSize(f, 1<<20),
	}
	if err := r.bootstrap(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *FileRecorder) bootstrap() error {
	if err := r.scanExisting(); err != nil {
		return err
	}
	if err := r.loadCommitted(); err != nil {
		return err
	}
	if r.nextID < r.committed {
		r.nextID = r.committed
	}
	_, err := r.file.Seek(0, io.SeekEnd)
	return err
}

// scanExisting walks the journal to find the last complete entry, truncating
// any partial tail left by a crash mid-append.
func (r *FileRecorder) scanExisting() error {
	stat, err := os.Stat(r.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if err != nil || stat.Size() == 0 {
		return nil
	}

	rf, err := os.Open(r.path)
	if err != nil {
		return err
	}
	defer rf.Close()

	reader := bufio.NewReader(rf)
	var (
		offset int64
		lastID ports.EntryID
	)

	for {
		var hdr [recordHeaderLen]byte
		if _, err := io.ReadFull(reader, hdr[:]); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			if errors.Is(err, io.ErrUnexpectedEOF) {
				if err := r.file.Truncate(offset); err != nil {
					return err
				}
				break
			}
			return fmt.Errorf("recorder scan header: %w", err)
		}
		id := ports.EntryID(binary.BigEndian.Uint64(hdr[0:8]))
		length := binary.BigEndian.Uint32(hdr[8:12])
		offset += recordHeaderLen

		if length > 0 {
			if _, err := io.CopyN(io.Discard, reader, int64(length)); err != nil {
				if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
					if err := r.file.Truncate(offset - recordHeaderLen); err != nil {
						return err
					}
					r.sizeBytes = offset - recordHeaderLen
					r.nextID = lastID
					return nil
				}
				return fmt.Errorf("recorder scan body: %w", err)
			}
			offset += int64(length)
		}
		lastID = id
	}

	if err := r.file.Truncate(offset); err != nil {
		return err
	}
	r.sizeBytes = offset
	r.nextID = lastID
	return nil
}

func (r *FileRecorder) loadCommitted() error {
	data, err := os.ReadFile(r.metaPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	val := strings.TrimSpace(string(data))
	if val == "" {
		return nil
	}
	u, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		return fmt.Errorf("recorder meta parse: %w", err)
	}
	r.committed = ports.EntryID(u)
	return nil
}

func (r *FileRecorder) Append(b *domain.SampleBlock) (ports.EntryID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.nextID + 1

	buf, err := json.Marshal(b)
	if err != nil {
		return 0, err
	}

	// entry format: [8 bytes id][4 bytes len][len bytes json]
	var hdr [recordHeaderLen]byte
	binary.BigEndian.PutUint64(hdr[0:8], uint64(id))
	binary.BigEndian.PutUint32(hdr[8:12], uint32(len(buf)))

	if _, err := r.writer.Write(hdr[:]); err != nil {
		return 0, err
	}
	if _, err := r.writer.Write(buf); err != nil {
		return 0, err
	}
	if err := r.writer.Flush(); err != nil {
		return 0, err
	}

	r.nextID = id
	r.sizeBytes += int64(len(buf) + len(hdr))
	return id, nil
}

func (r *FileRecorder) Iterate(from ports.EntryID, fn func(id ports.EntryID, b *domain.SampleBlock) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.writer.Flush(); err != nil {
		return err
	}

	f, err := os.Open(r.path)
	if err != nil {
		return err
	}
	defer f.Close()

	rd := bufio.NewReader(f)
	for {
		var hdr [recordHeaderLen]byte
		if _, err := io.ReadFull(rd, hdr[:]); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("recorder iterate header: %w", err)
		}
		id := ports.EntryID(binary.BigEndian.Uint64(hdr[0:8]))
		l := binary.BigEndian.Uint32(hdr[8:12])

		buf := make([]byte, l)
		if _, err := io.ReadFull(rd, buf); err != nil {
			return fmt.Errorf("corrupt journal: %w", err)
		}
		if id < from {
			continue
		}

		var b domain.SampleBlock
		if err := json.Unmarshal(buf, &b); err != nil {
			return fmt.Errorf("corrupt journal entry: %w", err)
		}
		if err := fn(id, &b); err != nil {
			return err
		}
	}
}

func (r *FileRecorder) Commit(upto ports.EntryID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if upto > r.committed {
		r.committed = upto
	}
	return r.persistMetaLocked()
}

// TruncateCommitted drops the whole journal once every entry is committed.
// Partial truncation (rewriting from committed+1) is left to a future rev.
func (r *FileRecorder) TruncateCommitted() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.committed < r.nextID {
		return nil
	}
	if err := r.writer.Flush(); err != nil {
		return err
	}
	if err := r.file.Truncate(0); err != nil {
		return err
	}
	if _, err := r.file.Seek(0, io.SeekStart); err != nil {
		return err
	}
	r.sizeBytes = 0
	return nil
}

func (r *FileRecorder) Stats() ports.RecorderStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return ports.RecorderStats{
		OldestUncommitted: r.committed + 1,
		LatestAppended:    r.nextID,
		SizeBytes:         r.sizeBytes,
	}
}

func (r *FileRecorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.writer.Flush(); err != nil {
		r.file.Close()
		return err
	}
	return r.file.Close()
}

func (r *FileRecorder) persistMetaLocked() error {
	data := []byte(fmt.Sprintf("%d\n", r.committed))
	return os.WriteFile(r.metaPath, data, 0o644)
}

var _ ports.Recorder = (*FileRecorder)(nil)
