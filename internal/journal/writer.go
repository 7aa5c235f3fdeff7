// Package journal persists records to an append-only, day-partitioned
// NDJSON log. The journal is the durable source of truth: the memory store
// can be rebuilt from it, and the sync uploader replicates it to a shared
// store. Files are never rewritten, only appended.
package journal

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mvaleriani/elysia/internal/record"
)

// Writer appends records to the current day's journal file. One writer
// process per directory is assumed; the mutex serializes in-process callers
// and each line lands in a single write syscall so independent producers
// cannot interleave mid-line.
type Writer struct {
	dir string
	mu  sync.Mutex

	// now is swapped in tests to pin the day partition.
	now func() time.Time
}

// NewWriter creates the journal directory if needed and returns a writer.
// Directory creation is idempotent; an unusable directory is a fatal
// condition for the caller.
func NewWriter(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create journal dir %s: %w", dir, err)
	}
	return &Writer{dir: dir, now: time.Now}, nil
}

// Append computes and attaches the record's content hash if absent, then
// appends it as one self-contained JSON line to the active day file. The
// write either fully lands or the error is returned; callers must not
// ignore it, the journal is the only durability mechanism.
func (w *Writer) Append(rec record.Record) error {
	if rec.Hash == "" {
		rec.Hash = record.Hash(rec)
	}
	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode journal record: %w", err)
	}
	line = append(line, '\n')

	w.mu.Lock()
	defer w.mu.Unlock()

	path := w.pathFor(w.now())
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open journal %s: %w", path, err)
	}
	if _, err := f.Write(line); err != nil {
		_ = f.Close()
		return fmt.Errorf("append journal %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close journal %s: %w", path, err)
	}
	return nil
}

// Dir returns the journal directory.
func (w *Writer) Dir() string { return w.dir }

// pathFor selects the day partition by local date at call time. A write
// that straddles midnight lands in whichever day is current.
func (w *Writer) pathFor(t time.Time) string {
	return filepath.Join(w.dir, t.Format("2006-01-02")+".ndjson")
}
