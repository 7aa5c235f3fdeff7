package journal

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mvaleriani/elysia/internal/record"
)

func TestAppendProducesParseableLines(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir)
	if err != nil {
		t.Fatalf("NewWriter error = %v", err)
	}

	texts := []string{"first", "second", "third"}
	for _, text := range texts {
		if err := w.Append(record.NewSystemNote(text)); err != nil {
			t.Fatalf("Append(%q) error = %v", text, err)
		}
	}

	paths, err := Files(dir)
	if err != nil {
		t.Fatalf("Files error = %v", err)
	}
	if len(paths) != 1 {
		t.Fatalf("len(Files) = %d, want 1", len(paths))
	}

	data, err := os.ReadFile(paths[0])
	if err != nil {
		t.Fatalf("read journal: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != len(texts) {
		t.Fatalf("journal has %d lines, want %d", len(lines), len(texts))
	}
	for i, line := range lines {
		var r record.Record
		if err := json.Unmarshal([]byte(line), &r); err != nil {
			t.Fatalf("line %d not independently parseable: %v", i, err)
		}
		if r.Text != texts[i] {
			t.Fatalf("line %d text = %q, want %q (append order)", i, r.Text, texts[i])
		}
		if r.Hash == "" {
			t.Fatalf("line %d missing hash", i)
		}
	}
}

func TestAppendAttachesHash(t *testing.T) {
	w, err := NewWriter(t.TempDir())
	if err != nil {
		t.Fatalf("NewWriter error = %v", err)
	}
	rec := record.Record{Kind: record.KindTurn, TS: 1000.0, TurnID: "t1", Speaker: record.SpeakerUser, Text: "hi"}
	if err := w.Append(rec); err != nil {
		t.Fatalf("Append error = %v", err)
	}

	paths, _ := Files(w.Dir())
	recs, err := ReadFile(paths[0])
	if err != nil {
		t.Fatalf("ReadFile error = %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("len(recs) = %d, want 1", len(recs))
	}
	if recs[0].Hash != record.Hash(rec) {
		t.Fatalf("journal hash = %q, want %q", recs[0].Hash, record.Hash(rec))
	}
}

func TestDayPartitioning(t *testing.T) {
	w, err := NewWriter(t.TempDir())
	if err != nil {
		t.Fatalf("NewWriter error = %v", err)
	}

	day1 := time.Date(2025, 3, 1, 23, 59, 0, 0, time.Local)
	day2 := time.Date(2025, 3, 2, 0, 1, 0, 0, time.Local)

	w.now = func() time.Time { return day1 }
	if err := w.Append(record.NewSystemNote("before midnight")); err != nil {
		t.Fatalf("Append error = %v", err)
	}
	w.now = func() time.Time { return day2 }
	if err := w.Append(record.NewSystemNote("after midnight")); err != nil {
		t.Fatalf("Append error = %v", err)
	}

	paths, err := Files(w.Dir())
	if err != nil {
		t.Fatalf("Files error = %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("len(Files) = %d, want 2", len(paths))
	}
	if filepath.Base(paths[0]) != "2025-03-01.ndjson" || filepath.Base(paths[1]) != "2025-03-02.ndjson" {
		t.Fatalf("day files = %v, want ISO-dated names in order", paths)
	}
}

func TestNewWriterIdempotent(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "journal")
	if _, err := NewWriter(dir); err != nil {
		t.Fatalf("first NewWriter error = %v", err)
	}
	if _, err := NewWriter(dir); err != nil {
		t.Fatalf("second NewWriter error = %v", err)
	}
}

func TestReadFileSkipsMalformedLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "2025-03-01.ndjson")
	good, _ := json.Marshal(record.NewSystemNote("ok"))
	content := string(good) + "\n{not json\n\n" + string(good) + "\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	recs, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile error = %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("len(recs) = %d, want 2 (malformed line skipped)", len(recs))
	}
}
