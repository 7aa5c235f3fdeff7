package memory

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/mvaleriani/elysia/internal/embedding"
	"github.com/mvaleriani/elysia/internal/record"
)

// SQLiteStore is the default local backend. Embeddings live next to the
// records as BLOBs; similarity is ranked in Go, which is plenty for a
// personal conversation history.
type SQLiteStore struct {
	db         *sql.DB
	embedder   embedding.Embedder
	collection string
	mu         sync.Mutex
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS records (
	id         TEXT PRIMARY KEY,
	collection TEXT NOT NULL,
	kind       TEXT NOT NULL,
	speaker    TEXT NOT NULL,
	turn_id    TEXT NOT NULL DEFAULT '',
	ts         REAL NOT NULL,
	content    TEXT NOT NULL,
	hash       TEXT NOT NULL,
	embedding  BLOB NOT NULL,
	created_at TEXT NOT NULL DEFAULT (datetime('now'))
);
CREATE INDEX IF NOT EXISTS idx_records_collection ON records (collection);
CREATE INDEX IF NOT EXISTS idx_records_hash ON records (collection, hash);
`

// NewSQLiteStore opens or creates the database at path. A store that
// cannot open its index cannot operate, so any error here is fatal for
// the caller.
func NewSQLiteStore(path, collection string, embedder embedding.Embedder) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// modernc sqlite handles one writer; funnel everything through a
	// single connection and serialize writes at the store boundary.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init sqlite schema: %w", err)
	}
	return &SQLiteStore{db: db, embedder: embedder, collection: collection}, nil
}

func (s *SQLiteStore) AddTurn(ctx context.Context, userText, assistantText string) ([]record.Record, error) {
	return addTurn(ctx, s, userText, assistantText)
}

func (s *SQLiteStore) AddSystemNote(ctx context.Context, text string) (record.Record, error) {
	return addSystemNote(ctx, s, text)
}

func (s *SQLiteStore) Upsert(ctx context.Context, rec record.Record) error {
	if rec.Hash == "" {
		rec.Hash = record.Hash(rec)
	}
	vec, err := s.embedder.Embed(ctx, rec.Text)
	if err != nil {
		return fmt.Errorf("embed record: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO records (id, collection, kind, speaker, turn_id, ts, content, hash, embedding)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO NOTHING`,
		rec.StoreID(), s.collection, string(rec.Kind), string(rec.Speaker),
		rec.TurnID, rec.TS, rec.Text, rec.Hash, serializeVector(vec),
	)
	if err != nil {
		return fmt.Errorf("upsert record: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Query(ctx context.Context, text string, limit int) ([]string, error) {
	limit = normalizeLimit(limit)
	qvec, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT content, embedding, rowid FROM records WHERE collection = ? ORDER BY rowid`,
		s.collection,
	)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	type scored struct {
		content string
		score   float64
		seq     int64
	}
	var candidates []scored
	for rows.Next() {
		var content string
		var blob []byte
		var seq int64
		if err := rows.Scan(&content, &blob, &seq); err != nil {
			return nil, fmt.Errorf("scan record row: %w", err)
		}
		vec, err := deserializeVector(blob)
		if err != nil {
			// A corrupt embedding degrades one candidate, not the query.
			continue
		}
		candidates = append(candidates, scored{content, cosineSimilarity(qvec, vec), seq})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate record rows: %w", err)
	}

	// Most similar first; ties resolve to insertion order so identical
	// inputs always rank identically.
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].seq < candidates[j].seq
	})

	if limit > len(candidates) {
		limit = len(candidates)
	}
	out := make([]string, 0, limit)
	for _, c := range candidates[:limit] {
		out = append(out, c.content)
	}
	return out, nil
}

func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM records WHERE collection = ?`, s.collection,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return n, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
