package memory

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"
	pgxvector "github.com/pgvector/pgvector-go/pgx"

	"github.com/mvaleriani/elysia/internal/embedding"
	"github.com/mvaleriani/elysia/internal/record"
)

// PostgresStore is the shared backend: multiple instances sync their
// journals into one of these. pgvector ranks similarity in the database.
type PostgresStore struct {
	pool       *pgxpool.Pool
	embedder   embedding.Embedder
	collection string
}

func NewPostgresStore(ctx context.Context, databaseURL, collection string, embedder embedding.Embedder) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse postgres url: %w", err)
	}
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvector.RegisterTypes(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := initSchema(ctx, pool, embedder.Dimension()); err != nil {
		pool.Close()
		return nil, err
	}
	return &PostgresStore{pool: pool, embedder: embedder, collection: collection}, nil
}

func initSchema(ctx context.Context, pool *pgxpool.Pool, dim int) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector;`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS records (
			id         TEXT PRIMARY KEY,
			collection TEXT NOT NULL,
			kind       TEXT NOT NULL,
			speaker    TEXT NOT NULL,
			turn_id    TEXT NOT NULL DEFAULT '',
			ts         DOUBLE PRECISION NOT NULL,
			content    TEXT NOT NULL,
			hash       TEXT NOT NULL,
			seq        BIGSERIAL,
			embedding  vector(%d) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`, dim),
		`CREATE INDEX IF NOT EXISTS idx_records_collection_seq ON records (collection, seq);`,
		`CREATE INDEX IF NOT EXISTS idx_records_collection_hash ON records (collection, hash);`,
	}
	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema failed on %q: %w", stmt, err)
		}
	}
	return nil
}

func (s *PostgresStore) AddTurn(ctx context.Context, userText, assistantText string) ([]record.Record, error) {
	return addTurn(ctx, s, userText, assistantText)
}

func (s *PostgresStore) AddSystemNote(ctx context.Context, text string) (record.Record, error) {
	return addSystemNote(ctx, s, text)
}

func (s *PostgresStore) Upsert(ctx context.Context, rec record.Record) error {
	if rec.Hash == "" {
		rec.Hash = record.Hash(rec)
	}
	vec, err := s.embedder.Embed(ctx, rec.Text)
	if err != nil {
		return fmt.Errorf("embed record: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO records (id, collection, kind, speaker, turn_id, ts, content, hash, embedding)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (id) DO NOTHING`,
		rec.StoreID(), s.collection, string(rec.Kind), string(rec.Speaker),
		rec.TurnID, rec.TS, rec.Text, rec.Hash, pgvector.NewVector(toFloat32(vec)),
	)
	if err != nil {
		return fmt.Errorf("upsert record: %w", err)
	}
	return nil
}

func (s *PostgresStore) Query(ctx context.Context, text string, limit int) ([]string, error) {
	limit = normalizeLimit(limit)
	qvec, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT content FROM records
		 WHERE collection = $1
		 ORDER BY embedding <=> $2, seq
		 LIMIT $3`,
		s.collection, pgvector.NewVector(toFloat32(qvec)), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	out := make([]string, 0, limit)
	for rows.Next() {
		var content string
		if err := rows.Scan(&content); err != nil {
			return nil, fmt.Errorf("scan record row: %w", err)
		}
		out = append(out, content)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate record rows: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM records WHERE collection = $1`, s.collection,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func toFloat32(vec []float64) []float32 {
	out := make([]float32, len(vec))
	for i, v := range vec {
		out[i] = float32(v)
	}
	return out
}
