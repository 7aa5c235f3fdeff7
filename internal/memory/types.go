// Package memory indexes conversational records for semantic recall. The
// store is the sole mutable index; the journal remains the durable source
// of truth and the store can be rebuilt from it.
package memory

import (
	"context"
	"fmt"

	"github.com/mvaleriani/elysia/internal/record"
)

// Store persists records and retrieves the most semantically similar ones.
// All mutation goes through AddTurn/AddSystemNote/Upsert, never direct
// manipulation of the backing storage. Implementations are safe for
// concurrent callers.
type Store interface {
	// AddTurn creates the two records of an exchange (user first) under a
	// fresh turn ID and inserts both. The created records are returned so
	// the owning loop can journal the exact same payloads; the store has
	// no journal dependency.
	AddTurn(ctx context.Context, userText, assistantText string) ([]record.Record, error)

	// AddSystemNote creates and inserts one system record.
	AddSystemNote(ctx context.Context, text string) (record.Record, error)

	// Query returns up to limit stored texts ranked most similar first.
	// limit <= 0 means 5; an empty store yields an empty slice, not an
	// error. Ties rank by insertion order, oldest first.
	Query(ctx context.Context, text string, limit int) ([]string, error)

	// Upsert inserts a record under its content-derived store ID. A record
	// whose ID already exists is a no-op, so re-ingesting the same batch
	// is harmless.
	Upsert(ctx context.Context, rec record.Record) error

	// Count reports the number of stored records.
	Count(ctx context.Context) (int, error)

	Close() error
}

// DefaultQueryLimit is used when Query is called with limit <= 0.
const DefaultQueryLimit = 5

type upserter interface {
	Upsert(ctx context.Context, rec record.Record) error
}

// addTurn and addSystemNote are shared across backends: every backend
// builds records the same way and funnels them through its own Upsert.
func addTurn(ctx context.Context, s upserter, userText, assistantText string) ([]record.Record, error) {
	recs := record.NewTurn(userText, assistantText)
	for _, r := range recs {
		if err := s.Upsert(ctx, r); err != nil {
			return nil, fmt.Errorf("insert %s record: %w", r.Speaker, err)
		}
	}
	return recs, nil
}

func addSystemNote(ctx context.Context, s upserter, text string) (record.Record, error) {
	r := record.NewSystemNote(text)
	if err := s.Upsert(ctx, r); err != nil {
		return record.Record{}, fmt.Errorf("insert system note: %w", err)
	}
	return r, nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultQueryLimit
	}
	return limit
}
