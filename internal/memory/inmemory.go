package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/mvaleriani/elysia/internal/embedding"
	"github.com/mvaleriani/elysia/internal/record"
)

// InMemoryStore is a non-persistent store for local/dev use and tests.
// It ranks exactly like the sqlite backend but keeps everything in a
// process-local slice.
type InMemoryStore struct {
	embedder embedding.Embedder
	mu       sync.RWMutex
	items    []inMemoryItem
	byID     map[string]struct{}
}

type inMemoryItem struct {
	id      string
	content string
	vec     []float64
}

func NewInMemoryStore(embedder embedding.Embedder) *InMemoryStore {
	return &InMemoryStore{embedder: embedder, byID: make(map[string]struct{})}
}

func (s *InMemoryStore) AddTurn(ctx context.Context, userText, assistantText string) ([]record.Record, error) {
	return addTurn(ctx, s, userText, assistantText)
}

func (s *InMemoryStore) AddSystemNote(ctx context.Context, text string) (record.Record, error) {
	return addSystemNote(ctx, s, text)
}

func (s *InMemoryStore) Upsert(ctx context.Context, rec record.Record) error {
	vec, err := s.embedder.Embed(ctx, rec.Text)
	if err != nil {
		return err
	}
	id := rec.StoreID()

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byID[id]; exists {
		return nil
	}
	s.byID[id] = struct{}{}
	s.items = append(s.items, inMemoryItem{id: id, content: rec.Text, vec: vec})
	return nil
}

func (s *InMemoryStore) Query(ctx context.Context, text string, limit int) ([]string, error) {
	limit = normalizeLimit(limit)
	qvec, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	type scored struct {
		content string
		score   float64
		seq     int
	}
	candidates := make([]scored, 0, len(s.items))
	for i, item := range s.items {
		candidates = append(candidates, scored{item.content, cosineSimilarity(qvec, item.vec), i})
	}
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

func (s *InMemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items), nil
}

func (s *InMemoryStore) Close() error { return nil }
