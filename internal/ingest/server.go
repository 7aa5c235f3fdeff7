// Package ingest exposes the sync endpoint that merges journal batches
// produced by remote Elysia instances into a shared memory store.
package ingest

import (
	"bufio"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mvaleriani/elysia/internal/memory"
	"github.com/mvaleriani/elysia/internal/observability"
	"github.com/mvaleriani/elysia/internal/record"
)

// maxLineBytes bounds one NDJSON line during batch scans.
const maxLineBytes = 4 << 20

// Config holds the server's deployment parameters.
type Config struct {
	AuthToken    string
	MaxBodyBytes int64
	RateLimit    float64
	RateBurst    int
}

// Server handles batch imports. Requests are processed independently;
// the store serializes concurrent writes, so parallel batches from
// different producers cannot corrupt it.
type Server struct {
	cfg     Config
	store   memory.Store
	metrics *observability.Metrics
	hub     *Hub
	limiter *rateLimiter
}

func New(cfg Config, store memory.Store, metrics *observability.Metrics) *Server {
	return &Server{
		cfg:     cfg,
		store:   store,
		metrics: metrics,
		hub:     NewHub(metrics),
		limiter: newRateLimiter(cfg.RateLimit, cfg.RateBurst),
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		observability.MetricsHandler().ServeHTTP(w, r)
	})
	r.Get("/ws/events", s.hub.HandleWS)
	r.With(s.limiter.middleware).Post("/import-ndjson", s.handleImport)
	return r
}

// Hub returns the ingest event broadcaster, exposed so the owning process
// can shut it down.
func (s *Server) Hub() *Hub { return s.hub }

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if _, err := s.store.Count(r.Context()); err != nil {
		respondJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "store unavailable"})
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"status": "ready"})
}

// handleImport merges one NDJSON batch. Authentication happens before any
// line is touched; after that, every line is handled independently and the
// only failure surface for individual records is a lower ingested count.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		s.metrics.AuthFailures.Inc()
		respondJSON(w, http.StatusUnauthorized, map[string]any{"error": "bad auth"})
		return
	}

	body, err := s.batchBody(r)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]any{"error": "unreadable body"})
		return
	}
	defer body.Close()

	summary := s.ingestBatch(r, body)
	s.metrics.IngestBatches.Inc()
	s.metrics.IngestBatchSize.Observe(float64(summary.Ingested))
	s.hub.Broadcast(summary)

	respondJSON(w, http.StatusOK, map[string]any{"ingested": summary.Ingested})
}

func (s *Server) authorized(r *http.Request) bool {
	got := r.Header.Get("X-Auth")
	if got == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(s.cfg.AuthToken)) == 1
}

// batchBody accepts either a multipart upload with a "file" field or the
// raw NDJSON request body, both bounded by MaxBodyBytes.
func (s *Server) batchBody(r *http.Request) (io.ReadCloser, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, s.cfg.MaxBodyBytes)

	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "multipart/form-data") {
		if err := r.ParseMultipartForm(s.cfg.MaxBodyBytes); err != nil {
			return nil, err
		}
		f, _, err := r.FormFile("file")
		if err != nil {
			return nil, err
		}
		return f, nil
	}
	return r.Body, nil
}

func (s *Server) ingestBatch(r *http.Request, body io.Reader) BatchSummary {
	var summary BatchSummary
	seen := make(map[string]struct{})

	reader := bufio.NewReaderSize(body, 64*1024)
	for {
		raw, oversized, err := nextLine(reader)
		if oversized {
			summary.skip(s.metrics, "oversized")
		} else if line := strings.TrimSpace(string(raw)); line != "" {
			s.ingestLine(r, line, seen, &summary)
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				// MaxBytesReader cuts truncated uploads off here; whatever
				// landed before the cut still counts.
				log.Printf("ingest: batch scan stopped: %v", err)
			}
			return summary
		}
	}
}

// nextLine reads one newline-terminated line. A line longer than
// maxLineBytes is drained and flagged oversized so the lines after it
// still process.
func nextLine(r *bufio.Reader) ([]byte, bool, error) {
	var buf []byte
	for {
		frag, err := r.ReadSlice('\n')
		buf = append(buf, frag...)
		switch {
		case err == nil, errors.Is(err, io.EOF):
			return buf, false, err
		case errors.Is(err, bufio.ErrBufferFull):
			if len(buf) <= maxLineBytes {
				continue
			}
			for {
				if _, err := r.ReadSlice('\n'); !errors.Is(err, bufio.ErrBufferFull) {
					return nil, true, err
				}
			}
		default:
			return buf, false, err
		}
	}
}

func (s *Server) ingestLine(r *http.Request, line string, seen map[string]struct{}, summary *BatchSummary) {
	var rec record.Record
	if err := json.Unmarshal([]byte(line), &rec); err != nil {
		summary.skip(s.metrics, "malformed")
		return
	}
	if rec.Hash == "" {
		summary.skip(s.metrics, "no_hash")
		return
	}
	if _, dup := seen[rec.Hash]; dup {
		summary.skip(s.metrics, "duplicate")
		return
	}
	seen[rec.Hash] = struct{}{}

	if err := s.store.Upsert(r.Context(), rec); err != nil {
		// One bad record must not abort the batch.
		log.Printf("ingest: upsert failed for %s: %v", rec.StoreID(), err)
		summary.skip(s.metrics, "store_error")
		return
	}
	summary.Ingested++
	s.metrics.IngestedRecords.Inc()
}

// BatchSummary describes one processed batch, both for the HTTP response
// and for WS observers.
type BatchSummary struct {
	Ingested int            `json:"ingested"`
	Skipped  map[string]int `json:"skipped,omitempty"`
}

func (b *BatchSummary) skip(m *observability.Metrics, reason string) {
	if b.Skipped == nil {
		b.Skipped = make(map[string]int)
	}
	b.Skipped[reason]++
	m.SkippedRecords.WithLabelValues(reason).Inc()
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
