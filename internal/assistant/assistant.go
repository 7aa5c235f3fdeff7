// Package assistant runs the conversational loop: listen, recall, respond,
// speak, persist. The store and the journal both receive every exchange;
// the journal is the durable record, the store is the searchable index.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/mvaleriani/elysia/internal/brain"
	"github.com/mvaleriani/elysia/internal/journal"
	"github.com/mvaleriani/elysia/internal/memory"
	"github.com/mvaleriani/elysia/internal/observability"
	"github.com/mvaleriani/elysia/internal/persona"
	"github.com/mvaleriani/elysia/internal/voice"
)

// Config carries the loop's behavioural knobs.
type Config struct {
	Persona        persona.Persona
	SaveThreshold  int
	ResponseLogDir string
	CrashInfoPath  string
	QueryLimit     int
}

// Assistant owns one conversational session.
type Assistant struct {
	persona        persona.Persona
	saveThreshold  int
	responseLogDir string
	crashInfoPath  string
	queryLimit     int

	voice      voice.Provider
	brain      brain.Adapter
	store      memory.Store
	journal    *journal.Writer
	summarizer Summarizer
	metrics    *observability.Metrics

	now func() time.Time
}

// New wires an assistant. The summarizer chain defaults to model summary
// with truncation as the terminal fallback.
func New(cfg Config, v voice.Provider, b brain.Adapter, store memory.Store, jw *journal.Writer, metrics *observability.Metrics) *Assistant {
	if cfg.SaveThreshold <= 0 {
		cfg.SaveThreshold = 800
	}
	if cfg.QueryLimit <= 0 {
		cfg.QueryLimit = memory.DefaultQueryLimit
	}
	return &Assistant{
		persona:        cfg.Persona,
		saveThreshold:  cfg.SaveThreshold,
		responseLogDir: cfg.ResponseLogDir,
		crashInfoPath:  cfg.CrashInfoPath,
		queryLimit:     cfg.QueryLimit,
		voice:          v,
		brain:          b,
		store:          store,
		journal:        jw,
		summarizer:     Chain{NewBrainSummarizer(b), NewTruncateSummarizer(240)},
		metrics:        metrics,
		now:            time.Now,
	}
}

// Run drives the loop until the context is cancelled or the voice input
// ends. A non-nil return means persistence failed mid-session; the caller
// should leave a crash note so the failure is remembered next start.
func (a *Assistant) Run(ctx context.Context) error {
	if a.crashInfoPath != "" {
		found, err := a.recoverCrashNote(ctx)
		if err != nil {
			return err
		}
		if found {
			log.Printf("assistant: recovered crash note from previous session")
		}
	}

	if err := a.voice.Speak(ctx, a.persona.Greeting); err != nil {
		log.Printf("assistant: greeting failed: %v", err)
	}

	for {
		if ctx.Err() != nil {
			return a.sayGoodbye()
		}

		input, err := a.voice.Listen(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return a.sayGoodbye()
			}
			log.Printf("assistant: listen failed: %v", err)
			continue
		}
		if input == "" {
			continue
		}

		if err := a.handleTurn(ctx, input); err != nil {
			return err
		}
	}
}

// handleTurn processes one exchange. Recall and model failures degrade the
// turn; persistence failures end the session.
func (a *Assistant) handleTurn(ctx context.Context, input string) error {
	start := a.now()
	memories, err := a.store.Query(ctx, input, a.queryLimit)
	if err != nil {
		log.Printf("assistant: memory query failed: %v", err)
		memories = nil
	}
	a.metrics.ObserveQueryLatency(time.Since(start))

	resp, err := a.brain.Respond(ctx, brain.Request{
		Input:         input,
		System:        a.persona.Prompt,
		MemoryContext: memories,
	})
	if err != nil {
		code := "request"
		if errors.Is(err, brain.ErrCircuitOpen) {
			code = "circuit_open"
		}
		a.metrics.BrainErrors.WithLabelValues(code).Inc()
		log.Printf("assistant: brain failed: %v", err)
		if err := a.voice.Speak(ctx, "I can't reach my reasoning right now."); err != nil {
			log.Printf("assistant: speak failed: %v", err)
		}
		return nil
	}

	spoken := resp.Text
	if len(resp.Text) >= a.saveThreshold {
		spoken = a.saveLongResponse(ctx, resp.Text)
	}
	if err := a.voice.Speak(ctx, spoken); err != nil {
		log.Printf("assistant: speak failed: %v", err)
	}

	recs, err := a.store.AddTurn(ctx, input, resp.Text)
	if err != nil {
		return fmt.Errorf("persist turn: %w", err)
	}
	a.metrics.TurnsPersisted.Inc()
	for _, rec := range recs {
		if err := a.journal.Append(rec); err != nil {
			a.metrics.JournalErrors.Inc()
			return fmt.Errorf("journal turn: %w", err)
		}
	}
	return nil
}

// saveLongResponse writes the full text to the response log dir, notes the
// location in memory, and returns the spoken summary. Failures fall back to
// speaking a truncated form; the full text is still persisted with the turn.
func (a *Assistant) saveLongResponse(ctx context.Context, text string) string {
	path, err := a.writeResponseLog(text)
	if err != nil {
		log.Printf("assistant: response log failed: %v", err)
	} else {
		rec, err := a.store.AddSystemNote(ctx, "long response saved to "+path)
		if err != nil {
			log.Printf("assistant: system note failed: %v", err)
		} else {
			a.metrics.SystemNotes.Inc()
			if err := a.journal.Append(rec); err != nil {
				a.metrics.JournalErrors.Inc()
				log.Printf("assistant: journal system note failed: %v", err)
			}
		}
	}

	summary, err := a.summarizer.Summarize(ctx, text)
	if err != nil {
		log.Printf("assistant: summary failed: %v", err)
		return text
	}
	return summary
}

func (a *Assistant) writeResponseLog(text string) (string, error) {
	if a.responseLogDir == "" {
		return "", errors.New("response log dir not configured")
	}
	if err := os.MkdirAll(a.responseLogDir, 0o755); err != nil {
		return "", fmt.Errorf("create response log dir: %w", err)
	}
	path := filepath.Join(a.responseLogDir, fmt.Sprintf("response_%d.txt", a.now().UnixNano()))
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return "", fmt.Errorf("write response log: %w", err)
	}
	return path, nil
}

func (a *Assistant) sayGoodbye() error {
	// Speak with a fresh context so a cancelled loop context still lets
	// the goodbye line out.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.voice.Speak(ctx, a.persona.Goodbye); err != nil {
		log.Printf("assistant: goodbye failed: %v", err)
	}
	return nil
}
