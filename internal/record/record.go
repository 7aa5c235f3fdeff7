// Package record defines the unit of conversational memory and its
// canonical content hash. Records are what the journal persists and the
// memory store indexes; the hash is the global dedup key shared by every
// Elysia instance that syncs into the same store.
package record

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Kind distinguishes conversational turns from internal system notes.
type Kind string

const (
	KindTurn   Kind = "turn"
	KindSystem Kind = "system"
)

// Speaker identifies which side of the conversation produced a record.
type Speaker string

const (
	SpeakerUser      Speaker = "user"
	SpeakerAssistant Speaker = "assistant"
	SpeakerSystem    Speaker = "system"
)

// Record is one atomic unit of memory: a single side of a turn, or a
// system note. The wire form is one JSON object per journal line.
type Record struct {
	Kind    Kind    `json:"type"`
	TS      float64 `json:"ts"`
	TurnID  string  `json:"turn_id,omitempty"`
	Speaker Speaker `json:"speaker"`
	Text    string  `json:"text"`
	Hash    string  `json:"hash,omitempty"`
}

// NewTurn builds the two records of one user/assistant exchange. Both share
// a fresh turn ID and the same creation timestamp; the user record comes
// first. Hashes are attached immediately so store and journal see identical
// payloads.
func NewTurn(userText, assistantText string) []Record {
	turnID := uuid.NewString()
	ts := nowUnix()
	recs := []Record{
		{Kind: KindTurn, TS: ts, TurnID: turnID, Speaker: SpeakerUser, Text: userText},
		{Kind: KindTurn, TS: ts, TurnID: turnID, Speaker: SpeakerAssistant, Text: assistantText},
	}
	for i := range recs {
		recs[i].Hash = Hash(recs[i])
	}
	return recs
}

// NewSystemNote builds a system record. System notes carry no turn ID on the
// wire; consumers that need one synthesize it from the timestamp.
func NewSystemNote(text string) Record {
	r := Record{Kind: KindSystem, TS: nowUnix(), Speaker: SpeakerSystem, Text: text}
	r.Hash = Hash(r)
	return r
}

// StoreID derives the memory store identifier for a record. It mixes the
// speaker and turn ID with a prefix of the content hash so re-ingesting the
// same record always lands on the same ID, making upserts idempotent.
func (r Record) StoreID() string {
	tid := r.TurnID
	if tid == "" {
		tid = fmt.Sprintf("sys-%d", int64(r.TS))
	}
	h := r.Hash
	if h == "" {
		h = Hash(r)
	}
	if len(h) > 16 {
		h = h[:16]
	}
	return fmt.Sprintf("%s_%s_%s", r.Speaker, tid, h)
}

func nowUnix() float64 {
	return float64(time.Now().UnixNano()) / float64(time.Second)
}
