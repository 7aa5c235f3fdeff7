package record

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestHashDeterministic(t *testing.T) {
	a := Record{Kind: KindTurn, TS: 1000.0, TurnID: "t1", Speaker: SpeakerUser, Text: "hi"}
	b := Record{Text: "hi", Speaker: SpeakerUser, TurnID: "t1", TS: 1000.0, Kind: KindTurn}

	ha, hb := Hash(a), Hash(b)
	if ha != hb {
		t.Fatalf("Hash(a) = %q, Hash(b) = %q, want equal", ha, hb)
	}
	if len(ha) != 64 {
		t.Fatalf("len(Hash) = %d, want 64", len(ha))
	}
	for _, c := range ha {
		if !strings.ContainsRune("0123456789abcdef", c) {
			t.Fatalf("Hash contains non-hex rune %q", c)
		}
	}
}

func TestHashIgnoresHashField(t *testing.T) {
	a := Record{Kind: KindTurn, TS: 1000.0, TurnID: "t1", Speaker: SpeakerUser, Text: "hi"}
	b := a
	b.Hash = "something-already-set"
	if Hash(a) != Hash(b) {
		t.Fatalf("hash must not be self-referential")
	}
}

func TestHashChangesWithContent(t *testing.T) {
	base := Record{Kind: KindTurn, TS: 1000.0, TurnID: "t1", Speaker: SpeakerUser, Text: "hi"}
	variants := []Record{
		{Kind: KindSystem, TS: 1000.0, TurnID: "t1", Speaker: SpeakerUser, Text: "hi"},
		{Kind: KindTurn, TS: 1001.0, TurnID: "t1", Speaker: SpeakerUser, Text: "hi"},
		{Kind: KindTurn, TS: 1000.0, TurnID: "t2", Speaker: SpeakerUser, Text: "hi"},
		{Kind: KindTurn, TS: 1000.0, TurnID: "t1", Speaker: SpeakerAssistant, Text: "hi"},
		{Kind: KindTurn, TS: 1000.0, TurnID: "t1", Speaker: SpeakerUser, Text: "hello"},
	}
	for i, v := range variants {
		if Hash(v) == Hash(base) {
			t.Fatalf("variant %d produced the same hash as base", i)
		}
	}
}

func TestCanonicalSortedAndCompact(t *testing.T) {
	r := Record{Kind: KindTurn, TS: 1000.0, TurnID: "t1", Speaker: SpeakerUser, Text: "hi"}
	canon := string(Canonical(r))

	order := []string{`"speaker"`, `"text"`, `"ts"`, `"turn_id"`, `"type"`}
	last := -1
	for _, key := range order {
		idx := strings.Index(canon, key)
		if idx < 0 {
			t.Fatalf("canonical form missing %s: %s", key, canon)
		}
		if idx < last {
			t.Fatalf("canonical keys not sorted: %s", canon)
		}
		last = idx
	}
	if strings.Contains(canon, `"hash"`) {
		t.Fatalf("canonical form must exclude hash: %s", canon)
	}
	if strings.Contains(canon, ": ") {
		t.Fatalf("canonical form must be compact: %s", canon)
	}
}

func TestCanonicalOmitsEmptyTurnID(t *testing.T) {
	r := NewSystemNote("reboot")
	if strings.Contains(string(Canonical(r)), "turn_id") {
		t.Fatalf("system note canonical form must omit turn_id: %s", Canonical(r))
	}
}

func TestNewTurn(t *testing.T) {
	recs := NewTurn("hi", "hello")
	if len(recs) != 2 {
		t.Fatalf("NewTurn produced %d records, want 2", len(recs))
	}
	if recs[0].Speaker != SpeakerUser || recs[1].Speaker != SpeakerAssistant {
		t.Fatalf("speakers = %q, %q, want user then assistant", recs[0].Speaker, recs[1].Speaker)
	}
	if recs[0].TurnID == "" || recs[0].TurnID != recs[1].TurnID {
		t.Fatalf("turn IDs = %q, %q, want one shared non-empty ID", recs[0].TurnID, recs[1].TurnID)
	}
	if recs[0].TS != recs[1].TS {
		t.Fatalf("timestamps differ within one turn: %f vs %f", recs[0].TS, recs[1].TS)
	}
	for i, r := range recs {
		if r.Hash != Hash(r) {
			t.Fatalf("record %d hash not attached correctly", i)
		}
	}
}

func TestStoreIDStableAndSynthesized(t *testing.T) {
	r := Record{Kind: KindTurn, TS: 1000.0, TurnID: "t1", Speaker: SpeakerUser, Text: "hi"}
	r.Hash = Hash(r)
	if r.StoreID() != r.StoreID() {
		t.Fatalf("StoreID must be deterministic")
	}
	if !strings.HasPrefix(r.StoreID(), "user_t1_") {
		t.Fatalf("StoreID = %q, want user_t1_ prefix", r.StoreID())
	}

	note := Record{Kind: KindSystem, TS: 1234.9, Speaker: SpeakerSystem, Text: "note"}
	note.Hash = Hash(note)
	if !strings.HasPrefix(note.StoreID(), "system_sys-1234_") {
		t.Fatalf("system StoreID = %q, want synthesized sys- turn id", note.StoreID())
	}
}

func TestWireRoundTrip(t *testing.T) {
	orig := NewSystemNote("saved response to disk")
	line, err := json.Marshal(orig)
	if err != nil {
		t.Fatalf("marshal error = %v", err)
	}
	var back Record
	if err := json.Unmarshal(line, &back); err != nil {
		t.Fatalf("unmarshal error = %v", err)
	}
	if back.Hash != orig.Hash {
		t.Fatalf("hash changed over the wire: %q vs %q", back.Hash, orig.Hash)
	}
	if Hash(back) != orig.Hash {
		t.Fatalf("recomputed hash %q != original %q", Hash(back), orig.Hash)
	}
}
