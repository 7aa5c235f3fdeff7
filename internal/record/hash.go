package record

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Canonical returns the canonical encoding of a record's semantic fields:
// a compact JSON object with keys in sorted order, UTF-8, excluding the
// hash field itself. encoding/json emits map keys sorted, which gives the
// stable byte form the digest needs.
func Canonical(r Record) []byte {
	fields := map[string]any{
		"type":    string(r.Kind),
		"ts":      r.TS,
		"speaker": string(r.Speaker),
		"text":    r.Text,
	}
	if r.TurnID != "" {
		fields["turn_id"] = r.TurnID
	}
	// Marshal of a map[string]any with JSON-safe values cannot fail.
	b, _ := json.Marshal(fields)
	return b
}

// Hash returns the lowercase hex SHA-256 digest of the canonical encoding.
// Identical semantic fields always produce identical digests; the digest is
// the record's identity for deduplication.
func Hash(r Record) string {
	sum := sha256.Sum256(Canonical(r))
	return hex.EncodeToString(sum[:])
}
