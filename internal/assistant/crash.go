package assistant

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"
)

// WriteCrashNote records a fatal error so the next run can remember it
// happened. Best effort: a failure to write is reported but nothing more
// can be done at that point.
func WriteCrashNote(path string, cause error) error {
	note := fmt.Sprintf("crashed at %s: %v\n", time.Now().Format(time.RFC3339), cause)
	if err := os.WriteFile(path, []byte(note), 0o644); err != nil {
		return fmt.Errorf("write crash note %s: %w", path, err)
	}
	return nil
}

// recoverCrashNote ingests a leftover crash note as a system note and
// removes the file. Returns whether a note was found.
func (a *Assistant) recoverCrashNote(ctx context.Context) (bool, error) {
	data, err := os.ReadFile(a.crashInfoPath)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read crash note %s: %w", a.crashInfoPath, err)
	}

	text := strings.TrimSpace(string(data))
	if text != "" {
		rec, err := a.store.AddSystemNote(ctx, "recovered crash note: "+text)
		if err != nil {
			return false, fmt.Errorf("store crash note: %w", err)
		}
		a.metrics.SystemNotes.Inc()
		if err := a.journal.Append(rec); err != nil {
			a.metrics.JournalErrors.Inc()
			return false, fmt.Errorf("journal crash note: %w", err)
		}
	}

	if err := os.Remove(a.crashInfoPath); err != nil {
		return false, fmt.Errorf("remove crash note %s: %w", a.crashInfoPath, err)
	}
	return true, nil
}
