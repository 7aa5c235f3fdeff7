package syncup

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Run drives the uploader. With neither an interval nor watch mode it does
// a single pass and returns. Watch mode re-uploads whenever journal files
// change; since ingestion is idempotent, re-sending a whole file after a
// single appended line is merely wasteful, not wrong.
func (u *Uploader) Run(ctx context.Context, interval time.Duration, watch bool) error {
	if _, err := u.UploadAll(ctx); err != nil {
		return err
	}
	if interval <= 0 && !watch {
		return nil
	}

	var tick <-chan time.Time
	if interval > 0 {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	var events <-chan fsnotify.Event
	if watch {
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return err
		}
		defer watcher.Close()
		if err := watcher.Add(u.cfg.JournalDir); err != nil {
			return err
		}
		events = watcher.Events
		go func() {
			for err := range watcher.Errors {
				log.Printf("syncup: watcher error: %v", err)
			}
		}()
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tick:
			if _, err := u.UploadAll(ctx); err != nil {
				log.Printf("syncup: scheduled upload failed: %v", err)
			}
		case evt, ok := <-events:
			if !ok {
				return nil
			}
			if evt.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if !strings.HasSuffix(evt.Name, ".ndjson") {
				continue
			}
			if _, err := u.UploadAll(ctx); err != nil {
				log.Printf("syncup: triggered upload failed: %v", err)
			}
		}
	}
}
