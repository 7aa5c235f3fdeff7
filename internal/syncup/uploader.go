// Package syncup replicates local journal files to a remote sync ingest
// service. Uploads are safe to repeat: the shared store dedupes by
// content-derived IDs, so a retried or re-watched file is a no-op.
package syncup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/mvaleriani/elysia/internal/journal"
)

// Config parameterizes the uploader.
type Config struct {
	JournalDir string
	SyncURL    string // base URL of the ingest service
	AuthToken  string
	Timeout    time.Duration
}

// Uploader posts journal files to the ingest endpoint.
type Uploader struct {
	cfg    Config
	client *http.Client
}

func New(cfg Config) *Uploader {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Uploader{cfg: cfg, client: &http.Client{Timeout: timeout}}
}

// UploadAll uploads every journal file in the directory in day order and
// returns the total ingested count. A failing file is logged and skipped;
// durability already happened locally, replication can always retry.
func (u *Uploader) UploadAll(ctx context.Context) (int, error) {
	paths, err := journal.Files(u.cfg.JournalDir)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, path := range paths {
		n, err := u.UploadFile(ctx, path)
		if err != nil {
			log.Printf("syncup: upload %s failed: %v", filepath.Base(path), err)
			continue
		}
		log.Printf("syncup: %s ingested=%d", filepath.Base(path), n)
		total += n
	}
	return total, nil
}

// UploadFile posts one journal file as a multipart upload and returns the
// server's ingested count.
func (u *Uploader) UploadFile(ctx context.Context, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open journal %s: %w", path, err)
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return 0, fmt.Errorf("build upload: %w", err)
	}
	if _, err := io.Copy(fw, f); err != nil {
		return 0, fmt.Errorf("read journal %s: %w", path, err)
	}
	if err := mw.Close(); err != nil {
		return 0, fmt.Errorf("finalize upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.cfg.SyncURL+"/import-ndjson", &body)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("X-Auth", u.cfg.AuthToken)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	res, err := u.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("post batch: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("sync server returned %s", res.Status)
	}
	var out struct {
		Ingested int `json:"ingested"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("decode response: %w", err)
	}
	return out.Ingested, nil
}
