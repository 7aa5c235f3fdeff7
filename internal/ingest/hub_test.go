package ingest

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mvaleriani/elysia/internal/observability"
)

func TestWSObserversReceiveBatchSummaries(t *testing.T) {
	store := newStore()
	ts := newTestServer(t, store, Config{})

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/events"
	conn, res, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("ws dial error = %v", err)
	}
	defer conn.Close()
	if res != nil && res.Body != nil {
		res.Body.Close()
	}

	// Give the server a moment to register the observer.
	time.Sleep(50 * time.Millisecond)

	if res, _ := postBatch(t, ts.URL, "test-token", batchLines("hello observer")); res.StatusCode != http.StatusOK {
		t.Fatalf("batch status = %d, want 200", res.StatusCode)
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var summary BatchSummary
	if err := conn.ReadJSON(&summary); err != nil {
		t.Fatalf("read summary: %v", err)
	}
	if summary.Ingested != 1 {
		t.Fatalf("summary.Ingested = %d, want 1", summary.Ingested)
	}
}

// Batches arrive on concurrent handler goroutines, so Broadcast must be
// safe to call concurrently against the same observer connection.
func TestBroadcastConcurrent(t *testing.T) {
	metrics := observability.NewMetrics(fmt.Sprintf("test_ingest_%d", metricsSeq.Add(1)))
	hub := NewHub(metrics)
	defer hub.Close()

	ts := httptest.NewServer(http.HandlerFunc(hub.HandleWS))
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, res, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("ws dial error = %v", err)
	}
	defer conn.Close()
	if res != nil && res.Body != nil {
		res.Body.Close()
	}

	received := make(chan int, 1)
	go func() {
		n := 0
		for {
			var summary BatchSummary
			if err := conn.ReadJSON(&summary); err != nil {
				received <- n
				return
			}
			n++
		}
	}()

	// Give the server a moment to register the observer.
	time.Sleep(50 * time.Millisecond)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				hub.Broadcast(BatchSummary{Ingested: 1})
			}
		}()
	}
	wg.Wait()

	hub.Close()
	select {
	case n := <-received:
		if n == 0 {
			t.Fatal("observer received no summaries")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("observer reader did not finish")
	}
}
