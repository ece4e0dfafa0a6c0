package audit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type captureSink struct {
	mu      sync.Mutex
	entries []Entry
	err     error
}

func (c *captureSink) Append(ctx context.Context, e Entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.entries = append(c.entries, e)
	return nil
}

func (c *captureSink) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func TestRecorderPersistsAsync(t *testing.T) {
	sink := &captureSink{}
	var hooked []Entry
	var mu sync.Mutex
	rec := NewRecorder(sink, 8, func(e Entry) {
		mu.Lock()
		hooked = append(hooked, e)
		mu.Unlock()
	})
	ctx, cancel := context.WithCancel(context.Background())
	go rec.Run(ctx)

	if ok := rec.Record(Entry{ID: "req-1", Route: "/task/tasks", Status: 200}); !ok {
		t.Fatal("record should enqueue")
	}
	waitFor(t, func() bool { return sink.count() == 1 })
	mu.Lock()
	hookCount := len(hooked)
	mu.Unlock()
	if hookCount != 1 {
		t.Fatalf("expected hook to fire once, got %d", hookCount)
	}

	cancel()
	<-rec.Done()
}

func TestRecorderSwallowsWriteFailures(t *testing.T) {
	sink := &captureSink{err: errors.New("store unreachable")}
	rec := NewRecorder(sink, 8)
	ctx, cancel := context.WithCancel(context.Background())
	go rec.Run(ctx)

	if ok := rec.Record(Entry{ID: "req-1"}); !ok {
		t.Fatal("record must accept the entry even when the sink is failing")
	}
	time.Sleep(20 * time.Millisecond)
	cancel()
	<-rec.Done()
}

func TestRecorderDropsWhenFull(t *testing.T) {
	rec := NewRecorder(&captureSink{}, 1)
	// Worker not running: first fills the buffer, second must drop.
	if ok := rec.Record(Entry{ID: "a"}); !ok {
		t.Fatal("first record should fit the buffer")
	}
	if ok := rec.Record(Entry{ID: "b"}); ok {
		t.Fatal("second record should be dropped, not block")
	}
}

func TestRecorderDrainsOnShutdown(t *testing.T) {
	sink := &captureSink{}
	rec := NewRecorder(sink, 16)
	for i := 0; i < 5; i++ {
		rec.Record(Entry{ID: "req"})
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	go rec.Run(ctx)
	<-rec.Done()
	if sink.count() != 5 {
		t.Fatalf("expected buffered entries drained on shutdown, got %d", sink.count())
	}
}
