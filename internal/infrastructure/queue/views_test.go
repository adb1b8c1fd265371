package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type countingRecorder struct {
	mu     sync.Mutex
	counts map[string]int
	fail   bool
}

func (r *countingRecorder) RecordView(_ context.Context, carID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errors.New("store down")
	}
	if r.counts == nil {
		r.counts = map[string]int{}
	}
	r.counts[carID]++
	return nil
}

type slowRecorder struct {
	countingRecorder
	delay time.Duration
}

func (r *slowRecorder) RecordView(ctx context.Context, carID string) error {
	time.Sleep(r.delay)
	return r.countingRecorder.RecordView(ctx, carID)
}

func TestViewDispatcher_RecordsEveryView(t *testing.T) {
	rec := &countingRecorder{}
	d := NewViewDispatcher(3, rec, zerolog.Nop())
	d.Start(context.Background())

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := "car-a"
			if i%2 == 1 {
				id = "car-b"
			}
			if err := d.Enqueue(context.Background(), id); err != nil {
				t.Errorf("enqueue: %v", err)
			}
		}(i)
	}
	wg.Wait()
	d.Stop()

	if rec.counts["car-a"] != 50 || rec.counts["car-b"] != 50 {
		t.Fatalf("expected 50 views per car, got %v", rec.counts)
	}
}

func TestViewDispatcher_OverflowIsRecordedByCaller(t *testing.T) {
	const views = 1000
	rec := &slowRecorder{delay: time.Millisecond}
	d := NewViewDispatcher(0, rec, zerolog.Nop())
	d.Start(context.Background())

	var wg sync.WaitGroup
	for i := 0; i < views; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := d.Enqueue(context.Background(), "car-a"); err != nil {
				t.Errorf("enqueue: %v", err)
			}
		}()
	}
	wg.Wait()
	d.Stop()

	if got := rec.counts["car-a"]; got != views {
		t.Fatalf("counter ended at %d, want %d", got, views)
	}
}

func TestViewDispatcher_FullWorkerRecordsInline(t *testing.T) {
	rec := &countingRecorder{}
	overflow := 0
	d := NewViewDispatcher(1, rec, zerolog.Nop())
	d.OnOverflow = func(string) { overflow++ }

	// Workers not started, so the buffer fills up.
	for i := 0; i < channelBuffer+5; i++ {
		if err := d.Enqueue(context.Background(), "car-a"); err != nil {
			t.Fatalf("enqueue %d: %v", i, err)
		}
	}
	if overflow != 5 || rec.counts["car-a"] != 5 {
		t.Fatalf("expected 5 inline views, got overflow=%d recorded=%d", overflow, rec.counts["car-a"])
	}

	d.Start(context.Background())
	d.Stop()
	if got := rec.counts["car-a"]; got != channelBuffer+5 {
		t.Fatalf("recorded %d views, want %d", got, channelBuffer+5)
	}
}

func TestViewDispatcher_EnqueueAfterStopRecordsInline(t *testing.T) {
	rec := &countingRecorder{}
	d := NewViewDispatcher(1, rec, zerolog.Nop())
	d.Start(context.Background())
	d.Stop()
	d.Stop()

	if err := d.Enqueue(context.Background(), "car-a"); err != nil {
		t.Fatalf("enqueue after stop: %v", err)
	}
	if rec.counts["car-a"] != 1 {
		t.Fatalf("expected view recorded after stop, got %d", rec.counts["car-a"])
	}
}

func TestViewDispatcher_InlineErrorReturned(t *testing.T) {
	d := NewViewDispatcher(1, &countingRecorder{fail: true}, zerolog.Nop())
	d.Stop()
	if err := d.Enqueue(context.Background(), "car-a"); err == nil {
		t.Fatalf("expected the inline recorder error")
	}
}

func TestViewDispatcher_WorkerErrorsAreLogged(t *testing.T) {
	d := NewViewDispatcher(1, &countingRecorder{fail: true}, zerolog.Nop())
	d.Start(context.Background())
	if err := d.Enqueue(context.Background(), "car-a"); err != nil {
		t.Fatalf("queued view must not report worker errors: %v", err)
	}
	d.Stop()
}
