package queue

import (
	"context"
	"hash/fnv"
	"sync"

	"github.com/rs/zerolog"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Recorder persists one car view.
type Recorder interface {
	RecordView(ctx context.Context, carID string) error
}

// ViewDispatcher counts car views off the request path. Views of one car are
// always handled by the same worker.
type ViewDispatcher struct {
	workers  []chan string
	recorder Recorder
	log      zerolog.Logger
	wg       sync.WaitGroup

	mu     sync.RWMutex
	closed bool

	// OnOverflow is called when a view is recorded by the caller because its
	// worker is full or the dispatcher has stopped.
	OnOverflow func(carID string)
}

// NewViewDispatcher creates a dispatcher with numWorkers workers. If
// numWorkers <= 0, defaultWorkers is used.
func NewViewDispatcher(numWorkers int, recorder Recorder, log zerolog.Logger) *ViewDispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &ViewDispatcher{
		workers:  make([]chan string, numWorkers),
		recorder: recorder,
		log:      log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan string, channelBuffer)
	}
	return d
}

// Start launches the workers. Pending views are still recorded with ctx
// after Stop, so pass a context that outlives the HTTP server.
func (d *ViewDispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue schedules a view. When the worker for carID is full, or the
// dispatcher has stopped, the view is recorded synchronously with ctx, so an
// accepted view is never lost.
func (d *ViewDispatcher) Enqueue(ctx context.Context, carID string) error {
	d.mu.RLock()
	if !d.closed {
		select {
		case d.workers[d.shardIndex(carID)] <- carID:
			d.mu.RUnlock()
			return nil
		default:
		}
	}
	d.mu.RUnlock()

	if d.OnOverflow != nil {
		d.OnOverflow(carID)
	}
	return d.recorder.RecordView(ctx, carID)
}

// Stop closes the queues and waits until every accepted view is recorded.
func (d *ViewDispatcher) Stop() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		for _, ch := range d.workers {
			close(ch)
		}
	}
	d.mu.Unlock()
	d.wg.Wait()
}

func (d *ViewDispatcher) shardIndex(carID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(carID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *ViewDispatcher) runWorker(ctx context.Context, id int, ch <-chan string) {
	defer d.wg.Done()
	for carID := range ch {
		if err := d.recorder.RecordView(ctx, carID); err != nil {
			d.log.Warn().Err(err).
				Str("car_id", carID).
				Int("worker_id", id).
				Msg("failed to record car view")
		}
	}
}
