package queue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"clinic-booking/internal/infrastructure/metrics"
	"clinic-booking/internal/service"

	"github.com/sirupsen/logrus"
)

var (
	ErrQueueStopped = errors.New("notification queue is stopped")
	ErrQueueFull    = errors.New("notification queue is full")
)

const defaultHandleTimeout = 30 * time.Second

// MemoryQueue is an in-process notification queue: a buffered channel drained
// by a fixed pool of workers. Publish never blocks.
type MemoryQueue struct {
	handler       service.NotificationHandler
	log           *logrus.Logger
	events        chan service.NotificationEvent
	workers       int
	handleTimeout time.Duration

	// mu orders Publish against Stop so no send happens after shutdown.
	mu       sync.RWMutex
	stopChan chan struct{}
	wg       sync.WaitGroup
	started  atomic.Bool
	stopped  atomic.Bool
}

func NewMemoryQueue(handler service.NotificationHandler, log *logrus.Logger, workers, bufferSize int) *MemoryQueue {
	if workers <= 0 {
		workers = 1
	}
	if bufferSize <= 0 {
		bufferSize = 1
	}
	return &MemoryQueue{
		handler:       handler,
		log:           log,
		events:        make(chan service.NotificationEvent, bufferSize),
		workers:       workers,
		handleTimeout: defaultHandleTimeout,
		stopChan:      make(chan struct{}),
	}
}

// Start launches the workers. Calling it twice is a no-op.
func (q *MemoryQueue) Start() error {
	if !q.started.CompareAndSwap(false, true) {
		return nil
	}
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(i)
	}
	q.log.WithField("workers", q.workers).Info("Notification queue started")
	return nil
}

// Stop rejects new events, lets the workers drain what is buffered and waits
// for them. Safe to call multiple times.
func (q *MemoryQueue) Stop() {
	q.mu.Lock()
	if !q.stopped.CompareAndSwap(false, true) {
		q.mu.Unlock()
		return
	}
	close(q.stopChan)
	q.mu.Unlock()

	q.wg.Wait()
	q.log.Info("Notification queue stopped")
}

func (q *MemoryQueue) Publish(ctx context.Context, event service.NotificationEvent) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.stopped.Load() {
		return ErrQueueStopped
	}

	select {
	case q.events <- event:
		return nil
	default:
		return ErrQueueFull
	}
}

func (q *MemoryQueue) worker(id int) {
	defer q.wg.Done()

	for {
		select {
		case event := <-q.events:
			q.handle(id, event)
		case <-q.stopChan:
			q.drain(id)
			return
		}
	}
}

func (q *MemoryQueue) drain(id int) {
	for {
		select {
		case event := <-q.events:
			q.handle(id, event)
		default:
			return
		}
	}
}

func (q *MemoryQueue) handle(workerID int, event service.NotificationEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), q.handleTimeout)
	defer cancel()

	if err := q.handler.Handle(ctx, event); err != nil {
		metrics.IncNotificationFailure("handle")
		q.log.WithFields(logrus.Fields{
			"worker":     workerID,
			"booking_id": event.BookingID,
			"event":      event.Type,
		}).Warnf("Failed to handle notification event: %+v", err)
	}
}
