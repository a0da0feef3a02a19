// Package schedule queues crawl jobs for watched tickers and keeps at most one
// job per ticker queued or running at any time.
package schedule

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"stocknews-notifier/internal/observability/metrics"
)

// ErrSchedulerClosed is returned by Next once the scheduler is closed and drained.
var ErrSchedulerClosed = errors.New("scheduler closed")

// Scheduler is an unbounded FIFO of watch item ids with an in-flight set.
//
// An id enters the in-flight set on Enqueue and leaves it on MarkCompleted,
// so enqueuing an id that is queued or being processed is a no-op.
// Enqueue never blocks; any number of goroutines may produce.
type Scheduler struct {
	mu       sync.Mutex
	queue    []uuid.UUID
	inFlight map[uuid.UUID]struct{}
	closed   bool

	wake   chan struct{}
	done   chan struct{}
	logger *slog.Logger
}

func NewScheduler(logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		inFlight: make(map[uuid.UUID]struct{}),
		wake:     make(chan struct{}, 1),
		done:     make(chan struct{}),
		logger:   logger,
	}
}

// Enqueue queues id unless it is already queued or in progress.
// It reports whether a new job was queued.
func (s *Scheduler) Enqueue(id uuid.UUID) bool {
	s.mu.Lock()
	if _, ok := s.inFlight[id]; ok {
		s.mu.Unlock()
		s.logger.Debug("crawl already queued, skipping duplicate enqueue",
			slog.String("watch_id", id.String()))
		metrics.RecordEnqueue("duplicate")
		return false
	}
	s.inFlight[id] = struct{}{}

	if s.closed {
		// キューへの書き込み失敗: in-flight を巻き戻す
		delete(s.inFlight, id)
		s.mu.Unlock()
		s.logger.Warn("failed to enqueue crawl job",
			slog.String("watch_id", id.String()),
			slog.Any("error", ErrSchedulerClosed))
		metrics.RecordEnqueue("closed")
		return false
	}

	s.queue = append(s.queue, id)
	depth := len(s.queue)
	s.mu.Unlock()

	metrics.SetSchedulerQueueDepth(depth)
	metrics.RecordEnqueue("accepted")
	s.signal()
	return true
}

// MarkCompleted releases id so it can be enqueued again.
func (s *Scheduler) MarkCompleted(id uuid.UUID) {
	s.mu.Lock()
	delete(s.inFlight, id)
	s.mu.Unlock()
}

// Next blocks until an id is available and returns it in FIFO order.
// It returns ctx.Err() on cancellation and ErrSchedulerClosed once the
// scheduler is closed and every queued id has been handed out.
func (s *Scheduler) Next(ctx context.Context) (uuid.UUID, error) {
	for {
		s.mu.Lock()
		if len(s.queue) > 0 {
			id := s.queue[0]
			s.queue[0] = uuid.Nil
			s.queue = s.queue[1:]
			depth := len(s.queue)
			s.mu.Unlock()

			metrics.SetSchedulerQueueDepth(depth)
			if depth > 0 {
				s.signal()
			}
			return id, nil
		}
		if s.closed {
			s.mu.Unlock()
			return uuid.Nil, ErrSchedulerClosed
		}
		s.mu.Unlock()

		select {
		case <-ctx.Done():
			return uuid.Nil, ctx.Err()
		case <-s.wake:
		case <-s.done:
		}
	}
}

// Close stops accepting new ids. Ids already queued are still returned by Next.
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.done)
}

// Len returns the number of queued ids.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// InFlight returns the number of ids queued or being processed.
func (s *Scheduler) InFlight() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.inFlight)
}

func (s *Scheduler) signal() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}
