package schedule

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_EnqueueDeduplicates(t *testing.T) {
	s := NewScheduler(nil)
	id := uuid.New()

	assert.True(t, s.Enqueue(id))
	assert.False(t, s.Enqueue(id), "second enqueue of a queued id must be a no-op")
	assert.Equal(t, 1, s.Len())

	got, err := s.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, id, got)

	assert.False(t, s.Enqueue(id), "id in progress must not be re-queued")
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, 1, s.InFlight())
}

func TestScheduler_EnqueueAfterCompletion(t *testing.T) {
	s := NewScheduler(nil)
	id := uuid.New()

	require.True(t, s.Enqueue(id))
	_, err := s.Next(context.Background())
	require.NoError(t, err)

	s.MarkCompleted(id)
	assert.Equal(t, 0, s.InFlight())
	assert.True(t, s.Enqueue(id), "completed id must be accepted again")
	assert.Equal(t, 1, s.Len())
}

func TestScheduler_FIFO(t *testing.T) {
	s := NewScheduler(nil)
	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	for _, id := range ids {
		require.True(t, s.Enqueue(id))
	}

	for _, want := range ids {
		got, err := s.Next(context.Background())
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestScheduler_NextBlocksUntilEnqueue(t *testing.T) {
	s := NewScheduler(nil)
	id := uuid.New()

	result := make(chan uuid.UUID, 1)
	go func() {
		got, err := s.Next(context.Background())
		if err == nil {
			result <- got
		}
	}()

	time.Sleep(20 * time.Millisecond)
	s.Enqueue(id)

	select {
	case got := <-result:
		assert.Equal(t, id, got)
	case <-time.After(time.Second):
		t.Fatal("Next did not wake up after Enqueue")
	}
}

func TestScheduler_NextCanceled(t *testing.T) {
	s := NewScheduler(nil)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := s.Next(ctx)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestScheduler_Close(t *testing.T) {
	s := NewScheduler(nil)
	queued := uuid.New()
	require.True(t, s.Enqueue(queued))

	s.Close()
	s.Close()

	late := uuid.New()
	assert.False(t, s.Enqueue(late))
	assert.Equal(t, 1, s.InFlight(), "rejected id must be rolled back from the in-flight set")

	got, err := s.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, queued, got, "queued ids drain after close")

	_, err = s.Next(context.Background())
	assert.ErrorIs(t, err, ErrSchedulerClosed)
}

func TestScheduler_CloseWakesWaiter(t *testing.T) {
	s := NewScheduler(nil)
	errCh := make(chan error, 1)
	go func() {
		_, err := s.Next(context.Background())
		errCh <- err
	}()

	time.Sleep(20 * time.Millisecond)
	s.Close()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, ErrSchedulerClosed)
	case <-time.After(time.Second):
		t.Fatal("Close did not wake Next")
	}
}

func TestScheduler_ConcurrentProducers(t *testing.T) {
	s := NewScheduler(nil)
	id := uuid.New()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.Enqueue(id) {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, accepted)
	assert.Equal(t, 1, s.Len())
}

func TestScheduler_MultipleConsumers(t *testing.T) {
	s := NewScheduler(nil)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	const n = 20
	got := make(chan uuid.UUID, n)
	for i := 0; i < 3; i++ {
		go func() {
			for {
				id, err := s.Next(ctx)
				if err != nil {
					return
				}
				got <- id
			}
		}()
	}

	for i := 0; i < n; i++ {
		s.Enqueue(uuid.New())
	}

	seen := map[uuid.UUID]bool{}
	for i := 0; i < n; i++ {
		select {
		case id := <-got:
			assert.False(t, seen[id], "id delivered twice")
			seen[id] = true
		case <-ctx.Done():
			t.Fatalf("only %d of %d ids delivered", len(seen), n)
		}
	}
}
