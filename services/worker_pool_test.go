package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matchfund/matchfund-backend/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPool(t *testing.T, workers, queue int) *WorkerPool {
	t.Helper()
	resetWorkerPoolMetricsForTesting()
	pool := NewWorkerPool(config.WorkerPoolConfig{MaxWorkers: workers, QueueSize: queue, ShutdownTimeoutSeconds: 5})
	pool.Start()
	t.Cleanup(func() { _ = pool.Shutdown(context.Background()) })
	return pool
}

func TestWorkerPool_SubmitAndExecute(t *testing.T) {
	pool := newTestPool(t, 2, 10)

	done := make(chan struct{})
	ok := pool.Submit(Job{
		Kind: "notification",
		Name: "test-job",
		Execute: func(ctx context.Context) error {
			close(done)
			return nil
		},
	})
	require.True(t, ok)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not execute")
	}
}

func TestWorkerPool_BoundedConcurrency(t *testing.T) {
	pool := newTestPool(t, 2, 100)

	var current, peak int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		require.True(t, pool.Submit(Job{
			Kind: "notification",
			Name: "concurrent-job",
			Execute: func(ctx context.Context) error {
				defer wg.Done()
				n := atomic.AddInt32(&current, 1)
				defer atomic.AddInt32(&current, -1)
				for {
					p := atomic.LoadInt32(&peak)
					if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
						break
					}
				}
				time.Sleep(20 * time.Millisecond)
				return nil
			},
		}))
	}
	wg.Wait()

	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
}

func TestWorkerPool_QueueFull(t *testing.T) {
	pool := newTestPool(t, 1, 1)

	release := make(chan struct{})
	started := make(chan struct{})
	require.True(t, pool.Submit(Job{Kind: "receipt", Name: "blocker", Execute: func(ctx context.Context) error {
		close(started)
		<-release
		return nil
	}}))
	<-started

	require.True(t, pool.Submit(Job{Kind: "receipt", Name: "queued", Execute: func(ctx context.Context) error { return nil }}))
	assert.False(t, pool.Submit(Job{Kind: "receipt", Name: "dropped", Execute: func(ctx context.Context) error { return nil }}))

	close(release)
}

func TestWorkerPool_ShutdownDrainsQueue(t *testing.T) {
	resetWorkerPoolMetricsForTesting()
	pool := NewWorkerPool(config.WorkerPoolConfig{MaxWorkers: 1, QueueSize: 10})
	pool.Start()

	var ran int32
	for i := 0; i < 5; i++ {
		pool.Submit(Job{Kind: "notification", Name: "drain", Execute: func(ctx context.Context) error {
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt32(&ran, 1)
			return nil
		}})
	}

	require.NoError(t, pool.Shutdown(context.Background()))
	assert.Equal(t, int32(5), atomic.LoadInt32(&ran))
	assert.False(t, pool.IsRunning())

	assert.False(t, pool.Submit(Job{Kind: "notification", Name: "late", Execute: func(ctx context.Context) error { return nil }}))
	assert.NoError(t, pool.Shutdown(context.Background()), "second shutdown is a no-op")
}

func TestWorkerPool_ShutdownTimeout(t *testing.T) {
	resetWorkerPoolMetricsForTesting()
	pool := NewWorkerPool(config.WorkerPoolConfig{MaxWorkers: 1, QueueSize: 1})
	pool.Start()

	started := make(chan struct{})
	cancelled := make(chan struct{})
	pool.Submit(Job{Kind: "receipt", Name: "slow", Timeout: time.Minute, Execute: func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		close(cancelled)
		return ctx.Err()
	}})
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, pool.Shutdown(ctx), context.DeadlineExceeded)

	select {
	case <-cancelled:
	case <-time.After(2 * time.Second):
		t.Fatal("running job was not cancelled")
	}
}

func TestWorkerPool_ErrorsAndPanicsDoNotKillWorkers(t *testing.T) {
	pool := newTestPool(t, 1, 10)

	pool.Submit(Job{Kind: "notification", Name: "fails", Execute: func(ctx context.Context) error {
		return errors.New("boom")
	}})
	pool.Submit(Job{Kind: "notification", Name: "panics", Execute: func(ctx context.Context) error {
		panic("unexpected nil")
	}})

	done := make(chan struct{})
	pool.Submit(Job{Kind: "notification", Name: "after", Execute: func(ctx context.Context) error {
		close(done)
		return nil
	}})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker died after failing job")
	}
}

func TestWorkerPool_DoubleStart(t *testing.T) {
	pool := newTestPool(t, 1, 1)
	pool.Start()
	assert.True(t, pool.IsRunning())
}
