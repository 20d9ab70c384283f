package task

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkerPoolExecutesTasks(t *testing.T) {
	t.Parallel()

	q := NewQueue(8, nil)
	pool := NewWorkerPool(q, WorkerPoolConfig{WorkerCount: 2}, nil)

	done := make(chan struct{}, 3)
	tasks := make([]*mockTask, 3)
	for i := range tasks {
		tasks[i] = newMockTask()
		tasks[i].execFn = func(ctx context.Context) error {
			done <- struct{}{}
			return nil
		}
		require.NoError(t, q.Enqueue(tasks[i]))
	}

	pool.Start()
	defer pool.Stop()

	for range tasks {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for task execution")
		}
	}
	for _, task := range tasks {
		assert.True(t, task.wasExecuted())
	}
}

func TestWorkerPoolErrorHandler(t *testing.T) {
	t.Parallel()

	q := NewQueue(1, nil)
	pool := NewWorkerPool(q, DefaultWorkerPoolConfig(), nil)

	wantErr := errors.New("task exploded")
	failing := newMockTask()
	failing.execFn = func(ctx context.Context) error { return wantErr }

	var mu sync.Mutex
	var gotErr error
	handled := make(chan struct{})
	pool.SetErrorHandler(func(task Task, err error) {
		mu.Lock()
		gotErr = err
		mu.Unlock()
		close(handled)
	})

	require.NoError(t, q.Enqueue(failing))
	pool.Start()
	defer pool.Stop()

	select {
	case <-handled:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for error handler")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.ErrorIs(t, gotErr, wantErr)
}

func TestWorkerPoolStopWaitsForWorkers(t *testing.T) {
	t.Parallel()

	q := NewQueue(1, nil)
	pool := NewWorkerPool(q, WorkerPoolConfig{WorkerCount: 1}, nil)

	pool.Start()
	pool.Stop()

	// After Stop, enqueued tasks are no longer consumed.
	require.NoError(t, q.Enqueue(newMockTask()))
	assert.Len(t, q.GetChannel(), 1)
}

func TestWorkerPoolDefaultsInvalidWorkerCount(t *testing.T) {
	t.Parallel()

	pool := NewWorkerPool(NewQueue(1, nil), WorkerPoolConfig{WorkerCount: -3}, nil)
	assert.Equal(t, 1, pool.workerCount)
}
