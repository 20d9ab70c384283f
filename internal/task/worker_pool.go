package task

import (
	"context"
	"log/slog"
	"sync"
)

// WorkerPool manages a pool of goroutines that process tasks from a
// queue, with graceful shutdown.
type WorkerPool struct {
	taskQueue    QueueReader
	workerCount  int
	wg           sync.WaitGroup
	ctx          context.Context
	cancel       context.CancelFunc
	logger       *slog.Logger
	errorHandler func(task Task, err error)
}

// WorkerPoolConfig holds configuration for the worker pool.
type WorkerPoolConfig struct {
	// WorkerCount is the number of concurrent workers. Zero or negative
	// defaults to 1.
	WorkerCount int
}

// DefaultWorkerPoolConfig returns reasonable defaults.
func DefaultWorkerPoolConfig() WorkerPoolConfig {
	return WorkerPoolConfig{WorkerCount: 2}
}

// NewWorkerPool creates a worker pool reading from the given queue.
func NewWorkerPool(taskQueue QueueReader, config WorkerPoolConfig, logger *slog.Logger) *WorkerPool {
	if logger == nil {
		logger = slog.Default()
	}

	workerCount := config.WorkerCount
	if workerCount <= 0 {
		workerCount = 1
		logger.Warn("invalid worker count specified, using default",
			"specified_count", config.WorkerCount,
			"default_count", 1)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &WorkerPool{
		taskQueue:   taskQueue,
		workerCount: workerCount,
		ctx:         ctx,
		cancel:      cancel,
		logger:      logger,
	}
}

// SetErrorHandler sets a handler invoked when a task execution fails.
// When nil, failures are only logged.
func (p *WorkerPool) SetErrorHandler(handler func(task Task, err error)) {
	p.errorHandler = handler
}

// Start launches the workers. Each worker loops until the queue channel
// is closed and drained, or the pool is stopped.
func (p *WorkerPool) Start() {
	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	p.logger.Info("worker pool started", "worker_count", p.workerCount)
}

// Stop cancels in-flight work and waits for all workers to exit.
func (p *WorkerPool) Stop() {
	p.cancel()
	p.wg.Wait()
	p.logger.Info("worker pool stopped")
}

func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	log := p.logger.With(slog.Int("worker_id", id))
	for {
		select {
		case <-p.ctx.Done():
			return
		case t, ok := <-p.taskQueue.GetChannel():
			if !ok {
				return
			}
			p.execute(log, t)
		}
	}
}

func (p *WorkerPool) execute(log *slog.Logger, t Task) {
	log.Debug("executing task",
		"task_id", t.ID(),
		"task_type", t.Type())

	if err := t.Execute(p.ctx); err != nil {
		log.Error("task failed",
			"task_id", t.ID(),
			"task_type", t.Type(),
			"error", err.Error())
		if p.errorHandler != nil {
			p.errorHandler(t, err)
		}
		return
	}

	log.Debug("task completed",
		"task_id", t.ID(),
		"task_type", t.Type())
}
