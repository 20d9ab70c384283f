// Package task provides a small in-process background work system: a
// buffered queue and a worker pool. It decouples optimization triggers
// (HTTP requests, the periodic sweep) from execution.
package task

import (
	"context"

	"github.com/google/uuid"
)

// Task represents a unit of background work to be processed.
type Task interface {
	// ID returns the task's unique identifier.
	ID() uuid.UUID

	// Type returns the task type identifier.
	Type() string

	// Execute runs the task logic.
	Execute(ctx context.Context) error
}

// QueueReader provides read-only access to the task channel, allowing
// workers to consume tasks without the ability to enqueue.
type QueueReader interface {
	// GetChannel returns a read-only channel for consuming tasks.
	GetChannel() <-chan Task
}

// QueueWriter provides write access to the task queue, allowing
// services to enqueue tasks for processing.
type QueueWriter interface {
	// Enqueue adds a task to the queue. Returns an error if the queue
	// is full or closed.
	Enqueue(task Task) error
}
