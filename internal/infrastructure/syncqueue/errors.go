package syncqueue

import "errors"

var (
	// ErrInvalidConfig indicates invalid queue configuration
	ErrInvalidConfig = errors.New("syncqueue: invalid configuration")

	// ErrQueueNotRunning indicates the queue has not been started
	ErrQueueNotRunning = errors.New("syncqueue: queue not running")

	// ErrQueueFull indicates the task channel is at capacity
	ErrQueueFull = errors.New("syncqueue: task queue full")
)
