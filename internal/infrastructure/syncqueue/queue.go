package syncqueue

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ppm/backend/internal/domain/integration"
)

// ---------------------------------------------------------------------------
// TaskExecutor Interface
// ---------------------------------------------------------------------------

// TaskExecutor performs the actual push for one sync task
type TaskExecutor interface {
	// Execute pushes the task's entity to its target. Failures that should
	// be retried return *integration.APIError with a retryable category;
	// any other error is treated as permanent.
	Execute(ctx context.Context, task *SyncTask) error
}

// PermanentFailureHandler is implemented by executors that want to record
// tasks the queue will never run again. The queue calls it when a retryable
// failure escalates to permanent, either because the attempt budget is spent
// or because the task could not be re-queued. Failures the executor already
// resolved inside Execute are not reported.
type PermanentFailureHandler interface {
	HandlePermanentFailure(ctx context.Context, task *SyncTask, cause error)
}

// ---------------------------------------------------------------------------
// Queue Configuration
// ---------------------------------------------------------------------------

// Config holds configuration for the sync queue
type Config struct {
	// Workers is the number of concurrent workers
	Workers int
	// QueueSize is the task channel capacity
	QueueSize int
	// MaxAttempts is the per-task attempt budget
	MaxAttempts int
	// RetryBaseDelay is the backoff base delay
	RetryBaseDelay time.Duration
	// RetryMaxDelay caps the computed backoff delay
	RetryMaxDelay time.Duration
	// TaskTimeout bounds a single task execution
	TaskTimeout time.Duration
}

// DefaultConfig returns default queue configuration
func DefaultConfig() Config {
	return Config{
		Workers:        4,
		QueueSize:      256,
		MaxAttempts:    5,
		RetryBaseDelay: 2 * time.Second,
		RetryMaxDelay:  5 * time.Minute,
		TaskTimeout:    2 * time.Minute,
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Workers <= 0 || c.QueueSize <= 0 {
		return ErrInvalidConfig
	}
	if c.MaxAttempts < 1 {
		return ErrInvalidConfig
	}
	if c.RetryBaseDelay <= 0 || c.RetryMaxDelay < c.RetryBaseDelay {
		return ErrInvalidConfig
	}
	if c.TaskTimeout <= 0 {
		return ErrInvalidConfig
	}
	return nil
}

// ---------------------------------------------------------------------------
// Queue
// ---------------------------------------------------------------------------

// Queue runs sync tasks on a bounded worker pool. Retryable failures go back
// on the queue with exponential backoff until the attempt budget is spent;
// everything else resolves the task terminally.
type Queue struct {
	config   Config
	executor TaskExecutor
	logger   *zap.Logger

	tasks     chan *SyncTask
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewQueue creates a new sync queue
func NewQueue(config Config, executor TaskExecutor, logger *zap.Logger) (*Queue, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Queue{
		config:   config,
		executor: executor,
		logger:   logger,
		tasks:    make(chan *SyncTask, config.QueueSize),
	}, nil
}

// Start starts the worker pool
func (q *Queue) Start(ctx context.Context) error {
	q.mu.Lock()
	if q.isRunning {
		q.mu.Unlock()
		return nil
	}
	q.isRunning = true
	q.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	q.cancel = cancel

	for i := 0; i < q.config.Workers; i++ {
		q.wg.Add(1)
		go q.worker(ctx, i)
	}

	q.logger.Info("Sync queue started",
		zap.Int("workers", q.config.Workers),
		zap.Int("queue_size", q.config.QueueSize),
		zap.Duration("task_timeout", q.config.TaskTimeout),
	)

	return nil
}

// Stop gracefully stops the worker pool
func (q *Queue) Stop(ctx context.Context) error {
	q.mu.Lock()
	if !q.isRunning {
		q.mu.Unlock()
		return nil
	}
	q.isRunning = false
	q.mu.Unlock()

	if q.cancel != nil {
		q.cancel()
	}
	close(q.tasks)

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		q.logger.Info("Sync queue stopped gracefully")
		return nil
	case <-ctx.Done():
		q.logger.Warn("Sync queue stop timed out")
		return ctx.Err()
	}
}

// Submit enqueues a task for execution. The send happens under the run lock
// so a concurrent Stop cannot close the channel out from under it.
func (q *Queue) Submit(task *SyncTask) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.isRunning {
		return ErrQueueNotRunning
	}

	select {
	case q.tasks <- task:
		q.logger.Debug("Sync task submitted",
			zap.String("task_id", task.ID.String()),
			zap.String("tenant_id", task.TenantID.String()),
			zap.String("mappable_type", string(task.MappableType)),
			zap.Int64("mappable_id", task.MappableID),
			zap.String("target", task.TargetKey()),
		)
		return nil
	default:
		return ErrQueueFull
	}
}

// worker processes tasks from the queue
func (q *Queue) worker(ctx context.Context, workerID int) {
	defer q.wg.Done()

	q.logger.Debug("Sync worker started", zap.Int("worker_id", workerID))

	for {
		select {
		case <-ctx.Done():
			q.logger.Debug("Sync worker stopping", zap.Int("worker_id", workerID))
			return
		case task, ok := <-q.tasks:
			if !ok {
				return
			}
			q.processTask(ctx, task, workerID)
		}
	}
}

// processTask executes a single task
func (q *Queue) processTask(ctx context.Context, task *SyncTask, workerID int) {
	task.Start()
	q.logger.Info("Processing sync task",
		zap.Int("worker_id", workerID),
		zap.String("task_id", task.ID.String()),
		zap.String("mappable_type", string(task.MappableType)),
		zap.Int64("mappable_id", task.MappableID),
		zap.String("target", task.TargetKey()),
		zap.Int("attempt", task.Attempt),
	)

	taskCtx, cancel := context.WithTimeout(ctx, q.config.TaskTimeout)
	err := q.executor.Execute(taskCtx, task)
	cancel()

	if err == nil {
		task.Succeed()
		q.logger.Info("Sync task completed",
			zap.Int("worker_id", workerID),
			zap.String("task_id", task.ID.String()),
			zap.String("target", task.TargetKey()),
			zap.Int("attempt", task.Attempt),
		)
		return
	}

	if !isRetryable(err) {
		task.FailPermanent(err.Error())
		q.logger.Error("Sync task failed permanently",
			zap.Int("worker_id", workerID),
			zap.String("task_id", task.ID.String()),
			zap.String("target", task.TargetKey()),
			zap.Int("attempt", task.Attempt),
			zap.Error(err),
		)
		return
	}

	task.FailRetryable(err.Error())
	if task.Status == TaskStatusPermanent {
		q.logger.Error("Sync task exhausted its attempts",
			zap.Int("worker_id", workerID),
			zap.String("task_id", task.ID.String()),
			zap.String("target", task.TargetKey()),
			zap.Int("attempts", task.Attempt),
			zap.Error(err),
		)
		q.notifyPermanentFailure(ctx, task, err)
		return
	}

	task.ScheduleRetry(q.config.RetryBaseDelay, q.config.RetryMaxDelay, retryAfterHint(err))
	q.logger.Warn("Sync task scheduled for retry",
		zap.String("task_id", task.ID.String()),
		zap.String("target", task.TargetKey()),
		zap.Int("attempt", task.Attempt),
		zap.Int("max_attempts", task.MaxAttempts),
		zap.Timep("next_retry_at", task.NextRetryAt),
		zap.Error(err),
	)
	q.requeueWhenDue(ctx, task, err)
}

// requeueWhenDue re-enqueues the task once its backoff elapses. This runs off
// the worker goroutine so tasks in long backoff do not park the pool.
func (q *Queue) requeueWhenDue(ctx context.Context, task *SyncTask, cause error) {
	q.wg.Add(1)
	go func() {
		defer q.wg.Done()

		timer := time.NewTimer(time.Until(*task.NextRetryAt))
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		if err := q.Submit(task); err != nil {
			if errors.Is(err, ErrQueueNotRunning) {
				return
			}
			task.FailPermanent("retry queue full: " + cause.Error())
			q.logger.Error("Failed to re-queue sync task",
				zap.String("task_id", task.ID.String()),
				zap.String("target", task.TargetKey()),
				zap.Error(cause),
			)
			q.notifyPermanentFailure(ctx, task, cause)
		}
	}()
}

// notifyPermanentFailure gives the executor a chance to record a task that
// will never run again. Detached from the task context so the record is
// written even when the queue is shutting down.
func (q *Queue) notifyPermanentFailure(ctx context.Context, task *SyncTask, cause error) {
	handler, ok := q.executor.(PermanentFailureHandler)
	if !ok {
		return
	}
	hctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), q.config.TaskTimeout)
	defer cancel()
	handler.HandlePermanentFailure(hctx, task, cause)
}

// isRetryable reports whether the failure is worth another attempt
func isRetryable(err error) bool {
	var apiErr *integration.APIError
	if errors.As(err, &apiErr) {
		return apiErr.IsRetryable()
	}
	return false
}

// retryAfterHint extracts a target-supplied retry-after duration, zero when
// none was given
func retryAfterHint(err error) time.Duration {
	var apiErr *integration.APIError
	if errors.As(err, &apiErr) {
		return apiErr.RetryAfter()
	}
	return 0
}
