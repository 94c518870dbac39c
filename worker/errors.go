package worker

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrPoolDisposed is returned by Submit after Dispose.
	ErrPoolDisposed = errors.New("worker: pool disposed")

	// ErrQueueFull is returned by Submit when the task queue is at
	// capacity. Submission never blocks the caller.
	ErrQueueFull = errors.New("worker: task queue full")

	// ErrCanceled completes tasks removed from the queue before running.
	ErrCanceled = errors.New("worker: task canceled")

	// ErrNilTask is returned by Submit for a nil task.
	ErrNilTask = errors.New("worker: nil task")
)

// TimeoutError completes a task whose handler exceeded the pool's
// per-task timeout. The handler goroutine is abandoned; its late result
// is discarded.
type TimeoutError struct {
	TaskID  string
	Kind    string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("worker: task %s (%s) timed out after %v", e.TaskID, e.Kind, e.Timeout)
}

// IsTimeout reports whether err is a task timeout.
func IsTimeout(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}
