package worker

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// Pool sizing and queue defaults.
const (
	// MinWorkers and MaxWorkers clamp the worker count derived from
	// the CPU count. Image analysis tasks are memory-bandwidth bound,
	// so more workers than this buys nothing.
	MinWorkers = 2
	MaxWorkers = 4

	// DefaultQueueSize bounds the task queue when Config leaves it zero.
	DefaultQueueSize = 64

	// DefaultTaskTimeout bounds a single task's execution when neither
	// the task nor Config sets one.
	DefaultTaskTimeout = 10 * time.Second
)

// Config holds pool construction parameters.
type Config struct {
	// Workers is the goroutine count; derived from NumCPU and clamped
	// to [MinWorkers, MaxWorkers] when <= 0.
	Workers int
	// QueueSize bounds the pending task queue; DefaultQueueSize if <= 0.
	QueueSize int
	// TaskTimeout bounds each task's execution; DefaultTaskTimeout if 0.
	// Negative disables the timeout. A task's own Timeout field takes
	// precedence when set.
	TaskTimeout time.Duration
}

// Pending is the future for a submitted task. Wait blocks until the
// task completes, times out, or is canceled.
type Pending struct {
	task Task

	done   chan struct{}
	result any
	err    error
}

// Task returns the submitted task.
func (p *Pending) Task() Task { return p.task }

// Done is closed when the task has completed.
func (p *Pending) Done() <-chan struct{} { return p.done }

// Wait blocks until completion or ctx cancellation. Cancellation
// abandons the wait, not the task.
func (p *Pending) Wait(ctx context.Context) (any, error) {
	select {
	case <-p.done:
		return p.result, p.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Response blocks like Wait and folds the outcome into the uniform
// completion envelope.
func (p *Pending) Response(ctx context.Context) Response {
	result, err := p.Wait(ctx)
	if err != nil {
		return Response{Err: err.Error()}
	}
	return Response{OK: true, Data: result}
}

func (p *Pending) complete(result any, err error) {
	p.result = result
	p.err = err
	close(p.done)
}

// Pool is a fixed set of worker goroutines draining a bounded FIFO
// queue. Submission is non-blocking: a full queue is an error, not a
// stall. Each task runs under the pool's per-task timeout; a timed-out
// task's goroutine is abandoned and its worker slot moves on
// immediately.
//
// Thread safety: Pool is safe for concurrent use.
type Pool struct {
	workers     int
	taskTimeout time.Duration

	queue chan *Pending
	done  chan struct{}
	wg    sync.WaitGroup

	// baseCtx parents every task context so Dispose can cancel
	// in-flight work cooperatively.
	baseCtx    context.Context
	baseCancel context.CancelFunc

	running atomic.Bool
	busy    atomic.Int64

	completed atomic.Uint64
	timedOut  atomic.Uint64

	clearMu sync.Mutex
}

// Stats is a point-in-time view of pool occupancy.
type Stats struct {
	TotalWorkers     int
	BusyWorkers      int
	AvailableWorkers int
	QueuedTasks      int
	TasksCompleted   uint64
	TasksTimedOut    uint64
}

// NewPool creates and starts a pool.
func NewPool(config Config) *Pool {
	workers := config.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
		if workers < MinWorkers {
			workers = MinWorkers
		}
		if workers > MaxWorkers {
			workers = MaxWorkers
		}
	}
	queueSize := config.QueueSize
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	timeout := config.TaskTimeout
	if timeout == 0 {
		timeout = DefaultTaskTimeout
	}

	baseCtx, baseCancel := context.WithCancel(context.Background())
	p := &Pool{
		workers:     workers,
		taskTimeout: timeout,
		queue:       make(chan *Pending, queueSize),
		done:        make(chan struct{}),
		baseCtx:     baseCtx,
		baseCancel:  baseCancel,
	}
	p.running.Store(true)

	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker(i)
	}
	return p
}

// Submit queues a task and returns its future. It never blocks: a full
// queue fails with ErrQueueFull.
func (p *Pool) Submit(task Task) (*Pending, error) {
	if task == nil {
		return nil, ErrNilTask
	}
	if !p.running.Load() {
		return nil, ErrPoolDisposed
	}

	pending := &Pending{task: task, done: make(chan struct{})}
	select {
	case p.queue <- pending:
		return pending, nil
	default:
		return nil, ErrQueueFull
	}
}

// worker is the main loop for one pool slot.
func (p *Pool) worker(id int) {
	defer p.wg.Done()

	for {
		select {
		case <-p.done:
			return
		case pending := <-p.queue:
			if pending == nil {
				continue
			}
			// A task pulled during shutdown is rejected, not run.
			select {
			case <-p.done:
				pending.complete(nil, ErrPoolDisposed)
				return
			default:
			}
			p.busy.Add(1)
			p.execute(id, pending)
			p.busy.Add(-1)
		}
	}
}

// timeoutFor resolves a task's deadline: the task's own Timeout when
// set, otherwise the pool default. Negative means no deadline.
func (p *Pool) timeoutFor(task Task) time.Duration {
	if d := task.taskTimeout(); d != 0 {
		return d
	}
	return p.taskTimeout
}

// execute runs one task in a child goroutine so the slot can abandon it
// on timeout or disposal. The result channel is buffered: a late result
// from an abandoned task parks there and is collected by the GC.
func (p *Pool) execute(slot int, pending *Pending) {
	task := pending.task

	type outcome struct {
		result any
		err    error
	}
	ch := make(chan outcome, 1)

	timeout := p.timeoutFor(task)
	var (
		ctx      context.Context
		cancel   context.CancelFunc
		deadline <-chan struct{}
	)
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(p.baseCtx, timeout)
		deadline = ctx.Done()
	} else {
		ctx, cancel = context.WithCancel(p.baseCtx)
	}
	defer cancel()

	go func() {
		result, err := task.run(ctx)
		ch <- outcome{result, err}
	}()

	select {
	case out := <-ch:
		pending.complete(out.result, out.err)
		p.completed.Add(1)
	case <-p.done:
		pending.complete(nil, ErrPoolDisposed)
	case <-deadline:
		// A deadline also fires when Dispose cancels baseCtx; that is
		// a rejection, not a timeout.
		select {
		case <-p.done:
			pending.complete(nil, ErrPoolDisposed)
			return
		default:
		}
		p.timedOut.Add(1)
		slogger().Warn("task timed out",
			"slot", slot,
			"task", task.ID(),
			"kind", task.Kind(),
			"timeout", timeout)
		pending.complete(nil, &TimeoutError{
			TaskID:  task.ID(),
			Kind:    task.Kind(),
			Timeout: timeout,
		})
	}
}

// ClearQueue removes all queued tasks that have not started, completing
// each with ErrCanceled. It returns the number of tasks removed.
func (p *Pool) ClearQueue() int {
	p.clearMu.Lock()
	defer p.clearMu.Unlock()

	removed := 0
	for {
		select {
		case pending := <-p.queue:
			if pending != nil {
				pending.complete(nil, ErrCanceled)
				removed++
			}
		default:
			return removed
		}
	}
}

// Dispose stops the pool without waiting for in-flight work: queued
// tasks complete with ErrCanceled, tasks running on a slot complete
// with ErrPoolDisposed and their goroutines are abandoned with a
// canceled context, and every slot exits. Dispose is safe to call
// multiple times.
func (p *Pool) Dispose() {
	if !p.running.CompareAndSwap(true, false) {
		return
	}
	p.ClearQueue()
	close(p.done)
	p.baseCancel()
	p.wg.Wait()
	// A submission racing the shutdown may have slipped into the queue
	// after the first drain.
	p.ClearQueue()
}

// Stats returns a point-in-time occupancy view. Queue length is an
// approximation while tasks are flowing.
func (p *Pool) Stats() Stats {
	busy := int(p.busy.Load())
	return Stats{
		TotalWorkers:     p.workers,
		BusyWorkers:      busy,
		AvailableWorkers: p.workers - busy,
		QueuedTasks:      len(p.queue),
		TasksCompleted:   p.completed.Load(),
		TasksTimedOut:    p.timedOut.Load(),
	}
}

// Workers returns the pool's worker count.
func (p *Pool) Workers() int { return p.workers }

// IsRunning reports whether the pool is accepting work.
func (p *Pool) IsRunning() bool { return p.running.Load() }
