package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestSubmitAndWait(t *testing.T) {
	p := NewPool(Config{Workers: 2})
	defer p.Dispose()

	pending, err := p.Submit(NewFuncTask("double", func(ctx context.Context) (any, error) {
		return 21 * 2, nil
	}))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	result, err := pending.Wait(context.Background())
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if result.(int) != 42 {
		t.Fatalf("result = %v, want 42", result)
	}
}

func TestTaskError(t *testing.T) {
	p := NewPool(Config{Workers: 1})
	defer p.Dispose()

	boom := errors.New("boom")
	pending, err := p.Submit(NewFuncTask("fail", func(ctx context.Context) (any, error) {
		return nil, boom
	}))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if _, err := pending.Wait(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("Wait error = %v, want boom", err)
	}
}

func TestQueueBound(t *testing.T) {
	p := NewPool(Config{Workers: 1, QueueSize: 2})
	defer p.Dispose()

	// Occupy the single worker.
	release := make(chan struct{})
	started := make(chan struct{})
	blocker, err := p.Submit(NewFuncTask("block", func(ctx context.Context) (any, error) {
		close(started)
		<-release
		return nil, nil
	}))
	if err != nil {
		t.Fatalf("Submit blocker: %v", err)
	}
	<-started

	// Fill the queue.
	for i := 0; i < 2; i++ {
		if _, err := p.Submit(NewFuncTask("queued", func(ctx context.Context) (any, error) {
			return nil, nil
		})); err != nil {
			t.Fatalf("Submit %d: %v", i, err)
		}
	}

	// Next submission must fail fast rather than block.
	if _, err := p.Submit(NewFuncTask("overflow", func(ctx context.Context) (any, error) {
		return nil, nil
	})); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("Submit over capacity: err = %v, want ErrQueueFull", err)
	}

	close(release)
	if _, err := blocker.Wait(context.Background()); err != nil {
		t.Fatalf("blocker: %v", err)
	}
}

func TestTimeoutFreesSlot(t *testing.T) {
	p := NewPool(Config{Workers: 1, TaskTimeout: 30 * time.Millisecond})
	defer p.Dispose()

	hang := make(chan struct{})
	defer close(hang)
	stalled, err := p.Submit(NewFuncTask("stall", func(ctx context.Context) (any, error) {
		<-hang
		return nil, nil
	}))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	_, werr := stalled.Wait(context.Background())
	if !IsTimeout(werr) {
		t.Fatalf("Wait error = %v, want TimeoutError", werr)
	}
	var te *TimeoutError
	if errors.As(werr, &te) && te.Kind != "stall" {
		t.Fatalf("TimeoutError.Kind = %q", te.Kind)
	}

	// The slot must be available for new work immediately.
	next, err := p.Submit(NewFuncTask("quick", func(ctx context.Context) (any, error) {
		return "ok", nil
	}))
	if err != nil {
		t.Fatalf("Submit after timeout: %v", err)
	}
	result, err := next.Wait(context.Background())
	if err != nil || result.(string) != "ok" {
		t.Fatalf("post-timeout task: %v, %v", result, err)
	}

	if got := p.Stats().TasksTimedOut; got != 1 {
		t.Fatalf("TasksTimedOut = %d, want 1", got)
	}
}

func TestTimeoutContextPropagates(t *testing.T) {
	p := NewPool(Config{Workers: 1, TaskTimeout: 20 * time.Millisecond})
	defer p.Dispose()

	canceled := make(chan struct{})
	pending, err := p.Submit(NewFuncTask("ctx", func(ctx context.Context) (any, error) {
		<-ctx.Done()
		close(canceled)
		return nil, ctx.Err()
	}))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if _, err := pending.Wait(context.Background()); !IsTimeout(err) {
		t.Fatalf("Wait error = %v, want TimeoutError", err)
	}

	select {
	case <-canceled:
	case <-time.After(time.Second):
		t.Fatal("task context was not canceled on timeout")
	}
}

func TestPerTaskTimeoutOverride(t *testing.T) {
	p := NewPool(Config{Workers: 1, TaskTimeout: 20 * time.Millisecond})
	defer p.Dispose()

	work := func(ctx context.Context) (any, error) {
		select {
		case <-time.After(80 * time.Millisecond):
			return "done", nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	slow := NewFuncTask("slow", work)
	slow.Timeout = 500 * time.Millisecond
	pending, err := p.Submit(slow)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	result, err := pending.Wait(context.Background())
	if err != nil || result.(string) != "done" {
		t.Fatalf("task with extended timeout: %v, %v", result, err)
	}

	// The same work under the pool default must still time out.
	fallback, err := p.Submit(NewFuncTask("slow", work))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	_, werr := fallback.Wait(context.Background())
	if !IsTimeout(werr) {
		t.Fatalf("Wait error = %v, want TimeoutError", werr)
	}
	var te *TimeoutError
	if errors.As(werr, &te) && te.Timeout != 20*time.Millisecond {
		t.Fatalf("TimeoutError.Timeout = %v, want pool default", te.Timeout)
	}
}

func TestPerTaskTimeoutDisable(t *testing.T) {
	p := NewPool(Config{Workers: 1, TaskTimeout: 10 * time.Millisecond})
	defer p.Dispose()

	task := NewFuncTask("steady", func(ctx context.Context) (any, error) {
		select {
		case <-time.After(50 * time.Millisecond):
			return "done", nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	})
	task.Timeout = -1
	pending, err := p.Submit(task)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	result, err := pending.Wait(context.Background())
	if err != nil || result.(string) != "done" {
		t.Fatalf("task with disabled timeout: %v, %v", result, err)
	}
}

func TestClearQueue(t *testing.T) {
	p := NewPool(Config{Workers: 1, QueueSize: 8})
	defer p.Dispose()

	release := make(chan struct{})
	started := make(chan struct{})
	if _, err := p.Submit(NewFuncTask("block", func(ctx context.Context) (any, error) {
		close(started)
		<-release
		return nil, nil
	})); err != nil {
		t.Fatalf("Submit blocker: %v", err)
	}
	<-started

	var queued []*Pending
	for i := 0; i < 3; i++ {
		pending, err := p.Submit(NewFuncTask("queued", func(ctx context.Context) (any, error) {
			return nil, nil
		}))
		if err != nil {
			t.Fatalf("Submit %d: %v", i, err)
		}
		queued = append(queued, pending)
	}

	if removed := p.ClearQueue(); removed != 3 {
		t.Fatalf("ClearQueue removed %d, want 3", removed)
	}
	for i, pending := range queued {
		if _, err := pending.Wait(context.Background()); !errors.Is(err, ErrCanceled) {
			t.Fatalf("queued[%d] err = %v, want ErrCanceled", i, err)
		}
	}
	close(release)
}

func TestDisposeRejectsInFlight(t *testing.T) {
	p := NewPool(Config{Workers: 1, TaskTimeout: -1})

	started := make(chan struct{})
	inflight, err := p.Submit(NewFuncTask("hang", func(ctx context.Context) (any, error) {
		close(started)
		<-ctx.Done()
		return nil, ctx.Err()
	}))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	<-started

	queued, err := p.Submit(NewFuncTask("queued", func(ctx context.Context) (any, error) {
		return nil, nil
	}))
	if err != nil {
		t.Fatalf("Submit queued: %v", err)
	}

	disposed := make(chan struct{})
	go func() {
		p.Dispose()
		close(disposed)
	}()
	select {
	case <-disposed:
	case <-time.After(2 * time.Second):
		t.Fatal("Dispose blocked on an in-flight task")
	}

	if _, err := inflight.Wait(context.Background()); !errors.Is(err, ErrPoolDisposed) {
		t.Fatalf("in-flight err = %v, want ErrPoolDisposed", err)
	}
	if _, err := queued.Wait(context.Background()); !errors.Is(err, ErrCanceled) {
		t.Fatalf("queued err = %v, want ErrCanceled", err)
	}
}

func TestDispose(t *testing.T) {
	p := NewPool(Config{Workers: 2})
	p.Dispose()
	p.Dispose() // idempotent

	if p.IsRunning() {
		t.Fatal("IsRunning after Dispose")
	}
	if _, err := p.Submit(NewFuncTask("late", func(ctx context.Context) (any, error) {
		return nil, nil
	})); !errors.Is(err, ErrPoolDisposed) {
		t.Fatalf("Submit after Dispose: err = %v, want ErrPoolDisposed", err)
	}
}

func TestWorkerClamp(t *testing.T) {
	p := NewPool(Config{})
	defer p.Dispose()
	if w := p.Workers(); w < MinWorkers || w > MaxWorkers {
		t.Fatalf("Workers = %d, want within [%d, %d]", w, MinWorkers, MaxWorkers)
	}
}

func TestConcurrentSubmitters(t *testing.T) {
	p := NewPool(Config{Workers: 4, QueueSize: 256})
	defer p.Dispose()

	const n = 64
	var wg sync.WaitGroup
	results := make([]int, n)

	for i := 0; i < n; i++ {
		i := i
		pending, err := p.Submit(NewFuncTask("sq", func(ctx context.Context) (any, error) {
			return i * i, nil
		}))
		if err != nil {
			t.Fatalf("Submit %d: %v", i, err)
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := pending.Wait(context.Background())
			if err != nil {
				t.Errorf("Wait %d: %v", i, err)
				return
			}
			results[i] = v.(int)
		}()
	}
	wg.Wait()

	for i, got := range results {
		if got != i*i {
			t.Fatalf("results[%d] = %d, want %d", i, got, i*i)
		}
	}
	if done := p.Stats().TasksCompleted; done != n {
		t.Fatalf("TasksCompleted = %d, want %d", done, n)
	}
}

func TestResponseEnvelope(t *testing.T) {
	p := NewPool(Config{Workers: 1})
	defer p.Dispose()

	ok, err := p.Submit(NewFuncTask("ok", func(ctx context.Context) (any, error) {
		return 7, nil
	}))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if resp := ok.Response(context.Background()); !resp.OK || resp.Data.(int) != 7 || resp.Err != "" {
		t.Fatalf("Response = %+v", resp)
	}

	bad, err := p.Submit(NewFuncTask("bad", func(ctx context.Context) (any, error) {
		return nil, errors.New("nope")
	}))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if resp := bad.Response(context.Background()); resp.OK || resp.Err != "nope" {
		t.Fatalf("Response = %+v", resp)
	}
}

func TestSubmitNil(t *testing.T) {
	p := NewPool(Config{Workers: 1})
	defer p.Dispose()
	if _, err := p.Submit(nil); !errors.Is(err, ErrNilTask) {
		t.Fatalf("Submit(nil) err = %v, want ErrNilTask", err)
	}
}
