package engine

import (
	"context"
	"sync"
	"time"

	"inferd/pkg/types"
)

// oneShot is a single-assignment result slot. Exactly one of value, error or
// cancellation may ever be set, and exactly once; later resolutions are
// ignored. Readers block on the done channel, which is closed on resolution.
type oneShot[T any] struct {
	mu        sync.Mutex
	done      chan struct{}
	val       T
	err       error
	cancelled bool
	resolved  bool
}

func newOneShot[T any]() oneShot[T] {
	return oneShot[T]{done: make(chan struct{})}
}

func (o *oneShot[T]) resolve(v T, err error, cancelled bool) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.resolved {
		return false
	}
	o.val = v
	o.err = err
	o.cancelled = cancelled
	o.resolved = true
	close(o.done)
	return true
}

func (o *oneShot[T]) read() (T, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.val, o.err
}

func (o *oneShot[T]) isDone() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.resolved
}

func (o *oneShot[T]) isCancelled() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.cancelled
}

// Future is the asynchronous result handle for one task. The submitting
// caller reads it; only the pipeline writes to it.
type Future struct {
	slot oneShot[types.Result]
	task *Task
	// cached marks a future resolved directly from the result cache.
	cached bool
}

func newFuture(t *Task) *Future {
	return &Future{slot: newOneShot[types.Result](), task: t}
}

// newCachedFuture returns an already-resolved future for a cache hit.
func newCachedFuture(res types.Result) *Future {
	f := &Future{slot: newOneShot[types.Result](), cached: true}
	f.slot.resolve(res, nil, false)
	return f
}

func (f *Future) resolve(res types.Result, err error, cancelled bool) bool {
	return f.slot.resolve(res, err, cancelled)
}

// Get blocks until the task completes, fails or is cancelled, or until ctx
// is done. A ctx expiry does not alter the task's own state.
func (f *Future) Get(ctx context.Context) (types.Result, error) {
	select {
	case <-f.slot.done:
		return f.slot.read()
	case <-ctx.Done():
		return types.Result{}, ctx.Err()
	}
}

// GetTimeout blocks for at most d. On expiry it raises a wait-timeout error
// without touching the task, which may still complete and populate the cache.
func (f *Future) GetTimeout(d time.Duration) (types.Result, error) {
	select {
	case <-f.slot.done:
		return f.slot.read()
	case <-time.After(d):
		return types.Result{}, waitTimeoutError{}
	}
}

// Done exposes the resolution signal for select-based callers.
func (f *Future) Done() <-chan struct{} { return f.slot.done }

// IsDone reports whether the future has been resolved.
func (f *Future) IsDone() bool { return f.slot.isDone() }

// IsCancelled reports whether the future was resolved by cancellation.
func (f *Future) IsCancelled() bool { return f.slot.isCancelled() }

// Cached reports whether the result was served from the cache without
// entering the pipeline.
func (f *Future) Cached() bool { return f.cached }

// Cancel requests best-effort cancellation. It returns true only when the
// task had not yet begun inference; afterwards the task runs to completion
// and Cancel has no effect.
func (f *Future) Cancel() bool {
	if f.task == nil {
		return false
	}
	return f.task.tryCancel()
}

// MultiFuture aggregates the results of a multi-model request. It resolves
// once every constituent model has contributed, or fails on the first
// constituent error, discarding partial results.
type MultiFuture struct {
	slot oneShot[map[string]types.Result]

	mu      sync.Mutex
	pending int
	partial map[string]types.Result
}

func newMultiFuture(pending int) *MultiFuture {
	return &MultiFuture{
		slot:    newOneShot[map[string]types.Result](),
		pending: pending,
		partial: make(map[string]types.Result, pending),
	}
}

func (m *MultiFuture) contribute(modelID string, res types.Result) {
	m.mu.Lock()
	m.partial[modelID] = res
	m.pending--
	ready := m.pending <= 0
	var out map[string]types.Result
	if ready {
		out = m.partial
	}
	m.mu.Unlock()
	if ready {
		m.slot.resolve(out, nil, false)
	}
}

func (m *MultiFuture) failAggregate(err error) {
	cancelled := IsCancelled(err)
	m.slot.resolve(nil, err, cancelled)
}

// Get blocks until the aggregate resolves or ctx is done.
func (m *MultiFuture) Get(ctx context.Context) (map[string]types.Result, error) {
	select {
	case <-m.slot.done:
		return m.slot.read()
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// GetTimeout blocks for at most d, raising a wait-timeout error on expiry.
func (m *MultiFuture) GetTimeout(d time.Duration) (map[string]types.Result, error) {
	select {
	case <-m.slot.done:
		return m.slot.read()
	case <-time.After(d):
		return nil, waitTimeoutError{}
	}
}

// Done exposes the resolution signal for select-based callers.
func (m *MultiFuture) Done() <-chan struct{} { return m.slot.done }

// IsDone reports whether the aggregate has been resolved.
func (m *MultiFuture) IsDone() bool { return m.slot.isDone() }

// IsCancelled reports whether the aggregate failed due to a constituent
// cancellation.
func (m *MultiFuture) IsCancelled() bool { return m.slot.isCancelled() }
