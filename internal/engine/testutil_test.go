package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"inferd/pkg/types"
)

// stubRunner is a controllable ModelRunner for pipeline tests. The default
// transform prefixes the prepared input so output routing is observable.
type stubRunner struct {
	mu         sync.Mutex
	inferCalls int
	batchCalls int
	batchSizes []int

	prepareErr   error
	inferErr     error
	interpretErr error

	// when set, Infer signals started and then blocks until release closes.
	started chan struct{}
	release chan struct{}

	transform func([]byte) []byte
}

func (s *stubRunner) out(p []byte) []byte {
	if s.transform != nil {
		return s.transform(p)
	}
	return append([]byte("out:"), p...)
}

func (s *stubRunner) Prepare(ctx context.Context, input []byte) ([]byte, error) {
	if s.prepareErr != nil {
		return nil, s.prepareErr
	}
	return append([]byte(nil), input...), nil
}

func (s *stubRunner) Infer(ctx context.Context, prepared []byte) ([]byte, error) {
	s.mu.Lock()
	s.inferCalls++
	started, release := s.started, s.release
	s.mu.Unlock()
	if started != nil {
		close(started)
		s.mu.Lock()
		s.started = nil
		s.mu.Unlock()
	}
	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.inferErr != nil {
		return nil, s.inferErr
	}
	return s.out(prepared), nil
}

func (s *stubRunner) InferBatch(ctx context.Context, prepared [][]byte) ([][]byte, error) {
	s.mu.Lock()
	s.batchCalls++
	s.batchSizes = append(s.batchSizes, len(prepared))
	s.mu.Unlock()
	if s.inferErr != nil {
		return nil, s.inferErr
	}
	out := make([][]byte, len(prepared))
	for i, p := range prepared {
		out[i] = s.out(p)
	}
	return out, nil
}

func (s *stubRunner) Interpret(raw []byte, kind types.OutputKind) (types.Result, error) {
	if s.interpretErr != nil {
		return types.Result{}, s.interpretErr
	}
	return types.Result{Kind: kind, Text: string(raw)}, nil
}

func (s *stubRunner) Close() error { return nil }

func (s *stubRunner) counts() (infer, batch int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inferCalls, s.batchCalls
}

// newTestEngine builds an engine with small pools and registers Close on test
// cleanup.
func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e := New(EngineConfig{
		PrepareWorkers:    1,
		InferWorkers:      2,
		InterpretWorkers:  1,
		PendingQueueSize:  16,
		DispatchBatchSize: 8,
		CacheCapacity:     16,
	})
	t.Cleanup(func() { _ = e.Close() })
	return e
}

type doneWaiter interface {
	Done() <-chan struct{}
}

// drive pumps the scheduler until fut resolves or the deadline passes.
func drive(t *testing.T, e *Engine, fut doneWaiter) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		e.ProcessPendingTasks()
		select {
		case <-fut.Done():
			return
		case <-deadline:
			t.Fatalf("pipeline did not resolve in time")
		case <-time.After(time.Millisecond):
		}
	}
}
