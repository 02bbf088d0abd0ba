package engine

import (
	"fmt"
	"testing"
	"time"

	"inferd/pkg/types"
)

func TestBatcherFlushesExactlyAtMax(t *testing.T) {
	b := newBatcher(4)
	for i := 0; i < 3; i++ {
		if got := b.add(queuedTask(1)); got != nil {
			t.Fatalf("flush before max at %d tasks", i+1)
		}
	}
	if b.fill() != 3 {
		t.Fatalf("fill = %d, want 3", b.fill())
	}
	batch := b.add(queuedTask(1))
	if len(batch) != 4 {
		t.Fatalf("flush returned %d tasks, want 4", len(batch))
	}
	if b.fill() != 0 {
		t.Fatalf("buffer not cleared after flush")
	}
}

func TestBatcherTakeAll(t *testing.T) {
	b := newBatcher(4)
	b.add(queuedTask(0))
	b.add(queuedTask(0))
	if got := len(b.takeAll()); got != 2 {
		t.Fatalf("takeAll returned %d", got)
	}
	if b.fill() != 0 {
		t.Fatalf("buffer not empty after takeAll")
	}
}

// Batch assembly through the whole pipeline: three submissions cause no model
// invocation; the fourth triggers exactly one batched call and each future
// receives its own sentinel output.
func TestBatchAssemblyEndToEnd(t *testing.T) {
	e := newTestEngine(t)
	stub := &stubRunner{}
	err := e.RegisterModel("b", stub, types.ModelConfig{
		BatchingEnabled: true,
		MaxBatchSize:    4,
		QueueCapacity:   10,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	futs := make([]*Future, 0, 4)
	for i := 0; i < 3; i++ {
		fut, err := e.Execute("b", []byte(fmt.Sprintf("in-%d", i)), types.OutputText, 1)
		if err != nil {
			t.Fatalf("execute %d: %v", i, err)
		}
		futs = append(futs, fut)
	}
	// push the three tasks through prepare into the batcher
	deadline := time.Now().Add(time.Second)
	for e.Status().LaneDepths != [4]int{} || batcherFill(e, "b") < 3 {
		e.ProcessPendingTasks()
		if time.Now().After(deadline) {
			t.Fatalf("tasks did not reach the batcher")
		}
		time.Sleep(time.Millisecond)
	}
	if _, batches := stub.counts(); batches != 0 {
		t.Fatalf("model invoked with a partial batch")
	}
	for _, fut := range futs {
		if fut.IsDone() {
			t.Fatalf("future resolved before the batch was full")
		}
	}

	fut, err := e.Execute("b", []byte("in-3"), types.OutputText, 1)
	if err != nil {
		t.Fatalf("execute 4th: %v", err)
	}
	futs = append(futs, fut)
	drive(t, e, fut)

	infers, batches := stub.counts()
	if infers != 0 || batches != 1 {
		t.Fatalf("want exactly one batched invocation, got infer=%d batch=%d", infers, batches)
	}
	stub.mu.Lock()
	sizes := append([]int(nil), stub.batchSizes...)
	stub.mu.Unlock()
	if len(sizes) != 1 || sizes[0] != 4 {
		t.Fatalf("batch sizes = %v, want [4]", sizes)
	}
	for i, f := range futs {
		res, err := f.GetTimeout(time.Second)
		if err != nil {
			t.Fatalf("future %d: %v", i, err)
		}
		want := fmt.Sprintf("out:in-%d", i)
		if res.Text != want {
			t.Fatalf("future %d routed wrong output: got %q want %q", i, res.Text, want)
		}
	}
}

func batcherFill(e *Engine, modelID string) int {
	for _, m := range e.Status().Models {
		if m.ModelID == modelID {
			return m.BatchFill
		}
	}
	return 0
}
