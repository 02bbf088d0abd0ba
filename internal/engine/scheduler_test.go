package engine

import (
	"testing"

	"inferd/pkg/types"
)

func queuedTask(priority int) *Task {
	return newTask("m", []byte("x"), types.OutputText, priority)
}

func TestSchedulerStrictPriorityOrder(t *testing.T) {
	s := newScheduler()
	t3 := queuedTask(3)
	t1 := queuedTask(1)
	t2 := queuedTask(2)
	s.submit(t3)
	s.submit(t1)
	s.submit(t2)

	first := s.nextBatch(10)
	if len(first) != 1 || first[0] != t3 {
		t.Fatalf("first batch must contain only the priority-3 task, got %d tasks", len(first))
	}
	second := s.nextBatch(10)
	if len(second) != 1 || second[0] != t2 {
		t.Fatalf("second batch must drain priority 2, got %v", second)
	}
	third := s.nextBatch(10)
	if len(third) != 1 || third[0] != t1 {
		t.Fatalf("third batch must drain priority 1")
	}
	if got := s.nextBatch(10); got != nil {
		t.Fatalf("expected empty scheduler, got %d tasks", len(got))
	}
}

func TestSchedulerLowerLanesUntouched(t *testing.T) {
	s := newScheduler()
	s.submit(queuedTask(0))
	s.submit(queuedTask(3))
	s.submit(queuedTask(3))

	batch := s.nextBatch(1)
	if len(batch) != 1 || batch[0].priority != 3 {
		t.Fatalf("expected one priority-3 task")
	}
	d := s.depths()
	if d[0] != 1 || d[3] != 1 {
		t.Fatalf("lower lane touched: depths %v", d)
	}
}

func TestSchedulerPriorityClamped(t *testing.T) {
	if p := newTask("m", nil, types.OutputText, 9).priority; p != PriorityMax {
		t.Fatalf("expected clamp to %d, got %d", PriorityMax, p)
	}
	if p := newTask("m", nil, types.OutputText, -2).priority; p != PriorityMin {
		t.Fatalf("expected clamp to %d, got %d", PriorityMin, p)
	}
}

func TestSchedulerSkipsCancelledTasks(t *testing.T) {
	s := newScheduler()
	tc := queuedTask(2)
	tl := queuedTask(2)
	s.submit(tc)
	s.submit(tl)
	if !tc.tryCancel() {
		t.Fatalf("cancel queued task")
	}
	batch := s.nextBatch(10)
	if len(batch) != 1 || batch[0] != tl {
		t.Fatalf("cancelled task must be discarded, got %d tasks", len(batch))
	}
}

func TestSchedulerMaxItems(t *testing.T) {
	s := newScheduler()
	for i := 0; i < 5; i++ {
		s.submit(queuedTask(1))
	}
	if got := len(s.nextBatch(2)); got != 2 {
		t.Fatalf("expected 2 tasks, got %d", got)
	}
	if got := len(s.nextBatch(10)); got != 3 {
		t.Fatalf("expected remaining 3 tasks, got %d", got)
	}
}

func TestSchedulerDrain(t *testing.T) {
	s := newScheduler()
	s.submit(queuedTask(0))
	s.submit(queuedTask(3))
	if got := len(s.drain()); got != 2 {
		t.Fatalf("drain returned %d tasks", got)
	}
	if got := s.nextBatch(10); got != nil {
		t.Fatalf("scheduler not empty after drain")
	}
}
