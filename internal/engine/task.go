package engine

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"inferd/pkg/types"
)

// TaskState tracks a task's position in the pipeline.
type TaskState string

const (
	StateCreated      TaskState = "created"
	StateQueued       TaskState = "queued"
	StatePreparing    TaskState = "preparing"
	StateQueuedInfer  TaskState = "queued_infer"
	StateBatching     TaskState = "batching"
	StateInferring    TaskState = "inferring"
	StateInterpreting TaskState = "interpreting"
	StateCompleted    TaskState = "completed"
	StateFailed       TaskState = "failed"
	StateCancelled    TaskState = "cancelled"
)

// Task is one unit of work: a single model invocation moving through the
// prepare/infer/interpret pipeline. A task owns exactly one Future and is
// never shared between requests.
type Task struct {
	id         string
	modelID    string
	input      []byte
	outputKind types.OutputKind
	priority   int
	createdAt  time.Time

	mu    sync.Mutex
	state TaskState

	// Populated as the task moves through stages. Each field is written by
	// exactly one stage before the task is handed downstream.
	prepared     []byte
	raw          []byte
	prepareDur   time.Duration
	inferDur     time.Duration
	interpretDur time.Duration

	future *Future
	// multi links a constituent task back to its aggregate; nil for
	// standalone tasks.
	multi *MultiFuture
}

func newTask(modelID string, input []byte, kind types.OutputKind, priority int) *Task {
	t := &Task{
		id:         uuid.NewString(),
		modelID:    modelID,
		input:      input,
		outputKind: kind,
		priority:   clampPriority(priority),
		createdAt:  time.Now(),
		state:      StateCreated,
	}
	t.future = newFuture(t)
	return t
}

func clampPriority(p int) int {
	if p < PriorityMin {
		return PriorityMin
	}
	if p > PriorityMax {
		return PriorityMax
	}
	return p
}

// ID returns the task's unique identifier.
func (t *Task) ID() string { return t.id }

// State returns the task's current pipeline state.
func (t *Task) State() TaskState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// begin moves the task into next unless it already reached a terminal state.
// Workers call it at each stage boundary and drop the task on false, which is
// how cancellation observed mid-pipeline takes effect.
func (t *Task) begin(next TaskState) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch t.state {
	case StateCompleted, StateFailed, StateCancelled:
		return false
	}
	t.state = next
	return true
}

// tryCancel honors cancellation only before inference begins. Once a task is
// batching or inferring the model call is already committed and runs to
// completion.
func (t *Task) tryCancel() bool {
	t.mu.Lock()
	switch t.state {
	case StateCreated, StateQueued, StatePreparing, StateQueuedInfer:
		t.state = StateCancelled
	default:
		t.mu.Unlock()
		return false
	}
	t.mu.Unlock()
	err := cancelledError{taskID: t.id}
	tasksFinishedTotal.WithLabelValues(t.modelID, "cancelled").Inc()
	t.future.resolve(types.Result{}, err, true)
	if t.multi != nil {
		t.multi.failAggregate(err)
	}
	return true
}

// complete resolves the task and its future with a typed result, and
// contributes to the aggregate when the task belongs to a multi-model request.
func (t *Task) complete(res types.Result) {
	if !t.begin(StateCompleted) {
		return
	}
	t.future.resolve(res, nil, false)
	if t.multi != nil {
		t.multi.contribute(t.modelID, res)
	}
}

// fail resolves the task and its future with err. For multi-model requests
// the first failing constituent fails the whole aggregate, discarding any
// partial results.
func (t *Task) fail(err error) {
	if !t.begin(StateFailed) {
		return
	}
	t.future.resolve(types.Result{}, err, false)
	if t.multi != nil {
		t.multi.failAggregate(err)
	}
}
