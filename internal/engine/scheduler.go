package engine

import "sync"

// Priority lane bounds. Lane 3 drains before lane 2 and so on; a sustained
// stream of priority-3 work starves lower lanes indefinitely. That strict,
// non-weighted policy is deliberate and callers rely on it.
const (
	PriorityMin = 0
	PriorityMax = 3
	numLanes    = PriorityMax + 1
)

// scheduler holds not-yet-dispatched tasks in four strict-priority lanes.
// One mutex keeps nextBatch atomic with respect to concurrent submits.
type scheduler struct {
	mu    sync.Mutex
	lanes [numLanes][]*Task
}

func newScheduler() *scheduler { return &scheduler{} }

// submit places the task into the lane matching its (already clamped)
// priority and marks it queued.
func (s *scheduler) submit(t *Task) {
	if !t.begin(StateQueued) {
		return
	}
	s.mu.Lock()
	s.lanes[t.priority] = append(s.lanes[t.priority], t)
	s.mu.Unlock()
}

// nextBatch returns up to max tasks from the first non-empty lane, scanning
// from highest priority down. Lower lanes are untouched while a higher lane
// has any ready task. Tasks cancelled while queued are discarded here; their
// futures were already resolved by Cancel.
func (s *scheduler) nextBatch(max int) []*Task {
	if max <= 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for lane := PriorityMax; lane >= PriorityMin; lane-- {
		for len(s.lanes[lane]) > 0 {
			n := max
			if n > len(s.lanes[lane]) {
				n = len(s.lanes[lane])
			}
			out := make([]*Task, 0, n)
			for _, t := range s.lanes[lane][:n] {
				if t.State() == StateCancelled {
					continue
				}
				out = append(out, t)
			}
			s.lanes[lane] = s.lanes[lane][n:]
			if len(out) > 0 {
				return out
			}
			// whole slice was cancelled; retry the same lane before
			// falling through to a lower one
		}
	}
	return nil
}

// depths reports queued tasks per lane, index 0 (lowest) to 3 (highest).
func (s *scheduler) depths() [numLanes]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	var d [numLanes]int
	for i := range s.lanes {
		d[i] = len(s.lanes[i])
	}
	return d
}

// drain removes and returns every queued task; used on shutdown so stranded
// tasks resolve with an error instead of disappearing.
func (s *scheduler) drain() []*Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*Task
	for i := range s.lanes {
		out = append(out, s.lanes[i]...)
		s.lanes[i] = nil
	}
	return out
}
