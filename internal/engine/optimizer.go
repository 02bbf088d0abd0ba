package engine

import (
	"sort"
	"sync"
	"time"
)

// optimizer chooses an execution order for multi-model requests: ascending
// average total latency, cheapest model first. Models with no recorded
// samples default to zero and therefore schedule first. The latency table is
// a snapshot refreshed by OptimizeRuntime, not a live view; no inter-model
// data dependency is modeled.
type optimizer struct {
	mu      sync.Mutex
	latency map[string]time.Duration
}

func newOptimizer() *optimizer {
	return &optimizer{latency: make(map[string]time.Duration)}
}

// refresh replaces the latency table.
func (o *optimizer) refresh(table map[string]time.Duration) {
	o.mu.Lock()
	o.latency = table
	o.mu.Unlock()
}

// order returns ids sorted by ascending known latency, preserving submission
// order among models with equal (or unknown) latency.
func (o *optimizer) order(ids []string) []string {
	o.mu.Lock()
	table := o.latency
	o.mu.Unlock()

	out := make([]string, len(ids))
	copy(out, ids)
	sort.SliceStable(out, func(i, j int) bool {
		return table[out[i]] < table[out[j]]
	})
	return out
}
