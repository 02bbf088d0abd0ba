package engine

import (
	"testing"
	"time"
)

func TestOptimizerOrdersByAscendingLatency(t *testing.T) {
	o := newOptimizer()
	o.refresh(map[string]time.Duration{
		"slow":   30 * time.Millisecond,
		"fast":   5 * time.Millisecond,
		"medium": 15 * time.Millisecond,
	})
	got := o.order([]string{"slow", "fast", "medium"})
	want := []string{"fast", "medium", "slow"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestOptimizerUnseenModelsFirst(t *testing.T) {
	o := newOptimizer()
	o.refresh(map[string]time.Duration{"known": 10 * time.Millisecond})
	got := o.order([]string{"known", "unseen"})
	if got[0] != "unseen" || got[1] != "known" {
		t.Fatalf("unseen model must schedule first, got %v", got)
	}
}

func TestOptimizerStableForEqualLatency(t *testing.T) {
	o := newOptimizer()
	got := o.order([]string{"a", "b", "c"})
	for i, id := range []string{"a", "b", "c"} {
		if got[i] != id {
			t.Fatalf("order must be stable without data, got %v", got)
		}
	}
}

func TestOptimizerDoesNotMutateInput(t *testing.T) {
	o := newOptimizer()
	o.refresh(map[string]time.Duration{"a": 20 * time.Millisecond, "b": time.Millisecond})
	in := []string{"a", "b"}
	_ = o.order(in)
	if in[0] != "a" || in[1] != "b" {
		t.Fatalf("input slice mutated: %v", in)
	}
}
