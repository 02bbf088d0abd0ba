package engine

import (
	"sync"
	"testing"
	"time"
)

func TestPerfTrackerNoData(t *testing.T) {
	p := newPerfTracker()
	if _, ok := p.stats(); ok {
		t.Fatalf("expected no data indicator when count is zero")
	}
	if p.avgTotal() != 0 {
		t.Fatalf("avgTotal must be zero without samples")
	}
}

func TestPerfTrackerExactAverages(t *testing.T) {
	p := newPerfTracker()
	samples := [][3]time.Duration{
		{2 * time.Millisecond, 10 * time.Millisecond, 1 * time.Millisecond},
		{4 * time.Millisecond, 20 * time.Millisecond, 3 * time.Millisecond},
		{6 * time.Millisecond, 30 * time.Millisecond, 5 * time.Millisecond},
	}
	for _, s := range samples {
		p.record(s[0], s[1], s[2])
	}
	st, ok := p.stats()
	if !ok {
		t.Fatalf("expected stats")
	}
	if st.Count != 3 {
		t.Fatalf("count = %d, want 3", st.Count)
	}
	if st.AvgPrepareMs != 4 || st.AvgInferMs != 20 || st.AvgInterpretMs != 3 {
		t.Fatalf("unexpected stage averages: %+v", st)
	}
	// totals: 13, 27, 41 -> avg 27, min 13, max 41
	if st.AvgTotalMs != 27 || st.MinTotalMs != 13 || st.MaxTotalMs != 41 {
		t.Fatalf("unexpected totals: %+v", st)
	}
}

func TestPerfTrackerConcurrentRecord(t *testing.T) {
	p := newPerfTracker()
	const workers = 8
	const perWorker = 100
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				p.record(time.Millisecond, time.Millisecond, time.Millisecond)
			}
		}()
	}
	wg.Wait()
	st, ok := p.stats()
	if !ok || st.Count != workers*perWorker {
		t.Fatalf("count = %d, want %d", st.Count, workers*perWorker)
	}
	if st.AvgTotalMs != 3 {
		t.Fatalf("avg total = %v, want 3", st.AvgTotalMs)
	}
}
