package engine

import (
	"sync"
	"time"

	"inferd/pkg/types"
)

// perfTracker aggregates per-model stage timings. Record is called
// concurrently by interpret workers; a single mutex covers the handful of
// counter updates. Averages are computed on read, never stored.
type perfTracker struct {
	mu        sync.Mutex
	count     uint64
	prepSum   time.Duration
	inferSum  time.Duration
	interpSum time.Duration
	minTotal  time.Duration
	maxTotal  time.Duration
}

func newPerfTracker() *perfTracker { return &perfTracker{} }

func (p *perfTracker) record(prepare, infer, interpret time.Duration) {
	total := prepare + infer + interpret
	p.mu.Lock()
	defer p.mu.Unlock()
	p.count++
	p.prepSum += prepare
	p.inferSum += infer
	p.interpSum += interpret
	if p.count == 1 || total < p.minTotal {
		p.minTotal = total
	}
	if total > p.maxTotal {
		p.maxTotal = total
	}
}

// stats returns the aggregate view; ok is false while no samples exist.
func (p *perfTracker) stats() (types.ModelStats, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.count == 0 {
		return types.ModelStats{}, false
	}
	n := float64(p.count)
	return types.ModelStats{
		Count:          p.count,
		AvgPrepareMs:   durMs(p.prepSum) / n,
		AvgInferMs:     durMs(p.inferSum) / n,
		AvgInterpretMs: durMs(p.interpSum) / n,
		AvgTotalMs:     durMs(p.prepSum+p.inferSum+p.interpSum) / n,
		MinTotalMs:     durMs(p.minTotal),
		MaxTotalMs:     durMs(p.maxTotal),
	}, true
}

// avgTotal is the optimizer's ordering key; zero while no samples exist.
func (p *perfTracker) avgTotal() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.count == 0 {
		return 0
	}
	return (p.prepSum + p.inferSum + p.interpSum) / time.Duration(p.count)
}

func durMs(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
