package engine

import "sync"

// batcher accumulates same-model tasks until a full batch is ready. There is
// no time-based flush: a buffer below max holds until enough further
// requests arrive, which under light load means indefinitely. Shutdown
// resolves held tasks with an error instead of stranding their futures.
type batcher struct {
	mu  sync.Mutex
	max int
	buf []*Task
}

func newBatcher(max int) *batcher {
	return &batcher{max: max, buf: make([]*Task, 0, max)}
}

// add appends t and, when the buffer reaches max, returns the full batch and
// clears the buffer. The caller executes the returned batch outside the lock.
func (b *batcher) add(t *Task) []*Task {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf = append(b.buf, t)
	if len(b.buf) < b.max {
		return nil
	}
	batch := b.buf
	b.buf = make([]*Task, 0, b.max)
	return batch
}

// fill reports the number of tasks currently held.
func (b *batcher) fill() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.buf)
}

// takeAll empties the buffer regardless of fill; used on unregister/close.
func (b *batcher) takeAll() []*Task {
	b.mu.Lock()
	defer b.mu.Unlock()
	batch := b.buf
	b.buf = nil
	return batch
}
