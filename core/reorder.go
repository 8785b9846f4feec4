package core

import (
	"container/heap"
	"sync"
)

// MaxBuffer is ReorderBuffer's hard-coded capacity (I5): small enough to
// cap memory under a slow sink, large enough to absorb tail skew. Not a
// runtime tuning knob, per spec §4.7/§9.
const MaxBuffer = 20

// BufferedResult is a completed-but-not-yet-writable result, held until its
// id becomes the current next_id_pri. LocationHrefCopy is populated only
// when PkgFromCache is true: the cache's borrowed LocationHref would
// otherwise outlive the worker that observed it while the result sits in
// the buffer.
type BufferedResult struct {
	ID               int
	Triple           XmlTriple
	Package          *ParsedPackage
	PkgFromCache     bool
	LocationHrefCopy string
}

type resultHeap []*BufferedResult

func (h resultHeap) Len() int            { return len(h) }
func (h resultHeap) Less(i, j int) bool  { return h[i].ID < h[j].ID }
func (h resultHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *resultHeap) Push(x any)         { *h = append(*h, x.(*BufferedResult)) }
func (h *resultHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}

// ReorderBuffer is a bounded min-heap of completed results awaiting their
// turn, ordered by id ascending, drained opportunistically by whichever
// worker advances the sink next.
type ReorderBuffer struct {
	mu sync.Mutex
	h  resultHeap
}

func NewReorderBuffer() *ReorderBuffer {
	return &ReorderBuffer{}
}

// TryDefer admits res iff the buffer has spare capacity, the caller has
// already determined res.ID is not the current next_id_pri, and res is not
// the last task (id+1 < n). The last-task exclusion guarantees the tail of
// the id space always makes progress (P5).
func (b *ReorderBuffer) TryDefer(res *BufferedResult, n int) bool {
	if res.ID+1 >= n {
		return false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.h) >= MaxBuffer {
		return false
	}
	heap.Push(&b.h, res)
	return true
}

// PopIfReady returns and removes the minimum-id entry iff its id equals
// nextID; otherwise it returns (nil, false) without mutating the buffer.
func (b *ReorderBuffer) PopIfReady(nextID int) (*BufferedResult, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.h) == 0 || b.h[0].ID != nextID {
		return nil, false
	}
	return heap.Pop(&b.h).(*BufferedResult), true
}

// Len reports the buffer's current length, for I5 assertions and metrics.
func (b *ReorderBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.h)
}
