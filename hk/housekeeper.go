// Package hk provides a mechanism for registering callbacks which are
// invoked at specified intervals for the lifetime of a run. The CLI
// registers one callback, the periodic disk-I/O stats sample.
package hk

import (
	"container/heap"
	"sync"
	"time"

	"github.com/velichkov/createrepo-c/cmn/nlog"
)

// CB is a housekeeping callback. Its return value is the delay until the
// next invocation; returning 0 unregisters the callback.
type CB func() time.Duration

type request struct {
	f        CB
	name     string
	due      time.Time
	initial  time.Duration
	registerTime time.Time
}

type requestHeap []*request

func (h requestHeap) Len() int            { return len(h) }
func (h requestHeap) Less(i, j int) bool  { return h[i].due.Before(h[j].due) }
func (h requestHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *requestHeap) Push(x any)         { *h = append(*h, x.(*request)) }
func (h *requestHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}

// Housekeeper runs registered callbacks on their own schedule, one goroutine
// for the whole process.
type Housekeeper struct {
	mu      sync.Mutex
	h       requestHeap
	signal  chan struct{}
	stop    chan struct{}
	started chan struct{}
	startOnce sync.Once
	stopOnce  sync.Once
}

var DefaultHK = New()

func New() *Housekeeper {
	return &Housekeeper{
		signal:  make(chan struct{}, 1),
		stop:    make(chan struct{}),
		started: make(chan struct{}),
	}
}

// TestInit resets the default housekeeper; used only by tests that need a
// clean schedule between runs.
func TestInit() { DefaultHK = New() }

// WaitStarted blocks until Run has entered its main loop.
func WaitStarted() { <-DefaultHK.started }

// RegisterCB registers f to run first after initial, then on whatever
// interval f itself returns.
func (hk *Housekeeper) RegisterCB(name string, f CB, initial time.Duration) {
	hk.mu.Lock()
	heap.Push(&hk.h, &request{f: f, name: name, due: time.Now().Add(initial), initial: initial, registerTime: time.Now()})
	hk.mu.Unlock()
	hk.wake()
}

func (hk *Housekeeper) wake() {
	select {
	case hk.signal <- struct{}{}:
	default:
	}
}

// Run is the housekeeper's main loop; call it in its own goroutine.
func (hk *Housekeeper) Run() {
	hk.startOnce.Do(func() { close(hk.started) })
	for {
		timer := hk.nextTimer()
		select {
		case <-hk.stop:
			return
		case <-hk.signal:
			continue
		case <-timer:
			hk.fire()
		}
	}
}

func (hk *Housekeeper) nextTimer() <-chan time.Time {
	hk.mu.Lock()
	defer hk.mu.Unlock()
	if len(hk.h) == 0 {
		return make(chan time.Time) // never fires; woken by RegisterCB/Stop
	}
	d := time.Until(hk.h[0].due)
	if d < 0 {
		d = 0
	}
	return time.After(d)
}

func (hk *Housekeeper) fire() {
	hk.mu.Lock()
	if len(hk.h) == 0 || time.Now().Before(hk.h[0].due) {
		hk.mu.Unlock()
		return
	}
	req := heap.Pop(&hk.h).(*request)
	hk.mu.Unlock()

	next := req.f()
	if next <= 0 {
		nlog.Infof("hk: %s unregistered", req.name)
		return
	}
	req.due = time.Now().Add(next)
	hk.mu.Lock()
	heap.Push(&hk.h, req)
	hk.mu.Unlock()
}

// Stop terminates the main loop. Safe to call more than once.
func (hk *Housekeeper) Stop() {
	hk.stopOnce.Do(func() { close(hk.stop) })
}
