package core_test

import (
	"fmt"
	"sync"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/velichkov/createrepo-c/core"
)

// recordingSink appends every chunk it receives, in call order, so tests can
// assert on the exact sequence OrderedSink produced.
type recordingSink struct {
	mu     sync.Mutex
	chunks []string
}

func (r *recordingSink) AppendChunk(chunk string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.chunks = append(r.chunks, chunk)
	return nil
}

func (r *recordingSink) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.chunks))
	copy(out, r.chunks)
	return out
}

var _ = Describe("OrderedSink", func() {
	var (
		primary, filelists, other *recordingSink
		sink                      *core.OrderedSink
	)

	BeforeEach(func() {
		primary = &recordingSink{}
		filelists = &recordingSink{}
		other = &recordingSink{}
		sink = core.NewOrderedSink(primary, filelists, other, [3]core.DatabaseSink{}, nil, nil, nil)
	})

	It("should emit chunks in id order even when workers finish out of order", func() {
		const n = 12
		var wg sync.WaitGroup
		// launch writers in reverse-id order; OrderedSink must still
		// serialize each stream by id.
		for id := n - 1; id >= 0; id-- {
			id := id
			wg.Add(1)
			go func() {
				defer wg.Done()
				triple := core.XmlTriple{
					Primary:   fmt.Sprintf("p%d", id),
					Filelists: fmt.Sprintf("f%d", id),
					Other:     fmt.Sprintf("o%d", id),
				}
				sink.Write(id, triple, nil)
			}()
		}
		wg.Wait()

		var wantP, wantF, wantO []string
		for id := 0; id < n; id++ {
			wantP = append(wantP, fmt.Sprintf("p%d", id))
			wantF = append(wantF, fmt.Sprintf("f%d", id))
			wantO = append(wantO, fmt.Sprintf("o%d", id))
		}
		Expect(primary.snapshot()).To(Equal(wantP))
		Expect(filelists.snapshot()).To(Equal(wantF))
		Expect(other.snapshot()).To(Equal(wantO))
	})

	It("should advance all three counters to len(tasks) (I4)", func() {
		const n = 5
		for id := 0; id < n; id++ {
			sink.Write(id, core.XmlTriple{}, nil)
		}
		pri, fil, oth := sink.Counters()
		Expect(pri).To(Equal(n))
		Expect(fil).To(Equal(n))
		Expect(oth).To(Equal(n))
	})

	It("should treat Skip as idempotent once a stream's counter has passed the id", func() {
		// id 0 succeeds normally; by the time Skip(0) is (hypothetically)
		// called again nothing should happen.
		sink.Write(0, core.XmlTriple{Primary: "p0"}, nil)
		sink.Skip(0) // already past: no-op, must not deadlock or double count
		pri, _, _ := sink.Counters()
		Expect(pri).To(Equal(1))
	})

	It("should let Skip and Write interleave across ids without blocking forever", func() {
		const n = 8
		var wg sync.WaitGroup
		for id := 0; id < n; id++ {
			id := id
			wg.Add(1)
			go func() {
				defer wg.Done()
				if id%2 == 0 {
					sink.Skip(id)
				} else {
					sink.Write(id, core.XmlTriple{Primary: fmt.Sprintf("p%d", id)}, nil)
				}
			}()
		}
		done := make(chan struct{})
		go func() { wg.Wait(); close(done) }()
		Eventually(done).Should(BeClosed())

		pri, fil, oth := sink.Counters()
		Expect(pri).To(Equal(n))
		Expect(fil).To(Equal(n))
		Expect(oth).To(Equal(n))
	})

	It("should call onWrite's start and stop around every AppendChunk, once per stream per id", func() {
		var mu sync.Mutex
		started := map[core.Stream]int{}
		stopped := map[core.Stream]int{}

		timed := core.NewOrderedSink(primary, filelists, other, [3]core.DatabaseSink{}, nil, nil,
			func(st core.Stream) func() {
				mu.Lock()
				started[st]++
				mu.Unlock()
				return func() {
					mu.Lock()
					stopped[st]++
					mu.Unlock()
				}
			},
		)

		timed.Write(0, core.XmlTriple{Primary: "p0", Filelists: "f0", Other: "o0"}, nil)

		mu.Lock()
		defer mu.Unlock()
		for _, st := range []core.Stream{core.StreamPrimary, core.StreamFilelists, core.StreamOther} {
			Expect(started[st]).To(Equal(1), "stream %s", st)
			Expect(stopped[st]).To(Equal(1), "stream %s", st)
		}
	})
})
