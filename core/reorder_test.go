package core_test

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/velichkov/createrepo-c/core"
)

var _ = Describe("ReorderBuffer", func() {
	var buf *core.ReorderBuffer

	BeforeEach(func() {
		buf = core.NewReorderBuffer()
	})

	It("should refuse to defer the last task in the run (P5)", func() {
		res := &core.BufferedResult{ID: 4}
		Expect(buf.TryDefer(res, 5)).To(BeFalse())
		Expect(buf.Len()).To(Equal(0))
	})

	It("should accept deferring a non-last task", func() {
		res := &core.BufferedResult{ID: 2}
		Expect(buf.TryDefer(res, 5)).To(BeTrue())
		Expect(buf.Len()).To(Equal(1))
	})

	It("should refuse to defer once the buffer is at MaxBuffer", func() {
		for i := 0; i < core.MaxBuffer; i++ {
			res := &core.BufferedResult{ID: i + 100}
			Expect(buf.TryDefer(res, 100000)).To(BeTrue())
		}
		overflow := &core.BufferedResult{ID: 999}
		Expect(buf.TryDefer(overflow, 100000)).To(BeFalse())
		Expect(buf.Len()).To(Equal(core.MaxBuffer))
	})

	It("should pop only when the head matches nextID", func() {
		buf.TryDefer(&core.BufferedResult{ID: 5}, 100)
		_, ok := buf.PopIfReady(3)
		Expect(ok).To(BeFalse())

		res, ok := buf.PopIfReady(5)
		Expect(ok).To(BeTrue())
		Expect(res.ID).To(Equal(5))
		Expect(buf.Len()).To(Equal(0))
	})

	It("should always return the lowest-id entry first", func() {
		buf.TryDefer(&core.BufferedResult{ID: 7}, 100)
		buf.TryDefer(&core.BufferedResult{ID: 3}, 100)
		buf.TryDefer(&core.BufferedResult{ID: 5}, 100)

		res, ok := buf.PopIfReady(3)
		Expect(ok).To(BeTrue())
		Expect(res.ID).To(Equal(3))

		_, ok = buf.PopIfReady(4)
		Expect(ok).To(BeFalse())

		res, ok = buf.PopIfReady(5)
		Expect(ok).To(BeTrue())
		Expect(res.ID).To(Equal(5))
	})
})
