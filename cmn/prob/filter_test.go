package prob_test

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/velichkov/createrepo-c/cmn/prob"
)

var _ = Describe("Filter", func() {
	It("should report Lookup misses on an empty filter", func() {
		f := prob.NewDefaultFilter(100)
		Expect(f.Lookup([]byte("pkg-1.rpm"))).To(BeFalse())
	})

	It("should find an inserted element", func() {
		f := prob.NewDefaultFilter(100)
		f.Insert([]byte("pkg-1.rpm"))
		Expect(f.Lookup([]byte("pkg-1.rpm"))).To(BeTrue())
		Expect(f.Lookup([]byte("pkg-2.rpm"))).To(BeFalse())
	})

	It("should not find a deleted element", func() {
		f := prob.NewDefaultFilter(100)
		f.Insert([]byte("pkg-1.rpm"))
		f.Delete([]byte("pkg-1.rpm"))
		Expect(f.Lookup([]byte("pkg-1.rpm"))).To(BeFalse())
	})

	It("should track Count across Insert/Delete", func() {
		f := prob.NewDefaultFilter(100)
		f.Insert([]byte("a"))
		f.Insert([]byte("b"))
		Expect(f.Count()).To(Equal(uint(2)))
		f.Delete([]byte("a"))
		Expect(f.Count()).To(Equal(uint(1)))
	})

	It("should clear everything on Reset", func() {
		f := prob.NewDefaultFilter(100)
		f.Insert([]byte("a"))
		f.Reset()
		Expect(f.Lookup([]byte("a"))).To(BeFalse())
		Expect(f.Count()).To(Equal(uint(0)))
	})
})
