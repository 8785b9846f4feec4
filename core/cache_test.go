package core_test

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/velichkov/createrepo-c/cmn/cos"
	"github.com/velichkov/createrepo-c/cmn/prob"
	"github.com/velichkov/createrepo-c/core"
)

type fakeCache struct {
	byName map[string]*core.CacheEntry
}

func (c *fakeCache) ByFilename(name string) (*core.CacheEntry, bool) {
	e, ok := c.byName[name]
	return e, ok
}

var _ = Describe("CacheLookup", func() {
	var entry *core.CacheEntry

	BeforeEach(func() {
		entry = &core.ParsedPackage{
			Name:             "foo",
			TimeFile:         100,
			SizePackage:      200,
			ChecksumKindName: cos.ChecksumSHA256,
			FromCache:        true,
		}
	})

	It("should report a miss for a filename not in the cache", func() {
		cache := &fakeCache{byName: map[string]*core.CacheEntry{}}
		cl := core.NewCacheLookup(cache, nil, false)
		_, ok := cl.Lookup("missing.rpm")
		Expect(ok).To(BeFalse())
	})

	It("should find an entry present in the cache", func() {
		cache := &fakeCache{byName: map[string]*core.CacheEntry{"foo.rpm": entry}}
		cl := core.NewCacheLookup(cache, nil, false)
		got, ok := cl.Lookup("foo.rpm")
		Expect(ok).To(BeTrue())
		Expect(got).To(Equal(entry))
	})

	It("should short-circuit to a miss when the cuckoo filter says never-inserted", func() {
		cache := &fakeCache{byName: map[string]*core.CacheEntry{"foo.rpm": entry}}
		filter := prob.NewDefaultFilter(10) // foo.rpm never inserted
		cl := core.NewCacheLookup(cache, filter, false)
		_, ok := cl.Lookup("foo.rpm")
		Expect(ok).To(BeFalse())
	})

	It("should report fresh when mtime, size, and checksum kind all match", func() {
		cl := core.NewCacheLookup(nil, nil, false)
		fresh := cl.IsFresh(entry, core.FsStat{Mtime: 100, Size: 200}, cos.ChecksumSHA256)
		Expect(fresh).To(BeTrue())
	})

	It("should report stale when mtime differs", func() {
		cl := core.NewCacheLookup(nil, nil, false)
		fresh := cl.IsFresh(entry, core.FsStat{Mtime: 101, Size: 200}, cos.ChecksumSHA256)
		Expect(fresh).To(BeFalse())
	})

	It("should report stale when the requested checksum kind differs", func() {
		cl := core.NewCacheLookup(nil, nil, false)
		fresh := cl.IsFresh(entry, core.FsStat{Mtime: 100, Size: 200}, cos.ChecksumMD5)
		Expect(fresh).To(BeFalse())
	})

	It("should always report fresh when SkipStat is set", func() {
		cl := core.NewCacheLookup(nil, nil, true)
		fresh := cl.IsFresh(entry, core.FsStat{Mtime: 999, Size: 999}, cos.ChecksumMD5)
		Expect(fresh).To(BeTrue())
	})

	It("should rebind location fields in place", func() {
		cl := core.NewCacheLookup(nil, nil, false)
		cl.RebindLocation(entry, "packages/foo-2.rpm", "https://mirror.example/repo")
		Expect(entry.LocationHref).To(Equal("packages/foo-2.rpm"))
		Expect(entry.LocationBase).To(Equal("https://mirror.example/repo"))
	})
})
