package core_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/velichkov/createrepo-c/cmn/cos"
	"github.com/velichkov/createrepo-c/core"
	"github.com/velichkov/createrepo-c/objstore"
	"github.com/velichkov/createrepo-c/xmlfmt"
)

var _ = Describe("WorkerLoop cache accounting", func() {
	It("should report a cache hit and no miss when the cached entry is fresh", func() {
		dir, err := os.MkdirTemp("", "cache-result-test-*")
		Expect(err).NotTo(HaveOccurred())
		defer os.RemoveAll(dir)

		name := "pkg.rpm"
		path := filepath.Join(dir, name)
		Expect(os.WriteFile(path, []byte("CRPKG1\nSummary: pkg\n\n\n"), 0o644)).To(Succeed())

		fi, err := os.Stat(path)
		Expect(err).NotTo(HaveOccurred())

		cachedEntry := &core.ParsedPackage{
			Name:             "packages/pkg.rpm",
			PkgID:            "cached-digest",
			ChecksumKindName: cos.ChecksumSHA256,
			TimeFile:         fi.ModTime().Unix(),
			SizePackage:      fi.Size(),
			FromCache:        true,
		}
		cache := &fakeCache{byName: map[string]*core.CacheEntry{name: cachedEntry}}
		cacheLU := core.NewCacheLookup(cache, nil, false)

		primary := &recordingSink{}
		filelists := &recordingSink{}
		other := &recordingSink{}
		ordered := core.NewOrderedSink(primary, filelists, other, [3]core.DatabaseSink{}, nil, nil, nil)

		var hits, misses int
		cfg := &core.Config{
			ChecksumKind:   cos.ChecksumSHA256,
			RepoDirNameLen: len(dir),
			Extractor:      core.NewArtifactExtractor(objstore.NewLocalBackend(), nil),
			Formatter:      core.FormatterFunc(xmlfmt.Format),
			CacheLU:        cacheLU,
			Sink:           ordered,
			Buffer:         core.NewReorderBuffer(),
			OnCacheResult: func(hit bool) {
				if hit {
					hits++
				} else {
					misses++
				}
			},
		}

		task := core.NewTask(0, path, name, dir)
		Expect(core.Run(cfg, []*core.Task{task}, 1)).To(Succeed())

		Expect(hits).To(Equal(1))
		Expect(misses).To(Equal(0))
		Expect(primary.snapshot()).To(HaveLen(1))
	})
})
