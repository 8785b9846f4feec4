package core_test

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/velichkov/createrepo-c/cmn/cos"
	"github.com/velichkov/createrepo-c/core"
	"github.com/velichkov/createrepo-c/objstore"
	"github.com/velichkov/createrepo-c/xmlfmt"
)

var _ = Describe("Run (end-to-end, pool-size independent ordering)", func() {
	for _, poolSize := range []int{1, 2, 4, 8} {
		poolSize := poolSize
		It(fmt.Sprintf("should emit every stream in strict id order with pool size %d", poolSize), func() {
			const n = 24
			dir, err := os.MkdirTemp("", "worker-test-*")
			Expect(err).NotTo(HaveOccurred())
			defer os.RemoveAll(dir)

			var tasks []*core.Task
			for id := 0; id < n; id++ {
				name := fmt.Sprintf("pkg-%02d.rpm", id)
				path := filepath.Join(dir, name)
				body := "CRPKG1\nSummary: pkg " + fmt.Sprint(id) + "\n\n\n"
				Expect(os.WriteFile(path, []byte(body), 0o644)).To(Succeed())
				tasks = append(tasks, core.NewTask(id, path, name, dir))
			}

			primary := &recordingSink{}
			filelists := &recordingSink{}
			other := &recordingSink{}
			ordered := core.NewOrderedSink(primary, filelists, other, [3]core.DatabaseSink{}, nil, nil, nil)

			cfg := &core.Config{
				ChecksumKind:   cos.ChecksumSHA256,
				RepoDirNameLen: len(dir),
				Extractor:      core.NewArtifactExtractor(objstore.NewLocalBackend(), nil),
				Formatter:      core.FormatterFunc(xmlfmt.Format),
				Sink:           ordered,
				Buffer:         core.NewReorderBuffer(),
			}

			Expect(core.Run(cfg, tasks, poolSize)).To(Succeed())

			Expect(primary.snapshot()).To(HaveLen(n))
			pri, fil, oth := ordered.Counters()
			Expect(pri).To(Equal(n))
			Expect(fil).To(Equal(n))
			Expect(oth).To(Equal(n))

			for i, chunk := range primary.snapshot() {
				want := fmt.Sprintf("pkg %d", i)
				Expect(chunk).To(ContainSubstring(want), "primary chunk %d out of order or wrong content", i)
			}
		})
	}

	It("should advance past a failing task without blocking its peers", func() {
		const n = 6
		dir, err := os.MkdirTemp("", "worker-fail-test-*")
		Expect(err).NotTo(HaveOccurred())
		defer os.RemoveAll(dir)

		var tasks []*core.Task
		for id := 0; id < n; id++ {
			name := fmt.Sprintf("pkg-%d.rpm", id)
			path := filepath.Join(dir, name)
			if id == 2 {
				// never created: this task's Extract fails when it opens the file to parse it.
				tasks = append(tasks, core.NewTask(id, filepath.Join(dir, "missing-2.rpm"), "missing-2.rpm", dir))
				continue
			}
			Expect(os.WriteFile(path, []byte("CRPKG1\nSummary: pkg\n\n\n"), 0o644)).To(Succeed())
			tasks = append(tasks, core.NewTask(id, path, name, dir))
		}

		primary := &recordingSink{}
		filelists := &recordingSink{}
		other := &recordingSink{}
		ordered := core.NewOrderedSink(primary, filelists, other, [3]core.DatabaseSink{}, nil, nil, nil)

		var failedIDs []int
		var mu sync.Mutex
		cfg := &core.Config{
			ChecksumKind:   cos.ChecksumSHA256,
			RepoDirNameLen: len(dir),
			Extractor:      core.NewArtifactExtractor(objstore.NewLocalBackend(), nil),
			Formatter:      core.FormatterFunc(xmlfmt.Format),
			Sink:           ordered,
			Buffer:         core.NewReorderBuffer(),
			OnFailure: func(id int, kind core.FailureKind, err error) {
				mu.Lock()
				failedIDs = append(failedIDs, id)
				mu.Unlock()
			},
		}

		Expect(core.Run(cfg, tasks, 4)).To(Succeed())

		pri, fil, oth := ordered.Counters()
		Expect(pri).To(Equal(n))
		Expect(fil).To(Equal(n))
		Expect(oth).To(Equal(n))
		Expect(failedIDs).To(ConsistOf(2))
		Expect(primary.snapshot()).To(HaveLen(n - 1))
	})
})
