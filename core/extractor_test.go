package core_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/velichkov/createrepo-c/cksum"
	"github.com/velichkov/createrepo-c/cmn/cos"
	"github.com/velichkov/createrepo-c/core"
	"github.com/velichkov/createrepo-c/objstore"
)

const sampleArtifact = "CRPKG1\n" +
	"Summary: a sample package\n" +
	"Arch: x86_64\n" +
	"Version: 1.0\n" +
	"Release: 1\n" +
	"\n" +
	"dev|1700000000|initial release\n" +
	"\n" +
	"PAYLOADBYTES"

var _ = Describe("ArtifactExtractor", func() {
	var (
		dir     string
		path    string
		backend objstore.Backend
	)

	BeforeEach(func() {
		var mkErr error
		dir, mkErr = os.MkdirTemp("", "extractor-test-*")
		Expect(mkErr).NotTo(HaveOccurred())
		path = filepath.Join(dir, "foo-1.0-1.x86_64.rpm")
		Expect(os.WriteFile(path, []byte(sampleArtifact), 0o644)).To(Succeed())
		backend = objstore.NewLocalBackend()
	})

	AfterEach(func() {
		os.RemoveAll(dir)
	})

	It("should parse the descriptor, stat, checksum, and header range", func() {
		ex := core.NewArtifactExtractor(backend, nil)
		pkg, err := ex.Extract(core.ExtractArgs{
			Path:           path,
			ChecksumKind:   cos.ChecksumSHA256,
			Href:           "packages/foo-1.0-1.x86_64.rpm",
			ChangelogLimit: 10,
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(pkg.Descriptor.Summary).To(Equal("a sample package"))
		Expect(pkg.Descriptor.Arch).To(Equal("x86_64"))
		Expect(pkg.Descriptor.ChangelogEntries).To(HaveLen(1))
		Expect(pkg.Descriptor.ChangelogEntries[0].Author).To(Equal("dev"))
		Expect(pkg.LocationHref).To(Equal("packages/foo-1.0-1.x86_64.rpm"))
		Expect(pkg.SizePackage).To(Equal(int64(len(sampleArtifact))))
		Expect(pkg.PkgID).NotTo(BeEmpty())
		Expect(pkg.RPMHeaderEnd).To(BeNumerically(">", 0))
		Expect(pkg.FromCache).To(BeFalse())
	})

	It("should return a typed *ExtractError for a missing file", func() {
		ex := core.NewArtifactExtractor(backend, nil)
		_, err := ex.Extract(core.ExtractArgs{
			Path:         filepath.Join(dir, "missing.rpm"),
			ChecksumKind: cos.ChecksumSHA256,
		})
		Expect(err).To(HaveOccurred())
		var extractErr *core.ExtractError
		Expect(err).To(BeAssignableToTypeOf(extractErr))
	})

	It("should memoize the checksum in the supplied index", func() {
		idx := cksum.NewIndex()
		ex := core.NewArtifactExtractor(backend, idx)
		pkg1, err := ex.Extract(core.ExtractArgs{
			Path:         path,
			ChecksumKind: cos.ChecksumSHA256,
			Href:         "packages/foo.rpm",
		})
		Expect(err).NotTo(HaveOccurred())

		// a second extract of the same file must hit the memoized digest,
		// not recompute it, since we can't observe that directly we just
		// assert it still succeeds and returns the same PkgID.
		pkg2, err := ex.Extract(core.ExtractArgs{
			Path:         path,
			ChecksumKind: cos.ChecksumSHA256,
			Href:         "packages/foo.rpm",
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(pkg2.PkgID).NotTo(BeEmpty())
		Expect(pkg2.PkgID).To(Equal(pkg1.PkgID))
	})

	It("should derive a bare descriptor for an unrecognized artifact format", func() {
		otherPath := filepath.Join(dir, "opaque.bin")
		Expect(os.WriteFile(otherPath, []byte("\x00\x01binary-not-our-format"), 0o644)).To(Succeed())

		ex := core.NewArtifactExtractor(backend, nil)
		pkg, err := ex.Extract(core.ExtractArgs{
			Path:         otherPath,
			ChecksumKind: cos.ChecksumSHA256,
			Href:         "packages/opaque.bin",
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(pkg.Descriptor.Summary).To(Equal("opaque.bin"))
	})
})
