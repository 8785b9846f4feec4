package core

import (
	"time"

	"github.com/pkg/errors"

	"github.com/velichkov/createrepo-c/cksum"
	"github.com/velichkov/createrepo-c/cmn/cos"
	"github.com/velichkov/createrepo-c/objstore"
)

// ArtifactExtractor parses one artifact from disk: its internal descriptor
// tables, content checksum, and header byte range.
type ArtifactExtractor struct {
	Backend       objstore.Backend
	ChecksumIndex *cksum.Index // optional; nil disables memoization
}

func NewArtifactExtractor(backend objstore.Backend, idx *cksum.Index) *ArtifactExtractor {
	return &ArtifactExtractor{Backend: backend, ChecksumIndex: idx}
}

// ExtractArgs bundles extract's parameters; optionalStat, when non-nil, is
// the stat already obtained by the caller (WorkerLoop step 2) so extract
// does not stat twice.
type ExtractArgs struct {
	Path           string
	ChecksumKind   cos.CksumKind
	Href           string
	Base           string
	ChangelogLimit int
	OptionalStat   *FsStat
}

// Extract parses path's internal tables, interns location/checksum-kind
// strings, obtains mtime/size, computes the content checksum (optionally
// memoized), and computes the header byte range — in that order, per
// spec's five-step ArtifactExtractor.extract. Any failure frees any partial
// package and returns a typed *ExtractError.
func (x *ArtifactExtractor) Extract(args ExtractArgs) (*ParsedPackage, error) {
	desc, err := x.parseTables(args.Path, args.ChangelogLimit)
	if err != nil {
		return nil, &ExtractError{Kind: ExtractParseFailure, Cause: err}
	}

	pkg := &ParsedPackage{
		ChecksumKindName: args.ChecksumKind,
		LocationHref:     args.Href,
		LocationBase:     args.Base,
		Descriptor:       *desc,
	}

	var mtime time.Time
	var size int64
	if args.OptionalStat != nil {
		mtime = time.Unix(args.OptionalStat.Mtime, 0)
		size = args.OptionalStat.Size
	} else {
		mtime, size, err = x.Backend.Stat(args.Path)
		if err != nil {
			return nil, &ExtractError{Kind: ExtractStatFailure, Cause: err}
		}
	}
	pkg.TimeFile = mtime.Unix()
	pkg.SizePackage = size

	digest, err := x.checksum(args.Path, args.ChecksumKind, mtime.Unix(), size)
	if err != nil {
		return nil, &ExtractError{Kind: ExtractChecksumFailure, Cause: err}
	}
	pkg.PkgID = digest
	pkg.Name = args.Href

	start, end, err := x.headerRange(args.Path)
	if err != nil {
		return nil, &ExtractError{Kind: ExtractHeaderRangeFailure, Cause: err}
	}
	pkg.RPMHeaderStart, pkg.RPMHeaderEnd = start, end

	return pkg, nil
}

func (x *ArtifactExtractor) checksum(path string, kind cos.CksumKind, mtime, size int64) (string, error) {
	kindName := string(kind)
	if x.ChecksumIndex != nil {
		if digest, ok := x.ChecksumIndex.Lookup(path, mtime, size, kindName); ok {
			return digest, nil
		}
	}
	r, err := x.Backend.Open(path)
	if err != nil {
		return "", errors.Wrapf(err, "open %s", path)
	}
	defer r.Close()

	digest, err := cksum.ChecksumFile(r, kind)
	if err != nil {
		return "", err
	}
	if x.ChecksumIndex != nil {
		x.ChecksumIndex.Store(path, mtime, size, kindName, digest)
	}
	return digest, nil
}

// parseTables parses the artifact's internal descriptor and changelog
// tables, capping the changelog at changelogLimit entries. A complete
// createrepo_c equivalent reads this from the package's own header section
// (RPM tag table, deb control file, ...); here it calls parseDescriptor,
// the generic reader in descriptor_parse.go. Extract calls through this
// narrow seam so the rest of the pipeline does not depend on the format.
func (x *ArtifactExtractor) parseTables(path string, changelogLimit int) (*Descriptor, error) {
	return parseDescriptor(x.Backend, path, changelogLimit)
}

// headerRange computes the byte offsets of the artifact's internal header
// section, used by consumers that need to re-slice the original file
// without re-parsing it.
func (x *ArtifactExtractor) headerRange(path string) (start, end int64, err error) {
	return headerByteRange(x.Backend, path)
}
