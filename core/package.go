package core

import "github.com/velichkov/createrepo-c/cmn/cos"

// DepEntry is one entry of a dependency-style list (requires, provides,
// conflicts, ...).
type DepEntry struct {
	Name    string
	Flags   string // e.g. "EQ", "GE", "LE"; empty for unversioned deps
	Epoch   string
	Version string
	Release string
	Pre     bool // pre-install/pre-transaction dependency
}

// FileEntry is one entry of the filelists stream.
type FileEntry struct {
	Path    string
	IsDir   bool
	IsGhost bool
}

// ChangelogEntry is one entry of the other stream, capped at
// ArtifactExtractor's changelog_limit.
type ChangelogEntry struct {
	Author string
	Date   int64 // seconds since epoch
	Text   string
}

// Descriptor carries the descriptive fields XmlFormatter consumes, beyond
// the identity/location fields that live directly on ParsedPackage.
type Descriptor struct {
	Summary      string
	Description  string
	URL          string
	Vendor       string
	License      string
	Group        string
	Arch         string
	Epoch        string
	Version      string
	Release      string
	BuildTime    int64
	PackagerName string
	SourceRPM    string

	Requires    []DepEntry
	Provides    []DepEntry
	Conflicts   []DepEntry
	Obsoletes   []DepEntry
	Supplements []DepEntry
	Enhances    []DepEntry
	Recommends  []DepEntry
	Suggests    []DepEntry

	Files []FileEntry

	ChangelogEntries []ChangelogEntry
}

// ParsedPackage is the carrier entity for one artifact's extracted
// metadata. It is mutable up to the point it is handed to OrderedSink;
// logically immutable afterwards. A ParsedPackage is either freshly parsed
// (owned by the worker that parsed it, freed after both writes complete)
// or reused from CacheLookup (owned by the cache, never freed by the
// dumper — I6).
type ParsedPackage struct {
	Name             string
	PkgID            string       // content checksum, hex
	ChecksumKindName cos.CksumKind

	LocationHref string // path relative to the repository root
	LocationBase string // optional absolute URL prefix

	TimeFile    int64 // mtime, seconds since epoch
	SizePackage int64 // bytes

	RPMHeaderStart int64
	RPMHeaderEnd   int64

	Descriptor Descriptor

	// FromCache is true when this ParsedPackage is a CacheEntry reused
	// from a previous run rather than freshly parsed this run.
	FromCache bool
}

// Free releases a freshly-parsed package's backing storage. Reused
// CacheEntries must never be passed here (I6); callers gate on FromCache.
func (p *ParsedPackage) Free() {
	if p == nil || p.FromCache {
		return
	}
	// In a pool-backed implementation this would return p's string
	// storage to an allocator. This Go port relies on the garbage
	// collector for that storage; Free exists to mark the ownership
	// transfer point the spec requires and to make double-free bugs
	// (freeing a cache entry) a static, auditable call site.
}
