package core

import (
	"github.com/velichkov/createrepo-c/cmn/cos"
	"github.com/velichkov/createrepo-c/cmn/prob"
)

// CacheEntry is a ParsedPackage loaded from a previous run, keyed by
// filename. Under the concurrency rules of §5 (one lookup per filename per
// run), RebindLocation's in-place mutation is race-free.
type CacheEntry = ParsedPackage

// Cache is the read-mostly previous-run cache the producer loads once
// before the pipeline starts (see package repocache for a concrete
// implementation). CacheLookup wraps it with a cuckoo-filter pre-check.
type Cache interface {
	ByFilename(name string) (*CacheEntry, bool)
}

// CacheLookup consults a previous run's cache by filename and validates
// freshness before a worker is allowed to reuse an entry.
type CacheLookup struct {
	cache    Cache
	filter   *prob.Filter // negative answer short-circuits to "no entry"
	SkipStat bool         // when true, is_fresh is unconditionally true
}

// NewCacheLookup wraps cache with the caller-built cuckoo-filter pre-check
// (the CLI sizes and fills it from the cache's filenames). filter may be
// nil, in which case every lookup falls through to the map.
func NewCacheLookup(cache Cache, filter *prob.Filter, skipStat bool) *CacheLookup {
	return &CacheLookup{cache: cache, filter: filter, SkipStat: skipStat}
}

// Lookup returns the cache entry for filename, if any. A negative cuckoo
// filter answer is authoritative (no entry); a positive answer still
// performs the real map lookup, since the filter has a false-positive rate.
func (cl *CacheLookup) Lookup(filename string) (*CacheEntry, bool) {
	if cl.cache == nil {
		return nil, false
	}
	if cl.filter != nil && !cl.filter.Lookup([]byte(filename)) {
		return nil, false
	}
	return cl.cache.ByFilename(filename)
}

// FsStat is the subset of os.FileInfo CacheLookup.IsFresh needs.
type FsStat struct {
	Mtime int64
	Size  int64
}

// IsFresh reports whether entry is still valid against fsStat and the
// checksum kind this run requested.
func (cl *CacheLookup) IsFresh(entry *CacheEntry, fsStat FsStat, requestedKind cos.CksumKind) bool {
	if cl.SkipStat {
		return true
	}
	return entry.TimeFile == fsStat.Mtime &&
		entry.SizePackage == fsStat.Size &&
		entry.ChecksumKindName == requestedKind
}

// RebindLocation overwrites entry's location fields in place. Precondition:
// caller holds de-facto exclusivity for this filename (one lookup per
// filename per run). Nothing here or in the CLI's task discovery checks
// that a basename occurs only once in the tree.
func (cl *CacheLookup) RebindLocation(entry *CacheEntry, href, base string) {
	entry.LocationHref = href
	entry.LocationBase = base
}
