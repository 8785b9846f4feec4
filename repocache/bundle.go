// Package repocache loads the previous run's cache: a bundle of
// already-parsed packages keyed by filename, used by core.CacheLookup to
// skip redundant extraction. The bundle is an lz4-compressed, msgp-encoded
// file, either read from local disk or fetched over HTTP(S).
package repocache

import (
	"fmt"
	"io"
	"os"

	"github.com/pierrec/lz4/v3"
	"github.com/tinylib/msgp/msgp"

	"github.com/velichkov/createrepo-c/cmn/cos"
	"github.com/velichkov/createrepo-c/core"
)

func coerceKind(s string) cos.CksumKind { return cos.CksumKind(s) }

// entry is the on-disk record shape; EncodeMsg/DecodeMsg are hand-written,
// matching the teacher's own non-codegen msgp usage (see cksum.IndexEntry).
type entry struct {
	Filename         string
	Name             string
	PkgID            string
	ChecksumKindName string
	LocationHref     string
	LocationBase     string
	TimeFile         int64
	SizePackage      int64
	RPMHeaderStart   int64
	RPMHeaderEnd     int64
}

func (e *entry) EncodeMsg(w *msgp.Writer) error {
	fields := []string{e.Filename, e.Name, e.PkgID, e.ChecksumKindName, e.LocationHref, e.LocationBase}
	for _, f := range fields {
		if err := w.WriteString(f); err != nil {
			return err
		}
	}
	ints := []int64{e.TimeFile, e.SizePackage, e.RPMHeaderStart, e.RPMHeaderEnd}
	for _, n := range ints {
		if err := w.WriteInt64(n); err != nil {
			return err
		}
	}
	return nil
}

func (e *entry) DecodeMsg(r *msgp.Reader) error {
	strs := []*string{&e.Filename, &e.Name, &e.PkgID, &e.ChecksumKindName, &e.LocationHref, &e.LocationBase}
	for _, s := range strs {
		v, err := r.ReadString()
		if err != nil {
			return err
		}
		*s = v
	}
	ints := []*int64{&e.TimeFile, &e.SizePackage, &e.RPMHeaderStart, &e.RPMHeaderEnd}
	for _, n := range ints {
		v, err := r.ReadInt64()
		if err != nil {
			return err
		}
		*n = v
	}
	return nil
}

// Cache is a loaded previous-run cache; it implements core.Cache.
type Cache struct {
	byFilename map[string]*core.CacheEntry
}

func (c *Cache) ByFilename(name string) (*core.CacheEntry, bool) {
	e, ok := c.byFilename[name]
	return e, ok
}

// Filenames returns every filename held in the cache, for pre-populating
// the cuckoo-filter pre-check (cmn/prob.Filter) ahead of the run.
func (c *Cache) Filenames() []string {
	names := make([]string, 0, len(c.byFilename))
	for name := range c.byFilename {
		names = append(names, name)
	}
	return names
}

// decodeBundle reads an lz4-compressed msgp stream of entry records from r.
func decodeBundle(r io.Reader) (*Cache, error) {
	lzr := lz4.NewReader(r)
	mr := msgp.NewReader(lzr)

	count, err := mr.ReadArrayHeader()
	if err != nil {
		return nil, fmt.Errorf("repocache: bundle header: %w", err)
	}

	c := &Cache{byFilename: make(map[string]*core.CacheEntry, count)}
	for i := uint32(0); i < count; i++ {
		var e entry
		if err := e.DecodeMsg(mr); err != nil {
			return nil, fmt.Errorf("repocache: bundle entry %d: %w", i, err)
		}
		c.byFilename[e.Filename] = &core.ParsedPackage{
			Name:             e.Name,
			PkgID:            e.PkgID,
			ChecksumKindName: coerceKind(e.ChecksumKindName),
			LocationHref:     e.LocationHref,
			LocationBase:     e.LocationBase,
			TimeFile:         e.TimeFile,
			SizePackage:      e.SizePackage,
			RPMHeaderStart:   e.RPMHeaderStart,
			RPMHeaderEnd:     e.RPMHeaderEnd,
			FromCache:        true,
		}
	}
	return c, nil
}

// LoadLocal reads a cache bundle from a local file path.
func LoadLocal(path string) (*Cache, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("repocache: open %s: %w", path, err)
	}
	defer f.Close()
	return decodeBundle(f)
}
