// Package prob implements a probabilistic pre-check used to skip expensive
// cache lookups for paths that were never in a previous run's cache.
package prob

import (
	"sync"

	cuckoo "github.com/seiflotfy/cuckoofilter"
)

// Filter is a concurrency-safe Cuckoo filter. A negative Lookup result
// guarantees the key was never added; a positive result only means the key
// might be present (subject to the filter's false-positive rate) and must
// still be confirmed against the real cache index.
type Filter struct {
	mu sync.RWMutex
	cf *cuckoo.Filter
}

// NewDefaultFilter sizes the filter for expectedElements entries.
func NewDefaultFilter(expectedElements uint) *Filter {
	return &Filter{cf: cuckoo.NewFilter(expectedElements)}
}

func (f *Filter) Insert(key []byte) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cf.Insert(key)
}

// Lookup reports whether key might be present. false is a definitive miss.
func (f *Filter) Lookup(key []byte) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.cf.Lookup(key)
}

func (f *Filter) Delete(key []byte) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cf.Delete(key)
}

func (f *Filter) Count() uint {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.cf.Count()
}

// Reset removes every element without reallocating the backing buckets.
func (f *Filter) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cf.Reset()
}
