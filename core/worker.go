package core

import (
	"github.com/velichkov/createrepo-c/cmn/cos"
	"github.com/velichkov/createrepo-c/cmn/debug"
	"github.com/velichkov/createrepo-c/cmn/nlog"
)

// Config is the shared, read-only configuration every worker consults. It
// corresponds to spec §6's "shared configuration" input to the core.
type Config struct {
	ChecksumKind   cos.CksumKind
	LocationBase   string
	ChangelogLimit int
	RepoDirNameLen int // length of the repo-root path prefix to strip
	SkipStat       bool

	N int // total task count

	Extractor *ArtifactExtractor
	Formatter Formatter
	CacheLU   *CacheLookup // nil disables cache lookup entirely
	Sink      *OrderedSink
	Buffer    *ReorderBuffer

	// OnFailure, if non-nil, is called with the id and kind of every task
	// that failed before reaching OrderedSink.Write.
	OnFailure func(id int, kind FailureKind, err error)

	// OnCacheResult, if non-nil, is called once per task that consulted the
	// cache, reporting whether the lookup resulted in a reuse (hit) or not
	// (miss); used by stats.Registry's CacheHits/CacheMisses counters.
	OnCacheResult func(hit bool)
}

// WorkerLoop runs the per-task sequence of spec §4.8 for one task.
type WorkerLoop struct {
	cfg *Config
}

func NewWorkerLoop(cfg *Config) *WorkerLoop { return &WorkerLoop{cfg: cfg} }

// Run executes the ten-step sequence of spec §4.8 for task, then drains the
// reorder buffer (step 10).
func (w *WorkerLoop) Run(task *Task) {
	cfg := w.cfg

	// step 1: derive location_href
	href := task.FullPath[cfg.RepoDirNameLen:]
	base := cfg.LocationBase

	var (
		pkg        *ParsedPackage
		reuse      bool
		stat       FsStat
		haveFsStat bool
		failed     bool
		kind       FailureKind
		failErr    error
	)

	// step 2: stat, if a cache is configured and skip_stat is false
	if cfg.CacheLU != nil && !cfg.SkipStat {
		mtime, size, err := cfg.Extractor.Backend.Stat(task.FullPath)
		if err != nil {
			failed, kind, failErr = true, TaskStatFailure, err
			nlog.Warningf("task %d: stat %s failed: %v", task.ID, task.FullPath, err)
		} else {
			stat = FsStat{Mtime: mtime.Unix(), Size: size}
			haveFsStat = true
		}
	}

	// step 3: cache lookup
	if !failed && cfg.CacheLU != nil {
		if entry, ok := cfg.CacheLU.Lookup(task.Filename); ok {
			if cfg.CacheLU.IsFresh(entry, stat, cfg.ChecksumKind) {
				reuse = true
				cfg.CacheLU.RebindLocation(entry, href, base)
				pkg = entry
			} else {
				nlog.Infof("task %d: cache entry for %s is obsolete", task.ID, task.Filename)
			}
		}
		if cfg.OnCacheResult != nil {
			cfg.OnCacheResult(reuse)
		}
	}

	// step 4: fresh extraction, if not reusing
	if !failed && !reuse {
		args := ExtractArgs{
			Path:           task.FullPath,
			ChecksumKind:   cfg.ChecksumKind,
			Href:           href,
			Base:           base,
			ChangelogLimit: cfg.ChangelogLimit,
		}
		if haveFsStat {
			s := stat
			args.OptionalStat = &s
		}
		p, err := cfg.Extractor.Extract(args)
		if err != nil {
			failed, kind, failErr = true, ExtractFailure, err
			nlog.Warningf("task %d: extract %s failed: %v", task.ID, task.FullPath, err)
		} else {
			pkg = p
		}
	}

	// step 5: format
	var triple XmlTriple
	if !failed {
		t, err := cfg.Formatter.Format(pkg)
		if err != nil {
			failed, kind, failErr = true, FormatFailure, err
			nlog.Criticalf("task %d: format failed: %v", task.ID, err)
		} else {
			triple = t
		}
	}

	if failed {
		w.reportFailure(task.ID, kind, failErr)
		// step 9: advance all three counters past this id
		cfg.Sink.Skip(task.ID)
		w.drain()
		return
	}

	res := &BufferedResult{ID: task.ID, Triple: triple, Package: pkg, PkgFromCache: reuse}
	if reuse {
		res.LocationHrefCopy = href
	}

	// step 6: try to defer
	notCurrentlyWritable := task.ID != cfg.Sink.NextID() // heuristic, see OrderedSink.NextID
	if notCurrentlyWritable && cfg.Buffer.TryDefer(res, cfg.N) {
		// Task is freed implicitly (Go GC). The id may have become writable
		// between the NextID read and the deferral, after its predecessor's
		// drain already ran, so drain once more before returning.
		w.drain()
		return
	}

	// step 7: write directly
	cfg.Sink.Write(task.ID, triple, pkg)

	// step 8: free the working package (never a reused cache entry, I6)
	if !reuse {
		pkg.Free()
	}

	// step 10: opportunistic drain
	w.drain()
}

func (w *WorkerLoop) reportFailure(id int, kind FailureKind, err error) {
	if w.cfg.OnFailure != nil {
		w.cfg.OnFailure(id, kind, err)
	}
}

// drain repeatedly pops the buffer's head while it is ready and writes it,
// stopping when the head is not ready or the buffer is empty (step 10).
func (w *WorkerLoop) drain() {
	cfg := w.cfg
	for {
		next := cfg.Sink.NextID()
		res, ok := cfg.Buffer.PopIfReady(next)
		if !ok {
			return
		}
		debug.Assert(res.ID == next)
		cfg.Sink.Write(res.ID, res.Triple, res.Package)
		if !res.PkgFromCache {
			res.Package.Free()
		}
	}
}
