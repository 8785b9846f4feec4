// Command createrepo-c walks a directory tree of packaged artifacts and
// produces primary/filelists/other repository metadata, in parallel, with
// an optional previous-run cache. This command is the producer spec.md §1
// names as an external collaborator: it builds the dense Task list and
// hands it to core.Run, but none of its own code participates in the
// ordering/concurrency invariants of §5/§8.
package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/karrick/godirwalk"
	"github.com/urfave/cli"

	"github.com/velichkov/createrepo-c/cfg"
	"github.com/velichkov/createrepo-c/cksum"
	"github.com/velichkov/createrepo-c/cmn/cos"
	"github.com/velichkov/createrepo-c/cmn/debug"
	"github.com/velichkov/createrepo-c/cmn/fname"
	"github.com/velichkov/createrepo-c/cmn/k8s"
	"github.com/velichkov/createrepo-c/cmn/nlog"
	"github.com/velichkov/createrepo-c/cmn/prob"
	"github.com/velichkov/createrepo-c/core"
	"github.com/velichkov/createrepo-c/hk"
	"github.com/velichkov/createrepo-c/objstore"
	"github.com/velichkov/createrepo-c/repocache"
	"github.com/velichkov/createrepo-c/sink"
	"github.com/velichkov/createrepo-c/stats"
	"github.com/velichkov/createrepo-c/xmlfmt"
)

func main() {
	app := cli.NewApp()
	app.Name = "createrepo-c"
	app.Usage = "generate primary/filelists/other repository metadata"
	app.Version = "1.0.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "config", Usage: "path to a JSON config file"},
		cli.StringFlag{Name: "repo-root", Usage: "directory tree to scan (overrides config)"},
		cli.StringFlag{Name: "checksum-kind", Value: "sha256", Usage: "sha256 | md5 | xxhash64"},
		cli.IntFlag{Name: "pool-size", Value: 4, Usage: "worker pool size"},
		cli.IntFlag{Name: "changelog-limit", Value: 10},
		cli.BoolFlag{Name: "skip-stat", Usage: "trust the cache without re-stat'ing artifacts"},
		cli.StringFlag{Name: "checksum-cache-dir", Usage: "directory holding the checksum memoization index"},
		cli.StringFlag{Name: "previous-cache", Usage: "path or URL to the previous run's cache bundle"},
		cli.StringFlag{Name: "manifest-jwt", Usage: "JWT manifest accompanying a remote --previous-cache"},
		cli.StringFlag{Name: "manifest-jwt-secret", Usage: "HMAC secret used to verify --manifest-jwt's signature"},
		cli.StringFlag{Name: "output-dir", Value: "repodata"},
		cli.BoolFlag{Name: "db-mirror", Usage: "also mirror output into a tabular database per stream"},
		cli.StringFlag{Name: "metrics-listen-addr", Usage: "if set, serve Prometheus metrics on this address"},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		nlog.Errorf("createrepo-c: %v", err)
		nlog.Flush(true)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	cos.InitRunID(uint64(os.Getpid()))
	k8s.Init()

	runID := cos.GenRunID()
	debug.Assert(cos.IsAlphaNice(runID), "run id must be a valid identifier: ", runID)
	nlog.Infof("run %s: starting", runID)

	conf := cfg.Default()
	if p := c.String("config"); p != "" {
		loaded, err := cfg.Load(p)
		if err != nil {
			return err
		}
		conf = loaded
	}
	applyFlagOverrides(c, conf)

	if conf.RepoRoot == "" {
		return fmt.Errorf("createrepo-c: --repo-root (or config repo_root) is required")
	}

	backend, err := objstore.ForRoot(conf.RepoRoot)
	if err != nil {
		return err
	}

	var checksumIdx *cksum.Index
	if conf.ChecksumCacheDir != "" {
		idxPath := filepath.Join(conf.ChecksumCacheDir, fname.ChecksumCacheIndex)
		checksumIdx, err = cksum.LoadIndex(idxPath)
		if err != nil {
			return err
		}
		defer checksumIdx.Save(idxPath)
	}

	var cacheLU *core.CacheLookup
	if conf.PreviousCachePath != "" || conf.PreviousCacheURL != "" {
		cache, filter, err := loadPreviousCache(conf)
		if err != nil {
			return err
		}
		cacheLU = core.NewCacheLookup(cache, filter, conf.SkipStat)
	}

	if err := os.MkdirAll(conf.OutputDir, 0o755); err != nil {
		return err
	}
	primaryF, err := sink.NewFileStream(filepath.Join(conf.OutputDir, fname.PrimaryXML))
	if err != nil {
		return err
	}
	defer primaryF.Close()
	filelistsF, err := sink.NewFileStream(filepath.Join(conf.OutputDir, fname.FilelistsXML))
	if err != nil {
		return err
	}
	defer filelistsF.Close()
	otherF, err := sink.NewFileStream(filepath.Join(conf.OutputDir, fname.OtherXML))
	if err != nil {
		return err
	}
	defer otherF.Close()

	runHeader := fmt.Sprintf("<!-- generated by createrepo-c, run %s -->\n", runID)
	for _, f := range []*sink.FileStream{primaryF, filelistsF, otherF} {
		if err := f.AppendChunk(runHeader); err != nil {
			return err
		}
	}

	var dbs [3]core.DatabaseSink
	if conf.DBMirror {
		mirror, err := sink.OpenDBMirror([3]string{
			filepath.Join(conf.OutputDir, fname.PrimaryDB),
			filepath.Join(conf.OutputDir, fname.FilelistsDB),
			filepath.Join(conf.OutputDir, fname.OtherDB),
		}, projectRecord)
		if err != nil {
			return err
		}
		defer mirror.Close()
		dbs[0] = mirror.ForStream(core.StreamPrimary)
		dbs[1] = mirror.ForStream(core.StreamFilelists)
		dbs[2] = mirror.ForStream(core.StreamOther)
	}

	reg := stats.NewRegistry()
	if conf.MetricsTCP != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", reg.Handler())
		srv := &http.Server{Addr: conf.MetricsTCP, Handler: mux}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				nlog.Errorf("metrics server: %v", err)
			}
		}()
	}
	go hk.DefaultHK.Run()
	hk.DefaultHK.RegisterCB("iostat-sample", func() time.Duration {
		reg.SampleDiskIOOnce()
		return 30 * time.Second
	}, 30*time.Second)

	var criticalLogs int64
	buffer := core.NewReorderBuffer()
	ordered := core.NewOrderedSink(primaryF, filelistsF, otherF, dbs,
		func(kind core.FailureKind, st core.Stream, err error) {
			atomic.AddInt64(&criticalLogs, 1)
			nlog.Criticalf("%s/%s: %v", kind, st, err)
		},
		func(st core.Stream) {
			reg.ObserveBufferDepth(st.String(), buffer.Len())
		},
		func(st core.Stream) func() {
			return reg.TimeWrite(st.String())
		},
	)

	tasks, err := discoverTasks(conf.RepoRoot)
	if err != nil {
		return err
	}

	runCfg := &core.Config{
		ChecksumKind:   conf.ChecksumKind,
		LocationBase:   conf.LocationBase,
		ChangelogLimit: conf.ChangelogLimit,
		RepoDirNameLen: len(conf.RepoRoot),
		SkipStat:       conf.SkipStat,
		Extractor:      core.NewArtifactExtractor(backend, checksumIdx),
		Formatter:      core.FormatterFunc(xmlfmt.Format),
		CacheLU:        cacheLU,
		Sink:           ordered,
		Buffer:         buffer,
		OnFailure: func(id int, kind core.FailureKind, err error) {
			reg.TasksTotal.WithLabelValues("primary", "skip").Inc()
			nlog.Warningf("task %d %s: %v", id, kind, err)
		},
		OnCacheResult: func(hit bool) {
			if hit {
				reg.CacheHits.Inc()
			} else {
				reg.CacheMisses.Inc()
			}
		},
	}

	if err := core.Run(runCfg, tasks, conf.PoolSize); err != nil {
		return err
	}

	pri, fil, oth := ordered.Counters()
	nlog.Infof("run %s done: %d tasks, counters pri=%d fil=%d oth=%d, %d critical log(s)",
		runID, len(tasks), pri, fil, oth, atomic.LoadInt64(&criticalLogs))
	return nil
}

func applyFlagOverrides(c *cli.Context, conf *cfg.Config) {
	if v := c.String("repo-root"); v != "" {
		conf.RepoRoot = v
	}
	if v := c.String("checksum-kind"); v != "" {
		conf.ChecksumKind = cos.CksumKind(v)
	}
	if v := c.Int("pool-size"); v > 0 {
		conf.PoolSize = v
	}
	if v := c.Int("changelog-limit"); v > 0 {
		conf.ChangelogLimit = v
	}
	if c.Bool("skip-stat") {
		conf.SkipStat = true
	}
	if v := c.String("checksum-cache-dir"); v != "" {
		conf.ChecksumCacheDir = v
	}
	if v := c.String("previous-cache"); v != "" {
		if isRemoteURL(v) {
			conf.PreviousCacheURL = v
		} else {
			conf.PreviousCachePath = v
		}
	}
	if v := c.String("manifest-jwt"); v != "" {
		conf.ManifestJWT = v
	}
	if v := c.String("manifest-jwt-secret"); v != "" {
		conf.ManifestJWTSecret = v
	}
	if v := c.String("output-dir"); v != "" {
		conf.OutputDir = v
	}
	if c.Bool("db-mirror") {
		conf.DBMirror = true
	}
	if v := c.String("metrics-listen-addr"); v != "" {
		conf.MetricsTCP = v
	}
}

func isRemoteURL(s string) bool {
	for _, scheme := range []string{"http://", "https://"} {
		if len(s) >= len(scheme) && s[:len(scheme)] == scheme {
			return true
		}
	}
	return false
}

func loadPreviousCache(conf *cfg.Config) (*repocache.Cache, *prob.Filter, error) {
	var (
		cache *repocache.Cache
		err   error
	)
	if conf.PreviousCacheURL != "" {
		if conf.ManifestJWT != "" && conf.ManifestJWTSecret == "" {
			return nil, nil, fmt.Errorf("createrepo-c: --manifest-jwt requires --manifest-jwt-secret")
		}
		cache, err = repocache.LoadRemote(conf.PreviousCacheURL, conf.ManifestJWT, []byte(conf.ManifestJWTSecret))
	} else {
		cache, err = repocache.LoadLocal(conf.PreviousCachePath)
	}
	if err != nil {
		return nil, nil, err
	}

	names := cache.Filenames()
	filter := prob.NewDefaultFilter(uint(len(names)) + 1)
	for _, n := range names {
		filter.Insert([]byte(n))
	}
	return cache, filter, nil
}

// discoverTasks walks root with godirwalk and assigns dense ids in
// directory-walk order.
func discoverTasks(root string) ([]*core.Task, error) {
	var tasks []*core.Task
	id := 0
	err := godirwalk.Walk(root, &godirwalk.Options{
		Callback: func(path string, de *godirwalk.Dirent) error {
			if de.IsDir() {
				return nil
			}
			tasks = append(tasks, core.NewTask(id, path, filepath.Base(path), filepath.Dir(path)))
			id++
			return nil
		},
		Unsorted: false,
	})
	return tasks, err
}

// projectRecord formats pkg as the JSON value stored in the tabular
// database mirror; it must carry location_href for DBMirror's secondary
// index.
func projectRecord(pkg *core.ParsedPackage) string {
	return fmt.Sprintf(`{"pkg_id":%q,"name":%q,"location_href":%q,"size_package":%d}`,
		pkg.PkgID, pkg.Name, pkg.LocationHref, pkg.SizePackage)
}
