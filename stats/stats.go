// Package stats exposes the dumper's run-time metrics: task throughput,
// per-stream write latency, cache hit/miss counts, the reorder buffer's
// high-water mark, and (best effort) host disk I/O.
package stats

import (
	"net/http"
	"sync"
	"time"

	"github.com/lufia/iostat"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/velichkov/createrepo-c/cmn/nlog"
)

// Registry bundles every metric the dumper emits under one Prometheus
// registry so a single /metrics endpoint serves them all.
type Registry struct {
	reg *prometheus.Registry

	hwMu sync.Mutex
	hw   map[string]int // shadow high-water mark, keyed by stream

	TasksTotal      *prometheus.CounterVec   // by stream, outcome {ok,skip,failed}
	WriteLatency    *prometheus.HistogramVec // by stream, seconds
	CacheHits       prometheus.Counter
	CacheMisses     prometheus.Counter
	BufferDepth     *prometheus.GaugeVec // by stream, current reorder-buffer length
	BufferHighWater *prometheus.GaugeVec // by stream, max observed length this run
	DiskReadBytes   prometheus.Counter
	DiskWriteBytes  prometheus.Counter
}

func NewRegistry() *Registry {
	r := &Registry{reg: prometheus.NewRegistry(), hw: make(map[string]int, 4)}

	r.TasksTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "createrepo_c_tasks_total",
		Help: "Completed tasks by output stream and outcome.",
	}, []string{"stream", "outcome"})

	r.WriteLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "createrepo_c_write_latency_seconds",
		Help:    "Per-append latency of an ordered sink, by stream.",
		Buckets: prometheus.DefBuckets,
	}, []string{"stream"})

	r.CacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "createrepo_c_cache_hits_total",
		Help: "Packages reused from the previous run's cache.",
	})
	r.CacheMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "createrepo_c_cache_misses_total",
		Help: "Packages that required full re-extraction.",
	})

	r.BufferDepth = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "createrepo_c_reorder_buffer_depth",
		Help: "Current number of entries held in a stream's reorder buffer.",
	}, []string{"stream"})
	r.BufferHighWater = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "createrepo_c_reorder_buffer_high_water",
		Help: "Maximum reorder-buffer depth observed so far this run.",
	}, []string{"stream"})

	r.DiskReadBytes = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "createrepo_c_disk_read_bytes_total",
		Help: "Bytes read from the host disk, sampled via iostat.",
	})
	r.DiskWriteBytes = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "createrepo_c_disk_write_bytes_total",
		Help: "Bytes written to the host disk, sampled via iostat.",
	})

	r.reg.MustRegister(r.TasksTotal, r.WriteLatency, r.CacheHits, r.CacheMisses,
		r.BufferDepth, r.BufferHighWater, r.DiskReadBytes, r.DiskWriteBytes)
	return r
}

// Handler serves the registry on the standard /metrics path.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

// ObserveBufferDepth updates both the live depth gauge and (if exceeded)
// the run's high-water mark for stream. prometheus.Gauge has no getter, so
// the high-water mark is shadowed locally.
func (r *Registry) ObserveBufferDepth(stream string, depth int) {
	r.BufferDepth.WithLabelValues(stream).Set(float64(depth))

	r.hwMu.Lock()
	if depth > r.hw[stream] {
		r.hw[stream] = depth
		r.BufferHighWater.WithLabelValues(stream).Set(float64(depth))
	}
	r.hwMu.Unlock()
}

// SampleDiskIOOnce adds one iostat sample to the disk counters; called
// periodically from the housekeeper. Any failure (unsupported platform, no
// permission) is logged at info level and otherwise ignored: disk sampling
// is cosmetic and never affects the dumper's output.
func (r *Registry) SampleDiskIOOnce() {
	drives, err := iostat.ReadDriveStats()
	if err != nil {
		nlog.Infoln("iostat sample skipped:", err)
		return
	}
	var reads, writes uint64
	for _, d := range drives {
		reads += d.BytesRead
		writes += d.BytesWritten
	}
	r.DiskReadBytes.Add(float64(reads))
	r.DiskWriteBytes.Add(float64(writes))
}

// TimeWrite returns a function that, when called, records the elapsed time
// since TimeWrite was invoked as one WriteLatency observation for stream.
// Typical use: defer reg.TimeWrite("primary")().
func (r *Registry) TimeWrite(stream string) func() {
	start := time.Now()
	return func() {
		r.WriteLatency.WithLabelValues(stream).Observe(time.Since(start).Seconds())
	}
}
