package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_cull_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "photo_cull_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photo_cull_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Store metrics
var (
	StoreOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_cull_store_operations_total",
			Help: "Total number of attribute store operations",
		},
		[]string{"store", "operation", "status"},
	)

	StoreWriteDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "photo_cull_store_write_duration_seconds",
			Help:    "Attribute store persistence write duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"store"},
	)

	StoreMirrorEntries = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "photo_cull_store_mirror_entries",
			Help: "Number of entries in the in-memory store mirror",
		},
		[]string{"store"},
	)
)

// Scanner metrics
var (
	ScanRunsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "photo_cull_scan_runs_total",
			Help: "Total number of directory scans",
		},
	)

	ScanDuration = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photo_cull_scan_last_duration_seconds",
			Help: "Duration of the last directory scan in seconds",
		},
	)

	ScanFilesSeen = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "photo_cull_scan_files_seen_total",
			Help: "Total number of files considered by the scanner",
		},
	)

	ScanRecords = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photo_cull_scan_records",
			Help: "Number of image records produced by the last scan",
		},
	)

	ScanWatcherEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_cull_scan_watcher_events_total",
			Help: "Total number of filesystem watcher events",
		},
		[]string{"type"},
	)
)

// Thumbnail loader metrics
var (
	ThumbnailCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "photo_cull_thumbnail_cache_hits_total",
			Help: "Total number of thumbnail cache hits",
		},
	)

	ThumbnailCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "photo_cull_thumbnail_cache_misses_total",
			Help: "Total number of thumbnail cache misses",
		},
	)

	ThumbnailCacheBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photo_cull_thumbnail_cache_bytes",
			Help: "Approximate bytes held by the thumbnail cache",
		},
	)

	DecodeTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_cull_decode_total",
			Help: "Total number of image decode attempts",
		},
		[]string{"mode", "status"},
	)

	DecodeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "photo_cull_decode_duration_seconds",
			Help:    "Image decode duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"mode"},
	)
)
