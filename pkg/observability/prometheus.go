package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Prometheus implements [ResolveHooks], [CacheHooks] and [HTTPHooks] by
// recording into a private Prometheus registry. A batch run has nothing to
// scrape it, so the registry is flushed with [Prometheus.WriteTextfile] for
// the node_exporter textfile collector.
type Prometheus struct {
	registry *prometheus.Registry

	nodesVisited     prometheus.Counter
	artifacts        *prometheus.CounterVec
	artifactDuration prometheus.Histogram
	metadata         *prometheus.CounterVec
	metadataDuration prometheus.Histogram
	excluded         prometheus.Counter
	dropped          *prometheus.CounterVec
	runVisited       prometheus.Gauge
	runDuration      prometheus.Gauge

	cacheEvents   *prometheus.CounterVec
	cacheSetBytes prometheus.Counter

	httpRequests  *prometheus.CounterVec
	httpResponses *prometheus.CounterVec
	httpErrors    *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
}

// NewPrometheus creates the collectors and registers them on a fresh registry.
func NewPrometheus() *Prometheus {
	p := &Prometheus{
		registry: prometheus.NewRegistry(),
		nodesVisited: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kdeps_nodes_visited_total",
			Help: "Number of coordinates added to the visited set.",
		}),
		artifacts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kdeps_artifacts_total",
			Help: "Artifact downloads by outcome.",
		}, []string{"outcome"}),
		artifactDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "kdeps_artifact_download_duration_seconds",
			Help:    "Time taken to materialize one artifact.",
			Buckets: prometheus.DefBuckets,
		}),
		metadata: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kdeps_metadata_total",
			Help: "Metadata fetches by result.",
		}, []string{"result"}),
		metadataDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "kdeps_metadata_duration_seconds",
			Help:    "Time taken to fetch and parse one metadata document.",
			Buckets: prometheus.DefBuckets,
		}),
		excluded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kdeps_excluded_total",
			Help: "Children skipped by an exclusion rule.",
		}),
		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kdeps_dropped_declarations_total",
			Help: "Declarations dropped during extraction, by reason.",
		}, []string{"reason"}),
		runVisited: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "kdeps_run_visited",
			Help: "Coordinates visited by the last run.",
		}),
		runDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "kdeps_run_duration_seconds",
			Help: "Wall time of the last run.",
		}),
		cacheEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kdeps_cache_events_total",
			Help: "Cache lookups and writes by key type and event.",
		}, []string{"key_type", "event"}),
		cacheSetBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kdeps_cache_set_bytes_total",
			Help: "Bytes written to the cache.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kdeps_http_requests_total",
			Help: "Outgoing repository requests.",
		}, []string{"method", "host"}),
		httpResponses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kdeps_http_responses_total",
			Help: "Repository responses by status code.",
		}, []string{"method", "host", "code"}),
		httpErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kdeps_http_errors_total",
			Help: "Repository requests that failed without a response.",
		}, []string{"method", "host"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kdeps_http_request_duration_seconds",
			Help:    "Repository request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"host"}),
	}

	p.registry.MustRegister(
		p.nodesVisited,
		p.artifacts,
		p.artifactDuration,
		p.metadata,
		p.metadataDuration,
		p.excluded,
		p.dropped,
		p.runVisited,
		p.runDuration,
		p.cacheEvents,
		p.cacheSetBytes,
		p.httpRequests,
		p.httpResponses,
		p.httpErrors,
		p.httpDuration,
	)
	return p
}

// Registry exposes the underlying registry, e.g. for an HTTP handler.
func (p *Prometheus) Registry() *prometheus.Registry { return p.registry }

// WriteTextfile writes every collected metric to path in the text exposition
// format. The file is replaced atomically.
func (p *Prometheus) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, p.registry)
}

func (p *Prometheus) OnNodeVisited(_ context.Context, _ string, _ int) {
	p.nodesVisited.Inc()
}

func (p *Prometheus) OnArtifact(_ context.Context, _ string, outcome string, d time.Duration) {
	p.artifacts.WithLabelValues(outcome).Inc()
	if outcome == OutcomeDownloaded {
		p.artifactDuration.Observe(d.Seconds())
	}
}

func (p *Prometheus) OnMetadata(_ context.Context, _ string, d time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	p.metadata.WithLabelValues(result).Inc()
	p.metadataDuration.Observe(d.Seconds())
}

func (p *Prometheus) OnExcluded(context.Context, string, string) {
	p.excluded.Inc()
}

func (p *Prometheus) OnDropped(_ context.Context, reason string) {
	p.dropped.WithLabelValues(reason).Inc()
}

func (p *Prometheus) OnRunComplete(_ context.Context, visited int, d time.Duration) {
	p.runVisited.Set(float64(visited))
	p.runDuration.Set(d.Seconds())
}

func (p *Prometheus) OnCacheHit(_ context.Context, keyType string) {
	p.cacheEvents.WithLabelValues(keyType, "hit").Inc()
}

func (p *Prometheus) OnCacheMiss(_ context.Context, keyType string) {
	p.cacheEvents.WithLabelValues(keyType, "miss").Inc()
}

func (p *Prometheus) OnCacheSet(_ context.Context, keyType string, size int) {
	p.cacheEvents.WithLabelValues(keyType, "set").Inc()
	p.cacheSetBytes.Add(float64(size))
}

func (p *Prometheus) OnRequest(_ context.Context, method, host, _ string) {
	p.httpRequests.WithLabelValues(method, host).Inc()
}

func (p *Prometheus) OnResponse(_ context.Context, method, host, _ string, code int, d time.Duration) {
	p.httpResponses.WithLabelValues(method, host, strconv.Itoa(code)).Inc()
	p.httpDuration.WithLabelValues(host).Observe(d.Seconds())
}

func (p *Prometheus) OnError(_ context.Context, method, host, _ string, _ error) {
	p.httpErrors.WithLabelValues(method, host).Inc()
}

var (
	_ ResolveHooks = (*Prometheus)(nil)
	_ CacheHooks   = (*Prometheus)(nil)
	_ HTTPHooks    = (*Prometheus)(nil)
)
