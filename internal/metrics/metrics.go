// Package metrics exports routetrace events as Prometheus metrics.
//
// A [Collector] implements observability.RouteHooks, SourceHooks and
// CacheHooks, and publish.Metrics. Register it once at startup:
//
//	c := metrics.NewCollector()
//	observability.SetRouteHooks(c)
//	observability.SetSourceHooks(c)
//	observability.SetCacheHooks(c)
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/routetrace/pkg/observability"
)

type Collector struct {
	reg *prometheus.Registry

	Searches        *prometheus.CounterVec // result label: found|no_path
	SearchDuration  prometheus.Histogram
	VisitedStations prometheus.Histogram
	MissingEdges    prometheus.Counter

	Loads           *prometheus.CounterVec // source, result labels
	LoadDuration    *prometheus.HistogramVec
	Stations        prometheus.Gauge
	Segments        prometheus.Gauge
	SkippedSegments prometheus.Counter

	CacheRequests *prometheus.CounterVec // key_type, result labels
	CacheBytes    *prometheus.CounterVec

	NATSPublished   prometheus.Counter
	NATSPublishErrs prometheus.Counter
	NATSConnected   prometheus.Gauge
	PublishDuration prometheus.Histogram

	HTTPRequests *prometheus.CounterVec // route, code labels
	HTTPDuration *prometheus.HistogramVec
}

// NewCollector creates a collector with its own registry, including the Go
// runtime and process collectors.
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		Searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "routetrace_searches_total",
			Help: "Shortest-path searches by outcome.",
		}, []string{"result"}),
		SearchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "routetrace_search_duration_seconds",
			Help:    "Duration of shortest-path searches.",
			Buckets: prometheus.ExponentialBuckets(0.00005, 2, 16),
		}),
		VisitedStations: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "routetrace_search_visited_stations",
			Help:    "Stations finalized per search.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 14),
		}),
		MissingEdges: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "routetrace_missing_edges_total",
			Help: "Consecutive path stations without a connecting edge.",
		}),
		Loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "routetrace_network_loads_total",
			Help: "Network loads by source and outcome.",
		}, []string{"source", "result"}),
		LoadDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "routetrace_network_load_duration_seconds",
			Help:    "Duration of network loads.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15),
		}, []string{"source"}),
		Stations: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "routetrace_network_stations",
			Help: "Stations in the last loaded network.",
		}),
		Segments: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "routetrace_network_segments",
			Help: "Segments in the last loaded network.",
		}),
		SkippedSegments: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "routetrace_network_skipped_segments_total",
			Help: "Segments dropped because an endpoint is not a known station.",
		}),
		CacheRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "routetrace_cache_requests_total",
			Help: "Artifact cache lookups by key type and result.",
		}, []string{"key_type", "result"}),
		CacheBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "routetrace_cache_written_bytes_total",
			Help: "Bytes written to the artifact cache.",
		}, []string{"key_type"}),
		NATSPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "routetrace_nats_published_total",
			Help: "Total NATS messages published.",
		}),
		NATSPublishErrs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "routetrace_nats_publish_errors_total",
			Help: "Total NATS publish errors.",
		}),
		NATSConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "routetrace_nats_connected",
			Help: "1 if NATS connection is established, 0 otherwise.",
		}),
		PublishDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "routetrace_publish_duration_seconds",
			Help:    "Duration to marshal and publish a NATS message.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 15),
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "routetrace_http_requests_total",
			Help: "HTTP requests by route pattern and status code.",
		}, []string{"route", "code"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "routetrace_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		c.Searches, c.SearchDuration, c.VisitedStations, c.MissingEdges,
		c.Loads, c.LoadDuration, c.Stations, c.Segments, c.SkippedSegments,
		c.CacheRequests, c.CacheBytes,
		c.NATSPublished, c.NATSPublishErrs, c.NATSConnected, c.PublishDuration,
		c.HTTPRequests, c.HTTPDuration,
	)
	return c
}

// Register installs c as the route, source and cache hooks.
func (c *Collector) Register() {
	observability.SetRouteHooks(c)
	observability.SetSourceHooks(c)
	observability.SetCacheHooks(c)
}

func (c *Collector) Handler() http.Handler { return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{}) }

// ObserveHTTP records one served request.
func (c *Collector) ObserveHTTP(route string, code int, d time.Duration) {
	c.HTTPRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	c.HTTPDuration.WithLabelValues(route).Observe(d.Seconds())
}

// Route hooks.

func (c *Collector) OnSearchStart(context.Context, string, string) {}

func (c *Collector) OnSearchComplete(_ context.Context, _, _ string, visited int, found bool, d time.Duration) {
	result := "no_path"
	if found {
		result = "found"
	}
	c.Searches.WithLabelValues(result).Inc()
	c.SearchDuration.Observe(d.Seconds())
	c.VisitedStations.Observe(float64(visited))
}

func (c *Collector) OnMissingEdge(context.Context, string, string) { c.MissingEdges.Inc() }

// Source hooks.

func (c *Collector) OnLoad(_ context.Context, source string, stations, segments int, d time.Duration, err error) {
	if err != nil {
		c.Loads.WithLabelValues(source, "error").Inc()
		return
	}
	c.Loads.WithLabelValues(source, "ok").Inc()
	c.LoadDuration.WithLabelValues(source).Observe(d.Seconds())
	c.Stations.Set(float64(stations))
	c.Segments.Set(float64(segments))
}

func (c *Collector) OnSkippedSegment(context.Context, string, string) { c.SkippedSegments.Inc() }

// Cache hooks.

func (c *Collector) OnCacheHit(_ context.Context, keyType string) {
	c.CacheRequests.WithLabelValues(keyType, "hit").Inc()
}

func (c *Collector) OnCacheMiss(_ context.Context, keyType string) {
	c.CacheRequests.WithLabelValues(keyType, "miss").Inc()
}

func (c *Collector) OnCacheSet(_ context.Context, keyType string, size int) {
	c.CacheBytes.WithLabelValues(keyType).Add(float64(size))
}

// Publisher metrics.

func (c *Collector) NATSPublishedInc()              { c.NATSPublished.Inc() }
func (c *Collector) NATSPublishErrInc()             { c.NATSPublishErrs.Inc() }
func (c *Collector) PublishObserve(d time.Duration) { c.PublishDuration.Observe(d.Seconds()) }

func (c *Collector) NATSSetConnected(connected bool) {
	if connected {
		c.NATSConnected.Set(1)
		return
	}
	c.NATSConnected.Set(0)
}

var (
	_ observability.RouteHooks  = (*Collector)(nil)
	_ observability.SourceHooks = (*Collector)(nil)
	_ observability.CacheHooks  = (*Collector)(nil)
)
