package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "legal_backend"

var (
	registry = prometheus.NewRegistry()

	analysisRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "analysis_runs_total",
		Help:      "Analysis runs by kind and outcome.",
	}, []string{"kind", "outcome"})

	analysisDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "analysis_duration_seconds",
		Help:      "Time to produce an analysis run, upstream call included.",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
	}, []string{"kind"})

	upstreamRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "upstream_requests_total",
		Help:      "Requests to the analysis service by endpoint and status code.",
	}, []string{"endpoint", "status"})

	upstreamDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "upstream_request_duration_seconds",
		Help:      "Latency of requests to the analysis service.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"endpoint"})

	cacheLookupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_lookups_total",
		Help:      "Upstream response cache lookups by result.",
	}, []string{"result"})

	uploadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "document_uploads_total",
		Help:      "Document uploads by ingest result.",
	}, []string{"ingest"})
)

func init() {
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		analysisRunsTotal,
		analysisDuration,
		upstreamRequestsTotal,
		upstreamDuration,
		cacheLookupsTotal,
		uploadsTotal,
	)
}

// ObserveAnalysis records one finished analysis run.
func ObserveAnalysis(kind, outcome string, elapsed time.Duration) {
	analysisRunsTotal.WithLabelValues(kind, outcome).Inc()
	analysisDuration.WithLabelValues(kind).Observe(elapsed.Seconds())
}

// ObserveUpstream records one request to the analysis service. status is 0
// when no response was received.
func ObserveUpstream(endpoint string, status int, elapsed time.Duration) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	upstreamRequestsTotal.WithLabelValues(endpoint, label).Inc()
	upstreamDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

// CacheHit increments the cache hit counter.
func CacheHit() {
	cacheLookupsTotal.WithLabelValues("hit").Inc()
}

// CacheMiss increments the cache miss counter.
func CacheMiss() {
	cacheLookupsTotal.WithLabelValues("miss").Inc()
}

// ObserveUpload records an upload and whether the analysis service ingested it.
func ObserveUpload(ingested bool) {
	label := "failed"
	if ingested {
		label = "ok"
	}
	uploadsTotal.WithLabelValues(label).Inc()
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
}
