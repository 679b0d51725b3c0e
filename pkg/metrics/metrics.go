// Package metrics exports pipeline and cache events as Prometheus metrics.
//
// [Metrics] implements the observability hook interfaces. The CLI registers
// one at startup and, after the run, writes its registry in the node
// exporter textfile format so a collector can pick it up:
//
//	m := metrics.New()
//	observability.SetPipelineHooks(m)
//	observability.SetCacheHooks(m)
//	// ... run pipelines ...
//	err := m.WriteTextfile("/var/lib/node_exporter/gridtree.prom")
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/matzehuels/gridtree/pkg/errors"
	"github.com/matzehuels/gridtree/pkg/observability"
)

const (
	formatLabel  = "format"
	resultLabel  = "result"
	errTypeLabel = "error_type"
	keyTypeLabel = "key_type"
	eventLabel   = "event"
)

// Metrics holds the collectors and the registry they are registered with.
type Metrics struct {
	registry *prometheus.Registry

	builds        *prometheus.CounterVec
	buildLatency  prometheus.Histogram
	treeNodes     prometheus.Gauge
	treeLeaves    prometheus.Gauge
	encodes       *prometheus.CounterVec
	encodeLatency *prometheus.HistogramVec
	encodedBytes  *prometheus.GaugeVec
	cacheEvents   *prometheus.CounterVec
	cacheBytes    *prometheus.CounterVec
}

// New creates a Metrics with its own registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		builds: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "gridtree_builds_total",
			Help: "The number of tree builds, by result.",
		}, []string{
			resultLabel,
			errTypeLabel,
		}),

		buildLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "gridtree_build_duration_seconds",
			Help:    "The time to build a partition tree.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),

		treeNodes: factory.NewGauge(prometheus.GaugeOpts{
			Name: "gridtree_tree_nodes",
			Help: "The node count of the last built tree.",
		}),

		treeLeaves: factory.NewGauge(prometheus.GaugeOpts{
			Name: "gridtree_tree_leaves",
			Help: "The leaf count of the last built tree.",
		}),

		encodes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "gridtree_encodes_total",
			Help: "The number of tree encodings, by format and result.",
		}, []string{
			formatLabel,
			resultLabel,
			errTypeLabel,
		}),

		encodeLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gridtree_encode_duration_seconds",
			Help:    "The time to encode a tree.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{
			formatLabel,
		}),

		encodedBytes: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "gridtree_encoded_bytes",
			Help: "The size of the last encoded artifact.",
		}, []string{
			formatLabel,
		}),

		cacheEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "gridtree_cache_events_total",
			Help: "Cache hits, misses and writes.",
		}, []string{
			keyTypeLabel,
			eventLabel,
		}),

		cacheBytes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "gridtree_cache_written_bytes_total",
			Help: "Bytes written to the cache.",
		}, []string{
			keyTypeLabel,
		}),
	}
}

// Registry returns the registry holding every collector.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// WriteTextfile writes the current metric values to path in the textfile
// collector format. The file is replaced atomically.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

func resultLabels(err error) (string, string) {
	if err == nil {
		return "ok", ""
	}
	code := string(errors.GetCode(err))
	if code == "" {
		code = "unknown"
	}
	return "error", code
}

func (m *Metrics) OnBuildStart(context.Context, int, float64) {}

func (m *Metrics) OnBuildComplete(_ context.Context, nodes, leaves int, duration time.Duration, err error) {
	result, errType := resultLabels(err)
	m.builds.With(prometheus.Labels{
		resultLabel:  result,
		errTypeLabel: errType,
	}).Inc()
	m.buildLatency.Observe(duration.Seconds())
	if err == nil {
		m.treeNodes.Set(float64(nodes))
		m.treeLeaves.Set(float64(leaves))
	}
}

func (m *Metrics) OnEncodeStart(context.Context, string, int) {}

func (m *Metrics) OnEncodeComplete(_ context.Context, format string, size int, duration time.Duration, err error) {
	result, errType := resultLabels(err)
	m.encodes.With(prometheus.Labels{
		formatLabel:  format,
		resultLabel:  result,
		errTypeLabel: errType,
	}).Inc()
	m.encodeLatency.With(prometheus.Labels{formatLabel: format}).Observe(duration.Seconds())
	if err == nil {
		m.encodedBytes.With(prometheus.Labels{formatLabel: format}).Set(float64(size))
	}
}

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.cacheEvents.With(prometheus.Labels{keyTypeLabel: keyType, eventLabel: "hit"}).Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.cacheEvents.With(prometheus.Labels{keyTypeLabel: keyType, eventLabel: "miss"}).Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, size int) {
	m.cacheEvents.With(prometheus.Labels{keyTypeLabel: keyType, eventLabel: "set"}).Inc()
	m.cacheBytes.With(prometheus.Labels{keyTypeLabel: keyType}).Add(float64(size))
}

var (
	_ observability.PipelineHooks = (*Metrics)(nil)
	_ observability.CacheHooks    = (*Metrics)(nil)
)
