package slab

// metrics.go is a thin abstraction over Prometheus, same shape as the
// teacher's metrics.go: when New is given WithMetrics(reg), labeled
// collectors are created and registered; otherwise a no-op sink is used so
// the hot path never pays for a metrics update it didn't ask for.
//
// Metrics are per-cache, labeled by cache name; aggregation across caches is
// left to PromQL (sum/rate over the "cache" label).
//
// © 2025 slabcache authors. MIT License.

import (
	"github.com/prometheus/client_golang/prometheus"
)

// metricsSink is the internal interface Cache and its components use; never
// exposed outside the package.
type metricsSink interface {
	incAlloc(cache string)
	incFree(cache string)
	incGrow(cache string)
	incReap(cache string)
	incOOM(cache string)
	setMagsize(cache string, v int)
	setLive(cache string, v int64)
	setSlabs(cache string, empty, partial, full int)
}

type noopMetrics struct{}

func (noopMetrics) incAlloc(string)                    {}
func (noopMetrics) incFree(string)                      {}
func (noopMetrics) incGrow(string)                      {}
func (noopMetrics) incReap(string)                      {}
func (noopMetrics) incOOM(string)                       {}
func (noopMetrics) setMagsize(string, int)              {}
func (noopMetrics) setLive(string, int64)               {}
func (noopMetrics) setSlabs(string, int, int, int)      {}

type promMetrics struct {
	allocs  *prometheus.CounterVec
	frees   *prometheus.CounterVec
	grows   *prometheus.CounterVec
	reaps   *prometheus.CounterVec
	ooms    *prometheus.CounterVec
	magsize *prometheus.GaugeVec
	live    *prometheus.GaugeVec
	slabs   *prometheus.GaugeVec
}

func newPromMetrics(reg *prometheus.Registry) *promMetrics {
	label := []string{"cache"}
	pm := &promMetrics{
		allocs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "slabcache", Name: "allocs_total", Help: "Number of allocations, counted before the constructor runs.",
		}, label),
		frees: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "slabcache", Name: "frees_total", Help: "Number of frees.",
		}, label),
		grows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "slabcache", Name: "grows_total", Help: "Number of slab imports from the source arena.",
		}, label),
		reaps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "slabcache", Name: "reaps_total", Help: "Number of Reap calls.",
		}, label),
		ooms: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "slabcache", Name: "oom_total", Help: "Number of allocations that failed with out-of-memory.",
		}, label),
		magsize: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "slabcache", Name: "depot_magsize", Help: "Current depot target magazine capacity.",
		}, label),
		live: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "slabcache", Name: "live_objects", Help: "Outstanding allocated objects.",
		}, label),
		slabs: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "slabcache", Name: "slabs", Help: "Slab count by list membership.",
		}, []string{"cache", "list"}),
	}
	reg.MustRegister(pm.allocs, pm.frees, pm.grows, pm.reaps, pm.ooms, pm.magsize, pm.live, pm.slabs)
	return pm
}

func (m *promMetrics) incAlloc(cache string) { m.allocs.WithLabelValues(cache).Inc() }
func (m *promMetrics) incFree(cache string)  { m.frees.WithLabelValues(cache).Inc() }
func (m *promMetrics) incGrow(cache string)  { m.grows.WithLabelValues(cache).Inc() }
func (m *promMetrics) incReap(cache string)  { m.reaps.WithLabelValues(cache).Inc() }
func (m *promMetrics) incOOM(cache string)   { m.ooms.WithLabelValues(cache).Inc() }
func (m *promMetrics) setMagsize(cache string, v int) {
	m.magsize.WithLabelValues(cache).Set(float64(v))
}
func (m *promMetrics) setLive(cache string, v int64) {
	m.live.WithLabelValues(cache).Set(float64(v))
}
func (m *promMetrics) setSlabs(cache string, empty, partial, full int) {
	m.slabs.WithLabelValues(cache, "empty").Set(float64(empty))
	m.slabs.WithLabelValues(cache, "partial").Set(float64(partial))
	m.slabs.WithLabelValues(cache, "full").Set(float64(full))
}

func newMetricsSink(reg *prometheus.Registry) metricsSink {
	if reg == nil {
		return noopMetrics{}
	}
	return newPromMetrics(reg)
}
