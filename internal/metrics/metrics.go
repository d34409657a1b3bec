// Package metrics wraps the small set of Prometheus collectors the engine
// emits: operations served, bloom-filter skips, flushes, and the live
// segment count. It gives the bloom filter's skip behavior — otherwise an
// invisible optimization — an observable signal, mirroring the metrics
// wiring present throughout the retrieval corpus's storage engines.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Recorder implements database.Recorder against a dedicated Prometheus
// registry, so a server can expose it on its own /metrics listener
// without colliding with the default global registry.
type Recorder struct {
	registry *prometheus.Registry

	operations *prometheus.CounterVec
	bloomSkips prometheus.Counter
	flushes    prometheus.Counter
	segments   prometheus.Gauge
}

// New constructs a Recorder and registers its collectors on a fresh
// registry.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lsmdb",
			Name:      "operations_total",
			Help:      "Requests served, partitioned by command and outcome.",
		}, []string{"op", "outcome"}),
		bloomSkips: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lsmdb",
			Name:      "bloom_skips_total",
			Help:      "Segments skipped during a Get because their bloom filter reported absence.",
		}),
		flushes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lsmdb",
			Name:      "flushes_total",
			Help:      "Memtable flushes to a new on-disk segment.",
		}),
		segments: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "lsmdb",
			Name:      "segments",
			Help:      "Number of segment files currently tracked by the segment registry.",
		}),
	}
	r.registry.MustRegister(r.operations, r.bloomSkips, r.flushes, r.segments)
	return r
}

// Registry exposes the underlying registry for promhttp.HandlerFor.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// ObserveOperation implements database.Recorder.
func (r *Recorder) ObserveOperation(op, outcome string) {
	r.operations.WithLabelValues(op, outcome).Inc()
}

// ObserveBloomSkip implements database.Recorder.
func (r *Recorder) ObserveBloomSkip() {
	r.bloomSkips.Inc()
}

// ObserveFlush implements database.Recorder.
func (r *Recorder) ObserveFlush() {
	r.flushes.Inc()
}

// SetSegmentCount implements database.Recorder.
func (r *Recorder) SetSegmentCount(n int) {
	r.segments.Set(float64(n))
}
