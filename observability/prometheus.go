package observability

import (
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusFactory is a MetricFactory backed by a prometheus registry.
// Dotted metric names are converted to prometheus form, so
// "docseq.number.issued" is exported as "docseq_number_issued_total".
type PrometheusFactory struct {
	reg     prometheus.Registerer
	buckets []float64

	mu         sync.Mutex
	counters   map[string]prometheus.Counter
	histograms map[string]prometheus.Histogram
}

// NewPrometheusFactory creates a factory that registers metrics on reg.
// A nil reg uses prometheus.DefaultRegisterer.
func NewPrometheusFactory(reg prometheus.Registerer) *PrometheusFactory {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	return &PrometheusFactory{
		reg:        reg,
		buckets:    prometheus.DefBuckets,
		counters:   make(map[string]prometheus.Counter),
		histograms: make(map[string]prometheus.Histogram),
	}
}

// WithBuckets overrides the histogram buckets for metrics created afterwards.
func (f *PrometheusFactory) WithBuckets(buckets []float64) *PrometheusFactory {
	if len(buckets) > 0 {
		f.buckets = buckets
	}
	return f
}

// Counter implements MetricFactory. Asking twice for the same name returns
// the same collector.
func (f *PrometheusFactory) Counter(name string) Counter {
	f.mu.Lock()
	defer f.mu.Unlock()

	if c, ok := f.counters[name]; ok {
		return c
	}
	c := prometheus.NewCounter(prometheus.CounterOpts{
		Name: promName(name) + "_total",
		Help: "docseq counter " + name + ".",
	})
	f.reg.MustRegister(c)
	f.counters[name] = c
	return c
}

// Histogram implements MetricFactory.
func (f *PrometheusFactory) Histogram(name string) Histogram {
	f.mu.Lock()
	defer f.mu.Unlock()

	if h, ok := f.histograms[name]; ok {
		return h
	}
	h := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    promName(name),
		Help:    "docseq histogram " + name + ".",
		Buckets: f.buckets,
	})
	f.reg.MustRegister(h)
	f.histograms[name] = h
	return h
}

func promName(name string) string {
	return strings.NewReplacer(".", "_", "-", "_").Replace(name)
}
