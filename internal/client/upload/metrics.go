package upload

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the orchestrator's Prometheus collectors.
type Metrics struct {
	batches  *prometheus.CounterVec
	files    *prometheus.CounterVec
	bytes    prometheus.Counter
	duration prometheus.Histogram
	inFlight prometheus.Gauge
}

// NewMetrics registers the collectors with reg under the "clubattach"
// namespace.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		batches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clubattach",
			Subsystem: "upload",
			Name:      "batches_total",
			Help:      "Upload batches by result.",
		}, []string{"result"}),
		files: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clubattach",
			Subsystem: "upload",
			Name:      "files_total",
			Help:      "Files sent by result.",
		}, []string{"result"}),
		bytes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "clubattach",
			Subsystem: "upload",
			Name:      "bytes_total",
			Help:      "Payload bytes of completed batches.",
		}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "clubattach",
			Subsystem: "upload",
			Name:      "batch_duration_seconds",
			Help:      "Wall time of the batch network call.",
			Buckets:   prometheus.DefBuckets,
		}),
		inFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "clubattach",
			Subsystem: "upload",
			Name:      "in_flight",
			Help:      "1 while a batch is being sent.",
		}),
	}
}

func (m *Metrics) observe(result string, files int, bytes int64, seconds float64) {
	if m == nil {
		return
	}
	m.batches.WithLabelValues(result).Inc()
	m.files.WithLabelValues(result).Add(float64(files))
	if result == resultOK {
		m.bytes.Add(float64(bytes))
	}
	m.duration.Observe(seconds)
}

func (m *Metrics) setInFlight(on bool) {
	if m == nil {
		return
	}
	if on {
		m.inFlight.Set(1)
	} else {
		m.inFlight.Set(0)
	}
}
