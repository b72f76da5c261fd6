package graph

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics collects Prometheus metrics for workflow execution, namespaced
// under "graphflow_":
//
//   - sessions_active (gauge): Invoke calls currently executing a step loop.
//   - steps_total (counter, labels node_id/status): node invocations by
//     outcome (success, failed, cancelled).
//   - step_latency_ms (histogram, label node_id): node execution latency.
//   - checkpoint_latency_ms (histogram): checkpoint write latency.
//   - suspensions_total (counter): runs parked awaiting external input.
//   - failures_total (counter): runs that ended in a failed status.
//
// Register against a caller-owned registry and expose it however the host
// application already serves /metrics:
//
//	registry := prometheus.NewRegistry()
//	metrics := graph.NewMetrics(registry)
//	runner, _ := graph.NewRunner(g, graph.WithMetrics(metrics))
//	http.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
type Metrics struct {
	sessionsActive    prometheus.Gauge
	stepsTotal        *prometheus.CounterVec
	stepLatency       *prometheus.HistogramVec
	checkpointLatency prometheus.Histogram
	suspensionsTotal  prometheus.Counter
	failuresTotal     prometheus.Counter
}

// NewMetrics creates and registers the metric set on the given registerer.
// Pass prometheus.DefaultRegisterer to use the process-global registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		sessionsActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "graphflow",
			Name:      "sessions_active",
			Help:      "Number of sessions currently executing a step loop.",
		}),
		stepsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "graphflow",
			Name:      "steps_total",
			Help:      "Node invocations by node and outcome.",
		}, []string{"node_id", "status"}),
		stepLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "graphflow",
			Name:      "step_latency_ms",
			Help:      "Node execution latency in milliseconds.",
			Buckets:   []float64{1, 5, 10, 50, 100, 500, 1000, 5000, 10000, 60000},
		}, []string{"node_id"}),
		checkpointLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "graphflow",
			Name:      "checkpoint_latency_ms",
			Help:      "Checkpoint write latency in milliseconds.",
			Buckets:   []float64{1, 5, 10, 50, 100, 500, 1000},
		}),
		suspensionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "graphflow",
			Name:      "suspensions_total",
			Help:      "Runs parked in the suspended status awaiting external input.",
		}),
		failuresTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "graphflow",
			Name:      "failures_total",
			Help:      "Runs that ended in a failed status.",
		}),
	}
}

func (m *Metrics) sessionStarted()  { m.sessionsActive.Inc() }
func (m *Metrics) sessionFinished() { m.sessionsActive.Dec() }

func (m *Metrics) stepObserved(nodeID, status string, d time.Duration) {
	m.stepsTotal.WithLabelValues(nodeID, status).Inc()
	m.stepLatency.WithLabelValues(nodeID).Observe(float64(d.Milliseconds()))
}

func (m *Metrics) checkpointSaved(d time.Duration) {
	m.checkpointLatency.Observe(float64(d.Milliseconds()))
}

func (m *Metrics) suspended() { m.suspensionsTotal.Inc() }
func (m *Metrics) failed()    { m.failuresTotal.Inc() }
