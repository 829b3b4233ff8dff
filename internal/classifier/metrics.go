package classifier

import "github.com/prometheus/client_golang/prometheus"

var (
	queueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "imgclassd",
			Subsystem: "classifier",
			Name:      "queue_depth",
			Help:      "Work items waiting in the request channel",
		},
	)

	classifyDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "imgclassd",
			Subsystem: "classifier",
			Name:      "classify_duration_seconds",
			Help:      "Worker-side time to decode, normalize, predict and rank one item",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"variant"},
	)

	queueWait = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "imgclassd",
			Subsystem: "classifier",
			Name:      "queue_wait_seconds",
			Help:      "Time a work item spent in the request channel before a worker picked it up",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"variant"},
	)

	resultsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "imgclassd",
			Subsystem: "classifier",
			Name:      "results_total",
			Help:      "Results delivered to callers by kind (ok, input_error, engine_fault, closed)",
		},
		[]string{"kind"},
	)

	admissionRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "imgclassd",
			Subsystem: "classifier",
			Name:      "admission_rejected_total",
			Help:      "Work items refused by the request channel",
		},
		[]string{"kind"},
	)
)

func init() {
	prometheus.MustRegister(queueDepth, classifyDuration, queueWait, resultsTotal, admissionRejected)
}
