package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics carries the per-binary Prometheus registry and every docqa
// instrument. One instance per process; the api and worker register the
// same set and simply leave the irrelevant series at zero.
type Metrics struct {
	service  string
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	answerTotal       *prometheus.CounterVec
	answerDuration    *prometheus.HistogramVec
	retrievedPassages prometheus.Histogram

	indexLookupTotal   *prometheus.CounterVec
	indexBuildTotal    *prometheus.CounterVec
	indexBuildDuration *prometheus.HistogramVec
	indexBuildChunks   prometheus.Histogram

	warmTotal    *prometheus.CounterVec
	warmDuration *prometheus.HistogramVec
}

func New(service string) *Metrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docqa",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docqa",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "docqa",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	answerTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docqa",
			Subsystem: "rag",
			Name:      "answers_total",
			Help:      "Total chat answers by result.",
		},
		[]string{"service", "result"},
	)
	answerDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docqa",
			Subsystem: "rag",
			Name:      "answer_duration_seconds",
			Help:      "End-to-end answer duration in seconds.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"service"},
	)
	retrievedPassages := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "docqa",
			Subsystem: "rag",
			Name:      "retrieved_passages",
			Help:      "Passages retrieved per answered question.",
			Buckets:   []float64{0, 1, 2, 4, 6, 8},
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	indexLookupTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docqa",
			Subsystem: "index",
			Name:      "lookup_total",
			Help:      "Chunk index lookups by outcome (hit/miss).",
		},
		[]string{"service", "outcome"},
	)
	indexBuildTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docqa",
			Subsystem: "index",
			Name:      "builds_total",
			Help:      "Chunk index builds by status.",
		},
		[]string{"service", "status"},
	)
	indexBuildDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docqa",
			Subsystem: "index",
			Name:      "build_duration_seconds",
			Help:      "Chunk index build duration in seconds by status.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "status"},
	)
	indexBuildChunks := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "docqa",
			Subsystem: "index",
			Name:      "build_chunks",
			Help:      "Chunks produced per successful index build.",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250, 500},
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	warmTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docqa",
			Subsystem: "worker",
			Name:      "warm_total",
			Help:      "Attachment warm attempts by status.",
		},
		[]string{"service", "status"},
	)
	warmDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docqa",
			Subsystem: "worker",
			Name:      "warm_duration_seconds",
			Help:      "Attachment warm duration in seconds by status.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "status"},
	)

	registry.MustRegister(
		requestTotal, requestDuration, requestInFlight,
		answerTotal, answerDuration, retrievedPassages,
		indexLookupTotal, indexBuildTotal, indexBuildDuration, indexBuildChunks,
		warmTotal, warmDuration,
	)

	return &Metrics{
		service:  service,
		registry: registry,

		requestTotal:    requestTotal,
		requestDuration: requestDuration,
		requestInFlight: requestInFlight,

		answerTotal:       answerTotal,
		answerDuration:    answerDuration,
		retrievedPassages: retrievedPassages,

		indexLookupTotal:   indexLookupTotal,
		indexBuildTotal:    indexBuildTotal,
		indexBuildDuration: indexBuildDuration,
		indexBuildChunks:   indexBuildChunks,

		warmTotal:    warmTotal,
		warmDuration: warmDuration,
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) RecordRequest(method, path string, status int, duration time.Duration) {
	m.requestTotal.WithLabelValues(m.service, method, path, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(m.service, method, path).Observe(duration.Seconds())
}

func (m *Metrics) RequestStarted() {
	m.requestInFlight.Inc()
}

func (m *Metrics) RequestFinished() {
	m.requestInFlight.Dec()
}

func (m *Metrics) RecordAnswer(duration time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	m.answerTotal.WithLabelValues(m.service, result).Inc()
	m.answerDuration.WithLabelValues(m.service).Observe(duration.Seconds())
}

// ObserveRetrieval implements usecase.AnswerObserver.
func (m *Metrics) ObserveRetrieval(passages int) {
	m.retrievedPassages.Observe(float64(passages))
}

// IndexLookup implements index.Observer.
func (m *Metrics) IndexLookup(outcome string) {
	m.indexLookupTotal.WithLabelValues(m.service, outcome).Inc()
}

// IndexBuild implements index.Observer.
func (m *Metrics) IndexBuild(duration time.Duration, chunks int, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.indexBuildTotal.WithLabelValues(m.service, status).Inc()
	m.indexBuildDuration.WithLabelValues(m.service, status).Observe(duration.Seconds())
	if err == nil {
		m.indexBuildChunks.Observe(float64(chunks))
	}
}

func (m *Metrics) RecordWarm(duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.warmTotal.WithLabelValues(m.service, status).Inc()
	m.warmDuration.WithLabelValues(m.service, status).Observe(duration.Seconds())
}
