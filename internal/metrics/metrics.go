package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// исходы разбора ответа модели
const (
	OutcomeStructured = "structured"
	OutcomeDegraded   = "degraded"
)

type Metrics struct {
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge

	LLMRequestsTotal   *prometheus.CounterVec
	LLMRequestDuration *prometheus.HistogramVec

	ParseOutcomesTotal *prometheus.CounterVec
	EssayWords         prometheus.Histogram

	RateLimitHitsTotal *prometheus.CounterVec

	ActiveSessions prometheus.Gauge

	gatherer prometheus.Gatherer
}

// New регистрирует метрики в глобальном реестре. Вызывать один раз на процесс.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer, prometheus.DefaultGatherer)
}

// NewWithRegistry - для тестов и встраивания: свой реестр, свой /metrics.
func NewWithRegistry(reg prometheus.Registerer, gatherer prometheus.Gatherer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		RequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "essayblitz_requests_total",
				Help: "Total number of feedback requests processed",
			},
			[]string{"surface", "status"},
		),
		RequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "essayblitz_request_duration_seconds",
				Help:    "End-to-end request duration in seconds",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"surface"},
		),
		RequestsInFlight: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "essayblitz_requests_in_flight",
				Help: "Number of requests currently being processed",
			},
		),

		LLMRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "essayblitz_llm_requests_total",
				Help: "Total number of LLM API requests",
			},
			[]string{"provider", "status"},
		),
		LLMRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "essayblitz_llm_request_duration_seconds",
				Help:    "LLM request duration in seconds",
				Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"provider"},
		),

		ParseOutcomesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "essayblitz_parse_outcomes_total",
				Help: "Parsed model responses by format and outcome",
			},
			[]string{"format", "outcome"},
		),
		EssayWords: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "essayblitz_essay_words",
				Help:    "Word count of submitted essays",
				Buckets: []float64{50, 100, 200, 300, 500, 650, 1000, 2000},
			},
		),

		RateLimitHitsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "essayblitz_rate_limit_hits_total",
				Help: "Total number of rate limit hits",
			},
			[]string{"surface"},
		),

		ActiveSessions: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "essayblitz_active_sessions",
				Help: "Number of chat sessions held in memory",
			},
		),

		gatherer: gatherer,
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) RecordRequest(surface, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(surface, status).Inc()
	m.RequestDuration.WithLabelValues(surface).Observe(duration.Seconds())
}

func (m *Metrics) RecordLLMRequest(provider, status string, duration time.Duration) {
	m.LLMRequestsTotal.WithLabelValues(provider, status).Inc()
	m.LLMRequestDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

func (m *Metrics) RecordParse(format string, degraded bool) {
	outcome := OutcomeStructured
	if degraded {
		outcome = OutcomeDegraded
	}
	m.ParseOutcomesTotal.WithLabelValues(format, outcome).Inc()
}

func (m *Metrics) ObserveEssayWords(words int) {
	m.EssayWords.Observe(float64(words))
}

func (m *Metrics) RecordRateLimitHit(surface string) {
	m.RateLimitHitsTotal.WithLabelValues(surface).Inc()
}

func (m *Metrics) SetActiveSessions(count int) {
	m.ActiveSessions.Set(float64(count))
}

func (m *Metrics) IncRequestsInFlight() {
	m.RequestsInFlight.Inc()
}

func (m *Metrics) DecRequestsInFlight() {
	m.RequestsInFlight.Dec()
}
