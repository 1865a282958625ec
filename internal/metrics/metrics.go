package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors of the engine and the HTTP surface.
// It implements mathgrade.Recorder.
type Metrics struct {
	// Engine metrics
	StrategyTotal       *prometheus.CounterVec
	EquivalenceTotal    *prometheus.CounterVec
	EquivalenceDuration prometheus.Histogram
	CacheRequests       *prometheus.CounterVec

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// New registers all collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		StrategyTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mathgrade_parse_strategy_total",
				Help: "Parses resolved by each cascade strategy",
			},
			[]string{"strategy"},
		),
		EquivalenceTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mathgrade_equivalence_total",
				Help: "Equivalence verdicts by deciding tier and result",
			},
			[]string{"tier", "result"},
		),
		EquivalenceDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "mathgrade_equivalence_duration_seconds",
				Help:    "Time to reach an equivalence verdict",
				Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
		),
		CacheRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mathgrade_cache_requests_total",
				Help: "Result cache lookups by cache and outcome",
			},
			[]string{"cache", "outcome"},
		),
		RequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mathgrade_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mathgrade_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),
	}
}

func (m *Metrics) ObserveStrategy(strategy string) {
	m.StrategyTotal.WithLabelValues(strategy).Inc()
}

func (m *Metrics) ObserveVerdict(tier string, equivalent bool, elapsed time.Duration) {
	m.EquivalenceTotal.WithLabelValues(tier, strconv.FormatBool(equivalent)).Inc()
	m.EquivalenceDuration.Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveCache(cache string, hit bool) {
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	m.CacheRequests.WithLabelValues(cache, outcome).Inc()
}

// ObserveRequest records one HTTP request.
func (m *Metrics) ObserveRequest(method, path string, status int, elapsed time.Duration) {
	m.RequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}
