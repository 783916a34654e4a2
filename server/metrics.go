package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	// counters
	CounterRequests           *prometheus.CounterVec
	CounterHandleRequestPanic prometheus.Counter
	CounterUploads            *prometheus.CounterVec
	CounterStreakIncrements   prometheus.Counter
	CounterStreakRejections   prometheus.Counter
	CounterStreakResets       prometheus.Counter

	// gauges
	GaugeStreakCount      prometheus.Gauge
	GaugeCountdownSockets prometheus.Gauge

	// histograms
	HistRequestDuration prometheus.Histogram
}

func NewTestMetrics() *Metrics {
	return NewMetrics("fitstreak", "test", prometheus.NewRegistry())
}

func NewMetrics(namespace, subsystem string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		CounterRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "request",
			Help:      "The total number of incoming requests",
		}, []string{"method", "status"}),
		CounterHandleRequestPanic: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "handle_request_panic",
			Help:      "The total number of serve request panics",
		}),
		CounterUploads: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "uploads",
			Help:      "The total number of spreadsheet uploads by result",
		}, []string{"result"}),
		CounterStreakIncrements: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "streak_increments",
			Help:      "The total number of accepted streak increments",
		}),
		CounterStreakRejections: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "streak_rejections",
			Help:      "The total number of increments rejected because the day was already done",
		}),
		CounterStreakResets: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "streak_resets",
			Help:      "The total number of automatic streak resets",
		}),
		GaugeStreakCount: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "streak_count",
			Help:      "Current streak count",
		}),
		GaugeCountdownSockets: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "countdown_sockets",
			Help:      "Currently open countdown websockets",
		}),
		HistRequestDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Buckets:   []float64{0.0001, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
			Name:      "request_duration_seconds",
			Help:      "Total duration of requests in seconds",
		}),
	}
}

func (m *Metrics) StreakIncremented(count int) {
	m.CounterStreakIncrements.Inc()
	m.GaugeStreakCount.Set(float64(count))
}

func (m *Metrics) StreakRejected() {
	m.CounterStreakRejections.Inc()
}

func (m *Metrics) StreakReset(int) {
	m.CounterStreakResets.Inc()
	m.GaugeStreakCount.Set(0)
}
