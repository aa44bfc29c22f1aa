package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	InFlightGauge   prometheus.Gauge

	RegistrationsTotal prometheus.Counter
	TriageAssignments  *prometheus.CounterVec
	Discharges         *prometheus.CounterVec
	ActivePatients     prometheus.Gauge
	BedsOccupied       prometheus.Gauge
	AlertActivations   *prometheus.CounterVec

	WaitRefreshDuration prometheus.Histogram
}

func NewCollector(serviceName string) *Collector {
	return &Collector{
		RequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by method, path, and status code.",
		}, []string{"method", "path", "status"}),

		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: serviceName,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency distribution.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"method", "path", "status"}),

		InFlightGauge: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: serviceName,
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),

		RegistrationsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "flow",
			Name:      "registrations_total",
			Help:      "Total number of patients registered.",
		}),

		TriageAssignments: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "flow",
			Name:      "triage_assignments_total",
			Help:      "Total triage assignments by acuity level.",
		}, []string{"level"}),

		Discharges: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "flow",
			Name:      "discharges_total",
			Help:      "Total discharges by disposition.",
		}, []string{"disposition"}),

		ActivePatients: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: serviceName,
			Subsystem: "flow",
			Name:      "active_patients",
			Help:      "Current number of non-terminal patients in the department.",
		}),

		BedsOccupied: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: serviceName,
			Subsystem: "flow",
			Name:      "beds_occupied",
			Help:      "Current number of occupied beds.",
		}),

		AlertActivations: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "alerts",
			Name:      "activations_total",
			Help:      "Total alert activations by kind.",
		}, []string{"kind"}),

		WaitRefreshDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: serviceName,
			Subsystem: "flow",
			Name:      "wait_refresh_duration_seconds",
			Help:      "Duration of the periodic wait-time sweep.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
		}),
	}
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
