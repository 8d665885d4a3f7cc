package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Submission outcomes.
const (
	OutcomeSuccess      = "success"
	OutcomeInvalidInput = "validation_error"
	OutcomeServiceError = "service_error"
	OutcomeBusy         = "in_flight"
)

// Metrics holds the Prometheus collectors for the advisor.
type Metrics struct {
	Submissions      *prometheus.CounterVec
	Categories       *prometheus.CounterVec
	PlanDuration     prometheus.Histogram
	RateLimited      prometheus.Counter
	InFlightRequests prometheus.Gauge
}

// New registers the collectors with reg. Pass a fresh prometheus.NewRegistry()
// in tests to avoid duplicate registration.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Submissions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "diet_advisor_submissions_total",
			Help: "Form submissions by outcome",
		}, []string{"outcome"}),

		Categories: f.NewCounterVec(prometheus.CounterOpts{
			Name: "diet_advisor_bmi_category_total",
			Help: "Successfully classified submissions by BMI category",
		}, []string{"category"}),

		PlanDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "diet_advisor_plan_request_duration_seconds",
			Help:    "Time spent waiting on the text generation service",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40, 60},
		}),

		RateLimited: f.NewCounter(prometheus.CounterOpts{
			Name: "diet_advisor_rate_limited_total",
			Help: "Requests rejected by the per-IP rate limiter",
		}),

		InFlightRequests: f.NewGauge(prometheus.GaugeOpts{
			Name: "diet_advisor_plan_requests_in_flight",
			Help: "Outstanding calls to the text generation service",
		}),
	}
}
