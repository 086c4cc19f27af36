package obs

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// CartMutationsTotal counts cart state transitions by operation.
	CartMutationsTotal *prometheus.CounterVec
	// CheckoutValidationFailures counts failing fields on rejected submissions.
	CheckoutValidationFailures *prometheus.CounterVec
	// OrderSubmissionsTotal counts submission attempts by outcome.
	OrderSubmissionsTotal *prometheus.CounterVec
	// OrderSubmissionLatency records order API latency in milliseconds.
	OrderSubmissionLatency *prometheus.HistogramVec
	// CheckoutRedirectsTotal counts post-success redirects fired or cancelled.
	CheckoutRedirectsTotal *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		CartMutationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_mutations_total",
			Help:      "Count of cart mutations by operation.",
		}, []string{"op"})
		CheckoutValidationFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_validation_failures_total",
			Help:      "Count of checkout fields failing on rejected submissions.",
		}, []string{"field"})
		OrderSubmissionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_submissions_total",
			Help:      "Count of order submission attempts by outcome.",
		}, []string{"result"})
		OrderSubmissionLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "order_submission_duration_ms",
			Help:      "Latency of order API calls in milliseconds.",
			Buckets:   []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}, []string{"result"})
		CheckoutRedirectsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_redirects_total",
			Help:      "Count of post-checkout redirects by outcome.",
		}, []string{"result"})

		mustRegisterCollector(reg, CartMutationsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				CartMutationsTotal = v
			}
		})
		mustRegisterCollector(reg, CheckoutValidationFailures, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				CheckoutValidationFailures = v
			}
		})
		mustRegisterCollector(reg, OrderSubmissionsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				OrderSubmissionsTotal = v
			}
		})
		mustRegisterCollector(reg, OrderSubmissionLatency, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.HistogramVec); ok {
				OrderSubmissionLatency = v
			}
		})
		mustRegisterCollector(reg, CheckoutRedirectsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				CheckoutRedirectsTotal = v
			}
		})
	})
}

func mustRegisterCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register domain metric: %w", err))
	}
}
