package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// Login-flow metrics

	LinksIssuedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "maglink",
		Name:      "links_issued_total",
		Help:      "Total sign-in links issued, by class.",
	}, []string{"class"})

	RedemptionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "maglink",
		Name:      "redemptions_total",
		Help:      "Total redemption attempts, by outcome.",
	}, []string{"outcome"})

	ReplayStoreErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "maglink",
		Name:      "replay_store_errors_total",
		Help:      "Replay-store failures where verification proceeded on signature and expiry alone.",
	})

	// Mail metrics

	MailDeliveriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "maglink",
		Name:      "mail_deliveries_total",
		Help:      "Delivery attempts per transport, by outcome.",
	}, []string{"transport", "outcome"})

	// Maintenance metrics

	AuditPrunedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "maglink",
		Name:      "audit_pruned_total",
		Help:      "Audit rows removed by the retention pruner.",
	})

	// HTTP metrics

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "maglink",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "maglink",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests.",
	}, []string{"method", "path", "status"})
)

func Register() {
	prometheus.MustRegister(
		LinksIssuedTotal,
		RedemptionsTotal,
		ReplayStoreErrorsTotal,
		MailDeliveriesTotal,
		AuditPrunedTotal,
		HTTPRequestDuration,
		HTTPRequestsTotal,
	)
}
