package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OffersSubmittedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "aguamarket_offers_submitted_total",
		Help: "Total number of offers successfully submitted.",
	})

	OffersAcceptedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "aguamarket_offers_accepted_total",
		Help: "Total number of offers accepted by consumers.",
	})

	OffersWithdrawnTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "aguamarket_offers_withdrawn_total",
		Help: "Total number of offers withdrawn by providers.",
	})

	OffersExpiredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "aguamarket_offers_expired_total",
		Help: "Total number of active offers expired by the sweep.",
	})

	SweepRunsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "aguamarket_sweep_runs_total",
		Help: "Total number of expiry sweep passes.",
	})

	NotificationDispatchErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "aguamarket_notification_dispatch_errors_total",
		Help: "Total number of notification jobs that failed to dispatch.",
	})

	OperationErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aguamarket_operation_errors_total",
		Help: "Total number of errors encountered during specific operations.",
	},
		[]string{"operation"},
	)
)
