package handler

import "github.com/prometheus/client_golang/prometheus"

var (
	ordersCreatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pos_orders_created_total",
		Help: "Orders recorded by checkout",
	})

	checkoutFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pos_checkout_failures_total",
			Help: "Rejected or failed checkouts by reason",
		},
		[]string{"reason"},
	)

	orderTotalAmount = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "pos_order_total_amount",
		Help:    "Order totals in currency units",
		Buckets: []float64{2, 5, 10, 20, 50, 100},
	})
)

func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(ordersCreatedTotal, checkoutFailuresTotal, orderTotalAmount)
}
