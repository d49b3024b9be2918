package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersSubmittedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_orders_submitted_total",
		Help: "Total number of accepted order submissions",
	}, []string{"mode"}) // created | merged | forced

	OrderConflictsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pos_order_conflicts_total",
		Help: "Total number of submissions rejected because the table is assigned to another waiter",
	})

	OrdersFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_orders_failed_total",
		Help: "Total number of failed order submissions",
	}, []string{"reason"})

	TablesSettledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pos_tables_settled_total",
		Help: "Total number of table settlements",
	})

	OrdersSettledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pos_orders_settled_total",
		Help: "Total number of orders transitioned to paid",
	})

	SettlementsFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_settlements_failed_total",
		Help: "Total number of failed settlement attempts",
	}, []string{"reason"})

	PaymentsAmountTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pos_payments_amount_total",
		Help: "Running sum of settled payment amounts",
	})

	KitchenTicketsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pos_kitchen_tickets_total",
		Help: "Total number of kitchen tickets dispatched",
	})

	KitchenTicketsFailedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pos_kitchen_tickets_failed_total",
		Help: "Total number of kitchen tickets that failed to dispatch",
	})

	SubmitLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pos_submit_latency_seconds",
		Help:    "Latency of order submission transactions",
		Buckets: prometheus.DefBuckets,
	})

	SettleLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pos_settle_latency_seconds",
		Help:    "Latency of settlement transactions",
		Buckets: prometheus.DefBuckets,
	})

	TableStatusCacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_table_status_cache_total",
		Help: "Table status board cache lookups",
	}, []string{"result"}) // hit | miss

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
