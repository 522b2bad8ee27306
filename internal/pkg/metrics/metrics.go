// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Push outcome label values.
const (
	PushDelivered   = "delivered"
	PushRetried     = "retried"
	PushTokenPruned = "token_pruned"
	PushUndelivered = "undelivered"
	PushRejected    = "rejected"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orderflow_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "orderflow_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "path", "status"},
	)

	OrderTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orderflow_order_transitions_total",
			Help: "Order status transitions by target status and result",
		},
		[]string{"status", "result"},
	)

	BrokerSubscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "orderflow_broker_subscribers",
			Help: "Live consumer subscriptions across all order topics",
		},
	)

	BrokerTopics = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "orderflow_broker_topics",
			Help: "Open order topics",
		},
	)

	BrokerEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orderflow_broker_events_total",
			Help: "Events fanned out to subscribers by kind",
		},
		[]string{"kind"},
	)

	BrokerDroppedSubscribers = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "orderflow_broker_dropped_subscribers_total",
			Help: "Subscribers dropped because they could not keep up",
		},
	)

	PushOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orderflow_push_outcomes_total",
			Help: "Push notification attempts by outcome",
		},
		[]string{"outcome"},
	)
)
