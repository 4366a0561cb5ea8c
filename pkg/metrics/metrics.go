package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request latency in seconds.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	// MQ consume latency in milliseconds.
	MQConsumeLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mq_consume_latency_ms",
			Help:    "MQ message consumption latency in milliseconds",
			Buckets: prometheus.ExponentialBuckets(10, 2, 10), // 10ms to ~10s
		},
		[]string{"routing_key", "queue"},
	)

	// Task mutation counter.
	TaskMutationCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "task_mutation_count",
			Help: "Total number of task mutations",
		},
		[]string{"action"}, // action: created, updated, deleted
	)

	// Activity log appends that failed and were dropped.
	ActivityAppendFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "activity_append_failures_total",
			Help: "Total number of dropped activity log appends",
		},
	)

	// Outbound status webhook deliveries.
	WebhookDeliveryCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "status_webhook_delivery_count",
			Help: "Total number of status webhook delivery attempts",
		},
		[]string{"outcome"}, // outcome: delivered, failed, skipped, deduped
	)
)

// RecordHTTPRequestDuration records HTTP request latency.
func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordMQConsumeLatency records MQ consumption latency.
func RecordMQConsumeLatency(routingKey, queue string, duration time.Duration) {
	MQConsumeLatency.WithLabelValues(routingKey, queue).Observe(float64(duration.Milliseconds()))
}

// IncrementTaskMutation increments the mutation counter for an action.
func IncrementTaskMutation(action string) {
	TaskMutationCount.WithLabelValues(action).Inc()
}

// IncrementWebhookDelivery increments the delivery counter for an outcome.
func IncrementWebhookDelivery(outcome string) {
	WebhookDeliveryCount.WithLabelValues(outcome).Inc()
}
