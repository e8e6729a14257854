// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_http_requests_total",
			Help: "Total number of HTTP requests served",
		},
		[]string{"route", "method", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "relay_http_request_duration_seconds",
			Help: "Duration of HTTP request handling in seconds",
		},
		[]string{"route"},
	)

	DispatchJobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_dispatch_jobs_total",
			Help: "Inbound reply jobs processed by intent and outcome",
		},
		[]string{"intent", "outcome"},
	)

	DispatchQueueDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_dispatch_queue_dropped_total",
			Help: "Inbound reply jobs dropped because the queue was full",
		},
	)

	SMSMessagesSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_sms_messages_sent_total",
			Help: "Outbound SMS send attempts by provider status",
		},
		[]string{"status"},
	)
)
