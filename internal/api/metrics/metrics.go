// Package metrics defines and registers all custom Prometheus metrics for the
// storefront API. It is the single source of truth for metric names, labels,
// and help strings.
//
// Collectors are registered with the default Prometheus registry through
// promauto at package initialisation; HTTP request metrics come from the
// echoprometheus middleware installed by the router.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "storefront"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthEventsTotal counts authentication outcomes.
// Labels:
//   - event: "register", "login", "refresh" or "logout"
//   - result: "success" or "failure"
var AuthEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_events_total",
		Help:      "Total number of authentication attempts, by event and result.",
	},
	[]string{"event", "result"},
)

// ── Order metrics ─────────────────────────────────────────────────────────────

// OrdersCreatedTotal counts persisted orders.
// Label:
//   - method: "razorpay" or "cod"
var OrdersCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orders_created_total",
		Help:      "Total number of orders created, by payment method.",
	},
	[]string{"method"},
)

// OrdersRejectedTotal counts checkouts that did not produce an order.
// Label:
//   - reason: e.g. "verification_failed", "product_not_found", "cod_unavailable", "duplicate_payment"
var OrdersRejectedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orders_rejected_total",
		Help:      "Total number of rejected checkouts, by reason.",
	},
	[]string{"reason"},
)

// OrderStatusTransitionsTotal counts admin status updates.
// Label:
//   - status: the status applied (e.g. "accepted")
var OrderStatusTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "order_status_transitions_total",
		Help:      "Total number of order status transitions, by new status.",
	},
	[]string{"status"},
)

// ── Media metrics ─────────────────────────────────────────────────────────────

// MediaUploadsTotal counts cloud media migrations.
// Label:
//   - result: "success" or "failure"
var MediaUploadsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "media_uploads_total",
		Help:      "Total number of staged files migrated to the media host, by result.",
	},
	[]string{"result"},
)

// MediaUploadDuration measures a single migration including retries.
var MediaUploadDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "media_upload_duration_seconds",
		Help:      "Duration of a staged file migration to the media host.",
		Buckets:   []float64{.25, .5, 1, 2.5, 5, 10, 30, 60},
	},
)

// ── Background task metrics ───────────────────────────────────────────────────

// TasksProcessedTotal counts background tasks run by the dispatcher.
// Labels:
//   - task: task name (e.g. "media_migrate", "order_receipt", "newsletter_send")
//   - result: "success" or "failure"
var TasksProcessedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tasks_processed_total",
		Help:      "Total number of background tasks processed, by task and result.",
	},
	[]string{"task", "result"},
)

// TaskQueueDepth tracks the number of tasks waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var TaskQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "task_queue_depth",
		Help:      "Current number of tasks pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// TaskDuration measures how long a background task takes to run.
var TaskDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "task_duration_seconds",
		Help:      "Duration of background tasks from dequeue to completion.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"task"},
)

// ── Newsletter metrics ────────────────────────────────────────────────────────

// NewsletterEmailsTotal counts newsletter deliveries.
// Label:
//   - result: "sent" or "failed"
var NewsletterEmailsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "newsletter_emails_total",
		Help:      "Total number of newsletter emails attempted, by result.",
	},
	[]string{"result"},
)
