// Package metrics defines and registers all custom Prometheus metrics for the
// storefront. It is the single source of truth for metric names, labels and
// help strings. Metrics are registered with the default registry through
// promauto when the package is loaded.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "storefront"

// ── Order metrics ─────────────────────────────────────────────────────────────

// OrdersPlacedTotal counts orders created through checkout.
// Label:
//   - backend: the active backend ("ephemeral" or "remote")
var OrdersPlacedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orders_placed_total",
		Help:      "Total number of orders placed at checkout.",
	},
	[]string{"backend"},
)

// CheckoutFailuresTotal counts checkouts that did not produce an order.
// Label:
//   - reason: "no_session", "invalid_address", "empty_cart", "unavailable_product", "encode", "create_order"
var CheckoutFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "checkout_failures_total",
		Help:      "Total number of failed checkout attempts, by reason.",
	},
	[]string{"reason"},
)

// OrderStatusChangesTotal counts accepted order status transitions.
// Label:
//   - status: the new status
var OrderStatusChangesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "order_status_changes_total",
		Help:      "Total number of order status transitions applied.",
	},
	[]string{"status"},
)

// SellerOrderScanSize records how many orders a seller-orders query had to
// read before attribution filtering.
var SellerOrderScanSize = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "seller_order_scan_size",
		Help:      "Number of orders scanned per seller-orders query.",
		Buckets:   prometheus.ExponentialBuckets(1, 4, 8), // 1 .. 16384
	},
)

// ── Catalog metrics ───────────────────────────────────────────────────────────

// ProductWritesTotal counts successful product writes.
// Label:
//   - op: "create", "update" or "delete"
var ProductWritesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "product_writes_total",
		Help:      "Total number of product writes, by operation.",
	},
	[]string{"op"},
)

// ── Session metrics ───────────────────────────────────────────────────────────

// SessionChecksTotal counts resolved session checks.
// Label:
//   - result: "user" or "anonymous"
var SessionChecksTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_checks_total",
		Help:      "Total number of session checks, by outcome.",
	},
	[]string{"result"},
)

// ── Event metrics ─────────────────────────────────────────────────────────────

// EventsPublishedTotal counts order events delivered to the publisher.
// Label:
//   - type: the event type (e.g. "order.placed")
var EventsPublishedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_published_total",
		Help:      "Total number of order events published.",
	},
	[]string{"type"},
)

// EventsErrorsTotal counts order events that could not be published.
// Label:
//   - reason: "publish_failed" or "queue_full"
var EventsErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_errors_total",
		Help:      "Total number of order events that failed to publish.",
	},
	[]string{"reason"},
)

// EventsQueueDepth tracks the number of events waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var EventsQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "events_queue_depth",
		Help:      "Current number of events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// EventPublishDuration measures how long a single publish takes.
// Label:
//   - type: the event type
var EventPublishDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "event_publish_duration_seconds",
		Help:      "Duration of a single order event publish.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"type"},
)
