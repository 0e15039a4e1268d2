// Package metrics defines and registers all custom Prometheus metrics for the
// fitness club API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default Prometheus registry on import via
// promauto and exposed on /metrics next to the echoprometheus HTTP metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "fitness"

// ── Reservation metrics ───────────────────────────────────────────────────────

// ReservationsCreatedTotal counts reservations created through the pipeline.
// Labels:
//   - role: role of the reserving user ("USER", "TRAINER", "ADMIN")
//   - policy: discount policy applied (e.g. "noDiscount", "vipDiscount")
var ReservationsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reservations_created_total",
		Help:      "Total number of reservations created, by role and discount policy.",
	},
	[]string{"role", "policy"},
)

// ReservationsReplayedTotal counts create requests answered from the
// idempotency store instead of inserting a new row.
var ReservationsReplayedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reservations_replayed_total",
		Help:      "Total number of reservation creates served as idempotent replays.",
	},
)

// ReservationsRejectedTotal counts failed create requests.
// Label:
//   - reason: "user_not_found", "session_not_found", "duplicate",
//     "idempotency_key_reused", "forbidden" or "error"
var ReservationsRejectedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reservations_rejected_total",
		Help:      "Total number of reservation creates that failed, by reason.",
	},
	[]string{"reason"},
)

var ReservationsCancelledTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reservations_cancelled_total",
		Help:      "Total number of reservations cancelled.",
	},
)

// ReservationDiscountRate observes the discount rate (0..1) computed per reservation.
var ReservationDiscountRate = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "reservation_discount_rate",
		Help:      "Discount rate computed for each created reservation.",
		Buckets:   []float64{0, 0.05, 0.1, 0.15, 0.2, 0.3, 0.5},
	},
	[]string{"policy"},
)

// ── Event pipeline metrics ────────────────────────────────────────────────────

// EventsQueueDepth tracks the current number of events waiting in each worker channel.
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

// EventsDroppedTotal counts events discarded because a worker channel was full.
var EventsDroppedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_dropped_total",
		Help:      "Total number of reservation events dropped on a full worker channel.",
	},
	[]string{"type"},
)

// EventsDeliveredTotal counts sink deliveries.
// Labels:
//   - sink: sink name (e.g. "mongo-audit", "amqp")
//   - result: "ok" or "error"
var EventsDeliveredTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_delivered_total",
		Help:      "Total number of reservation event deliveries per sink, by result.",
	},
	[]string{"sink", "result"},
)

// EventDeliveryDuration measures how long one sink takes to handle an event.
var EventDeliveryDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "event_delivery_duration_seconds",
		Help:      "Duration of a single sink delivery.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"sink"},
)

// ── Rate limiting ─────────────────────────────────────────────────────────────

// RateLimitedTotal counts requests rejected with 429.
var RateLimitedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limited_total",
		Help:      "Total number of requests rejected by the rate limiter, by route.",
	},
	[]string{"route"},
)
