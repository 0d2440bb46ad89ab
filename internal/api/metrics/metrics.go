// Package metrics defines and registers the custom Prometheus metrics of the
// supplier registry. It is the single source of truth for metric names,
// labels, and help strings.
//
// All metrics register with the default Prometheus registry on package init,
// which is what the /metrics endpoint serves.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "supplier_registry"

// ── Store metrics ─────────────────────────────────────────────────────────────

// StoreOperationsTotal counts store calls.
// Labels:
//   - operation: "put", "get" or "subscribe"
//   - result: "ok", "not_found" (get only) or "error"
var StoreOperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "store_operations_total",
		Help:      "Total number of supplier store operations, by operation and result.",
	},
	[]string{"operation", "result"},
)

// StoreOperationDuration measures store round trips.
// Label:
//   - operation: "put", "get" or "subscribe"
var StoreOperationDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "store_operation_duration_seconds",
		Help:      "Duration of supplier store operations.",
		Buckets:   prometheus.DefBuckets, // .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10
	},
	[]string{"operation"},
)

// ── Subscription metrics ──────────────────────────────────────────────────────

// ActiveSubscriptions tracks live listings that have not finished yet.
var ActiveSubscriptions = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_subscriptions",
		Help:      "Current number of open supplier listings.",
	},
)

// SnapshotsDeliveredTotal counts snapshots handed to subscribers.
// Label:
//   - result: "ok" or "error" (the terminal error snapshot)
var SnapshotsDeliveredTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "snapshots_delivered_total",
		Help:      "Total number of supplier snapshots delivered to subscribers.",
	},
	[]string{"result"},
)

// SnapshotSize records how many suppliers each delivered snapshot carried.
var SnapshotSize = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "snapshot_size",
		Help:      "Number of suppliers per delivered snapshot.",
		Buckets:   prometheus.ExponentialBuckets(1, 4, 8), // 1 … 16384
	},
)
