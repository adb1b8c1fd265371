// Package metrics defines the marketplace's Prometheus metrics. HTTP request
// metrics come from echoprometheus; the counters here track business events.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "marketplace"

// AuthAttemptsTotal counts credential operations.
// Labels:
//   - action: "register", "login" or "refresh"
//   - result: "success" or "failure"
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of register, login and refresh attempts by result.",
	},
	[]string{"action", "result"},
)

// CarsCreatedTotal counts new listings by body type.
var CarsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cars_created_total",
		Help:      "Total number of car listings created, by body type.",
	},
	[]string{"body_type"},
)

// CarViewsTotal counts car detail views.
// Label:
//   - result: "accepted" or "failed"
var CarViewsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "car_views_total",
		Help:      "Total number of car detail views by outcome.",
	},
	[]string{"result"},
)

// FavoritesTotal counts favorite additions and removals.
var FavoritesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "favorites_total",
		Help:      "Total number of favorites added or removed.",
	},
	[]string{"op"},
)

// SalesTotal counts recorded sales by initial status.
var SalesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sales_total",
		Help:      "Total number of sales recorded, by status.",
	},
	[]string{"status"},
)

// PolicyDenialsTotal counts 403 responses by route.
var PolicyDenialsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "policy_denials_total",
		Help:      "Total number of requests denied by the access policy, by route.",
	},
	[]string{"route"},
)
