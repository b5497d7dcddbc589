// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package auth

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Operation labels for auth metrics.
const (
	OpLogin     = "login"
	OpTwoFactor = "two_factor"
	OpRegister  = "register"
)

// Outcomes counts every login, second-factor and registration result.
// Use RegisterMetrics to register this with a Prometheus registry.
var Outcomes = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "shoplist_auth_outcomes_total",
		Help: "Total number of authentication outcomes by operation",
	},
	[]string{"operation", "outcome"},
)

// Lockouts counts accounts locked by a failed attempt.
var Lockouts = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "shoplist_auth_lockouts_total",
		Help: "Total number of account lockouts",
	},
)

// LockoutConflicts counts lost compare-and-swap races on the lockout counters.
var LockoutConflicts = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "shoplist_auth_lockout_conflicts_total",
		Help: "Total number of concurrent lockout updates that had to be retried",
	},
)

// RegisterMetrics registers auth package metrics with the given Prometheus registry.
// Panics if registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(Outcomes)
	reg.MustRegister(Lockouts)
	reg.MustRegister(LockoutConflicts)
}

// RecordOutcome increments the outcome counter.
func RecordOutcome(operation string, kind OutcomeKind) {
	Outcomes.WithLabelValues(operation, string(kind)).Inc()
}
