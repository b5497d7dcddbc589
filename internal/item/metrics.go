// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package item

import (
	"github.com/prometheus/client_golang/prometheus"
)

// ImportRecords counts imported and skipped records by file format.
var ImportRecords = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "shoplist_import_records_total",
		Help: "Total number of import records by format and result",
	},
	[]string{"format", "result"},
)

// ImportFailures counts imports rejected as a whole.
var ImportFailures = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "shoplist_import_failures_total",
		Help: "Total number of imports rejected for structural errors",
	},
	[]string{"format"},
)

// Operations counts item changes by kind.
var Operations = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "shoplist_item_operations_total",
		Help: "Total number of item operations",
	},
	[]string{"operation"},
)

// RegisterMetrics registers item package metrics with the given Prometheus registry.
// Panics if registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(ImportRecords)
	reg.MustRegister(ImportFailures)
	reg.MustRegister(Operations)
}
