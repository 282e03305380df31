// Package metrics provides Prometheus metrics for the inventory service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Import metrics
	ImportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "partsbin_imports_total",
			Help: "Total number of import attempts",
		},
		[]string{"format", "mode", "status"},
	)

	RecordsImported = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "partsbin_records_imported_total",
			Help: "Total number of records accepted by imports",
		},
		[]string{"format"},
	)

	ImportBytes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "partsbin_import_bytes_total",
			Help: "Total bytes read from import files",
		},
	)

	ImportDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "partsbin_import_duration_seconds",
			Help:    "Time taken to read, decode and store an import",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
		},
		[]string{"format"},
	)

	ImportsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "partsbin_imports_active",
			Help: "Number of imports holding a limiter slot",
		},
	)

	// Export metrics
	ExportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "partsbin_exports_total",
			Help: "Total number of exports",
		},
		[]string{"format", "vocabulary"},
	)

	// Inventory metrics
	InventoryRecords = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "partsbin_inventory_records",
			Help: "Number of parts in the inventory",
		},
	)

	InventoryQuantity = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "partsbin_inventory_quantity",
			Help: "Sum of quantities over all parts",
		},
	)

	MutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "partsbin_mutations_total",
			Help: "Total number of inventory mutations",
		},
		[]string{"op", "status"},
	)

	// Storage metrics
	SaveDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "partsbin_save_duration_seconds",
			Help:    "Time taken to persist the inventory",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"driver"},
	)

	SaveErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "partsbin_save_errors_total",
			Help: "Total number of failed saves",
		},
		[]string{"driver"},
	)
)

// Status label values.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// StatusOf returns StatusOK for a nil error and StatusError otherwise.
func StatusOf(err error) string {
	if err != nil {
		return StatusError
	}
	return StatusOK
}

// RecordImport records the outcome of one import.
func RecordImport(format, mode string, records int, bytes int64, duration time.Duration, err error) {
	ImportsTotal.WithLabelValues(format, mode, StatusOf(err)).Inc()
	ImportBytes.Add(float64(bytes))
	if err == nil {
		RecordsImported.WithLabelValues(format).Add(float64(records))
		ImportDuration.WithLabelValues(format).Observe(duration.Seconds())
	}
}

// RecordExport records one export.
func RecordExport(format, vocabulary string) {
	ExportsTotal.WithLabelValues(format, vocabulary).Inc()
}

// RecordMutation records one store mutation.
func RecordMutation(op string, err error) {
	MutationsTotal.WithLabelValues(op, StatusOf(err)).Inc()
}

// SetInventory updates the inventory gauges.
func SetInventory(records, quantity int) {
	InventoryRecords.Set(float64(records))
	InventoryQuantity.Set(float64(quantity))
}

// RecordSave records the outcome of one persistence save.
func RecordSave(driver string, duration time.Duration, err error) {
	SaveDuration.WithLabelValues(driver).Observe(duration.Seconds())
	if err != nil {
		SaveErrors.WithLabelValues(driver).Inc()
	}
}
