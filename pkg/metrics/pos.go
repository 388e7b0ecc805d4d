package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// POSMetrics records counters for the order and export paths.
type POSMetrics struct {
	ordersCreated  prometheus.Counter
	orderTotal     prometheus.Counter
	stockWarnings  prometheus.Counter
	exportSuccess  *prometheus.CounterVec
	exportFailure  *prometheus.CounterVec
	exportDuration *prometheus.HistogramVec
}

// NewPOSMetrics registers the POS metrics on the provided registerer.
func NewPOSMetrics(reg prometheus.Registerer) *POSMetrics {
	if reg == nil {
		return &POSMetrics{}
	}
	ordersCreated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pos_orders_created_total",
		Help: "Orders finalized and persisted.",
	})
	orderTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pos_order_sales_total",
		Help: "Cumulative sales amount of finalized orders.",
	})
	stockWarnings := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pos_stock_warnings_total",
		Help: "Inventory warnings produced while finalizing orders.",
	})
	exportSuccess := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_export_success_total",
		Help: "Successful report exports.",
	}, []string{"format"})
	exportFailure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_export_failure_total",
		Help: "Failed report exports.",
	}, []string{"format"})
	exportDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pos_export_duration_seconds",
		Help:    "Duration of report export jobs in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"format"})
	reg.MustRegister(ordersCreated, orderTotal, stockWarnings, exportSuccess, exportFailure, exportDuration)
	return &POSMetrics{
		ordersCreated:  ordersCreated,
		orderTotal:     orderTotal,
		stockWarnings:  stockWarnings,
		exportSuccess:  exportSuccess,
		exportFailure:  exportFailure,
		exportDuration: exportDuration,
	}
}

// IncOrdersCreated counts one finalized order.
func (m *POSMetrics) IncOrdersCreated() {
	if m == nil || m.ordersCreated == nil {
		return
	}
	m.ordersCreated.Inc()
}

// AddSales accumulates the finalized order amount.
func (m *POSMetrics) AddSales(amount float64) {
	if m == nil || m.orderTotal == nil {
		return
	}
	if amount > 0 {
		m.orderTotal.Add(amount)
	}
}

// AddStockWarnings counts inventory warnings surfaced by a finalize.
func (m *POSMetrics) AddStockWarnings(n int) {
	if m == nil || m.stockWarnings == nil {
		return
	}
	if n > 0 {
		m.stockWarnings.Add(float64(n))
	}
}

// ObserveExport records the outcome and duration of one export job.
func (m *POSMetrics) ObserveExport(format string, duration time.Duration, err error) {
	if m == nil || m.exportSuccess == nil {
		return
	}
	label := normalizeLabel(format)
	m.exportDuration.WithLabelValues(label).Observe(duration.Seconds())
	if err != nil {
		m.exportFailure.WithLabelValues(label).Inc()
		return
	}
	m.exportSuccess.WithLabelValues(label).Inc()
}

func normalizeLabel(format string) string {
	if format == "" {
		return "unknown"
	}
	return format
}
