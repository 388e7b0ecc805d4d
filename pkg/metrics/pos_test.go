package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPOSMetricsRecordsOrderCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPOSMetrics(reg)

	m.IncOrdersCreated()
	m.IncOrdersCreated()
	m.AddSales(14.0)
	m.AddStockWarnings(3)

	if got := testutil.ToFloat64(m.ordersCreated); got != 2 {
		t.Fatalf("expected 2 orders created, got %v", got)
	}
	if got := testutil.ToFloat64(m.orderTotal); got != 14.0 {
		t.Fatalf("expected 14.0 sales, got %v", got)
	}
	if got := testutil.ToFloat64(m.stockWarnings); got != 3 {
		t.Fatalf("expected 3 warnings, got %v", got)
	}
}

func TestPOSMetricsRecordsExportOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPOSMetrics(reg)

	m.ObserveExport("pdf", 120*time.Millisecond, nil)
	m.ObserveExport("excel", 80*time.Millisecond, errors.New("disk full"))

	if got := testutil.ToFloat64(m.exportSuccess.WithLabelValues("pdf")); got != 1 {
		t.Fatalf("expected 1 pdf success, got %v", got)
	}
	if got := testutil.ToFloat64(m.exportFailure.WithLabelValues("excel")); got != 1 {
		t.Fatalf("expected 1 excel failure, got %v", got)
	}
}

func TestPOSMetricsNilSafe(t *testing.T) {
	var m *POSMetrics
	m.IncOrdersCreated()
	m.AddSales(1)
	m.AddStockWarnings(1)
	m.ObserveExport("pdf", time.Second, nil)

	empty := NewPOSMetrics(nil)
	empty.IncOrdersCreated()
}
