package metrics

import "github.com/prometheus/client_golang/prometheus"

// MonitorMetrics records low-stock scan results.
type MonitorMetrics struct {
	scans       prometheus.Counter
	scanErrors  prometheus.Counter
	lowStock    prometheus.Gauge
	eventsFired prometheus.Counter
}

func NewMonitorMetrics(reg prometheus.Registerer) *MonitorMetrics {
	if reg == nil {
		return &MonitorMetrics{}
	}
	m := &MonitorMetrics{
		scans: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "inventory_monitor_scans_total",
			Help: "Completed low-stock scans.",
		}),
		scanErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "inventory_monitor_scan_errors_total",
			Help: "Low-stock scans that failed before completing.",
		}),
		lowStock: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "inventory_monitor_low_stock_items",
			Help: "Items below their effective reorder point in the last scan.",
		}),
		eventsFired: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "inventory_monitor_stock_low_events_total",
			Help: "StockLow events emitted by the monitor.",
		}),
	}
	reg.MustRegister(m.scans, m.scanErrors, m.lowStock, m.eventsFired)
	return m
}

// ObserveScan records a completed scan and how many items were below threshold.
func (m *MonitorMetrics) ObserveScan(low int) {
	if m == nil || m.scans == nil {
		return
	}
	m.scans.Inc()
	m.lowStock.Set(float64(low))
}

func (m *MonitorMetrics) IncScanError() {
	if m == nil || m.scanErrors == nil {
		return
	}
	m.scanErrors.Inc()
}

func (m *MonitorMetrics) IncEvent() {
	if m == nil || m.eventsFired == nil {
		return
	}
	m.eventsFired.Inc()
}
