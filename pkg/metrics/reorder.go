package metrics

import "github.com/prometheus/client_golang/prometheus"

// ReorderMetrics records threshold recomputes and replenishment decisions.
type ReorderMetrics struct {
	recomputes *prometheus.CounterVec
	orders     *prometheus.CounterVec
	skipped    *prometheus.CounterVec
}

func NewReorderMetrics(reg prometheus.Registerer) *ReorderMetrics {
	if reg == nil {
		return &ReorderMetrics{}
	}
	m := &ReorderMetrics{
		recomputes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "inventory_reorder_recomputes_total",
			Help: "Reorder point recomputations by result.",
		}, []string{"result"}),
		orders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "inventory_supplier_orders_created_total",
			Help: "Supplier orders created by source.",
		}, []string{"source"}),
		skipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "inventory_reorder_skipped_total",
			Help: "StockLow events that did not create an order, by reason.",
		}, []string{"reason"}),
	}
	reg.MustRegister(m.recomputes, m.orders, m.skipped)
	return m
}

func (m *ReorderMetrics) IncRecompute(ok bool) {
	if m == nil || m.recomputes == nil {
		return
	}
	result := "success"
	if !ok {
		result = "failure"
	}
	m.recomputes.WithLabelValues(result).Inc()
}

func (m *ReorderMetrics) IncOrderCreated(source string) {
	if m == nil || m.orders == nil {
		return
	}
	m.orders.WithLabelValues(labelOrUnknown(source)).Inc()
}

func (m *ReorderMetrics) IncSkipped(reason string) {
	if m == nil || m.skipped == nil {
		return
	}
	m.skipped.WithLabelValues(labelOrUnknown(reason)).Inc()
}
