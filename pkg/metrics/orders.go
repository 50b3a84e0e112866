package metrics

import "github.com/prometheus/client_golang/prometheus"

// OrderMetrics counts order lifecycle and payment reconciliation events.
type OrderMetrics struct {
	transitions *prometheus.CounterVec
	rejected    *prometheus.CounterVec
	payments    *prometheus.CounterVec
	refunds     prometheus.Counter
}

// NewOrderMetrics registers the order metrics on the provided registerer.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_status_transitions_total",
		Help: "Successful order status transitions.",
	}, []string{"from", "to"})
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_status_transitions_rejected_total",
		Help: "Order status transitions rejected by the state machine.",
	}, []string{"from", "to"})
	payments := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_payments_total",
		Help: "Payment reconciliation outcomes per path.",
	}, []string{"path", "outcome"})
	refunds := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "order_refunds_total",
		Help: "Refunds issued.",
	})
	reg.MustRegister(transitions, rejected, payments, refunds)
	return &OrderMetrics{
		transitions: transitions,
		rejected:    rejected,
		payments:    payments,
		refunds:     refunds,
	}
}

// IncTransition records one successful status transition.
func (o *OrderMetrics) IncTransition(from, to string) {
	if o == nil || o.transitions == nil {
		return
	}
	o.transitions.WithLabelValues(normalizeLabel(from), normalizeLabel(to)).Inc()
}

// IncRejected records one rejected status transition.
func (o *OrderMetrics) IncRejected(from, to string) {
	if o == nil || o.rejected == nil {
		return
	}
	o.rejected.WithLabelValues(normalizeLabel(from), normalizeLabel(to)).Inc()
}

// IncPayment records one payment reconciliation outcome.
func (o *OrderMetrics) IncPayment(path, outcome string) {
	if o == nil || o.payments == nil {
		return
	}
	o.payments.WithLabelValues(normalizeLabel(path), normalizeLabel(outcome)).Inc()
}

// IncRefund records one issued refund.
func (o *OrderMetrics) IncRefund() {
	if o == nil || o.refunds == nil {
		return
	}
	o.refunds.Inc()
}
