// Package metrics exposes Prometheus instrumentation for the clinic API.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// ClinicMetrics exposes counters for roster, booking, and assistant flows.
type ClinicMetrics struct {
	rosterMutations   *prometheus.CounterVec
	bookingsTotal     *prometheus.CounterVec
	assistantRequests *prometheus.CounterVec
	gateAttempts      *prometheus.CounterVec
}

// NewClinicMetrics registers the clinic counters on reg, falling back to the
// default registerer when reg is nil.
func NewClinicMetrics(reg prometheus.Registerer) *ClinicMetrics {
	m := &ClinicMetrics{
		rosterMutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "healpoint",
			Subsystem: "directory",
			Name:      "mutations_total",
			Help:      "Roster, specialty, and settings mutations by operation and outcome",
		}, []string{"op", "status"}),
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "healpoint",
			Subsystem: "booking",
			Name:      "confirmations_total",
			Help:      "Booking confirmation attempts by outcome",
		}, []string{"status"}),
		assistantRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "healpoint",
			Subsystem: "assistant",
			Name:      "requests_total",
			Help:      "Assistant sends by outcome",
		}, []string{"status"}),
		gateAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "healpoint",
			Subsystem: "gate",
			Name:      "attempts_total",
			Help:      "Admin gate attempts by outcome",
		}, []string{"status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.rosterMutations, m.bookingsTotal, m.assistantRequests, m.gateAttempts)
	return m
}

func (m *ClinicMetrics) ObserveMutation(op, status string) {
	if m == nil {
		return
	}
	m.rosterMutations.WithLabelValues(op, status).Inc()
}

func (m *ClinicMetrics) ObserveBooking(status string) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(status).Inc()
}

func (m *ClinicMetrics) ObserveAssistant(status string) {
	if m == nil {
		return
	}
	m.assistantRequests.WithLabelValues(status).Inc()
}

func (m *ClinicMetrics) ObserveGateAttempt(status string) {
	if m == nil {
		return
	}
	m.gateAttempts.WithLabelValues(status).Inc()
}
