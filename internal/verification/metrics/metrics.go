package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks registration and verification progress.
type Metrics struct {
	Registrations *prometheus.CounterVec
	StepsVerified *prometheus.CounterVec
	Enrollments   *prometheus.CounterVec
	Completed     prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Registrations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "votegate_registrations_total",
			Help: "Registration attempts, by outcome",
		}, []string{"outcome"}),
		StepsVerified: f.NewCounterVec(prometheus.CounterOpts{
			Name: "votegate_verification_steps_total",
			Help: "Verification flags set, by step",
		}, []string{"step"}),
		Enrollments: f.NewCounterVec(prometheus.CounterOpts{
			Name: "votegate_biometric_enrollments_total",
			Help: "Biometric enrollment attempts, by outcome",
		}, []string{"outcome"}),
		Completed: f.NewCounter(prometheus.CounterOpts{
			Name: "votegate_voters_completed_total",
			Help: "Voters that reached completed registration status",
		}),
	}
}

func (m *Metrics) IncRegistration(outcome string) {
	if m != nil {
		m.Registrations.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) IncStep(step string) {
	if m != nil {
		m.StepsVerified.WithLabelValues(step).Inc()
	}
}

func (m *Metrics) IncEnrollment(outcome string) {
	if m != nil {
		m.Enrollments.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) IncCompleted() {
	if m != nil {
		m.Completed.Inc()
	}
}
