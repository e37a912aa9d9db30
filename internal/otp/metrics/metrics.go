package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks one-time code issuance, delivery and redemption.
type Metrics struct {
	CodesIssued      *prometheus.CounterVec
	DeliveryFailures *prometheus.CounterVec
	Redemptions      *prometheus.CounterVec
	Throttled        prometheus.Counter
	Swept            prometheus.Counter
}

// New registers the OTP metrics with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		CodesIssued: f.NewCounterVec(prometheus.CounterOpts{
			Name: "votegate_otp_codes_issued_total",
			Help: "One-time codes issued, by purpose",
		}, []string{"purpose"}),
		DeliveryFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "votegate_otp_delivery_failures_total",
			Help: "Codes stored but not delivered by the notifier, by channel",
		}, []string{"channel"}),
		Redemptions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "votegate_otp_redemptions_total",
			Help: "Code redemption attempts, by outcome",
		}, []string{"outcome"}),
		Throttled: f.NewCounter(prometheus.CounterOpts{
			Name: "votegate_otp_sends_throttled_total",
			Help: "Code requests rejected by the send throttle",
		}),
		Swept: f.NewCounter(prometheus.CounterOpts{
			Name: "votegate_otp_swept_total",
			Help: "Expired codes and proofs removed by the sweeper",
		}),
	}
}

func (m *Metrics) IncIssued(purpose string) {
	if m != nil {
		m.CodesIssued.WithLabelValues(purpose).Inc()
	}
}

func (m *Metrics) IncDeliveryFailure(channel string) {
	if m != nil {
		m.DeliveryFailures.WithLabelValues(channel).Inc()
	}
}

func (m *Metrics) IncRedemption(outcome string) {
	if m != nil {
		m.Redemptions.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) IncThrottled() {
	if m != nil {
		m.Throttled.Inc()
	}
}

func (m *Metrics) AddSwept(n int) {
	if m != nil && n > 0 {
		m.Swept.Add(float64(n))
	}
}
