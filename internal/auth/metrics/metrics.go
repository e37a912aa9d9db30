package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks both login phases and token checks.
type Metrics struct {
	Logins          *prometheus.CounterVec
	FaceScores      prometheus.Histogram
	TokensIssued    *prometheus.CounterVec
	TokensRevoked   prometheus.Counter
	RevocationCheck prometheus.Histogram
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Logins: f.NewCounterVec(prometheus.CounterOpts{
			Name: "votegate_login_attempts_total",
			Help: "Login attempts, by phase and outcome",
		}, []string{"phase", "outcome"}),
		FaceScores: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "votegate_face_match_score",
			Help:    "Confidence scores returned by the face matcher at login",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		}),
		TokensIssued: f.NewCounterVec(prometheus.CounterOpts{
			Name: "votegate_tokens_issued_total",
			Help: "Tokens issued, by phase",
		}, []string{"phase"}),
		TokensRevoked: f.NewCounter(prometheus.CounterOpts{
			Name: "votegate_tokens_revoked_total",
			Help: "Token ids added to the revocation list",
		}),
		RevocationCheck: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "votegate_token_revocation_check_duration_ms",
			Help:    "Latency of token revocation checks in milliseconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25},
		}),
	}
}

func (m *Metrics) IncLogin(phase, outcome string) {
	if m != nil {
		m.Logins.WithLabelValues(phase, outcome).Inc()
	}
}

func (m *Metrics) ObserveFaceScore(score float64) {
	if m != nil {
		m.FaceScores.Observe(score)
	}
}

func (m *Metrics) IncIssued(phase string) {
	if m != nil {
		m.TokensIssued.WithLabelValues(phase).Inc()
	}
}

func (m *Metrics) IncRevoked() {
	if m != nil {
		m.TokensRevoked.Inc()
	}
}

func (m *Metrics) ObserveRevocationCheck(start time.Time) {
	if m != nil {
		m.RevocationCheck.Observe(float64(time.Since(start).Microseconds()) / 1000.0)
	}
}
