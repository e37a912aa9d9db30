package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks ballots and their latency.
type Metrics struct {
	VotesCast      *prometheus.CounterVec
	VotesRejected  *prometheus.CounterVec
	CastDuration   prometheus.Histogram
	Reconciliation prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		VotesCast: f.NewCounterVec(prometheus.CounterOpts{
			Name: "votegate_votes_cast_total",
			Help: "Ballots committed, by election",
		}, []string{"election_id"}),
		VotesRejected: f.NewCounterVec(prometheus.CounterOpts{
			Name: "votegate_votes_rejected_total",
			Help: "Ballots refused, by reason",
		}, []string{"reason"}),
		CastDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "votegate_vote_cast_duration_seconds",
			Help:    "Time spent committing a ballot",
			Buckets: prometheus.DefBuckets,
		}),
		Reconciliation: f.NewCounter(prometheus.CounterOpts{
			Name: "votegate_tally_reconciliations_total",
			Help: "Reconciliation passes that changed at least one counter",
		}),
	}
}

func (m *Metrics) IncCast(electionID string) {
	if m != nil {
		m.VotesCast.WithLabelValues(electionID).Inc()
	}
}

func (m *Metrics) IncRejected(reason string) {
	if m != nil {
		m.VotesRejected.WithLabelValues(reason).Inc()
	}
}

func (m *Metrics) ObserveCast(start time.Time) {
	if m != nil {
		m.CastDuration.Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) IncReconciled() {
	if m != nil {
		m.Reconciliation.Inc()
	}
}
