package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	BallotsIssuedTotal   prometheus.Counter
	VotesCastTotal       prometheus.Counter
	BallotConflictsTotal prometheus.Counter
	VotesRejectedTotal   prometheus.Counter
	TallyRunsTotal       prometheus.Counter
	TallyRounds          prometheus.Histogram
}

func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith registers the collectors against the given registerer. Tests pass
// a fresh registry so parallel suites never collide on metric names.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		BallotsIssuedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "electora_lpv_ballots_issued_total",
			Help: "Total number of single-use ballots issued",
		}),
		VotesCastTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "electora_lpv_votes_cast_total",
			Help: "Total number of votes accepted into the ledger",
		}),
		BallotConflictsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "electora_lpv_ballot_conflicts_total",
			Help: "Total number of cast attempts rejected because the ballot was already used",
		}),
		VotesRejectedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "electora_lpv_votes_rejected_total",
			Help: "Total number of cast attempts rejected by selection validation",
		}),
		TallyRunsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "electora_lpv_tally_runs_total",
			Help: "Total number of tally computations served",
		}),
		TallyRounds: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "electora_lpv_tally_rounds",
			Help:    "Elimination rounds needed per tally computation",
			Buckets: prometheus.LinearBuckets(1, 1, 10),
		}),
	}
}

func (m *Metrics) IncrementBallotsIssued() {
	m.BallotsIssuedTotal.Inc()
}

func (m *Metrics) IncrementVotesCast() {
	m.VotesCastTotal.Inc()
}

func (m *Metrics) IncrementBallotConflicts() {
	m.BallotConflictsTotal.Inc()
}

func (m *Metrics) IncrementVotesRejected() {
	m.VotesRejectedTotal.Inc()
}

func (m *Metrics) ObserveTally(rounds int) {
	m.TallyRunsTotal.Inc()
	m.TallyRounds.Observe(float64(rounds))
}
