package metrics

import (
	"github.com/crillab/yaga/core"
	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusSink publishes the same record stream as FileSink as
// counters and gauges on a prometheus.Registerer, grounded on
// operator-lifecycle-manager's pkg/metrics package (NewGauge/
// NewCounterVec construction plus a package-level MustRegister call,
// here done once in NewPrometheusSink instead of an init()).
type PrometheusSink struct {
	decisions        prometheus.Counter
	backtracks       prometheus.Counter
	restarts         prometheus.Counter
	conflicts        prometheus.Counter
	learnedClauses   *prometheus.CounterVec // labeled by clause_kind: "uip" or "semantic_split"
	decisionLevel    prometheus.Gauge
	trailSize        prometheus.Gauge
	learnedClauseLen prometheus.Histogram
}

var _ core.Sink = (*PrometheusSink)(nil)

// NewPrometheusSink creates and registers the Sink's metrics on reg.
func NewPrometheusSink(reg prometheus.Registerer) *PrometheusSink {
	s := &PrometheusSink{
		decisions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mcsat",
			Name:      "decisions_total",
			Help:      "Total number of decide() calls made by the search driver.",
		}),
		backtracks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mcsat",
			Name:      "backtracks_total",
			Help:      "Total number of backtrackWith invocations.",
		}),
		restarts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mcsat",
			Name:      "restarts_total",
			Help:      "Total number of restarts performed.",
		}),
		conflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mcsat",
			Name:      "conflicts_total",
			Help:      "Total number of raw conflict clauses reported by theories.",
		}),
		learnedClauses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mcsat",
			Name:      "learned_clauses_total",
			Help:      "Total number of clauses learned, labeled by whether they asserted via UIP or semantic split.",
		}, []string{"clause_kind"}),
		decisionLevel: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "mcsat",
			Name:      "decision_level",
			Help:      "Current decision level.",
		}),
		trailSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "mcsat",
			Name:      "trail_size",
			Help:      "Current number of trail entries across all decision levels.",
		}),
		learnedClauseLen: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "mcsat",
			Name:      "learned_clause_literals",
			Help:      "Distribution of learned clause sizes.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
	}
	reg.MustRegister(s.decisions, s.backtracks, s.restarts, s.conflicts,
		s.learnedClauses, s.decisionLevel, s.trailSize, s.learnedClauseLen)
	return s
}

func (s *PrometheusSink) BeforePropagation(decisionLevel, trailSize, totalDecisions, totalConflicts int) {
	s.decisionLevel.Set(float64(decisionLevel))
	s.trailSize.Set(float64(trailSize))
}

func (s *PrometheusSink) AfterPropagation(decisionLevel, trailSize, numConflicts int) {
	s.decisionLevel.Set(float64(decisionLevel))
	s.trailSize.Set(float64(trailSize))
	if numConflicts > 0 {
		s.conflicts.Add(float64(numConflicts))
	}
}

func (s *PrometheusSink) Decision(v core.Variable, decisionLevel, trailSize, totalDecisions, totalBacktracks int) {
	s.decisions.Inc()
}

func (s *PrometheusSink) LearnedClause(clauseSize, decisionLevel, trailSize, totalLearned int, semanticSplit bool) {
	kind := "uip"
	if semanticSplit {
		kind = "semantic_split"
	}
	s.learnedClauses.WithLabelValues(kind).Inc()
	s.learnedClauseLen.Observe(float64(clauseSize))
}

func (s *PrometheusSink) BeforeBacktrack(decisionLevel, trailSize, totalDecisions int) {}

func (s *PrometheusSink) AfterBacktrack(decisionLevel, trailSize int, semanticSplit bool) {
	s.backtracks.Inc()
	s.decisionLevel.Set(float64(decisionLevel))
	s.trailSize.Set(float64(trailSize))
}

func (s *PrometheusSink) BeforeRestart(restartCount, decisionLevel, trailSize, totalConflicts int) {
	s.restarts.Inc()
}

func (s *PrometheusSink) ConflictAnalysisStart(trailSize, decisionLevel, numRawConflicts int) {}

func (s *PrometheusSink) ConflictAnalysisEnd(learnedCount, backtrackLevel, decisionLevel int) {}

func (s *PrometheusSink) SearchEnd(decisionLevel, trailSize, totalConflicts, totalConflictClauses, totalLearnedClauses, totalDecisions, totalBacktracks int) {
}

// Close is a no-op: the Registerer, not the sink, owns metric lifetime.
func (s *PrometheusSink) Close() error { return nil }
