package core

// Sink is the metrics interface the search driver emits structured,
// append-only records through (spec.md §6). Concrete sinks (a CSV file,
// a Prometheus exporter, ...) live in package metrics; core only depends
// on this interface and a no-op default so metrics emission is always
// optional.
//
// Record shapes are part of the external contract (SPEC_FULL.md §6.2) and
// are grounded on original_source's metrics/Metrics.h method list.
type Sink interface {
	BeforePropagation(decisionLevel, trailSize, totalDecisions, totalConflicts int)
	AfterPropagation(decisionLevel, trailSize, numConflicts int)
	Decision(v Variable, decisionLevel, trailSize, totalDecisions, totalBacktracks int)
	LearnedClause(clauseSize, decisionLevel, trailSize, totalLearned int, semanticSplit bool)
	BeforeBacktrack(decisionLevel, trailSize, totalDecisions int)
	AfterBacktrack(decisionLevel, trailSize int, semanticSplit bool)
	BeforeRestart(restartCount, decisionLevel, trailSize, totalConflicts int)
	ConflictAnalysisStart(trailSize, decisionLevel, numRawConflicts int)
	ConflictAnalysisEnd(learnedCount, backtrackLevel, decisionLevel int)
	SearchEnd(decisionLevel, trailSize, totalConflicts, totalConflictClauses, totalLearnedClauses, totalDecisions, totalBacktracks int)
	// Close releases any resources (e.g. an open file) held by the sink.
	Close() error
}

// NoopSink discards every record. It is the Solver's default sink so
// metrics emission is opt-in: a Solver built without WithSink or SetSink
// records nothing.
type NoopSink struct{}

func (NoopSink) BeforePropagation(int, int, int, int)          {}
func (NoopSink) AfterPropagation(int, int, int)                 {}
func (NoopSink) Decision(Variable, int, int, int, int)          {}
func (NoopSink) LearnedClause(int, int, int, int, bool)         {}
func (NoopSink) BeforeBacktrack(int, int, int)                  {}
func (NoopSink) AfterBacktrack(int, int, bool)                  {}
func (NoopSink) BeforeRestart(int, int, int, int)               {}
func (NoopSink) ConflictAnalysisStart(int, int, int)            {}
func (NoopSink) ConflictAnalysisEnd(int, int, int)              {}
func (NoopSink) SearchEnd(int, int, int, int, int, int, int)    {}
func (NoopSink) Close() error                                   { return nil }
