// Package metrics provides core.Sink implementations: a CSV file sink and
// a Prometheus exporter. Grounded on original_source's metrics/Metrics.h
// (the method list AfterPropagation/Decision/LearnedClause/... SPEC_FULL.md
// §6.2 a direct translation of) and metrics/Metrics.cpp (the file sink's
// mutex-guarded, comma-separated record format).
package metrics

import (
	"fmt"
	"os"
	"sync"

	"github.com/crillab/yaga/core"
	"github.com/pkg/errors"
)

// FileSink appends one CSV line per record to an open file, guarded by a
// mutex since the search driver is the sole writer but callers may want
// to read the file concurrently with Close. Grounded on
// original_source's Metrics::log_mutex / log_file.
type FileSink struct {
	mu   sync.Mutex
	file *os.File
}

var _ core.Sink = (*FileSink)(nil)

// category is the leading field of every record (spec.md §6,
// SPEC_FULL.md §6.2): which subsystem produced the event. core.Sink's
// events are all driver-level, so FileSink always tags them "core" —
// "bool" and "lra" are reserved for a theory that logs through its own
// sink reference, which no shipped theory does yet.
const category = "core"

// NewFileSink opens path for writing (truncating any existing file) and
// writes a header row.
func NewFileSink(path string) (*FileSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrapf(err, "metrics: opening %s", path)
	}
	s := &FileSink{file: f}
	s.writeLine("category,event,a,b,c,d,e,f,g")
	return s, nil
}

func (s *FileSink) writeLine(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintln(s.file, line)
}

func (s *FileSink) BeforePropagation(decisionLevel, trailSize, totalDecisions, totalConflicts int) {
	s.writeLine(fmt.Sprintf("%s,before_propagation,%d,%d,%d,%d", category, decisionLevel, trailSize, totalDecisions, totalConflicts))
}

func (s *FileSink) AfterPropagation(decisionLevel, trailSize, numConflicts int) {
	s.writeLine(fmt.Sprintf("%s,after_propagation,%d,%d,%d", category, decisionLevel, trailSize, numConflicts))
}

func (s *FileSink) Decision(v core.Variable, decisionLevel, trailSize, totalDecisions, totalBacktracks int) {
	s.writeLine(fmt.Sprintf("%s,decision,%s,%d,%d,%d,%d,%d", category, v.Kind, v.Ord, decisionLevel, trailSize, totalDecisions, totalBacktracks))
}

func (s *FileSink) LearnedClause(clauseSize, decisionLevel, trailSize, totalLearned int, semanticSplit bool) {
	s.writeLine(fmt.Sprintf("%s,learned_clause,%d,%d,%d,%d,%s", category, clauseSize, decisionLevel, trailSize, totalLearned, splitTag(semanticSplit)))
}

func (s *FileSink) BeforeBacktrack(decisionLevel, trailSize, totalDecisions int) {
	s.writeLine(fmt.Sprintf("%s,before_backtrack,%d,%d,%d", category, decisionLevel, trailSize, totalDecisions))
}

func (s *FileSink) AfterBacktrack(decisionLevel, trailSize int, semanticSplit bool) {
	s.writeLine(fmt.Sprintf("%s,after_backtrack,%d,%d,%s", category, decisionLevel, trailSize, splitTag(semanticSplit)))
}

func (s *FileSink) BeforeRestart(restartCount, decisionLevel, trailSize, totalConflicts int) {
	s.writeLine(fmt.Sprintf("%s,before_restart,%d,%d,%d,%d", category, restartCount, decisionLevel, trailSize, totalConflicts))
}

func (s *FileSink) ConflictAnalysisStart(trailSize, decisionLevel, numRawConflicts int) {
	s.writeLine(fmt.Sprintf("%s,conflict_analysis_start,%d,%d,%d", category, trailSize, decisionLevel, numRawConflicts))
}

func (s *FileSink) ConflictAnalysisEnd(learnedCount, backtrackLevel, decisionLevel int) {
	s.writeLine(fmt.Sprintf("%s,conflict_analysis_end,%d,%d,%d", category, learnedCount, backtrackLevel, decisionLevel))
}

func (s *FileSink) SearchEnd(decisionLevel, trailSize, totalConflicts, totalConflictClauses, totalLearnedClauses, totalDecisions, totalBacktracks int) {
	s.writeLine(fmt.Sprintf("%s,search_end,%d,%d,%d,%d,%d,%d,%d", category, decisionLevel, trailSize, totalConflicts, totalConflictClauses, totalLearnedClauses, totalDecisions, totalBacktracks))
}

// splitTag renders the boolean semantic-split flag as the documented
// "UIP"|"semantic" tag instead of a bare %t.
func splitTag(semanticSplit bool) string {
	if semanticSplit {
		return "semantic"
	}
	return "UIP"
}

// Close flushes and closes the underlying file.
func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return errors.Wrap(s.file.Close(), "metrics: closing file sink")
}
