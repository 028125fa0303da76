package core

import (
	"context"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

// Status is the outcome of Solver.Check.
type Status uint8

const (
	// Unknown means Check has not been run to completion yet.
	Unknown Status = iota
	// Sat means the asserted clauses are satisfiable; the trail's models
	// are readable.
	Sat
	// Unsat means the empty clause is derivable from the asserted clauses.
	Unsat
)

func (s Status) String() string {
	switch s {
	case Sat:
		return "SAT"
	case Unsat:
		return "UNSAT"
	default:
		return "UNKNOWN"
	}
}

// Solver is the top-level search driver (spec.md §4.5). Construct one
// with NewSolver, register at least a Boolean theory, assert input
// clauses through Database, then call Check.
type Solver struct {
	db         *Database
	trail      *Trail
	dispatcher *Dispatcher
	analyzer   *Analyzer
	minimizer  *Minimizer
	varOrder   VariableOrder
	restart    RestartPolicy
	sink       Sink
	log        *logrus.Logger

	// numVars records the variable counts requested via SetNumVars, applied
	// during init() once the registered theories have had a chance to
	// register their models via OnInit.
	numVars map[Kind]int

	status Status

	// Stats mirrors the counters the metrics records report; exported for
	// callers that want a post-mortem summary without parsing the sink's
	// output stream.
	Stats struct {
		Decisions      int
		Backtracks     int
		Conflicts      int
		ConflictClauses int
		LearnedClauses int
		Restarts       int
	}
}

// Option configures a Solver at construction.
type Option func(*Solver)

// WithVariableOrder sets the variable-decision order. A Solver built
// without one, or with WithVariableOrder(nil), must have SetVariableOrder
// called before Check.
func WithVariableOrder(vo VariableOrder) Option {
	return func(s *Solver) { s.varOrder = vo }
}

// WithRestartPolicy overrides the default never-restart policy.
func WithRestartPolicy(rp RestartPolicy) Option {
	return func(s *Solver) { s.restart = rp }
}

// WithSink installs a metrics sink. The default is NoopSink.
func WithSink(sink Sink) Option {
	return func(s *Solver) { s.sink = sink }
}

// WithLogger overrides the default logrus logger (Info level, text
// formatter to stderr). This is a diagnostic channel distinct from the
// metrics sink: it logs conflicts, learned clauses and restarts at Debug
// level for interactive troubleshooting, not a structured record stream.
func WithLogger(log *logrus.Logger) Option {
	return func(s *Solver) { s.log = log }
}

// noRestart is the zero-value RestartPolicy: it never fires, so a Solver
// built without an explicit restart policy behaves like one configured
// with original_source's No_restart.
type noRestart struct{}

func (noRestart) ShouldRestart() bool                          { return false }
func (noRestart) OnLearnedClause(*Database, *Trail, *Clause)    {}
func (noRestart) OnRestart(*Database, *Trail)                   {}

// NewSolver returns a Solver over a fresh Database and Trail. At least
// one theory must be registered via RegisterTheory, and a VariableOrder
// via SetVariableOrder (or WithVariableOrder), before Check is called.
func NewSolver(opts ...Option) (*Solver, error) {
	s := &Solver{
		db:         NewDatabase(),
		trail:      NewTrail(),
		dispatcher: NewDispatcher(),
		analyzer:   NewAnalyzer(),
		minimizer:  NewMinimizer(),
		restart:    noRestart{},
		sink:       NoopSink{},
		log:        logrus.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Database returns the Solver's clause database, the only way input
// clauses are asserted.
func (s *Solver) Database() *Database { return s.db }

// Trail returns the Solver's trail, readable after Check returns Sat.
func (s *Solver) Trail() *Trail { return s.trail }

// Status returns the outcome of the last Check call, or Unknown if Check
// has not run.
func (s *Solver) Status() Status { return s.status }

// RegisterTheory adds th to the dispatcher's ordered theory list. Must be
// called before Check.
func (s *Solver) RegisterTheory(th Theory) {
	s.dispatcher.Register(th)
}

// SetVariableOrder installs vo as the variable-decision order. Must be
// called before Check.
func (s *Solver) SetVariableOrder(vo VariableOrder) {
	s.varOrder = vo
}

// SetRestartPolicy installs rp, replacing the default never-restart
// policy.
func (s *Solver) SetRestartPolicy(rp RestartPolicy) {
	s.restart = rp
}

// SetSink installs sink, replacing the default NoopSink.
func (s *Solver) SetSink(sink Sink) {
	s.sink = sink
}

// SetNumVars requests at least n variables of kind k be available once
// Check starts the search: a registered theory's OnInit must run before
// its model exists at all (core.AddModel is called there), so a caller
// cannot size the Trail directly before Check the way it can assert
// clauses directly into the Database. Check applies the largest n
// requested per kind right after OnInit.
func (s *Solver) SetNumVars(k Kind, n int) {
	if s.numVars == nil {
		s.numVars = make(map[Kind]int)
	}
	if n > s.numVars[k] {
		s.numVars[k] = n
	}
}

// Check runs the search loop to completion (spec.md §4.5) and returns
// Sat or Unsat. ctx is checked once per loop iteration so a long search
// can be cancelled between decisions; a cancelled Check returns Unknown
// and ctx.Err().
func (s *Solver) Check(ctx context.Context) (Status, error) {
	assertf(s.varOrder != nil, "core: Check called with no VariableOrder configured")
	s.init()

	for {
		select {
		case <-ctx.Done():
			return Unknown, ctx.Err()
		default:
		}

		s.sink.BeforePropagation(s.trail.DecisionLevel(), s.trail.Size(), s.Stats.Decisions, s.Stats.Conflicts)
		conflicts := s.dispatcher.Propagate(s.db, s.trail)
		s.sink.AfterPropagation(s.trail.DecisionLevel(), s.trail.Size(), len(conflicts))

		if len(conflicts) > 0 {
			s.Stats.Conflicts++
			s.Stats.ConflictClauses += len(conflicts)
			if s.trail.DecisionLevel() == 0 {
				s.status = Unsat
				s.finish()
				return Unsat, nil
			}

			s.sink.ConflictAnalysisStart(s.trail.Size(), s.trail.DecisionLevel(), len(conflicts))
			learned, level := s.analyzeConflicts(conflicts)
			if len(learned) > 0 && len(learned[0]) == 0 {
				s.log.WithField("decision_level", s.trail.DecisionLevel()).Debug("empty clause derived, unsat")
				s.status = Unsat
				s.finish()
				return Unsat, nil
			}
			s.sink.ConflictAnalysisEnd(len(learned), level, s.trail.DecisionLevel())
			s.log.WithFields(logrus.Fields{"num_raw": len(conflicts), "num_learned": len(learned), "backtrack_level": level}).Debug("conflict analyzed")

			refs := s.learn(learned)
			if s.restart.ShouldRestart() {
				s.doRestart()
			} else {
				s.backtrackWith(refs, level)
			}
			continue
		}

		v, ok := s.varOrder.Pick(s.db, s.trail)
		if !ok {
			s.status = Sat
			s.finish()
			return Sat, nil
		}
		s.Stats.Decisions++
		s.sink.Decision(v, s.trail.DecisionLevel(), s.trail.Size(), s.Stats.Decisions, s.Stats.Backtracks)
		s.dispatcher.Decide(s.db, s.trail, v)
	}
}

// init notifies every registered theory's OnInit (registering their
// per-kind models), then grows the Trail and every theory's tables to
// the variable counts requested via SetNumVars. OnInit must run first:
// a theory's OnVariableResize typically assumes its own model already
// exists.
func (s *Solver) init() {
	s.dispatcher.OnInit(s.db, s.trail)
	for k, n := range s.numVars {
		if n <= s.trail.NumVars(k) {
			continue
		}
		s.trail.Resize(k, n)
		s.dispatcher.OnVariableResize(k, n)
		s.varOrder.OnVariableResize(k, n)
	}
}

// analyzeConflicts runs the Analyzer over every raw conflict, keeps only
// the clauses at the minimum derived level, and minimizes each.
func (s *Solver) analyzeConflicts(conflicts []*Clause) ([][]Literal, int) {
	model := ModelFor[bool](s.trail, KindBool)

	type derived struct {
		lits  []Literal
		level int
	}
	all := make([]derived, 0, len(conflicts))
	minLevel := -1
	for _, c := range conflicts {
		lits, level := s.analyzer.Analyze(s.db, s.trail, model, c, func(r *Clause) {
			s.dispatcher.OnConflictResolved(s.db, s.trail, r)
			s.varOrder.OnConflictResolved(s.db, s.trail, r)
		})
		all = append(all, derived{lits: lits, level: level})
		if minLevel == -1 || level < minLevel {
			minLevel = level
		}
	}

	out := make([][]Literal, 0, len(all))
	for _, d := range all {
		if d.level != minLevel {
			continue
		}
		lits := d.lits
		if len(lits) > 0 {
			lits = s.minimizer.Minimize(s.db, s.trail, lits)
		}
		out = append(out, lits)
	}
	return out, minLevel
}

// learn sorts, deduplicates and prefers UIP clauses over semantic-split
// ones, then inserts the survivors into the database (spec.md §4.5's
// learn()).
func (s *Solver) learn(clauses [][]Literal) []ClauseRef {
	sort.Slice(clauses, func(i, j int) bool {
		if len(clauses[i]) != len(clauses[j]) {
			return len(clauses[i]) < len(clauses[j])
		}
		return litsLess(clauses[i], clauses[j])
	})

	deduped := clauses[:0:0]
	for i, c := range clauses {
		if i > 0 && litsEqual(c, clauses[i-1]) {
			continue
		}
		deduped = append(deduped, c)
	}

	hasUIP := false
	for _, c := range deduped {
		if !IsSemanticSplit(s.trail, c) {
			hasUIP = true
			break
		}
	}
	if hasUIP {
		kept := deduped[:0:0]
		for _, c := range deduped {
			if !IsSemanticSplit(s.trail, c) {
				kept = append(kept, c)
			}
		}
		deduped = kept
	}

	mark := s.db.NumLearned()
	for _, lits := range deduped {
		clause := NewClause(lits)
		s.db.LearnClause(clause)
		s.Stats.LearnedClauses++
		s.sink.LearnedClause(clause.Len(), s.trail.DecisionLevel(), s.trail.Size(), s.Stats.LearnedClauses, IsSemanticSplit(s.trail, lits))
		s.log.WithField("clause", litsString(lits)).Debug("learned clause")
		s.dispatcher.OnLearnedClause(s.db, s.trail, clause)
		s.varOrder.OnLearnedClause(s.db, s.trail, clause)
		s.restart.OnLearnedClause(s.db, s.trail, clause)
	}
	return s.db.LearnedSince(mark)
}

// backtrackWith truncates the trail to L and either re-decides a
// semantic-split target or propagates every UIP clause's asserting
// literal, per spec.md §4.5.
func (s *Solver) backtrackWith(refs []ClauseRef, level int) {
	if len(refs) == 0 {
		return
	}
	s.sink.BeforeBacktrack(s.trail.DecisionLevel(), s.trail.Size(), s.Stats.Decisions)
	s.dispatcher.OnBeforeBacktrack(s.db, s.trail, level)

	first := s.db.Clause(refs[0])
	split := IsSemanticSplit(s.trail, first.Lits())
	for _, ref := range refs {
		assertf(IsSemanticSplit(s.trail, s.db.Clause(ref).Lits()) == split, "core: backtrackWith given a mix of UIP and semantic-split clauses")
	}

	s.Stats.Backtracks++

	if split {
		assertf(s.trail.DecisionLevel() >= level+1, "core: semantic split requires decision_level >= L+1")
		entries := s.trail.Assigned(level + 1)
		assertf(len(entries) > 0 && entries[0].Source == SourceDecision && entries[0].Var.Kind != KindBool,
			"core: semantic split requires a non-Boolean decision at level L+1")

		var target Literal
		found := false
		for _, l := range first.Lits() {
			if lvl, ok := s.trail.DecisionLevelOf(l.Var()); !ok || lvl != s.trail.DecisionLevel() {
				continue
			}
			if !found || s.varOrder.IsBefore(l.Var(), target.Var()) {
				target = l
				found = true
			}
		}
		assertf(found, "core: semantic split clause has no literal at the top decision level")

		s.trail.Backtrack(level)
		// Decide target directly at the polarity refs[0] requires, rather
		// than delegating to the Boolean theory's own heuristic: the
		// semantic-split contract fixes the value, it does not merely
		// suggest it.
		s.trail.Decide(target.Var())
		model := ModelFor[bool](s.trail, KindBool)
		model.SetValue(target.Var().Ord, !target.IsNegation())
	} else {
		s.trail.Backtrack(level)
		model := ModelFor[bool](s.trail, KindBool)
		for _, ref := range refs {
			c := s.db.Clause(ref)
			v := c.Lit(0).Var()
			if s.trail.Defined(v) {
				continue
			}
			s.trail.Propagate(v, ref, true, level)
			model.SetValue(v.Ord, !c.Lit(0).IsNegation())
		}
	}

	s.sink.AfterBacktrack(s.trail.DecisionLevel(), s.trail.Size(), split)
}

// doRestart truncates the trail fully, notifying before and after.
func (s *Solver) doRestart() {
	s.Stats.Restarts++
	s.log.WithField("restart_count", s.Stats.Restarts).Debug("restarting")
	s.sink.BeforeRestart(s.Stats.Restarts, s.trail.DecisionLevel(), s.trail.Size(), s.Stats.Conflicts)
	s.dispatcher.OnBeforeBacktrack(s.db, s.trail, 0)
	s.trail.Clear()
	s.dispatcher.OnRestart(s.db, s.trail)
	s.restart.OnRestart(s.db, s.trail)
}

func (s *Solver) finish() {
	s.sink.SearchEnd(s.trail.DecisionLevel(), s.trail.Size(), s.Stats.Conflicts, s.Stats.ConflictClauses, s.Stats.LearnedClauses, s.Stats.Decisions, s.Stats.Backtracks)
}

func litsLess(a, b []Literal) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i].Ord() != b[i].Ord() {
			return a[i].Ord() < b[i].Ord()
		}
		if a[i].IsNegation() != b[i].IsNegation() {
			return !a[i].IsNegation()
		}
	}
	return len(a) < len(b)
}

func litsEqual(a, b []Literal) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// litsString renders lits the way clause diagnostics are logged, e.g. in
// logrus fields: "(b0 ¬b1 b3)".
func litsString(lits []Literal) string {
	parts := make([]string, len(lits))
	for i, l := range lits {
		parts[i] = l.String()
	}
	return "(" + strings.Join(parts, " ") + ")"
}
