package core_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crillab/yaga/core"
	"github.com/crillab/yaga/policy"
	"github.com/crillab/yaga/theory/boolean"
	"github.com/crillab/yaga/theory/lra"
)

func newBoolSolver(t *testing.T, numVars int, opts ...core.Option) *core.Solver {
	t.Helper()
	allOpts := append([]core.Option{core.WithVariableOrder(policy.NewFirstUnassigned(core.KindBool))}, opts...)
	s, err := core.NewSolver(allOpts...)
	require.NoError(t, err)
	s.RegisterTheory(boolean.New())
	s.SetNumVars(core.KindBool, numVars)
	return s
}

func lit(ord int32, neg bool) core.Literal { return core.NewLiteral(ord, neg) }

// TestCheckUnitUnsat covers the unit-UNSAT scenario: { (x), (¬x) } must
// report UNSAT without ever reaching a decision.
func TestCheckUnitUnsat(t *testing.T) {
	s := newBoolSolver(t, 1)
	s.Database().Assert(core.NewClause([]core.Literal{lit(0, false)}))
	s.Database().Assert(core.NewClause([]core.Literal{lit(0, true)}))

	status, err := s.Check(context.Background())
	require.NoError(t, err)
	assert.Equal(t, core.Unsat, status)
	assert.Zero(t, s.Stats.Decisions)
	assert.GreaterOrEqual(t, s.Stats.Conflicts, 1)
}

// TestCheckSingleDecisionSat covers { (x ∨ y) }: SAT within at most two
// decisions, and the final model actually satisfies the clause.
func TestCheckSingleDecisionSat(t *testing.T) {
	s := newBoolSolver(t, 2)
	s.Database().Assert(core.NewClause([]core.Literal{lit(0, false), lit(1, false)}))

	status, err := s.Check(context.Background())
	require.NoError(t, err)
	assert.Equal(t, core.Sat, status)
	assert.LessOrEqual(t, s.Stats.Decisions, 2)

	model := core.ModelFor[bool](s.Trail(), core.KindBool)
	x, y := model.Value(0), model.Value(1)
	assert.True(t, x || y, "clause (x∨y) must be satisfied by the final model")
}

// TestCheckUIPLearning covers { (¬a∨b), (¬b∨c), (¬a∨¬c) }: deciding a
// propagates b through the first clause and ¬c through the third, which
// falsifies the second; the learned unit clause must be ¬a, backtracking all the way to level 0 and
// flipping a, after which the formula is satisfiable.
func TestCheckUIPLearning(t *testing.T) {
	s := newBoolSolver(t, 3)
	s.Database().Assert(core.NewClause([]core.Literal{lit(0, true), lit(1, false)})) // ¬a∨b
	s.Database().Assert(core.NewClause([]core.Literal{lit(1, true), lit(2, false)})) // ¬b∨c
	s.Database().Assert(core.NewClause([]core.Literal{lit(0, true), lit(2, true)}))  // ¬a∨¬c

	status, err := s.Check(context.Background())
	require.NoError(t, err)
	assert.Equal(t, core.Sat, status)
	assert.GreaterOrEqual(t, s.Stats.LearnedClauses, 1)
	assert.GreaterOrEqual(t, s.Stats.Backtracks, 1)

	require.NotEmpty(t, s.Database().Learned())
	learned := s.Database().Learned()[0]
	require.Equal(t, 1, learned.Len())
	assert.Equal(t, lit(0, true), learned.Lit(0)) // ¬a

	model := core.ModelFor[bool](s.Trail(), core.KindBool)
	assert.False(t, model.Value(0), "a must end up false")
}

// TestCheckUnsatViaLearnedClause exercises the law "if Check returns
// UNSAT, the empty clause is derivable from the input via the
// learned-clause sequence" through a formula that genuinely requires a
// decision, a learned clause and a backtrack before the level-0 conflict
// that proves unsatisfiability: { (a∨b), (a∨¬b), (¬a∨b), (¬a∨¬b) }.
func TestCheckUnsatViaLearnedClause(t *testing.T) {
	s := newBoolSolver(t, 2)
	s.Database().Assert(core.NewClause([]core.Literal{lit(0, false), lit(1, false)}))
	s.Database().Assert(core.NewClause([]core.Literal{lit(0, false), lit(1, true)}))
	s.Database().Assert(core.NewClause([]core.Literal{lit(0, true), lit(1, false)}))
	s.Database().Assert(core.NewClause([]core.Literal{lit(0, true), lit(1, true)}))

	status, err := s.Check(context.Background())
	require.NoError(t, err)
	assert.Equal(t, core.Unsat, status)
	assert.GreaterOrEqual(t, s.Stats.LearnedClauses, 1, "must learn at least one clause before reaching the empty-clause conflict")
	assert.GreaterOrEqual(t, s.Stats.Backtracks, 1)
}

// TestCheckSemanticSplit covers scenario 4: a Rational decision that
// entails two Boolean atoms at its own level, both without a reason
// clause, in a way that later falsifies an input clause over exactly
// those two atoms. Neither falsifying literal is Boolean-resolvable, so
// the raw conflict has two literals at the top decision level — a
// semantic split — and backtrackWith must re-decide the chosen atom's
// variable directly rather than propagate a UIP literal.
func TestCheckSemanticSplit(t *testing.T) {
	th := lra.New()
	th.RegisterAtom(0, 0, lra.FromInt(-5), false, false) // atom0: x >= -5
	th.RegisterAtom(1, 0, lra.FromInt(5), true, false)   // atom1: x <= 5

	s, err := core.NewSolver(core.WithVariableOrder(policy.NewFirstUnassigned(core.KindRational, core.KindBool)))
	require.NoError(t, err)
	s.RegisterTheory(boolean.New())
	s.RegisterTheory(th)
	s.SetNumVars(core.KindBool, 2)
	s.SetNumVars(core.KindRational, 1)

	// ¬atom0 ∨ ¬atom1: violated the moment both atoms are true, which the
	// rational decision's entailment makes happen at the same level.
	s.Database().Assert(core.NewClause([]core.Literal{lit(0, true), lit(1, true)}))

	status, err := s.Check(context.Background())
	require.NoError(t, err)
	assert.Equal(t, core.Sat, status)
	assert.GreaterOrEqual(t, s.Stats.Backtracks, 1, "the semantic split must force a backtrack")
	assert.GreaterOrEqual(t, s.Stats.LearnedClauses, 1)

	require.NotEmpty(t, s.Database().Learned())
	learned := s.Database().Learned()[0]
	assert.True(t, core.IsSemanticSplit(s.Trail(), learned.Lits()), "the learned clause must record a semantic split, not a UIP resolution")
}

// probeTheory is a bare core.Theory used only to observe dispatcher
// callbacks the real theories don't expose a way to inspect from outside.
type probeTheory struct {
	core.EmbedTheory
	beforeBacktrackCalls  []int
	trailSizeAtBacktrack  []int
	learnedClauseCalls    int
}

func (p *probeTheory) OnBeforeBacktrack(db *core.Database, trail *core.Trail, level int) {
	p.beforeBacktrackCalls = append(p.beforeBacktrackCalls, level)
	p.trailSizeAtBacktrack = append(p.trailSizeAtBacktrack, trail.Size())
}

func (p *probeTheory) OnLearnedClause(db *core.Database, trail *core.Trail, c *core.Clause) {
	p.learnedClauseCalls++
}

// alwaysRestartAfterFirstLearn fires exactly once, right after the first
// clause is learned.
type alwaysRestartAfterFirstLearn struct {
	learned  bool
	fired    bool
}

func (r *alwaysRestartAfterFirstLearn) OnLearnedClause(*core.Database, *core.Trail, *core.Clause) {
	r.learned = true
}
func (r *alwaysRestartAfterFirstLearn) ShouldRestart() bool {
	return r.learned && !r.fired
}
func (r *alwaysRestartAfterFirstLearn) OnRestart(*core.Database, *core.Trail) {
	r.fired = true
}

// TestCheckRestartInteraction covers the restart-interaction scenario: a
// restart policy that fires right after the first learned clause must
// cause on_before_backtrack(0) to fire before the trail is cleared, and
// the learned clause must survive in the Database afterward.
func TestCheckRestartInteraction(t *testing.T) {
	restart := &alwaysRestartAfterFirstLearn{}
	probe := &probeTheory{}

	s := newBoolSolver(t, 3, core.WithRestartPolicy(restart))
	s.RegisterTheory(probe)
	s.Database().Assert(core.NewClause([]core.Literal{lit(0, true), lit(1, false)})) // ¬a∨b
	s.Database().Assert(core.NewClause([]core.Literal{lit(1, true), lit(2, false)})) // ¬b∨c
	s.Database().Assert(core.NewClause([]core.Literal{lit(0, true), lit(2, true)}))  // ¬a∨¬c

	status, err := s.Check(context.Background())
	require.NoError(t, err)
	assert.Equal(t, core.Sat, status)

	require.NotEmpty(t, probe.beforeBacktrackCalls)
	assert.Equal(t, 0, probe.beforeBacktrackCalls[0], "restart truncates to level 0")
	assert.Greater(t, probe.trailSizeAtBacktrack[0], 0, "on_before_backtrack must fire before the trail is cleared")

	require.Len(t, s.Database().Learned(), 1, "the learned clause must survive the restart")
	assert.Equal(t, 1, s.Database().Learned()[0].Len())
}

// dupeConflictTheory reports a second, independently-built raw conflict
// clause with the same literal content as the real conflict theory/boolean
// finds for the (¬b∨c) clause, once b is true and c is false. It exists
// only to exercise the driver's duplicate-learn dedup path.
type dupeConflictTheory struct {
	core.EmbedTheory
	model *core.Model[bool]
	fired bool
}

func (d *dupeConflictTheory) OnInit(db *core.Database, trail *core.Trail) {
	d.model = core.ModelFor[bool](trail, core.KindBool)
}

func (d *dupeConflictTheory) Propagate(db *core.Database, trail *core.Trail) []*core.Clause {
	if d.fired {
		return nil
	}
	if !d.model.IsDefined(1) || !d.model.IsDefined(2) {
		return nil
	}
	if !d.model.Value(1) || d.model.Value(2) {
		return nil
	}
	d.fired = true
	return []*core.Clause{core.NewClause([]core.Literal{lit(1, true), lit(2, false)})}
}

// TestCheckDuplicateLearnDedup covers the duplicate-learn scenario: two
// theories independently report conflict clauses that resolve to the same
// learned literals; only one entry must land in the Database, and
// OnLearnedClause must fire exactly once for it.
func TestCheckDuplicateLearnDedup(t *testing.T) {
	probe := &probeTheory{}
	s := newBoolSolver(t, 3)
	s.RegisterTheory(&dupeConflictTheory{})
	s.RegisterTheory(probe)
	s.Database().Assert(core.NewClause([]core.Literal{lit(0, true), lit(1, false)})) // ¬a∨b
	s.Database().Assert(core.NewClause([]core.Literal{lit(1, true), lit(2, false)})) // ¬b∨c
	s.Database().Assert(core.NewClause([]core.Literal{lit(0, true), lit(2, true)}))  // ¬a∨¬c

	status, err := s.Check(context.Background())
	require.NoError(t, err)
	assert.Equal(t, core.Sat, status)

	learnedUnits := 0
	for _, c := range s.Database().Learned() {
		if c.Len() == 1 && c.Lit(0) == lit(0, true) {
			learnedUnits++
		}
	}
	assert.Equal(t, 1, learnedUnits, "the duplicate ¬a clauses must dedup to a single Database entry")
	assert.Equal(t, 1, probe.learnedClauseCalls, "OnLearnedClause must fire exactly once for the deduped clause")
}
