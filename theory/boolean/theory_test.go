package boolean

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crillab/yaga/core"
)

// setup mirrors core.Solver's init() ordering: clauses are asserted into
// the Database first, then OnInit installs watches over the whole input
// partition, then the trail and tables are grown.
func setup(t *testing.T, numVars int, clauses ...*core.Clause) (*Theory, *core.Database, *core.Trail) {
	t.Helper()
	th := New()
	db := core.NewDatabase()
	trail := core.NewTrail()
	for _, c := range clauses {
		db.Assert(c)
	}
	th.OnInit(db, trail)
	trail.Resize(core.KindBool, numVars)
	th.OnVariableResize(core.KindBool, numVars)
	return th, db, trail
}

// TestUnitClauseConflict covers two unit clauses over the same variable
// with opposite polarity: the first propagates a value, the second must
// be reported as an immediate conflict against that value.
func TestUnitClauseConflict(t *testing.T) {
	th, db, trail := setup(t, 1,
		core.NewClause([]core.Literal{core.NewLiteral(0, false)}), // x
		core.NewClause([]core.Literal{core.NewLiteral(0, true)}),  // ¬x
	)

	conflicts := th.Propagate(db, trail)
	require.Len(t, conflicts, 1)
	assert.Equal(t, 1, conflicts[0].Len())
	assert.Equal(t, core.NewLiteral(0, true), conflicts[0].Lit(0))
}

// TestWatchedPropagationAssertsRemainingLiteral covers the core
// two-watch invariant: once one watched literal of a binary clause is
// falsified, the other must be propagated true.
func TestWatchedPropagationAssertsRemainingLiteral(t *testing.T) {
	th, db, trail := setup(t, 2,
		core.NewClause([]core.Literal{core.NewLiteral(0, false), core.NewLiteral(1, false)}), // x∨y
	)

	x := core.Variable{Kind: core.KindBool, Ord: 0}
	trail.Decide(x)
	th.model.SetValue(0, false)

	conflicts := th.Propagate(db, trail)
	assert.Empty(t, conflicts)
	require.True(t, th.model.IsDefined(1))
	assert.True(t, th.model.Value(1), "y must be asserted true once x is false")
}

// TestWatchRelocatesToUnassignedLiteral covers the watch-swap path: a
// three-literal clause relocates its watch to an unassigned literal
// rather than propagating, when one is available.
func TestWatchRelocatesToUnassignedLiteral(t *testing.T) {
	th, db, trail := setup(t, 3,
		core.NewClause([]core.Literal{
			core.NewLiteral(0, false),
			core.NewLiteral(1, false),
			core.NewLiteral(2, false),
		}), // x∨y∨z
	)

	x := core.Variable{Kind: core.KindBool, Ord: 0}
	trail.Decide(x)
	th.model.SetValue(0, false)

	conflicts := th.Propagate(db, trail)
	assert.Empty(t, conflicts)
	assert.False(t, th.model.IsDefined(1), "y must remain unassigned: the watch relocated to z instead")
	assert.False(t, th.model.IsDefined(2), "z must remain unassigned: it is now watched, not propagated")

	zLit := core.NewLiteral(2, false)
	watchers := th.watch[zLit.Index()]
	found := false
	for _, ref := range watchers {
		if db.Clause(ref).Len() == 3 {
			found = true
		}
	}
	assert.True(t, found, "the three-literal clause must now be watched on z")
}

// TestSatisfiedClauseSkipsRelocation covers the short-circuit: a clause
// already satisfied through its other watched literal is left alone
// even when its first watch is falsified.
func TestSatisfiedClauseSkipsRelocation(t *testing.T) {
	th, db, trail := setup(t, 2,
		core.NewClause([]core.Literal{core.NewLiteral(0, false), core.NewLiteral(1, false)}), // x∨y
	)

	y := core.Variable{Kind: core.KindBool, Ord: 1}
	trail.Decide(y)
	th.model.SetValue(1, true)

	x := core.Variable{Kind: core.KindBool, Ord: 0}
	trail.Decide(x)
	th.model.SetValue(0, false)

	conflicts := th.Propagate(db, trail)
	assert.Empty(t, conflicts)
}

// TestOnLearnedClauseInstallsWatch covers that a clause learned mid-search
// gets the same watch treatment as an input clause, via the
// OnLearnedClause hook the driver calls right after Database.LearnClause.
func TestOnLearnedClauseInstallsWatch(t *testing.T) {
	th, db, trail := setup(t, 2)

	learned := core.NewClause([]core.Literal{core.NewLiteral(0, false), core.NewLiteral(1, false)})
	db.LearnClause(learned)
	th.OnLearnedClause(db, trail, learned)

	x := core.Variable{Kind: core.KindBool, Ord: 0}
	trail.Decide(x)
	th.model.SetValue(0, false)

	conflicts := th.Propagate(db, trail)
	assert.Empty(t, conflicts)
	require.True(t, th.model.IsDefined(1))
	assert.True(t, th.model.Value(1))
}
