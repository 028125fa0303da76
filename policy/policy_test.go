package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crillab/yaga/core"
)

// TestLubySequence checks the first several terms of the Luby sequence
// against its known closed form (1, 1, 2, 1, 1, 2, 4, 1, ...).
func TestLubySequence(t *testing.T) {
	want := []uint{1, 1, 2, 1, 1, 2, 4, 1, 1, 2, 1, 1, 2, 4, 8}
	for i, w := range want {
		assert.Equal(t, w, luby(uint(i+1)), "luby(%d)", i+1)
	}
}

// TestLubyRestartFiresAtThreshold covers ShouldRestart's exact boundary:
// one conflict short of the threshold must not fire, reaching it must.
func TestLubyRestartFiresAtThreshold(t *testing.T) {
	r := NewLubyRestart()
	threshold := lubyConstant * luby(r.restartIndex)

	r.conflictsSinceRestart = threshold - 1
	assert.False(t, r.ShouldRestart())

	r.conflictsSinceRestart = threshold
	assert.True(t, r.ShouldRestart())
}

// TestLubyRestartAdvancesIndexOnRestart covers OnRestart's bookkeeping:
// the conflict counter resets and the sequence index advances to the
// next term.
func TestLubyRestartAdvancesIndexOnRestart(t *testing.T) {
	r := NewLubyRestart()
	r.conflictsSinceRestart = 999
	r.OnRestart(nil, nil)
	assert.Zero(t, r.conflictsSinceRestart)
	assert.Equal(t, uint(2), r.restartIndex)
}

// TestNoRestartNeverFires covers the null policy regardless of how many
// learned-clause notifications it receives.
func TestNoRestartNeverFires(t *testing.T) {
	var r NoRestart
	for i := 0; i < 1000; i++ {
		r.OnLearnedClause(nil, nil, nil)
	}
	assert.False(t, r.ShouldRestart())
}

// TestFirstUnassignedPicksInKindThenOrdinalOrder covers the scan order:
// Boolean variables before rational ones, lowest ordinal first within a
// kind.
func TestFirstUnassignedPicksInKindThenOrdinalOrder(t *testing.T) {
	trail := core.NewTrail()
	core.AddModel[bool](trail, core.KindBool)
	core.AddModel[int](trail, core.KindRational)
	trail.Resize(core.KindBool, 2)
	trail.Resize(core.KindRational, 1)

	order := NewFirstUnassigned(core.KindBool, core.KindRational)

	v, ok := order.Pick(nil, trail)
	require.True(t, ok)
	assert.Equal(t, core.Variable{Kind: core.KindBool, Ord: 0}, v)

	trail.Decide(core.Variable{Kind: core.KindBool, Ord: 0})
	v, ok = order.Pick(nil, trail)
	require.True(t, ok)
	assert.Equal(t, core.Variable{Kind: core.KindBool, Ord: 1}, v)

	trail.Decide(core.Variable{Kind: core.KindBool, Ord: 1})
	v, ok = order.Pick(nil, trail)
	require.True(t, ok)
	assert.Equal(t, core.Variable{Kind: core.KindRational, Ord: 0}, v)

	trail.Decide(core.Variable{Kind: core.KindRational, Ord: 0})
	_, ok = order.Pick(nil, trail)
	assert.False(t, ok, "every variable is defined: no pick remains")
}

// TestActivityOrderPicksHighestBumpedVariable covers the core VSIDS
// shape: a variable repeatedly bumped via OnConflictResolved must be
// picked ahead of one that was never bumped.
func TestActivityOrderPicksHighestBumpedVariable(t *testing.T) {
	trail := core.NewTrail()
	core.AddModel[bool](trail, core.KindBool)
	trail.Resize(core.KindBool, 3)

	order := NewActivityOrder(core.KindBool)
	order.OnVariableResize(core.KindBool, 3)

	bumped := core.NewClause([]core.Literal{core.NewLiteral(2, false)})
	order.OnConflictResolved(nil, trail, bumped)

	v, ok := order.Pick(nil, trail)
	require.True(t, ok)
	assert.Equal(t, int32(2), v.Ord, "variable 2 was bumped and must be picked first")
}

// TestActivityOrderIsBeforeOrdersByKindThenActivity covers IsBefore's
// two-stage comparison.
func TestActivityOrderIsBeforeOrdersByKindThenActivity(t *testing.T) {
	order := NewActivityOrder(core.KindBool, core.KindRational)
	order.OnVariableResize(core.KindBool, 2)

	boolVar := core.Variable{Kind: core.KindBool, Ord: 0}
	ratVar := core.Variable{Kind: core.KindRational, Ord: 0}
	assert.True(t, order.IsBefore(boolVar, ratVar), "bool kind has higher priority than rational")

	clause := core.NewClause([]core.Literal{core.NewLiteral(1, false)})
	order.OnConflictResolved(nil, nil, clause)

	v0 := core.Variable{Kind: core.KindBool, Ord: 0}
	v1 := core.Variable{Kind: core.KindBool, Ord: 1}
	assert.True(t, order.IsBefore(v1, v0), "variable 1 has higher activity after being bumped")
}
