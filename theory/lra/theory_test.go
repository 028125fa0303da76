package lra

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crillab/yaga/core"
)

func setup(t *testing.T) (*Theory, *core.Database, *core.Trail, *core.Model[bool]) {
	t.Helper()
	db := core.NewDatabase()
	trail := core.NewTrail()
	boolModel := core.AddModel[bool](trail, core.KindBool)
	th := New()
	th.OnInit(db, trail)
	trail.Resize(core.KindBool, 2)
	trail.Resize(core.KindRational, 1)
	th.OnVariableResize(core.KindRational, 1)
	return th, db, trail, boolModel
}

// TestCheckVarEntailsComplementaryAtom covers eager entailment: once the
// upper bound x<=5 is asserted, the theory must immediately propagate the
// disjoint lower-bound atom x>=10 to false, without waiting for it to be
// decided.
func TestCheckVarEntailsComplementaryAtom(t *testing.T) {
	th, db, trail, boolModel := setup(t)
	th.RegisterAtom(0, 0, FromInt(5), true, false)  // atom0: x <= 5
	th.RegisterAtom(1, 0, FromInt(10), false, false) // atom1: x >= 10

	atom0 := core.Variable{Kind: core.KindBool, Ord: 0}
	trail.Decide(atom0)
	boolModel.SetValue(0, true)

	conflicts := th.Propagate(db, trail)
	assert.Empty(t, conflicts)
	require.True(t, boolModel.IsDefined(1), "atom1 must be forced by the known upper bound")
	assert.False(t, boolModel.Value(1), "x<=5 entails ¬(x>=10)")
}

// TestCheckVarDetectsCrossedBounds covers the conflict rule directly: two
// atoms whose bounds are asserted together (simulating a single
// propagation batch) and cross must yield a two-literal raw conflict
// clause over exactly those atoms.
func TestCheckVarDetectsCrossedBounds(t *testing.T) {
	th, db, trail, boolModel := setup(t)
	th.RegisterAtom(0, 0, FromInt(5), true, false)  // atom0: x <= 5
	th.RegisterAtom(1, 0, FromInt(10), false, false) // atom1: x >= 10

	atom0 := core.Variable{Kind: core.KindBool, Ord: 0}
	atom1 := core.Variable{Kind: core.KindBool, Ord: 1}
	trail.Propagate(atom0, core.ClauseRef{}, false, 0)
	boolModel.SetValue(0, true)
	trail.Propagate(atom1, core.ClauseRef{}, false, 0)
	boolModel.SetValue(1, true)

	conflicts := th.Propagate(db, trail)
	require.Len(t, conflicts, 1)
	c := conflicts[0]
	require.Equal(t, 2, c.Len())

	ords := map[int32]bool{c.Lit(0).Ord(): true, c.Lit(1).Ord(): true}
	assert.True(t, ords[0])
	assert.True(t, ords[1])
	assert.True(t, c.Lit(0).IsNegation())
	assert.True(t, c.Lit(1).IsNegation())
}

// TestStrictBoundsCross covers that equal strict/non-strict bounds on the
// same point are still a conflict: x<5 (strict) and x>=5 cannot both
// hold.
func TestStrictBoundsCross(t *testing.T) {
	th, db, trail, boolModel := setup(t)
	th.RegisterAtom(0, 0, FromInt(5), true, true)   // atom0: x < 5
	th.RegisterAtom(1, 0, FromInt(5), false, false) // atom1: x >= 5

	atom0 := core.Variable{Kind: core.KindBool, Ord: 0}
	atom1 := core.Variable{Kind: core.KindBool, Ord: 1}
	trail.Propagate(atom0, core.ClauseRef{}, false, 0)
	boolModel.SetValue(0, true)
	trail.Propagate(atom1, core.ClauseRef{}, false, 0)
	boolModel.SetValue(1, true)

	conflicts := th.Propagate(db, trail)
	require.Len(t, conflicts, 1)
}

// TestNonCrossingBoundsPropagateNoConflict covers the non-conflicting case:
// x<=5 and x>=2 coexist, so no conflict should be reported and no further
// atom on the variable should be forced (neither bound subsumes the
// other).
func TestNonCrossingBoundsPropagateNoConflict(t *testing.T) {
	th, db, trail, boolModel := setup(t)
	th.RegisterAtom(0, 0, FromInt(5), true, false)  // atom0: x <= 5
	th.RegisterAtom(1, 0, FromInt(2), false, false) // atom1: x >= 2

	atom0 := core.Variable{Kind: core.KindBool, Ord: 0}
	atom1 := core.Variable{Kind: core.KindBool, Ord: 1}
	trail.Propagate(atom0, core.ClauseRef{}, false, 0)
	boolModel.SetValue(0, true)
	trail.Propagate(atom1, core.ClauseRef{}, false, 0)
	boolModel.SetValue(1, true)

	conflicts := th.Propagate(db, trail)
	assert.Empty(t, conflicts)
}

// TestDecidePicksWithinKnownBounds covers Decide's value choice: with
// only an upper bound known, it must pick that bound's value rather than
// the default zero.
func TestDecidePicksWithinKnownBounds(t *testing.T) {
	th, db, trail, boolModel := setup(t)
	th.RegisterAtom(0, 0, FromInt(5), true, false) // atom0: x <= 5

	atom0 := core.Variable{Kind: core.KindBool, Ord: 0}
	trail.Decide(atom0)
	boolModel.SetValue(0, true)
	th.Propagate(db, trail)

	ratVar := core.Variable{Kind: core.KindRational, Ord: 0}
	th.Decide(db, trail, ratVar)

	ratModel := core.ModelFor[Rational](trail, core.KindRational)
	require.True(t, ratModel.IsDefined(0))
	assert.True(t, ratModel.Value(0).Equal(FromInt(5)))
}
