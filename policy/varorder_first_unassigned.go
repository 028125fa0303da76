package policy

import "github.com/crillab/yaga/core"

// FirstUnassigned picks the first undefined variable, scanning each
// registered kind in the order it was given, then ordinal within a kind.
// Grounded on original_source's First_unassigned.cpp: the simplest
// variable order, useful as a baseline and in tests where decision order
// must be predictable.
type FirstUnassigned struct {
	kinds []core.Kind
}

// NewFirstUnassigned returns a FirstUnassigned order scanning kinds in
// the given priority order.
func NewFirstUnassigned(kinds ...core.Kind) *FirstUnassigned {
	return &FirstUnassigned{kinds: kinds}
}

// Pick returns the first undefined variable found.
func (o *FirstUnassigned) Pick(db *core.Database, trail *core.Trail) (core.Variable, bool) {
	for _, k := range o.kinds {
		n := trail.NumVars(k)
		for ord := int32(0); ord < int32(n); ord++ {
			v := core.Variable{Kind: k, Ord: ord}
			if !trail.Defined(v) {
				return v, true
			}
		}
	}
	return core.Variable{}, false
}

// IsBefore orders first by kind priority, then by ordinal.
func (o *FirstUnassigned) IsBefore(a, b core.Variable) bool {
	ai, bi := o.kindIndex(a.Kind), o.kindIndex(b.Kind)
	if ai != bi {
		return ai < bi
	}
	return a.Ord < b.Ord
}

func (o *FirstUnassigned) kindIndex(k core.Kind) int {
	for i, kk := range o.kinds {
		if kk == k {
			return i
		}
	}
	return len(o.kinds)
}

// OnLearnedClause, OnConflictResolved and OnVariableResize are no-ops:
// this order carries no per-variable state.
func (o *FirstUnassigned) OnLearnedClause(db *core.Database, trail *core.Trail, c *core.Clause)     {}
func (o *FirstUnassigned) OnConflictResolved(db *core.Database, trail *core.Trail, c *core.Clause)  {}
func (o *FirstUnassigned) OnVariableResize(k core.Kind, n int)                                      {}
