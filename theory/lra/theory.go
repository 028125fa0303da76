package lra

import "github.com/crillab/yaga/core"

// atomDef ties a Boolean variable (the "atom") to a bound constraint on a
// KindRational variable: atom true means var is bounded by bound on the
// side upper/strict say; atom false means the complementary bound holds
// (negate below).
type atomDef struct {
	varOrd int32
	bound  Rational
	upper  bool // true: var <= bound (or < if strict); false: var >= bound (or > if strict)
	strict bool
}

// negate returns the constraint implied when the atom is false instead of
// true: the complement of "var <= bound" is "var > bound", etc. Negating a
// bound always flips both the side and the strictness.
func (a atomDef) negate() atomDef {
	return atomDef{varOrd: a.varOrd, bound: a.bound, upper: !a.upper, strict: !a.strict}
}

// holds reports whether val satisfies the constraint a describes.
func (a atomDef) holds(val Rational) bool {
	cmp := val.Cmp(a.bound)
	if a.upper {
		if a.strict {
			return cmp < 0
		}
		return cmp <= 0
	}
	if a.strict {
		return cmp > 0
	}
	return cmp >= 0
}

// Theory is a simplified LRA propagator: it tracks, for each rational
// variable, the tightest lower and upper bound implied by the currently
// assigned atoms, flags a conflict when those bounds cross, and otherwise
// propagates any atom whose truth value the current bounds already force.
// It does not run a simplex and cannot detect infeasibility that only
// shows up across more than one variable (no linear combination of rows):
// grounded on original_source's lra/Bounds.h and lra/Variable_bounds.h,
// scaled down from a full tableau to single-variable interval reasoning.
//
// Must be registered with core.Solver alongside a theory/boolean.Theory:
// it resolves KindBool's model via core.ModelFor, which requires the
// Boolean theory's OnInit to have registered it. The lookup happens on
// the first Propagate or Decide, after every theory's OnInit has run, so
// the two may be registered in either order.
type Theory struct {
	core.EmbedTheory

	boolModel *core.Model[bool]
	ratModel  *core.Model[Rational]

	atoms map[int32]atomDef // Boolean atom ordinal -> its bound definition
	byVar map[int32][]int32 // rational var ordinal -> atom ordinals that bound it

	processed int
}

// New returns an unconfigured Theory. Register bound atoms with
// RegisterAtom before calling core.Solver.Check.
func New() *Theory {
	return &Theory{
		atoms: make(map[int32]atomDef),
		byVar: make(map[int32][]int32),
	}
}

// RegisterAtom declares that Boolean variable atomOrd, when true, asserts
// the rational variable varOrd <= bound (upper true, non-strict) or one of
// the three sibling orderings. Must be called before core.Solver.Check.
func (t *Theory) RegisterAtom(atomOrd, varOrd int32, bound Rational, upper, strict bool) {
	def := atomDef{varOrd: varOrd, bound: bound, upper: upper, strict: strict}
	t.atoms[atomOrd] = def
	t.byVar[varOrd] = append(t.byVar[varOrd], atomOrd)
}

// OnInit registers the rational model with the trail. The Boolean model is
// fetched lazily on first use since the Boolean theory may not have run
// its own OnInit yet at the point the dispatcher calls this one.
func (t *Theory) OnInit(db *core.Database, trail *core.Trail) {
	t.ratModel = core.AddModel[Rational](trail, core.KindRational)
}

// OnVariableResize grows the rational model for core.KindRational.
func (t *Theory) OnVariableResize(kind core.Kind, n int) {
	if kind != core.KindRational {
		return
	}
	t.ratModel.Resize(n)
}

// Decide picks a concrete value for a rational variable consistent with
// its currently known bounds: the bound itself if only one is known and
// it is non-strict (one unit inside it if it is strict), the lower bound
// if both are known (the midpoint of the two if the lower one is strict),
// or zero if neither bound is known.
func (t *Theory) Decide(db *core.Database, trail *core.Trail, v core.Variable) {
	if v.Kind != core.KindRational {
		return
	}
	t.ensureBoolModel(trail)

	lower, lowerStrict, _, upper, upperStrict, _ := t.bounds(trail, v.Ord)
	var val Rational
	switch {
	case lower != nil && lowerStrict && upper != nil:
		sum := lower.Add(*upper)
		val = NewRational(sum.num, 2*sum.den)
	case lower != nil && lowerStrict:
		val = lower.Add(FromInt(1))
	case lower != nil:
		val = *lower
	case upper != nil && upperStrict:
		val = upper.Sub(FromInt(1))
	case upper != nil:
		val = *upper
	default:
		val = FromInt(0)
	}

	trail.Decide(v)
	t.ratModel.SetValue(v.Ord, val)

	// A decided value pins the variable exactly, which determines every
	// atom registered on it, not only the ones the known interval already
	// forced: entail them all directly against val, same level, no reason
	// (spec.md §4.4's theory-internal propagation).
	for _, atomOrd := range t.byVar[v.Ord] {
		if t.boolModel.IsDefined(atomOrd) {
			continue
		}
		def := t.atoms[atomOrd]
		atomVar := core.Variable{Kind: core.KindBool, Ord: atomOrd}
		trail.Propagate(atomVar, core.ClauseRef{}, false, trail.DecisionLevel())
		t.boolModel.SetValue(atomOrd, def.holds(val))
	}
}

// Propagate scans trail entries not yet seen: a newly assigned atom can
// tighten the known bounds on its variable (a newly decided rational
// variable only triggers a re-check of its atoms, since bounds come from
// atoms alone), which may force other atoms on it (theory-internal
// propagation, no reason clause) or make two bounds contradict each other
// (a raw conflict clause over the two atoms responsible).
func (t *Theory) Propagate(db *core.Database, trail *core.Trail) []*core.Clause {
	t.ensureBoolModel(trail)
	if t.processed > trail.Size() {
		t.processed = trail.Size()
	}

	var conflicts []*core.Clause
	for {
		entries := trail.EntriesFrom(t.processed)
		if len(entries) == 0 {
			break
		}
		touched := make(map[int32]bool)
		for _, e := range entries {
			t.processed++
			switch e.Var.Kind {
			case core.KindBool:
				if def, ok := t.atoms[e.Var.Ord]; ok {
					touched[def.varOrd] = true
				}
			case core.KindRational:
				touched[e.Var.Ord] = true
			}
		}
		if len(touched) == 0 {
			continue
		}
		for varOrd := range touched {
			if c := t.checkVar(trail, varOrd); c != nil {
				conflicts = append(conflicts, c)
			}
		}
		if len(conflicts) > 0 {
			return conflicts
		}
	}
	return conflicts
}

// checkVar recomputes the tightest lower/upper bound on varOrd, reports a
// conflict if they cross, and otherwise propagates any not-yet-assigned
// atom on varOrd whose truth the bounds already force.
func (t *Theory) checkVar(trail *core.Trail, varOrd int32) *core.Clause {
	lower, lowerStrict, lowerAtom, upper, upperStrict, upperAtom := t.bounds(trail, varOrd)

	if lower != nil && upper != nil {
		cmp := lower.Cmp(*upper)
		if cmp > 0 || (cmp == 0 && (lowerStrict || upperStrict)) {
			return t.conflictClause(lowerAtom, upperAtom)
		}
	}

	for _, atomOrd := range t.byVar[varOrd] {
		if t.boolModel.IsDefined(atomOrd) {
			continue
		}
		def := t.atoms[atomOrd]
		atomVar := core.Variable{Kind: core.KindBool, Ord: atomOrd}
		switch {
		case t.entailedTrue(def, lower, lowerStrict, upper, upperStrict):
			trail.Propagate(atomVar, core.ClauseRef{}, false, trail.DecisionLevel())
			t.boolModel.SetValue(atomOrd, true)
		case t.entailedTrue(def.negate(), lower, lowerStrict, upper, upperStrict):
			trail.Propagate(atomVar, core.ClauseRef{}, false, trail.DecisionLevel())
			t.boolModel.SetValue(atomOrd, false)
		}
	}
	return nil
}

// entailedTrue reports whether def is already forced true by the known
// lower/upper bound on its variable.
func (t *Theory) entailedTrue(def atomDef, lower *Rational, lowerStrict bool, upper *Rational, upperStrict bool) bool {
	if def.upper {
		if upper == nil {
			return false
		}
		cmp := upper.Cmp(def.bound)
		return cmp < 0 || (cmp == 0 && (!def.strict || upperStrict))
	}
	if lower == nil {
		return false
	}
	cmp := lower.Cmp(def.bound)
	return cmp > 0 || (cmp == 0 && (!def.strict || lowerStrict))
}

// conflictClause builds the raw conflict clause from the two atoms whose
// bounds cross: each atom's currently-true literal is falsified in the
// clause, since the clause must hold every literal false (spec.md §4.4).
func (t *Theory) conflictClause(lowerAtom, upperAtom int32) *core.Clause {
	lits := make([]core.Literal, 0, 2)
	seen := make(map[int32]bool, 2)
	for _, ord := range []int32{lowerAtom, upperAtom} {
		if seen[ord] {
			continue
		}
		seen[ord] = true
		val := t.boolModel.Value(ord)
		lits = append(lits, core.NewLiteral(ord, val))
	}
	return core.NewClause(lits)
}

// bounds recomputes the tightest lower and upper bound on rational
// variable varOrd from the currently assigned atoms registered on it,
// along with which atom ordinal produced each. Recomputed from scratch
// rather than maintained incrementally (original_source's Bounds keeps an
// obsolescence-checked stack; this is the simplification that trades
// that bookkeeping for an O(atoms per variable) scan).
func (t *Theory) bounds(trail *core.Trail, varOrd int32) (lower *Rational, lowerStrict bool, lowerAtom int32, upper *Rational, upperStrict bool, upperAtom int32) {
	for _, atomOrd := range t.byVar[varOrd] {
		if !t.boolModel.IsDefined(atomOrd) {
			continue
		}
		def := t.atoms[atomOrd]
		if !t.boolModel.Value(atomOrd) {
			def = def.negate()
		}
		if def.upper {
			if upper == nil || def.bound.Cmp(*upper) < 0 || (def.bound.Equal(*upper) && def.strict && !upperStrict) {
				b := def.bound
				upper = &b
				upperStrict = def.strict
				upperAtom = atomOrd
			}
		} else {
			if lower == nil || def.bound.Cmp(*lower) > 0 || (def.bound.Equal(*lower) && def.strict && !lowerStrict) {
				b := def.bound
				lower = &b
				lowerStrict = def.strict
				lowerAtom = atomOrd
			}
		}
	}
	return
}

// OnBeforeBacktrack resets the propagation cursor the same way
// theory/boolean's Theory does, and for the same reason: backtrackWith
// truncates and then immediately re-propagates within a single call, so a
// clamp that only runs lazily inside Propagate would see the trail already
// regrown and wrongly skip the new entries.
func (t *Theory) OnBeforeBacktrack(db *core.Database, trail *core.Trail, level int) {
	size := 0
	for l := 0; l <= level; l++ {
		size += len(trail.Assigned(l))
	}
	if t.processed > size {
		t.processed = size
	}
}

func (t *Theory) ensureBoolModel(trail *core.Trail) {
	if t.boolModel == nil {
		t.boolModel = core.ModelFor[bool](trail, core.KindBool)
	}
}
