package core

import "sort"

// Analyzer turns a raw conflict clause (every literal currently falsified
// on the trail) into a learned clause and a backtrack level, by
// first-UIP resolution (spec.md §4.4). Resolution only ever walks
// Boolean reason clauses — a trail entry for a Boolean variable with no
// reason (a Boolean decision, or a theory-internal propagation with no
// Boolean justification) cannot be resolved away, which is exactly what
// forces a semantic-split clause when such an entry sits at the current
// top decision level.
//
// Grounded on original_source's Conflict_analysis.cpp; translated from
// its unordered_set<Literal> resolution buffer into a sparse map, the
// idiomatic substitute given Go's lack of a literal hash set.
type Analyzer struct{}

// NewAnalyzer returns an Analyzer. Analyzer carries no state between
// calls to Analyze.
func NewAnalyzer() *Analyzer { return &Analyzer{} }

// Analyze derives a learned clause from conflict using the Boolean model
// on trail. onResolve is called once per intermediate resolvent, in
// resolution order, so dispatcher-registered observers can react (e.g.
// variable-activity bumping). It returns the learned clause's literals
// (possibly empty, meaning UNSAT was derived regardless of decision
// level) and the backtrack level, per spec.md §4.4's UIP / semantic-split
// distinction.
func (a *Analyzer) Analyze(db *Database, trail *Trail, model *Model[bool], conflict *Clause, onResolve func(*Clause)) ([]Literal, int) {
	lits := make(map[int32]Literal, conflict.Len())
	topLevel := 0
	for _, l := range conflict.Lits() {
		lits[l.Ord()] = l
		if lvl, ok := trail.DecisionLevelOf(l.Var()); ok && lvl > topLevel {
			topLevel = lvl
		}
	}

	numTop := 0
	for ord := range lits {
		if lvl, ok := trail.DecisionLevelOf(Variable{Kind: KindBool, Ord: ord}); ok && lvl == topLevel {
			numTop++
		}
	}

	canBacktrack := func() bool { return numTop == 1 }

	assigned := trail.Assigned(topLevel)
	for i := len(assigned) - 1; i >= 0 && !canBacktrack(); i-- {
		e := assigned[i]
		if e.Var.Kind != KindBool || !e.HasReason {
			continue
		}
		// The literal falsified by this propagation is the complement of
		// the value the variable was actually assigned.
		falsified := NewLiteral(e.Var.Ord, model.Value(e.Var.Ord))
		if cur, ok := lits[e.Var.Ord]; !ok || cur != falsified {
			continue
		}
		reason := db.Clause(e.Reason)
		onResolve(reason)
		a.resolve(trail, reason, falsified, lits, &numTop, topLevel)
	}

	return a.finish(trail, lits, topLevel, numTop)
}

// resolve folds other's literals into lits, removing the literal being
// eliminated (elim) and keeping numTop in sync.
func (a *Analyzer) resolve(trail *Trail, other *Clause, elim Literal, lits map[int32]Literal, numTop *int, topLevel int) {
	target := elim.Negate()
	for _, l := range other.Lits() {
		if l == target {
			continue
		}
		if _, exists := lits[l.Ord()]; exists {
			continue
		}
		lits[l.Ord()] = l
		if lvl, ok := trail.DecisionLevelOf(l.Var()); ok && lvl == topLevel {
			*numTop++
		}
	}
	delete(lits, elim.Ord())
	*numTop--
}

// finish orders the resolved literal set by decision level (highest
// first, ties by ordinal) and derives the backtrack level.
func (a *Analyzer) finish(trail *Trail, lits map[int32]Literal, topLevel, numTop int) ([]Literal, int) {
	out := make([]Literal, 0, len(lits))
	for _, l := range lits {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool {
		li, _ := trail.DecisionLevelOf(out[i].Var())
		lj, _ := trail.DecisionLevelOf(out[j].Var())
		if li != lj {
			return li > lj
		}
		return out[i].Ord() < out[j].Ord()
	})

	if len(out) == 0 {
		return out, -1
	}
	if numTop >= 2 { // semantic split
		return out, topLevel - 1
	}
	if len(out) <= 1 {
		return out, 0
	}
	lvl, _ := trail.DecisionLevelOf(out[1].Var())
	return out, lvl
}

// IsSemanticSplit reports whether lits (a learned clause's literals) has
// its first two literals at the same decision level — the predicate
// spec.md §4.4 uses to distinguish split clauses from UIP clauses after
// the fact.
func IsSemanticSplit(trail *Trail, lits []Literal) bool {
	if len(lits) < 2 {
		return false
	}
	l0, ok0 := trail.DecisionLevelOf(lits[0].Var())
	l1, ok1 := trail.DecisionLevelOf(lits[1].Var())
	return ok0 && ok1 && l0 == l1
}
