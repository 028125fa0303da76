package core

// Minimizer removes literals from a freshly learned clause that are
// redundant given the clauses already used to derive it: a literal l is
// dropped if every clause that could have produced it is already
// subsumed by the rest of the learned clause (self-subsumption). This
// never changes the clause's asserted literal (index 0) or backtrack
// level.
//
// Grounded on original_source's Subsumption.cpp, adapted to walk reason
// clauses through Trail/Database instead of an explicit resolution
// trace, and to track which variable ordinals are in the clause with a
// map from ordinal to bool.
type Minimizer struct{}

// NewMinimizer returns a Minimizer. Minimizer carries no state between
// calls to Minimize.
func NewMinimizer() *Minimizer { return &Minimizer{} }

// Minimize returns a copy of lits with redundant literals removed; a
// clause of at most two literals is returned as is, without copying.
// Positions 0 and 1 are reserved watches and are never dropped. lits must
// be the literals of a just-analyzed learned clause, ordered as
// Analyzer.Analyze returns them.
func (m *Minimizer) Minimize(db *Database, trail *Trail, lits []Literal) []Literal {
	if len(lits) <= 2 {
		return lits
	}

	inClause := make(map[int32]bool, len(lits))
	for _, l := range lits {
		inClause[l.Ord()] = true
	}

	out := make([]Literal, 0, len(lits))
	out = append(out, lits[0], lits[1])
	for i := 2; i < len(lits); i++ {
		if m.isRedundant(db, trail, lits[i], inClause) {
			continue
		}
		out = append(out, lits[i])
	}
	return out
}

// isRedundant reports whether l can be dropped: l is redundant iff it
// was assigned by propagation and every other literal of its reason
// clause is already implied by the clause being built (present in
// inClause, negated — a reason clause's non-asserted literals are all
// false on the trail).
func (m *Minimizer) isRedundant(db *Database, trail *Trail, l Literal, inClause map[int32]bool) bool {
	ref, ok := trail.Reason(l.Var())
	if !ok {
		return false
	}
	reason := db.Clause(ref)
	for _, rl := range reason.Lits() {
		if rl.Ord() == l.Ord() {
			continue
		}
		if !inClause[rl.Ord()] {
			if !m.isRedundant(db, trail, rl.Negate(), inClause) {
				return false
			}
		}
	}
	return true
}
