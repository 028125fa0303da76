package core

// RestartPolicy decides when the search driver should restart rather than
// backtrack after learning a clause (spec.md §4.7). Concrete policies
// live in package policy; RestartPolicy is an external collaborator
// interface, not a core concern.
type RestartPolicy interface {
	// ShouldRestart is queried after each conflict-learn cycle.
	ShouldRestart() bool
	// OnLearnedClause feeds the policy's counters.
	OnLearnedClause(db *Database, trail *Trail, c *Clause)
	// OnRestart feeds the policy's counters.
	OnRestart(db *Database, trail *Trail)
}
