package core

// Theory is the plugin ABI registered theories implement (spec.md §4.3).
// Every method has a zero-value-friendly default via EmbedTheory so a
// plugin need only implement the methods it cares about — the same
// "capability set" shape original_source expresses with a
// Event_listener base class and virtual overrides (Design Notes §9),
// here expressed as Go interface embedding instead of inheritance.
type Theory interface {
	// OnInit is called once before the search loop starts.
	OnInit(db *Database, trail *Trail)
	// OnVariableResize is called to resize internal tables for kind to at
	// least n, before the kind is used by the search driver.
	OnVariableResize(kind Kind, n int)
	// Propagate runs deduction, possibly appending to trail, and returns
	// any conflict clauses discovered. An empty (nil) result means no
	// conflict.
	Propagate(db *Database, trail *Trail) []*Clause
	// Decide chooses a value for var and appends a Decide entry to trail,
	// iff var belongs to this theory's kind. Implementations must ignore
	// requests for variables they do not own.
	Decide(db *Database, trail *Trail, v Variable)
	// OnLearnedClause notifies the theory of a newly learned clause, for
	// bookkeeping (e.g. watch-list installation).
	OnLearnedClause(db *Database, trail *Trail, c *Clause)
	// OnConflictResolved fires for each intermediate resolvent produced
	// during conflict analysis.
	OnConflictResolved(db *Database, trail *Trail, c *Clause)
	// OnBeforeBacktrack fires before the trail is truncated to level.
	OnBeforeBacktrack(db *Database, trail *Trail, level int)
	// OnRestart fires after the trail has been fully truncated.
	OnRestart(db *Database, trail *Trail)
}

// EmbedTheory provides no-op defaults for every Theory method. Concrete
// plugins embed it and override only what they need, e.g.:
//
//	type MyTheory struct { core.EmbedTheory }
//	func (t *MyTheory) Propagate(db *core.Database, trail *core.Trail) []*core.Clause { ... }
type EmbedTheory struct{}

func (EmbedTheory) OnInit(*Database, *Trail)                       {}
func (EmbedTheory) OnVariableResize(Kind, int)                     {}
func (EmbedTheory) Propagate(*Database, *Trail) []*Clause          { return nil }
func (EmbedTheory) Decide(*Database, *Trail, Variable)             {}
func (EmbedTheory) OnLearnedClause(*Database, *Trail, *Clause)     {}
func (EmbedTheory) OnConflictResolved(*Database, *Trail, *Clause)  {}
func (EmbedTheory) OnBeforeBacktrack(*Database, *Trail, int)       {}
func (EmbedTheory) OnRestart(*Database, *Trail)                    {}
