package core

// Dispatcher maintains an ordered list of theory plugins and multiplexes
// events to all of them, aggregating their propagation results (spec.md
// §4.3). Order of invocation within a round is fixed by registration
// order and is part of the dispatcher's configuration, mirroring
// original_source's Event_dispatcher.h (a flat listener vector fanned out
// to in order) collapsed with Theory_combination.cpp's conflict
// aggregation.
type Dispatcher struct {
	theories []Theory
}

// NewDispatcher returns an empty Dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// Register appends th to the ordered list of theories invoked each round.
func (d *Dispatcher) Register(th Theory) {
	d.theories = append(d.theories, th)
}

// Theories returns the registered theories in invocation order.
func (d *Dispatcher) Theories() []Theory { return d.theories }

// OnInit calls OnInit on every registered theory, in order.
func (d *Dispatcher) OnInit(db *Database, trail *Trail) {
	for _, th := range d.theories {
		th.OnInit(db, trail)
	}
}

// OnVariableResize calls OnVariableResize on every registered theory.
func (d *Dispatcher) OnVariableResize(k Kind, n int) {
	for _, th := range d.theories {
		th.OnVariableResize(k, n)
	}
}

// Propagate asks every registered theory, in order, to propagate over the
// current trail and database, and aggregates any conflicts they report.
// Theories still run even after an earlier theory reports a conflict,
// since later theories may themselves be asked to resolve during
// analysis; the driver chooses among the aggregated conflicts.
func (d *Dispatcher) Propagate(db *Database, trail *Trail) []*Clause {
	var conflicts []*Clause
	for _, th := range d.theories {
		if cs := th.Propagate(db, trail); len(cs) > 0 {
			conflicts = append(conflicts, cs...)
		}
	}
	return conflicts
}

// Decide asks the theory owning v's kind to choose its value. Every
// theory is invoked; a theory that does not own v's kind must ignore the
// request (Theory.Decide's contract).
func (d *Dispatcher) Decide(db *Database, trail *Trail, v Variable) {
	for _, th := range d.theories {
		th.Decide(db, trail, v)
	}
}

// OnLearnedClause notifies every registered theory of a newly learned
// clause.
func (d *Dispatcher) OnLearnedClause(db *Database, trail *Trail, c *Clause) {
	for _, th := range d.theories {
		th.OnLearnedClause(db, trail, c)
	}
}

// OnConflictResolved notifies every registered theory of an intermediate
// resolvent produced during conflict analysis.
func (d *Dispatcher) OnConflictResolved(db *Database, trail *Trail, c *Clause) {
	for _, th := range d.theories {
		th.OnConflictResolved(db, trail, c)
	}
}

// OnBeforeBacktrack notifies every registered theory before the trail is
// truncated to level.
func (d *Dispatcher) OnBeforeBacktrack(db *Database, trail *Trail, level int) {
	for _, th := range d.theories {
		th.OnBeforeBacktrack(db, trail, level)
	}
}

// OnRestart notifies every registered theory after the trail has been
// fully truncated.
func (d *Dispatcher) OnRestart(db *Database, trail *Trail) {
	for _, th := range d.theories {
		th.OnRestart(db, trail)
	}
}
