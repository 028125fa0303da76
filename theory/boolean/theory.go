// Package boolean implements pure-Boolean unit propagation as a
// core.Theory plugin: a two-watched-literal scheme over the clause
// database, grounded on gophersat's solver/watcher.go (the wlist/wlistBin
// data shape) and original_source's Bool_theory.cpp (the on_init
// watch-list bootstrap and the propagate worklist split). Every solver
// built with this repo's core must register one: it is the only theory
// that defines the Boolean model core.ModelFor[bool] relies on.
package boolean

import "github.com/crillab/yaga/core"

// Theory is a watched-literal Boolean propagator. Zero value is not
// usable; construct with New.
type Theory struct {
	core.EmbedTheory

	model *core.Model[bool]

	// watch[lit.Index()] holds every clause ref watching lit: the clause
	// is reexamined whenever lit becomes false.
	watch [][]core.ClauseRef

	// units holds unit clauses (no second literal to watch, so nothing
	// ever falsifies them from the outside): checked directly on every
	// Propagate call instead of through the watch table.
	units []core.ClauseRef

	// processed is how many trail entries (across every kind) this theory
	// has already scanned for newly falsified literals.
	processed int
}

// New returns an unconfigured Theory. Register it with
// core.Solver.RegisterTheory before calling Check.
func New() *Theory {
	return &Theory{}
}

// OnInit registers the Boolean model with the trail and installs watches
// for every clause already in the database's input partition.
func (t *Theory) OnInit(db *core.Database, trail *core.Trail) {
	t.model = core.AddModel[bool](trail, core.KindBool)
	for _, c := range db.Input() {
		t.watchClause(db, c)
	}
}

// OnVariableResize grows the model and the watch-list tables for
// core.KindBool.
func (t *Theory) OnVariableResize(kind core.Kind, n int) {
	if kind != core.KindBool {
		return
	}
	t.model.Resize(n)
	need := 2 * n
	if need <= len(t.watch) {
		return
	}
	grown := make([][]core.ClauseRef, need)
	copy(grown, t.watch)
	t.watch = grown
}

// Decide appends a Decide entry for v, defaulting its value to true.
// Ignores requests for variables of any other kind.
func (t *Theory) Decide(db *core.Database, trail *core.Trail, v core.Variable) {
	if v.Kind != core.KindBool {
		return
	}
	trail.Decide(v)
	t.model.SetValue(v.Ord, true)
}

// OnLearnedClause installs watches for a newly learned clause.
func (t *Theory) OnLearnedClause(db *core.Database, trail *core.Trail, c *core.Clause) {
	t.watchClause(db, c)
}

// OnBeforeBacktrack resets the propagation cursor to the trail size the
// truncation to level will leave behind. Propagate only clamps processed
// lazily against the trail's current size, which is too late once
// backtrackWith truncates and then immediately re-propagates an asserting
// literal in the same call: by the time Propagate runs again the trail has
// already regrown, so a lazy clamp would wrongly treat the new entry as
// already seen. trail is not yet truncated at this point, but every level
// at or below level is unaffected by the coming truncation, so summing
// their lengths gives the exact post-truncation size.
func (t *Theory) OnBeforeBacktrack(db *core.Database, trail *core.Trail, level int) {
	size := 0
	for l := 0; l <= level; l++ {
		size += len(trail.Assigned(l))
	}
	if t.processed > size {
		t.processed = size
	}
}

// watchClause registers c under the literals at position 0 and 1: watch[l]
// lists every clause that must be reexamined the moment l becomes false.
// A unit clause has no second literal to trigger on, so it is tracked in
// units instead and checked directly every Propagate call.
func (t *Theory) watchClause(db *core.Database, c *core.Clause) {
	ref := t.refOf(db, c)
	if c.Len() == 1 {
		t.units = append(t.units, ref)
		return
	}
	t.addWatch(c.Lit(0), ref)
	t.addWatch(c.Lit(1), ref)
}

// refOf finds c's stable reference. Called only at watch-installation
// time (on_init and on_learned_clause), never inside the propagation hot
// loop.
func (t *Theory) refOf(db *core.Database, c *core.Clause) core.ClauseRef {
	ref, ok := db.RefOf(c)
	if !ok {
		panic("boolean: watchClause given a clause not present in the database")
	}
	return ref
}

func (t *Theory) addWatch(l core.Literal, ref core.ClauseRef) {
	idx := l.Index()
	for int(idx) >= len(t.watch) {
		t.watch = append(t.watch, nil)
	}
	t.watch[idx] = append(t.watch[idx], ref)
}

// Propagate scans every trail entry not yet processed, and for each newly
// assigned Boolean variable reexamines the clauses watching the literal
// that just became false, finding a replacement watch, propagating a unit
// literal, or reporting a conflict (original_source's Bool_theory::
// propagate worklist, gophersat's watcher.go data shape).
func (t *Theory) Propagate(db *core.Database, trail *core.Trail) []*core.Clause {
	if t.processed > trail.Size() {
		t.processed = trail.Size()
	}

	var conflicts []*core.Clause
	for _, ref := range t.units {
		c := db.Clause(ref)
		lit := c.Lit(0)
		if t.model.IsDefined(lit.Ord()) {
			if t.isFalse(lit) {
				conflicts = append(conflicts, c)
			}
			continue
		}
		trail.Propagate(lit.Var(), ref, true, 0)
		t.model.SetValue(lit.Var().Ord, !lit.IsNegation())
	}
	if len(conflicts) > 0 {
		return conflicts
	}

	for {
		entries := trail.EntriesFrom(t.processed)
		if len(entries) == 0 {
			break
		}
		progressed := false
		for _, e := range entries {
			t.processed++
			if e.Var.Kind != core.KindBool {
				continue
			}
			falseLit := core.NewLiteral(e.Var.Ord, t.model.Value(e.Var.Ord))
			if c := t.propagateLiteral(db, trail, falseLit); c != nil {
				conflicts = append(conflicts, c)
			}
			progressed = true
		}
		if len(conflicts) > 0 {
			return conflicts
		}
		if !progressed {
			break
		}
	}
	return conflicts
}

// propagateLiteral reexamines every clause watching falseLit (now false
// on the trail), relocating watches, propagating units, or returning a
// conflict clause.
func (t *Theory) propagateLiteral(db *core.Database, trail *core.Trail, falseLit core.Literal) *core.Clause {
	idx := falseLit.Index()
	if int(idx) >= len(t.watch) {
		return nil
	}
	watchers := t.watch[idx]
	kept := watchers[:0]
	var conflict *core.Clause
	for i := 0; i < len(watchers); i++ {
		ref := watchers[i]
		c := db.Clause(ref)
		if t.retainOrPropagate(trail, c, ref, falseLit) {
			kept = append(kept, ref)
			if conflict == nil && t.isConflicting(trail, c) {
				conflict = c
			}
		}
	}
	t.watch[idx] = kept
	return conflict
}

// retainOrPropagate reorganizes c's watches after falseLit (== c.Lit at
// the watched position) was falsified. Returns true if c should remain
// watching falseLit (no replacement found, including the
// unit-propagation and conflict cases); false if c was relocated to
// watch a different literal, in which case the caller drops it from
// falseLit's watch list.
func (t *Theory) retainOrPropagate(trail *core.Trail, c *core.Clause, ref core.ClauseRef, falseLit core.Literal) bool {
	watchedIdx := 0
	if c.Len() > 1 && c.Lit(1) == falseLit {
		watchedIdx = 1
	}
	other := 1 - watchedIdx
	if c.Len() == 1 {
		other = 0
	}

	if c.Len() > 1 && t.isTrue(c.Lit(other)) {
		return true
	}

	for i := 2; i < c.Len(); i++ {
		cand := c.Lit(i)
		if !t.isFalse(cand) {
			c.Swap(watchedIdx, i)
			t.addWatch(c.Lit(watchedIdx), ref)
			return false
		}
	}

	// No replacement: c.Lit(other) is the sole remaining candidate.
	lead := c.Lit(other)
	if c.Len() > 1 && t.isFalse(lead) {
		return true // conflict, reported by the caller
	}
	if !trail.Defined(lead.Var()) {
		trail.Propagate(lead.Var(), ref, true, trail.DecisionLevel())
		t.model.SetValue(lead.Var().Ord, !lead.IsNegation())
	}
	return true
}

// isConflicting reports whether every literal of c is currently false.
func (t *Theory) isConflicting(trail *core.Trail, c *core.Clause) bool {
	for _, l := range c.Lits() {
		if !trail.Defined(l.Var()) || !t.isFalse(l) {
			return false
		}
	}
	return true
}

func (t *Theory) isTrue(l core.Literal) bool {
	return t.model.IsDefined(l.Ord()) && t.model.Value(l.Ord()) == !l.IsNegation()
}

func (t *Theory) isFalse(l core.Literal) bool {
	return t.model.IsDefined(l.Ord()) && t.model.Value(l.Ord()) == l.IsNegation()
}
