package core

// Source distinguishes why a TrailEntry's variable was assigned.
type Source uint8

const (
	// SourceDecision marks a variable chosen by decide(); it opens a new
	// decision level and has no reason clause.
	SourceDecision Source = iota
	// SourcePropagation marks a variable forced by a theory, either with a
	// reason clause (Boolean unit propagation) or without one
	// (theory-internal propagation, e.g. bound deduction in an LRA theory).
	SourcePropagation
)

// TrailEntry is one (variable, source, decision-level) triple, appended
// to the Trail in assignment order (spec.md §3).
type TrailEntry struct {
	Var    Variable
	Source Source
	// Reason is the reason clause for a SourcePropagation entry, if any.
	// HasReason is false for decisions and for theory-internal
	// propagations that carry no Boolean reason clause.
	Reason    ClauseRef
	HasReason bool
	Level     int
}

const unassignedLevel = -1

// kindState holds the per-kind bookkeeping the Trail needs beyond the
// type-erased Model itself: the reverse index from ordinal to decision
// level and reason clause.
type kindState struct {
	model   modelBase
	level   []int32
	reason  []ClauseRef
	hasRsn  []bool
}

func (ks *kindState) resize(n int) {
	if n <= len(ks.level) {
		return
	}
	ks.model.Resize(n)

	grownLevel := make([]int32, n)
	for i := range grownLevel {
		grownLevel[i] = unassignedLevel
	}
	copy(grownLevel, ks.level)
	ks.level = grownLevel

	grownReason := make([]ClauseRef, n)
	copy(grownReason, ks.reason)
	ks.reason = grownReason

	grownHasRsn := make([]bool, n)
	copy(grownHasRsn, ks.hasRsn)
	ks.hasRsn = grownHasRsn
}

// Trail is the ordered assignment stack shared by the search driver and
// every registered theory. It owns the per-kind Models and the reverse
// index from Variable to decision level / reason clause (spec.md §3).
type Trail struct {
	// assigned[level] is the list of entries appended at that level, in
	// append order. assigned[0] always exists (pre-decision level).
	assigned [][]TrailEntry
	kinds    map[Kind]*kindState
	size     int
}

// NewTrail returns an empty Trail at decision level 0.
func NewTrail() *Trail {
	return &Trail{
		assigned: [][]TrailEntry{{}},
		kinds:    make(map[Kind]*kindState),
	}
}

// AddModel registers the Model for kind k. Must be called once per kind
// before any variable of that kind is resized or assigned.
func AddModel[T any](t *Trail, k Kind) *Model[T] {
	m := &Model[T]{}
	t.kinds[k] = &kindState{model: m}
	return m
}

// ModelFor returns the Model registered for kind k via AddModel. Panics
// if no model was registered for k.
func ModelFor[T any](t *Trail, k Kind) *Model[T] {
	ks, ok := t.kinds[k]
	if !ok {
		panic("core: no model registered for kind " + k.String())
	}
	m, ok := ks.model.(*Model[T])
	if !ok {
		panic("core: model type mismatch for kind " + k.String())
	}
	return m
}

// Resize grows the per-kind tables for k to hold at least n variables.
func (t *Trail) Resize(k Kind, n int) {
	ks, ok := t.kinds[k]
	assertf(ok, "core: Resize on unregistered kind %s", k)
	ks.resize(n)
}

// NumVars returns how many variables of kind k the trail has room for.
func (t *Trail) NumVars(k Kind) int {
	ks, ok := t.kinds[k]
	if !ok {
		return 0
	}
	return ks.model.NumVars()
}

// DecisionLevel returns the current decision level: the count of Decision
// entries on the trail (spec.md invariant 2).
func (t *Trail) DecisionLevel() int {
	return len(t.assigned) - 1
}

// Size returns the total number of trail entries.
func (t *Trail) Size() int { return t.size }

// Empty reports whether the trail has no entries at all.
func (t *Trail) Empty() bool {
	return t.size == 0
}

// Decide requires var to be undefined and appends a new entry at a freshly
// opened decision level (current+1). The caller is responsible for
// setting var's value in the appropriate Model before relying on it.
func (t *Trail) Decide(v Variable) {
	ks := t.kindStateOf(v)
	assertf(!ks.model.IsDefined(v.Ord), "core: Decide on already-assigned variable %s", v)

	level := t.DecisionLevel() + 1
	t.assigned = append(t.assigned, []TrailEntry{{Var: v, Source: SourceDecision, Level: level}})
	ks.level[v.Ord] = int32(level)
	ks.hasRsn[v.Ord] = false
	t.size++
}

// Propagate requires var to be undefined and level <= current decision
// level; it appends a propagation entry at that level. The caller is
// responsible for setting var's value in the appropriate Model. reason,
// hasReason describe the Boolean reason clause, if any (theory-internal
// propagations pass hasReason=false).
func (t *Trail) Propagate(v Variable, reason ClauseRef, hasReason bool, level int) {
	ks := t.kindStateOf(v)
	assertf(!ks.model.IsDefined(v.Ord), "core: Propagate on already-assigned variable %s", v)
	assertf(level <= t.DecisionLevel(), "core: Propagate level %d exceeds decision level %d", level, t.DecisionLevel())

	t.assigned[level] = append(t.assigned[level], TrailEntry{Var: v, Source: SourcePropagation, Reason: reason, HasReason: hasReason, Level: level})
	ks.level[v.Ord] = int32(level)
	ks.reason[v.Ord] = reason
	ks.hasRsn[v.Ord] = hasReason
	t.size++
}

// Backtrack removes every entry with level > level and clears the
// corresponding Model defined-flags; the current decision level becomes
// level.
func (t *Trail) Backtrack(level int) {
	assertf(level >= 0, "core: Backtrack to negative level %d", level)
	assertf(level <= t.DecisionLevel(), "core: Backtrack level %d exceeds decision level %d", level, t.DecisionLevel())
	if level == t.DecisionLevel() {
		return
	}
	for t.DecisionLevel() > level {
		top := t.assigned[len(t.assigned)-1]
		for _, e := range top {
			ks := t.kindStateOf(e.Var)
			ks.level[e.Var.Ord] = unassignedLevel
			ks.hasRsn[e.Var.Ord] = false
			ks.model.clearOrd(e.Var.Ord)
		}
		t.size -= len(top)
		t.assigned = t.assigned[:len(t.assigned)-1]
	}
}

// Clear backtracks all the way to level 0 (a restart).
func (t *Trail) Clear() {
	t.Backtrack(0)
}

// Assigned returns the entries appended at decision level lvl, in append
// order.
func (t *Trail) Assigned(lvl int) []TrailEntry {
	if lvl < 0 || lvl >= len(t.assigned) {
		return nil
	}
	return t.assigned[lvl]
}

// EntriesFrom returns every trail entry at or past flat position mark (a
// prior Size() snapshot), across every decision level, in append order.
// Theories that incrementally scan the trail for newly assigned variables
// (e.g. theory/boolean's watched-literal propagation) use this instead of
// rescanning from scratch each round; mark should be clamped to Size()
// first if it may come from before a backtrack.
func (t *Trail) EntriesFrom(mark int) []TrailEntry {
	if mark < 0 {
		mark = 0
	}
	out := make([]TrailEntry, 0, t.size-mark)
	seen := 0
	for _, lvl := range t.assigned {
		if seen+len(lvl) <= mark {
			seen += len(lvl)
			continue
		}
		start := 0
		if mark > seen {
			start = mark - seen
		}
		out = append(out, lvl[start:]...)
		seen += len(lvl)
	}
	return out
}

// DecisionLevelOf returns the decision level of v and whether v is
// assigned at all.
func (t *Trail) DecisionLevelOf(v Variable) (level int, ok bool) {
	ks := t.kindStateOf(v)
	lvl := ks.level[v.Ord]
	if lvl == unassignedLevel {
		return 0, false
	}
	return int(lvl), true
}

// Reason returns the reason clause ref for v and whether one exists. A
// false result means either v is unassigned, v was a decision, or v was
// propagated without a Boolean reason clause.
func (t *Trail) Reason(v Variable) (ref ClauseRef, ok bool) {
	ks := t.kindStateOf(v)
	if ks.level[v.Ord] == unassignedLevel {
		return ClauseRef{}, false
	}
	return ks.reason[v.Ord], ks.hasRsn[v.Ord]
}

// Defined reports whether v currently has a value.
func (t *Trail) Defined(v Variable) bool {
	ks := t.kindStateOf(v)
	return ks.level[v.Ord] != unassignedLevel
}

func (t *Trail) kindStateOf(v Variable) *kindState {
	ks, ok := t.kinds[v.Kind]
	assertf(ok, "core: variable of unregistered kind %s", v.Kind)
	return ks
}
