package core

// Database owns the input and learned clause partitions and vends stable
// ClauseRef handles into them. Both partitions are backed by an
// append-only arena: since clauses are appended but never reallocated out
// from under an existing index, a ClauseRef stays valid for the lifetime
// of the Database (Design Notes §9 — opaque arena indices instead of raw
// pointers).
type Database struct {
	input   []*Clause
	learned []*Clause
}

// NewDatabase returns an empty Database.
func NewDatabase() *Database {
	return &Database{}
}

// Assert adds c to the input partition and returns a stable reference to
// it.
func (db *Database) Assert(c *Clause) ClauseRef {
	db.input = append(db.input, c)
	return ClauseRef{learned: false, idx: len(db.input) - 1}
}

// LearnClause adds c to the learned partition, taking ownership, and
// returns a stable reference to it.
func (db *Database) LearnClause(c *Clause) ClauseRef {
	db.learned = append(db.learned, c)
	return ClauseRef{learned: true, idx: len(db.learned) - 1}
}

// Input returns the input (asserted) clauses, in assertion order.
func (db *Database) Input() []*Clause { return db.input }

// Learned returns the learned clauses, in learn order.
func (db *Database) Learned() []*Clause { return db.learned }

// Clause dereferences a ClauseRef.
func (db *Database) Clause(ref ClauseRef) *Clause {
	if ref.learned {
		return db.learned[ref.idx]
	}
	return db.input[ref.idx]
}

// RefOf returns the stable reference for c, scanning both partitions. Used
// by theories installing watches over clauses they did not themselves
// insert (e.g. at on_init time, over the pre-existing input partition).
func (db *Database) RefOf(c *Clause) (ClauseRef, bool) {
	for i, ic := range db.input {
		if ic == c {
			return ClauseRef{learned: false, idx: i}, true
		}
	}
	for i, lc := range db.learned {
		if lc == c {
			return ClauseRef{learned: true, idx: i}, true
		}
	}
	return ClauseRef{}, false
}

// NumLearned returns the number of clauses currently in the learned
// partition, used by the driver to compute the contiguous slice of
// references produced by a single learn() call.
func (db *Database) NumLearned() int { return len(db.learned) }

// LearnedSince returns references to every clause learned after mark
// (a prior NumLearned() snapshot), in learn order.
func (db *Database) LearnedSince(mark int) []ClauseRef {
	refs := make([]ClauseRef, 0, len(db.learned)-mark)
	for i := mark; i < len(db.learned); i++ {
		refs = append(refs, ClauseRef{learned: true, idx: i})
	}
	return refs
}
