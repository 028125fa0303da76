package core

import "fmt"

// Clause is a non-empty ordered sequence of literals. Positions 0 and 1
// are the watched positions: after conflict analysis, position 0 holds
// the asserting literal and position 1 holds the literal at the
// second-highest decision level (spec.md §3).
type Clause struct {
	lits []Literal
}

// NewClause returns a Clause over lits. lits must be non-empty; ownership
// of the slice passes to the Clause.
func NewClause(lits []Literal) *Clause {
	if len(lits) == 0 {
		panic("core: clause must have at least one literal")
	}
	return &Clause{lits: lits}
}

// Len returns the number of literals in c.
func (c *Clause) Len() int { return len(c.lits) }

// Lit returns the i-th literal.
func (c *Clause) Lit(i int) Literal { return c.lits[i] }

// Lits returns the clause's literals. Callers must not mutate the
// returned slice.
func (c *Clause) Lits() []Literal { return c.lits }

// set overwrites the i-th literal in place.
func (c *Clause) set(i int, l Literal) { c.lits[i] = l }

// Swap exchanges the i-th and j-th literals, used by watched-literal
// theories to relocate a watch to a different position.
func (c *Clause) Swap(i, j int) { c.lits[i], c.lits[j] = c.lits[j], c.lits[i] }

// shrink truncates the clause to the first n literals.
func (c *Clause) shrink(n int) { c.lits = c.lits[:n] }

func (c *Clause) String() string {
	return fmt.Sprintf("%v", c.lits)
}

// ClauseRef is a stable handle into a Database's input or learned
// partition. References never become invalid while the Database they
// came from is alive (see Database for the arena discipline that
// guarantees this).
type ClauseRef struct {
	learned bool
	idx     int
}

// IsLearned reports whether the referenced clause lives in the learned
// partition.
func (r ClauseRef) IsLearned() bool { return r.learned }
