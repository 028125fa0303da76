/*
Package core implements the MCSat search loop: a trail of Boolean and
theory assignments, a clause database, a dispatcher that multiplexes
propagation requests to registered theory plugins, a conflict analyzer
producing UIP or semantic-split learned clauses, and the top-level search
driver tying them together.

The package deliberately does not implement any theory itself (see the
sibling theory/boolean and theory/lra packages), nor a variable-order or
restart heuristic (see package policy): those are pluggable collaborators
described by the Theory, VariableOrder and RestartPolicy interfaces.

A minimal embedding looks like:

	s, err := core.NewSolver(
		core.WithVariableOrder(policy.NewFirstUnassigned(core.KindBool)),
		core.WithRestartPolicy(policy.NoRestart{}),
	)
	s.RegisterTheory(boolean.New())
	s.SetNumVars(core.KindBool, numVars)
	ref := s.Database().Assert(core.NewClause(lits))
	status, err := s.Check(context.Background())
*/
package core
