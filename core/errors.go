package core

import "fmt"

// assertf panics with a formatted message if cond is false. Precondition
// violations (decide or propagate on an assigned variable, backtrack above
// the current level, a variable of an unregistered kind, ...) are programmer errors
// with no recovery path, per spec.md §7 — they are fatal assertions, not
// returned errors, matching gophersat's convention of panicking directly
// on invariant violations (e.g. solver.Model()).
func assertf(cond bool, format string, args ...interface{}) {
	if !cond {
		panic(fmt.Sprintf(format, args...))
	}
}
