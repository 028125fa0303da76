// Package policy collects concrete core.RestartPolicy and
// core.VariableOrder implementations. core only depends on the
// interfaces (spec.md §4.7, §4.8); a Solver is free to use any of these,
// a caller-supplied one, or none at all.
package policy

import "github.com/crillab/yaga/core"

const lubyConstant = 512

// luby returns the i-th term of the Luby restart sequence (1, 1, 2, 1, 1,
// 2, 4, 1, ...), grounded on gophersat's solver/luby.go.
func luby(i uint) uint {
	for k := 1; k < 32; k++ {
		if i == (1<<uint(k))-1 {
			return 1 << uint(k-1)
		}
	}
	k := 1
	for {
		if (1<<uint(k-1)) <= i && i < (1<<uint(k))-1 {
			return luby(i - (1 << uint(k-1)) + 1)
		}
		k++
	}
}

// LubyRestart fires a restart every lubyConstant * luby(i) conflicts,
// counting one conflict per learned clause and advancing i once per
// restart (gophersat's solver.go restart trigger, adapted from a
// per-conflict counter to the core.RestartPolicy's per-learned-clause
// callback).
type LubyRestart struct {
	conflictsSinceRestart uint
	restartIndex          uint
}

// NewLubyRestart returns a LubyRestart policy starting at the first term
// of the sequence.
func NewLubyRestart() *LubyRestart {
	return &LubyRestart{restartIndex: 1}
}

// OnLearnedClause advances the conflict counter.
func (r *LubyRestart) OnLearnedClause(db *core.Database, trail *core.Trail, c *core.Clause) {
	r.conflictsSinceRestart++
}

// ShouldRestart reports whether enough conflicts have accumulated since
// the last restart to fire the next Luby term.
func (r *LubyRestart) ShouldRestart() bool {
	return r.conflictsSinceRestart >= lubyConstant*luby(r.restartIndex)
}

// OnRestart resets the conflict counter and advances to the next term.
func (r *LubyRestart) OnRestart(db *core.Database, trail *core.Trail) {
	r.conflictsSinceRestart = 0
	r.restartIndex++
}

// NoRestart never fires. Equivalent to a Solver built without
// WithRestartPolicy, exported so callers can select it explicitly (e.g.
// to switch between policies at runtime via a flag).
type NoRestart struct{}

func (NoRestart) ShouldRestart() bool                               { return false }
func (NoRestart) OnLearnedClause(*core.Database, *core.Trail, *core.Clause) {}
func (NoRestart) OnRestart(*core.Database, *core.Trail)             {}
