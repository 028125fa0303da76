// Package lra implements a simplified linear-rational-arithmetic theory:
// bound propagation over a single ordering per variable, with a
// bound-conflict / split rule instead of a full simplex. It exists to
// exercise the Conflict Analyzer's semantic-split path and
// core.Solver.backtrackWith with a real non-Boolean theory, not to decide
// arbitrary linear-arithmetic formulas — no Fourier-Motzkin elimination,
// no general polynomial constraints.
//
// Grounded on original_source's lra/Fraction.h (the exact-rational
// representation) and lra/Bounds.h / lra/Variable_bounds.h (the
// upper/lower-bound-per-variable idea), simplified: bounds are
// recomputed on demand from the currently assigned atoms instead of
// maintained as an incrementally updated, obsolescence-tracked stack.
package lra

import "fmt"

// Rational is an exact num/den fraction, normalized so den > 0 and
// gcd(|num|, den) == 1. Grounded on original_source's Fraction<T>.
type Rational struct {
	num, den int64
}

// FromInt returns the Rational for an integer value.
func FromInt(n int64) Rational { return Rational{num: n, den: 1} }

// NewRational returns num/den, normalized. Panics if den is zero.
func NewRational(num, den int64) Rational {
	if den == 0 {
		panic("lra: zero denominator")
	}
	if den < 0 {
		num, den = -num, -den
	}
	g := gcd(abs(num), den)
	if g == 0 {
		g = 1
	}
	return Rational{num: num / g, den: den / g}
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// Add returns r + other.
func (r Rational) Add(other Rational) Rational {
	return NewRational(r.num*other.den+other.num*r.den, r.den*other.den)
}

// Sub returns r - other.
func (r Rational) Sub(other Rational) Rational {
	return NewRational(r.num*other.den-other.num*r.den, r.den*other.den)
}

// Cmp returns -1, 0 or 1 as r is less than, equal to, or greater than
// other.
func (r Rational) Cmp(other Rational) int {
	lhs := r.num * other.den
	rhs := other.num * r.den
	switch {
	case lhs < rhs:
		return -1
	case lhs > rhs:
		return 1
	default:
		return 0
	}
}

// Equal reports whether r == other.
func (r Rational) Equal(other Rational) bool { return r.Cmp(other) == 0 }

func (r Rational) String() string {
	if r.den == 1 {
		return fmt.Sprintf("%d", r.num)
	}
	return fmt.Sprintf("%d/%d", r.num, r.den)
}
