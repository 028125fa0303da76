package core

import "fmt"

// Kind tags the theory a Variable belongs to. Variables are dense small
// integers within their Kind, so per-kind arrays (models, activity
// tables, ...) can index directly by ordinal.
type Kind uint8

const (
	// KindBool is the Boolean variable kind. Every solver has it; it is
	// the only kind Literal can carry a polarity for.
	KindBool Kind = iota
	// KindRational is the linear-rational-arithmetic variable kind.
	KindRational
	// KindUninterpreted is reserved for an uninterpreted-functions theory.
	// No plugin in this repo currently allocates variables of this kind;
	// it exists so Kind is not hardwired to two theories.
	KindUninterpreted
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindRational:
		return "rational"
	case KindUninterpreted:
		return "uf"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Variable is a tagged identifier: a Kind plus an ordinal unique within
// that kind.
type Variable struct {
	Kind Kind
	Ord  int32
}

func (v Variable) String() string {
	return fmt.Sprintf("%s(%d)", v.Kind, v.Ord)
}

// Literal is a Boolean Variable paired with a polarity bit. Only
// variables of KindBool are ever wrapped in a Literal; non-Boolean
// decisions live in their kind's Model instead.
type Literal struct {
	v        int32 // Boolean variable ordinal
	negation bool
}

// NewLiteral returns the literal for Boolean variable ordinal ord, negated
// iff neg is true.
func NewLiteral(ord int32, neg bool) Literal {
	return Literal{v: ord, negation: neg}
}

// Var returns the Boolean Variable this literal refers to.
func (l Literal) Var() Variable {
	return Variable{Kind: KindBool, Ord: l.v}
}

// Ord returns the Boolean variable ordinal this literal refers to.
func (l Literal) Ord() int32 {
	return l.v
}

// IsNegation reports whether l is the negative literal for its variable.
func (l Literal) IsNegation() bool {
	return l.negation
}

// Negate returns the complementary literal.
func (l Literal) Negate() Literal {
	return Literal{v: l.v, negation: !l.negation}
}

func (l Literal) String() string {
	if l.negation {
		return fmt.Sprintf("¬b%d", l.v)
	}
	return fmt.Sprintf("b%d", l.v)
}

// index returns a dense, non-negative index usable to address per-literal
// slices (e.g. watch lists): 2*ord for the positive literal, 2*ord+1 for
// the negative one. Mirrors gophersat's Lit packing (solver/types.go).
func (l Literal) index() int32 {
	if l.negation {
		return 2*l.v + 1
	}
	return 2 * l.v
}

// Index exposes the dense packing used internally by watch-list based
// theories (see theory/boolean) so they can size their own tables.
func (l Literal) Index() int32 { return l.index() }
