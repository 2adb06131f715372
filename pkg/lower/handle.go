package lower

import (
	"strconv"

	"github.com/anfsity/Compile-Principle/pkg/kir"
)

// Handle is the ValueHandle sum type spec.md §9 calls for: a lowered
// expression is either Unit (statements/declarations produce this), a
// compile-time Literal, or a Name bound to an already-emitted KIR value.
// Using a dedicated type — rather than the donor's own "" vs "%n" vs
// literal-text string convention — removes the ambiguity the spec calls
// out between an empty register name and no value at all.
type Handle struct {
	kind handleKind
	lit  int32
	val  *kir.Value
}

type handleKind int

const (
	hUnit handleKind = iota
	hLiteral
	hValue
)

// Unit is the handle returned by statements and declarations.
func Unit() Handle { return Handle{kind: hUnit} }

// Literal wraps a compile-time constant.
func Literal(n int32) Handle { return Handle{kind: hLiteral, lit: n} }

// FromValue wraps a reference to an already-emitted (block-appended) value.
func FromValue(v *kir.Value) Handle { return Handle{kind: hValue, val: v} }

// Text renders the handle the way it appears as a KIR instruction operand.
func (h Handle) Text() string {
	switch h.kind {
	case hLiteral:
		return strconv.Itoa(int(h.lit))
	case hValue:
		return h.val.Name
	default:
		return ""
	}
}

// AsValue returns the *kir.Value this handle refers to for tree linking —
// synthesizing an inline Integer node for literal handles, since constants
// are never separately appended to a block's instruction list.
func (h Handle) AsValue() *kir.Value {
	switch h.kind {
	case hLiteral:
		return kir.NewInteger(h.lit)
	case hValue:
		return h.val
	default:
		return nil
	}
}

// IsUnit reports whether this handle carries no value.
func (h Handle) IsUnit() bool { return h.kind == hUnit }
