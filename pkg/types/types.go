// Package types implements the Type model (C1) and the scoped symbol
// environment (C2). Types are small immutable values; per the donor's own
// style (plain structs compared structurally, e.g. ast.BxType in the donor
// tree) they are constructed by value rather than interned through a type
// pool — spec.md §9 explicitly allows either.
package types

import "fmt"

// Kind discriminates the five cases of Type.
type Kind int

const (
	KInt Kind = iota
	KVoid
	KBool
	KPointer
	KArray
)

// Type is the sum type of §3.1: Int, Void, Bool, Pointer(inner), or
// Array(base, len). Inner/Base are only meaningful for the matching Kind.
type Type struct {
	Kind  Kind
	Inner *Type // Pointer
	Base  *Type // Array
	Len   int   // Array
}

var (
	Int  = &Type{Kind: KInt}
	Void = &Type{Kind: KVoid}
	Bool = &Type{Kind: KBool}
)

// NewPointer constructs Pointer(inner).
func NewPointer(inner *Type) *Type {
	return &Type{Kind: KPointer, Inner: inner}
}

// NewArray constructs Array(base, len). len must be >= 0 per §3.1.
func NewArray(base *Type, length int) *Type {
	if length < 0 {
		panic("types: array length must be non-negative")
	}
	return &Type{Kind: KArray, Base: base, Len: length}
}

// Equal implements the structural equality required by §3.1.
func (t *Type) Equal(other *Type) bool {
	if t == nil || other == nil {
		return t == other
	}
	if t.Kind != other.Kind {
		return false
	}
	switch t.Kind {
	case KPointer:
		return t.Inner.Equal(other.Inner)
	case KArray:
		return t.Len == other.Len && t.Base.Equal(other.Base)
	default:
		return true
	}
}

// String renders the textual form fixed by §3.1 / §6.1's `type` grammar.
func (t *Type) String() string {
	switch t.Kind {
	case KInt:
		return "i32"
	case KVoid:
		return "void"
	case KBool:
		return "bool"
	case KPointer:
		return "*" + t.Inner.String()
	case KArray:
		return fmt.Sprintf("[%s, %d]", t.Base.String(), t.Len)
	default:
		return "<invalid type>"
	}
}

// WordSize is the size in bytes of a scalar (Int, Bool, Pointer) on the
// target: 4 bytes, matching RV32's word size and §4.3's Alloc sizing rule.
const WordSize = 4

// Sizeof recursively computes the byte size of a type per §4.3's frame
// sizing rule ("Int/Pointer = 4, Array = len×sizeof(base)").
func Sizeof(t *Type) int {
	switch t.Kind {
	case KArray:
		return t.Len * Sizeof(t.Base)
	case KVoid:
		return 0
	default:
		return WordSize
	}
}

// Elem returns the type one level "inside" t: the pointee of a Pointer, or
// the element type of an Array. Used while walking indices in Assign/LVal
// (§4.2.2) and GetElemPtr/GetPtr (§4.3).
func (t *Type) Elem() *Type {
	switch t.Kind {
	case KPointer:
		return t.Inner
	case KArray:
		return t.Base
	default:
		return nil
	}
}

// IsInt reports whether t is the scalar Int type (as opposed to Bool, which
// is a distinct nominal type even though both are represented as i32 words
// at the RISC-V level).
func (t *Type) IsInt() bool { return t.Kind == KInt }
