// Package kir implements the KIR data model (C5): Program, Function,
// BasicBlock and the tagged Value node of §3.3. This is pure data — no
// text rendering and no builder state live here, following the donor's
// own separation between ir.go's data shapes (pkg/ir) and the stateful
// codegen.Context that walks them. pkg/lower constructs this tree directly
// alongside the textual form it writes through Builder, so pkg/riscv never
// has to reparse text to recover it (design note §9: skip the round-trip).
package kir

import "github.com/anfsity/Compile-Principle/pkg/types"

// Kind discriminates the tagged cases of Value listed in §3.3.
type Kind int

const (
	KReturn Kind = iota
	KJump
	KBranch
	KAlloc
	KGlobalAlloc
	KLoad
	KStore
	KGetElemPtr
	KGetPtr
	KBinary
	KCall
	KInteger
	KZeroInit
	KAggregate
	KFuncArgRef
)

// BinOp enumerates §3.3's Binary.op set.
type BinOp int

const (
	OpAdd BinOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpAnd
	OpOr
	OpXor
	OpShl
	OpShr
	OpSar
	OpLt
	OpGt
	OpLe
	OpGe
	OpEq
	OpNeq
)

// Mnemonic renders op as the opcode spelling used by §6.1's grammar (note
// neq spells as "ne" in KIR text, matching real Koopa IR).
func (op BinOp) Mnemonic() string {
	switch op {
	case OpAdd:
		return "add"
	case OpSub:
		return "sub"
	case OpMul:
		return "mul"
	case OpDiv:
		return "div"
	case OpMod:
		return "mod"
	case OpAnd:
		return "and"
	case OpOr:
		return "or"
	case OpXor:
		return "xor"
	case OpShl:
		return "shl"
	case OpShr:
		return "shr"
	case OpSar:
		return "sar"
	case OpLt:
		return "lt"
	case OpGt:
		return "gt"
	case OpLe:
		return "le"
	case OpGe:
		return "ge"
	case OpEq:
		return "eq"
	case OpNeq:
		return "ne"
	default:
		return "?"
	}
}

// Value is the single tagged node type of §3.3: every KIR value carries a
// Kind, a Type, an optional identity Name (the "%n"/"@x_n" it is referenced
// by — empty for values that are never referenced by name, such as
// constants folded inline and void-returning instructions), and a Kind-
// specific payload in Data. Following pkg/ast.Node's own Kind+Data shape
// (the donor's own tagged-variant idiom, picked up again here rather than
// introducing a parallel interface hierarchy per spec.md §9's guidance).
type Value struct {
	Kind Kind
	Typ  *types.Type
	Name string
	Data interface{}
}

// --- Kind-specific payloads ---

type ReturnData struct{ Value *Value } // nil for `ret` with no operand
type JumpData struct{ Target *BasicBlock }
type BranchData struct {
	Cond             *Value
	TrueBB, FalseBB  *BasicBlock
}
type GlobalAllocData struct{ Init *Value } // Integer, ZeroInit, or Aggregate
type LoadData struct{ Src *Value }
type StoreData struct {
	Value *Value
	Dest  *Value
}
type GetElemPtrData struct {
	Src   *Value
	Index *Value
}
type GetPtrData struct {
	Src   *Value
	Index *Value
}
type BinaryData struct {
	Op       BinOp
	Lhs, Rhs *Value
}
type CallData struct {
	Callee string // bare function name, matching Function.Name
	Args   []*Value
}
type IntegerData struct{ Value int32 }
type AggregateData struct{ Elems []*Value }
type FuncArgRefData struct{ Index int }

// NewInteger builds an inline constant value, never appended to a block's
// instruction list — it is referenced as an operand only.
func NewInteger(v int32) *Value {
	return &Value{Kind: KInteger, Typ: types.Int, Data: IntegerData{Value: v}}
}

// NewZeroInit builds the `zeroinit` constant of type t.
func NewZeroInit(t *types.Type) *Value {
	return &Value{Kind: KZeroInit, Typ: t}
}

// NewAggregate builds a nested brace-initializer constant of type t.
func NewAggregate(t *types.Type, elems []*Value) *Value {
	return &Value{Kind: KAggregate, Typ: t, Data: AggregateData{Elems: elems}}
}

// NewFuncArgRef builds the value representing formal parameter index idx,
// named per the KIR parameter-list spelling ("@ident").
func NewFuncArgRef(idx int, t *types.Type, name string) *Value {
	return &Value{Kind: KFuncArgRef, Typ: t, Name: name, Data: FuncArgRefData{Index: idx}}
}

// BasicBlock is a straight-line instruction sequence with one entry label,
// per §3.3; it must end in exactly one terminator value once lowering of
// its containing function has finished.
type BasicBlock struct {
	Label  string
	Values []*Value
}

// Function models §3.3's Function: an empty Blocks slice means
// declaration-only (no body was lowered, as for the §4.1 runtime prelude).
type Function struct {
	Name    string
	Params  []*Value // each KFuncArgRef
	RetType *types.Type
	Blocks  []*BasicBlock
}

// Program is the root of the KIR tree: an ordered sequence of global values
// (each KGlobalAlloc) and an ordered sequence of functions.
type Program struct {
	Globals []*Value
	Funcs   []*Function
}
