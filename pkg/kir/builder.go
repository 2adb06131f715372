package kir

import (
	"fmt"
	"strings"

	"github.com/anfsity/Compile-Principle/pkg/types"
)

// Builder is the KIR builder (C3) of §4.1. It owns the growing KIR text
// buffer, the three per-function name counters, the block_closed flag, the
// enclosing-loop break/continue label stack, and the symbol environment
// (C2) it hosts. pkg/lower is the sole caller of every method here; the
// in-memory tree (C5) is assembled by pkg/lower itself alongside these
// text-producing calls, per spec.md §9's "skip the round-trip" guidance —
// Builder's job is exactly the contract spec.md §4.1 lists, nothing more.
type Builder struct {
	buf *strings.Builder

	regCount   int
	varCount   int
	labelCount int
	closed     bool

	loops []loopCtx

	Env *types.Env
}

type loopCtx struct {
	continueLabel string
	breakLabel    string
}

// NewBuilder constructs a Builder, emits the runtime library prelude into
// the text buffer, and registers the eight intrinsics of §6.4 as decl-only
// function symbols in the global scope.
func NewBuilder() *Builder {
	b := &Builder{buf: &strings.Builder{}, Env: types.NewEnv()}
	b.emitPrelude()
	return b
}

type preludeFn struct {
	name       string
	paramTypes []*types.Type
	ret        *types.Type
}

var preludeFns = []preludeFn{
	{"getint", nil, types.Int},
	{"getch", nil, types.Int},
	{"getarray", []*types.Type{types.NewPointer(types.Int)}, types.Int},
	{"putint", []*types.Type{types.Int}, types.Void},
	{"putch", []*types.Type{types.Int}, types.Void},
	{"putarray", []*types.Type{types.Int, types.NewPointer(types.Int)}, types.Void},
	{"starttime", nil, types.Void},
	{"stoptime", nil, types.Void},
}

func (b *Builder) emitPrelude() {
	for _, fn := range preludeFns {
		parts := make([]string, len(fn.paramTypes))
		for i, t := range fn.paramTypes {
			parts[i] = t.String()
		}
		b.buf.WriteString("decl @" + fn.name + "(" + strings.Join(parts, ", ") + ")")
		if fn.ret.Kind != types.KVoid {
			b.buf.WriteString(": " + fn.ret.String())
		}
		b.buf.WriteString("\n")

		b.Env.DefineGlobal(&types.Symbol{
			Name:       fn.name,
			Kind:       types.SymFunc,
			ParamTypes: fn.paramTypes,
			ReturnType: fn.ret,
		})
	}
	b.buf.WriteString("\n")
}

// NewReg mints a fresh SSA register name, unique within the current
// function.
func (b *Builder) NewReg() string {
	n := b.regCount
	b.regCount++
	return fmt.Sprintf("%%%d", n)
}

// NewVar mints a fresh named-storage handle, unique within the current
// function.
func (b *Builder) NewVar(ident string) string {
	n := b.varCount
	b.varCount++
	return fmt.Sprintf("@%s_%d", ident, n)
}

// NewLabel mints a fresh basic-block label, unique within the current
// function.
func (b *Builder) NewLabel(prefix string) string {
	n := b.labelCount
	b.labelCount++
	return fmt.Sprintf("%%%s_%d", prefix, n)
}

// NextLabelID mints a fresh numeric suffix, unique within the current
// function, for callers that build their own compound label text (e.g.
// "then_<id>"/"else_<id>" sharing one id across a multi-block construct)
// rather than a single standalone label via NewLabel.
func (b *Builder) NextLabelID() int {
	n := b.labelCount
	b.labelCount++
	return n
}

// ResetCounters resets the three name counters and the closed flag at
// function entry, per §4.1 and §4.4's "Entry" transition.
func (b *Builder) ResetCounters() {
	b.regCount = 0
	b.varCount = 0
	b.labelCount = 0
	b.closed = false
}

// Append writes raw text to the KIR buffer.
func (b *Builder) Append(s string) { b.buf.WriteString(s) }

// Text returns the accumulated KIR text produced so far.
func (b *Builder) Text() string { return b.buf.String() }

// BlockClosed reports whether the current basic block has already been
// terminated; the AST walker must consult this before emitting further
// instructions and skip them (§4.4).
func (b *Builder) BlockClosed() bool { return b.closed }

// SetClosed marks the current block terminated. Every terminator emission
// (ret/jump/br) and every break/continue calls this.
func (b *Builder) SetClosed() { b.closed = true }

// ClearClosed marks the current block open again; every fresh label line
// must be paired with a call to this.
func (b *Builder) ClearClosed() { b.closed = false }

// PushLoop records the continue/break targets of a newly entered loop.
func (b *Builder) PushLoop(continueLabel, breakLabel string) {
	b.loops = append(b.loops, loopCtx{continueLabel, breakLabel})
}

// PopLoop discards the innermost loop context on loop exit.
func (b *Builder) PopLoop() {
	b.loops = b.loops[:len(b.loops)-1]
}

// InLoop reports whether a break/continue is currently legal.
func (b *Builder) InLoop() bool { return len(b.loops) > 0 }

// BreakTarget returns the label break should jump to. Callers must check
// InLoop first; calling this with no enclosing loop is a programming error.
func (b *Builder) BreakTarget() string { return b.loops[len(b.loops)-1].breakLabel }

// ContinueTarget returns the label continue should jump to.
func (b *Builder) ContinueTarget() string { return b.loops[len(b.loops)-1].continueLabel }

// --- Environment delegates (C2) ---

func (b *Builder) EnterScope()                      { b.Env.EnterScope() }
func (b *Builder) ExitScope()                       { b.Env.ExitScope() }
func (b *Builder) Define(sym *types.Symbol) bool    { return b.Env.Define(sym) }
func (b *Builder) DefineGlobal(s *types.Symbol) bool { return b.Env.DefineGlobal(s) }
func (b *Builder) Lookup(name string) (*types.Symbol, bool) { return b.Env.Lookup(name) }
func (b *Builder) IsGlobalScope() bool              { return b.Env.IsGlobalScope() }
