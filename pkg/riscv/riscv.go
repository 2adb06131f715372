// Package riscv implements CodeGen (C6): the KIR walker that emits 32-bit
// RISC-V assembly conforming to the standard integer calling convention
// (§4.3). Structured the way the donor's codegen.Context walks ir.Program
// (pkg/codegen/codegen.go/qbe_backend.go) — a stateful per-function pass
// over a fixed, already-built IR tree, writing to a single text buffer —
// generalized from the donor's QBE-text emission to direct RISC-V assembly
// text, since this spec's backend has no separate SSA-text intermediate
// step to go through (design note §9).
package riscv

import (
	"fmt"
	"strings"

	"github.com/anfsity/Compile-Principle/pkg/diag"
	"github.com/anfsity/Compile-Principle/pkg/kir"
	"github.com/anfsity/Compile-Principle/pkg/types"
)

// Gen holds the output buffer and per-function state. One Gen generates a
// whole Program; genFunction resets the per-function fields for each call.
type Gen struct {
	out *strings.Builder

	offsets           map[*kir.Value]int
	frame             int
	raSize            int
	outgoingArgsBytes int
}

// Generate renders prog as a complete RISC-V assembly text: a .data
// section per global, a .text section per function with a body (functions
// with no blocks are declaration-only runtime-library intrinsics, linked
// in from the runtime stub rather than defined here).
func Generate(prog *kir.Program) string {
	g := &Gen{out: &strings.Builder{}}
	for _, gv := range prog.Globals {
		g.genGlobal(gv)
	}
	for _, f := range prog.Funcs {
		if len(f.Blocks) == 0 {
			continue
		}
		g.genFunction(f)
	}
	return g.out.String()
}

func sizeof(t *types.Type) int { return types.Sizeof(t) }

// roundUp16 rounds n up to the next multiple of 16, guaranteeing §8
// invariant 3's `frame_bytes mod 16 = 0`.
func roundUp16(n int) int {
	if n%16 == 0 {
		return n
	}
	return n + (16 - n%16)
}

// --- Globals (§6.2's "Data sections per global") ---

func (g *Gen) genGlobal(v *kir.Value) {
	name := strings.TrimPrefix(v.Name, "@")
	g.out.WriteString("  .data\n")
	g.out.WriteString("  .global " + name + "\n")
	g.out.WriteString(name + ":\n")
	g.genInit(v.Data.(kir.GlobalAllocData).Init)
	g.out.WriteString("\n")
}

func (g *Gen) genInit(v *kir.Value) {
	switch v.Kind {
	case kir.KInteger:
		fmt.Fprintf(g.out, "  .word %d\n", v.Data.(kir.IntegerData).Value)
	case kir.KZeroInit:
		fmt.Fprintf(g.out, "  .zero %d\n", sizeof(v.Typ))
	case kir.KAggregate:
		for _, e := range v.Data.(kir.AggregateData).Elems {
			g.genInit(e)
		}
	default:
		diag.ICE("riscv: unexpected global initializer kind %d", v.Kind)
	}
}

// --- Frame sizing (§4.3 Phase 1) ---

func (g *Gen) sizeFunction(f *kir.Function) {
	g.offsets = make(map[*kir.Value]int)
	offset := 0
	maxArgs := 0
	hasCall := false

	for _, bb := range f.Blocks {
		for _, v := range bb.Values {
			switch v.Kind {
			case kir.KAlloc:
				g.offsets[v] = offset
				offset += sizeof(v.Typ.Elem())
			case kir.KCall:
				hasCall = true
				if n := len(v.Data.(kir.CallData).Args); n > maxArgs {
					maxArgs = n
				}
				if v.Typ.Kind != types.KVoid {
					g.offsets[v] = offset
					offset += 4
				}
			case kir.KReturn, kir.KJump, kir.KBranch, kir.KStore:
				// no result
			default:
				if v.Typ != nil && v.Typ.Kind != types.KVoid {
					g.offsets[v] = offset
					offset += 4
				}
			}
		}
	}

	if hasCall {
		g.raSize = 4
	} else {
		g.raSize = 0
	}
	outgoing := maxArgs - 8
	if outgoing < 0 {
		outgoing = 0
	}
	g.outgoingArgsBytes = outgoing * 4

	// Shift every recorded local slot up by outgoing_args_bytes: the
	// layout, low to high, is [outgoing args | locals | ra?].
	for k, off := range g.offsets {
		g.offsets[k] = off + g.outgoingArgsBytes
	}

	g.frame = roundUp16(offset + g.raSize + g.outgoingArgsBytes)

	for i, p := range f.Params {
		if i < 8 {
			g.offsets[p] = i*4 + g.outgoingArgsBytes
		} else {
			g.offsets[p] = g.frame + (i-8)*4
		}
	}
}

// --- Prologue / epilogue / body (§4.3 Phases 2 & 3) ---

func (g *Gen) genFunction(f *kir.Function) {
	g.sizeFunction(f)

	g.out.WriteString("  .text\n")
	g.out.WriteString("  .globl " + f.Name + "\n")
	g.out.WriteString(f.Name + ":\n")

	g.emitSpAdjust(-g.frame)
	if g.raSize > 0 {
		g.storeSp("ra", g.frame-4)
	}
	for i := range f.Params {
		if i < 8 {
			g.storeSp(fmt.Sprintf("a%d", i), g.offsets[f.Params[i]])
		}
	}

	for _, bb := range f.Blocks {
		g.out.WriteString(strings.TrimPrefix(bb.Label, "%") + ":\n")
		for _, v := range bb.Values {
			g.genInstr(f, v)
		}
	}
}

func (g *Gen) emitSpAdjust(delta int) {
	if delta >= -2047 && delta <= 2047 {
		fmt.Fprintf(g.out, "  addi sp, sp, %d\n", delta)
		return
	}
	fmt.Fprintf(g.out, "  li t2, %d\n", delta)
	g.out.WriteString("  add sp, sp, t2\n")
}

func (g *Gen) storeSp(reg string, offset int) {
	if offset >= -2047 && offset <= 2047 {
		fmt.Fprintf(g.out, "  sw %s, %d(sp)\n", reg, offset)
		return
	}
	g.out.WriteString("  li t2, " + fmt.Sprint(offset) + "\n")
	g.out.WriteString("  add t2, t2, sp\n")
	fmt.Fprintf(g.out, "  sw %s, 0(t2)\n", reg)
}

func (g *Gen) loadSp(reg string, offset int) {
	if offset >= -2047 && offset <= 2047 {
		fmt.Fprintf(g.out, "  lw %s, %d(sp)\n", reg, offset)
		return
	}
	g.out.WriteString("  li t2, " + fmt.Sprint(offset) + "\n")
	g.out.WriteString("  add t2, t2, sp\n")
	fmt.Fprintf(g.out, "  lw %s, 0(t2)\n", reg)
}

func (g *Gen) addrOfSp(reg string, offset int) {
	if offset >= -2047 && offset <= 2047 {
		fmt.Fprintf(g.out, "  addi %s, sp, %d\n", reg, offset)
		return
	}
	g.out.WriteString("  li t2, " + fmt.Sprint(offset) + "\n")
	fmt.Fprintf(g.out, "  add %s, t2, sp\n", reg)
}

// loadTo implements §4.3's load_to dispatch: a constant loads an
// immediate, a global loads an address, an Alloc loads the address of its
// own stack slot, and any other value's result — including a
// FuncArgRef — loads the word held in its slot (for the first eight
// parameters the prologue stored it there; later parameters are read from
// the caller's outgoing-args area above this frame).
func (g *Gen) loadTo(v *kir.Value, reg string) {
	switch v.Kind {
	case kir.KInteger:
		fmt.Fprintf(g.out, "  li %s, %d\n", reg, v.Data.(kir.IntegerData).Value)
	case kir.KGlobalAlloc:
		fmt.Fprintf(g.out, "  la %s, %s\n", reg, strings.TrimPrefix(v.Name, "@"))
	case kir.KAlloc:
		off, ok := g.offsets[v]
		if !ok {
			diag.ICE("riscv: no stack slot recorded for %v", v.Name)
		}
		g.addrOfSp(reg, off)
	default:
		off, ok := g.offsets[v]
		if !ok {
			diag.ICE("riscv: no stack slot recorded for %v", v.Name)
		}
		g.loadSp(reg, off)
	}
}

func (g *Gen) genInstr(f *kir.Function, v *kir.Value) {
	switch v.Kind {
	case kir.KAlloc, kir.KGlobalAlloc:
		// Storage already reserved during sizing; nothing to emit.

	case kir.KLoad:
		d := v.Data.(kir.LoadData)
		g.loadTo(d.Src, "t0")
		g.out.WriteString("  lw t0, 0(t0)\n")
		g.storeSp("t0", g.offsets[v])

	case kir.KStore:
		d := v.Data.(kir.StoreData)
		g.loadTo(d.Value, "t0")
		g.loadTo(d.Dest, "t1")
		g.out.WriteString("  sw t0, 0(t1)\n")

	case kir.KBinary:
		g.genBinary(v)

	case kir.KBranch:
		d := v.Data.(kir.BranchData)
		g.loadTo(d.Cond, "t0")
		fmt.Fprintf(g.out, "  bnez t0, %s\n", strings.TrimPrefix(d.TrueBB.Label, "%"))
		fmt.Fprintf(g.out, "  j %s\n", strings.TrimPrefix(d.FalseBB.Label, "%"))

	case kir.KJump:
		d := v.Data.(kir.JumpData)
		fmt.Fprintf(g.out, "  j %s\n", strings.TrimPrefix(d.Target.Label, "%"))

	case kir.KCall:
		g.genCall(v)

	case kir.KGetElemPtr:
		d := v.Data.(kir.GetElemPtrData)
		stride := sizeof(v.Typ.Elem())
		g.genAddrArith(v, d.Src, d.Index, stride)

	case kir.KGetPtr:
		d := v.Data.(kir.GetPtrData)
		stride := sizeof(v.Typ.Elem())
		g.genAddrArith(v, d.Src, d.Index, stride)

	case kir.KReturn:
		d := v.Data.(kir.ReturnData)
		if d.Value != nil {
			g.loadTo(d.Value, "a0")
		}
		g.genEpilogue(f)

	default:
		diag.ICE("riscv: unexpected KIR value kind %d", v.Kind)
	}
}

func (g *Gen) genAddrArith(result, src, index *kir.Value, stride int) {
	g.loadTo(src, "t0")
	g.loadTo(index, "t1")
	fmt.Fprintf(g.out, "  li t2, %d\n", stride)
	g.out.WriteString("  mul t1, t1, t2\n")
	g.out.WriteString("  add t0, t0, t1\n")
	g.storeSp("t0", g.offsets[result])
}

var binaryMnemonics = map[kir.BinOp]string{
	kir.OpAdd: "add",
	kir.OpSub: "sub",
	kir.OpMul: "mul",
	kir.OpDiv: "div",
	kir.OpMod: "rem",
	kir.OpAnd: "and",
	kir.OpOr:  "or",
	kir.OpXor: "xor",
	kir.OpShl: "sll",
	kir.OpShr: "srl",
	kir.OpSar: "sra",
	kir.OpLt:  "slt",
	kir.OpGt:  "sgt",
}

func (g *Gen) genBinary(v *kir.Value) {
	d := v.Data.(kir.BinaryData)
	g.loadTo(d.Lhs, "t0")
	g.loadTo(d.Rhs, "t1")

	switch d.Op {
	case kir.OpLe:
		g.out.WriteString("  sgt t0, t0, t1\n")
		g.out.WriteString("  seqz t0, t0\n")
	case kir.OpGe:
		g.out.WriteString("  slt t0, t0, t1\n")
		g.out.WriteString("  seqz t0, t0\n")
	case kir.OpEq:
		g.out.WriteString("  xor t0, t0, t1\n")
		g.out.WriteString("  seqz t0, t0\n")
	case kir.OpNeq:
		g.out.WriteString("  xor t0, t0, t1\n")
		g.out.WriteString("  snez t0, t0\n")
	default:
		mn, ok := binaryMnemonics[d.Op]
		if !ok {
			diag.ICE("riscv: unexpected binary op %d", d.Op)
		}
		fmt.Fprintf(g.out, "  %s t0, t0, t1\n", mn)
	}
	g.storeSp("t0", g.offsets[v])
}

func (g *Gen) genCall(v *kir.Value) {
	d := v.Data.(kir.CallData)
	for i, arg := range d.Args {
		if i < 8 {
			g.loadTo(arg, fmt.Sprintf("a%d", i))
		} else {
			g.loadTo(arg, "t0")
			g.storeSp("t0", (i-8)*4)
		}
	}
	fmt.Fprintf(g.out, "  call %s\n", d.Callee)
	if v.Typ != nil && v.Typ.Kind != types.KVoid {
		g.storeSp("a0", g.offsets[v])
	}
}

func (g *Gen) genEpilogue(f *kir.Function) {
	if g.raSize > 0 {
		g.loadSp("ra", g.frame-4)
	}
	g.emitSpAdjust(g.frame)
	g.out.WriteString("  ret\n")
}
