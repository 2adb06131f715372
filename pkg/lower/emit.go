package lower

import (
	"fmt"
	"strings"

	"github.com/anfsity/Compile-Principle/pkg/kir"
	"github.com/anfsity/Compile-Principle/pkg/types"
)

// appendInstr appends v to the current block's instruction list. Callers
// are responsible for having already checked Builder.BlockClosed() at the
// statement level (§4.4) — every emit* helper below assumes the current
// block is still open.
func (lw *Lowering) appendInstr(v *kir.Value) {
	lw.Block.Values = append(lw.Block.Values, v)
}

func (lw *Lowering) emitAlloc(pointee *types.Type, ident string) *kir.Value {
	name := lw.B.NewVar(ident)
	v := &kir.Value{Kind: kir.KAlloc, Typ: types.NewPointer(pointee), Name: name}
	lw.B.Append(fmt.Sprintf("  %s = alloc %s\n", name, pointee.String()))
	lw.appendInstr(v)
	return v
}

func (lw *Lowering) emitLoad(addr *kir.Value) *kir.Value {
	reg := lw.B.NewReg()
	pointee := addr.Typ.Elem()
	v := &kir.Value{Kind: kir.KLoad, Typ: pointee, Name: reg, Data: kir.LoadData{Src: addr}}
	lw.B.Append(fmt.Sprintf("  %s = load %s\n", reg, addr.Name))
	lw.appendInstr(v)
	return v
}

func (lw *Lowering) emitStore(val Handle, dest *kir.Value) {
	v := &kir.Value{Kind: kir.KStore, Typ: types.Void, Data: kir.StoreData{Value: val.AsValue(), Dest: dest}}
	lw.B.Append(fmt.Sprintf("  store %s, %s\n", val.Text(), dest.Name))
	lw.appendInstr(v)
}

func (lw *Lowering) emitGetElemPtr(src *kir.Value, idx Handle) *kir.Value {
	reg := lw.B.NewReg()
	elemType := src.Typ.Elem().Elem() // src: Pointer(Array(base,len)) -> result Pointer(base)
	v := &kir.Value{Kind: kir.KGetElemPtr, Typ: types.NewPointer(elemType), Name: reg, Data: kir.GetElemPtrData{Src: src, Index: idx.AsValue()}}
	lw.B.Append(fmt.Sprintf("  %s = getelemptr %s, %s\n", reg, src.Name, idx.Text()))
	lw.appendInstr(v)
	return v
}

func (lw *Lowering) emitGetPtr(src *kir.Value, idx Handle) *kir.Value {
	reg := lw.B.NewReg()
	v := &kir.Value{Kind: kir.KGetPtr, Typ: src.Typ, Name: reg, Data: kir.GetPtrData{Src: src, Index: idx.AsValue()}}
	lw.B.Append(fmt.Sprintf("  %s = getptr %s, %s\n", reg, src.Name, idx.Text()))
	lw.appendInstr(v)
	return v
}

func (lw *Lowering) emitBinary(op kir.BinOp, lhs, rhs Handle) Handle {
	reg := lw.B.NewReg()
	v := &kir.Value{Kind: kir.KBinary, Typ: types.Int, Name: reg, Data: kir.BinaryData{Op: op, Lhs: lhs.AsValue(), Rhs: rhs.AsValue()}}
	lw.B.Append(fmt.Sprintf("  %s = %s %s, %s\n", reg, op.Mnemonic(), lhs.Text(), rhs.Text()))
	lw.appendInstr(v)
	return FromValue(v)
}

func (lw *Lowering) emitCall(sym *types.Symbol, args []Handle) Handle {
	argVals := make([]*kir.Value, len(args))
	argTexts := make([]string, len(args))
	for i, a := range args {
		argVals[i] = a.AsValue()
		argTexts[i] = a.Text()
	}
	if sym.ReturnType.Kind == types.KVoid {
		v := &kir.Value{Kind: kir.KCall, Typ: types.Void, Data: kir.CallData{Callee: sym.Name, Args: argVals}}
		lw.B.Append(fmt.Sprintf("  call @%s(%s)\n", sym.Name, strings.Join(argTexts, ", ")))
		lw.appendInstr(v)
		return Unit()
	}
	reg := lw.B.NewReg()
	v := &kir.Value{Kind: kir.KCall, Typ: sym.ReturnType, Name: reg, Data: kir.CallData{Callee: sym.Name, Args: argVals}}
	lw.B.Append(fmt.Sprintf("  %s = call @%s(%s)\n", reg, sym.Name, strings.Join(argTexts, ", ")))
	lw.appendInstr(v)
	return FromValue(v)
}

func (lw *Lowering) emitReturn(val *Handle) {
	var rv *kir.Value
	if val != nil {
		rv = val.AsValue()
		lw.B.Append(fmt.Sprintf("  ret %s\n", val.Text()))
	} else {
		lw.B.Append("  ret\n")
	}
	v := &kir.Value{Kind: kir.KReturn, Typ: types.Void, Data: kir.ReturnData{Value: rv}}
	lw.appendInstr(v)
	lw.B.SetClosed()
}

func (lw *Lowering) emitJump(target *kir.BasicBlock) {
	v := &kir.Value{Kind: kir.KJump, Typ: types.Void, Data: kir.JumpData{Target: target}}
	lw.B.Append(fmt.Sprintf("  jump %s\n", target.Label))
	lw.appendInstr(v)
	lw.B.SetClosed()
}

func (lw *Lowering) emitBranch(cond Handle, trueBB, falseBB *kir.BasicBlock) {
	v := &kir.Value{Kind: kir.KBranch, Typ: types.Void, Data: kir.BranchData{Cond: cond.AsValue(), TrueBB: trueBB, FalseBB: falseBB}}
	lw.B.Append(fmt.Sprintf("  br %s, %s, %s\n", cond.Text(), trueBB.Label, falseBB.Label))
	lw.appendInstr(v)
	lw.B.SetClosed()
}
