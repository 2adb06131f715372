package lower

import (
	"fmt"

	"github.com/anfsity/Compile-Principle/pkg/ast"
	"github.com/anfsity/Compile-Principle/pkg/diag"
	"github.com/anfsity/Compile-Principle/pkg/kir"
	"github.com/anfsity/Compile-Principle/pkg/types"
)

// lowerExpr is §4.2.2's `lower(node) -> value_handle` restricted to
// expression-shaped nodes.
func (lw *Lowering) lowerExpr(n *ast.Node) Handle {
	switch n.Kind {
	case ast.Number:
		return Literal(n.Data.(ast.NumberData).Value)
	case ast.LVal:
		return lw.lowerLValRead(n)
	case ast.Unary:
		return lw.lowerUnary(n)
	case ast.Binary:
		return lw.lowerBinary(n)
	case ast.Call:
		return lw.lowerCall(n)
	default:
		diag.ICE("lower: unexpected expression kind %d", n.Kind)
		return Unit()
	}
}

// symAddrOf returns the storage address of sym, or nil if sym has no
// storage (a scalar compile-time constant).
func (lw *Lowering) symAddrOf(sym *types.Symbol) *kir.Value {
	return lw.symAddr[sym]
}

// resolveLValAddr computes the address an Assign should store through,
// per §4.2.2's Assign rule: if the symbol's own type is a Pointer (the
// decayed-parameter case), first load to obtain the runtime pointer, then
// walk each index — GetPtr on the first step of a bare pointer parameter,
// GetElemPtr otherwise.
func (lw *Lowering) resolveLValAddr(n *ast.Node, sym *types.Symbol) *kir.Value {
	d := n.Data.(ast.LValData)
	addr := lw.symAddrOf(sym)
	isPtrParam := sym.Type.Kind == types.KPointer

	if isPtrParam {
		addr = lw.emitLoad(addr)
	}

	for i, idxNode := range d.Indices {
		idxHandle := lw.lowerExpr(idxNode)
		if i == 0 && isPtrParam {
			addr = lw.emitGetPtr(addr, idxHandle)
		} else {
			addr = lw.emitGetElemPtr(addr, idxHandle)
		}
	}
	return addr
}

// lowerLValRead implements the multi-branch LVal-as-rvalue rule of §4.2.2.
func (lw *Lowering) lowerLValRead(n *ast.Node) Handle {
	d := n.Data.(ast.LValData)
	sym, ok := lw.B.Lookup(d.Ident)
	if !ok {
		diag.Error(n.Tok, "use of undefined identifier '%s'", d.Ident)
	}
	if sym.Kind != types.SymVar {
		diag.Error(n.Tok, "'%s' is not a variable", d.Ident)
	}

	if sym.IsConst && len(d.Indices) == 0 {
		return Literal(sym.ConstValue)
	}

	isPtrParam := sym.Type.Kind == types.KPointer
	if isPtrParam && len(d.Indices) == 0 {
		// A decayed pointer parameter used bare: return the pointer value
		// itself, passed through without further address arithmetic.
		addr := lw.symAddrOf(sym)
		return FromValue(lw.emitLoad(addr))
	}

	addr := lw.resolveLValAddr(n, sym)
	pointee := addr.Typ.Elem()

	if pointee.Kind == types.KArray {
		// Array used as an rvalue: decay to the address of its first
		// element, standing in for the whole array at a call site.
		return FromValue(lw.emitGetElemPtr(addr, Literal(0)))
	}
	return FromValue(lw.emitLoad(addr))
}

func (lw *Lowering) lowerUnary(n *ast.Node) Handle {
	d := n.Data.(ast.UnaryData)
	rhs := lw.lowerExpr(d.Rhs)
	switch d.Op {
	case ast.UNeg:
		return lw.emitBinary(kir.OpSub, Literal(0), rhs)
	case ast.UNot:
		return lw.emitBinary(kir.OpEq, Literal(0), rhs)
	default:
		diag.ICE("lower: unexpected unary op %d", d.Op)
		return Unit()
	}
}

var binOpTable = map[ast.BinOp]kir.BinOp{
	ast.Add: kir.OpAdd,
	ast.Sub: kir.OpSub,
	ast.Mul: kir.OpMul,
	ast.Div: kir.OpDiv,
	ast.Mod: kir.OpMod,
	ast.Lt:  kir.OpLt,
	ast.Gt:  kir.OpGt,
	ast.Le:  kir.OpLe,
	ast.Ge:  kir.OpGe,
	ast.Eq:  kir.OpEq,
	ast.Neq: kir.OpNeq,
}

func (lw *Lowering) lowerBinary(n *ast.Node) Handle {
	d := n.Data.(ast.BinaryData)
	switch d.Op {
	case ast.And:
		return lw.lowerShortCircuit(n, true)
	case ast.Or:
		return lw.lowerShortCircuit(n, false)
	default:
		op, ok := binOpTable[d.Op]
		if !ok {
			diag.ICE("lower: unexpected binary op %d", d.Op)
		}
		lhs := lw.lowerExpr(d.Lhs)
		rhs := lw.lowerExpr(d.Rhs)
		return lw.emitBinary(op, lhs, rhs)
	}
}

// lowerShortCircuit implements §4.2.2's and/or lowering: a temporary holds
// the boolean result; one arm evaluates rhs (the arm where lhs alone
// cannot determine the outcome), the other stores the short-circuited
// constant directly, guaranteeing rhs's side effects are observable only
// in the arm where it is actually evaluated.
func (lw *Lowering) lowerShortCircuit(n *ast.Node, isAnd bool) Handle {
	d := n.Data.(ast.BinaryData)
	id := lw.B.NextLabelID()
	var namePrefix string
	if isAnd {
		namePrefix = "and"
	} else {
		namePrefix = "or"
	}

	resSlot := lw.emitAlloc(types.Int, namePrefix+"_res")

	lhs := lw.lowerExpr(d.Lhs)
	lhsBool := lw.emitBinary(kir.OpNeq, lhs, Literal(0))

	trueBB := &kir.BasicBlock{Label: fmt.Sprintf("%%%s_true_%d", namePrefix, id)}
	falseBB := &kir.BasicBlock{Label: fmt.Sprintf("%%%s_false_%d", namePrefix, id)}
	endBB := &kir.BasicBlock{Label: fmt.Sprintf("%%%s_end_%d", namePrefix, id)}
	lw.emitBranch(lhsBool, trueBB, falseBB)

	lw.startBlock(trueBB)
	if isAnd {
		rhs := lw.lowerExpr(d.Rhs)
		rhsBool := lw.emitBinary(kir.OpNeq, rhs, Literal(0))
		lw.emitStore(rhsBool, resSlot)
	} else {
		lw.emitStore(Literal(1), resSlot)
	}
	if !lw.B.BlockClosed() {
		lw.emitJump(endBB)
	}

	lw.startBlock(falseBB)
	if isAnd {
		lw.emitStore(Literal(0), resSlot)
	} else {
		rhs := lw.lowerExpr(d.Rhs)
		rhsBool := lw.emitBinary(kir.OpNeq, rhs, Literal(0))
		lw.emitStore(rhsBool, resSlot)
	}
	if !lw.B.BlockClosed() {
		lw.emitJump(endBB)
	}

	lw.startBlock(endBB)
	return FromValue(lw.emitLoad(resSlot))
}

func (lw *Lowering) lowerCall(n *ast.Node) Handle {
	d := n.Data.(ast.CallData)
	sym, ok := lw.B.Lookup(d.Ident)
	if !ok {
		diag.Error(n.Tok, "call to undefined function '%s'", d.Ident)
	}
	if sym.Kind != types.SymFunc {
		diag.Error(n.Tok, "'%s' is not a function", d.Ident)
	}
	if len(d.Args) != len(sym.ParamTypes) {
		diag.Error(n.Tok, "function '%s' expects %d argument(s), got %d", d.Ident, len(sym.ParamTypes), len(d.Args))
	}
	args := make([]Handle, len(d.Args))
	for i, a := range d.Args {
		args[i] = lw.lowerExpr(a)
	}
	return lw.emitCall(sym, args)
}
