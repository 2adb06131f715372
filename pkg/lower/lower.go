// Package lower implements IrLowering (C4): the AST walker that produces
// KIR side effects (both the textual form, through pkg/kir.Builder, and the
// in-memory tree of pkg/kir) and the const_eval traversal of §4.2.1. This
// mirrors the donor's own codegen.Context (pkg/codegen/codegen.go) — one
// stateful walker struct threaded through a set of per-node-kind lowering
// methods — generalized from the donor's B-language semantics to this
// spec's C-like scalar/array/function language.
package lower

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/anfsity/Compile-Principle/pkg/ast"
	"github.com/anfsity/Compile-Principle/pkg/diag"
	"github.com/anfsity/Compile-Principle/pkg/kir"
	"github.com/anfsity/Compile-Principle/pkg/token"
	"github.com/anfsity/Compile-Principle/pkg/types"
)

// Lowering holds the AST-walker state: the builder it drives, the KIR tree
// under construction, and the current insertion point (function/block)
// within that tree. One Lowering is used for a whole CompUnit; per-function
// state (Func/Block) is reset by lowerFuncDef.
type Lowering struct {
	B    *kir.Builder
	Prog *kir.Program

	Func  *kir.Function
	Block *kir.BasicBlock

	// symAddr maps a variable symbol to the KIR value that holds its
	// storage address (an Alloc or GlobalAlloc). Symbols with no storage
	// (compile-time constants) never appear here.
	symAddr map[*types.Symbol]*kir.Value

	// loopTargets mirrors Builder's loop label stack with the matching
	// BasicBlock pointers, so break/continue can link a real tree edge
	// instead of just the label string the text form carries.
	loopTargets [][2]*kir.BasicBlock // [entry/continue, end/break]
}

// New creates a Lowering ready to walk a CompUnit.
func New() *Lowering {
	return &Lowering{
		B:       kir.NewBuilder(),
		Prog:    &kir.Program{},
		symAddr: make(map[*types.Symbol]*kir.Value),
	}
}

// Lower walks the CompUnit root, returning the populated KIR tree. The
// builder's accumulated text (Lowering.B.Text()) is the KIR text form of
// §6.1, produced alongside the tree by the same walk.
func (lw *Lowering) Lower(root *ast.Node) *kir.Program {
	d := root.Data.(ast.CompUnitData)
	for i, item := range d.Items {
		if i > 0 {
			lw.B.Append("\n")
		}
		lw.lowerGlobalItem(item)
	}
	return lw.Prog
}

func (lw *Lowering) lowerGlobalItem(n *ast.Node) {
	switch n.Kind {
	case ast.Decl:
		lw.lowerDecl(n)
	case ast.FuncDef:
		lw.lowerFuncDef(n)
	default:
		diag.ICE("lower: unexpected global item kind %d", n.Kind)
	}
}

func (lw *Lowering) define(sym *types.Symbol, tok token.Token) {
	if !lw.B.Define(sym) {
		diag.Error(tok, "redefinition of '%s'", sym.Name)
	}
}

// --- Declarations ---

func (lw *Lowering) lowerDecl(n *ast.Node) {
	d := n.Data.(ast.DeclData)
	for _, def := range d.Defs {
		switch def.Kind {
		case ast.ScalarDef:
			lw.lowerScalarDef(def, d.IsConst)
		case ast.ArrayDef:
			lw.lowerArrayDef(def, d.IsConst)
		default:
			diag.ICE("lower: unexpected def kind %d", def.Kind)
		}
	}
}

func (lw *Lowering) lowerScalarDef(n *ast.Node, isConst bool) {
	d := n.Data.(ast.ScalarDefData)

	if isConst {
		if d.Init == nil {
			diag.Error(n.Tok, "const '%s' requires an initializer", d.Ident)
		}
		val := lw.constEval(d.Init)
		lw.define(&types.Symbol{Name: d.Ident, Type: types.Int, Kind: types.SymVar, IsConst: true, ConstValue: val}, n.Tok)
		return
	}

	if lw.B.IsGlobalScope() {
		irName := "@" + d.Ident
		var initVal *kir.Value
		var initText string
		if d.Init != nil {
			v := lw.constEval(d.Init)
			initVal = kir.NewInteger(v)
			initText = strconv.Itoa(int(v))
		} else {
			initVal = kir.NewZeroInit(types.Int)
			initText = "zeroinit"
		}
		gv := &kir.Value{Kind: kir.KGlobalAlloc, Typ: types.NewPointer(types.Int), Name: irName, Data: kir.GlobalAllocData{Init: initVal}}
		lw.B.Append(fmt.Sprintf("global %s = alloc i32, %s\n", irName, initText))
		lw.Prog.Globals = append(lw.Prog.Globals, gv)

		sym := &types.Symbol{Name: d.Ident, IRName: irName, Type: types.Int, Kind: types.SymVar}
		lw.define(sym, n.Tok)
		lw.symAddr[sym] = gv
		return
	}

	slot := lw.emitAlloc(types.Int, d.Ident)
	sym := &types.Symbol{Name: d.Ident, IRName: slot.Name, Type: types.Int, Kind: types.SymVar}
	lw.define(sym, n.Tok)
	lw.symAddr[sym] = slot
	if d.Init != nil {
		h := lw.lowerExpr(d.Init)
		lw.emitStore(h, slot)
	}
}

// buildArrayType right-to-left folds constant-evaluated dims over Int,
// per §4.2.2's FuncDef step 3 rule generalized to plain array defs.
func (lw *Lowering) buildArrayType(dims []*ast.Node) (*types.Type, []int) {
	sizes := make([]int, len(dims))
	for i, dn := range dims {
		sizes[i] = int(lw.constEval(dn))
		if sizes[i] < 0 {
			diag.Error(dn.Tok, "array dimension must be non-negative")
		}
	}
	t := types.Int
	for i := len(sizes) - 1; i >= 0; i-- {
		t = types.NewArray(t, sizes[i])
	}
	return t, sizes
}

func (lw *Lowering) lowerArrayDef(n *ast.Node, isConst bool) {
	d := n.Data.(ast.ArrayDefData)
	arrType, dims := lw.buildArrayType(d.Dims)

	if lw.B.IsGlobalScope() {
		irName := "@" + d.Ident
		var initVal *kir.Value
		var initText string
		if d.Init == nil {
			initVal = kir.NewZeroInit(arrType)
			initText = "zeroinit"
		} else {
			flat := lw.flattenList(d.Init.Data.(ast.InitListData).Items, dims, true, n.Tok)
			initVal, initText = lw.nestAggregate(flat, dims, arrType)
		}
		gv := &kir.Value{Kind: kir.KGlobalAlloc, Typ: types.NewPointer(arrType), Name: irName, Data: kir.GlobalAllocData{Init: initVal}}
		lw.B.Append(fmt.Sprintf("global %s = alloc %s, %s\n", irName, arrType.String(), initText))
		lw.Prog.Globals = append(lw.Prog.Globals, gv)

		sym := &types.Symbol{Name: d.Ident, IRName: irName, Type: arrType, Kind: types.SymVar, IsConst: isConst}
		lw.define(sym, n.Tok)
		lw.symAddr[sym] = gv
		return
	}

	slot := lw.emitAlloc(arrType, d.Ident)
	sym := &types.Symbol{Name: d.Ident, IRName: slot.Name, Type: arrType, Kind: types.SymVar, IsConst: isConst}
	lw.define(sym, n.Tok)
	lw.symAddr[sym] = slot

	if d.Init != nil {
		flat := lw.flattenList(d.Init.Data.(ast.InitListData).Items, dims, false, n.Tok)
		lw.storeFlatInit(slot, flat, dims)
	}
	// Uninitialized local arrays are explicitly left undefined (spec.md §9).
}

// --- Functions ---

func (lw *Lowering) paramType(p *ast.Node) *types.Type {
	d := p.Data.(ast.FuncParamData)
	if !d.IsPtr {
		return types.Int
	}
	pointee := types.Int
	for i := len(d.Dims) - 1; i >= 0; i-- {
		pointee = types.NewArray(pointee, int(lw.constEval(d.Dims[i])))
	}
	return types.NewPointer(pointee)
}

func (lw *Lowering) lowerFuncDef(n *ast.Node) {
	d := n.Data.(ast.FuncDefData)
	retType := types.Int
	if d.ReturnsVoid {
		retType = types.Void
	}

	paramTypes := make([]*types.Type, len(d.Params))
	for i, p := range d.Params {
		paramTypes[i] = lw.paramType(p)
	}

	funcSym := &types.Symbol{Name: d.Ident, IRName: "@" + d.Ident, Kind: types.SymFunc, ParamTypes: paramTypes, ReturnType: retType}
	lw.define(funcSym, n.Tok)

	lw.B.ResetCounters()
	kf := &kir.Function{Name: d.Ident, RetType: retType}

	paramTexts := make([]string, len(d.Params))
	kf.Params = make([]*kir.Value, len(d.Params))
	for i, p := range d.Params {
		pd := p.Data.(ast.FuncParamData)
		paramTexts[i] = fmt.Sprintf("@%s: %s", pd.Ident, paramTypes[i].String())
		kf.Params[i] = kir.NewFuncArgRef(i, paramTypes[i], "@"+pd.Ident)
	}
	lw.B.Append(fmt.Sprintf("fun @%s(%s)", d.Ident, strings.Join(paramTexts, ", ")))
	if retType.Kind != types.KVoid {
		lw.B.Append(": i32 ")
	} else {
		lw.B.Append(" ")
	}
	lw.B.Append("{\n")

	lw.Func = kf
	lw.B.EnterScope()
	entryLabel := fmt.Sprintf("%%entry_%s", d.Ident)
	entryBB := &kir.BasicBlock{Label: entryLabel}
	kf.Blocks = append(kf.Blocks, entryBB)
	lw.Block = entryBB
	lw.B.Append(entryLabel + ":\n")
	lw.B.ClearClosed()

	for i, p := range d.Params {
		pd := p.Data.(ast.FuncParamData)
		slot := lw.emitAlloc(paramTypes[i], pd.Ident)
		lw.emitStore(FromValue(kf.Params[i]), slot)
		sym := &types.Symbol{Name: pd.Ident, IRName: slot.Name, Type: paramTypes[i], Kind: types.SymVar}
		lw.define(sym, p.Tok)
		lw.symAddr[sym] = slot
	}

	lw.lowerBlockItems(d.Body.Data.(ast.BlockData).Items)

	if !lw.B.BlockClosed() {
		if retType.Kind == types.KVoid {
			lw.emitReturn(nil)
		} else {
			zero := Literal(0)
			lw.emitReturn(&zero)
		}
	}

	lw.B.ExitScope()
	lw.B.Append("}\n")
	lw.Prog.Funcs = append(lw.Prog.Funcs, kf)
	lw.Func = nil
	lw.Block = nil
}

// --- Statements ---

func (lw *Lowering) lowerBlockItems(items []*ast.Node) {
	for _, item := range items {
		if lw.B.BlockClosed() {
			break
		}
		lw.lowerBlockItem(item)
	}
}

func (lw *Lowering) lowerBlockItem(n *ast.Node) {
	switch n.Kind {
	case ast.Decl:
		lw.lowerDecl(n)
	default:
		lw.lowerStmt(n)
	}
}

func (lw *Lowering) lowerStmt(n *ast.Node) {
	switch n.Kind {
	case ast.Block:
		lw.B.EnterScope()
		lw.lowerBlockItems(n.Data.(ast.BlockData).Items)
		lw.B.ExitScope()
	case ast.ExprStmt:
		d := n.Data.(ast.ExprStmtData)
		if d.Expr != nil {
			lw.lowerExpr(d.Expr)
		}
	case ast.Assign:
		lw.lowerAssign(n)
	case ast.If:
		lw.lowerIf(n)
	case ast.While:
		lw.lowerWhile(n)
	case ast.Break:
		if !lw.B.InLoop() {
			diag.Error(n.Tok, "'break' outside of a loop")
		}
		lw.emitJump(lw.loopTargets[len(lw.loopTargets)-1][1])
	case ast.Continue:
		if !lw.B.InLoop() {
			diag.Error(n.Tok, "'continue' outside of a loop")
		}
		lw.emitJump(lw.loopTargets[len(lw.loopTargets)-1][0])
	case ast.Return:
		d := n.Data.(ast.ReturnData)
		if d.Expr == nil {
			lw.emitReturn(nil)
		} else {
			h := lw.lowerExpr(d.Expr)
			lw.emitReturn(&h)
		}
	default:
		diag.ICE("lower: unexpected statement kind %d", n.Kind)
	}
}

func (lw *Lowering) lowerAssign(n *ast.Node) {
	d := n.Data.(ast.AssignData)
	lvd := d.LVal.Data.(ast.LValData)
	sym, ok := lw.B.Lookup(lvd.Ident)
	if !ok {
		diag.Error(d.LVal.Tok, "use of undefined identifier '%s'", lvd.Ident)
	}
	if sym.Kind != types.SymVar {
		diag.Error(d.LVal.Tok, "'%s' is not a variable", lvd.Ident)
	}
	if sym.IsConst {
		diag.Error(d.LVal.Tok, "assignment to const-qualified variable '%s'", lvd.Ident)
	}

	addr := lw.resolveLValAddr(d.LVal, sym)
	rhs := lw.lowerExpr(d.Expr)
	lw.emitStore(rhs, addr)
}

func (lw *Lowering) lowerIf(n *ast.Node) {
	d := n.Data.(ast.IfData)
	id := lw.B.NextLabelID()

	thenBB := &kir.BasicBlock{Label: fmt.Sprintf("%%then_%d", id)}
	var elseBB *kir.BasicBlock
	if d.Else != nil {
		elseBB = &kir.BasicBlock{Label: fmt.Sprintf("%%else_%d", id)}
	}
	endBB := &kir.BasicBlock{Label: fmt.Sprintf("%%end_%d", id)}

	cond := lw.lowerExpr(d.Cond)
	branchElse := endBB
	if elseBB != nil {
		branchElse = elseBB
	}
	lw.emitBranch(cond, thenBB, branchElse)

	lw.startBlock(thenBB)
	lw.lowerStmt(d.Then)
	if !lw.B.BlockClosed() {
		lw.emitJump(endBB)
	}

	if elseBB != nil {
		lw.startBlock(elseBB)
		lw.lowerStmt(d.Else)
		if !lw.B.BlockClosed() {
			lw.emitJump(endBB)
		}
	}

	lw.startBlock(endBB)
}

func (lw *Lowering) lowerWhile(n *ast.Node) {
	d := n.Data.(ast.WhileData)
	id := lw.B.NextLabelID()

	entryBB := &kir.BasicBlock{Label: fmt.Sprintf("%%while_entry_%d", id)}
	bodyBB := &kir.BasicBlock{Label: fmt.Sprintf("%%while_body_%d", id)}
	endBB := &kir.BasicBlock{Label: fmt.Sprintf("%%while_end_%d", id)}

	lw.B.PushLoop(entryBB.Label, endBB.Label)
	lw.loopTargets = append(lw.loopTargets, [2]*kir.BasicBlock{entryBB, endBB})
	lw.emitJump(entryBB)

	lw.startBlock(entryBB)
	cond := lw.lowerExpr(d.Cond)
	lw.emitBranch(cond, bodyBB, endBB)

	lw.startBlock(bodyBB)
	lw.lowerStmt(d.Body)
	if !lw.B.BlockClosed() {
		lw.emitJump(entryBB)
	}

	lw.B.PopLoop()
	lw.loopTargets = lw.loopTargets[:len(lw.loopTargets)-1]
	lw.startBlock(endBB)
}

// startBlock opens a fresh labelled block, both in the text buffer and in
// the KIR tree, and clears the closed flag per §4.4.
func (lw *Lowering) startBlock(bb *kir.BasicBlock) {
	lw.Func.Blocks = append(lw.Func.Blocks, bb)
	lw.Block = bb
	lw.B.Append(bb.Label + ":\n")
	lw.B.ClearClosed()
}
