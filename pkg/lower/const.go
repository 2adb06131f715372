package lower

import (
	"github.com/anfsity/Compile-Principle/pkg/ast"
	"github.com/anfsity/Compile-Principle/pkg/diag"
	"github.com/anfsity/Compile-Principle/pkg/types"
)

// constEval is §4.2.1's const_eval: a pure compile-time evaluator used for
// const initializers, array dimensions, and global initial values. Host
// arithmetic here is Go's native int32, which wraps on overflow exactly as
// spec.md §9's open question resolves ("32-bit two's-complement wrap to
// match target semantics").
func (lw *Lowering) constEval(n *ast.Node) int32 {
	switch n.Kind {
	case ast.Number:
		return n.Data.(ast.NumberData).Value

	case ast.LVal:
		d := n.Data.(ast.LValData)
		if len(d.Indices) != 0 {
			diag.Error(n.Tok, "'%s' cannot be indexed in a constant expression", d.Ident)
		}
		sym, ok := lw.B.Lookup(d.Ident)
		if !ok {
			diag.Error(n.Tok, "use of undefined identifier '%s'", d.Ident)
		}
		if sym.Kind != types.SymVar || !sym.IsConst {
			diag.Error(n.Tok, "'%s' is not a constant expression", d.Ident)
		}
		return sym.ConstValue

	case ast.Unary:
		d := n.Data.(ast.UnaryData)
		v := lw.constEval(d.Rhs)
		if d.Op == ast.UNeg {
			return -v
		}
		return boolToInt32(v == 0)

	case ast.Binary:
		d := n.Data.(ast.BinaryData)
		switch d.Op {
		case ast.And:
			l := lw.constEval(d.Lhs)
			if l == 0 {
				return 0
			}
			r := lw.constEval(d.Rhs)
			return boolToInt32(r != 0)
		case ast.Or:
			l := lw.constEval(d.Lhs)
			if l != 0 {
				return 1
			}
			r := lw.constEval(d.Rhs)
			return boolToInt32(r != 0)
		}
		l := lw.constEval(d.Lhs)
		r := lw.constEval(d.Rhs)
		switch d.Op {
		case ast.Add:
			return l + r
		case ast.Sub:
			return l - r
		case ast.Mul:
			return l * r
		case ast.Div:
			if r == 0 {
				diag.Error(n.Tok, "division by zero in constant expression")
			}
			return l / r
		case ast.Mod:
			if r == 0 {
				diag.Error(n.Tok, "modulus by zero in constant expression")
			}
			return l % r
		case ast.Lt:
			return boolToInt32(l < r)
		case ast.Gt:
			return boolToInt32(l > r)
		case ast.Le:
			return boolToInt32(l <= r)
		case ast.Ge:
			return boolToInt32(l >= r)
		case ast.Eq:
			return boolToInt32(l == r)
		case ast.Neq:
			return boolToInt32(l != r)
		default:
			diag.ICE("lower: unexpected constant-expression binary op %d", d.Op)
		}

	case ast.Call:
		diag.Error(n.Tok, "function call is not a constant expression")
	}
	diag.ICE("lower: unexpected constant-expression node kind %d", n.Kind)
	return 0
}

func boolToInt32(b bool) int32 {
	if b {
		return 1
	}
	return 0
}
