package lower

import (
	"strings"

	"github.com/anfsity/Compile-Principle/pkg/ast"
	"github.com/anfsity/Compile-Principle/pkg/diag"
	"github.com/anfsity/Compile-Principle/pkg/kir"
	"github.com/anfsity/Compile-Principle/pkg/token"
	"github.com/anfsity/Compile-Principle/pkg/types"
)

func prod(dims []int) int {
	p := 1
	for _, d := range dims {
		p *= d
	}
	return p
}

// flattenList implements §4.2.3's two rules. A scalar item consumes one
// slot of the current level and advances the cursor (Flow mode). A nested
// InitList item always describes exactly one sub-array one dimension
// narrower than the level it appears at (Align mode): before it is
// consumed, the cursor is padded with zero up to the start of the next
// unfilled sub-array (a multiple of that sub-array's size), so a brace
// group can never straddle a row boundary. The nested list is then filled
// on its own, padded with zero if it underfills. Overflow at any level —
// more elements than the level's slot count — is a hard error; underfill
// pads with zero.
func (lw *Lowering) flattenList(items []*ast.Node, dims []int, global bool, tok token.Token) []Handle {
	total := prod(dims)
	out := make([]Handle, 0, total)

	for _, item := range items {
		if len(out) >= total {
			diag.Error(tok, "excess elements in array initializer")
		}
		if item.Kind == ast.InitList {
			if len(dims) < 2 {
				diag.Error(item.Tok, "braces around scalar initializer")
			}
			rowSize := prod(dims[1:])
			if rem := len(out) % rowSize; rem != 0 {
				for i := 0; i < rowSize-rem; i++ {
					out = append(out, Literal(0))
				}
			}
			sub := lw.flattenList(item.Data.(ast.InitListData).Items, dims[1:], global, item.Tok)
			out = append(out, sub...)
			continue
		}
		if global {
			out = append(out, Literal(lw.constEval(item)))
		} else {
			out = append(out, lw.lowerExpr(item))
		}
	}

	if len(out) > total {
		diag.Error(tok, "excess elements in array initializer")
	}
	for len(out) < total {
		out = append(out, Literal(0))
	}
	return out
}

// nestAggregate rebuilds a flat, row-major element list into the nested
// Aggregate tree (and matching brace text) that §6.1's init_expr grammar
// and §4.3's globals pass expect, shaped by dims.
func (lw *Lowering) nestAggregate(flat []Handle, dims []int, typ *types.Type) (*kir.Value, string) {
	if len(dims) == 1 {
		elems := make([]*kir.Value, dims[0])
		texts := make([]string, dims[0])
		for i := 0; i < dims[0]; i++ {
			elems[i] = flat[i].AsValue()
			texts[i] = flat[i].Text()
		}
		return kir.NewAggregate(typ, elems), "{" + strings.Join(texts, ", ") + "}"
	}

	rowSize := prod(dims[1:])
	elems := make([]*kir.Value, dims[0])
	texts := make([]string, dims[0])
	for i := 0; i < dims[0]; i++ {
		sub := flat[i*rowSize : (i+1)*rowSize]
		v, t := lw.nestAggregate(sub, dims[1:], typ.Base)
		elems[i] = v
		texts[i] = t
	}
	return kir.NewAggregate(typ, elems), "{" + strings.Join(texts, ", ") + "}"
}

// storeFlatInit stores a flattened, row-major element list into a local
// array's storage one element at a time, walking one GetElemPtr per
// dimension from the array's own address — §4.2.2's rule for local array
// initializers ("stored element-by-element via getelemptr walks").
func (lw *Lowering) storeFlatInit(addr *kir.Value, flat []Handle, dims []int) {
	for i, h := range flat {
		elemAddr := addr
		rem := i
		for d := 0; d < len(dims); d++ {
			stride := prod(dims[d+1:])
			idx := rem / stride
			rem %= stride
			elemAddr = lw.emitGetElemPtr(elemAddr, Literal(int32(idx)))
		}
		lw.emitStore(h, elemAddr)
	}
}
