package frontend

import (
	"testing"

	"github.com/anfsity/Compile-Principle/pkg/ast"
)

func parseSource(src string) *ast.Node {
	runes := setSource(src)
	toks := NewLexer(runes, 0).Tokenize()
	return Parse(toks)
}

func TestParseGlobalVarDecl(t *testing.T) {
	root := parseSource("int g = 5;\n")
	d := root.Data.(ast.CompUnitData)
	if len(d.Items) != 1 || d.Items[0].Kind != ast.Decl {
		t.Fatalf("expected a single Decl item, got %v", d.Items)
	}
	defs := d.Items[0].Data.(ast.DeclData).Defs
	if len(defs) != 1 || defs[0].Kind != ast.ScalarDef {
		t.Fatalf("expected a single ScalarDef, got %v", defs)
	}
	sd := defs[0].Data.(ast.ScalarDefData)
	if sd.Ident != "g" || sd.Init.Data.(ast.NumberData).Value != 5 {
		t.Fatalf("expected g = 5, got %+v", sd)
	}
}

func TestParseFunctionWithParamsAndBody(t *testing.T) {
	root := parseSource("int add(int a, int b) { return a + b; }\n")
	d := root.Data.(ast.CompUnitData)
	if len(d.Items) != 1 || d.Items[0].Kind != ast.FuncDef {
		t.Fatalf("expected a single FuncDef, got %v", d.Items)
	}
	fd := d.Items[0].Data.(ast.FuncDefData)
	if fd.Ident != "add" || fd.ReturnsVoid {
		t.Fatalf("expected non-void function 'add', got %+v", fd)
	}
	if len(fd.Params) != 2 {
		t.Fatalf("expected 2 params, got %d", len(fd.Params))
	}
	p0 := fd.Params[0].Data.(ast.FuncParamData)
	if p0.Ident != "a" || p0.IsPtr {
		t.Fatalf("expected scalar param 'a', got %+v", p0)
	}
	body := fd.Body.Data.(ast.BlockData)
	if len(body.Items) != 1 || body.Items[0].Kind != ast.Return {
		t.Fatalf("expected a single return statement, got %v", body.Items)
	}
}

func TestParseArrayParamDecaysToPointer(t *testing.T) {
	root := parseSource("void f(int arr[], int n) { return; }\n")
	fd := root.Data.(ast.CompUnitData).Items[0].Data.(ast.FuncDefData)
	if !fd.ReturnsVoid {
		t.Fatalf("expected void function")
	}
	p0 := fd.Params[0].Data.(ast.FuncParamData)
	if !p0.IsPtr || len(p0.Dims) != 0 {
		t.Fatalf("expected a bare decayed pointer param, got %+v", p0)
	}
}

func TestParseMultiDimArrayParam(t *testing.T) {
	root := parseSource("void f(int m[][4]) { return; }\n")
	fd := root.Data.(ast.CompUnitData).Items[0].Data.(ast.FuncDefData)
	p0 := fd.Params[0].Data.(ast.FuncParamData)
	if !p0.IsPtr || len(p0.Dims) != 1 {
		t.Fatalf("expected one trailing dim, got %+v", p0)
	}
	if p0.Dims[0].Data.(ast.NumberData).Value != 4 {
		t.Fatalf("expected trailing dim 4, got %+v", p0.Dims[0])
	}
}

func TestParseBinaryPrecedence(t *testing.T) {
	// 1 + 2 * 3 should parse as 1 + (2 * 3): the root binary op is '+'.
	root := parseSource("int x = 1 + 2 * 3;\n")
	sd := root.Data.(ast.CompUnitData).Items[0].Data.(ast.DeclData).Defs[0].Data.(ast.ScalarDefData)
	top := sd.Init.Data.(ast.BinaryData)
	if top.Op != ast.Add {
		t.Fatalf("expected top-level op Add, got %v", top.Op)
	}
	rhs := top.Rhs.Data.(ast.BinaryData)
	if rhs.Op != ast.Mul {
		t.Fatalf("expected right-hand side to be the Mul subexpression, got %v", rhs.Op)
	}
}

func TestParseOrLooserThanAnd(t *testing.T) {
	// a || b && c should parse as a || (b && c).
	root := parseSource("int x = a || b && c;\n")
	sd := root.Data.(ast.CompUnitData).Items[0].Data.(ast.DeclData).Defs[0].Data.(ast.ScalarDefData)
	top := sd.Init.Data.(ast.BinaryData)
	if top.Op != ast.Or {
		t.Fatalf("expected top-level op Or, got %v", top.Op)
	}
	if top.Rhs.Data.(ast.BinaryData).Op != ast.And {
		t.Fatalf("expected right-hand side to be the And subexpression")
	}
}

func TestParseAssignVsExprStmt(t *testing.T) {
	root := parseSource("int main() { x = 1; f(); return 0; }\n")
	body := root.Data.(ast.CompUnitData).Items[0].Data.(ast.FuncDefData).Body.Data.(ast.BlockData)
	if body.Items[0].Kind != ast.Assign {
		t.Fatalf("expected first statement to be Assign, got %v", body.Items[0].Kind)
	}
	if body.Items[1].Kind != ast.ExprStmt {
		t.Fatalf("expected second statement to be ExprStmt (a bare call), got %v", body.Items[1].Kind)
	}
}

func TestParseIfElseAttachesToNearestIf(t *testing.T) {
	root := parseSource(`
int main() {
  if (1)
    if (2)
      return 1;
    else
      return 2;
  return 0;
}
`)
	body := root.Data.(ast.CompUnitData).Items[0].Data.(ast.FuncDefData).Body.Data.(ast.BlockData)
	outer := body.Items[0].Data.(ast.IfData)
	if outer.Else != nil {
		t.Fatalf("outer if should have no else; the else must attach to the inner if")
	}
	inner := outer.Then.Data.(ast.IfData)
	if inner.Else == nil {
		t.Fatalf("inner if should have the else clause")
	}
}

func TestParseArrayInitializerList(t *testing.T) {
	root := parseSource("int arr[2][2] = {{1, 2}, {3, 4}};\n")
	ad := root.Data.(ast.CompUnitData).Items[0].Data.(ast.DeclData).Defs[0].Data.(ast.ArrayDefData)
	if len(ad.Dims) != 2 {
		t.Fatalf("expected 2 dims, got %d", len(ad.Dims))
	}
	items := ad.Init.Data.(ast.InitListData).Items
	if len(items) != 2 || items[0].Kind != ast.InitList {
		t.Fatalf("expected 2 nested InitList items, got %v", items)
	}
}
