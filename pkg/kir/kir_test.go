package kir

import (
	"testing"

	"github.com/anfsity/Compile-Principle/pkg/types"
)

func TestBinOpMnemonics(t *testing.T) {
	cases := []struct {
		op   BinOp
		want string
	}{
		{OpAdd, "add"},
		{OpSub, "sub"},
		{OpMul, "mul"},
		{OpDiv, "div"},
		{OpMod, "mod"},
		{OpAnd, "and"},
		{OpOr, "or"},
		{OpXor, "xor"},
		{OpShl, "shl"},
		{OpShr, "shr"},
		{OpSar, "sar"},
		{OpLt, "lt"},
		{OpGt, "gt"},
		{OpLe, "le"},
		{OpGe, "ge"},
		{OpEq, "eq"},
		{OpNeq, "ne"},
	}
	for _, c := range cases {
		if got := c.op.Mnemonic(); got != c.want {
			t.Errorf("Mnemonic(%d) = %q, want %q", c.op, got, c.want)
		}
	}
}

func TestNewIntegerIsUnnamed(t *testing.T) {
	v := NewInteger(42)
	if v.Kind != KInteger {
		t.Fatalf("expected KInteger, got %v", v.Kind)
	}
	if v.Name != "" {
		t.Fatalf("integer constants should never carry a Name, got %q", v.Name)
	}
	if v.Data.(IntegerData).Value != 42 {
		t.Fatalf("expected Value 42, got %d", v.Data.(IntegerData).Value)
	}
}

func TestNewFuncArgRef(t *testing.T) {
	v := NewFuncArgRef(1, types.Int, "@n")
	if v.Kind != KFuncArgRef {
		t.Fatalf("expected KFuncArgRef, got %v", v.Kind)
	}
	if v.Name != "@n" {
		t.Fatalf("expected Name @n, got %q", v.Name)
	}
	if v.Data.(FuncArgRefData).Index != 1 {
		t.Fatalf("expected Index 1, got %d", v.Data.(FuncArgRefData).Index)
	}
}

func TestFunctionDeclOnlyHasNoBlocks(t *testing.T) {
	f := &Function{Name: "getint", RetType: types.Int}
	if len(f.Blocks) != 0 {
		t.Fatalf("decl-only function should have zero blocks")
	}
}
