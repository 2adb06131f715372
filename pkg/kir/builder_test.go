package kir

import (
	"strings"
	"testing"

	"github.com/anfsity/Compile-Principle/pkg/types"
)

func TestNewBuilderRegistersPrelude(t *testing.T) {
	b := NewBuilder()
	for _, fn := range preludeFns {
		sym, ok := b.Lookup(fn.name)
		if !ok {
			t.Fatalf("prelude symbol %q not registered", fn.name)
		}
		if sym.Kind != types.SymFunc {
			t.Errorf("prelude symbol %q should be SymFunc", fn.name)
		}
		if sym.ReturnType != fn.ret {
			t.Errorf("prelude symbol %q has wrong return type", fn.name)
		}
	}
	text := b.Text()
	if !strings.Contains(text, "decl @getint()") {
		t.Errorf("expected decl @getint() in prelude text, got:\n%s", text)
	}
	if !strings.Contains(text, "decl @putint(i32)") {
		t.Errorf("expected decl @putint(i32) in prelude text, got:\n%s", text)
	}
}

func TestCounters(t *testing.T) {
	b := NewBuilder()
	if got := b.NewReg(); got != "%0" {
		t.Fatalf("first NewReg() = %q, want %%0", got)
	}
	if got := b.NewReg(); got != "%1" {
		t.Fatalf("second NewReg() = %q, want %%1", got)
	}
	if got := b.NewVar("x"); got != "@x_0" {
		t.Fatalf("first NewVar(x) = %q, want @x_0", got)
	}
	if got := b.NewLabel("then"); got != "%then_0" {
		t.Fatalf("first NewLabel(then) = %q, want %%then_0", got)
	}

	b.ResetCounters()
	if got := b.NewReg(); got != "%0" {
		t.Fatalf("NewReg() after ResetCounters = %q, want %%0", got)
	}
	if got := b.NewVar("y"); got != "@y_0" {
		t.Fatalf("NewVar(y) after ResetCounters = %q, want @y_0", got)
	}
}

func TestNextLabelID(t *testing.T) {
	b := NewBuilder()
	if got := b.NextLabelID(); got != 0 {
		t.Fatalf("first NextLabelID() = %d, want 0", got)
	}
	if got := b.NextLabelID(); got != 1 {
		t.Fatalf("second NextLabelID() = %d, want 1", got)
	}
	b.ResetCounters()
	if got := b.NextLabelID(); got != 0 {
		t.Fatalf("NextLabelID() after ResetCounters = %d, want 0", got)
	}
}

func TestBlockClosedStateMachine(t *testing.T) {
	b := NewBuilder()
	if b.BlockClosed() {
		t.Fatalf("new builder should start with an open block")
	}
	b.SetClosed()
	if !b.BlockClosed() {
		t.Fatalf("expected block closed after SetClosed")
	}
	b.ClearClosed()
	if b.BlockClosed() {
		t.Fatalf("expected block open after ClearClosed")
	}
}

func TestLoopContextStack(t *testing.T) {
	b := NewBuilder()
	if b.InLoop() {
		t.Fatalf("should not be in a loop before any PushLoop")
	}
	b.PushLoop("%continue_0", "%break_0")
	if !b.InLoop() {
		t.Fatalf("expected InLoop true after PushLoop")
	}
	if b.BreakTarget() != "%break_0" {
		t.Fatalf("BreakTarget() = %q, want %%break_0", b.BreakTarget())
	}
	if b.ContinueTarget() != "%continue_0" {
		t.Fatalf("ContinueTarget() = %q, want %%continue_0", b.ContinueTarget())
	}

	b.PushLoop("%continue_1", "%break_1")
	if b.BreakTarget() != "%break_1" {
		t.Fatalf("nested loop should shadow outer break target")
	}
	b.PopLoop()
	if b.BreakTarget() != "%break_0" {
		t.Fatalf("PopLoop should restore outer loop's break target")
	}
	b.PopLoop()
	if b.InLoop() {
		t.Fatalf("expected InLoop false after popping all loops")
	}
}

func TestEnvDelegation(t *testing.T) {
	b := NewBuilder()
	if !b.IsGlobalScope() {
		t.Fatalf("builder should start at global scope")
	}
	b.EnterScope()
	if b.IsGlobalScope() {
		t.Fatalf("expected non-global scope after EnterScope")
	}
	sym := &types.Symbol{Name: "n", Type: types.Int, Kind: types.SymVar}
	if !b.Define(sym) {
		t.Fatalf("Define should succeed in a fresh scope")
	}
	got, ok := b.Lookup("n")
	if !ok || got != sym {
		t.Fatalf("Lookup should resolve the symbol just defined")
	}
	b.ExitScope()
}
