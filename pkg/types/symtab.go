package types

import "fmt"

// SymKind distinguishes the two symbol kinds of §3.2.
type SymKind int

const (
	SymVar SymKind = iota
	SymFunc
)

// Symbol binds a source-level name to everything §3.2 requires of it.
type Symbol struct {
	Name       string
	IRName     string // "@<mangled>" for storage; empty for pure compile-time constants and declared-only funcs
	Type       *Type
	Kind       SymKind
	IsConst    bool
	ConstValue int32

	// ParamTypes/ReturnType are only meaningful for SymFunc; they let the
	// lowerer and call-site checker validate arity/usage without re-deriving
	// the signature from a separately-stored AST node.
	ParamTypes []*Type
	ReturnType *Type
}

// scope is one level of the environment: a map of declared names to their
// symbol, plus a link to the enclosing scope.
type scope struct {
	symbols map[string]*Symbol
	parent  *scope
}

func newScope(parent *scope) *scope {
	return &scope{symbols: make(map[string]*Symbol), parent: parent}
}

// Env is the stack of named scopes described by §3.2: scope 0 is the global
// scope and persists for the whole program; deeper scopes are pushed on
// function entry and at block boundaries.
type Env struct {
	global  *scope
	current *scope
}

// NewEnv creates an environment containing only the global scope.
func NewEnv() *Env {
	g := newScope(nil)
	return &Env{global: g, current: g}
}

// EnterScope pushes a new, empty scope.
func (e *Env) EnterScope() {
	e.current = newScope(e.current)
}

// ExitScope pops the innermost scope. It is a programming error to call
// this while at the global scope; callers must balance EnterScope/ExitScope
// exactly as the AST walker's block/function nesting does.
func (e *Env) ExitScope() {
	if e.current.parent == nil {
		panic("types: ExitScope called at global scope")
	}
	e.current = e.current.parent
}

// IsGlobalScope reports whether the current scope is scope 0.
func (e *Env) IsGlobalScope() bool {
	return e.current == e.global
}

// Define declares sym in the current scope. Redefinition within the same
// scope is a hard error per §3.2; the caller (pkg/lower) is responsible for
// routing that error through pkg/diag with a source position — Define
// itself just reports whether the name was already bound here.
func (e *Env) Define(sym *Symbol) bool {
	if _, exists := e.current.symbols[sym.Name]; exists {
		return false
	}
	e.current.symbols[sym.Name] = sym
	return true
}

// DefineGlobal declares sym directly in the global scope regardless of the
// current scope — used for the KIR builder's runtime-library prelude (§4.1).
// Top-level Decl/FuncDef symbols go through Define while the current scope
// is the global one.
func (e *Env) DefineGlobal(sym *Symbol) bool {
	if _, exists := e.global.symbols[sym.Name]; exists {
		return false
	}
	e.global.symbols[sym.Name] = sym
	return true
}

// Lookup searches inner-to-outer, implementing shadowing.
func (e *Env) Lookup(name string) (*Symbol, bool) {
	for s := e.current; s != nil; s = s.parent {
		if sym, ok := s.symbols[name]; ok {
			return sym, true
		}
	}
	return nil, false
}

// MustLookup is a convenience for callers that have already verified the
// name resolves (e.g. a second lookup of a name whose first lookup
// succeeded); it panics — an ICE, not a user-facing error — if not found.
func (e *Env) MustLookup(name string) *Symbol {
	sym, ok := e.Lookup(name)
	if !ok {
		panic(fmt.Sprintf("types: MustLookup(%q) failed", name))
	}
	return sym
}
