// Package ast defines the Abstract Syntax Tree (§3.4) produced by
// pkg/frontend and consumed by pkg/lower. Following the donor's own
// ast.Node{Type, Tok, Data} shape, every node is one struct carrying a
// Kind tag, its source token, and an opaque Data payload — there is no
// per-kind Go type hierarchy, so pkg/lower switches on Kind rather than
// using interfaces or dynamic dispatch.
package ast

import "github.com/anfsity/Compile-Principle/pkg/token"

// Kind discriminates the node families of §3.4.
type Kind int

const (
	// Program / declarations
	CompUnit Kind = iota
	Decl
	ScalarDef
	ArrayDef
	FuncDef
	FuncParam

	// Statements
	Block
	ExprStmt
	Assign
	If
	While
	Break
	Continue
	Return

	// Expressions
	Number
	LVal
	Unary
	Binary
	Call

	// Initializers
	InitList
)

// Node is the single AST node type. It carries no type information;
// pkg/lower resolves types from the symbol environment while it walks.
type Node struct {
	Kind Kind
	Tok  token.Token
	Data interface{}
}

// UnOp enumerates the prefix operators of §3.4's Unary node.
type UnOp int

const (
	UNeg UnOp = iota
	UNot
)

// BinOp enumerates the operators of §3.4's Binary node. And/Or are the
// short-circuit logical operators (&&, ||); pkg/lower gives them the
// branch-and-temp lowering of §4.2.2 instead of emitting a single KIR
// Binary instruction for them.
type BinOp int

const (
	Add BinOp = iota
	Sub
	Mul
	Div
	Mod
	Lt
	Gt
	Le
	Ge
	Eq
	Neq
	And
	Or
)

// --- Node Data payloads ---

// CompUnitData holds the top-level sequence of Decl and FuncDef nodes.
type CompUnitData struct {
	Items []*Node
}

// DeclData holds a `const`/plain declaration grouping one or more defs
// that share a base type, per §3.4's Decl(is_const, base_type, defs).
type DeclData struct {
	IsConst  bool
	BaseType string // always "int" in this language; kept as a token spelling for diagnostics
	Defs     []*Node
}

// ScalarDefData is a non-array definition, optionally initialized.
type ScalarDefData struct {
	Ident string
	Init  *Node // nil if uninitialized
}

// ArrayDefData is an array definition. Dims holds one constant-expression
// node per declared dimension (outermost first); Init is nil, or an
// InitList node per §4.2.3.
type ArrayDefData struct {
	Ident string
	Dims  []*Node
	Init  *Node
}

// FuncParamData describes one formal parameter. IsPtr/Dims let a
// parameter be declared as a pointer-to-array (the only way this
// language passes arrays), where Dims holds the *inner* dimensions only
// (the outermost dimension is elided in the parameter's own type).
type FuncParamData struct {
	Ident string
	IsPtr bool
	Dims  []*Node
}

// FuncDefData holds a function definition. ReturnsVoid distinguishes
// `void` from `int` return type per §3.1.
type FuncDefData struct {
	Ident       string
	ReturnsVoid bool
	Params      []*Node // FuncParam nodes carrying FuncParamData
	Body        *Node   // Block
}

// BlockData holds the statement/declaration sequence of a compound
// statement's own scope.
type BlockData struct {
	Items []*Node
}

// ExprStmtData wraps a bare expression statement; Expr is nil for the
// empty statement `;`.
type ExprStmtData struct {
	Expr *Node
}

// AssignData holds an lvalue assignment statement.
type AssignData struct {
	LVal *Node
	Expr *Node
}

// IfData holds a conditional; Else is nil when there is no else-branch.
type IfData struct {
	Cond *Node
	Then *Node
	Else *Node
}

// WhileData holds a while-loop.
type WhileData struct {
	Cond *Node
	Body *Node
}

// ReturnData holds a return statement; Expr is nil for `return;` in a
// void function.
type ReturnData struct {
	Expr *Node
}

// NumberData holds an integer literal.
type NumberData struct {
	Value int32
}

// LValData holds a variable or array-element reference. Indices is empty
// for a bare scalar reference, or one expression node per subscript.
type LValData struct {
	Ident   string
	Indices []*Node
}

// UnaryData holds a prefix unary expression.
type UnaryData struct {
	Op  UnOp
	Rhs *Node
}

// BinaryData holds a binary expression.
type BinaryData struct {
	Op  BinOp
	Lhs *Node
	Rhs *Node
}

// CallData holds a function-call expression.
type CallData struct {
	Ident string
	Args  []*Node
}

// InitListData holds one brace level of an initializer per §4.2.3. Each
// element of Items is either a scalar expression node or a nested
// InitList node; flattening happens in pkg/lower, not here.
type InitListData struct {
	Items []*Node
}
