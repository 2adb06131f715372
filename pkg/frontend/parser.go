package frontend

import (
	"github.com/anfsity/Compile-Principle/pkg/ast"
	"github.com/anfsity/Compile-Principle/pkg/diag"
	"github.com/anfsity/Compile-Principle/pkg/token"
)

// Parser is a hand-written recursive-descent parser over a pre-tokenized
// stream, one method per grammar production, following the donor's own
// pkg/parser.Parser shape.
type Parser struct {
	tokens  []token.Token
	pos     int
	current token.Token
}

func NewParser(tokens []token.Token) *Parser {
	p := &Parser{tokens: tokens}
	if len(tokens) > 0 {
		p.current = tokens[0]
	}
	return p
}

func (p *Parser) advance() token.Token {
	prev := p.current
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	p.current = p.tokens[p.pos]
	return prev
}

func (p *Parser) check(t token.Type) bool { return p.current.Type == t }

func (p *Parser) match(t token.Type) bool {
	if !p.check(t) {
		return false
	}
	p.advance()
	return true
}

func (p *Parser) expect(t token.Type, what string) token.Token {
	if !p.check(t) {
		diag.Error(p.current, "expected %s", what)
	}
	return p.advance()
}

// Parse consumes the whole token stream and returns the CompUnit root.
func Parse(tokens []token.Token) *ast.Node {
	p := NewParser(tokens)
	return p.parseCompUnit()
}

func (p *Parser) parseCompUnit() *ast.Node {
	tok := p.current
	var items []*ast.Node
	for !p.check(token.EOF) {
		items = append(items, p.parseGlobalItem())
	}
	return &ast.Node{Kind: ast.CompUnit, Tok: tok, Data: ast.CompUnitData{Items: items}}
}

// parseGlobalItem disambiguates Decl from FuncDef by looking two tokens
// ahead: base-type ident is a function definition iff followed by '('.
func (p *Parser) parseGlobalItem() *ast.Node {
	if p.check(token.Const) {
		return p.parseDecl()
	}
	// current is Int or Void; Void can only start a FuncDef.
	if p.check(token.Void) {
		return p.parseFuncDef()
	}
	if p.pos+2 < len(p.tokens) && p.tokens[p.pos+2].Type == token.LParen {
		return p.parseFuncDef()
	}
	return p.parseDecl()
}

// parseDecl parses `['const'] 'int' Def (',' Def)* ';'`.
func (p *Parser) parseDecl() *ast.Node {
	tok := p.current
	isConst := p.match(token.Const)
	p.expect(token.Int, "'int'")

	var defs []*ast.Node
	defs = append(defs, p.parseDef(isConst))
	for p.match(token.Comma) {
		defs = append(defs, p.parseDef(isConst))
	}
	p.expect(token.Semi, "';'")
	return &ast.Node{Kind: ast.Decl, Tok: tok, Data: ast.DeclData{IsConst: isConst, BaseType: "int", Defs: defs}}
}

func (p *Parser) parseDef(isConst bool) *ast.Node {
	tok := p.current
	ident := p.expect(token.Ident, "identifier").Value

	if p.check(token.LBracket) {
		var dims []*ast.Node
		for p.match(token.LBracket) {
			dims = append(dims, p.parseExpr())
			p.expect(token.RBracket, "']'")
		}
		var init *ast.Node
		if p.match(token.Assign) {
			init = p.parseInitVal()
		} else if isConst {
			diag.Error(tok, "const '%s' requires an initializer", ident)
		}
		return &ast.Node{Kind: ast.ArrayDef, Tok: tok, Data: ast.ArrayDefData{Ident: ident, Dims: dims, Init: init}}
	}

	var init *ast.Node
	if p.match(token.Assign) {
		init = p.parseExpr()
	} else if isConst {
		diag.Error(tok, "const '%s' requires an initializer", ident)
	}
	return &ast.Node{Kind: ast.ScalarDef, Tok: tok, Data: ast.ScalarDefData{Ident: ident, Init: init}}
}

// parseInitVal parses either a bare expression or a brace-delimited list
// of InitVals, per §3.4's InitVal.
func (p *Parser) parseInitVal() *ast.Node {
	tok := p.current
	if !p.check(token.LBrace) {
		return p.parseExpr()
	}
	p.advance()
	var items []*ast.Node
	if !p.check(token.RBrace) {
		items = append(items, p.parseInitVal())
		for p.match(token.Comma) {
			if p.check(token.RBrace) {
				break
			}
			items = append(items, p.parseInitVal())
		}
	}
	p.expect(token.RBrace, "'}'")
	return &ast.Node{Kind: ast.InitList, Tok: tok, Data: ast.InitListData{Items: items}}
}

// parseFuncDef parses `('void'|'int') Ident '(' [Params] ')' Block`.
func (p *Parser) parseFuncDef() *ast.Node {
	tok := p.current
	returnsVoid := p.match(token.Void)
	if !returnsVoid {
		p.expect(token.Int, "'void' or 'int'")
	}
	ident := p.expect(token.Ident, "identifier").Value
	p.expect(token.LParen, "'('")

	var params []*ast.Node
	if !p.check(token.RParen) {
		params = append(params, p.parseFuncParam())
		for p.match(token.Comma) {
			params = append(params, p.parseFuncParam())
		}
	}
	p.expect(token.RParen, "')'")

	body := p.parseBlock()
	return &ast.Node{Kind: ast.FuncDef, Tok: tok, Data: ast.FuncDefData{
		Ident: ident, ReturnsVoid: returnsVoid, Params: params, Body: body,
	}}
}

// parseFuncParam parses `'int' Ident ['[' ']' ('[' ConstExpr ']')*]`. The
// first empty `[]` marks array decay; any following brackets are the
// fixed trailing shape, matching §3.4's FuncParam.dims convention.
func (p *Parser) parseFuncParam() *ast.Node {
	tok := p.current
	p.expect(token.Int, "'int'")
	ident := p.expect(token.Ident, "identifier").Value

	if !p.check(token.LBracket) {
		return &ast.Node{Kind: ast.FuncParam, Tok: tok, Data: ast.FuncParamData{Ident: ident, IsPtr: false}}
	}

	p.advance()
	p.expect(token.RBracket, "']'")
	var dims []*ast.Node
	for p.match(token.LBracket) {
		dims = append(dims, p.parseExpr())
		p.expect(token.RBracket, "']'")
	}
	return &ast.Node{Kind: ast.FuncParam, Tok: tok, Data: ast.FuncParamData{Ident: ident, IsPtr: true, Dims: dims}}
}

func (p *Parser) parseBlock() *ast.Node {
	tok := p.expect(token.LBrace, "'{'")
	var items []*ast.Node
	for !p.check(token.RBrace) && !p.check(token.EOF) {
		items = append(items, p.parseBlockItem())
	}
	p.expect(token.RBrace, "'}'")
	return &ast.Node{Kind: ast.Block, Tok: tok, Data: ast.BlockData{Items: items}}
}

func (p *Parser) parseBlockItem() *ast.Node {
	if p.check(token.Const) || p.check(token.Int) {
		return p.parseDecl()
	}
	return p.parseStmt()
}

func (p *Parser) parseStmt() *ast.Node {
	tok := p.current
	switch {
	case p.check(token.LBrace):
		return p.parseBlock()

	case p.check(token.If):
		p.advance()
		p.expect(token.LParen, "'('")
		cond := p.parseExpr()
		p.expect(token.RParen, "')'")
		then := p.parseStmt()
		var elseStmt *ast.Node
		if p.match(token.Else) {
			elseStmt = p.parseStmt()
		}
		return &ast.Node{Kind: ast.If, Tok: tok, Data: ast.IfData{Cond: cond, Then: then, Else: elseStmt}}

	case p.check(token.While):
		p.advance()
		p.expect(token.LParen, "'('")
		cond := p.parseExpr()
		p.expect(token.RParen, "')'")
		body := p.parseStmt()
		return &ast.Node{Kind: ast.While, Tok: tok, Data: ast.WhileData{Cond: cond, Body: body}}

	case p.check(token.Break):
		p.advance()
		p.expect(token.Semi, "';'")
		return &ast.Node{Kind: ast.Break, Tok: tok}

	case p.check(token.Continue):
		p.advance()
		p.expect(token.Semi, "';'")
		return &ast.Node{Kind: ast.Continue, Tok: tok}

	case p.check(token.Return):
		p.advance()
		var expr *ast.Node
		if !p.check(token.Semi) {
			expr = p.parseExpr()
		}
		p.expect(token.Semi, "';'")
		return &ast.Node{Kind: ast.Return, Tok: tok, Data: ast.ReturnData{Expr: expr}}

	case p.check(token.Semi):
		p.advance()
		return &ast.Node{Kind: ast.ExprStmt, Tok: tok, Data: ast.ExprStmtData{}}

	default:
		return p.parseExprOrAssignStmt()
	}
}

// parseExprOrAssignStmt resolves the grammar's LVal-vs-Exp ambiguity by
// parsing a full expression first; if it turns out to be a bare LVal and
// is immediately followed by '=', it was an assignment target.
func (p *Parser) parseExprOrAssignStmt() *ast.Node {
	tok := p.current
	expr := p.parseExpr()
	if expr.Kind == ast.LVal && p.match(token.Assign) {
		rhs := p.parseExpr()
		p.expect(token.Semi, "';'")
		return &ast.Node{Kind: ast.Assign, Tok: tok, Data: ast.AssignData{LVal: expr, Expr: rhs}}
	}
	p.expect(token.Semi, "';'")
	return &ast.Node{Kind: ast.ExprStmt, Tok: tok, Data: ast.ExprStmtData{Expr: expr}}
}

// --- Expressions, precedence-climbing per §3.4's Binary op set ---

func binOpPrecedence(t token.Type) (int, ast.BinOp) {
	switch t {
	case token.Star:
		return 6, ast.Mul
	case token.Slash:
		return 6, ast.Div
	case token.Rem:
		return 6, ast.Mod
	case token.Plus:
		return 5, ast.Add
	case token.Minus:
		return 5, ast.Sub
	case token.Lt:
		return 4, ast.Lt
	case token.Gt:
		return 4, ast.Gt
	case token.Lte:
		return 4, ast.Le
	case token.Gte:
		return 4, ast.Ge
	case token.EqEq:
		return 3, ast.Eq
	case token.Neq:
		return 3, ast.Neq
	case token.AndAnd:
		return 2, ast.And
	case token.OrOr:
		return 1, ast.Or
	default:
		return -1, 0
	}
}

func (p *Parser) parseExpr() *ast.Node { return p.parseBinary(1) }

func (p *Parser) parseBinary(minPrec int) *ast.Node {
	left := p.parseUnary()
	for {
		prec, op := binOpPrecedence(p.current.Type)
		if prec < minPrec {
			return left
		}
		tok := p.advance()
		right := p.parseBinary(prec + 1)
		left = &ast.Node{Kind: ast.Binary, Tok: tok, Data: ast.BinaryData{Op: op, Lhs: left, Rhs: right}}
	}
}

func (p *Parser) parseUnary() *ast.Node {
	tok := p.current
	switch p.current.Type {
	case token.Minus:
		p.advance()
		return &ast.Node{Kind: ast.Unary, Tok: tok, Data: ast.UnaryData{Op: ast.UNeg, Rhs: p.parseUnary()}}
	case token.Not:
		p.advance()
		return &ast.Node{Kind: ast.Unary, Tok: tok, Data: ast.UnaryData{Op: ast.UNot, Rhs: p.parseUnary()}}
	case token.Plus:
		p.advance()
		return p.parseUnary()
	default:
		return p.parsePostfix()
	}
}

// parsePostfix parses a primary expression, then any trailing index or
// call suffixes — an LVal's `[idx]*` chain or a call's `(args)`.
func (p *Parser) parsePostfix() *ast.Node {
	tok := p.current

	if p.check(token.Ident) && p.pos+1 < len(p.tokens) && p.tokens[p.pos+1].Type == token.LParen {
		ident := p.advance().Value
		p.advance() // '('
		var args []*ast.Node
		if !p.check(token.RParen) {
			args = append(args, p.parseExpr())
			for p.match(token.Comma) {
				args = append(args, p.parseExpr())
			}
		}
		p.expect(token.RParen, "')'")
		return &ast.Node{Kind: ast.Call, Tok: tok, Data: ast.CallData{Ident: ident, Args: args}}
	}

	if p.check(token.Ident) {
		ident := p.advance().Value
		var indices []*ast.Node
		for p.match(token.LBracket) {
			indices = append(indices, p.parseExpr())
			p.expect(token.RBracket, "']'")
		}
		return &ast.Node{Kind: ast.LVal, Tok: tok, Data: ast.LValData{Ident: ident, Indices: indices}}
	}

	if p.check(token.Number) {
		text := p.advance().Value
		v, err := parseIntLiteral(text)
		if err != nil {
			diag.Error(tok, "invalid integer literal '%s'", text)
		}
		return &ast.Node{Kind: ast.Number, Tok: tok, Data: ast.NumberData{Value: v}}
	}

	if p.match(token.LParen) {
		expr := p.parseExpr()
		p.expect(token.RParen, "')'")
		return expr
	}

	diag.Error(tok, "expected an expression")
	return nil
}
