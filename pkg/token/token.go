// Package token defines the lexical token kinds produced by pkg/frontend's
// Lexer and consumed by its Parser.
package token

// Type identifies the lexical category of a Token.
type Type int

const (
	EOF Type = iota
	Ident
	Number

	Const
	Int
	Void
	If
	Else
	While
	Break
	Continue
	Return

	LParen
	RParen
	LBrace
	RBrace
	LBracket
	RBracket
	Semi
	Comma

	Assign
	Plus
	Minus
	Star
	Slash
	Rem
	Not

	EqEq
	Neq
	Lt
	Gt
	Lte
	Gte
	AndAnd
	OrOr
)

// KeywordMap maps reserved identifiers to their token type.
var KeywordMap = map[string]Type{
	"const":    Const,
	"int":      Int,
	"void":     Void,
	"if":       If,
	"else":     Else,
	"while":    While,
	"break":    Break,
	"continue": Continue,
	"return":   Return,
}

// TypeStrings is the reverse mapping of KeywordMap, used for diagnostics.
var TypeStrings = make(map[Type]string)

func init() {
	for str, typ := range KeywordMap {
		TypeStrings[typ] = str
	}
}

// Token is a single lexical token together with the source position of its
// first character.
type Token struct {
	Type      Type
	Value     string
	FileIndex int
	Line      int
	Column    int
	Len       int
}
