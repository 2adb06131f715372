// Package frontend implements the lexer and recursive-descent parser that
// produce the pkg/ast tree the core lowering consumes — the "conventional
// LALR(1) front-end" spec.md §1 treats as an external collaborator, built
// here in the donor's own hand-rolled lexer/parser style (pkg/lexer,
// pkg/parser) rather than with a generated table, generalized from the
// donor's B-language token set to this language's C-like grammar.
package frontend

import (
	"strconv"
	"unicode"

	"github.com/anfsity/Compile-Principle/pkg/diag"
	"github.com/anfsity/Compile-Principle/pkg/token"
)

// Lexer turns one source file's runes into a stream of Tokens, tracking
// line/column for diagnostics the way the donor's own lexer does.
type Lexer struct {
	source    []rune
	fileIndex int
	pos       int
	line      int
	column    int
}

func NewLexer(source []rune, fileIndex int) *Lexer {
	return &Lexer{source: source, fileIndex: fileIndex, line: 1, column: 1}
}

// Tokenize drains the whole source into a slice ending with an EOF token,
// the shape pkg/frontend's Parser expects.
func (l *Lexer) Tokenize() []token.Token {
	var toks []token.Token
	for {
		t := l.Next()
		toks = append(toks, t)
		if t.Type == token.EOF {
			return toks
		}
	}
}

func (l *Lexer) isAtEnd() bool { return l.pos >= len(l.source) }

func (l *Lexer) peek() rune {
	if l.isAtEnd() {
		return 0
	}
	return l.source[l.pos]
}

func (l *Lexer) peekNext() rune {
	if l.pos+1 >= len(l.source) {
		return 0
	}
	return l.source[l.pos+1]
}

func (l *Lexer) advance() rune {
	if l.isAtEnd() {
		return 0
	}
	ch := l.source[l.pos]
	l.pos++
	if ch == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	return ch
}

func (l *Lexer) match(expected rune) bool {
	if l.peek() != expected {
		return false
	}
	l.advance()
	return true
}

func (l *Lexer) skipWhitespaceAndComments() {
	for {
		switch l.peek() {
		case ' ', '\t', '\r', '\n':
			l.advance()
		case '/':
			if l.peekNext() == '/' {
				for !l.isAtEnd() && l.peek() != '\n' {
					l.advance()
				}
				continue
			}
			if l.peekNext() == '*' {
				l.advance()
				l.advance()
				for !l.isAtEnd() && !(l.peek() == '*' && l.peekNext() == '/') {
					l.advance()
				}
				if !l.isAtEnd() {
					l.advance()
					l.advance()
				}
				continue
			}
			return
		default:
			return
		}
	}
}

func (l *Lexer) makeToken(typ token.Type, value string, startPos, startCol, startLine int) token.Token {
	return token.Token{
		Type: typ, Value: value, FileIndex: l.fileIndex,
		Line: startLine, Column: startCol, Len: l.pos - startPos,
	}
}

func (l *Lexer) matchThen(expected rune, yes, no token.Type, startPos, startCol, startLine int) token.Token {
	if l.match(expected) {
		return l.makeToken(yes, "", startPos, startCol, startLine)
	}
	return l.makeToken(no, "", startPos, startCol, startLine)
}

// Next scans and returns the single next token, skipping whitespace and
// comments first.
func (l *Lexer) Next() token.Token {
	l.skipWhitespaceAndComments()
	startPos, startCol, startLine := l.pos, l.column, l.line

	if l.isAtEnd() {
		return l.makeToken(token.EOF, "", startPos, startCol, startLine)
	}

	ch := l.peek()
	if unicode.IsLetter(ch) || ch == '_' {
		return l.identifierOrKeyword(startPos, startCol, startLine)
	}
	if unicode.IsDigit(ch) {
		return l.number(startPos, startCol, startLine)
	}

	l.advance()
	switch ch {
	case '(':
		return l.makeToken(token.LParen, "", startPos, startCol, startLine)
	case ')':
		return l.makeToken(token.RParen, "", startPos, startCol, startLine)
	case '{':
		return l.makeToken(token.LBrace, "", startPos, startCol, startLine)
	case '}':
		return l.makeToken(token.RBrace, "", startPos, startCol, startLine)
	case '[':
		return l.makeToken(token.LBracket, "", startPos, startCol, startLine)
	case ']':
		return l.makeToken(token.RBracket, "", startPos, startCol, startLine)
	case ';':
		return l.makeToken(token.Semi, "", startPos, startCol, startLine)
	case ',':
		return l.makeToken(token.Comma, "", startPos, startCol, startLine)
	case '+':
		return l.makeToken(token.Plus, "", startPos, startCol, startLine)
	case '-':
		return l.makeToken(token.Minus, "", startPos, startCol, startLine)
	case '*':
		return l.makeToken(token.Star, "", startPos, startCol, startLine)
	case '/':
		return l.makeToken(token.Slash, "", startPos, startCol, startLine)
	case '%':
		return l.makeToken(token.Rem, "", startPos, startCol, startLine)
	case '!':
		return l.matchThen('=', token.Neq, token.Not, startPos, startCol, startLine)
	case '=':
		return l.matchThen('=', token.EqEq, token.Assign, startPos, startCol, startLine)
	case '<':
		return l.matchThen('=', token.Lte, token.Lt, startPos, startCol, startLine)
	case '>':
		return l.matchThen('=', token.Gte, token.Gt, startPos, startCol, startLine)
	case '&':
		if l.match('&') {
			return l.makeToken(token.AndAnd, "", startPos, startCol, startLine)
		}
	case '|':
		if l.match('|') {
			return l.makeToken(token.OrOr, "", startPos, startCol, startLine)
		}
	}

	tok := l.makeToken(token.EOF, "", startPos, startCol, startLine)
	diag.Error(tok, "unexpected character '%c'", ch)
	return tok
}

func (l *Lexer) identifierOrKeyword(startPos, startCol, startLine int) token.Token {
	for unicode.IsLetter(l.peek()) || unicode.IsDigit(l.peek()) || l.peek() == '_' {
		l.advance()
	}
	text := string(l.source[startPos:l.pos])
	if typ, ok := token.KeywordMap[text]; ok {
		return l.makeToken(typ, text, startPos, startCol, startLine)
	}
	return l.makeToken(token.Ident, text, startPos, startCol, startLine)
}

func (l *Lexer) number(startPos, startCol, startLine int) token.Token {
	if l.peek() == '0' && (l.peekNext() == 'x' || l.peekNext() == 'X') {
		l.advance()
		l.advance()
		for isHexDigit(l.peek()) {
			l.advance()
		}
	} else if l.peek() == '0' && isOctalDigit(l.peekNext()) {
		l.advance()
		for isOctalDigit(l.peek()) {
			l.advance()
		}
	} else {
		for unicode.IsDigit(l.peek()) {
			l.advance()
		}
	}
	text := string(l.source[startPos:l.pos])
	tok := l.makeToken(token.Number, text, startPos, startCol, startLine)
	if _, err := parseIntLiteral(text); err != nil {
		diag.Error(tok, "invalid integer literal '%s'", text)
	}
	return tok
}

func isHexDigit(r rune) bool {
	return unicode.IsDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

func isOctalDigit(r rune) bool { return r >= '0' && r <= '7' }

// parseIntLiteral accepts the 0x/0/decimal forms the lexer recognizes,
// wrapping exactly as the target's 32-bit signed integers do.
func parseIntLiteral(text string) (int32, error) {
	base := 10
	switch {
	case len(text) > 1 && (text[1] == 'x' || text[1] == 'X'):
		base = 16
		text = text[2:]
	case len(text) > 1 && text[0] == '0':
		base = 8
	}
	v, err := strconv.ParseUint(text, base, 32)
	if err != nil {
		return 0, err
	}
	return int32(v), nil
}
