package frontend

import (
	"testing"

	"github.com/anfsity/Compile-Principle/pkg/diag"
	"github.com/anfsity/Compile-Principle/pkg/token"
)

func setSource(src string) []rune {
	runes := []rune(src)
	diag.SetSourceFiles([]diag.SourceFileRecord{{Name: "test.sy", Content: runes}})
	return runes
}

func tokenTypes(toks []token.Token) []token.Type {
	types := make([]token.Type, len(toks))
	for i, t := range toks {
		types[i] = t.Type
	}
	return types
}

func TestTokenizeKeywordsAndPunctuation(t *testing.T) {
	src := setSource("const int x = 1;")
	toks := NewLexer(src, 0).Tokenize()
	want := []token.Type{token.Const, token.Int, token.Ident, token.Assign, token.Number, token.Semi, token.EOF}
	got := tokenTypes(toks)
	if len(got) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestTokenizeTwoCharOperators(t *testing.T) {
	src := setSource("a == b != c <= d >= e && f || g")
	toks := NewLexer(src, 0).Tokenize()
	var ops []token.Type
	for _, tk := range toks {
		switch tk.Type {
		case token.EqEq, token.Neq, token.Lte, token.Gte, token.AndAnd, token.OrOr:
			ops = append(ops, tk.Type)
		}
	}
	want := []token.Type{token.EqEq, token.Neq, token.Lte, token.Gte, token.AndAnd, token.OrOr}
	if len(ops) != len(want) {
		t.Fatalf("got %d two-char operators, want %d", len(ops), len(want))
	}
	for i := range want {
		if ops[i] != want[i] {
			t.Errorf("operator %d: got %v, want %v", i, ops[i], want[i])
		}
	}
}

func TestTokenizeSkipsComments(t *testing.T) {
	src := setSource("int x; // trailing comment\n/* block\ncomment */ int y;")
	toks := NewLexer(src, 0).Tokenize()
	count := 0
	for _, tk := range toks {
		if tk.Type == token.Ident {
			count++
		}
	}
	if count != 2 {
		t.Fatalf("expected 2 identifiers (x, y) after comments stripped, got %d", count)
	}
}

func TestNumberLiteralBases(t *testing.T) {
	cases := []struct {
		text string
		want int32
	}{
		{"0", 0},
		{"42", 42},
		{"010", 8},     // octal
		{"0x2A", 42},   // hex
		{"0X2a", 42},   // hex, mixed case
	}
	for _, c := range cases {
		got, err := parseIntLiteral(c.text)
		if err != nil {
			t.Fatalf("parseIntLiteral(%q) returned error: %v", c.text, err)
		}
		if got != c.want {
			t.Errorf("parseIntLiteral(%q) = %d, want %d", c.text, got, c.want)
		}
	}
}

func TestTokenizeIdentifierWithUnderscoreAndDigits(t *testing.T) {
	src := setSource("_foo1 bar_2")
	toks := NewLexer(src, 0).Tokenize()
	if toks[0].Type != token.Ident || toks[0].Value != "_foo1" {
		t.Fatalf("expected identifier _foo1, got %v %q", toks[0].Type, toks[0].Value)
	}
	if toks[1].Type != token.Ident || toks[1].Value != "bar_2" {
		t.Fatalf("expected identifier bar_2, got %v %q", toks[1].Type, toks[1].Value)
	}
}
