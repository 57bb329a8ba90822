package lexer

import (
	"testing"

	"github.com/hek-lang/hek/internal/token"
)

func allTokens(t *testing.T, input string) []token.Token {
	t.Helper()
	l := New(input)
	var out []token.Token
	for {
		tok, err := l.Next()
		if err != nil {
			t.Fatalf("unexpected lex error: %v", err)
		}
		out = append(out, tok)
		if tok.Kind == token.KindEOF {
			return out
		}
	}
}

func TestSymbolsAndPunctuation(t *testing.T) {
	toks := allTokens(t, "{ } ( ) [ ] ; , : $ => ::")
	want := []token.Symbol{
		token.SymLBrace, token.SymRBrace, token.SymLParen, token.SymRParen,
		token.SymLBracket, token.SymRBracket, token.SymSemicolon, token.SymComma,
		token.SymColon, token.SymDollar, token.SymFatArrow, token.SymDoubleColon,
	}
	if len(toks)-1 != len(want) {
		t.Fatalf("got %d tokens, want %d (+eof)", len(toks)-1, len(want))
	}
	for i, sym := range want {
		if toks[i].Kind != token.KindSymbol || toks[i].Symbol != sym {
			t.Errorf("token %d: got %+v, want symbol %v", i, toks[i], sym)
		}
	}
}

func TestColonVsDoubleColon(t *testing.T) {
	toks := allTokens(t, "a::b:c")
	kinds := []struct {
		kind token.Kind
		sym  token.Symbol
	}{
		{token.KindIdentifier, 0},
		{token.KindSymbol, token.SymDoubleColon},
		{token.KindIdentifier, 0},
		{token.KindSymbol, token.SymColon},
		{token.KindIdentifier, 0},
		{token.KindEOF, 0},
	}
	for i, want := range kinds {
		if toks[i].Kind != want.kind {
			t.Fatalf("token %d: got kind %v, want %v", i, toks[i].Kind, want.kind)
		}
		if want.kind == token.KindSymbol && toks[i].Symbol != want.sym {
			t.Fatalf("token %d: got symbol %v, want %v", i, toks[i].Symbol, want.sym)
		}
	}
}

func TestKeywordsVsIdentifiers(t *testing.T) {
	toks := allTokens(t, "fn let loop break continue return if else true false macro mod notakeyword")
	for i := 0; i < 12; i++ {
		if toks[i].Kind != token.KindKeyword {
			t.Errorf("token %d: got %v, want keyword", i, toks[i].Kind)
		}
	}
	if toks[12].Kind != token.KindIdentifier {
		t.Errorf("last token: got %v, want identifier", toks[12].Kind)
	}
}

func TestIdentifierInterning(t *testing.T) {
	l := New("foo bar foo")
	first, _ := l.Next()
	second, _ := l.Next()
	third, _ := l.Next()
	if first.Ident != third.Ident {
		t.Errorf("repeated identifier should intern to the same index: got %d and %d", first.Ident, third.Ident)
	}
	if first.Ident == second.Ident {
		t.Errorf("distinct identifiers should intern to distinct indices")
	}
	if l.Idents[first.Ident] != "foo" || l.Idents[second.Ident] != "bar" {
		t.Errorf("Idents table mismatch: %v", l.Idents)
	}
}

func TestNumbers(t *testing.T) {
	tests := []struct {
		input string
		want  int64
	}{
		{"0", 0},
		{"42", 42},
		{"-1", -1},
		{"-100", -100},
	}
	for _, tt := range tests {
		toks := allTokens(t, tt.input)
		if toks[0].Kind != token.KindNumber {
			t.Fatalf("%q: got kind %v, want number", tt.input, toks[0].Kind)
		}
		if toks[0].Int != tt.want {
			t.Errorf("%q: got %d, want %d", tt.input, toks[0].Int, tt.want)
		}
	}
}

func TestSubtractionIsNotSwallowedByNegativeNumber(t *testing.T) {
	toks := allTokens(t, "a - 1")
	if toks[0].Kind != token.KindIdentifier {
		t.Fatalf("got %v, want identifier", toks[0].Kind)
	}
	if toks[1].Kind != token.KindOperator || toks[1].Op != token.OpSub {
		t.Fatalf("got %+v, want operator '-'", toks[1])
	}
	if toks[2].Kind != token.KindNumber || toks[2].Int != 1 {
		t.Fatalf("got %+v, want number 1", toks[2])
	}
}

func TestStringEscapes(t *testing.T) {
	l := New(`"a\nb\tc\"d\\e"`)
	tok, err := l.Next()
	if err != nil {
		t.Fatalf("unexpected lex error: %v", err)
	}
	got := l.Strings[tok.StringLit]
	want := "a\nb\tc\"d\\e"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestUnterminatedString(t *testing.T) {
	l := New(`"abc`)
	if _, err := l.Next(); err == nil {
		t.Fatal("expected an error for an unterminated string literal")
	}
}

func TestUnknownOperatorFails(t *testing.T) {
	l := New("a ~ b")
	if _, err := l.Next(); err != nil {
		t.Fatalf("unexpected error scanning identifier: %v", err)
	}
	if _, err := l.Next(); err == nil {
		t.Fatal("expected a lex error for an unrecognized operator run")
	}
}

func TestOperatorTable(t *testing.T) {
	toks := allTokens(t, "+ - * / == != < > <= >= = . && ||")
	want := []token.Op{
		token.OpAdd, token.OpSub, token.OpMul, token.OpDiv, token.OpEq, token.OpNeq,
		token.OpLess, token.OpGreater, token.OpLessEq, token.OpGreaterEq,
		token.OpAssign, token.OpDot, token.OpAnd, token.OpOr,
	}
	for i, op := range want {
		if toks[i].Kind != token.KindOperator || toks[i].Op != op {
			t.Errorf("token %d: got %+v, want operator %v", i, toks[i], op)
		}
	}
}

func TestLineCounting(t *testing.T) {
	toks := allTokens(t, "a\nb\n\nc")
	if toks[0].Line != 1 {
		t.Errorf("a: got line %d, want 1", toks[0].Line)
	}
	if toks[1].Line != 2 {
		t.Errorf("b: got line %d, want 2", toks[1].Line)
	}
	if toks[2].Line != 4 {
		t.Errorf("c: got line %d, want 4", toks[2].Line)
	}
}

func TestPeekDoesNotConsume(t *testing.T) {
	l := New("a b")
	first, err := l.Peek()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := l.Peek()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Fatalf("Peek is not idempotent: %+v != %+v", first, second)
	}
	consumed, _ := l.Next()
	if consumed != first {
		t.Fatalf("Next after Peek returned a different token: %+v != %+v", consumed, first)
	}
}

func TestEOFIsSticky(t *testing.T) {
	l := New("")
	first, _ := l.Next()
	second, _ := l.Next()
	if first.Kind != token.KindEOF || second.Kind != token.KindEOF {
		t.Fatalf("expected repeated EOF, got %+v then %+v", first, second)
	}
}
