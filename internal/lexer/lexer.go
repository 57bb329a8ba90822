// Package lexer turns Hek source text into a pull-based stream of
// tokens, following the teacher's single-lookahead scanning style
// (internal/lexer/lexer.go in the funvibe-funxy reference) but against
// Hek's smaller token/keyword/operator surface.
package lexer

import (
	"fmt"
	"strings"

	"github.com/hek-lang/hek/internal/token"
)

// Lexer is a pull tokenizer: Peek fills a one-token cache, Next
// consumes it. Identifiers and string literals intern into per-lexer
// tables indexed by the small integers token.Token carries.
type Lexer struct {
	input        string
	position     int
	readPosition int
	ch           byte
	line         int

	Idents  []string
	Strings []string
	identOf map[string]int

	cached    *token.Token
	lexErr    error
}

// New creates a Lexer over the given source text.
func New(input string) *Lexer {
	l := &Lexer{input: input, line: 1, identOf: make(map[string]int)}
	l.readChar()
	return l
}

// LexError reports an unrecognized operator run (spec.md §7 category 1).
type LexError struct {
	Line int
	Text string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("line %d: unknown operator %q", e.Line, e.Text)
}

func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
	}
	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
}

func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\n' {
		l.readChar()
	}
}

func isLetter(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isOperatorChar(ch byte) bool {
	if ch == 0 || ch == ';' {
		return false
	}
	if isLetter(ch) || isDigit(ch) {
		return false
	}
	switch ch {
	case ' ', '\t', '\r', '\n', '{', '}', '(', ')', '[', ']', ',', ':', '$', '"':
		return false
	}
	return true
}

func (l *Lexer) internIdent(name string) int {
	if idx, ok := l.identOf[name]; ok {
		return idx
	}
	idx := len(l.Idents)
	l.Idents = append(l.Idents, name)
	l.identOf[name] = idx
	return idx
}

func (l *Lexer) internString(s string) int {
	idx := len(l.Strings)
	l.Strings = append(l.Strings, s)
	return idx
}

// Peek returns the next token without consuming it.
func (l *Lexer) Peek() (token.Token, error) {
	if l.cached == nil {
		tok, err := l.scan()
		if err != nil {
			return token.Token{}, err
		}
		l.cached = &tok
	}
	return *l.cached, nil
}

// Next consumes and returns the next token.
func (l *Lexer) Next() (token.Token, error) {
	if l.cached != nil {
		tok := *l.cached
		l.cached = nil
		return tok, nil
	}
	return l.scan()
}

func (l *Lexer) scan() (token.Token, error) {
	l.skipWhitespace()
	line := l.line

	switch {
	case l.ch == 0:
		return token.Token{Kind: token.KindEOF, Line: line}, nil

	case l.ch == '{':
		l.readChar()
		return token.Token{Kind: token.KindSymbol, Symbol: token.SymLBrace, Line: line}, nil
	case l.ch == '}':
		l.readChar()
		return token.Token{Kind: token.KindSymbol, Symbol: token.SymRBrace, Line: line}, nil
	case l.ch == '(':
		l.readChar()
		return token.Token{Kind: token.KindSymbol, Symbol: token.SymLParen, Line: line}, nil
	case l.ch == ')':
		l.readChar()
		return token.Token{Kind: token.KindSymbol, Symbol: token.SymRParen, Line: line}, nil
	case l.ch == '[':
		l.readChar()
		return token.Token{Kind: token.KindSymbol, Symbol: token.SymLBracket, Line: line}, nil
	case l.ch == ']':
		l.readChar()
		return token.Token{Kind: token.KindSymbol, Symbol: token.SymRBracket, Line: line}, nil
	case l.ch == ';':
		l.readChar()
		return token.Token{Kind: token.KindSymbol, Symbol: token.SymSemicolon, Line: line}, nil
	case l.ch == ',':
		l.readChar()
		return token.Token{Kind: token.KindSymbol, Symbol: token.SymComma, Line: line}, nil
	case l.ch == '$':
		l.readChar()
		return token.Token{Kind: token.KindSymbol, Symbol: token.SymDollar, Line: line}, nil

	case l.ch == ':':
		if l.peekChar() == ':' {
			l.readChar()
			l.readChar()
			return token.Token{Kind: token.KindSymbol, Symbol: token.SymDoubleColon, Line: line}, nil
		}
		l.readChar()
		return token.Token{Kind: token.KindSymbol, Symbol: token.SymColon, Line: line}, nil

	case l.ch == '=' && l.peekChar() == '>':
		l.readChar()
		l.readChar()
		return token.Token{Kind: token.KindSymbol, Symbol: token.SymFatArrow, Line: line}, nil

	case l.ch == '"':
		return l.scanString(line)

	case isDigit(l.ch) || (l.ch == '-' && isDigit(l.peekChar())):
		return l.scanNumber(line)

	case isLetter(l.ch):
		return l.scanIdentOrKeyword(line)

	case isOperatorChar(l.ch):
		return l.scanOperator(line)

	default:
		ch := l.ch
		l.readChar()
		return token.Token{}, &LexError{Line: line, Text: string(ch)}
	}
}

func (l *Lexer) scanNumber(line int) (token.Token, error) {
	var sb strings.Builder
	if l.ch == '-' {
		sb.WriteByte(l.ch)
		l.readChar()
	}
	for isDigit(l.ch) {
		sb.WriteByte(l.ch)
		l.readChar()
	}
	var v int64
	fmt.Sscanf(sb.String(), "%d", &v)
	return token.Token{Kind: token.KindNumber, Int: v, Line: line}, nil
}

func (l *Lexer) scanIdentOrKeyword(line int) (token.Token, error) {
	var sb strings.Builder
	for isLetter(l.ch) || isDigit(l.ch) {
		sb.WriteByte(l.ch)
		l.readChar()
	}
	name := sb.String()
	if kw, ok := token.Keywords[name]; ok {
		return token.Token{Kind: token.KindKeyword, Keyword: kw, Line: line}, nil
	}
	return token.Token{Kind: token.KindIdentifier, Ident: l.internIdent(name), Line: line}, nil
}

func (l *Lexer) scanString(line int) (token.Token, error) {
	l.readChar() // consume opening quote
	var sb strings.Builder
	for l.ch != '"' {
		if l.ch == 0 {
			return token.Token{}, fmt.Errorf("line %d: unterminated string literal", line)
		}
		if l.ch == '\\' {
			l.readChar()
			switch l.ch {
			case '\\':
				sb.WriteByte('\\')
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case '"':
				sb.WriteByte('"')
			default:
				return token.Token{}, fmt.Errorf("line %d: unknown escape sequence \\%c", line, l.ch)
			}
			l.readChar()
			continue
		}
		sb.WriteByte(l.ch)
		l.readChar()
	}
	l.readChar() // consume closing quote
	return token.Token{Kind: token.KindString, StringLit: l.internString(sb.String()), Line: line}, nil
}

func (l *Lexer) scanOperator(line int) (token.Token, error) {
	var sb strings.Builder
	for isOperatorChar(l.ch) {
		sb.WriteByte(l.ch)
		l.readChar()
	}
	text := sb.String()
	op, ok := token.Operators[text]
	if !ok {
		return token.Token{}, &LexError{Line: line, Text: text}
	}
	return token.Token{Kind: token.KindOperator, Op: op, Line: line}, nil
}

// Line returns the lexer's current source line, used for diagnostics
// by the parser on failure.
func (l *Lexer) Line() int { return l.line }
