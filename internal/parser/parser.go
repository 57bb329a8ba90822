// Package parser implements Hek's recursive-descent parser: token
// stream in, ast.Stmt/ast.Expr tree out, with operator-precedence
// rebalancing folded into binary-node construction (spec.md §4.2).
// The statement/expression grammar and the parse-error-carries-token
// convention are grounded on original_source/hek/parser.cpp; this
// implementation generalizes that minimal grammar to the full surface
// spec.md describes (lists, maps, indexing, qualified names, modules).
package parser

import (
	"github.com/hek-lang/hek/internal/ast"
	"github.com/hek-lang/hek/internal/lexer"
	"github.com/hek-lang/hek/internal/token"
)

// Parser drives a Lexer to build an AST.
type Parser struct {
	lex *lexer.Lexer
}

// New creates a Parser over the given Lexer.
func New(lex *lexer.Lexer) *Parser {
	return &Parser{lex: lex}
}

// ParseProgram parses the whole token stream as a (possibly nil)
// sequence statement, terminating at end-of-stream.
func (p *Parser) ParseProgram() (*ast.Stmt, error) {
	tok, err := p.lex.Peek()
	if err != nil {
		return nil, err
	}
	if tok.Kind == token.KindEOF {
		return nil, nil
	}
	prog, err := p.parseStmt()
	if err != nil {
		return nil, err
	}
	tok, err = p.peek()
	if err != nil {
		return nil, err
	}
	if tok.Kind != token.KindEOF {
		return nil, &ParseError{Token: tok, Line: tok.Line, Context: "program"}
	}
	return prog, nil
}

func (p *Parser) next() (token.Token, error)  { return p.lex.Next() }
func (p *Parser) peek() (token.Token, error)  { return p.lex.Peek() }

func (p *Parser) expectSymbol(sym token.Symbol, context string) error {
	tok, err := p.next()
	if err != nil {
		return err
	}
	if tok.Kind != token.KindSymbol || tok.Symbol != sym {
		return &ParseError{Token: tok, Line: tok.Line, Context: context}
	}
	return nil
}

func isSymbol(tok token.Token, sym token.Symbol) bool {
	return tok.Kind == token.KindSymbol && tok.Symbol == sym
}

func isKeyword(tok token.Token, kw token.Keyword) bool {
	return tok.Kind == token.KindKeyword && tok.Keyword == kw
}

// parseFnParams parses "(" id, ... ")" — the opening paren has
// already been consumed by the caller, mirroring
// original_source/hek/parser.cpp's parse_fn_args.
func (p *Parser) parseFnParams() ([]int, error) {
	var params []int
	tok, err := p.peek()
	if err != nil {
		return nil, err
	}
	if isSymbol(tok, token.SymRParen) {
		p.next()
		return params, nil
	}
	for {
		tok, err := p.next()
		if err != nil {
			return nil, err
		}
		if tok.Kind != token.KindIdentifier {
			return nil, &ParseError{Token: tok, Line: tok.Line, Context: "function parameter list"}
		}
		params = append(params, tok.Ident)

		tok, err = p.next()
		if err != nil {
			return nil, err
		}
		if isSymbol(tok, token.SymComma) {
			continue
		}
		if isSymbol(tok, token.SymRParen) {
			return params, nil
		}
		return nil, &ParseError{Token: tok, Line: tok.Line, Context: "function parameter list"}
	}
}
