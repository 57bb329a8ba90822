package parser

import (
	"github.com/hek-lang/hek/internal/ast"
	"github.com/hek-lang/hek/internal/token"
)

// parseStmt parses a basic statement and, if it is followed by ';',
// folds the remainder into a StmtSeq — spec.md §4.2's termination
// rule: end-of-file and '}' terminate a sequence, a trailing ';' is
// permitted.
func (p *Parser) parseStmt() (*ast.Stmt, error) {
	s, err := p.parseBasicStmt()
	if err != nil {
		return nil, err
	}

	tok, err := p.peek()
	if err != nil {
		return nil, err
	}
	if !isSymbol(tok, token.SymSemicolon) {
		return s, nil
	}
	p.next()

	tok, err = p.peek()
	if err != nil {
		return nil, err
	}
	if tok.Kind == token.KindEOF || isSymbol(tok, token.SymRBrace) || isSymbol(tok, token.SymSemicolon) {
		return &ast.Stmt{Kind: ast.StmtSeq, Line: s.Line, First: s}, nil
	}

	next, err := p.parseStmt()
	if err != nil {
		return nil, err
	}
	return &ast.Stmt{Kind: ast.StmtSeq, Line: s.Line, First: s, Second: next}, nil
}

func (p *Parser) parseBasicStmt() (*ast.Stmt, error) {
	tok, err := p.peek()
	if err != nil {
		return nil, err
	}

	if isSymbol(tok, token.SymLBrace) {
		return p.parseBlock()
	}

	if tok.Kind == token.KindKeyword {
		switch tok.Keyword {
		case token.KwIf:
			return p.parseIf()
		case token.KwLoop:
			return p.parseLoop()
		case token.KwBreak:
			return p.parseBreakContinue(ast.StmtBreak)
		case token.KwContinue:
			return p.parseBreakContinue(ast.StmtContinue)
		case token.KwReturn:
			return p.parseReturn()
		case token.KwLet:
			return p.parseLet()
		case token.KwFn:
			return p.parseFnDecl()
		case token.KwMod:
			return p.parseMod()
		case token.KwTrue, token.KwFalse:
			return p.parseExprStmt()
		default:
			return nil, &ParseError{Token: tok, Line: tok.Line, Context: "statement"}
		}
	}

	return p.parseExprStmt()
}

func (p *Parser) parseBlock() (*ast.Stmt, error) {
	open, _ := p.next()
	tok, err := p.peek()
	if err != nil {
		return nil, err
	}
	if isSymbol(tok, token.SymRBrace) {
		p.next()
		return &ast.Stmt{Kind: ast.StmtBlock, Line: open.Line}, nil
	}
	body, err := p.parseStmt()
	if err != nil {
		return nil, err
	}
	if err := p.expectSymbol(token.SymRBrace, "block"); err != nil {
		return nil, err
	}
	return &ast.Stmt{Kind: ast.StmtBlock, Line: open.Line, Body: body}, nil
}

func (p *Parser) parseIf() (*ast.Stmt, error) {
	ifTok, _ := p.next()
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	then, err := p.parseBasicStmt()
	if err != nil {
		return nil, err
	}
	var elseStmt *ast.Stmt
	tok, err := p.peek()
	if err != nil {
		return nil, err
	}
	if isKeyword(tok, token.KwElse) {
		p.next()
		elseStmt, err = p.parseBasicStmt()
		if err != nil {
			return nil, err
		}
	}
	return &ast.Stmt{Kind: ast.StmtIf, Line: ifTok.Line, Cond: cond, Then: then, Else: elseStmt}, nil
}

func (p *Parser) parseLoop() (*ast.Stmt, error) {
	loopTok, _ := p.next()
	label := ast.NoLabel
	tok, err := p.peek()
	if err != nil {
		return nil, err
	}
	if tok.Kind == token.KindIdentifier {
		p.next()
		label = tok.Ident
	}
	body, err := p.parseBasicStmt()
	if err != nil {
		return nil, err
	}
	return &ast.Stmt{Kind: ast.StmtLoop, Line: loopTok.Line, LoopLabel: label, LoopBody: body}, nil
}

func (p *Parser) parseBreakContinue(kind ast.StmtKind) (*ast.Stmt, error) {
	kwTok, _ := p.next()
	label := ast.NoLabel
	tok, err := p.peek()
	if err != nil {
		return nil, err
	}
	if tok.Kind == token.KindIdentifier {
		p.next()
		label = tok.Ident
	}
	return &ast.Stmt{Kind: kind, Line: kwTok.Line, Label: label}, nil
}

func (p *Parser) parseReturn() (*ast.Stmt, error) {
	retTok, _ := p.next()
	tok, err := p.peek()
	if err != nil {
		return nil, err
	}
	if tok.Kind == token.KindEOF || isSymbol(tok, token.SymSemicolon) || isSymbol(tok, token.SymRBrace) {
		return &ast.Stmt{Kind: ast.StmtReturn, Line: retTok.Line}, nil
	}
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ast.Stmt{Kind: ast.StmtReturn, Line: retTok.Line, Expression: expr}, nil
}

func (p *Parser) parseLet() (*ast.Stmt, error) {
	letTok, _ := p.next()
	idTok, err := p.next()
	if err != nil {
		return nil, err
	}
	if idTok.Kind != token.KindIdentifier {
		return nil, &ParseError{Token: idTok, Line: idTok.Line, Context: "let binding name"}
	}
	assignTok, err := p.next()
	if err != nil {
		return nil, err
	}
	if !(assignTok.Kind == token.KindOperator && assignTok.Op == token.OpAssign) {
		return nil, &ParseError{Token: assignTok, Line: assignTok.Line, Context: "let binding ="}
	}
	value, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ast.Stmt{Kind: ast.StmtLet, Line: letTok.Line, Name: idTok.Ident, Value: value}, nil
}

// parseFnDecl desugars "fn id(params) body" to "let id = fn(params) body".
func (p *Parser) parseFnDecl() (*ast.Stmt, error) {
	fnTok, _ := p.next()
	idTok, err := p.next()
	if err != nil {
		return nil, err
	}
	if idTok.Kind != token.KindIdentifier {
		return nil, &ParseError{Token: idTok, Line: idTok.Line, Context: "function name"}
	}
	if err := p.expectSymbol(token.SymLParen, "function parameter list"); err != nil {
		return nil, err
	}
	params, err := p.parseFnParams()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBasicStmt()
	if err != nil {
		return nil, err
	}
	fnExpr := &ast.Expr{Kind: ast.ExprFunc, Line: fnTok.Line, Params: params, Body: body}
	return &ast.Stmt{Kind: ast.StmtLet, Line: fnTok.Line, Name: idTok.Ident, Value: fnExpr}, nil
}

func (p *Parser) parseMod() (*ast.Stmt, error) {
	modTok, _ := p.next()
	idTok, err := p.next()
	if err != nil {
		return nil, err
	}
	if idTok.Kind != token.KindIdentifier {
		return nil, &ParseError{Token: idTok, Line: idTok.Line, Context: "module name"}
	}
	tok, err := p.peek()
	if err != nil {
		return nil, err
	}
	if !isSymbol(tok, token.SymLBrace) {
		// "mod name" with no inline body: load <name>.bcy on demand.
		return &ast.Stmt{Kind: ast.StmtModule, Line: modTok.Line, ModuleName: idTok.Ident}, nil
	}
	block, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.Stmt{Kind: ast.StmtModule, Line: modTok.Line, ModuleName: idTok.Ident, ModuleBody: block.Body}, nil
}

func (p *Parser) parseExprStmt() (*ast.Stmt, error) {
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ast.Stmt{Kind: ast.StmtExpr, Line: expr.Line, Expression: expr}, nil
}
