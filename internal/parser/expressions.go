package parser

import (
	"github.com/hek-lang/hek/internal/ast"
	"github.com/hek-lang/hek/internal/token"
)

var opFromToken = map[token.Op]ast.BinOp{
	token.OpAdd:        ast.OpAdd,
	token.OpSub:        ast.OpSub,
	token.OpMul:        ast.OpMul,
	token.OpDiv:        ast.OpDiv,
	token.OpEq:         ast.OpEq,
	token.OpNeq:        ast.OpNeq,
	token.OpLess:       ast.OpLess,
	token.OpGreater:    ast.OpGreater,
	token.OpLessEq:     ast.OpLessEq,
	token.OpGreaterEq:  ast.OpGreaterEq,
	token.OpAssign:     ast.OpAssign,
	token.OpDot:        ast.OpDot,
	token.OpAnd:        ast.OpAnd,
	token.OpOr:         ast.OpOr,
}

// parseExpr parses a full expression: a primary, then a postfix loop
// of calls/indexes, terminating in at most one binary operator whose
// right-hand side is parsed by recursing into parseExpr — spec.md
// §4.2's "Postfix loop" / "Binary" rules.
func (p *Parser) parseExpr() (*ast.Expr, error) {
	x, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	for {
		tok, err := p.peek()
		if err != nil {
			return nil, err
		}

		switch {
		case isSymbol(tok, token.SymLParen):
			p.next()
			args, err := p.parseCallArgs()
			if err != nil {
				return nil, err
			}
			x = &ast.Expr{Kind: ast.ExprCall, Line: x.Line, Callee: x, Args: args}

		case isSymbol(tok, token.SymLBracket):
			p.next()
			idx, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if err := p.expectSymbol(token.SymRBracket, "index expression"); err != nil {
				return nil, err
			}
			x = &ast.Expr{Kind: ast.ExprIndex, Line: x.Line, Collection: x, Index: idx}

		case tok.Kind == token.KindOperator:
			p.next()
			op, ok := opFromToken[tok.Op]
			if !ok {
				return nil, &ParseError{Token: tok, Line: tok.Line, Context: "binary expression"}
			}
			right, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			return rebalance(op, x, right), nil

		default:
			return x, nil
		}
	}
}

// rebalance implements spec.md §3's operator-precedence rebalancing:
// a right-associatively constructed binary node is rotated left
// whenever the right child's operator has strictly lower precedence
// than the new parent's, with same-precedence dot chains rotating
// unconditionally so member access left-folds. Other equal-precedence
// chains are not rotated and stay right-associative.
func rebalance(op ast.BinOp, left, right *ast.Expr) *ast.Expr {
	if right.Kind == ast.ExprBinary {
		parentPrec := ast.Precedence[op]
		rightPrec := ast.Precedence[right.Op]
		rotate := rightPrec < parentPrec || (op == ast.OpDot && right.Op == ast.OpDot)
		if rotate {
			newLeft := rebalance(op, left, right.Left)
			return rebalance(right.Op, newLeft, right.Right)
		}
	}
	return &ast.Expr{Kind: ast.ExprBinary, Line: left.Line, Op: op, Left: left, Right: right}
}

func (p *Parser) parseCallArgs() ([]*ast.Expr, error) {
	var args []*ast.Expr
	tok, err := p.peek()
	if err != nil {
		return nil, err
	}
	if isSymbol(tok, token.SymRParen) {
		p.next()
		return args, nil
	}
	for {
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)

		tok, err := p.next()
		if err != nil {
			return nil, err
		}
		if isSymbol(tok, token.SymComma) {
			continue
		}
		if isSymbol(tok, token.SymRParen) {
			return args, nil
		}
		return nil, &ParseError{Token: tok, Line: tok.Line, Context: "call argument list"}
	}
}

func (p *Parser) parsePrimary() (*ast.Expr, error) {
	tok, err := p.next()
	if err != nil {
		return nil, err
	}

	switch {
	case isSymbol(tok, token.SymLParen):
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expectSymbol(token.SymRParen, "parenthesized expression"); err != nil {
			return nil, err
		}
		return inner, nil

	case tok.Kind == token.KindIdentifier:
		return p.parseNameOrQualified(tok)

	case tok.Kind == token.KindNumber:
		return &ast.Expr{Kind: ast.ExprInt, Line: tok.Line, IntVal: tok.Int}, nil

	case tok.Kind == token.KindString:
		return &ast.Expr{Kind: ast.ExprString, Line: tok.Line, StringVal: tok.StringLit}, nil

	case isKeyword(tok, token.KwTrue):
		return &ast.Expr{Kind: ast.ExprBool, Line: tok.Line, BoolVal: true}, nil

	case isKeyword(tok, token.KwFalse):
		return &ast.Expr{Kind: ast.ExprBool, Line: tok.Line, BoolVal: false}, nil

	case isKeyword(tok, token.KwFn):
		return p.parseFuncLiteral(tok.Line)

	case isSymbol(tok, token.SymLBracket):
		return p.parseListLiteral(tok.Line)

	case isSymbol(tok, token.SymLBrace):
		return p.parseMapLiteral(tok.Line)

	default:
		return nil, &ParseError{Token: tok, Line: tok.Line, Context: "start of expression"}
	}
}

func (p *Parser) parseNameOrQualified(first token.Token) (*ast.Expr, error) {
	tok, err := p.peek()
	if err != nil {
		return nil, err
	}
	if !isSymbol(tok, token.SymDoubleColon) {
		return &ast.Expr{Kind: ast.ExprName, Line: first.Line, Ident: first.Ident}, nil
	}
	path := []int{first.Ident}
	for {
		tok, err := p.peek()
		if err != nil {
			return nil, err
		}
		if !isSymbol(tok, token.SymDoubleColon) {
			break
		}
		p.next()
		idTok, err := p.next()
		if err != nil {
			return nil, err
		}
		if idTok.Kind != token.KindIdentifier {
			return nil, &ParseError{Token: idTok, Line: idTok.Line, Context: "qualified name"}
		}
		path = append(path, idTok.Ident)
	}
	return &ast.Expr{Kind: ast.ExprQualifiedName, Line: first.Line, Path: path}, nil
}

func (p *Parser) parseFuncLiteral(line int) (*ast.Expr, error) {
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
	return &ast.Expr{Kind: ast.ExprFunc, Line: line, Params: params, Body: body}, nil
}

func (p *Parser) parseListLiteral(line int) (*ast.Expr, error) {
	var elems []*ast.Expr
	tok, err := p.peek()
	if err != nil {
		return nil, err
	}
	if isSymbol(tok, token.SymRBracket) {
		p.next()
		return &ast.Expr{Kind: ast.ExprList, Line: line, Elements: elems}, nil
	}
	for {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		elems = append(elems, e)

		tok, err := p.next()
		if err != nil {
			return nil, err
		}
		if isSymbol(tok, token.SymComma) {
			continue
		}
		if isSymbol(tok, token.SymRBracket) {
			return &ast.Expr{Kind: ast.ExprList, Line: line, Elements: elems}, nil
		}
		return nil, &ParseError{Token: tok, Line: tok.Line, Context: "list literal"}
	}
}

func (p *Parser) parseMapLiteral(line int) (*ast.Expr, error) {
	var keys []int
	var values []*ast.Expr
	tok, err := p.peek()
	if err != nil {
		return nil, err
	}
	if isSymbol(tok, token.SymRBrace) {
		p.next()
		return &ast.Expr{Kind: ast.ExprMap, Line: line, MapKeys: keys, MapValues: values}, nil
	}
	for {
		keyTok, err := p.next()
		if err != nil {
			return nil, err
		}
		if keyTok.Kind != token.KindIdentifier {
			return nil, &ParseError{Token: keyTok, Line: keyTok.Line, Context: "map literal key"}
		}
		if err := p.expectSymbol(token.SymColon, "map literal"); err != nil {
			return nil, err
		}
		val, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		keys = append(keys, keyTok.Ident)
		values = append(values, val)

		tok, err := p.next()
		if err != nil {
			return nil, err
		}
		if isSymbol(tok, token.SymComma) {
			continue
		}
		if isSymbol(tok, token.SymRBrace) {
			return &ast.Expr{Kind: ast.ExprMap, Line: line, MapKeys: keys, MapValues: values}, nil
		}
		return nil, &ParseError{Token: tok, Line: tok.Line, Context: "map literal"}
	}
}
