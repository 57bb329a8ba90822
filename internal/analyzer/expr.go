package analyzer

import (
	"fmt"

	"github.com/hek-lang/hek/internal/ast"
	"github.com/hek-lang/hek/internal/vm"
)

var binOpKind = map[ast.BinOp]vm.BinOpKind{
	ast.OpAdd:       vm.BinAdd,
	ast.OpSub:       vm.BinSub,
	ast.OpMul:       vm.BinMul,
	ast.OpDiv:       vm.BinDiv,
	ast.OpEq:        vm.BinEq,
	ast.OpNeq:       vm.BinNeq,
	ast.OpLess:      vm.BinLess,
	ast.OpGreater:   vm.BinGreater,
	ast.OpLessEq:    vm.BinLessEq,
	ast.OpGreaterEq: vm.BinGreaterEq,
	ast.OpAnd:       vm.BinAnd,
	ast.OpOr:        vm.BinOr,
}

func (a *Analyzer) lowerExpr(e *ast.Expr) ([]vm.Instruction, error) {
	if e == nil {
		return []vm.Instruction{nilLiteral(0)}, nil
	}

	switch e.Kind {
	case ast.ExprName:
		return []vm.Instruction{{Op: vm.OpGet, Line: e.Line, Name: a.name(e.Ident)}}, nil

	case ast.ExprQualifiedName:
		return []vm.Instruction{{Op: vm.OpGetQualified, Line: e.Line, Path: a.names(e.Path)}}, nil

	case ast.ExprInt:
		return []vm.Instruction{{Op: vm.OpLiteral, Line: e.Line, Literal: vm.Int(e.IntVal)}}, nil

	case ast.ExprString:
		return []vm.Instruction{{Op: vm.OpLiteral, Line: e.Line, Literal: vm.Str(a.str(e.StringVal))}}, nil

	case ast.ExprBool:
		return []vm.Instruction{{Op: vm.OpLiteral, Line: e.Line, Literal: vm.Bool(e.BoolVal)}}, nil

	case ast.ExprList:
		return a.lowerList(e)

	case ast.ExprMap:
		return a.lowerMap(e)

	case ast.ExprNot:
		operand, err := a.lowerExpr(e.Operand)
		if err != nil {
			return nil, err
		}
		return append(operand, vm.Instruction{Op: vm.OpLogNot, Line: e.Line}), nil

	case ast.ExprFunc:
		return a.lowerFunc(e)

	case ast.ExprCall:
		return a.lowerCall(e.Callee, e.Args, e.Line)

	case ast.ExprIndex:
		coll, err := a.lowerExpr(e.Collection)
		if err != nil {
			return nil, err
		}
		idx, err := a.lowerExpr(e.Index)
		if err != nil {
			return nil, err
		}
		out := append(coll, idx...)
		return append(out, vm.Instruction{Op: vm.OpGetIndex, Line: e.Line}), nil

	case ast.ExprBinary:
		return a.lowerBinary(e)

	default:
		return nil, fmt.Errorf("analyzer: unhandled expression kind %v at line %d", e.Kind, e.Line)
	}
}

func (a *Analyzer) names(path []int) []string {
	out := make([]string, len(path))
	for i, id := range path {
		out[i] = a.name(id)
	}
	return out
}

// lowerList follows spec.md §4.3 exactly: push an empty list template,
// then for each element in source order, lower it and append-list —
// left to right, each append mutating the same list in place.
func (a *Analyzer) lowerList(e *ast.Expr) ([]vm.Instruction, error) {
	out := []vm.Instruction{{Op: vm.OpLiteral, Line: e.Line, Literal: vm.List(nil)}}
	for _, el := range e.Elements {
		instrs, err := a.lowerExpr(el)
		if err != nil {
			return nil, err
		}
		out = append(out, instrs...)
		out = append(out, vm.Instruction{Op: vm.OpAppendList, Line: e.Line})
	}
	return out, nil
}

// lowerMap follows spec.md §4.3: push an empty map template, then for
// each pair in key-iteration order, duplicate the map reference
// (set-key consumes one copy and leaves a value on the stack in its
// place), lower the value, set-key, and discard that leftover value —
// leaving the original, now-mutated, map reference for the next pair.
func (a *Analyzer) lowerMap(e *ast.Expr) ([]vm.Instruction, error) {
	out := []vm.Instruction{{Op: vm.OpLiteral, Line: e.Line, Literal: vm.Map(vm.NewMapCell())}}
	for i, k := range e.MapKeys {
		out = append(out, vm.Instruction{Op: vm.OpDuplicate, Line: e.Line})
		val, err := a.lowerExpr(e.MapValues[i])
		if err != nil {
			return nil, err
		}
		out = append(out, val...)
		out = append(out, vm.Instruction{Op: vm.OpSetKey, Line: e.Line, Name: a.name(k)})
		out = append(out, vm.Instruction{Op: vm.OpDiscard, Line: e.Line})
	}
	return out, nil
}

// lowerFunc lowers a function literal's body in its own loop-stack
// scope: break/continue never cross a function boundary, so the
// enclosing loop stack is hidden while the body is lowered.
func (a *Analyzer) lowerFunc(e *ast.Expr) ([]vm.Instruction, error) {
	savedLoops := a.loops
	a.loops = nil
	body, err := a.lowerStmt(e.Body)
	a.loops = savedLoops
	if err != nil {
		return nil, err
	}
	params := make([]string, len(e.Params))
	for i, p := range e.Params {
		params[i] = a.name(p)
	}
	return []vm.Instruction{{Op: vm.OpMakeClosure, Line: e.Line, Params: params, Body: body}}, nil
}

// lowerCall lowers a plain (non-member) call: arguments are pushed in
// reverse source order first, then the callee, so OpCall's pop loop
// (callee popped once, then Argc args) recovers callee on top and
// args in left-to-right order underneath.
func (a *Analyzer) lowerCall(callee *ast.Expr, args []*ast.Expr, line int) ([]vm.Instruction, error) {
	if callee.Kind == ast.ExprBinary && callee.Op == ast.OpDot {
		return a.lowerMemberCall(callee, args, line)
	}
	argInstrs, err := a.lowerArgsReversed(args)
	if err != nil {
		return nil, err
	}
	calleeInstrs, err := a.lowerExpr(callee)
	if err != nil {
		return nil, err
	}
	out := append(argInstrs, calleeInstrs...)
	return append(out, vm.Instruction{Op: vm.OpCall, Line: line, Argc: len(args)}), nil
}

func (a *Analyzer) lowerArgsReversed(args []*ast.Expr) ([]vm.Instruction, error) {
	var out []vm.Instruction
	for i := len(args) - 1; i >= 0; i-- {
		instrs, err := a.lowerExpr(args[i])
		if err != nil {
			return nil, err
		}
		out = append(out, instrs...)
	}
	return out, nil
}

// lowerBinary handles every BinOp except Dot and Assign as a plain
// evaluate-both-sides-then-apply; Dot is member access/invocation and
// Assign is one of the four assignment target forms, each lowered by
// its own helper below.
func (a *Analyzer) lowerBinary(e *ast.Expr) ([]vm.Instruction, error) {
	switch e.Op {
	case ast.OpDot:
		left, err := a.lowerExpr(e.Left)
		if err != nil {
			return nil, err
		}
		return a.lowerMember(left, e.Right)
	case ast.OpAssign:
		return a.lowerAssign(e.Left, e.Right, e.Line)
	default:
		kind, ok := binOpKind[e.Op]
		if !ok {
			return nil, fmt.Errorf("analyzer: unhandled binary operator at line %d", e.Line)
		}
		left, err := a.lowerExpr(e.Left)
		if err != nil {
			return nil, err
		}
		right, err := a.lowerExpr(e.Right)
		if err != nil {
			return nil, err
		}
		out := append(left, right...)
		return append(out, vm.Instruction{Op: vm.OpBinOp, Line: e.Line, BinOp: kind}), nil
	}
}

// lowerMember appends the instructions needed to read through a dot
// access rooted at an already-lowered base: a plain name is a key
// get, a call is a key get followed by an invocation, and an index is
// a key get followed by an index. All three recurse so chains like
// a.b.c() or a.b[0] lower correctly.
func (a *Analyzer) lowerMember(base []vm.Instruction, right *ast.Expr) ([]vm.Instruction, error) {
	switch right.Kind {
	case ast.ExprName:
		return append(base, vm.Instruction{Op: vm.OpGetKey, Line: right.Line, Name: a.name(right.Ident)}), nil

	case ast.ExprCall:
		fn, err := a.lowerMember(base, right.Callee)
		if err != nil {
			return nil, err
		}
		args, err := a.lowerArgsReversed(right.Args)
		if err != nil {
			return nil, err
		}
		out := append(args, fn...)
		return append(out, vm.Instruction{Op: vm.OpCall, Line: right.Line, Argc: len(right.Args)}), nil

	case ast.ExprIndex:
		coll, err := a.lowerMember(base, right.Collection)
		if err != nil {
			return nil, err
		}
		idx, err := a.lowerExpr(right.Index)
		if err != nil {
			return nil, err
		}
		out := append(coll, idx...)
		return append(out, vm.Instruction{Op: vm.OpGetIndex, Line: right.Line}), nil

	default:
		return nil, fmt.Errorf("analyzer: unsupported dot right-hand side at line %d", right.Line)
	}
}

// lowerMemberCall is the entry point when a call's callee is itself a
// dot expression (a.b(...)): the base is the dot's left side, and the
// member-chain helper handles the rest, including the trailing call.
func (a *Analyzer) lowerMemberCall(callee *ast.Expr, args []*ast.Expr, line int) ([]vm.Instruction, error) {
	base, err := a.lowerExpr(callee.Left)
	if err != nil {
		return nil, err
	}
	chain, err := a.lowerMember(base, callee.Right)
	if err != nil {
		return nil, err
	}
	argInstrs, err := a.lowerArgsReversed(args)
	if err != nil {
		return nil, err
	}
	// args first (bottom of the call's region), then the callee chain
	// last so the function value lands on top, just as OpCall expects.
	out := append(argInstrs, chain...)
	return append(out, vm.Instruction{Op: vm.OpCall, Line: line, Argc: len(args)}), nil
}

// lowerAssign dispatches on the assignment target's shape: a plain
// name sets a scope binding, an index expression sets into a list or
// map, and a dot expression sets a key directly. Qualified names are
// not assignable (spec.md defines `::` only for reads).
func (a *Analyzer) lowerAssign(left, right *ast.Expr, line int) ([]vm.Instruction, error) {
	val, err := a.lowerExpr(right)
	if err != nil {
		return nil, err
	}

	switch left.Kind {
	case ast.ExprName:
		return append(val, vm.Instruction{Op: vm.OpSet, Line: line, Name: a.name(left.Ident)}), nil

	case ast.ExprIndex:
		coll, err := a.lowerExpr(left.Collection)
		if err != nil {
			return nil, err
		}
		idx, err := a.lowerExpr(left.Index)
		if err != nil {
			return nil, err
		}
		out := append(coll, idx...)
		out = append(out, val...)
		return append(out, vm.Instruction{Op: vm.OpSetIndex, Line: line}), nil

	case ast.ExprBinary:
		if left.Op != ast.OpDot {
			return nil, fmt.Errorf("analyzer: invalid assignment target at line %d", line)
		}
		if left.Right.Kind != ast.ExprName {
			return nil, fmt.Errorf("analyzer: invalid assignment target at line %d", line)
		}
		base, err := a.lowerExpr(left.Left)
		if err != nil {
			return nil, err
		}
		out := append(base, val...)
		return append(out, vm.Instruction{Op: vm.OpSetKey, Line: line, Name: a.name(left.Right.Ident)}), nil

	case ast.ExprQualifiedName:
		return nil, fmt.Errorf("analyzer: cannot assign through a qualified name at line %d", line)

	default:
		return nil, fmt.Errorf("analyzer: invalid assignment target at line %d", line)
	}
}

