package vm

import "github.com/hek-lang/hek/internal/herr"

var binOpSymbol = map[BinOpKind]string{
	BinAdd:       "+",
	BinSub:       "-",
	BinMul:       "*",
	BinDiv:       "/",
	BinEq:        "==",
	BinNeq:       "!=",
	BinLess:      "<",
	BinGreater:   ">",
	BinLessEq:    "<=",
	BinGreaterEq: ">=",
	BinAnd:       "&&",
	BinOr:        "||",
}

// applyBinOp implements spec.md §4.4's binary-operator rules: `+` is
// overloaded for int addition, string concatenation, and list
// concatenation; `==`/`!=` use Equal's cross-kind rule; ordering
// comparisons are int-only (resolved from original_source's
// int_value-only comparison dispatch); `&&`/`||` require bool
// operands and do not short-circuit (both sides are already
// evaluated and on the stack by the time OpBinOp runs).
func applyBinOp(line int, op BinOpKind, a, b Value) (Value, error) {
	switch op {
	case BinEq:
		return Bool(Equal(a, b)), nil
	case BinNeq:
		return Bool(!Equal(a, b)), nil
	case BinAdd:
		return add(line, a, b)
	case BinSub:
		return intOp(line, op, a, b, func(x, y int64) int64 { return x - y })
	case BinMul:
		return intOp(line, op, a, b, func(x, y int64) int64 { return x * y })
	case BinDiv:
		if a.Kind != KindInt || b.Kind != KindInt {
			return Value{}, herr.TypeMismatch(line, binOpSymbol[op], mismatchKind(a, b))
		}
		if b.Int == 0 {
			return Value{}, herr.DivideByZero(line, "/")
		}
		return Int(a.Int / b.Int), nil
	case BinLess, BinGreater, BinLessEq, BinGreaterEq:
		return compare(line, op, a, b)
	case BinAnd:
		return boolOp(line, op, a, b, func(x, y bool) bool { return x && y })
	case BinOr:
		return boolOp(line, op, a, b, func(x, y bool) bool { return x || y })
	default:
		return Value{}, herr.TypeMismatch(line, "binop", "unknown")
	}
}

func add(line int, a, b Value) (Value, error) {
	switch {
	case a.Kind == KindInt && b.Kind == KindInt:
		return Int(a.Int + b.Int), nil
	case a.Kind == KindString && b.Kind == KindString:
		return Str(a.StringVal() + b.StringVal()), nil
	case a.Kind == KindList && b.Kind == KindList:
		items := make([]Value, 0, len(a.List.Items)+len(b.List.Items))
		items = append(items, a.List.Items...)
		items = append(items, b.List.Items...)
		return List(items), nil
	default:
		return Value{}, herr.TypeMismatch(line, "+", mismatchKind(a, b))
	}
}

func intOp(line int, op BinOpKind, a, b Value, f func(int64, int64) int64) (Value, error) {
	if a.Kind != KindInt || b.Kind != KindInt {
		return Value{}, herr.TypeMismatch(line, binOpSymbol[op], mismatchKind(a, b))
	}
	return Int(f(a.Int, b.Int)), nil
}

func boolOp(line int, op BinOpKind, a, b Value, f func(bool, bool) bool) (Value, error) {
	if a.Kind != KindBool || b.Kind != KindBool {
		return Value{}, herr.TypeMismatch(line, binOpSymbol[op], mismatchKind(a, b))
	}
	return Bool(f(a.Bool, b.Bool)), nil
}

func compare(line int, op BinOpKind, a, b Value) (Value, error) {
	if a.Kind != KindInt || b.Kind != KindInt {
		return Value{}, herr.TypeMismatch(line, binOpSymbol[op], mismatchKind(a, b))
	}
	var res bool
	switch op {
	case BinLess:
		res = a.Int < b.Int
	case BinGreater:
		res = a.Int > b.Int
	case BinLessEq:
		res = a.Int <= b.Int
	case BinGreaterEq:
		res = a.Int >= b.Int
	}
	return Bool(res), nil
}

func mismatchKind(a, b Value) string {
	if a.Kind != b.Kind {
		return a.Kind.String() + "/" + b.Kind.String()
	}
	return a.Kind.String()
}
