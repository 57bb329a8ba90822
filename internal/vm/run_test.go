package vm_test

import (
	"testing"

	"github.com/hek-lang/hek/internal/analyzer"
	"github.com/hek-lang/hek/internal/lexer"
	"github.com/hek-lang/hek/internal/parser"
	"github.com/hek-lang/hek/internal/vm"
)

// run lexes, parses, lowers, and executes src against a fresh
// interpreter and global scope, the way cmd/hek's modules.Compile +
// Interpreter.Run does for a whole program.
func run(t *testing.T, src string) vm.Value {
	t.Helper()
	lx := lexer.New(src)
	p := parser.New(lx)
	prog, err := p.ParseProgram()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	instrs, err := analyzer.Lower(prog, lx.Idents, lx.Strings)
	if err != nil {
		t.Fatalf("lowering error: %v", err)
	}
	it := vm.New()
	result, err := it.Run(instrs, it.Global)
	if err != nil {
		t.Fatalf("runtime error running %q: %v", src, err)
	}
	return result
}

func runExpectError(t *testing.T, src string) error {
	t.Helper()
	lx := lexer.New(src)
	p := parser.New(lx)
	prog, err := p.ParseProgram()
	if err != nil {
		return err
	}
	instrs, err := analyzer.Lower(prog, lx.Idents, lx.Strings)
	if err != nil {
		return err
	}
	it := vm.New()
	_, err = it.Run(instrs, it.Global)
	return err
}

func TestIntegerArithmeticAndPrecedence(t *testing.T) {
	tests := []struct {
		input string
		want  int64
	}{
		{"1 + 2 * 3", 7},
		{"(1 + 2) * 3", 9},
		// equal precedence is not rotated: this is 10 - (2 - 3).
		{"10 - 2 - 3", 11},
		{"2 * 3 + 4 * 5", 26},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := run(t, tt.input)
			if got.Kind != vm.KindInt || got.Int != tt.want {
				t.Fatalf("got %+v, want int %d", got, tt.want)
			}
		})
	}
}

func TestBooleanAndComparison(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"1 < 2", true},
		{"2 < 1", false},
		{"1 == 1", true},
		{"1 != 1", false},
		{"true && false", false},
		{"true || false", true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := run(t, tt.input)
			if got.Kind != vm.KindBool || got.Bool != tt.want {
				t.Fatalf("got %+v, want bool %v", got, tt.want)
			}
		})
	}
}

// TestListLiteralAndIndexSet covers the list-literal-plus-index-set
// scenario: a list is built left to right, then mutated by index, and
// the mutation is visible through the same binding (lists are
// reference-shared).
func TestListLiteralAndIndexSet(t *testing.T) {
	got := run(t, `
		let xs = [1, 2, 3];
		xs[1] = 99;
		xs[1];
	`)
	if got.Kind != vm.KindInt || got.Int != 99 {
		t.Fatalf("got %+v, want int 99", got)
	}
}

// TestFnDeclAndCall covers fn-declaration desugaring to let + a
// function literal, and calling it.
func TestFnDeclAndCall(t *testing.T) {
	got := run(t, `
		fn add(a, b) { a + b };
		add(3, 4);
	`)
	if got.Kind != vm.KindInt || got.Int != 7 {
		t.Fatalf("got %+v, want int 7", got)
	}
}

// TestLoopBreakAndSet covers a loop mutating an outer binding via a
// plain (non-let) assignment, terminated by break.
func TestLoopBreakAndSet(t *testing.T) {
	got := run(t, `
		let n = 0;
		loop {
			n = n + 1;
			if n == 5 { break; }
		};
		n;
	`)
	if got.Kind != vm.KindInt || got.Int != 5 {
		t.Fatalf("got %+v, want int 5", got)
	}
}

func TestLabeledBreakEscapesOuterLoop(t *testing.T) {
	got := run(t, `
		let n = 0;
		loop outer {
			loop {
				n = n + 1;
				break outer;
			};
			n = 1000;
		};
		n;
	`)
	if got.Kind != vm.KindInt || got.Int != 1 {
		t.Fatalf("got %+v, want int 1 (outer break must skip the unreachable n = 1000)", got)
	}
}

func TestContinueSkipsRestOfIteration(t *testing.T) {
	got := run(t, `
		let n = 0;
		let sum = 0;
		loop {
			n = n + 1;
			if n > 5 { break; };
			if n == 3 { continue; };
			sum = sum + n;
		};
		sum;
	`)
	// 1 + 2 + 4 + 5 = 12, skipping 3.
	if got.Kind != vm.KindInt || got.Int != 12 {
		t.Fatalf("got %+v, want int 12", got)
	}
}

// TestDotVsIndexMapAccess covers both access forms on the same map.
func TestDotVsIndexMapAccess(t *testing.T) {
	got := run(t, `
		let m = {a: 1, b: 2};
		m.a + m["b"];
	`)
	if got.Kind != vm.KindInt || got.Int != 3 {
		t.Fatalf("got %+v, want int 3", got)
	}
}

func TestDotSetMutatesMap(t *testing.T) {
	got := run(t, `
		let m = {a: 1};
		m.a = 42;
		m["a"];
	`)
	if got.Kind != vm.KindInt || got.Int != 42 {
		t.Fatalf("got %+v, want int 42", got)
	}
}

// TestClosureCapture covers a function literal capturing an enclosing
// binding by reference to its defining scope, not a snapshot.
func TestClosureCapture(t *testing.T) {
	got := run(t, `
		let make_adder = fn(x) {
			return fn(y) { x + y }
		};
		let add5 = make_adder(5);
		add5(10);
	`)
	if got.Kind != vm.KindInt || got.Int != 15 {
		t.Fatalf("got %+v, want int 15", got)
	}
}

func TestClosureCapturesLiveVariableNotSnapshot(t *testing.T) {
	got := run(t, `
		let x = 1;
		let f = fn() { x };
		x = 2;
		f();
	`)
	if got.Kind != vm.KindInt || got.Int != 2 {
		t.Fatalf("got %+v, want int 2 (closure sees the live outer binding)", got)
	}
}

func TestSequenceValueIsLastExpression(t *testing.T) {
	got := run(t, "1; 2; 3")
	if got.Kind != vm.KindInt || got.Int != 3 {
		t.Fatalf("got %+v, want int 3 (a sequence's value is its last statement's)", got)
	}
}

func TestIfWithoutElseIsNilWhenFalse(t *testing.T) {
	got := run(t, "if false { 10 }")
	if got.Kind != vm.KindNil {
		t.Fatalf("got %+v, want nil", got)
	}
}

func TestStringConcatAndListConcat(t *testing.T) {
	got := run(t, `"ab" + "cd"`)
	if got.Kind != vm.KindString || got.StringVal() != "abcd" {
		t.Fatalf("got %+v, want string \"abcd\"", got)
	}

	gotList := run(t, "[1, 2] + [3]")
	if gotList.Kind != vm.KindList || len(gotList.List.Items) != 3 {
		t.Fatalf("got %+v, want a 3-element list", gotList)
	}
}

func TestModuleBlockPublishesBindings(t *testing.T) {
	got := run(t, `
		mod m {
			let value = 7;
		};
		m::value;
	`)
	if got.Kind != vm.KindInt || got.Int != 7 {
		t.Fatalf("got %+v, want int 7", got)
	}
}

// --- negative scenarios ---

func TestArityMismatchIsARuntimeError(t *testing.T) {
	err := runExpectError(t, `
		fn add(a, b) { a + b };
		add(1);
	`)
	if err == nil {
		t.Fatal("expected a runtime error for a wrong argument count")
	}
}

func TestUnboundIdentifierIsARuntimeError(t *testing.T) {
	err := runExpectError(t, "never_bound")
	if err == nil {
		t.Fatal("expected a runtime error for an unbound identifier")
	}
}

func TestTypeMismatchOnStringPlusInt(t *testing.T) {
	err := runExpectError(t, `"hi" + 1`)
	if err == nil {
		t.Fatal(`expected a type-mismatch runtime error for "hi" + 1`)
	}
}

func TestDivideByZeroIsAnArithmeticError(t *testing.T) {
	err := runExpectError(t, "1 / 0")
	if err == nil {
		t.Fatal("expected an arithmetic error for division by zero")
	}
}

func TestCallingANonFunctionIsARuntimeError(t *testing.T) {
	err := runExpectError(t, `
		let x = 1;
		x();
	`)
	if err == nil {
		t.Fatal("expected a runtime error when calling a non-function value")
	}
}

func TestIndexOutOfRangeIsARuntimeError(t *testing.T) {
	err := runExpectError(t, `
		let xs = [1, 2];
		xs[5];
	`)
	if err == nil {
		t.Fatal("expected a runtime error for an out-of-range list index")
	}
}

func TestBreakOutsideLoopIsAnError(t *testing.T) {
	err := runExpectError(t, "break;")
	if err == nil {
		t.Fatal("expected an error for break outside of any loop")
	}
}
