package stdlib

import (
	"fmt"
	"os"

	"github.com/hek-lang/hek/internal/herr"
	"github.com/hek-lang/hek/internal/vm"
)

func hostPrint(it *vm.Interpreter, scope *vm.Scope) error {
	fmt.Fprint(os.Stdout, arg(scope, "s").Print())
	it.Push(vm.Nil())
	return nil
}

func hostPrintln(it *vm.Interpreter, scope *vm.Scope) error {
	fmt.Fprintln(os.Stdout, arg(scope, "s").Print())
	it.Push(vm.Nil())
	return nil
}

// hostPrintv prints a value's structural form (spec.md §6; resolved
// against original_source/src/intrp_std.cpp, see SPEC_FULL.md's
// SUPPLEMENTED FEATURES): strings come back quoted, lists and maps
// bracketed, distinguishing it from print's raw string conversion.
func hostPrintv(it *vm.Interpreter, scope *vm.Scope) error {
	fmt.Fprintln(os.Stdout, arg(scope, "v").Printv())
	it.Push(vm.Nil())
	return nil
}

// hostError raises a runtime error carrying the caller's message,
// terminating the running program the same way any other opcode
// failure does.
func hostError(it *vm.Interpreter, scope *vm.Scope) error {
	return herr.Host("error", arg(scope, "msg").Print())
}
