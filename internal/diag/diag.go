// Package diag dumps ASTs and lowered instruction lists for debugging,
// gated behind the driver's debug flag. Grounded on
// magical-pumpkin-spice-compiler's main.go, which hands its parsed
// expression tree and lowered program straight to pretty.Println
// rather than writing a bespoke tree printer.
package diag

import (
	"os"

	"github.com/kr/pretty"

	"github.com/hek-lang/hek/internal/ast"
	"github.com/hek-lang/hek/internal/vm"
)

// Enabled gates the Dump* calls below; cmd/hek sets it from a -debug
// flag before running a program.
var Enabled = false

// DumpAST prints prog's tree to stderr, as the teacher's main.go
// pretty.Printlns its parse result straight after parsing.
func DumpAST(label string, prog *ast.Stmt) {
	if !Enabled {
		return
	}
	pretty.Fprintf(os.Stderr, "%s:\n%# v\n", label, prog)
}

// DumpInstructions prints a lowered instruction list to stderr, the
// same way the teacher dumps its post-lowering program.
func DumpInstructions(label string, instrs []vm.Instruction) {
	if !Enabled {
		return
	}
	pretty.Fprintf(os.Stderr, "%s:\n%# v\n", label, instrs)
}
