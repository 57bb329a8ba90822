// Package repl is the interactive loop cmd/hek enters after loading a
// file with -i: each line is compiled and run against the same global
// scope the file ran in, errors are caught and printed without ending
// the session (spec.md §7: "each top-level read/compile/eval cycle
// catches and prints the error and continues"), and the prompt is
// colored only when stdout is a real terminal.
package repl

import (
	"bufio"
	"fmt"
	"io"

	"github.com/mattn/go-isatty"

	"github.com/hek-lang/hek/internal/modules"
	"github.com/hek-lang/hek/internal/vm"
)

const (
	plainPrompt = "> "
	colorPrompt = "\033[36m>\033[0m "
)

// Run drives a read-compile-eval-print loop over in, sharing it's
// global scope with whatever the driver already ran. fd is the file
// descriptor the prompt is written to (os.Stdout.Fd()); it decides
// whether the prompt is colored.
func Run(it *vm.Interpreter, in io.Reader, out io.Writer, fd uintptr) error {
	prompt := plainPrompt
	if isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd) {
		prompt = colorPrompt
	}

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, prompt)
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := scanner.Text()
		if line == "" {
			continue
		}

		instrs, err := modules.Compile(line)
		if err != nil {
			fmt.Fprintln(out, err)
			continue
		}
		result, err := it.Run(instrs, it.Global)
		if err != nil {
			fmt.Fprintln(out, err)
			continue
		}
		fmt.Fprintln(out, result.Printv())
	}
}
