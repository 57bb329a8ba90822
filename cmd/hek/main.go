// Command hek is Hek's driver: out-of-core glue (spec.md §9 keeps the
// command-line surface, the REPL, and the bytecode file's on-disk
// layout explicitly outside the interpreter core). It loads a source
// file, optionally drops into a REPL against the same global scope,
// and invokes a `start` binding with the program's own argument list
// if the loaded file defines one — following the teacher's cmd/funxy
// convention of hand-parsing os.Args rather than reaching for the
// flag package, since the grammar here (a path, an -i switch, a --
// separator) does not fit flag's model cleanly either.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hek-lang/hek/internal/config"
	"github.com/hek-lang/hek/internal/diag"
	"github.com/hek-lang/hek/internal/modules"
	"github.com/hek-lang/hek/internal/repl"
	"github.com/hek-lang/hek/internal/stdlib"
	"github.com/hek-lang/hek/internal/vm"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(argv []string) int {
	var sourcePath string
	interactive := false
	var programArgs []string

	i := 0
	for ; i < len(argv); i++ {
		switch argv[i] {
		case "-i":
			interactive = true
		case "-debug":
			diag.Enabled = true
		case "--":
			programArgs = argv[i+1:]
			i = len(argv)
		default:
			if sourcePath == "" {
				sourcePath = argv[i]
			}
		}
	}

	if sourcePath == "" {
		fmt.Fprintf(os.Stderr, "usage: %s <file.hek> [-i] [-debug] [-- args...]\n", os.Args[0])
		return -1
	}

	src, err := os.ReadFile(sourcePath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return -1
	}

	instrs, err := modules.Compile(string(src))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return -1
	}
	diag.DumpInstructions(sourcePath, instrs)

	it := vm.New()
	stdlib.Install(it.Global)

	baseDir := filepath.Dir(sourcePath)
	var manifest *config.Manifest
	if path, _ := config.FindManifest(baseDir); path != "" {
		manifest, _ = config.LoadManifest(path)
	}
	it.Loader = modules.New(baseDir, manifest)

	if _, err := it.Run(instrs, it.Global); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return -1
	}

	code := 0
	if start, ok := it.Global.Get("start"); ok && start.Kind == vm.KindFunction {
		args := make([]vm.Value, 0, len(programArgs)+1)
		args = append(args, vm.Str(sourcePath))
		for _, a := range programArgs {
			args = append(args, vm.Str(a))
		}
		result, err := it.Call(0, start, []vm.Value{vm.List(args)})
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return -1
		}
		if result.Kind == vm.KindInt {
			code = int(result.Int)
		}
	}

	if interactive {
		if err := repl.Run(it, os.Stdin, os.Stdout, os.Stdout.Fd()); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return -1
		}
	}

	return code
}
