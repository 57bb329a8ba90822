// Package config carries Hek's package-level constants: recognized
// file extensions and builtin names, following the teacher's
// internal/config/constants.go shape (plain consts) generalized to
// Hek's three-extension scheme, plus the optional hek.yaml project
// manifest and its loader (manifest.go).
package config

// SourceFileExt is the extension for a top-level entry program.
const SourceFileExt = ".hek"

// LibrarySourceFileExt is the extension `mod name;` loads from the
// compiling file's directory (spec.md §4.6/§6): Hek source text for a
// module, as opposed to .hek's entry-program role.
const LibrarySourceFileExt = ".bcy"

// BytecodeFileExt is the extension a bytecode-level import-module
// opcode loads, relative to the currently executing bytecode file's
// own directory.
const BytecodeFileExt = ".bcc"

// IsTestMode mirrors the teacher's single mutable test-mode global.
// Nothing in this repository sets or reads it.
var IsTestMode = false

// Builtin global binding names (spec.md §6's "minimum set").
const (
	NilName      = "nil"
	PrintName    = "print"
	PrintlnName  = "println"
	PrintvName   = "printv"
	ErrorName    = "error"
)

// Builtin module names.
const (
	StrModuleName  = "str"
	ListModuleName = "list"
	MapModuleName  = "map"
	FileModuleName = "file"
	YamlModuleName = "yaml"
)
