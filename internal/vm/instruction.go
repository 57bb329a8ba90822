package vm

// Instruction is the lowering pass's output unit: an Opcode plus
// whichever payload fields that opcode uses. Unused fields are zero.
// This mirrors ast.Expr/ast.Stmt's tagged-variant shape one level
// down the pipeline, per spec.md §3's "Instruction: tagged variant
// with opcode and opcode-specific payload".
type Instruction struct {
	Op   Opcode
	Line int

	// OpLiteral: the value template to clone onto the stack.
	Literal Value

	// OpGet, OpSet, OpBind: the binding name.
	Name string

	// OpGetQualified: a::b::c, all but the last segment are module
	// names to walk through.
	Path []string

	// OpIf: marker ids for the branches to jump to.
	ThenMarker int
	ElseMarker int

	// OpBinOp: which operator.
	BinOp BinOpKind

	// OpJump, OpJumpToMarker, OpMarker: the marker id this
	// instruction targets or declares. Resolved at run time by a
	// forward linear scan for the matching OpMarker (spec.md §9: a
	// known, accepted inefficiency).
	Marker int

	// OpMakeClosure: parameter names and lowered body. The function's
	// captured scope is filled in by the interpreter at the point the
	// closure is made, not by the analyzer.
	Params []string
	Body   []Instruction
	FnName string

	// OpExitAsModule: the name the enclosing scope is published as.
	// OpLoadModule reuses this for the module name to load.
	ModuleName string

	// OpCall: argument count (arguments were pushed in reverse order
	// by the lowering pass so the callee pops them left to right).
	Argc int

	// OpSystem: the host callback this instruction invokes.
	System SystemFunc
}

// SystemFunc is a host-provided instruction body. It runs with direct
// access to the interpreter (to push its result, exactly like any
// other opcode handler) and the call's own scope, so it can read its
// bound parameters by name the same way a call binds them for an
// interpreted function body.
type SystemFunc func(it *Interpreter, scope *Scope) error
