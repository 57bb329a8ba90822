// Package vm holds Hek's runtime value representation, lexical
// scopes, the lowered instruction set, and the stack-machine
// interpreter that executes it. Bundling these together (rather than
// splitting values from the interpreter) follows the teacher's own
// internal/vm package, which keeps chunk.go, value.go, opcodes.go and
// vm.go as one unit because the VM's opcodes are defined entirely in
// terms of its own value representation.
package vm

// Opcode is the logical (in-memory) instruction tag the analyzer
// emits and the interpreter dispatches on. It is distinct from the
// one-byte wire opcode internal/bytecode encodes — this is the
// lowering pass's output type, matching spec.md §3's "Instruction:
// tagged variant with opcode and opcode-specific payload".
type Opcode int

const (
	OpNop Opcode = iota
	OpDiscard
	OpDuplicate
	OpLiteral
	OpGet
	OpGetQualified
	OpSet
	OpBind
	OpEnterScope
	OpExitScope
	OpExitAsModule
	OpIf
	OpBinOp
	OpLogNot
	OpJump
	OpMarker
	OpJumpToMarker
	OpMakeClosure
	OpCall
	OpRet
	OpGetIndex
	OpSetIndex
	OpGetKey
	OpSetKey
	OpAppendList
	OpSystem
	OpLoadModule
)

var opcodeNames = map[Opcode]string{
	OpNop:          "nop",
	OpDiscard:      "discard",
	OpDuplicate:    "duplicate",
	OpLiteral:      "literal",
	OpGet:          "get",
	OpGetQualified: "get-qualified",
	OpSet:          "set",
	OpBind:         "bind",
	OpEnterScope:   "enter-scope",
	OpExitScope:    "exit-scope",
	OpExitAsModule: "exit-as-module",
	OpIf:           "if",
	OpBinOp:        "bin-op",
	OpLogNot:       "log-not",
	OpJump:         "jump",
	OpMarker:       "marker",
	OpJumpToMarker: "jump-to-marker",
	OpMakeClosure:  "make-closure",
	OpCall:         "call",
	OpRet:          "ret",
	OpGetIndex:     "get-index",
	OpSetIndex:     "set-index",
	OpGetKey:       "get-key",
	OpSetKey:       "set-key",
	OpAppendList:   "append-list",
	OpSystem:       "system",
	OpLoadModule:   "load-module",
}

func (op Opcode) String() string {
	if name, ok := opcodeNames[op]; ok {
		return name
	}
	return "unknown"
}

// BinOpKind mirrors ast.BinOp at the instruction level (the analyzer
// translates through its binOpKind table; the numeric values differ,
// since assign and dot have no BinOpKind); kept as its own type so vm
// does not import ast.
type BinOpKind int

const (
	BinAdd BinOpKind = iota
	BinSub
	BinMul
	BinDiv
	BinEq
	BinNeq
	BinLess
	BinGreater
	BinLessEq
	BinGreaterEq
	BinAnd
	BinOr
)
