package bytecode

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/hek-lang/hek/internal/vm"
)

// stripLines zeroes the Line field throughout an instruction list (and
// any nested closure bodies) since the wire format does not carry
// source line numbers, only the in-memory Instruction does.
func stripLines(instrs []vm.Instruction) []vm.Instruction {
	out := make([]vm.Instruction, len(instrs))
	for i, ins := range instrs {
		ins.Line = 0
		if ins.Body != nil {
			ins.Body = stripLines(ins.Body)
		}
		out[i] = ins
	}
	return out
}

func roundTrip(t *testing.T, instrs []vm.Instruction) []vm.Instruction {
	t.Helper()
	var buf bytes.Buffer
	if err := Encode(&buf, instrs); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	got, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	return got
}

func TestRoundTripScalarOpcodes(t *testing.T) {
	instrs := []vm.Instruction{
		{Op: vm.OpLiteral, Line: 1, Literal: vm.Int(42)},
		{Op: vm.OpLiteral, Line: 2, Literal: vm.Str("hello")},
		{Op: vm.OpLiteral, Line: 3, Literal: vm.Bool(true)},
		{Op: vm.OpLiteral, Line: 4, Literal: vm.Nil()},
		{Op: vm.OpLiteral, Line: 5, Literal: vm.List(nil)},
		{Op: vm.OpLiteral, Line: 6, Literal: vm.Map(vm.NewMapCell())},
		{Op: vm.OpBind, Line: 7, Name: "x"},
		{Op: vm.OpGet, Line: 8, Name: "x"},
		{Op: vm.OpSet, Line: 9, Name: "x"},
		{Op: vm.OpGetQualified, Line: 10, Path: []string{"str", "length"}},
		{Op: vm.OpBinOp, Line: 11, BinOp: vm.BinAdd},
		{Op: vm.OpIf, Line: 12, ThenMarker: 1, ElseMarker: 2},
		{Op: vm.OpMarker, Line: 13, Marker: 1},
		{Op: vm.OpJump, Line: 14, Marker: 2},
		{Op: vm.OpJumpToMarker, Line: 15, Marker: 2},
		{Op: vm.OpCall, Line: 16, Argc: 3},
		{Op: vm.OpExitAsModule, Line: 17, ModuleName: "helper"},
		{Op: vm.OpLoadModule, Line: 18, ModuleName: "other"},
		{Op: vm.OpGetKey, Line: 19, Name: "k"},
		{Op: vm.OpSetKey, Line: 20, Name: "k"},
		{Op: vm.OpDiscard, Line: 21},
		{Op: vm.OpDuplicate, Line: 22},
		{Op: vm.OpEnterScope, Line: 23},
		{Op: vm.OpExitScope, Line: 24},
		{Op: vm.OpGetIndex, Line: 25},
		{Op: vm.OpSetIndex, Line: 26},
		{Op: vm.OpAppendList, Line: 27},
		{Op: vm.OpRet, Line: 28},
	}

	got := roundTrip(t, instrs)
	want := stripLines(instrs)
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("round trip mismatch:\n got: %+v\nwant: %+v", got, want)
	}
}

// TestRoundTripNestedClosure covers a closure body nested inside an
// outer instruction list, since OpMakeClosure recurses into its own
// Encode/Decode call for Body.
func TestRoundTripNestedClosure(t *testing.T) {
	instrs := []vm.Instruction{
		{
			Op:     vm.OpMakeClosure,
			Line:   1,
			FnName: "add",
			Params: []string{"a", "b"},
			Body: []vm.Instruction{
				{Op: vm.OpGet, Line: 1, Name: "a"},
				{Op: vm.OpGet, Line: 1, Name: "b"},
				{Op: vm.OpBinOp, Line: 1, BinOp: vm.BinAdd},
				{Op: vm.OpRet, Line: 1},
			},
		},
		{
			// an anonymous closure, to cover the unnamed tag bit.
			Op:     vm.OpMakeClosure,
			Line:   2,
			Params: nil,
			Body: []vm.Instruction{
				{Op: vm.OpLiteral, Line: 2, Literal: vm.Int(1)},
				{Op: vm.OpRet, Line: 2},
			},
		},
		{Op: vm.OpBind, Line: 3, Name: "add"},
	}

	got := roundTrip(t, instrs)
	want := stripLines(instrs)
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("nested closure round trip mismatch:\n got: %+v\nwant: %+v", got, want)
	}
}

func TestEncodeRejectsSystemInstruction(t *testing.T) {
	instrs := []vm.Instruction{
		{Op: vm.OpSystem, System: func(it *vm.Interpreter, scope *vm.Scope) error { return nil }},
	}
	var buf bytes.Buffer
	if err := Encode(&buf, instrs); err == nil {
		t.Fatal("expected an error encoding a host callback instruction")
	}
}

func TestDecodeRejectsUnknownOpcode(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{1, 0, 0, 0, 0, 0, 0, 0}) // count = 1
	buf.WriteByte(0xFF)                       // unknown wire opcode
	if _, err := Decode(&buf); err == nil {
		t.Fatal("expected an error decoding an unrecognized wire opcode")
	}
}

func TestEmptyInstructionListRoundTrips(t *testing.T) {
	got := roundTrip(t, nil)
	if len(got) != 0 {
		t.Fatalf("expected an empty instruction list, got %v", got)
	}
}
