// Package bytecode serializes a lowered instruction list to and from
// Hek's bytecode container format: a flat, one-byte-opcode-per-
// instruction wire encoding with little-endian fixed-width numeric
// fields and null-terminated strings, recursing into nested code
// blocks for closures and inline modules. The wire opcode table is
// fixed (spec.md §6) and distinct from vm.Opcode, the in-memory
// instruction tag the analyzer and interpreter use.
package bytecode

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/hek-lang/hek/internal/vm"
)

// Wire opcode assignments, fixed per spec.md §6.
const (
	wireNop           = 0
	wireDiscard       = 1
	wireDuplicate     = 2
	wireLiteral       = 3
	wireGetBinding    = 4
	wireGetQualified  = 5
	wireSetBinding    = 6
	wireBind          = 7
	wireEnterScope    = 8
	wireExitScope     = 9
	wireExitAsModule  = 10
	wireIf            = 11
	wireBinOp         = 12
	wireLogNot        = 13
	wireJump          = 14
	wireMarker        = 15
	wireJumpToMarker  = 16
	wireMakeClosure   = 17
	wireCall          = 18
	wireRet           = 19
	wireGetIndex      = 30
	wireSetIndex      = 31
	wireGetKey        = 32
	wireSetKey        = 33
	wireAppendList    = 50
	wireImportModule  = 64
)

// Literal sub-tags (opcode 3's one-byte discriminator).
const (
	litNil       = 0
	litInt       = 1
	litStr       = 2
	litBool      = 3
	litEmptyList = 4
	litEmptyMap  = 5
)

var opcodeToWire = map[vm.Opcode]byte{
	vm.OpNop:           wireNop,
	vm.OpDiscard:       wireDiscard,
	vm.OpDuplicate:     wireDuplicate,
	vm.OpLiteral:       wireLiteral,
	vm.OpGet:           wireGetBinding,
	vm.OpGetQualified:  wireGetQualified,
	vm.OpSet:           wireSetBinding,
	vm.OpBind:          wireBind,
	vm.OpEnterScope:    wireEnterScope,
	vm.OpExitScope:     wireExitScope,
	vm.OpExitAsModule:  wireExitAsModule,
	vm.OpIf:            wireIf,
	vm.OpBinOp:         wireBinOp,
	vm.OpLogNot:        wireLogNot,
	vm.OpJump:          wireJump,
	vm.OpMarker:        wireMarker,
	vm.OpJumpToMarker:  wireJumpToMarker,
	vm.OpMakeClosure:   wireMakeClosure,
	vm.OpCall:          wireCall,
	vm.OpRet:           wireRet,
	vm.OpGetIndex:      wireGetIndex,
	vm.OpSetIndex:      wireSetIndex,
	vm.OpGetKey:        wireGetKey,
	vm.OpSetKey:        wireSetKey,
	vm.OpAppendList:    wireAppendList,
	vm.OpLoadModule:    wireImportModule,
}

var wireToOpcode = func() map[byte]vm.Opcode {
	m := make(map[byte]vm.Opcode, len(opcodeToWire))
	for k, v := range opcodeToWire {
		m[v] = k
	}
	return m
}()

// Encode writes instrs to w in the bytecode container format: a u64
// instruction count followed by that many flat-encoded instructions.
// OpSystem instructions cannot be serialized (host callbacks are not
// data) and are rejected.
func Encode(w io.Writer, instrs []vm.Instruction) error {
	bw := bufio.NewWriter(w)
	if err := binary.Write(bw, binary.LittleEndian, uint64(len(instrs))); err != nil {
		return err
	}
	for _, ins := range instrs {
		if err := encodeInstruction(bw, ins); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func encodeInstruction(w *bufio.Writer, ins vm.Instruction) error {
	if ins.Op == vm.OpSystem {
		return fmt.Errorf("bytecode: cannot encode a system instruction (host callbacks are not serializable)")
	}
	wireOp, ok := opcodeToWire[ins.Op]
	if !ok {
		return fmt.Errorf("bytecode: unknown opcode %s", ins.Op)
	}
	if err := w.WriteByte(wireOp); err != nil {
		return err
	}
	switch ins.Op {
	case vm.OpNop, vm.OpDiscard, vm.OpDuplicate, vm.OpEnterScope, vm.OpExitScope,
		vm.OpLogNot, vm.OpRet, vm.OpGetIndex, vm.OpSetIndex, vm.OpAppendList:
		return nil

	case vm.OpLiteral:
		return encodeLiteral(w, ins.Literal)

	case vm.OpGet, vm.OpSet, vm.OpBind, vm.OpGetKey, vm.OpSetKey:
		return writeString(w, ins.Name)

	case vm.OpGetQualified:
		if len(ins.Path) > 255 {
			return fmt.Errorf("bytecode: qualified path too long (%d segments)", len(ins.Path))
		}
		if err := w.WriteByte(byte(len(ins.Path))); err != nil {
			return err
		}
		for _, seg := range ins.Path {
			if err := writeString(w, seg); err != nil {
				return err
			}
		}
		return nil

	case vm.OpExitAsModule:
		return writeString(w, ins.ModuleName)

	case vm.OpIf:
		return writeMarkerPair(w, uint32(ins.ThenMarker), uint32(ins.ElseMarker))

	case vm.OpBinOp:
		return w.WriteByte(byte(ins.BinOp))

	case vm.OpJump, vm.OpMarker, vm.OpJumpToMarker:
		return binary.Write(w, binary.LittleEndian, uint32(ins.Marker))

	case vm.OpMakeClosure:
		return encodeClosure(w, ins)

	case vm.OpCall:
		return binary.Write(w, binary.LittleEndian, uint32(ins.Argc))

	case vm.OpLoadModule:
		// inner-import flag: always false until the analyzer emits a
		// synthetic inner import (see DESIGN.md's Open Question note).
		if err := w.WriteByte(0); err != nil {
			return err
		}
		return writeString(w, ins.ModuleName)

	default:
		return fmt.Errorf("bytecode: unhandled opcode %s during encode", ins.Op)
	}
}

func encodeLiteral(w *bufio.Writer, v vm.Value) error {
	switch v.Kind {
	case vm.KindNil:
		return w.WriteByte(litNil)
	case vm.KindInt:
		if err := w.WriteByte(litInt); err != nil {
			return err
		}
		return binary.Write(w, binary.LittleEndian, v.Int)
	case vm.KindString:
		if err := w.WriteByte(litStr); err != nil {
			return err
		}
		return writeString(w, v.StringVal())
	case vm.KindBool:
		if err := w.WriteByte(litBool); err != nil {
			return err
		}
		b := byte(0)
		if v.Bool {
			b = 1
		}
		return w.WriteByte(b)
	case vm.KindList:
		if len(v.List.Items) != 0 {
			return fmt.Errorf("bytecode: only empty list literal templates are encodable")
		}
		return w.WriteByte(litEmptyList)
	case vm.KindMap:
		if len(v.Map.Keys) != 0 {
			return fmt.Errorf("bytecode: only empty map literal templates are encodable")
		}
		return w.WriteByte(litEmptyMap)
	default:
		return fmt.Errorf("bytecode: value kind %s cannot appear in a literal", v.Kind)
	}
}

func encodeClosure(w *bufio.Writer, ins vm.Instruction) error {
	if len(ins.Params) > 127 {
		return fmt.Errorf("bytecode: too many closure parameters (%d)", len(ins.Params))
	}
	tag := byte(len(ins.Params))
	hasName := ins.FnName != ""
	if hasName {
		tag |= 0x80
	}
	if err := w.WriteByte(tag); err != nil {
		return err
	}
	if hasName {
		if err := writeString(w, ins.FnName); err != nil {
			return err
		}
	}
	for _, p := range ins.Params {
		if err := writeString(w, p); err != nil {
			return err
		}
	}
	return Encode(w, ins.Body)
}

func writeString(w *bufio.Writer, s string) error {
	if _, err := w.WriteString(s); err != nil {
		return err
	}
	return w.WriteByte(0)
}

func writeMarkerPair(w *bufio.Writer, a, b uint32) error {
	if err := binary.Write(w, binary.LittleEndian, a); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, b)
}
