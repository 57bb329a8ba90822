package bytecode

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/hek-lang/hek/internal/vm"
)

// Decode reads a bytecode container from r and reproduces its
// instruction list. Unknown opcodes fail, per spec.md §7's runtime
// error category ("unknown opcode during decode").
func Decode(r io.Reader) ([]vm.Instruction, error) {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	var count uint64
	if err := binary.Read(br, binary.LittleEndian, &count); err != nil {
		return nil, err
	}
	out := make([]vm.Instruction, 0, count)
	for i := uint64(0); i < count; i++ {
		ins, err := decodeInstruction(br)
		if err != nil {
			return nil, err
		}
		out = append(out, ins)
	}
	return out, nil
}

func decodeInstruction(r *bufio.Reader) (vm.Instruction, error) {
	wireOp, err := r.ReadByte()
	if err != nil {
		return vm.Instruction{}, err
	}
	op, ok := wireToOpcode[wireOp]
	if !ok {
		return vm.Instruction{}, fmt.Errorf("bytecode: unknown opcode %d during decode", wireOp)
	}

	ins := vm.Instruction{Op: op}
	switch op {
	case vm.OpNop, vm.OpDiscard, vm.OpDuplicate, vm.OpEnterScope, vm.OpExitScope,
		vm.OpLogNot, vm.OpRet, vm.OpGetIndex, vm.OpSetIndex, vm.OpAppendList:
		return ins, nil

	case vm.OpLiteral:
		v, err := decodeLiteral(r)
		if err != nil {
			return ins, err
		}
		ins.Literal = v
		return ins, nil

	case vm.OpGet, vm.OpSet, vm.OpBind, vm.OpGetKey, vm.OpSetKey:
		name, err := readString(r)
		if err != nil {
			return ins, err
		}
		ins.Name = name
		return ins, nil

	case vm.OpGetQualified:
		n, err := r.ReadByte()
		if err != nil {
			return ins, err
		}
		path := make([]string, n)
		for i := range path {
			s, err := readString(r)
			if err != nil {
				return ins, err
			}
			path[i] = s
		}
		ins.Path = path
		return ins, nil

	case vm.OpExitAsModule:
		name, err := readString(r)
		if err != nil {
			return ins, err
		}
		ins.ModuleName = name
		return ins, nil

	case vm.OpIf:
		t, f, err := readMarkerPair(r)
		if err != nil {
			return ins, err
		}
		ins.ThenMarker, ins.ElseMarker = int(t), int(f)
		return ins, nil

	case vm.OpBinOp:
		b, err := r.ReadByte()
		if err != nil {
			return ins, err
		}
		ins.BinOp = vm.BinOpKind(b)
		return ins, nil

	case vm.OpJump, vm.OpMarker, vm.OpJumpToMarker:
		var m uint32
		if err := binary.Read(r, binary.LittleEndian, &m); err != nil {
			return ins, err
		}
		ins.Marker = int(m)
		return ins, nil

	case vm.OpMakeClosure:
		return decodeClosure(r)

	case vm.OpCall:
		var argc uint32
		if err := binary.Read(r, binary.LittleEndian, &argc); err != nil {
			return ins, err
		}
		ins.Argc = int(argc)
		return ins, nil

	case vm.OpLoadModule:
		if _, err := r.ReadByte(); err != nil { // inner-import flag, unused for now
			return ins, err
		}
		name, err := readString(r)
		if err != nil {
			return ins, err
		}
		ins.ModuleName = name
		return ins, nil

	default:
		return ins, fmt.Errorf("bytecode: unhandled opcode %s during decode", op)
	}
}

func decodeLiteral(r *bufio.Reader) (vm.Value, error) {
	tag, err := r.ReadByte()
	if err != nil {
		return vm.Value{}, err
	}
	switch tag {
	case litNil:
		return vm.Nil(), nil
	case litInt:
		var n int64
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return vm.Value{}, err
		}
		return vm.Int(n), nil
	case litStr:
		s, err := readString(r)
		if err != nil {
			return vm.Value{}, err
		}
		return vm.Str(s), nil
	case litBool:
		b, err := r.ReadByte()
		if err != nil {
			return vm.Value{}, err
		}
		return vm.Bool(b != 0), nil
	case litEmptyList:
		return vm.List(nil), nil
	case litEmptyMap:
		return vm.Map(vm.NewMapCell()), nil
	default:
		return vm.Value{}, fmt.Errorf("bytecode: unknown literal sub-tag %d", tag)
	}
}

func decodeClosure(r *bufio.Reader) (vm.Instruction, error) {
	ins := vm.Instruction{Op: vm.OpMakeClosure}
	tag, err := r.ReadByte()
	if err != nil {
		return ins, err
	}
	hasName := tag&0x80 != 0
	paramCount := int(tag &^ 0x80)
	if hasName {
		name, err := readString(r)
		if err != nil {
			return ins, err
		}
		ins.FnName = name
	}
	var params []string
	if paramCount > 0 {
		params = make([]string, paramCount)
	}
	for i := range params {
		s, err := readString(r)
		if err != nil {
			return ins, err
		}
		params[i] = s
	}
	ins.Params = params
	body, err := Decode(r)
	if err != nil {
		return ins, err
	}
	ins.Body = body
	return ins, nil
}

func readString(r *bufio.Reader) (string, error) {
	s, err := r.ReadString(0)
	if err != nil {
		return "", err
	}
	return s[:len(s)-1], nil
}

func readMarkerPair(r *bufio.Reader) (uint32, uint32, error) {
	var a, b uint32
	if err := binary.Read(r, binary.LittleEndian, &a); err != nil {
		return 0, 0, err
	}
	if err := binary.Read(r, binary.LittleEndian, &b); err != nil {
		return 0, 0, err
	}
	return a, b, nil
}
