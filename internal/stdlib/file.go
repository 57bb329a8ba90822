package stdlib

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/hek-lang/hek/internal/herr"
	"github.com/hek-lang/hek/internal/vm"
)

// fileHandle is the host value file::open/file::create return: a
// read-mode handle holds the whole file in memory and a cursor (the
// byte-at-a-time next/peek/current_position/eof surface spec.md §6
// lists has no use for streaming); a write-mode handle wraps an
// *os.File opened for writing, little-endian fixed-width numeric
// writes matching internal/bytecode's own wire format conventions.
type fileHandle struct {
	name string

	// read mode
	data []byte
	pos  int

	// write mode
	w *os.File
}

func (f *fileHandle) HostKind() string { return "file" }

func (f *fileHandle) String() string {
	return fmt.Sprintf("<file %s>", f.name)
}

func fileModule() *vm.Scope {
	return module(map[string]vm.Value{
		"open":             nativeFn([]string{"path"}, fileOpen),
		"create":           nativeFn([]string{"path"}, fileCreate),
		"next_char":        nativeFn([]string{"f"}, fileNextChar),
		"peek_char":        nativeFn([]string{"f"}, filePeekChar),
		"current_position": nativeFn([]string{"f"}, fileCurrentPosition),
		"eof":              nativeFn([]string{"f"}, fileEOF),
		"write_u8":         nativeFn([]string{"f", "v"}, fileWriteU8),
		"write_u32":        nativeFn([]string{"f", "v"}, fileWriteU32),
		"write_i32":        nativeFn([]string{"f", "v"}, fileWriteI32),
		"write_u64":        nativeFn([]string{"f", "v"}, fileWriteU64),
		"write_str":        nativeFn([]string{"f", "s"}, fileWriteStr),
	})
}

func asFileHandle(v vm.Value, builtin string) (*fileHandle, error) {
	if v.Kind != vm.KindHost {
		return nil, herr.Host(builtin, "argument is not a file handle")
	}
	fh, ok := v.Host.(*fileHandle)
	if !ok {
		return nil, herr.Host(builtin, "argument is not a file handle")
	}
	return fh, nil
}

func fileOpen(it *vm.Interpreter, scope *vm.Scope) error {
	path := arg(scope, "path")
	if path.Kind != vm.KindString {
		return herr.Host("file::open", "path must be a string")
	}
	data, err := os.ReadFile(path.StringVal())
	if err != nil {
		return herr.Host("file::open", err.Error())
	}
	it.Push(vm.Host(&fileHandle{name: path.StringVal(), data: data}))
	return nil
}

func fileCreate(it *vm.Interpreter, scope *vm.Scope) error {
	path := arg(scope, "path")
	if path.Kind != vm.KindString {
		return herr.Host("file::create", "path must be a string")
	}
	f, err := os.Create(path.StringVal())
	if err != nil {
		return herr.Host("file::create", err.Error())
	}
	it.Push(vm.Host(&fileHandle{name: path.StringVal(), w: f}))
	return nil
}

func fileNextChar(it *vm.Interpreter, scope *vm.Scope) error {
	fh, err := asFileHandle(arg(scope, "f"), "file::next_char")
	if err != nil {
		return err
	}
	if fh.pos >= len(fh.data) {
		return herr.Host("file::next_char", "at end of file")
	}
	ch := fh.data[fh.pos]
	fh.pos++
	it.Push(vm.Str(string(ch)))
	return nil
}

func filePeekChar(it *vm.Interpreter, scope *vm.Scope) error {
	fh, err := asFileHandle(arg(scope, "f"), "file::peek_char")
	if err != nil {
		return err
	}
	if fh.pos >= len(fh.data) {
		return herr.Host("file::peek_char", "at end of file")
	}
	it.Push(vm.Str(string(fh.data[fh.pos])))
	return nil
}

func fileCurrentPosition(it *vm.Interpreter, scope *vm.Scope) error {
	fh, err := asFileHandle(arg(scope, "f"), "file::current_position")
	if err != nil {
		return err
	}
	it.Push(vm.Int(int64(fh.pos)))
	return nil
}

func fileEOF(it *vm.Interpreter, scope *vm.Scope) error {
	fh, err := asFileHandle(arg(scope, "f"), "file::eof")
	if err != nil {
		return err
	}
	it.Push(vm.Bool(fh.pos >= len(fh.data)))
	return nil
}

func fileWriteU8(it *vm.Interpreter, scope *vm.Scope) error {
	fh, err := asFileHandle(arg(scope, "f"), "file::write_u8")
	if err != nil {
		return err
	}
	v := arg(scope, "v")
	if v.Kind != vm.KindInt {
		return herr.Host("file::write_u8", "value must be an int")
	}
	if _, err := fh.w.Write([]byte{byte(v.Int)}); err != nil {
		return herr.Host("file::write_u8", err.Error())
	}
	it.Push(vm.Nil())
	return nil
}

func fileWriteU32(it *vm.Interpreter, scope *vm.Scope) error {
	return fileWriteFixed(it, scope, "file::write_u32", 4, func(buf []byte, v int64) {
		binary.LittleEndian.PutUint32(buf, uint32(v))
	})
}

func fileWriteI32(it *vm.Interpreter, scope *vm.Scope) error {
	return fileWriteFixed(it, scope, "file::write_i32", 4, func(buf []byte, v int64) {
		binary.LittleEndian.PutUint32(buf, uint32(int32(v)))
	})
}

func fileWriteU64(it *vm.Interpreter, scope *vm.Scope) error {
	return fileWriteFixed(it, scope, "file::write_u64", 8, func(buf []byte, v int64) {
		binary.LittleEndian.PutUint64(buf, uint64(v))
	})
}

func fileWriteFixed(it *vm.Interpreter, scope *vm.Scope, builtin string, size int, put func([]byte, int64)) error {
	fh, err := asFileHandle(arg(scope, "f"), builtin)
	if err != nil {
		return err
	}
	v := arg(scope, "v")
	if v.Kind != vm.KindInt {
		return herr.Host(builtin, "value must be an int")
	}
	buf := make([]byte, size)
	put(buf, v.Int)
	if _, err := fh.w.Write(buf); err != nil {
		return herr.Host(builtin, err.Error())
	}
	it.Push(vm.Nil())
	return nil
}

func fileWriteStr(it *vm.Interpreter, scope *vm.Scope) error {
	fh, err := asFileHandle(arg(scope, "f"), "file::write_str")
	if err != nil {
		return err
	}
	s := arg(scope, "s")
	if s.Kind != vm.KindString {
		return herr.Host("file::write_str", "value must be a string")
	}
	if _, err := fh.w.Write(append(s.Str.Data, 0)); err != nil {
		return herr.Host("file::write_str", err.Error())
	}
	it.Push(vm.Nil())
	return nil
}
