package stdlib

import (
	"github.com/hek-lang/hek/internal/herr"
	"github.com/hek-lang/hek/internal/vm"
)

func strModule() *vm.Scope {
	return module(map[string]vm.Value{
		"length": nativeFn([]string{"s"}, strLength),
		"concat": nativeFn([]string{"a", "b"}, strConcat),
		"append": nativeFn([]string{"s", "ch"}, strAppend),
		"to":     nativeFn([]string{"v"}, strTo),
	})
}

func strLength(it *vm.Interpreter, scope *vm.Scope) error {
	s := arg(scope, "s")
	if s.Kind != vm.KindString {
		return herr.Host("str::length", "argument is not a string")
	}
	it.Push(vm.Int(int64(len(s.StringVal()))))
	return nil
}

func strConcat(it *vm.Interpreter, scope *vm.Scope) error {
	a, b := arg(scope, "a"), arg(scope, "b")
	if a.Kind != vm.KindString || b.Kind != vm.KindString {
		return herr.Host("str::concat", "both arguments must be strings")
	}
	it.Push(vm.Str(a.StringVal() + b.StringVal()))
	return nil
}

// strAppend grows s in place with ch's characters and returns s,
// mirroring original_source/src/intrp_std.cpp's append mutating the
// receiver rather than allocating a fresh string.
func strAppend(it *vm.Interpreter, scope *vm.Scope) error {
	s, ch := arg(scope, "s"), arg(scope, "ch")
	if s.Kind != vm.KindString || ch.Kind != vm.KindString {
		return herr.Host("str::append", "both arguments must be strings")
	}
	s.Str.Data = append(s.Str.Data, ch.Str.Data...)
	it.Push(s)
	return nil
}

// strTo is the supplemented polymorphic stringify builtin (spec.md §6
// names str::to(v) without specifying its per-kind behavior; resolved
// from original_source's to_str dispatch): every value kind renders
// through Value.Print, strings pass through unchanged.
func strTo(it *vm.Interpreter, scope *vm.Scope) error {
	it.Push(vm.Str(arg(scope, "v").Print()))
	return nil
}
