package stdlib

import (
	"github.com/hek-lang/hek/internal/herr"
	"github.com/hek-lang/hek/internal/vm"
)

func listModule() *vm.Scope {
	return module(map[string]vm.Value{
		"length": nativeFn([]string{"xs"}, listLength),
		"concat": nativeFn([]string{"a", "b"}, listConcat),
		"append": nativeFn([]string{"xs", "x"}, listAppend),
		"pop":    nativeFn([]string{"xs"}, listPop),
	})
}

func listLength(it *vm.Interpreter, scope *vm.Scope) error {
	xs := arg(scope, "xs")
	if xs.Kind != vm.KindList {
		return herr.Host("list::length", "argument is not a list")
	}
	it.Push(vm.Int(int64(len(xs.List.Items))))
	return nil
}

func listConcat(it *vm.Interpreter, scope *vm.Scope) error {
	a, b := arg(scope, "a"), arg(scope, "b")
	if a.Kind != vm.KindList || b.Kind != vm.KindList {
		return herr.Host("list::concat", "both arguments must be lists")
	}
	out := make([]vm.Value, 0, len(a.List.Items)+len(b.List.Items))
	out = append(out, a.List.Items...)
	out = append(out, b.List.Items...)
	it.Push(vm.List(out))
	return nil
}

// listAppend grows xs in place and returns xs, matching str::append's
// mutate-and-return-the-receiver convention.
func listAppend(it *vm.Interpreter, scope *vm.Scope) error {
	xs, x := arg(scope, "xs"), arg(scope, "x")
	if xs.Kind != vm.KindList {
		return herr.Host("list::append", "first argument is not a list")
	}
	xs.List.Items = append(xs.List.Items, x)
	it.Push(xs)
	return nil
}

// listPop removes and returns the last element of xs, raising a host
// runtime error on an empty list.
func listPop(it *vm.Interpreter, scope *vm.Scope) error {
	xs := arg(scope, "xs")
	if xs.Kind != vm.KindList {
		return herr.Host("list::pop", "argument is not a list")
	}
	n := len(xs.List.Items)
	if n == 0 {
		return herr.Host("list::pop", "list is empty")
	}
	last := xs.List.Items[n-1]
	xs.List.Items = xs.List.Items[:n-1]
	it.Push(last)
	return nil
}
