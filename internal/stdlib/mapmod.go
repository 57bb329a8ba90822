package stdlib

import (
	"github.com/hek-lang/hek/internal/herr"
	"github.com/hek-lang/hek/internal/vm"
)

func mapModule() *vm.Scope {
	return module(map[string]vm.Value{
		"keys": nativeFn([]string{"m"}, mapKeys),
	})
}

// mapKeys returns m's keys as a list of strings in insertion order,
// the order MapCell.Keys already preserves.
func mapKeys(it *vm.Interpreter, scope *vm.Scope) error {
	m := arg(scope, "m")
	if m.Kind != vm.KindMap {
		return herr.Host("map::keys", "argument is not a map")
	}
	out := make([]vm.Value, len(m.Map.Keys))
	for i, k := range m.Map.Keys {
		out[i] = vm.Str(k)
	}
	it.Push(vm.List(out))
	return nil
}
