// Package stdlib binds Hek's host interface: the global functions and
// modules spec.md §6 lists, each a native Go callback wrapped as a
// function value whose body is a single OpSystem instruction. This
// mirrors the teacher's internal/evaluator/builtins_*.go split (one
// file per builtin family: term, yaml, json, ...), adapted from a
// tree-walking evaluator's direct Object-in-Object-out calls to Hek's
// call-a-function-value convention, so a builtin is indistinguishable
// from a Hek-defined closure at the call site.
package stdlib

import (
	"github.com/hek-lang/hek/internal/config"
	"github.com/hek-lang/hek/internal/vm"
)

// Install binds the minimum host surface into global: the top-level
// functions and the str/list/map/file/yaml modules.
func Install(global *vm.Scope) {
	global.Bind(config.NilName, vm.Nil())
	global.Bind(config.PrintName, nativeFn([]string{"s"}, hostPrint))
	global.Bind(config.PrintlnName, nativeFn([]string{"s"}, hostPrintln))
	global.Bind(config.PrintvName, nativeFn([]string{"v"}, hostPrintv))
	global.Bind(config.ErrorName, nativeFn([]string{"msg"}, hostError))

	if global.Modules == nil {
		global.Modules = make(map[string]*vm.Scope)
	}
	global.Modules[config.StrModuleName] = strModule()
	global.Modules[config.ListModuleName] = listModule()
	global.Modules[config.MapModuleName] = mapModule()
	global.Modules[config.FileModuleName] = fileModule()
	global.Modules[config.YamlModuleName] = yamlModule()
}

// nativeFn wraps a host callback as a callable Hek function value: a
// single OpSystem instruction as its body, so vm.Interpreter.call's
// arity check and parameter binding apply to native functions exactly
// as they do to ones lowered from a `fn` literal.
func nativeFn(params []string, fn vm.SystemFunc) vm.Value {
	return vm.Func(&vm.Function{
		Params: params,
		Body:   []vm.Instruction{{Op: vm.OpSystem, System: fn}},
	})
}

func module(binds map[string]vm.Value) *vm.Scope {
	s := vm.NewScope(nil)
	for k, v := range binds {
		s.Bind(k, v)
	}
	return s
}

// arg fetches a bound parameter by name; nativeFn's caller (vm.call)
// always binds every declared parameter before running the body, so a
// missing binding here means a builtin's own Params list is wrong, not
// a user error.
func arg(scope *vm.Scope, name string) vm.Value {
	v, _ := scope.Get(name)
	return v
}
