package vm

import (
	"fmt"

	"github.com/hek-lang/hek/internal/herr"
)

// ModuleLoader resolves an on-demand `mod name` statement (no inline
// body) to that module's lowered instructions, grounded on the
// teacher's internal/modules/loader.go pattern of loading a sibling
// source file by name.
type ModuleLoader interface {
	Load(name string) ([]Instruction, error)
}

// Interpreter is a stack-based virtual machine: one shared value
// stack threaded through every nested Run call (one per function call
// and one per loaded module; blocks and inline module bodies run in
// the enclosing Run), a scope chain per Run frame, and a
// program-counter loop per instruction list. Jumps resolve markers by
// a linear scan of the current instruction list from its start, a
// known, accepted inefficiency rather than a precomputed jump table.
type Interpreter struct {
	Global *Scope
	Stack  []Value
	Loader ModuleLoader
}

// New creates an Interpreter with a fresh global scope.
func New() *Interpreter {
	return &Interpreter{Global: NewScope(nil)}
}

func (it *Interpreter) push(v Value) {
	it.Stack = append(it.Stack, v)
}

func (it *Interpreter) pop() (Value, error) {
	n := len(it.Stack)
	if n == 0 {
		return Value{}, fmt.Errorf("hek: value stack underflow")
	}
	v := it.Stack[n-1]
	it.Stack = it.Stack[:n-1]
	return v, nil
}

func (it *Interpreter) peek() (Value, error) {
	n := len(it.Stack)
	if n == 0 {
		return Value{}, fmt.Errorf("hek: value stack underflow")
	}
	return it.Stack[n-1], nil
}

// Push and Pop expose the interpreter's value stack to system
// instructions (internal/stdlib), which run as a native function's
// entire body and must push their own return value themselves.
func (it *Interpreter) Push(v Value) { it.push(v) }
func (it *Interpreter) Pop() (Value, error) { return it.pop() }

func findMarker(instrs []Instruction, id int) int {
	for i, ins := range instrs {
		if ins.Op == OpMarker && ins.Marker == id {
			return i
		}
	}
	return -1
}

// Run executes instrs in scope and returns the value the body
// produces: the value an explicit `ret` carried, or the value of the
// last expression evaluated if control falls off the end (or nil if
// the body evaluated nothing).
func (it *Interpreter) Run(instrs []Instruction, scope *Scope) (Value, error) {
	pc := 0
	last := Nil()
	base := len(it.Stack)
	for pc < len(instrs) {
		ins := instrs[pc]
		switch ins.Op {
		case OpNop, OpMarker:
			pc++

		case OpDiscard:
			// Pops only if this frame has pushed something (spec.md
			// §4.4's "pop if non-empty"); values below this frame's
			// base belong to the caller and are never discarded here.
			if len(it.Stack) > base {
				it.Stack = it.Stack[:len(it.Stack)-1]
			}
			pc++

		case OpDuplicate:
			v, err := it.peek()
			if err != nil {
				return Value{}, err
			}
			it.push(v)
			pc++

		case OpLiteral:
			it.push(ins.Literal.Clone())
			last = ins.Literal
			pc++

		case OpGet:
			v, ok := scope.Get(ins.Name)
			if !ok {
				return Value{}, herr.UnboundIdentifier(ins.Line, ins.Name)
			}
			it.push(v)
			pc++

		case OpGetQualified:
			v, ok := scope.GetQualified(ins.Path)
			if !ok {
				return Value{}, herr.NotAModule(ins.Line, ins.Path[0])
			}
			it.push(v)
			pc++

		case OpSet:
			v, err := it.pop()
			if err != nil {
				return Value{}, err
			}
			if !scope.Set(ins.Name, v) {
				return Value{}, herr.UnboundIdentifier(ins.Line, ins.Name)
			}
			it.push(v)
			pc++

		case OpBind:
			v, err := it.pop()
			if err != nil {
				return Value{}, err
			}
			scope.Bind(ins.Name, v)
			it.push(v)
			pc++

		case OpEnterScope:
			scope = NewScope(scope)
			pc++

		case OpExitScope:
			scope = scope.Parent
			pc++

		case OpExitAsModule:
			scope.PublishModule(scope.Parent, ins.ModuleName)
			scope = scope.Parent
			pc++

		case OpIf:
			cond, err := it.pop()
			if err != nil {
				return Value{}, err
			}
			if cond.Kind != KindBool {
				return Value{}, herr.TypeMismatch(ins.Line, "if condition", cond.Kind.String())
			}
			var target int
			if cond.Bool {
				target = findMarker(instrs, ins.ThenMarker)
			} else {
				target = findMarker(instrs, ins.ElseMarker)
			}
			if target < 0 {
				return Value{}, fmt.Errorf("hek: unresolved marker in if at line %d", ins.Line)
			}
			pc = target

		case OpJump, OpJumpToMarker:
			target := findMarker(instrs, ins.Marker)
			if target < 0 {
				return Value{}, fmt.Errorf("hek: unresolved marker at line %d", ins.Line)
			}
			pc = target

		case OpBinOp:
			b, err := it.pop()
			if err != nil {
				return Value{}, err
			}
			a, err := it.pop()
			if err != nil {
				return Value{}, err
			}
			res, err := applyBinOp(ins.Line, ins.BinOp, a, b)
			if err != nil {
				return Value{}, err
			}
			it.push(res)
			pc++

		case OpLogNot:
			v, err := it.pop()
			if err != nil {
				return Value{}, err
			}
			if v.Kind != KindBool {
				return Value{}, herr.TypeMismatch(ins.Line, "!", v.Kind.String())
			}
			it.push(Bool(!v.Bool))
			pc++

		case OpMakeClosure:
			it.push(Func(&Function{Name: ins.FnName, Params: ins.Params, Body: ins.Body, Captured: scope}))
			pc++

		case OpCall:
			callee, err := it.pop()
			if err != nil {
				return Value{}, err
			}
			args := make([]Value, ins.Argc)
			for i := 0; i < ins.Argc; i++ {
				v, err := it.pop()
				if err != nil {
					return Value{}, err
				}
				args[i] = v
			}
			result, err := it.call(ins.Line, callee, args)
			if err != nil {
				return Value{}, err
			}
			it.push(result)
			pc++

		case OpRet:
			v, err := it.retValue(base)
			if err != nil {
				return Value{}, err
			}
			return v, nil

		case OpGetIndex:
			idx, err := it.pop()
			if err != nil {
				return Value{}, err
			}
			coll, err := it.pop()
			if err != nil {
				return Value{}, err
			}
			v, err := indexGet(ins.Line, coll, idx)
			if err != nil {
				return Value{}, err
			}
			it.push(v)
			pc++

		case OpSetIndex:
			val, err := it.pop()
			if err != nil {
				return Value{}, err
			}
			idx, err := it.pop()
			if err != nil {
				return Value{}, err
			}
			coll, err := it.pop()
			if err != nil {
				return Value{}, err
			}
			if err := indexSet(ins.Line, coll, idx, val); err != nil {
				return Value{}, err
			}
			it.push(val)
			pc++

		case OpGetKey:
			coll, err := it.pop()
			if err != nil {
				return Value{}, err
			}
			v, err := indexGet(ins.Line, coll, Str(ins.Name))
			if err != nil {
				return Value{}, err
			}
			it.push(v)
			pc++

		case OpSetKey:
			val, err := it.pop()
			if err != nil {
				return Value{}, err
			}
			coll, err := it.pop()
			if err != nil {
				return Value{}, err
			}
			if err := indexSet(ins.Line, coll, Str(ins.Name), val); err != nil {
				return Value{}, err
			}
			it.push(val)
			pc++

		case OpAppendList:
			val, err := it.pop()
			if err != nil {
				return Value{}, err
			}
			list, err := it.pop()
			if err != nil {
				return Value{}, err
			}
			if list.Kind != KindList {
				return Value{}, herr.TypeMismatch(ins.Line, "append", list.Kind.String())
			}
			list.List.Items = append(list.List.Items, val)
			it.push(list)
			pc++

		case OpLoadModule:
			if it.Loader == nil {
				return Value{}, fmt.Errorf("hek: no module loader configured, cannot load %q", ins.ModuleName)
			}
			modInstrs, err := it.Loader.Load(ins.ModuleName)
			if err != nil {
				return Value{}, err
			}
			modScope := NewScope(nil)
			if _, err := it.Run(modInstrs, modScope); err != nil {
				return Value{}, err
			}
			modScope.PublishModule(scope, ins.ModuleName)
			it.push(Nil())
			pc++

		case OpSystem:
			if ins.System == nil {
				return Value{}, fmt.Errorf("hek: system instruction with no host callback at line %d", ins.Line)
			}
			if err := ins.System(it, scope); err != nil {
				return Value{}, err
			}
			pc++

		default:
			return Value{}, fmt.Errorf("hek: unhandled opcode %s at line %d", ins.Op, ins.Line)
		}
	}
	if len(it.Stack) > base {
		last = it.Stack[len(it.Stack)-1]
		it.Stack = it.Stack[:base]
	}
	return last, nil
}

// retValue pops ret's operand, if the lowering pass emitted one. A
// bare "ret;" lowers to OpRet with no preceding value instruction, so
// the stack may hold nothing past this frame's base at this point;
// that is not underflow, it means "return nil". base is this frame's
// stack depth at entry, since the single value stack is shared with
// whichever frame called into this one.
func (it *Interpreter) retValue(base int) (Value, error) {
	if len(it.Stack) <= base {
		return Nil(), nil
	}
	return it.pop()
}

// call invokes a function value with already-evaluated args in
// left-to-right order (the lowering pass pushed them in reverse so
// OpCall's pop loop recovers that order).
func (it *Interpreter) call(line int, callee Value, args []Value) (Value, error) {
	if callee.Kind != KindFunction {
		return Value{}, herr.NotCallable(line, callee.Kind.String())
	}
	fn := callee.Fn
	if len(args) != len(fn.Params) {
		return Value{}, herr.Arity(line, len(fn.Params), len(args))
	}
	parent := fn.Captured
	if parent == nil {
		parent = it.Global
	}
	callScope := NewScope(parent)
	for i, p := range fn.Params {
		callScope.Bind(p, args[i])
	}
	return it.Run(fn.Body, callScope)
}

// Call invokes a function value from outside the interpreter loop
// (cmd/hek's driver, to call a loaded program's `start`).
func (it *Interpreter) Call(line int, callee Value, args []Value) (Value, error) {
	return it.call(line, callee, args)
}

func indexGet(line int, coll, idx Value) (Value, error) {
	switch coll.Kind {
	case KindList:
		if idx.Kind != KindInt {
			return Value{}, herr.TypeMismatch(line, "[]", idx.Kind.String())
		}
		if idx.Int < 0 || idx.Int >= int64(len(coll.List.Items)) {
			return Value{}, herr.IndexOutOfRange(line, idx.Int)
		}
		return coll.List.Items[idx.Int], nil
	case KindMap:
		key := idx
		if key.Kind != KindString {
			return Value{}, herr.TypeMismatch(line, "[]", idx.Kind.String())
		}
		if v, ok := coll.Map.Get(key.StringVal()); ok {
			return v, nil
		}
		return Nil(), nil
	case KindString:
		if idx.Kind != KindInt {
			return Value{}, herr.TypeMismatch(line, "[]", idx.Kind.String())
		}
		if idx.Int < 0 || idx.Int >= int64(len(coll.Str.Data)) {
			return Value{}, herr.IndexOutOfRange(line, idx.Int)
		}
		return Str(string(coll.Str.Data[idx.Int])), nil
	default:
		return Value{}, herr.TypeMismatch(line, "[]", coll.Kind.String())
	}
}

func indexSet(line int, coll, idx, val Value) error {
	switch coll.Kind {
	case KindList:
		if idx.Kind != KindInt {
			return herr.TypeMismatch(line, "[]=", idx.Kind.String())
		}
		if idx.Int < 0 || idx.Int >= int64(len(coll.List.Items)) {
			return herr.IndexOutOfRange(line, idx.Int)
		}
		coll.List.Items[idx.Int] = val
		return nil
	case KindMap:
		if idx.Kind != KindString {
			return herr.TypeMismatch(line, "[]=", idx.Kind.String())
		}
		coll.Map.Set(idx.StringVal(), val)
		return nil
	default:
		return herr.TypeMismatch(line, "[]=", coll.Kind.String())
	}
}
