package vm

import "fmt"

// Kind tags which field of Value is meaningful.
type Kind int

const (
	KindNil Kind = iota
	KindInt
	KindBool
	KindString
	KindList
	KindMap
	KindFunction
	KindHost
)

func (k Kind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindInt:
		return "int"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	case KindFunction:
		return "function"
	case KindHost:
		return "host"
	default:
		return "?"
	}
}

// StringCell is the mutable, reference-shared backing store of a
// string value (spec.md §3: "string (mutable character sequence)").
type StringCell struct {
	Data []byte
}

// ListCell is the reference-shared backing store of a list value.
type ListCell struct {
	Items []Value
}

// MapCell is the reference-shared backing store of a map value.
// Keys records insertion order, which is also iteration, print, and
// (by spec.md's invariant) the order used whenever the map's contents
// are enumerated.
type MapCell struct {
	Keys   []string
	Values map[string]Value
}

func NewMapCell() *MapCell {
	return &MapCell{Values: make(map[string]Value)}
}

func (m *MapCell) Get(key string) (Value, bool) {
	v, ok := m.Values[key]
	return v, ok
}

func (m *MapCell) Set(key string, v Value) {
	if _, exists := m.Values[key]; !exists {
		m.Keys = append(m.Keys, key)
	}
	m.Values[key] = v
}

// Function is a Hek function value: a parameter list, a lowered body,
// and an optional captured scope. Per spec.md's invariant, a function
// with a captured scope runs with that scope as parent; one without
// runs with the interpreter's global scope as parent.
type Function struct {
	Name     string
	Params   []string
	Body     []Instruction
	Captured *Scope // nil => use the running interpreter's global scope
}

// HostValue is an opaque value owned by the host interface (e.g. a
// file handle). Host values refuse cloning: the literal instruction
// clones its template, so a host value can never appear as a literal
// template — only system instructions produce them.
type HostValue interface {
	HostKind() string
	fmt.Stringer
}

// Value is Hek's tagged-union runtime value (spec.md §3). Lists, maps,
// and strings are reference-shared through their *Cell pointers;
// Clone is only ever applied to literal templates, producing a fresh
// instance per evaluation.
type Value struct {
	Kind Kind
	Int  int64
	Bool bool
	Str  *StringCell
	List *ListCell
	Map  *MapCell
	Fn   *Function
	Host HostValue
}

func Nil() Value                 { return Value{Kind: KindNil} }
func Int(v int64) Value          { return Value{Kind: KindInt, Int: v} }
func Bool(v bool) Value          { return Value{Kind: KindBool, Bool: v} }
func Str(s string) Value         { return Value{Kind: KindString, Str: &StringCell{Data: []byte(s)}} }
func List(items []Value) Value   { return Value{Kind: KindList, List: &ListCell{Items: items}} }
func Map(m *MapCell) Value       { return Value{Kind: KindMap, Map: m} }
func Func(f *Function) Value     { return Value{Kind: KindFunction, Fn: f} }
func Host(h HostValue) Value     { return Value{Kind: KindHost, Host: h} }

func (v Value) IsNil() bool      { return v.Kind == KindNil }
func (v Value) IsTruthy() bool   { return v.Kind == KindBool && v.Bool }

func (v Value) StringVal() string {
	if v.Str == nil {
		return ""
	}
	return string(v.Str.Data)
}

// Clone produces a fresh instance of mutable-kind values, per
// spec.md's invariant that literal pushes must not alias their
// template. Host values panic: they must never reach a literal slot.
func (v Value) Clone() Value {
	switch v.Kind {
	case KindString:
		data := make([]byte, len(v.Str.Data))
		copy(data, v.Str.Data)
		return Value{Kind: KindString, Str: &StringCell{Data: data}}
	case KindList:
		items := make([]Value, len(v.List.Items))
		copy(items, v.List.Items)
		return Value{Kind: KindList, List: &ListCell{Items: items}}
	case KindMap:
		m := NewMapCell()
		for _, k := range v.Map.Keys {
			m.Set(k, v.Map.Values[k])
		}
		return Value{Kind: KindMap, Map: m}
	case KindHost:
		panic("hek: cannot clone a host value")
	default:
		return v
	}
}

// Equal implements spec.md's value-equality rules: structural
// equality on lists, nominal (reference) equality on maps, ordinary
// equality on scalars, and the int/one-character-string cross-kind
// rule.
func Equal(a, b Value) bool {
	if a.Kind == KindInt && b.Kind == KindString && len(b.Str.Data) == 1 {
		return a.Int == int64(b.Str.Data[0])
	}
	if b.Kind == KindInt && a.Kind == KindString && len(a.Str.Data) == 1 {
		return b.Int == int64(a.Str.Data[0])
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindNil:
		return true
	case KindInt:
		return a.Int == b.Int
	case KindBool:
		return a.Bool == b.Bool
	case KindString:
		return string(a.Str.Data) == string(b.Str.Data)
	case KindList:
		if len(a.List.Items) != len(b.List.Items) {
			return false
		}
		for i := range a.List.Items {
			if !Equal(a.List.Items[i], b.List.Items[i]) {
				return false
			}
		}
		return true
	case KindMap:
		return a.Map == b.Map // nominal reference equality, by design (spec §9)
	case KindFunction:
		return a.Fn == b.Fn
	case KindHost:
		return a.Host == b.Host
	default:
		return false
	}
}

// Print renders a value the way `print`/string-conversion does: raw
// text for strings, otherwise a display form. Printv (structural
// display, quoting strings and bracketing collections) is
// internal/stdlib's job; this is the plainer of the two forms
// original_source/src/intrp_std.cpp's print(str) relies on.
func (v Value) Print() string {
	switch v.Kind {
	case KindNil:
		return "nil"
	case KindInt:
		return fmt.Sprintf("%d", v.Int)
	case KindBool:
		return fmt.Sprintf("%t", v.Bool)
	case KindString:
		return v.StringVal()
	case KindList:
		out := "["
		for i, item := range v.List.Items {
			if i > 0 {
				out += ", "
			}
			out += item.Printv()
		}
		return out + "]"
	case KindMap:
		out := "{"
		for i, k := range v.Map.Keys {
			if i > 0 {
				out += ", "
			}
			out += k + ": " + v.Map.Values[k].Printv()
		}
		return out + "}"
	case KindFunction:
		if v.Fn.Name != "" {
			return "<fn " + v.Fn.Name + ">"
		}
		return "<fn>"
	case KindHost:
		return v.Host.String()
	default:
		return "?"
	}
}

// Printv is the structural form printv(v) uses (spec.md §6, resolved
// from original_source's value::print overrides): strings are
// quoted, everything else matches Print.
func (v Value) Printv() string {
	if v.Kind == KindString {
		return fmt.Sprintf("%q", v.StringVal())
	}
	return v.Print()
}
