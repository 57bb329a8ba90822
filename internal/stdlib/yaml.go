package stdlib

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/hek-lang/hek/internal/herr"
	"github.com/hek-lang/hek/internal/vm"
)

// yamlModule supplements spec.md's stdlib with encode/decode, mirroring
// the teacher's builtins_yaml.go one-for-one (same yaml.v3 round trip)
// but converting to/from Hek's own Value representation rather than
// Funxy's Object.
func yamlModule() *vm.Scope {
	return module(map[string]vm.Value{
		"encode": nativeFn([]string{"v"}, yamlEncode),
		"decode": nativeFn([]string{"s"}, yamlDecode),
	})
}

func yamlEncode(it *vm.Interpreter, scope *vm.Scope) error {
	out, err := yaml.Marshal(toPlain(arg(scope, "v")))
	if err != nil {
		return herr.Host("yaml::encode", err.Error())
	}
	it.Push(vm.Str(string(out)))
	return nil
}

func yamlDecode(it *vm.Interpreter, scope *vm.Scope) error {
	s := arg(scope, "s")
	if s.Kind != vm.KindString {
		return herr.Host("yaml::decode", "argument must be a string")
	}
	var data interface{}
	if err := yaml.Unmarshal(s.Str.Data, &data); err != nil {
		return herr.Host("yaml::decode", err.Error())
	}
	it.Push(fromPlain(data))
	return nil
}

// toPlain converts a Value to the plain Go shape yaml.Marshal expects,
// following the inverse of fromPlain below.
func toPlain(v vm.Value) interface{} {
	switch v.Kind {
	case vm.KindNil:
		return nil
	case vm.KindInt:
		return v.Int
	case vm.KindBool:
		return v.Bool
	case vm.KindString:
		return v.StringVal()
	case vm.KindList:
		out := make([]interface{}, len(v.List.Items))
		for i, item := range v.List.Items {
			out[i] = toPlain(item)
		}
		return out
	case vm.KindMap:
		out := make(map[string]interface{}, len(v.Map.Keys))
		for _, k := range v.Map.Keys {
			out[k] = toPlain(v.Map.Values[k])
		}
		return out
	default:
		return v.Print()
	}
}

// fromPlain converts a yaml.Unmarshal result to a Value: maps become
// Hek maps, sequences become lists, scalars their matching kind —
// grounded on builtins_yaml.go's inferFromYaml, which handles the same
// yaml.v3 quirk of decoding integers as Go int rather than float64.
func fromPlain(data interface{}) vm.Value {
	switch v := data.(type) {
	case nil:
		return vm.Nil()
	case bool:
		return vm.Bool(v)
	case int:
		return vm.Int(int64(v))
	case int64:
		return vm.Int(v)
	case float64:
		return vm.Str(fmt.Sprintf("%g", v))
	case string:
		return vm.Str(v)
	case []interface{}:
		items := make([]vm.Value, len(v))
		for i, item := range v {
			items[i] = fromPlain(item)
		}
		return vm.List(items)
	case map[string]interface{}:
		m := vm.NewMapCell()
		for k, val := range v {
			m.Set(k, fromPlain(val))
		}
		return vm.Map(m)
	case map[interface{}]interface{}:
		m := vm.NewMapCell()
		for k, val := range v {
			m.Set(fmt.Sprintf("%v", k), fromPlain(val))
		}
		return vm.Map(m)
	default:
		return vm.Str(fmt.Sprintf("%v", v))
	}
}
