package starmods

import (
	"fmt"
	"reflect"

	"github.com/reusee/places/runtimes"
	"github.com/reusee/places/taivm"
	"github.com/reusee/starlarkutil"
	"go.starlark.net/starlark"
)

// Opaque carries a runtime value with no starlark counterpart through starlark
// code unchanged.
type Opaque struct {
	Value any
}

var _ starlark.Value = Opaque{}

func (o Opaque) String() string {
	return runtimes.Display(o.Value)
}

func (o Opaque) Type() string {
	return fmt.Sprintf("%T", o.Value)
}

func (o Opaque) Freeze() {}

func (o Opaque) Truth() starlark.Bool {
	return starlark.True
}

func (o Opaque) Hash() (uint32, error) {
	return 0, fmt.Errorf("unhashable type: %s", o.Type())
}

// ToStarlark converts a runtime value of inst to starlark. Procedures become
// builtins applied by inst.
func ToStarlark(inst *runtimes.Instance, v any) (starlark.Value, error) {
	switch v := v.(type) {

	case nil:
		return starlark.None, nil

	case bool:
		return starlark.Bool(v), nil

	case string:
		return starlark.String(v), nil
	case *taivm.Str:
		return starlark.String(v.String()), nil
	case *taivm.Symbol:
		return starlark.String(v.Name), nil
	case *taivm.ModulePath:
		return starlark.String(v.Name), nil

	case []byte:
		return starlark.Bytes(v), nil
	case *taivm.Path:
		return starlark.Bytes(v.Bytes), nil

	case int:
		return starlark.MakeInt(v), nil
	case int8:
		return starlark.MakeInt(int(v)), nil
	case int16:
		return starlark.MakeInt(int(v)), nil
	case int32:
		return starlark.MakeInt(int(v)), nil
	case int64:
		return starlark.MakeInt64(v), nil

	case uint:
		return starlark.MakeUint(v), nil
	case uint8:
		return starlark.MakeUint(uint(v)), nil
	case uint16:
		return starlark.MakeUint(uint(v)), nil
	case uint32:
		return starlark.MakeUint(uint(v)), nil
	case uint64:
		return starlark.MakeUint64(v), nil

	case float32:
		return starlark.Float(v), nil
	case float64:
		return starlark.Float(v), nil

	case *taivm.List:
		return toStarlarkList(inst, v.Elements)
	case []any:
		return toStarlarkList(inst, v)

	case map[string]any:
		d := starlark.NewDict(len(v))
		for k, val := range v {
			sv, err := ToStarlark(inst, val)
			if err != nil {
				return nil, err
			}
			if err := d.SetKey(starlark.String(k), sv); err != nil {
				return nil, err
			}
		}
		return d, nil

	case taivm.NativeFunc:
		return newProcedure(inst, v.Name, v), nil
	case *taivm.Closure:
		return newProcedure(inst, v.Fun.Name, v), nil

	case Opaque:
		return v, nil

	}

	value := reflect.ValueOf(v)
	switch value.Kind() {

	case reflect.Bool:
		return starlark.Bool(value.Bool()), nil

	case reflect.String:
		return starlark.String(value.String()), nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return starlark.MakeInt64(value.Int()), nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return starlark.MakeUint64(value.Uint()), nil

	case reflect.Float32, reflect.Float64:
		return starlark.Float(value.Float()), nil

	case reflect.Slice, reflect.Array:
		elems := make([]any, value.Len())
		for i := range elems {
			elems[i] = value.Index(i).Interface()
		}
		return toStarlarkList(inst, elems)

	case reflect.Map:
		d := starlark.NewDict(value.Len())
		iter := value.MapRange()
		for iter.Next() {
			k, err := ToStarlark(inst, iter.Key().Interface())
			if err != nil {
				return nil, err
			}
			val, err := ToStarlark(inst, iter.Value().Interface())
			if err != nil {
				return nil, err
			}
			if err := d.SetKey(k, val); err != nil {
				return nil, err
			}
		}
		return d, nil

	case reflect.Func:
		return starlarkutil.MakeFunc("", value.Interface()), nil

	}

	return Opaque{
		Value: v,
	}, nil
}

func toStarlarkList(inst *runtimes.Instance, elems []any) (starlark.Value, error) {
	values := make([]starlark.Value, len(elems))
	for i, e := range elems {
		v, err := ToStarlark(inst, e)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return starlark.NewList(values), nil
}

// FromStarlark converts a starlark value to a runtime value allocated in inst.
// Starlark callables become procedures bound to inst's heap.
func FromStarlark(inst *runtimes.Instance, v starlark.Value) (any, error) {
	switch v := v.(type) {

	case starlark.NoneType:
		return nil, nil

	case starlark.Bool:
		return bool(v), nil

	case starlark.Int:
		i, ok := v.Int64()
		if !ok {
			return nil, fmt.Errorf("integer out of range: %s", v.String())
		}
		return int(i), nil

	case starlark.Float:
		return float64(v), nil

	case starlark.String:
		return inst.Heap().NewStr(string(v)), nil

	case starlark.Bytes:
		return inst.Heap().NewPath([]byte(v)), nil

	case *starlark.List:
		elems := make([]any, v.Len())
		for i := range elems {
			elem, err := FromStarlark(inst, v.Index(i))
			if err != nil {
				return nil, err
			}
			elems[i] = elem
		}
		return inst.Heap().NewList(elems...), nil

	case starlark.Tuple:
		elems := make([]any, len(v))
		for i, e := range v {
			elem, err := FromStarlark(inst, e)
			if err != nil {
				return nil, err
			}
			elems[i] = elem
		}
		l := inst.Heap().NewList(elems...)
		l.Immutable = true
		return l, nil

	case Opaque:
		return v.Value, nil

	case *Procedure:
		if v.inst == inst {
			return v.fn, nil
		}
		return procedure(inst, v), nil

	case starlark.Callable:
		return procedure(inst, v), nil

	}

	return nil, fmt.Errorf("%w: starlark %s", runtimes.ErrUnsupported, v.Type())
}
