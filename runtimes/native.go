package runtimes

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/reusee/places/taivm"
)

// Native wraps fn as a procedure that checks its arity and finds the calling
// instance through the VM host. max < 0 means variadic.
func Native(name string, min, max int, fn func(inst *Instance, args []any) (any, error)) taivm.NativeFunc {
	return taivm.NativeFunc{
		Name: name,
		Func: func(vm *taivm.VM, args []any) (any, error) {
			if len(args) < min || (max >= 0 && len(args) > max) {
				return nil, &ArityError{
					Name: name,
					Min:  min,
					Max:  max,
					Got:  len(args),
				}
			}
			inst, ok := vm.Host.(*Instance)
			if !ok {
				return nil, fmt.Errorf("%s: no runtime instance: %w", name, ErrUnsupported)
			}
			return fn(inst, args)
		},
	}
}

// Display renders v the way print does.
func Display(v any) string {
	switch v := v.(type) {
	case nil:
		return "#<void>"
	case bool:
		if v {
			return "#t"
		}
		return "#f"
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case string:
		return v
	case *taivm.Str:
		return v.String()
	case *taivm.Path:
		return "#<path:" + v.String() + ">"
	case *taivm.Symbol:
		return v.Name
	case *taivm.ModulePath:
		return v.String()
	case *taivm.List:
		var b strings.Builder
		b.WriteString("(")
		for i, elem := range v.Elements {
			if i > 0 {
				b.WriteString(" ")
			}
			b.WriteString(Display(elem))
		}
		b.WriteString(")")
		return b.String()
	case taivm.NativeFunc:
		return "#<procedure:" + v.Name + ">"
	case *taivm.Closure:
		return "#<procedure:" + v.Fun.Name + ">"
	case fmt.Stringer:
		return v.String()
	}
	return fmt.Sprintf("%v", v)
}
