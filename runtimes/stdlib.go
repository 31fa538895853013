package runtimes

import (
	"context"
	"fmt"

	"github.com/reusee/places/taivm"
)

// Std is the standard library installed by Bootstrap.
var Std = Library{
	Name:    "std",
	Install: installStd,
}

func installStd(ctx context.Context, inst *Instance) error {
	for _, fn := range []taivm.NativeFunc{
		Native("print", 0, -1, stdPrint),
		Native("string", 1, 1, stdString),
		Native("string-length", 1, 1, stdStringLength),
		Native("string-append", 0, -1, stdStringAppend),
		Native("string-set!", 3, 3, stdStringSet),
		Native("string->symbol", 1, 1, stdStringToSymbol),
		Native("symbol->string", 1, 1, stdSymbolToString),
		Native("path", 1, 1, stdPath),
		Native("path->string", 1, 1, stdPathToString),
		Native("module-path", 1, 1, stdModulePath),
		Native("list", 0, -1, stdList),
		Native("list-append!", 2, 2, stdListAppend),
		Native("eq?", 2, 2, stdEq),
		Native("equal?", 2, 2, stdEqual),
		Native("+", 0, -1, stdAdd),
		Native("-", 1, -1, stdSub),
		Native("<", 2, 2, stdLess),
	} {
		inst.Define(fn.Name, fn)
	}
	return nil
}

func stdPrint(inst *Instance, args []any) (any, error) {
	parts := make([]any, 0, len(args))
	for _, arg := range args {
		parts = append(parts, Display(arg))
	}
	if _, err := fmt.Fprintln(inst.Stdout, parts...); err != nil {
		return nil, err
	}
	return nil, nil
}

func stringArg(name string, args []any, i int) (string, error) {
	switch v := args[i].(type) {
	case string:
		return v, nil
	case *taivm.Str:
		return v.String(), nil
	}
	return "", &ArgumentError{
		Name:     name,
		Index:    i,
		Expected: "string",
		Got:      args[i],
	}
}

func intArg(name string, args []any, i int) (int, error) {
	switch v := args[i].(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	}
	return 0, &ArgumentError{
		Name:     name,
		Index:    i,
		Expected: "integer",
		Got:      args[i],
	}
}

func stdString(inst *Instance, args []any) (any, error) {
	switch v := args[0].(type) {
	case *taivm.Symbol:
		return inst.heap.NewStr(v.Name), nil
	case *taivm.Path:
		return inst.heap.NewStr(v.String()), nil
	}
	s, err := stringArg("string", args, 0)
	if err != nil {
		return nil, err
	}
	return inst.heap.NewStr(s), nil
}

func stdStringLength(inst *Instance, args []any) (any, error) {
	switch v := args[0].(type) {
	case *taivm.Str:
		return v.Len(), nil
	case string:
		return len([]rune(v)), nil
	}
	return nil, &ArgumentError{
		Name:     "string-length",
		Expected: "string",
		Got:      args[0],
	}
}

func stdStringAppend(inst *Instance, args []any) (any, error) {
	var runes []rune
	for i := range args {
		s, err := stringArg("string-append", args, i)
		if err != nil {
			return nil, err
		}
		runes = append(runes, []rune(s)...)
	}
	return inst.heap.NewStrRunes(runes), nil
}

func stdStringSet(inst *Instance, args []any) (any, error) {
	s, ok := args[0].(*taivm.Str)
	if !ok {
		return nil, &ArgumentError{
			Name:     "string-set!",
			Expected: "mutable string",
			Got:      args[0],
		}
	}
	if s.Heap != inst.heap {
		return nil, fmt.Errorf("string-set!: string owned by %v: %w", s.Heap, ErrUnsupported)
	}
	i, err := intArg("string-set!", args, 1)
	if err != nil {
		return nil, err
	}
	var r rune
	switch v := args[2].(type) {
	case rune:
		r = v
	case string:
		runes := []rune(v)
		if len(runes) != 1 {
			return nil, &ArgumentError{
				Name:     "string-set!",
				Index:    2,
				Expected: "character",
				Got:      args[2],
			}
		}
		r = runes[0]
	default:
		return nil, &ArgumentError{
			Name:     "string-set!",
			Index:    2,
			Expected: "character",
			Got:      args[2],
		}
	}
	if err := s.Set(i, r); err != nil {
		return nil, fmt.Errorf("string-set!: %w", err)
	}
	return nil, nil
}

func stdStringToSymbol(inst *Instance, args []any) (any, error) {
	s, err := stringArg("string->symbol", args, 0)
	if err != nil {
		return nil, err
	}
	return inst.Intern(inst.ctx, s)
}

func stdSymbolToString(inst *Instance, args []any) (any, error) {
	sym, ok := args[0].(*taivm.Symbol)
	if !ok {
		return nil, &ArgumentError{
			Name:     "symbol->string",
			Expected: "symbol",
			Got:      args[0],
		}
	}
	return inst.heap.NewStr(sym.Name), nil
}

func stdPath(inst *Instance, args []any) (any, error) {
	s, err := stringArg("path", args, 0)
	if err != nil {
		return nil, err
	}
	return inst.heap.NewPath([]byte(s)), nil
}

func stdPathToString(inst *Instance, args []any) (any, error) {
	p, ok := args[0].(*taivm.Path)
	if !ok {
		return nil, &ArgumentError{
			Name:     "path->string",
			Expected: "path",
			Got:      args[0],
		}
	}
	return inst.heap.NewStr(p.String()), nil
}

func stdModulePath(inst *Instance, args []any) (any, error) {
	return inst.ResolveModulePath(inst.ctx, args[0])
}

func stdList(inst *Instance, args []any) (any, error) {
	return inst.heap.NewList(append([]any(nil), args...)...), nil
}

func stdListAppend(inst *Instance, args []any) (any, error) {
	l, ok := args[0].(*taivm.List)
	if !ok {
		return nil, &ArgumentError{
			Name:     "list-append!",
			Expected: "list",
			Got:      args[0],
		}
	}
	if err := l.Append(args[1]); err != nil {
		return nil, fmt.Errorf("list-append!: %w", err)
	}
	return nil, nil
}

func stdEq(inst *Instance, args []any) (any, error) {
	return taivm.Eq(args[0], args[1]), nil
}

func stdEqual(inst *Instance, args []any) (any, error) {
	return taivm.Equal(args[0], args[1]), nil
}

func stdAdd(inst *Instance, args []any) (any, error) {
	sum := 0
	for i := range args {
		n, err := intArg("+", args, i)
		if err != nil {
			return nil, err
		}
		sum += n
	}
	return sum, nil
}

func stdSub(inst *Instance, args []any) (any, error) {
	ret, err := intArg("-", args, 0)
	if err != nil {
		return nil, err
	}
	if len(args) == 1 {
		return -ret, nil
	}
	for i := 1; i < len(args); i++ {
		n, err := intArg("-", args, i)
		if err != nil {
			return nil, err
		}
		ret -= n
	}
	return ret, nil
}

func stdLess(inst *Instance, args []any) (any, error) {
	a, err := intArg("<", args, 0)
	if err != nil {
		return nil, err
	}
	b, err := intArg("<", args, 1)
	if err != nil {
		return nil, err
	}
	return a < b, nil
}
