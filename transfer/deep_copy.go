package transfer

import (
	"context"

	"github.com/reusee/places/taivm"
)

// Target is the instance receiving copied values.
type Target interface {
	Heap() *taivm.Heap
	InternSymbol(ctx context.Context, table taivm.SymbolTable, kind taivm.SymbolKind, name string) (*taivm.Symbol, error)
	InternModulePath(ctx context.Context, name string) (*taivm.ModulePath, error)
}

// DeepCopy returns a value equivalent to v whose storage is owned by target.
// Immediates are returned unchanged; strings and paths are reallocated;
// symbols and module paths are re-interned so canonical identity survives.
func DeepCopy(ctx context.Context, target Target, v any) (any, error) {
	switch v := v.(type) {

	case nil, bool, int, int64, float64, string:
		// immediate or immutable
		return v, nil

	case *taivm.Str:
		return target.Heap().NewStrRunes(v.Runes), nil

	case *taivm.Path:
		return target.Heap().NewPath(v.Bytes), nil

	case *taivm.Symbol:
		if v.Heap == target.Heap() {
			return v, nil
		}
		return target.InternSymbol(ctx, v.Table, v.Kind, v.Name)

	case *taivm.ModulePath:
		if v.Heap == target.Heap() {
			return v, nil
		}
		return target.InternModulePath(ctx, v.Name)

	}

	return nil, &NotTransferableError{
		Value: v,
	}
}

// IsTransferable reports whether DeepCopy accepts v.
func IsTransferable(v any) bool {
	switch v.(type) {
	case nil, bool, int, int64, float64, string,
		*taivm.Str, *taivm.Path, *taivm.Symbol, *taivm.ModulePath:
		return true
	}
	return false
}
