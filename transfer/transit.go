package transfer

import (
	"context"
	"strings"

	"github.com/reusee/places/taivm"
)

// Transit is a private heap holding values in flight between two instances.
// A creator copies into a transit before handing it off; after that only the
// receiving worker reads it.
type Transit struct {
	heap        *taivm.Heap
	symbols     map[transitSymbolKey]*taivm.Symbol
	modulePaths map[string]*taivm.ModulePath
}

type transitSymbolKey struct {
	table taivm.SymbolTable
	kind  taivm.SymbolKind
	name  string
}

var _ Target = new(Transit)

func NewTransit() *Transit {
	return &Transit{
		heap:        taivm.NewHeap(),
		symbols:     make(map[transitSymbolKey]*taivm.Symbol),
		modulePaths: make(map[string]*taivm.ModulePath),
	}
}

func (t *Transit) Heap() *taivm.Heap {
	return t.heap
}

// InternSymbol interns locally. Transit symbols carry no canonical id; they
// are canonicalized when copied out.
func (t *Transit) InternSymbol(ctx context.Context, table taivm.SymbolTable, kind taivm.SymbolKind, name string) (*taivm.Symbol, error) {
	key := transitSymbolKey{
		table: table,
		kind:  kind,
		name:  name,
	}
	if sym, ok := t.symbols[key]; ok {
		return sym, nil
	}
	key.name = strings.Clone(name)
	sym := &taivm.Symbol{
		Heap:  t.heap,
		Name:  key.name,
		Table: table,
		Kind:  kind,
	}
	t.symbols[key] = sym
	return sym, nil
}

func (t *Transit) InternModulePath(ctx context.Context, name string) (*taivm.ModulePath, error) {
	if mp, ok := t.modulePaths[name]; ok {
		return mp, nil
	}
	name = strings.Clone(name)
	mp := &taivm.ModulePath{
		Heap: t.heap,
		Name: name,
	}
	t.modulePaths[name] = mp
	return mp, nil
}
