package runtimes

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"

	"github.com/reusee/places/taivm"
)

// Canonicalizer maps names to process-wide identities. Equal names always map
// to the same id, whichever instance asks.
type Canonicalizer interface {
	CanonicalSymbol(ctx context.Context, table taivm.SymbolTable, kind taivm.SymbolKind, name string) (uint64, error)
	CanonicalModulePath(ctx context.Context, name string) (uint64, error)
}

// Library installs bindings into an instance's globals.
type Library struct {
	Name    string
	Install func(ctx context.Context, inst *Instance) error
}

type Config struct {
	// Heap defaults to a fresh root heap.
	Heap          *taivm.Heap
	Params        Params
	StackBase     StackBase
	Canonicalizer Canonicalizer
	// Primitives are installed at construction.
	Primitives []Library
	// Stdlib is installed by Bootstrap.
	Stdlib  []Library
	Loaders Loaders
	Logger  *slog.Logger
	Stdout  io.Writer
}

// Instance is one runtime: a heap, a VM and the tables interning values into
// that heap. An instance is used by a single goroutine.
type Instance struct {
	ID      uint64
	VM      *taivm.VM
	Globals *taivm.Env
	Logger  *slog.Logger
	Stdout  io.Writer

	ctx          context.Context
	heap         *taivm.Heap
	params       Params
	stackBase    StackBase
	canon        Canonicalizer
	stdlib       []Library
	bootstrapped bool
	loaders      Loaders
	symbols      map[symbolKey]*taivm.Symbol
	modulePaths  map[string]*taivm.ModulePath
	modules      map[*taivm.ModulePath]Exports
	loading      map[*taivm.ModulePath]bool
}

type symbolKey struct {
	table taivm.SymbolTable
	kind  taivm.SymbolKind
	name  string
}

var instanceSerial atomic.Uint64

// New constructs an instance and returns the context carrying its runtime
// state. ctx must not carry another instance's state.
func New(ctx context.Context, config Config) (*Instance, context.Context, error) {
	if HasState(ctx) {
		return nil, nil, ErrStaleState
	}
	if config.Canonicalizer == nil {
		return nil, nil, fmt.Errorf("no canonicalizer: %w", ErrUnsupported)
	}

	heap := config.Heap
	if heap == nil {
		heap = taivm.NewHeap()
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	stdout := config.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}

	vm := taivm.NewVM(&taivm.Function{
		Name: "main",
	})
	vm.Heap = heap

	inst := &Instance{
		ID:          instanceSerial.Add(1),
		VM:          vm,
		Globals:     vm.Scope,
		Logger:      logger,
		Stdout:      stdout,
		heap:        heap,
		stackBase:   config.StackBase,
		canon:       config.Canonicalizer,
		stdlib:      config.Stdlib,
		loaders:     config.Loaders,
		symbols:     make(map[symbolKey]*taivm.Symbol),
		modulePaths: make(map[string]*taivm.ModulePath),
		modules:     make(map[*taivm.ModulePath]Exports),
		loading:     make(map[*taivm.ModulePath]bool),
	}
	vm.Host = inst
	inst.SetParams(config.Params)
	if config.StackBase.MaxFrames > 0 {
		vm.MaxFrames = config.StackBase.MaxFrames
	}

	ctx = withState(ctx, inst)
	inst.ctx = ctx

	for _, lib := range config.Primitives {
		if err := lib.Install(ctx, inst); err != nil {
			return nil, nil, fmt.Errorf("install %s: %w", lib.Name, err)
		}
	}

	return inst, ctx, nil
}

func (i *Instance) String() string {
	return fmt.Sprintf("instance#%d", i.ID)
}

func (i *Instance) Heap() *taivm.Heap {
	return i.heap
}

// Context returns the context carrying this instance's runtime state.
func (i *Instance) Context() context.Context {
	return i.ctx
}

func (i *Instance) StackBase() StackBase {
	return i.stackBase
}

func (i *Instance) Params() Params {
	return i.params.Clone()
}

// SetParams replaces the instance parameters with a private copy of p.
func (i *Instance) SetParams(p Params) {
	i.params = p.Clone()
	if p.MaxFrames > 0 {
		i.VM.MaxFrames = p.MaxFrames
	}
}

// Bootstrap installs the standard library. Calling it again is a no-op.
func (i *Instance) Bootstrap(ctx context.Context) error {
	if i.bootstrapped {
		return nil
	}
	for _, lib := range i.stdlib {
		if err := lib.Install(ctx, i); err != nil {
			return fmt.Errorf("install %s: %w", lib.Name, err)
		}
	}
	i.bootstrapped = true
	return nil
}

func (i *Instance) Bootstrapped() bool {
	return i.bootstrapped
}

// Define binds name in the instance globals.
func (i *Instance) Define(name string, value any) {
	i.Globals.Def(name, value)
}

func (i *Instance) Lookup(name string) (any, bool) {
	return i.Globals.Get(name)
}

// Apply calls fn with args on the instance VM.
func (i *Instance) Apply(ctx context.Context, fn any, args ...any) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return i.VM.Call(fn, args...)
}

// Intern returns the instance's symbol for name in the symbol table.
func (i *Instance) Intern(ctx context.Context, name string) (*taivm.Symbol, error) {
	return i.InternSymbol(ctx, taivm.TableSymbol, taivm.SymbolInterned, name)
}

// InternSymbol returns the unique symbol of this heap for (table, kind, name),
// allocating it on first use with the canonical id from the canonicalizer.
func (i *Instance) InternSymbol(ctx context.Context, table taivm.SymbolTable, kind taivm.SymbolKind, name string) (*taivm.Symbol, error) {
	key := symbolKey{
		table: table,
		kind:  kind,
		name:  name,
	}
	if sym, ok := i.symbols[key]; ok {
		return sym, nil
	}
	id, err := i.canon.CanonicalSymbol(ctx, table, kind, name)
	if err != nil {
		return nil, fmt.Errorf("canonicalize symbol %s: %w", name, err)
	}
	key.name = strings.Clone(name)
	sym := &taivm.Symbol{
		Heap:      i.heap,
		Name:      key.name,
		Table:     table,
		Kind:      kind,
		Canonical: id,
	}
	i.symbols[key] = sym
	return sym, nil
}

func (i *Instance) InternModulePath(ctx context.Context, name string) (*taivm.ModulePath, error) {
	if mp, ok := i.modulePaths[name]; ok {
		return mp, nil
	}
	id, err := i.canon.CanonicalModulePath(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("canonicalize module path %s: %w", name, err)
	}
	name = strings.Clone(name)
	mp := &taivm.ModulePath{
		Heap:      i.heap,
		Name:      name,
		Canonical: id,
	}
	i.modulePaths[name] = mp
	return mp, nil
}

// Owns reports whether v is heap-independent or allocated in this instance's
// heap.
func (i *Instance) Owns(v any) bool {
	heap := taivm.HeapOf(v)
	return heap == nil || heap == i.heap
}
