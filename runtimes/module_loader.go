package runtimes

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/reusee/places/taivm"
)

// Exports are the bindings a module provides, allocated in the requiring
// instance's heap.
type Exports map[string]any

type ModuleLoader interface {
	// LoadModule returns ErrModuleNotFound if name is not handled by this loader.
	LoadModule(ctx context.Context, inst *Instance, name string) (Exports, error)
}

type Loaders []ModuleLoader

func (l Loaders) LoadModule(ctx context.Context, inst *Instance, name string) (Exports, error) {
	for _, loader := range l {
		exports, err := loader.LoadModule(ctx, inst, name)
		if errors.Is(err, ErrModuleNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return exports, nil
	}
	return nil, fmt.Errorf("%s: %w", name, ErrModuleNotFound)
}

// ModuleFunc builds a module's exports for one instance.
type ModuleFunc func(ctx context.Context, inst *Instance) (Exports, error)

// Registry is a loader of modules defined in Go.
type Registry struct {
	mu      sync.RWMutex
	modules map[string]ModuleFunc
}

var _ ModuleLoader = new(Registry)

func NewRegistry() *Registry {
	return &Registry{
		modules: make(map[string]ModuleFunc),
	}
}

func (r *Registry) Register(name string, fn ModuleFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.modules[name] = fn
}

func (r *Registry) LoadModule(ctx context.Context, inst *Instance, name string) (Exports, error) {
	r.mu.RLock()
	fn, ok := r.modules[name]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrModuleNotFound
	}
	return fn(ctx, inst)
}

// ResolveModulePath converts a module reference to this instance's module
// path value.
func (i *Instance) ResolveModulePath(ctx context.Context, ref any) (*taivm.ModulePath, error) {
	var name string
	switch ref := ref.(type) {
	case *taivm.ModulePath:
		if ref.Heap == i.heap {
			return ref, nil
		}
		name = ref.Name
	case *taivm.Str:
		name = ref.String()
	case *taivm.Symbol:
		name = ref.Name
	case *taivm.Path:
		name = filepath.Clean(ref.String())
	case string:
		name = ref
	default:
		return nil, &ArgumentError{
			Name:     "module-path",
			Expected: "module reference",
			Got:      ref,
		}
	}
	if name == "" {
		return nil, &ArgumentError{
			Name:     "module-path",
			Expected: "non-empty module name",
			Got:      ref,
		}
	}
	return i.InternModulePath(ctx, name)
}

// Require loads the module ref, once per instance, and returns its export.
func (i *Instance) Require(ctx context.Context, ref any, export string) (any, error) {
	mp, err := i.ResolveModulePath(ctx, ref)
	if err != nil {
		return nil, err
	}
	exports, ok := i.modules[mp]
	if !ok {
		if i.loading[mp] {
			return nil, fmt.Errorf("module %s: cyclic require", mp.Name)
		}
		i.loading[mp] = true
		exports, err = i.loaders.LoadModule(ctx, i, mp.Name)
		delete(i.loading, mp)
		if err != nil {
			return nil, err
		}
		i.modules[mp] = exports
		i.Logger.DebugContext(ctx, "module loaded",
			"module", mp.Name,
			"instance", i.ID,
		)
	}
	v, ok := exports[export]
	if !ok {
		return nil, &ExportNotFoundError{
			Module: mp.Name,
			Export: export,
		}
	}
	return v, nil
}
