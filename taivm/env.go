package taivm

import (
	"iter"
	"maps"
	"slices"
)

// Env is a lexical scope. Lookups walk up through Parent.

type Env struct {
	Parent *Env
	Vars   map[string]any
}

func (e *Env) Get(name string) (any, bool) {
	if v, ok := e.Vars[name]; ok {
		return v, true
	}
	if e.Parent != nil {
		return e.Parent.Get(name)
	}
	return nil, false
}

func (e *Env) Def(name string, val any) {
	if e.Vars == nil {
		e.Vars = make(map[string]any)
	}
	e.Vars[name] = val
}

func (e *Env) Set(name string, val any) bool {
	if _, ok := e.Vars[name]; ok {
		e.Vars[name] = val
		return true
	}
	if e.Parent != nil {
		return e.Parent.Set(name, val)
	}
	return false
}

func (e *Env) NewChild() *Env {
	return &Env{
		Parent: e,
	}
}

// All yields every visible binding once, inner scopes shadowing outer ones,
// in name order.
func (e *Env) All() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		visible := make(map[string]any)
		for env := e; env != nil; env = env.Parent {
			for name, value := range env.Vars {
				if _, ok := visible[name]; !ok {
					visible[name] = value
				}
			}
		}
		for _, name := range slices.Sorted(maps.Keys(visible)) {
			if !yield(name, visible[name]) {
				return
			}
		}
	}
}
