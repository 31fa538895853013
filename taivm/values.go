package taivm

import (
	"fmt"
	"reflect"
	"slices"
)

// Str is a mutable character string.
type Str struct {
	Heap  *Heap
	Runes []rune
}

func (s *Str) String() string {
	return string(s.Runes)
}

func (s *Str) Len() int {
	return len(s.Runes)
}

func (s *Str) Set(i int, r rune) error {
	if i < 0 || i >= len(s.Runes) {
		return fmt.Errorf("index out of bounds: %d", i)
	}
	s.Runes[i] = r
	return nil
}

// Path is a filesystem path kept as raw bytes.
type Path struct {
	Heap  *Heap
	Bytes []byte
}

func (p *Path) String() string {
	return string(p.Bytes)
}

type SymbolTable uint8

const (
	TableSymbol SymbolTable = iota
	TableKeyword
	TableParallel
)

func (t SymbolTable) String() string {
	switch t {
	case TableSymbol:
		return "symbol"
	case TableKeyword:
		return "keyword"
	case TableParallel:
		return "parallel"
	}
	return fmt.Sprintf("table(%d)", uint8(t))
}

type SymbolKind uint8

const (
	SymbolInterned SymbolKind = iota
	SymbolUnreadable
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolInterned:
		return "interned"
	case SymbolUnreadable:
		return "unreadable"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Symbol is an interned name. Within one heap there is exactly one Symbol per
// (Table, Kind, Name); across heaps, equal symbols share the Canonical id.
type Symbol struct {
	Heap      *Heap
	Name      string
	Table     SymbolTable
	Kind      SymbolKind
	Canonical uint64
}

func (s *Symbol) String() string {
	return s.Name
}

// ModulePath is a resolved module path, interned like symbols.
type ModulePath struct {
	Heap      *Heap
	Name      string
	Canonical uint64
}

func (m *ModulePath) String() string {
	return "#<module-path:" + m.Name + ">"
}

// Equal is structural equality: contents for strings and paths, identity for
// interned values.
func Equal(a, b any) bool {
	switch a := a.(type) {
	case *Str:
		b, ok := b.(*Str)
		return ok && slices.Equal(a.Runes, b.Runes)
	case *Path:
		b, ok := b.(*Path)
		return ok && slices.Equal(a.Bytes, b.Bytes)
	case *List:
		b, ok := b.(*List)
		if !ok || len(a.Elements) != len(b.Elements) {
			return false
		}
		for i := range a.Elements {
			if !Equal(a.Elements[i], b.Elements[i]) {
				return false
			}
		}
		return true
	case NativeFunc, *Closure, *Function:
		return false
	}
	return identical(a, b)
}

// Eq is identity.
func Eq(a, b any) bool {
	switch a.(type) {
	case NativeFunc:
		return false
	}
	switch b.(type) {
	case NativeFunc:
		return false
	}
	return identical(a, b)
}

func identical(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}
