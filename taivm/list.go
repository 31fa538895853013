package taivm

import (
	"errors"
	"fmt"
)

var (
	ErrImmutable = errors.New("immutable")
	ErrCrossHeap = errors.New("cross-heap reference")
)

type List struct {
	Heap      *Heap
	Elements  []any
	Immutable bool
}

// Append adds v in place. Heap-owned values must come from the list's own
// heap.
func (l *List) Append(v any) error {
	if l.Immutable {
		return fmt.Errorf("list: %w", ErrImmutable)
	}
	if h := HeapOf(v); h != nil && h != l.Heap {
		return fmt.Errorf("list of %v, value of %v: %w", l.Heap, h, ErrCrossHeap)
	}
	if l.Heap != nil {
		l.Heap.account(16)
	}
	l.Elements = append(l.Elements, v)
	return nil
}
