package taivm

import (
	"fmt"
	"sync/atomic"
)

// Heap is the allocation domain of one runtime instance.
// Values that own mutable storage or interned identity record the heap they
// were allocated in, and must never be reachable from another heap.
type Heap struct {
	ID     uint64
	Parent *Heap

	allocated atomic.Int64
}

var heapSerial atomic.Uint64

func NewHeap() *Heap {
	return &Heap{
		ID: heapSerial.Add(1),
	}
}

// NewChild returns an independent heap registered under h.
func (h *Heap) NewChild() *Heap {
	return &Heap{
		ID:     heapSerial.Add(1),
		Parent: h,
	}
}

func (h *Heap) String() string {
	return fmt.Sprintf("heap#%d", h.ID)
}

func (h *Heap) Allocated() int64 {
	return h.allocated.Load()
}

func (h *Heap) account(n int) {
	h.allocated.Add(int64(n))
}

func (h *Heap) NewStr(s string) *Str {
	runes := []rune(s)
	h.account(len(runes) * 4)
	return &Str{
		Heap:  h,
		Runes: runes,
	}
}

func (h *Heap) NewStrRunes(runes []rune) *Str {
	h.account(len(runes) * 4)
	return &Str{
		Heap:  h,
		Runes: append([]rune(nil), runes...),
	}
}

func (h *Heap) NewPath(bs []byte) *Path {
	h.account(len(bs))
	return &Path{
		Heap:  h,
		Bytes: append([]byte(nil), bs...),
	}
}

func (h *Heap) NewList(elems ...any) *List {
	h.account(len(elems) * 16)
	return &List{
		Heap:     h,
		Elements: elems,
	}
}

// HeapOf reports the heap owning v, or nil for heap-independent values.
func HeapOf(v any) *Heap {
	switch v := v.(type) {
	case *Str:
		return v.Heap
	case *Path:
		return v.Heap
	case *Symbol:
		return v.Heap
	case *ModulePath:
		return v.Heap
	case *List:
		return v.Heap
	case NativeFunc:
		return v.Heap
	}
	return nil
}
