package runtimes

import "github.com/mitchellh/copystructure"

// Params is the part of an instance's configuration inherited by the places
// it creates.
type Params struct {
	CollectionPaths []string
	MaxFrames       int
}

// Clone returns a deep copy sharing no storage with p.
func (p Params) Clone() Params {
	return copystructure.Must(copystructure.Copy(p)).(Params)
}

// StackBase records the worker an instance runs on and its frame budget.
type StackBase struct {
	Worker    uint64
	MaxFrames int
}
