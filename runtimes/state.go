package runtimes

import (
	"context"

	"github.com/reusee/places/taivm"
)

type stateKey uint8

const (
	keyInstance stateKey = iota + 1
	keyMainVM
	keyCurrentVM
	keyStackBase
)

var stateKeys = []stateKey{
	keyInstance,
	keyMainVM,
	keyCurrentVM,
	keyStackBase,
}

// ResetState clears every runtime value ctx inherited from the goroutine
// that spawned the current worker. It must run before New on a new worker.
func ResetState(ctx context.Context) context.Context {
	for _, key := range stateKeys {
		if ctx.Value(key) != nil {
			ctx = context.WithValue(ctx, key, nil)
		}
	}
	return ctx
}

// HasState reports whether ctx carries any runtime value.
func HasState(ctx context.Context) bool {
	for _, key := range stateKeys {
		if ctx.Value(key) != nil {
			return true
		}
	}
	return false
}

func Current(ctx context.Context) *Instance {
	inst, _ := ctx.Value(keyInstance).(*Instance)
	return inst
}

func CurrentVM(ctx context.Context) *taivm.VM {
	vm, _ := ctx.Value(keyCurrentVM).(*taivm.VM)
	return vm
}

func MainVM(ctx context.Context) *taivm.VM {
	vm, _ := ctx.Value(keyMainVM).(*taivm.VM)
	return vm
}

func CurrentStackBase(ctx context.Context) (StackBase, bool) {
	base, ok := ctx.Value(keyStackBase).(StackBase)
	return base, ok
}

func withState(ctx context.Context, inst *Instance) context.Context {
	ctx = context.WithValue(ctx, keyInstance, inst)
	ctx = context.WithValue(ctx, keyMainVM, inst.VM)
	ctx = context.WithValue(ctx, keyCurrentVM, inst.VM)
	ctx = context.WithValue(ctx, keyStackBase, inst.stackBase)
	return ctx
}
