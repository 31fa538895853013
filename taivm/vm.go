package taivm

import (
	"errors"
	"fmt"
)

const DefaultMaxFrames = 4096

var ErrStackOverflow = errors.New("stack overflow")

type VM struct {
	CurrentFun   *Function
	IP           int
	OperandStack []any
	SP           int
	BP           int
	CallStack    []Frame
	Scope        *Env

	Heap      *Heap
	Host      any
	MaxFrames int
}

func NewVM(main *Function) *VM {
	scope := &Env{}
	return &VM{
		CurrentFun:   main,
		Scope:        scope,
		OperandStack: make([]any, 1024),
		CallStack:    make([]Frame, 0, 64),
		MaxFrames:    DefaultMaxFrames,
	}
}

func (v *VM) Get(name string) (any, bool) {
	return v.Scope.Get(name)
}

func (v *VM) Def(name string, val any) {
	v.Scope.Def(name, val)
}

func (v *VM) Set(name string, val any) bool {
	return v.Scope.Set(name, val)
}

func (v *VM) push(val any) {
	if v.SP >= len(v.OperandStack) {
		v.growOperandStack()
	}
	v.OperandStack[v.SP] = val
	v.SP++
}

func (v *VM) growOperandStack() {
	newCap := len(v.OperandStack) * 2
	if newCap == 0 {
		newCap = 8
	}
	newStack := make([]any, newCap)
	copy(newStack, v.OperandStack)
	v.OperandStack = newStack
}

func (v *VM) pop() any {
	if v.SP <= 0 {
		return nil
	}
	v.SP--
	val := v.OperandStack[v.SP]
	v.OperandStack[v.SP] = nil
	return val
}

func (v *VM) drop(n int) {
	if n <= 0 {
		return
	}
	if n > v.SP {
		n = v.SP
	}
	start := v.SP - n
	for i := 0; i < n; i++ {
		v.OperandStack[start+i] = nil
	}
	v.SP = start
}

// Call applies fn to args and runs it to completion on a fresh VM sharing
// v's heap, host and frame limit.
func (v *VM) Call(fn any, args ...any) (any, error) {
	switch fn := fn.(type) {

	case NativeFunc:
		return fn.Call(v, args)

	case *Closure:
		if len(args) != fn.Fun.NumParams {
			return nil, fmt.Errorf("arity mismatch: want %d, got %d", fn.Fun.NumParams, len(args))
		}
		env := fn.Env.NewChild()
		for i, name := range fn.Fun.ParamNames {
			env.Def(name, args[i])
		}
		sub := &VM{
			CurrentFun:   fn.Fun,
			Scope:        env,
			OperandStack: make([]any, 64),
			CallStack:    make([]Frame, 0, 8),
			Heap:         v.Heap,
			Host:         v.Host,
			MaxFrames:    v.MaxFrames,
		}
		var runErr error
		for _, err := range sub.Run {
			if err != nil {
				runErr = err
				break
			}
		}
		if runErr != nil {
			return nil, runErr
		}
		if sub.SP > 0 {
			return sub.OperandStack[sub.SP-1], nil
		}
		return nil, nil

	}
	return nil, fmt.Errorf("calling non-function: %T", fn)
}
