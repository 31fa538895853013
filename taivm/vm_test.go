package taivm

import (
	"errors"
	"fmt"
	"testing"
)

func TestVM_NativeFunc(t *testing.T) {
	main := &Function{
		Name: "main",
		Constants: []any{
			"add",
			1,
			2,
			"res",
		},
		Code: []OpCode{
			OpLoadVar.With(0),
			OpLoadConst.With(1),
			OpLoadConst.With(2),
			OpCall.With(2),
			OpDefVar.With(3),
		},
	}

	vm := NewVM(main)
	vm.Def("add", NativeFunc{
		Name: "add",
		Func: func(vm *VM, args []any) (any, error) {
			if len(args) != 2 {
				return nil, fmt.Errorf("bad args")
			}
			return args[0].(int) + args[1].(int), nil
		},
	})

	for _, err := range vm.Run {
		if err != nil {
			t.Fatal(err)
		}
	}

	res, ok := vm.Get("res")
	if !ok {
		t.Fatal("res not found")
	}
	if res.(int) != 3 {
		t.Fatalf("expected 3, got %v", res)
	}
}

func TestVM_Closure(t *testing.T) {
	inner := &Function{
		Name: "inner",
		Constants: []any{
			"x",
		},
		Code: []OpCode{
			OpLoadVar.With(0),
			OpReturn,
		},
	}

	outer := &Function{
		Name: "outer",
		Constants: []any{
			"x",
			42,
			inner,
		},
		Code: []OpCode{
			OpLoadConst.With(1),
			OpDefVar.With(0),
			OpMakeClosure.With(2),
			OpReturn,
		},
	}

	main := &Function{
		Name: "main",
		Constants: []any{
			outer,
			"f",
			"res",
		},
		Code: []OpCode{
			OpMakeClosure.With(0),
			OpCall.With(0),
			OpDefVar.With(1),
			OpLoadVar.With(1),
			OpCall.With(0),
			OpDefVar.With(2),
		},
	}

	vm := NewVM(main)
	for _, err := range vm.Run {
		if err != nil {
			t.Fatal(err)
		}
	}

	res, ok := vm.Get("res")
	if !ok {
		t.Fatal("res not found")
	}
	if res.(int) != 42 {
		t.Fatalf("expected 42, got %v", res)
	}
}

func TestVM_Jump(t *testing.T) {
	main := &Function{
		Name: "main",
		Constants: []any{
			"res",
			0, // falsey
			1, // truthy
			2,
		},
		Code: []OpCode{
			// res = 0
			OpLoadConst.With(1),
			OpDefVar.With(0),

			// skipped
			OpLoadConst.With(1),
			OpJumpFalse.With(2),
			OpLoadConst.With(2),
			OpDefVar.With(0),

			// taken
			OpLoadConst.With(2),
			OpJumpFalse.With(2),
			OpLoadConst.With(3),
			OpDefVar.With(0),
		},
	}

	vm := NewVM(main)
	for _, err := range vm.Run {
		if err != nil {
			t.Fatal(err)
		}
	}
	res, _ := vm.Get("res")
	if res != 2 {
		t.Fatalf("got %v", res)
	}
}

func TestVM_Call(t *testing.T) {
	double := &Function{
		Name:       "double",
		NumParams:  1,
		ParamNames: []string{"n"},
		Constants:  []any{"n"},
		Code: []OpCode{
			OpLoadVar.With(0),
			OpLoadVar.With(0),
			OpAdd,
			OpReturn,
		},
	}
	vm := NewVM(&Function{Name: "main"})
	vm.Heap = NewHeap()

	res, err := vm.Call(&Closure{Fun: double, Env: vm.Scope}, 21)
	if err != nil {
		t.Fatal(err)
	}
	if res != 42 {
		t.Fatalf("got %v", res)
	}

	_, err = vm.Call(&Closure{Fun: double, Env: vm.Scope})
	if err == nil {
		t.Fatal("should fail")
	}

	_, err = vm.Call(42)
	if err == nil {
		t.Fatal("should fail")
	}
}

func TestVM_MakeListOnHeap(t *testing.T) {
	heap := NewHeap()
	main := &Function{
		Name:      "main",
		Constants: []any{1, 2, "l"},
		Code: []OpCode{
			OpLoadConst.With(0),
			OpLoadConst.With(1),
			OpMakeList.With(2),
			OpDefVar.With(2),
		},
	}
	vm := NewVM(main)
	vm.Heap = heap
	for _, err := range vm.Run {
		if err != nil {
			t.Fatal(err)
		}
	}
	v, _ := vm.Get("l")
	l := v.(*List)
	if HeapOf(l) != heap {
		t.Fatalf("got %v", HeapOf(l))
	}
	if len(l.Elements) != 2 || l.Elements[1] != 2 {
		t.Fatalf("got %v", l.Elements)
	}
}

func TestVM_StackOverflow(t *testing.T) {
	loop := &Function{
		Name:      "loop",
		Constants: []any{"loop"},
		Code: []OpCode{
			OpLoadVar.With(0),
			OpCall.With(0),
			OpReturn,
		},
	}
	main := &Function{
		Name:      "main",
		Constants: []any{loop, "loop"},
		Code: []OpCode{
			OpMakeClosure.With(0),
			OpDefVar.With(1),
			OpLoadVar.With(1),
			OpCall.With(0),
		},
	}
	vm := NewVM(main)
	vm.MaxFrames = 16
	var got error
	for _, err := range vm.Run {
		if err != nil {
			got = err
			break
		}
	}
	if !errors.Is(got, ErrStackOverflow) {
		t.Fatalf("got %v", got)
	}
}

func TestVM_UndefinedVariable(t *testing.T) {
	vm := NewVM(&Function{
		Name:      "main",
		Constants: []any{"nope"},
		Code: []OpCode{
			OpLoadVar.With(0),
		},
	})
	var got error
	for _, err := range vm.Run {
		if err != nil {
			got = err
			break
		}
	}
	if got == nil {
		t.Fatal("should error")
	}
}
