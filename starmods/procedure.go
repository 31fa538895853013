package starmods

import (
	"fmt"

	"github.com/reusee/places/runtimes"
	"github.com/reusee/places/taivm"
	"go.starlark.net/starlark"
)

// Procedure is a runtime procedure callable from starlark.
type Procedure struct {
	inst *runtimes.Instance
	name string
	fn   any
}

var _ starlark.Callable = new(Procedure)

func newProcedure(inst *runtimes.Instance, name string, fn any) *Procedure {
	return &Procedure{
		inst: inst,
		name: name,
		fn:   fn,
	}
}

func (p *Procedure) Name() string {
	return p.name
}

func (p *Procedure) String() string {
	return "<procedure " + p.name + ">"
}

func (p *Procedure) Type() string {
	return "procedure"
}

func (p *Procedure) Freeze() {}

func (p *Procedure) Truth() starlark.Bool {
	return starlark.True
}

func (p *Procedure) Hash() (uint32, error) {
	return 0, fmt.Errorf("unhashable type: procedure")
}

func (p *Procedure) CallInternal(thread *starlark.Thread, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if len(kwargs) > 0 {
		return nil, fmt.Errorf("%s: unexpected keyword arguments", p.name)
	}
	goArgs := make([]any, 0, len(args))
	for _, arg := range args {
		v, err := FromStarlark(p.inst, arg)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p.name, err)
		}
		goArgs = append(goArgs, v)
	}
	ret, err := p.inst.Apply(p.inst.Context(), p.fn, goArgs...)
	if err != nil {
		return nil, err
	}
	return ToStarlark(p.inst, ret)
}

// procedure wraps a starlark callable as a native procedure of inst. It holds
// starlark state, so it is bound to inst's heap.
func procedure(inst *runtimes.Instance, fn starlark.Callable) taivm.NativeFunc {
	return taivm.NativeFunc{
		Name: fn.Name(),
		Heap: inst.Heap(),
		Func: func(vm *taivm.VM, args []any) (any, error) {
			values := make(starlark.Tuple, 0, len(args))
			for _, arg := range args {
				v, err := ToStarlark(inst, arg)
				if err != nil {
					return nil, err
				}
				values = append(values, v)
			}
			ret, err := starlark.Call(newThread(inst, fn.Name()), fn, values, nil)
			if err != nil {
				return nil, err
			}
			return FromStarlark(inst, ret)
		},
	}
}

func newThread(inst *runtimes.Instance, name string) *starlark.Thread {
	return &starlark.Thread{
		Name: name,
		Print: func(_ *starlark.Thread, msg string) {
			fmt.Fprintln(inst.Stdout, msg)
		},
	}
}
