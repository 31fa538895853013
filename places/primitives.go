package places

import (
	"context"

	"github.com/reusee/places/runtimes"
)

// primitives installs place, place-sleep, place-wait and place? into an
// instance.
func (m *Manager) primitives() runtimes.Library {
	return runtimes.Library{
		Name: "places",
		Install: func(ctx context.Context, inst *runtimes.Instance) error {
			for _, fn := range m.primitiveFuncs() {
				inst.Define(fn.Name, fn)
			}
			return nil
		},
	}
}

func placeArg(name string, v any) (*Place, error) {
	p, ok := v.(*Place)
	if !ok || !IsPlace(p) {
		return nil, &runtimes.ArgumentError{
			Name:     name,
			Expected: "place",
			Got:      v,
		}
	}
	return p, nil
}
