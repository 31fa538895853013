//go:build noplaces

package places

import (
	"errors"
	"testing"

	"github.com/reusee/places/runtimes"
)

func TestPrimitivesDisabled(t *testing.T) {
	env := newTestEnv(t)
	for _, name := range []string{
		"place", "place-sleep", "place-wait", "place?",
	} {
		fn, ok := env.inst.Lookup(name)
		if !ok {
			t.Fatalf("%s not defined", name)
		}
		_, err := env.inst.Apply(env.ctx, fn, 1)
		if !errors.Is(err, runtimes.ErrUnsupported) {
			t.Fatalf("%s: got %v", name, err)
		}
	}
}
