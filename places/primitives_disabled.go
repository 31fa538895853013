//go:build noplaces

package places

import (
	"fmt"

	"github.com/reusee/places/runtimes"
	"github.com/reusee/places/taivm"
)

const Enabled = false

func (m *Manager) primitiveFuncs() []taivm.NativeFunc {
	unsupported := func(name string, min, max int) taivm.NativeFunc {
		return runtimes.Native(name, min, max, func(inst *runtimes.Instance, args []any) (any, error) {
			return nil, fmt.Errorf("%s: places not supported in this build: %w", name, runtimes.ErrUnsupported)
		})
	}
	return []taivm.NativeFunc{
		unsupported("place", 1, 2),
		unsupported("place-sleep", 1, 1),
		unsupported("place-wait", 1, 1),
		unsupported("place?", 1, 1),
	}
}
