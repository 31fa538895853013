//go:build !noplaces

package places

import (
	"math"
	"strconv"
	"time"

	"github.com/reusee/places/runtimes"
	"github.com/reusee/places/taivm"
)

// Enabled reports whether places are supported by this build.
const Enabled = true

func (m *Manager) primitiveFuncs() []taivm.NativeFunc {
	return []taivm.NativeFunc{

		runtimes.Native("place", 1, 2, func(inst *runtimes.Instance, args []any) (any, error) {
			p, err := m.Create(inst.Context(), inst, args...)
			if err != nil {
				return nil, err
			}
			return p, nil
		}),

		runtimes.Native("place-sleep", 1, 1, func(inst *runtimes.Instance, args []any) (any, error) {
			d, err := sleepDuration(args[0])
			if err != nil {
				return nil, err
			}
			return nil, m.Sleep(inst.Context(), d)
		}),

		runtimes.Native("place-wait", 1, 1, func(inst *runtimes.Instance, args []any) (any, error) {
			p, err := placeArg("place-wait", args[0])
			if err != nil {
				return nil, err
			}
			return nil, p.manager.Wait(inst.Context(), p)
		}),

		runtimes.Native("place?", 1, 1, func(inst *runtimes.Instance, args []any) (any, error) {
			return IsPlace(args[0]), nil
		}),
	}
}

const maxSleepMillis = math.MaxInt64 / int64(time.Millisecond)

// sleepDuration converts a non-negative count of milliseconds.
func sleepDuration(v any) (time.Duration, error) {
	switch ms := v.(type) {
	case int:
		if ms >= 0 && int64(ms) <= maxSleepMillis {
			return time.Duration(ms) * time.Millisecond, nil
		}
	case int64:
		if ms >= 0 && ms <= maxSleepMillis {
			return time.Duration(ms) * time.Millisecond, nil
		}
	case float64:
		if ms >= 0 && ms <= float64(maxSleepMillis) {
			return time.Duration(ms * float64(time.Millisecond)), nil
		}
	default:
		return 0, &runtimes.ArgumentError{
			Name:     "place-sleep",
			Expected: "milliseconds",
			Got:      v,
		}
	}
	return 0, &runtimes.ArgumentError{
		Name:     "place-sleep",
		Expected: "milliseconds between 0 and " + strconv.FormatInt(maxSleepMillis, 10),
		Got:      v,
	}
}
