package placeconfigs

import (
	"github.com/reusee/places/cmds"
	"github.com/reusee/places/configs"
	"github.com/reusee/places/vars"
)

// MaxRunning bounds the places running at once. 0 means unbounded.
type MaxRunning int

var maxRunningFlag = cmds.Var[int]("-max-running")

func (Module) MaxRunning(
	loader configs.Loader,
) MaxRunning {
	return MaxRunning(vars.FirstNonZero(
		max(*maxRunningFlag, 0),
		configs.First[int](loader, "max_running"),
	))
}
