package placeconfigs

import (
	"github.com/reusee/places/cmds"
	"github.com/reusee/places/configs"
	"github.com/reusee/places/taivm"
	"github.com/reusee/places/vars"
)

type MaxFrames int

var maxFramesFlag = cmds.Var[int]("-max-frames")

func (Module) MaxFrames(
	loader configs.Loader,
) MaxFrames {
	return MaxFrames(vars.FirstNonZero(
		max(*maxFramesFlag, 0),
		configs.First[int](loader, "max_frames"),
		taivm.DefaultMaxFrames,
	))
}
