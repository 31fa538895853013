package placeconfigs

import "github.com/reusee/places/runtimes"

func (Module) Params(
	paths CollectionPaths,
	maxFrames MaxFrames,
) runtimes.Params {
	return runtimes.Params{
		CollectionPaths: paths,
		MaxFrames:       int(maxFrames),
	}
}
