package places

import (
	"github.com/reusee/dscope"
	"github.com/reusee/places/logs"
	"github.com/reusee/places/master"
	"github.com/reusee/places/modes"
	"github.com/reusee/places/placeconfigs"
	"github.com/reusee/places/runtimes"
	"github.com/reusee/places/starmods"
)

type Module struct {
	dscope.Module
	Logs    logs.Module
	Configs placeconfigs.Module
}

func (Module) Master(
	logger logs.Logger,
) *master.Master {
	return master.Process(logger)
}

// Registry holds modules implemented in Go.
func (Module) Registry() *runtimes.Registry {
	return runtimes.NewRegistry()
}

func (Module) Loaders(
	registry *runtimes.Registry,
) runtimes.Loaders {
	return runtimes.Loaders{
		registry,
		starmods.Loader{},
	}
}

func (Module) Manager(
	logger logs.Logger,
	newSpan logs.NewSpan,
	m *master.Master,
	mode modes.Mode,
	params runtimes.Params,
	loaders runtimes.Loaders,
	maxRunning placeconfigs.MaxRunning,
) *Manager {
	return NewManager(Config{
		Logger:  logger,
		NewSpan: newSpan,
		Master:  m,
		Mode:    mode,
		Params:  params,
		Loaders: loaders,

		MaxRunning: int(maxRunning),
	})
}
