package debugs

import (
	"context"
	"maps"
	"slices"

	"github.com/reusee/places/logs"
	"github.com/reusee/places/runtimes"
	"github.com/reusee/places/starmods"
	"go.starlark.net/repl"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Tap opens a starlark REPL over the globals of inst.
type Tap func(ctx context.Context, what string, inst *runtimes.Instance)

func (Module) Tap(
	logger logs.Logger,
) Tap {
	return func(ctx context.Context, what string, inst *runtimes.Instance) {
		globals := make(starlark.StringDict)
		for name, value := range inst.Globals.All() {
			sname, ok := starmods.StarlarkName(name)
			if !ok {
				continue
			}
			v, err := starmods.ToStarlark(inst, value)
			if err != nil {
				logger.WarnContext(ctx, "tap: skip global", "name", name, "error", err)
				continue
			}
			globals[sname] = v
		}

		logger.InfoContext(ctx, "tap: "+what,
			"instance", inst.ID,
			"globals", slices.Sorted(maps.Keys(globals)),
		)
		defer func() {
			logger.InfoContext(ctx, "tap end: "+what)
		}()

		thread := &starlark.Thread{
			Name: "repl",
		}
		repl.REPLOptions(&syntax.FileOptions{
			Set:             true,
			While:           true,
			TopLevelControl: true,
		}, thread, globals)
	}
}
