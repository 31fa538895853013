package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/reusee/dscope"
	"github.com/reusee/places/cmds"
	"github.com/reusee/places/configs"
	"github.com/reusee/places/debugs"
	"github.com/reusee/places/logs"
	"github.com/reusee/places/modes"
	"github.com/reusee/places/places"
	"github.com/reusee/places/runtimes"
)

var (
	moduleName  = cmds.Var[string]("-module")
	argument    = cmds.Var[string]("-arg")
	waitTimeout = cmds.Var[time.Duration]("-wait-timeout")
	tapAfter    = cmds.Switch("-tap")
	modeName    = cmds.Var[string]("-mode")
)

func main() {
	cmds.Execute(os.Args[1:])

	if *moduleName == "" {
		fmt.Fprintln(os.Stderr, "Error: -module <name> is required")
		cmds.PrintUsage(os.Stderr)
		os.Exit(2)
	}

	ctx := context.Background()

	scope := dscope.New(
		new(Module),
		modes.ForProduction(),
	)
	if *modeName != "" {
		mode, err := modes.ParseMode(*modeName)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(2)
		}
		scope = scope.Fork(dscope.Provide(mode))
	}

	scope.Call(func(
		logger logs.Logger,
		loader configs.Loader,
		params runtimes.Params,
		manager *places.Manager,
		tap debugs.Tap,
	) {
		if err := loader.Err(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		logger.DebugContext(ctx, "params",
			"collection paths", params.CollectionPaths,
			"max frames", params.MaxFrames,
		)

		inst, err := manager.NewInstance(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		place, err := manager.Create(inst.Context(), inst, *moduleName, inst.Heap().NewStr(*argument))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		waitCtx := ctx
		if *waitTimeout > 0 {
			var cancel context.CancelFunc
			waitCtx, cancel = context.WithTimeout(ctx, *waitTimeout)
			defer cancel()
		}
		err = manager.Wait(waitCtx, place)

		if *tapAfter {
			tap(ctx, "main", inst)
		}

		if err != nil {
			logger.ErrorContext(ctx, "place failed",
				"place", place.ID,
				"error", err,
			)
			os.Exit(1)
		}
	})
}
