package starmods

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/reusee/places/runtimes"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

const Ext = ".star"

// Loader loads starlark modules from the instance's collection paths.
// A module named "foo/bar" is the file "foo/bar.star" under the first
// collection path containing it.
type Loader struct{}

var _ runtimes.ModuleLoader = Loader{}

var fileOptions = &syntax.FileOptions{
	Set:             true,
	While:           true,
	TopLevelControl: true,
}

func (l Loader) LoadModule(ctx context.Context, inst *runtimes.Instance, name string) (runtimes.Exports, error) {
	file, err := l.find(inst, name)
	if err != nil {
		return nil, err
	}
	src, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	// starlark modules see the standard library
	if err := inst.Bootstrap(ctx); err != nil {
		return nil, err
	}

	predeclared, err := predeclare(inst)
	if err != nil {
		return nil, err
	}
	globals, err := starlark.ExecFileOptions(fileOptions, newThread(inst, name), file, src, predeclared)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", file, err)
	}

	exports := make(runtimes.Exports, len(globals))
	for key, value := range globals {
		if strings.HasPrefix(key, "_") {
			continue
		}
		v, err := FromStarlark(inst, value)
		if errors.Is(err, runtimes.ErrUnsupported) {
			inst.Logger.DebugContext(ctx, "starlark global not exported",
				"module", name,
				"name", key,
				"type", value.Type(),
			)
			continue
		}
		if err != nil {
			return nil, err
		}
		exports[key] = v
		if alias := strings.ReplaceAll(key, "_", "-"); alias != key {
			exports[alias] = v
		}
	}

	inst.Logger.DebugContext(ctx, "starlark module loaded",
		"module", name,
		"file", file,
		"exports", len(globals),
	)
	return exports, nil
}

func (l Loader) find(inst *runtimes.Instance, name string) (string, error) {
	if filepath.Ext(name) != Ext {
		name += Ext
	}
	var candidates []string
	if filepath.IsAbs(name) {
		candidates = []string{name}
	} else {
		for _, dir := range inst.Params().CollectionPaths {
			candidates = append(candidates, filepath.Join(dir, name))
		}
	}
	for _, file := range candidates {
		stat, err := os.Stat(file)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return "", err
		}
		if stat.IsDir() {
			continue
		}
		return file, nil
	}
	return "", runtimes.ErrModuleNotFound
}

// predeclare exposes the instance globals to starlark under identifier names:
// "place?" becomes is_place and "path->string" becomes path_to_string.
func predeclare(inst *runtimes.Instance) (starlark.StringDict, error) {
	ret := make(starlark.StringDict)
	for name, value := range inst.Globals.All() {
		sname, ok := StarlarkName(name)
		if !ok {
			continue
		}
		if _, ok := starlark.Universe[sname]; ok {
			continue
		}
		v, err := ToStarlark(inst, value)
		if err != nil {
			return nil, err
		}
		ret[sname] = v
	}
	ret["require"] = starlark.NewBuiltin("require", func(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var module, export string
		if err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 2, &module, &export); err != nil {
			return nil, err
		}
		v, err := inst.Require(inst.Context(), module, export)
		if err != nil {
			return nil, err
		}
		return ToStarlark(inst, v)
	})
	return ret, nil
}

func StarlarkName(name string) (string, bool) {
	if rest, ok := strings.CutSuffix(name, "?"); ok {
		name = "is_" + rest
	}
	name = strings.ReplaceAll(name, "->", "_to_")
	name = strings.ReplaceAll(name, "-", "_")
	if name == "" {
		return "", false
	}
	for i, r := range name {
		if r == '_' || unicode.IsLetter(r) {
			continue
		}
		if i > 0 && unicode.IsDigit(r) {
			continue
		}
		return "", false
	}
	return name, true
}
