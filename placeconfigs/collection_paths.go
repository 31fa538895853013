package placeconfigs

import (
	"os"
	"path/filepath"

	"github.com/reusee/places/cmds"
	"github.com/reusee/places/configs"
	"github.com/samber/lo"
)

// CollectionPaths are the directories module names resolve against, in
// precedence order.
type CollectionPaths []string

const CollectionPathsEnv = "PLACES_COLLECTS"

var collectionPathFlags = cmds.Collect[string]("-collection-path")

func (Module) CollectionPaths(
	loader configs.Loader,
) CollectionPaths {
	var paths []string

	// flags
	paths = append(paths, *collectionPathFlags...)

	// env
	paths = append(paths, filepath.SplitList(os.Getenv(CollectionPathsEnv))...)

	// config
	for list := range configs.All[[]string](loader, "collection_paths") {
		paths = append(paths, list...)
	}

	// working directory
	if len(lo.Compact(paths)) == 0 {
		if workingDir, err := os.Getwd(); err == nil {
			paths = append(paths, workingDir)
		}
	}

	return normalizePaths(paths)
}

func normalizePaths(paths []string) []string {
	return lo.Uniq(lo.FilterMap(paths, func(path string, _ int) (string, bool) {
		if path == "" {
			return "", false
		}
		return filepath.Clean(path), true
	}))
}
