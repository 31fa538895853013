package placeconfigs

import (
	_ "embed"
	"os"
	"path/filepath"

	"github.com/reusee/places/configs"
	"github.com/reusee/places/logs"
)

//go:embed schema.cue
var Schema string

var filenames = []string{
	"places.cue",
	".places.cue",
}

func (Module) ConfigsLoader(
	logger logs.Logger,
) configs.Loader {

	var dirs []string
	// working directory
	if workingDir, err := os.Getwd(); err == nil {
		dirs = append(dirs, workingDir)
	}
	// user config dir
	if configDir, err := os.UserConfigDir(); err == nil {
		dirs = append(dirs, configDir)
	}
	// system wide dir
	dirs = append(dirs, "/etc")

	paths := findConfigFiles(dirs)
	if len(paths) > 0 {
		logger.Info("config file",
			"paths", paths,
		)
	}

	return configs.NewLoader(paths, Schema)
}

func findConfigFiles(dirs []string) (paths []string) {
	for _, dir := range dirs {
		for _, filename := range filenames {
			path := filepath.Join(dir, filename)
			if stat, err := os.Stat(path); err == nil && !stat.IsDir() {
				paths = append(paths, path)
			}
		}
	}
	return
}
