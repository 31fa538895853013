package logs

import (
	"io"
	"os"

	"github.com/reusee/places/cmds"
)

type Writer io.Writer

const LogFileEnv = "PLACES_LOG_FILE"

var logFile = cmds.Var[string]("-log-file")

// Writer is stderr unless a log file is named by flag or environment. An
// unopenable file falls back to stderr.
func (Module) Writer() Writer {
	name := *logFile
	if name == "" {
		name = os.Getenv(LogFileEnv)
	}
	if name == "" {
		return os.Stderr
	}
	return openLogFile(name)
}

func openLogFile(name string) Writer {
	f, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return os.Stderr
	}
	return f
}
