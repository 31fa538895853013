package cmds

import (
	"fmt"
	"io"
	"os"
)

var GlobalExecutor = NewExecutor()

// Define registers a command on the process-wide executor.
func Define(name string, command *Command) {
	GlobalExecutor.Define(name, command)
}

// Execute runs args against the process-wide executor and exits on error.
func Execute(args []string) {
	if err := GlobalExecutor.Execute(args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		GlobalExecutor.PrintUsage(os.Stderr)
		os.Exit(2)
	}
}

// PrintUsage lists the commands of the process-wide executor.
func PrintUsage(w io.Writer) {
	GlobalExecutor.PrintUsage(w)
}
