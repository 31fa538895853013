package runtimes

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupported is the failure kind of operations this build or this
	// value cannot support.
	ErrUnsupported = errors.New("unsupported operation")

	// ErrStaleState is returned when an instance is constructed on a context
	// that still carries another instance's runtime state.
	ErrStaleState = errors.New("runtime state not reset")

	ErrModuleNotFound = errors.New("module not found")
)

type ArityError struct {
	Name string
	Min  int
	Max  int
	Got  int
}

func (a *ArityError) Error() string {
	if a.Min == a.Max {
		return fmt.Sprintf("%s: arity mismatch; expected %d argument(s), given %d", a.Name, a.Min, a.Got)
	}
	if a.Max < 0 {
		return fmt.Sprintf("%s: arity mismatch; expected at least %d argument(s), given %d", a.Name, a.Min, a.Got)
	}
	return fmt.Sprintf("%s: arity mismatch; expected %d to %d arguments, given %d", a.Name, a.Min, a.Max, a.Got)
}

type ArgumentError struct {
	Name     string
	Index    int
	Expected string
	Got      any
}

func (a *ArgumentError) Error() string {
	return fmt.Sprintf("%s: contract violation; expected %s at argument %d, given %s", a.Name, a.Expected, a.Index, Display(a.Got))
}

type ExportNotFoundError struct {
	Module string
	Export string
}

func (e *ExportNotFoundError) Error() string {
	return fmt.Sprintf("module %s has no export %s", e.Module, e.Export)
}
