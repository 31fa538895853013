package places

import (
	"errors"
	"fmt"
)

// ErrAlreadyWaited is returned when waiting on a place a second time.
var ErrAlreadyWaited = errors.New("place already waited")

// ExitError reports a place that terminated abnormally.
type ExitError struct {
	Place *Place
	Err   error
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%v exited abnormally: %v", e.Place, e.Err)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}
