package transfer

import (
	"fmt"

	"github.com/reusee/places/runtimes"
)

// NotTransferableError reports a value the deep copy protocol does not cover.
type NotTransferableError struct {
	Value any
}

func (n *NotTransferableError) Error() string {
	return fmt.Sprintf("value not transferable across places: %T", n.Value)
}

func (n *NotTransferableError) Unwrap() error {
	return runtimes.ErrUnsupported
}
