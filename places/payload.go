package places

import (
	"github.com/reusee/places/logs"
	"github.com/reusee/places/runtimes"
)

// payload is written once by the creator and read once by the new worker.
// Heap values in it live in a transit heap nobody else references.
type payload struct {
	argc  int
	place *Place
	span  logs.Span

	// argc == 1
	thunk any

	// argc == 2
	module  any
	channel any

	params runtimes.Params
}
