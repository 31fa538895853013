package places

import (
	"fmt"

	"github.com/reusee/places/logs"
	"github.com/reusee/places/workers"
)

// Place is the handle of a place, held by its creator.
type Place struct {
	ID      uint64
	Span    logs.Span
	worker  *workers.Worker
	manager *Manager
}

func (p *Place) String() string {
	return fmt.Sprintf("#<place:%d>", p.ID)
}

// Done is closed when the place's entry procedure returns.
func (p *Place) Done() <-chan struct{} {
	return p.worker.Done()
}

func IsPlace(v any) bool {
	p, ok := v.(*Place)
	return ok && p != nil && p.worker != nil
}
