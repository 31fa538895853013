package procs

// Proc is a resumable step. Run returns the continuation, nil when finished.
type Proc[C any] interface {
	Run(ctx C) (Proc[C], error)
}

// Procs runs its elements in order, one step per Run.
type Procs[C any] []Proc[C]

var _ Proc[any] = Procs[any]{}

func (p Procs[C]) Run(ctx C) (Proc[C], error) {
	if len(p) == 0 {
		return nil, nil
	}
	proc, err := p[0].Run(ctx)
	if err != nil {
		return nil, err
	}
	if done(proc) {
		if len(p) == 1 {
			return nil, nil
		}
		return p[1:], nil
	}
	p[0] = proc
	return p, nil
}

func done[C any](proc Proc[C]) bool {
	if proc == nil {
		return true
	}
	ps, ok := proc.(Procs[C])
	return ok && len(ps) == 0
}
