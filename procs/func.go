package procs

// Func is a single step that finishes after one Run.
type Func[C any] func(ctx C) error

var _ Proc[any] = Func[any](nil)

func (f Func[C]) Run(ctx C) (Proc[C], error) {
	return nil, f(ctx)
}

// RunAll runs proc until it reports no continuation.
func RunAll[C any](ctx C, proc Proc[C]) error {
	for !done(proc) {
		next, err := proc.Run(ctx)
		if err != nil {
			return err
		}
		proc = next
	}
	return nil
}
