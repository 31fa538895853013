package workers

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"runtime/debug"
	"sync"
	"sync/atomic"
)

var ErrAlreadyJoined = errors.New("worker already joined")

type ID uint64

// Entry is the procedure a worker runs. Its result is reported to Join.
type Entry func(ctx context.Context, payload any) (any, error)

// Worker is a goroutine locked to its own OS thread for its whole lifetime.
type Worker struct {
	id     ID
	parent ID

	done   chan struct{}
	result any
	err    error

	joinLock sync.Mutex
	joined   bool
}

var serial atomic.Uint64

// Spawn starts entry(ctx, payload) on a new worker and returns immediately.
// The spawn happens-before entry observes payload.
func Spawn(ctx context.Context, entry Entry, payload any) *Worker {
	w := &Worker{
		id:   ID(serial.Add(1)),
		done: make(chan struct{}),
	}
	if parent := Self(ctx); parent != nil {
		w.parent = parent.id
	}
	ctx = context.WithValue(ctx, selfKey, w)

	go func() {
		// never unlocked: the thread exits with the worker
		runtime.LockOSThread()
		defer close(w.done)
		defer func() {
			if p := recover(); p != nil {
				w.result = nil
				w.err = &PanicError{
					Worker: w.id,
					Value:  p,
					Stack:  debug.Stack(),
				}
			}
		}()
		w.result, w.err = entry(ctx, payload)
	}()

	return w
}

func (w *Worker) ID() ID {
	return w.id
}

func (w *Worker) Parent() ID {
	return w.parent
}

func (w *Worker) String() string {
	return fmt.Sprintf("worker#%d", w.id)
}

// Done is closed when the entry procedure returns.
func (w *Worker) Done() <-chan struct{} {
	return w.done
}

// Join blocks until the worker finishes and reclaims it. Only the first
// successful Join observes the result; later calls fail with ErrAlreadyJoined.
// A Join abandoned through ctx does not count.
func (w *Worker) Join(ctx context.Context) (any, error) {
	select {
	case <-w.done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	w.joinLock.Lock()
	defer w.joinLock.Unlock()
	if w.joined {
		return nil, ErrAlreadyJoined
	}
	w.joined = true
	result, err := w.result, w.err
	w.result = nil
	w.err = nil
	return result, err
}

// PanicError reports an entry procedure that panicked.
type PanicError struct {
	Worker ID
	Value  any
	Stack  []byte
}

func (p *PanicError) Error() string {
	return fmt.Sprintf("worker#%d panic: %v", p.Worker, p.Value)
}

func (p *PanicError) Unwrap() error {
	if err, ok := p.Value.(error); ok {
		return err
	}
	return nil
}
