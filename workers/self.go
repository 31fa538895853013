package workers

import "context"

type ctxKey uint8

const selfKey ctxKey = iota

// Self returns the worker running ctx, or nil outside any worker.
func Self(ctx context.Context) *Worker {
	w, _ := ctx.Value(selfKey).(*Worker)
	return w
}

// Bootstrap registers the calling goroutine as the privileged bootstrap
// worker, so Self works for code running before any Spawn.
func Bootstrap(ctx context.Context) context.Context {
	if Self(ctx) != nil {
		return ctx
	}
	w := &Worker{
		id:   ID(serial.Add(1)),
		done: make(chan struct{}),
	}
	return context.WithValue(ctx, selfKey, w)
}
