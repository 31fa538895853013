package places

import (
	"context"
	"crypto/rand"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/reusee/places/logs"
	"github.com/reusee/places/master"
	"github.com/reusee/places/modes"
	"github.com/reusee/places/runtimes"
	"github.com/reusee/places/syncs"
	"github.com/reusee/places/taivm"
	"github.com/reusee/places/transfer"
	"github.com/reusee/places/workers"
)

type Config struct {
	Logger  logs.Logger
	NewSpan logs.NewSpan
	Master  *master.Master
	Mode    modes.Mode
	// Params of instances created by NewInstance
	Params  runtimes.Params
	Stdlib  []runtimes.Library
	Loaders runtimes.Loaders
	Stdout  io.Writer

	// places running at once, 0 for unbounded
	MaxRunning int
}

// Manager creates and tracks places.
type Manager struct {
	logger   logs.Logger
	newSpan  logs.NewSpan
	master   *master.Master
	mode     modes.Mode
	params   runtimes.Params
	stdlib   []runtimes.Library
	loaders  runtimes.Loaders
	stdout   io.Writer
	rootHeap *taivm.Heap
	live     mapset.Set[*Place]
	running  syncs.Semaphore
}

var placeSerial atomic.Uint64

func NewManager(config Config) *Manager {
	m := &Manager{
		logger:   config.Logger,
		newSpan:  config.NewSpan,
		master:   config.Master,
		mode:     config.Mode,
		params:   config.Params.Clone(),
		stdlib:   config.Stdlib,
		loaders:  config.Loaders,
		stdout:   config.Stdout,
		rootHeap: taivm.NewHeap(),
		live:     mapset.NewSet[*Place](),
	}
	if config.MaxRunning > 0 {
		m.running = syncs.NewSemaphore(config.MaxRunning)
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	if m.newSpan == nil {
		m.newSpan = func(ctx context.Context, _ logs.Span) (context.Context, logs.Span) {
			span := logs.Span(rand.Text())
			return context.WithValue(ctx, logs.SpanKey, span), span
		}
	}
	if m.master == nil {
		m.master = master.Process(m.logger)
	}
	if m.stdlib == nil {
		m.stdlib = []runtimes.Library{runtimes.Std}
	}
	return m
}

// NewInstance builds a runtime instance for code running outside any place,
// like a program's main instance.
func (m *Manager) NewInstance(ctx context.Context) (*runtimes.Instance, error) {
	ctx = workers.Bootstrap(ctx)
	inst, ctx, err := runtimes.New(ctx, m.instanceConfig(runtimes.StackBase{
		Worker:    uint64(workers.Self(ctx).ID()),
		MaxFrames: m.params.MaxFrames,
	}, m.master.NewClient()))
	if err != nil {
		return nil, err
	}
	inst.SetParams(m.params)
	if err := inst.Bootstrap(ctx); err != nil {
		return nil, err
	}
	return inst, nil
}

func (m *Manager) instanceConfig(base runtimes.StackBase, client *master.Client) runtimes.Config {
	return runtimes.Config{
		Heap:          m.rootHeap.NewChild(),
		StackBase:     base,
		Canonicalizer: client,
		Primitives:    []runtimes.Library{m.primitives()},
		Stdlib:        m.stdlib,
		Loaders:       m.loaders,
		Logger:        m.logger,
		Stdout:        m.stdout,
	}
}

// Create starts a place. With one argument it runs the thunk; with two it
// runs the place-main export of the module, passing a copy of the channel
// value. creator may be nil for callers outside any instance.
func (m *Manager) Create(ctx context.Context, creator *runtimes.Instance, args ...any) (*Place, error) {
	if len(args) < 1 || len(args) > 2 {
		return nil, &runtimes.ArityError{
			Name: "place",
			Min:  1,
			Max:  2,
			Got:  len(args),
		}
	}

	var params runtimes.Params
	if creator != nil {
		params = creator.Params()
	} else {
		params = m.params.Clone()
	}
	p := &payload{
		argc:   len(args),
		params: params,
	}

	var err error
	transit := transfer.NewTransit()
	if len(args) == 1 {
		p.thunk, err = captureThunk(ctx, transit, creator, args[0])
		if err != nil {
			return nil, err
		}
	} else {
		p.module, err = captureModule(ctx, transit, args[0])
		if err != nil {
			return nil, err
		}
		p.channel, err = transfer.DeepCopy(ctx, transit, args[1])
		if err != nil {
			return nil, err
		}
	}

	place := &Place{
		ID:      placeSerial.Add(1),
		manager: m,
	}
	ctx, place.Span = m.newSpan(ctx, "")
	p.place = place
	p.span = place.Span

	// a place outlives the call that created it
	place.worker = workers.Spawn(context.WithoutCancel(ctx), m.entry, p)
	m.live.Add(place)

	m.logger.DebugContext(ctx, "place created",
		"place", place.ID,
		"worker", place.worker.ID(),
		"argc", p.argc,
	)
	return place, nil
}

// captureThunk accepts closures over the creator's globals only. Names free in
// the thunk resolve against the new place's globals, so a local frame captured
// by the closure would be silently replaced.
func captureThunk(ctx context.Context, transit *transfer.Transit, creator *runtimes.Instance, v any) (any, error) {
	switch fn := v.(type) {
	case *taivm.Closure:
		if fn.Env != nil && (creator == nil || fn.Env != creator.Globals) {
			return nil, &runtimes.ArgumentError{
				Name:     "place",
				Expected: "procedure closed over top-level bindings",
				Got:      fn,
			}
		}
		return transfer.Closure(ctx, transit, fn, nil)
	case taivm.NativeFunc:
		if fn.Heap != nil {
			return nil, &runtimes.ArgumentError{
				Name:     "place",
				Expected: "procedure independent of the creating place",
				Got:      fn,
			}
		}
		return fn, nil
	}
	return nil, &runtimes.ArgumentError{
		Name:     "place",
		Expected: "procedure",
		Got:      v,
	}
}

func captureModule(ctx context.Context, transit *transfer.Transit, v any) (any, error) {
	switch v.(type) {
	case string:
		return v, nil
	case *taivm.ModulePath, *taivm.Str, *taivm.Symbol, *taivm.Path:
		return transfer.DeepCopy(ctx, transit, v)
	}
	return nil, &runtimes.ArgumentError{
		Name:     "place",
		Expected: "module path",
		Got:      v,
	}
}

// Wait blocks until p finishes. A place may be waited once; the error reports
// abnormal termination. Cancelling ctx abandons the wait without consuming it.
func (m *Manager) Wait(ctx context.Context, p *Place) error {
	reacquire := m.yieldSlot(ctx)
	defer reacquire()
	select {
	case <-p.worker.Done():
	case <-ctx.Done():
		return ctx.Err()
	}
	_, err := p.worker.Join(context.WithoutCancel(ctx))
	if errors.Is(err, workers.ErrAlreadyJoined) {
		return ErrAlreadyWaited
	}
	m.live.Remove(p)
	if err != nil {
		m.logger.DebugContext(ctx, "place exited abnormally",
			"place", p.ID,
			"error", err,
		)
		return &ExitError{
			Place: p,
			Err:   logs.WrapSpan(context.WithValue(ctx, logs.SpanKey, p.Span), err),
		}
	}
	return nil
}

// Sleep blocks the calling place only.
func (m *Manager) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	reacquire := m.yieldSlot(ctx)
	defer reacquire()
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type slotKey struct{}

// yieldSlot gives up the running slot held by the place owning ctx while it
// blocks. The returned func takes a slot back.
func (m *Manager) yieldSlot(ctx context.Context) func() {
	if m.running == nil || ctx.Value(slotKey{}) != m {
		return func() {}
	}
	m.running.Release()
	return m.running.Acquire
}

// Live returns the number of places created and not yet waited.
func (m *Manager) Live() int {
	return m.live.Cardinality()
}

func (m *Manager) LivePlaces() []*Place {
	return m.live.ToSlice()
}
