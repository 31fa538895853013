package places

import (
	"context"
	"fmt"

	"github.com/reusee/places/logs"
	"github.com/reusee/places/master"
	"github.com/reusee/places/procs"
	"github.com/reusee/places/runtimes"
	"github.com/reusee/places/taivm"
	"github.com/reusee/places/transfer"
	"github.com/reusee/places/workers"
)

// MainExport is the export a module place starts from.
const MainExport = "place-main"

type entryState struct {
	ctx       context.Context
	payload   *payload
	stackBase runtimes.StackBase
	client    *master.Client
	inst      *runtimes.Instance
	result    any
}

func (m *Manager) entry(ctx context.Context, v any) (any, error) {
	state := &entryState{
		ctx:     ctx,
		payload: v.(*payload),
	}
	defer func() {
		if state.client != nil {
			state.client.Close()
		}
	}()

	if m.running != nil {
		m.running.Acquire()
		defer m.running.Release()
		state.ctx = context.WithValue(state.ctx, slotKey{}, m)
	}

	steps := procs.Procs[*entryState]{
		procs.Func[*entryState](m.captureStackBase),
		procs.Func[*entryState](m.resetState),
		procs.Func[*entryState](m.attachInstance),
		procs.Func[*entryState](m.applyParams),
	}
	switch state.payload.argc {
	case 1:
		steps = append(steps, procs.Func[*entryState](m.runThunk))
	case 2:
		steps = append(steps, procs.Func[*entryState](m.runModule))
	default:
		return nil, fmt.Errorf("bad payload argc: %d", state.payload.argc)
	}

	if err := procs.RunAll(state, procs.Proc[*entryState](steps)); err != nil {
		return nil, err
	}

	m.logger.DebugContext(state.ctx, "place finished",
		"place", state.payload.place.ID,
		"heap allocated", state.inst.Heap().Allocated(),
	)
	// results live in the finished heap and are not handed to waiters
	return nil, nil
}

func (m *Manager) captureStackBase(state *entryState) error {
	w := workers.Self(state.ctx)
	if w == nil {
		return fmt.Errorf("place entry outside a worker")
	}
	maxFrames := state.payload.params.MaxFrames
	if maxFrames <= 0 {
		maxFrames = taivm.DefaultMaxFrames
	}
	state.stackBase = runtimes.StackBase{
		Worker:    uint64(w.ID()),
		MaxFrames: maxFrames,
	}
	return nil
}

func (m *Manager) resetState(state *entryState) error {
	state.ctx = runtimes.ResetState(state.ctx)
	state.ctx = context.WithValue(state.ctx, logs.SpanKey, state.payload.span)
	return nil
}

func (m *Manager) attachInstance(state *entryState) error {
	state.client = m.master.NewClient()
	inst, ctx, err := runtimes.New(state.ctx, m.instanceConfig(state.stackBase, state.client))
	if err != nil {
		return err
	}
	state.inst = inst
	state.ctx = ctx
	return nil
}

func (m *Manager) applyParams(state *entryState) error {
	state.inst.SetParams(state.payload.params)
	return nil
}

func (m *Manager) runThunk(state *entryState) error {
	ctx := state.ctx
	inst := state.inst
	if err := inst.Bootstrap(ctx); err != nil {
		return err
	}

	thunk := state.payload.thunk
	if cl, ok := thunk.(*taivm.Closure); ok {
		rebound, err := transfer.Closure(ctx, inst, cl, inst.Globals)
		if err != nil {
			return err
		}
		if err := m.verifyFunction(inst, rebound.Fun, make(map[*taivm.Function]bool)); err != nil {
			return err
		}
		thunk = rebound
	}

	result, err := inst.Apply(ctx, thunk)
	if err != nil {
		return err
	}
	state.result = result
	return nil
}

func (m *Manager) runModule(state *entryState) error {
	ctx := state.ctx
	inst := state.inst

	module, err := transfer.DeepCopy(ctx, inst, state.payload.module)
	if err != nil {
		return err
	}
	channel, err := transfer.DeepCopy(ctx, inst, state.payload.channel)
	if err != nil {
		return err
	}
	if err := m.verifyOwned(inst, module, channel); err != nil {
		return err
	}

	main, err := inst.Require(ctx, module, MainExport)
	if err != nil {
		return err
	}
	result, err := inst.Apply(ctx, main, channel)
	if err != nil {
		return err
	}
	state.result = result
	return nil
}

// verifyOwned checks, in development mode, that copied values belong to inst.
func (m *Manager) verifyOwned(inst *runtimes.Instance, values ...any) error {
	if !m.mode.Checked() {
		return nil
	}
	for _, v := range values {
		if !inst.Owns(v) {
			return fmt.Errorf("%s holds %T of %v: cross-heap reference", inst, v, taivm.HeapOf(v))
		}
	}
	return nil
}

func (m *Manager) verifyFunction(inst *runtimes.Instance, fn *taivm.Function, seen map[*taivm.Function]bool) error {
	if !m.mode.Checked() || seen[fn] {
		return nil
	}
	seen[fn] = true
	for _, c := range fn.Constants {
		if inner, ok := c.(*taivm.Function); ok {
			if err := m.verifyFunction(inst, inner, seen); err != nil {
				return err
			}
			continue
		}
		if err := m.verifyOwned(inst, c); err != nil {
			return fmt.Errorf("function %s: %w", fn.Name, err)
		}
	}
	return nil
}
