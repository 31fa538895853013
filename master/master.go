package master

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/reusee/places/syncs"
	"github.com/reusee/places/taivm"
	"github.com/reusee/places/workers"
)

// ErrUnavailable is returned to requests the master will never answer.
var ErrUnavailable = errors.New("master unavailable")

// Master is the coordination worker owning process-wide tables. Only the
// master worker touches the tables.
type Master struct {
	logger *slog.Logger
	inbox  *syncs.Mailbox[Message]
	worker *workers.Worker

	symbols     map[symbolKey]*CanonicalSymbol
	modulePaths map[string]*CanonicalModulePath
	nextID      uint64

	numRequests    atomic.Uint64
	numSymbols     atomic.Int64
	numModulePaths atomic.Int64
	numClients     atomic.Int64
}

type symbolKey struct {
	table taivm.SymbolTable
	kind  taivm.SymbolKind
	name  string
}

type Stats struct {
	Requests    uint64
	Symbols     int64
	ModulePaths int64
	Clients     int64
}

// Start spawns a master worker.
func Start(ctx context.Context, logger *slog.Logger) *Master {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Master{
		logger:      logger,
		inbox:       syncs.NewMailbox[Message](),
		symbols:     make(map[symbolKey]*CanonicalSymbol),
		modulePaths: make(map[string]*CanonicalModulePath),
	}
	m.worker = workers.Spawn(ctx, m.loop, nil)
	logger.DebugContext(ctx, "master started", "worker", m.worker.ID())
	return m
}

var process struct {
	once   sync.Once
	master *Master
}

// Process returns the master of this process, starting it on first call.
func Process(logger *slog.Logger) *Master {
	process.once.Do(func() {
		process.master = Start(context.Background(), logger)
	})
	return process.master
}

func (m *Master) loop(ctx context.Context, _ any) (any, error) {
	defer func() {
		m.inbox.Close()
		for _, msg := range m.inbox.Drain() {
			m.reply(ctx, msg, Message{
				Err: ErrUnavailable,
			})
		}
	}()

	for {
		msg, err := m.inbox.Recv(ctx)
		if errors.Is(err, syncs.ErrMailboxClosed) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		m.numRequests.Add(1)

		switch msg.Kind {

		case KindShutdown:
			m.logger.DebugContext(ctx, "master shutdown",
				"symbols", len(m.symbols),
				"module paths", len(m.modulePaths),
			)
			return nil, nil

		case KindCanonicalizeSymbol:
			m.reply(ctx, msg, Message{
				Kind:   KindCanonicalizedSymbol,
				Symbol: m.symbol(msg.Table, msg.SymbolKind, msg.Name),
			})

		case KindCanonicalizeModulePath:
			m.reply(ctx, msg, Message{
				Kind:       KindCanonicalizedModulePath,
				ModulePath: m.modulePath(msg.Name),
			})

		default:
			m.logger.WarnContext(ctx, "unexpected message", "kind", msg.Kind)
			m.reply(ctx, msg, Message{
				Err: errors.New("unexpected message: " + msg.Kind.String()),
			})
		}
	}
}

func (m *Master) reply(ctx context.Context, req Message, resp Message) {
	if req.Reply == nil {
		return
	}
	resp.Seq = req.Seq
	if err := req.Reply.Send(resp); err != nil {
		m.logger.DebugContext(ctx, "reply dropped", "kind", req.Kind, "error", err)
	}
}

func (m *Master) symbol(table taivm.SymbolTable, kind taivm.SymbolKind, name string) *CanonicalSymbol {
	key := symbolKey{
		table: table,
		kind:  kind,
		name:  name,
	}
	if sym, ok := m.symbols[key]; ok {
		return sym
	}
	m.nextID++
	key.name = strings.Clone(name)
	sym := &CanonicalSymbol{
		ID:    m.nextID,
		Table: table,
		Kind:  kind,
		Name:  key.name,
	}
	m.symbols[key] = sym
	m.numSymbols.Add(1)
	return sym
}

func (m *Master) modulePath(name string) *CanonicalModulePath {
	if mp, ok := m.modulePaths[name]; ok {
		return mp
	}
	m.nextID++
	name = strings.Clone(name)
	mp := &CanonicalModulePath{
		ID:   m.nextID,
		Name: name,
	}
	m.modulePaths[name] = mp
	m.numModulePaths.Add(1)
	return mp
}

// Shutdown asks the master to stop and waits for it. Requests not yet
// processed fail with ErrUnavailable.
func (m *Master) Shutdown(ctx context.Context) error {
	// already closed means already stopping
	_ = m.inbox.Send(Message{
		Kind: KindShutdown,
	})
	select {
	case <-m.worker.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done is closed when the master worker exits.
func (m *Master) Done() <-chan struct{} {
	return m.worker.Done()
}

func (m *Master) Worker() *workers.Worker {
	return m.worker
}

func (m *Master) Stats() Stats {
	return Stats{
		Requests:    m.numRequests.Load(),
		Symbols:     m.numSymbols.Load(),
		ModulePaths: m.numModulePaths.Load(),
		Clients:     m.numClients.Load(),
	}
}
