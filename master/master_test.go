package master

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/reusee/places/taivm"
)

func startTestMaster(t *testing.T) *Master {
	t.Helper()
	m := Start(context.Background(), nil)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
		defer cancel()
		if err := m.Shutdown(ctx); err != nil {
			t.Fatal(err)
		}
	})
	return m
}

func TestCanonicalSymbol(t *testing.T) {
	m := startTestMaster(t)
	ctx := context.Background()

	const numClients = 16
	results := make([]*CanonicalSymbol, numClients)
	var wg sync.WaitGroup
	for i := range numClients {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := m.NewClient()
			defer c.Close()
			sym, err := c.Symbol(ctx, taivm.TableSymbol, taivm.SymbolInterned, "foo")
			if err != nil {
				t.Error(err)
				return
			}
			results[i] = sym
		}()
	}
	wg.Wait()

	for _, sym := range results {
		if sym != results[0] {
			t.Fatalf("got %p %p", sym, results[0])
		}
	}
	if results[0].Name != "foo" {
		t.Fatalf("got %v", results[0].Name)
	}

	c := m.NewClient()
	defer c.Close()
	other, err := c.Symbol(ctx, taivm.TableSymbol, taivm.SymbolUnreadable, "foo")
	if err != nil {
		t.Fatal(err)
	}
	if other == results[0] || other.ID == results[0].ID {
		t.Fatal("kinds not distinguished")
	}
	if stats := m.Stats(); stats.Symbols != 2 {
		t.Fatalf("got %+v", stats)
	}
}

func TestCanonicalModulePath(t *testing.T) {
	m := startTestMaster(t)
	ctx := context.Background()
	c1 := m.NewClient()
	defer c1.Close()
	c2 := m.NewClient()
	defer c2.Close()

	a, err := c1.ModulePath(ctx, "/lib/foo")
	if err != nil {
		t.Fatal(err)
	}
	b, err := c2.ModulePath(ctx, "/lib/foo")
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Fatal("expected same entry")
	}
	id, err := c2.CanonicalModulePath(ctx, "/lib/bar")
	if err != nil {
		t.Fatal(err)
	}
	if id == a.ID {
		t.Fatalf("got %v", id)
	}
}

func TestStaleReply(t *testing.T) {
	m := startTestMaster(t)
	c := m.NewClient()
	defer c.Close()

	// a reply left over from an abandoned request
	if err := c.reply.Send(Message{
		Kind: KindCanonicalizedSymbol,
		Seq:  42,
		Symbol: &CanonicalSymbol{
			ID:   999,
			Name: "stale",
		},
	}); err != nil {
		t.Fatal(err)
	}

	sym, err := c.Symbol(context.Background(), taivm.TableSymbol, taivm.SymbolInterned, "fresh")
	if err != nil {
		t.Fatal(err)
	}
	if sym.Name != "fresh" || sym.ID == 999 {
		t.Fatalf("got %+v", sym)
	}
}

func TestShutdown(t *testing.T) {
	m := Start(context.Background(), nil)
	c := m.NewClient()
	defer c.Close()
	ctx := context.Background()

	if _, err := c.Symbol(ctx, taivm.TableSymbol, taivm.SymbolInterned, "foo"); err != nil {
		t.Fatal(err)
	}
	if err := m.Shutdown(ctx); err != nil {
		t.Fatal(err)
	}
	select {
	case <-m.Done():
	default:
		t.Fatal("master not done")
	}

	_, err := c.Symbol(ctx, taivm.TableSymbol, taivm.SymbolInterned, "foo")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("got %v", err)
	}
	// idempotent
	if err := m.Shutdown(ctx); err != nil {
		t.Fatal(err)
	}
}

func TestQueuedRequestsAfterShutdown(t *testing.T) {
	m := Start(context.Background(), nil)
	ctx := context.Background()

	const n = 32
	errs := make(chan error, n)
	for i := range n {
		go func() {
			c := m.NewClient()
			defer c.Close()
			_, err := c.Symbol(ctx, taivm.TableSymbol, taivm.SymbolInterned, fmt.Sprintf("sym%d", i))
			errs <- err
		}()
	}
	if err := m.Shutdown(ctx); err != nil {
		t.Fatal(err)
	}
	for range n {
		select {
		case err := <-errs:
			if err != nil && !errors.Is(err, ErrUnavailable) {
				t.Fatalf("got %v", err)
			}
		case <-time.After(time.Second * 5):
			t.Fatal("request not answered")
		}
	}
}

func TestCancelledRequest(t *testing.T) {
	m := startTestMaster(t)
	c := m.NewClient()
	defer c.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Symbol(ctx, taivm.TableSymbol, taivm.SymbolInterned, "foo")
	if err != nil && !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v", err)
	}

	// the late reply must not be taken for the next request
	sym, err := c.Symbol(context.Background(), taivm.TableSymbol, taivm.SymbolInterned, "bar")
	if err != nil {
		t.Fatal(err)
	}
	if sym.Name != "bar" {
		t.Fatalf("got %v", sym.Name)
	}
}

func TestClosedClient(t *testing.T) {
	m := startTestMaster(t)
	c := m.NewClient()
	c.Close()
	c.Close()
	_, err := c.ModulePath(context.Background(), "foo")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("got %v", err)
	}
	if stats := m.Stats(); stats.Clients != 0 {
		t.Fatalf("got %+v", stats)
	}
}

func TestProcess(t *testing.T) {
	if Process(nil) != Process(nil) {
		t.Fatal("expected singleton")
	}
}
