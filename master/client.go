package master

import (
	"context"
	"fmt"
	"sync"

	"github.com/reusee/places/runtimes"
	"github.com/reusee/places/syncs"
	"github.com/reusee/places/taivm"
)

// Client is one instance's connection to the master. A client serializes its
// own requests.
type Client struct {
	master *Master
	reply  *syncs.Mailbox[Message]

	mu     sync.Mutex
	seq    uint64
	closed bool
}

var _ runtimes.Canonicalizer = new(Client)

func (m *Master) NewClient() *Client {
	m.numClients.Add(1)
	return &Client{
		master: m,
		reply:  syncs.NewMailbox[Message](),
	}
}

func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.reply.Close()
	c.master.numClients.Add(-1)
}

func (c *Client) request(ctx context.Context, req Message, want MessageKind) (Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return Message{}, ErrUnavailable
	}

	c.seq++
	req.Seq = c.seq
	req.Reply = c.reply
	if err := c.master.inbox.Send(req); err != nil {
		return Message{}, ErrUnavailable
	}

	for {
		resp, err := c.reply.Recv(ctx)
		if err != nil {
			return Message{}, err
		}
		if resp.Seq != req.Seq {
			// reply to a request abandoned earlier
			continue
		}
		if resp.Err != nil {
			return Message{}, resp.Err
		}
		if resp.Kind != want {
			return Message{}, fmt.Errorf("unexpected reply %v to %v", resp.Kind, req.Kind)
		}
		return resp, nil
	}
}

func (c *Client) Symbol(ctx context.Context, table taivm.SymbolTable, kind taivm.SymbolKind, name string) (*CanonicalSymbol, error) {
	resp, err := c.request(ctx, Message{
		Kind:       KindCanonicalizeSymbol,
		Table:      table,
		SymbolKind: kind,
		Name:       name,
	}, KindCanonicalizedSymbol)
	if err != nil {
		return nil, err
	}
	return resp.Symbol, nil
}

func (c *Client) ModulePath(ctx context.Context, name string) (*CanonicalModulePath, error) {
	resp, err := c.request(ctx, Message{
		Kind: KindCanonicalizeModulePath,
		Name: name,
	}, KindCanonicalizedModulePath)
	if err != nil {
		return nil, err
	}
	return resp.ModulePath, nil
}

func (c *Client) CanonicalSymbol(ctx context.Context, table taivm.SymbolTable, kind taivm.SymbolKind, name string) (uint64, error) {
	sym, err := c.Symbol(ctx, table, kind, name)
	if err != nil {
		return 0, err
	}
	return sym.ID, nil
}

func (c *Client) CanonicalModulePath(ctx context.Context, name string) (uint64, error) {
	mp, err := c.ModulePath(ctx, name)
	if err != nil {
		return 0, err
	}
	return mp.ID, nil
}
