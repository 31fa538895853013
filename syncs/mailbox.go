package syncs

import (
	"context"
	"errors"
	"sync"
)

var ErrMailboxClosed = errors.New("mailbox closed")

// Mailbox is an unbounded multi-producer single-consumer queue.
// Send never waits for the consumer; Recv blocks until a message is queued.
type Mailbox[T any] struct {
	mu     sync.Mutex
	queue  []T
	notify chan struct{}
	closed bool
}

func NewMailbox[T any]() *Mailbox[T] {
	return &Mailbox[T]{
		notify: make(chan struct{}, 1),
	}
}

func (m *Mailbox[T]) Send(msg T) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrMailboxClosed
	}
	m.queue = append(m.queue, msg)
	m.mu.Unlock()
	select {
	case m.notify <- struct{}{}:
	default:
	}
	return nil
}

// Recv returns the oldest message. After Close, queued messages are still
// delivered before ErrMailboxClosed.
func (m *Mailbox[T]) Recv(ctx context.Context) (ret T, err error) {
	for {
		m.mu.Lock()
		if len(m.queue) > 0 {
			ret = m.queue[0]
			var zero T
			m.queue[0] = zero
			m.queue = m.queue[1:]
			if len(m.queue) > 0 {
				// wake up the next Recv
				select {
				case m.notify <- struct{}{}:
				default:
				}
			}
			m.mu.Unlock()
			return ret, nil
		}
		if m.closed {
			m.mu.Unlock()
			return ret, ErrMailboxClosed
		}
		m.mu.Unlock()

		select {
		case <-m.notify:
		case <-ctx.Done():
			return ret, ctx.Err()
		}
	}
}

// Drain removes and returns all queued messages.
func (m *Mailbox[T]) Drain() []T {
	m.mu.Lock()
	defer m.mu.Unlock()
	ret := m.queue
	m.queue = nil
	return ret
}

func (m *Mailbox[T]) Close() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	select {
	case m.notify <- struct{}{}:
	default:
	}
}

func (m *Mailbox[T]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}
