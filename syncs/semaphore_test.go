package syncs

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestSemaphore(t *testing.T) {
	sem := NewSemaphore(2)
	sem.Acquire()
	if err := sem.AcquireContext(t.Context()); err != nil {
		t.Fatal(err)
	}
	if n := sem.Holders(); n != 2 {
		t.Fatalf("got %v", n)
	}

	ctx, cancel := context.WithTimeout(t.Context(), time.Millisecond*10)
	defer cancel()
	if err := sem.AcquireContext(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("got %v", err)
	}

	acquired := make(chan struct{})
	go func() {
		sem.Acquire()
		close(acquired)
	}()
	select {
	case <-acquired:
		t.Fatal("should block")
	case <-time.After(time.Millisecond * 10):
	}
	sem.Release()
	select {
	case <-acquired:
	case <-time.After(time.Second * 5):
		t.Fatal("should acquire")
	}
}
