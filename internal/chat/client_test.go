package chat

import (
	"context"
	"testing"
	"time"
)

func TestClientSendWritesInOrder(t *testing.T) {
	c, r := newTestClient("a")
	defer c.Close()
	for _, m := range []string{"one", "two", "three"} {
		if !c.Send(m) {
			t.Fatalf("send %q failed", m)
		}
	}
	lines := waitLines(t, r, 3)
	if lines[0] != "one" || lines[1] != "two" || lines[2] != "three" {
		t.Fatalf("got %#v", lines)
	}
}

func TestClientCloseIsIdempotent(t *testing.T) {
	c, r := newTestClient("a")
	c.Close()
	c.Close()
	if !c.IsClosed() || !r.IsClosed() {
		t.Fatalf("client should be closed")
	}
	if c.Send("late") {
		t.Fatalf("send after close should fail")
	}
	select {
	case <-c.Done():
	default:
		t.Fatalf("Done not closed")
	}
}

func TestClientOverflowClosesClient(t *testing.T) {
	r := &recorder{block: make(chan struct{})}
	c := NewClient("slow", "127.0.0.1:1", r, 1)
	defer close(r.block)

	sent := 0
	for i := 0; i < 4; i++ {
		if c.Send("x") {
			sent++
		}
	}
	if !c.IsClosed() {
		t.Fatalf("overflowing client should be closed")
	}
	if sent == 4 {
		t.Fatalf("all sends succeeded despite a one-slot queue")
	}
}

func TestClientWriteErrorClosesClient(t *testing.T) {
	r := &recorder{fail: true}
	c := NewClient("broken", "127.0.0.1:1", r, 4)
	c.Send("x")
	select {
	case <-c.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("client not closed after write error")
	}
}

func TestClientFlush(t *testing.T) {
	c, r := newTestClient("a")
	defer c.Close()
	for i := 0; i < 10; i++ {
		c.Send("m")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := c.Flush(ctx); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if len(r.Lines()) != 10 || c.Pending() != 0 {
		t.Fatalf("lines=%d pending=%d", len(r.Lines()), c.Pending())
	}
}

func TestClientFlushHonoursContext(t *testing.T) {
	r := &recorder{block: make(chan struct{})}
	c := NewClient("stuck", "127.0.0.1:1", r, 4)
	defer func() {
		close(r.block)
		c.Close()
	}()
	c.Send("m")
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := c.Flush(ctx); err == nil {
		t.Fatalf("flush should time out while the writer is stuck")
	}
}
