package chat

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hongjun500/linechat/internal/chatlog"
)

func TestBroadcastReachesEveryMemberAndTranscript(t *testing.T) {
	reg := NewRegistry()
	var buf bytes.Buffer
	bc := NewBroadcaster(reg, chatlog.New(chatlog.WithConsole(&buf)))

	a, ra := newTestClient("a")
	b, rb := newTestClient("b")
	defer a.Close()
	defer b.Close()
	_ = reg.Register(a, "alice")
	_ = reg.Register(b, "bob")

	bc.Broadcast(From("bob", "hello"))
	bc.Notify("alice left the server")

	for _, r := range []*recorder{ra, rb} {
		lines := waitLines(t, r, 2)
		if lines[0] != "[bob] hello" || lines[1] != "[SERVER] alice left the server" {
			t.Fatalf("got %#v", lines)
		}
	}
	if !strings.Contains(buf.String(), "] [bob] hello\n") {
		t.Fatalf("transcript missing line: %q", buf.String())
	}
}

func TestBroadcastSkipsFailingMember(t *testing.T) {
	reg := NewRegistry()
	bc := NewBroadcaster(reg, chatlog.Discard())

	bad := NewClient("bad", "x", &recorder{fail: true}, 4)
	good, rg := newTestClient("good")
	defer good.Close()
	_ = reg.Register(bad, "bad")
	_ = reg.Register(good, "good")
	bad.Close()

	bc.Broadcast(From("good", "still here"))
	waitLines(t, rg, 1)
	if reg.Len() != 2 {
		t.Fatalf("broadcast must not remove members; len=%d", reg.Len())
	}
}

func TestBroadcastSelfDeliveryDoesNotDeadlock(t *testing.T) {
	reg := NewRegistry()
	bc := NewBroadcaster(reg, chatlog.Discard())
	c, r := newTestClient("self")
	defer c.Close()
	_ = reg.Register(c, "self")

	done := make(chan struct{})
	go func() {
		for i := 0; i < 50; i++ {
			bc.Broadcast(From("self", fmt.Sprint(i)))
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("broadcast blocked")
	}
	waitLines(t, r, 50)
}

// A member that joins during a stream of broadcasts must see a contiguous
// tail of the stream, and earlier members must see all of it.
func TestBroadcastIsAtomicWithJoin(t *testing.T) {
	const total = 300
	reg := NewRegistry()
	bc := NewBroadcaster(reg, chatlog.Discard())

	first := NewClient("first", "x", &recorder{}, total+10)
	rFirst := first.w.(*recorder)
	defer first.Close()
	_ = reg.Register(first, "first")

	late := NewClient("late", "x", &recorder{}, total+10)
	rLate := late.w.(*recorder)
	defer late.Close()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < total; i++ {
			bc.Broadcast(Raw(fmt.Sprint(i)))
		}
	}()
	go func() {
		defer wg.Done()
		time.Sleep(time.Millisecond)
		_ = reg.Register(late, "late")
	}()
	wg.Wait()

	all := waitLines(t, rFirst, total)
	for i, l := range all {
		if l != fmt.Sprint(i) {
			t.Fatalf("first member: line %d = %q", i, l)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := late.Flush(ctx); err != nil {
		t.Fatalf("flush: %v", err)
	}
	tail := rLate.Lines()
	if len(tail) == 0 {
		return // joined after the last broadcast
	}
	start := total - len(tail)
	for i, l := range tail {
		if l != fmt.Sprint(start+i) {
			t.Fatalf("late member saw a gap or reordering at %d: %#v", i, tail)
		}
	}
}

func TestBroadcasterDrain(t *testing.T) {
	reg := NewRegistry()
	bc := NewBroadcaster(reg, chatlog.Discard())
	c, r := newTestClient("a")
	defer c.Close()
	_ = reg.Register(c, "a")
	for i := 0; i < 20; i++ {
		bc.Notify("n")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := bc.Drain(ctx); err != nil {
		t.Fatalf("drain: %v", err)
	}
	if len(r.Lines()) != 20 {
		t.Fatalf("drained %d lines", len(r.Lines()))
	}
}
