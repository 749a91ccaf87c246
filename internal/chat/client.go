package chat

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hongjun500/linechat/internal/observe"
	"github.com/hongjun500/linechat/pkg/logger"
)

// LineWriter is the write side of a connection.
type LineWriter interface {
	WriteLine(s string) error
	Close() error
}

// Client is the outbound half of a session: a bounded queue drained by one
// writer goroutine, so Send never blocks the caller.
type Client struct {
	ID   string
	Addr string

	w         LineWriter
	out       chan string
	pending   atomic.Int64
	closeOnce sync.Once
	closed    chan struct{}
}

// NewClient starts the writer goroutine; bufferSize <= 0 selects 256.
func NewClient(id, addr string, w LineWriter, bufferSize int) *Client {
	if bufferSize <= 0 {
		bufferSize = 256
	}
	c := &Client{
		ID:     id,
		Addr:   addr,
		w:      w,
		out:    make(chan string, bufferSize),
		closed: make(chan struct{}),
	}
	go c.writeLoop()
	return c
}

// Send queues one message unit. A full queue closes the client: its session
// notices on the next read and tears itself down.
func (c *Client) Send(message string) bool {
	if c.IsClosed() {
		return false
	}
	c.pending.Add(1)
	select {
	case c.out <- message:
		return true
	default:
		c.pending.Add(-1)
		observe.IncDropped()
		logger.S().Warnw("client_queue_full", "session", c.ID, "addr", c.Addr)
		c.Close()
		return false
	}
}

func (c *Client) writeLoop() {
	for {
		select {
		case msg := <-c.out:
			err := c.w.WriteLine(msg)
			c.pending.Add(-1)
			if err != nil {
				logger.S().Debugw("client_write_error", "session", c.ID, "err", err)
				c.Close()
				return
			}
		case <-c.closed:
			return
		}
	}
}

// Pending is the number of queued units not yet written.
func (c *Client) Pending() int { return int(c.pending.Load()) }

// Flush waits until the queue is written, the client closes or ctx is done.
func (c *Client) Flush(ctx context.Context) error {
	t := time.NewTicker(5 * time.Millisecond)
	defer t.Stop()
	for c.Pending() > 0 && !c.IsClosed() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
	return nil
}

// Close stops the writer and closes the connection; safe to call repeatedly.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.closed)
		if c.w != nil {
			_ = c.w.Close()
		}
	})
}

// IsClosed reports without blocking whether Close has run.
func (c *Client) IsClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

// Done is closed once the client is closed.
func (c *Client) Done() <-chan struct{} { return c.closed }
