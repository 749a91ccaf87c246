package transport

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/hongjun500/linechat/pkg/logger"
)

// ConnHandler owns a connection from accept until it returns.
type ConnHandler interface {
	ServeConn(conn net.Conn)
}

// ConnHandlerFunc adapts a func to ConnHandler.
type ConnHandlerFunc func(net.Conn)

func (f ConnHandlerFunc) ServeConn(conn net.Conn) { f(conn) }

// Listen binds addr for TCP; a failure here is fatal for the caller.
func Listen(addr string) (net.Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	logger.S().Infow("tcp_listen", "addr", ln.Addr().String())
	return ln, nil
}

// Serve accepts connections until ln is closed or ctx is done, handing each to
// handler on its own goroutine. It always returns ErrListenerClosed.
func Serve(ctx context.Context, ln net.Listener, handler ConnHandler) error {
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = ln.Close()
		case <-stop:
		}
	}()

	var backoff time.Duration
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return ErrListenerClosed
			}
			backoff = nextBackoff(backoff)
			logger.S().Warnw("tcp_accept_error", "err", err, "retry_in", backoff)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ErrListenerClosed
			}
			continue
		}
		backoff = 0
		go handler.ServeConn(conn)
	}
}

func nextBackoff(d time.Duration) time.Duration {
	if d == 0 {
		return 5 * time.Millisecond
	}
	if d *= 2; d > time.Second {
		d = time.Second
	}
	return d
}
