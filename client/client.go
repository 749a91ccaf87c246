// Package client is a minimal peer for the chat wire protocol: it writes one
// line per message and reads newline-terminated lines back.
package client

import (
	"bufio"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"
)

type Client struct {
	conn net.Conn
	r    *bufio.Reader
	wmu  sync.Mutex
}

func Dial(addr string) (*Client, error) {
	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		return nil, err
	}
	return New(conn), nil
}

func New(conn net.Conn) *Client {
	return &Client{conn: conn, r: bufio.NewReader(conn)}
}

// Send writes text followed by a newline.
func (c *Client) Send(text string) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	_, err := fmt.Fprintf(c.conn, "%s\n", text)
	return err
}

// ReadLine returns the next line without its terminator. timeout <= 0 waits forever.
func (c *Client) ReadLine(timeout time.Duration) (string, error) {
	if timeout > 0 {
		_ = c.conn.SetReadDeadline(time.Now().Add(timeout))
		defer c.conn.SetReadDeadline(time.Time{})
	}
	line, err := c.r.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Expect reads lines until one equals want, returning the lines skipped on the way.
func (c *Client) Expect(want string, timeout time.Duration) ([]string, error) {
	deadline := time.Now().Add(timeout)
	var skipped []string
	for {
		left := time.Until(deadline)
		if left <= 0 {
			return skipped, fmt.Errorf("client: %q not received", want)
		}
		line, err := c.ReadLine(left)
		if err != nil {
			return skipped, fmt.Errorf("client: waiting for %q: %w", want, err)
		}
		if line == want {
			return skipped, nil
		}
		skipped = append(skipped, line)
	}
}

func (c *Client) LocalAddr() net.Addr { return c.conn.LocalAddr() }

// CloseWrite shuts down the sending side so the server sees end of input,
// falling back to Close on connections without half-close.
func (c *Client) CloseWrite() error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	if hc, ok := c.conn.(interface{ CloseWrite() error }); ok {
		return hc.CloseWrite()
	}
	return c.conn.Close()
}

func (c *Client) Close() error { return c.conn.Close() }
