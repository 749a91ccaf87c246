package transport

import (
	"net"
	"strings"
	"sync"
	"time"
)

// Conn is the line-oriented view of a TCP connection.
//
// Reads are not framed: one ReadMessages call performs exactly one Read of at
// most the configured buffer size and returns whatever that delivered, split on
// newlines. Text is never carried over to the next call, so input longer than
// the buffer arrives as several units.
type Conn struct {
	conn         net.Conn
	buf          []byte
	writeTimeout time.Duration

	wmu sync.Mutex
}

func NewConn(c net.Conn, bufSize int, writeTimeout time.Duration) (*Conn, error) {
	if bufSize <= 0 {
		return nil, ErrInvalidBuffer.WithContext(c.RemoteAddr().String())
	}
	return &Conn{conn: c, buf: make([]byte, bufSize), writeTimeout: writeTimeout}, nil
}

// ReadMessages blocks for one receive and returns its non-empty, trimmed lines.
// The slice may be empty when the receive carried only whitespace.
func (t *Conn) ReadMessages() ([]string, error) {
	n, err := t.conn.Read(t.buf)
	var out []string
	if n > 0 {
		out = SplitMessages(t.buf[:n])
	}
	if err != nil && len(out) == 0 {
		return nil, err
	}
	// deliver what arrived; the error resurfaces on the next read
	return out, nil
}

// SplitMessages decodes one receive into trimmed, non-empty units.
func SplitMessages(p []byte) []string {
	text := strings.ToValidUTF8(string(p), "�")
	parts := strings.Split(text, "\n")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// WriteLine writes s followed by a newline as a single write.
func (t *Conn) WriteLine(s string) error {
	t.wmu.Lock()
	defer t.wmu.Unlock()
	if t.writeTimeout > 0 {
		_ = t.conn.SetWriteDeadline(time.Now().Add(t.writeTimeout))
	}
	_, err := t.conn.Write([]byte(s + "\n"))
	return err
}

func (t *Conn) RemoteAddr() net.Addr { return t.conn.RemoteAddr() }

func (t *Conn) Close() error { return t.conn.Close() }
