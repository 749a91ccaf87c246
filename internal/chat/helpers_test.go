package chat

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/hongjun500/linechat/pkg/logger"
	"go.uber.org/zap"
)

func init() {
	logger.Replace(zap.NewNop())
}

// recorder is an in-memory LineWriter.
type recorder struct {
	mu     sync.Mutex
	lines  []string
	fail   bool
	closed bool
	block  chan struct{}
}

func (r *recorder) WriteLine(s string) error {
	if r.block != nil {
		<-r.block
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errors.New("write failed")
	}
	r.lines = append(r.lines, s)
	return nil
}

func (r *recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func (r *recorder) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.lines...)
}

func (r *recorder) IsClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

// waitLines polls until r holds n lines.
func waitLines(t *testing.T, r *recorder, n int) []string {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		lines := r.Lines()
		if len(lines) >= n {
			return lines
		}
		if time.Now().After(deadline) {
			t.Fatalf("expected %d lines, have %#v", n, lines)
		}
		time.Sleep(2 * time.Millisecond)
	}
}
