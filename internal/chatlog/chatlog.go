// Package chatlog writes the chat transcript: every broadcast line plus connection notices.
//
// Lines always go to the console sink. When a file path is set they are also
// appended to that file, opening and closing it for every line so that no
// handle is held between writes. An optional Mirror receives a copy as well,
// delivered from its own goroutine so a slow mirror never delays Log.
package chatlog

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/hongjun500/linechat/pkg/logger"
)

const (
	timeLayout = "2006/01/02 15:04:05"

	defaultMirrorQueue = 256
)

// Mirror receives a copy of every transcript line.
type Mirror interface {
	Mirror(when time.Time, line string) error
}

type mirrored struct {
	when time.Time
	line string
}

type Logger struct {
	console io.Writer
	path    string
	mirror  Mirror
	queue   int
	now     func() time.Time

	mu      sync.Mutex // serializes appends within the process
	pending chan mirrored
	closed  bool
	done    chan struct{}
}

type Option func(*Logger)

// WithFile enables the durable sink; an empty path leaves it disabled.
func WithFile(path string) Option {
	return func(l *Logger) { l.path = path }
}

func WithConsole(w io.Writer) Option {
	return func(l *Logger) { l.console = w }
}

// WithMirror copies every line to m. Up to queue lines wait for delivery;
// further lines are dropped until the mirror catches up. queue <= 0 uses 256.
func WithMirror(m Mirror, queue int) Option {
	return func(l *Logger) {
		l.mirror = m
		l.queue = queue
	}
}

func withClock(now func() time.Time) Option {
	return func(l *Logger) { l.now = now }
}

func New(opts ...Option) *Logger {
	l := &Logger{console: os.Stdout, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	if l.mirror != nil {
		if l.queue <= 0 {
			l.queue = defaultMirrorQueue
		}
		l.pending = make(chan mirrored, l.queue)
		l.done = make(chan struct{})
		go l.mirrorLoop()
	}
	return l
}

// Discard is a transcript that writes nowhere.
func Discard() *Logger { return New(WithConsole(io.Discard)) }

// Format returns the transcript form of line at t.
func Format(t time.Time, line string) string {
	return "[" + t.Format(timeLayout) + "] " + line + "\n"
}

// Log appends one timestamped line. Sink failures are reported and swallowed.
func (l *Logger) Log(line string) {
	if l == nil {
		return
	}
	when := l.now()
	entry := Format(when, line)

	l.mu.Lock()
	if l.console != nil {
		_, _ = io.WriteString(l.console, entry)
	}
	if l.path != "" {
		if err := appendLine(l.path, entry); err != nil {
			logger.S().Warnw("chatlog_append_error", "path", l.path, "err", err)
		}
	}
	if l.pending != nil && !l.closed {
		select {
		case l.pending <- mirrored{when: when, line: line}:
		default:
			logger.S().Warnw("chatlog_mirror_dropped", "queue", l.queue)
		}
	}
	l.mu.Unlock()
}

func (l *Logger) mirrorLoop() {
	defer close(l.done)
	for m := range l.pending {
		if err := l.mirror.Mirror(m.when, m.line); err != nil {
			logger.S().Warnw("chatlog_mirror_error", "err", err)
		}
	}
}

// Close stops accepting mirror copies and waits, bounded by ctx, for the
// queued ones to be delivered. Console and file writes keep working.
func (l *Logger) Close(ctx context.Context) error {
	if l == nil || l.pending == nil {
		return nil
	}
	l.mu.Lock()
	if !l.closed {
		l.closed = true
		close(l.pending)
	}
	l.mu.Unlock()

	select {
	case <-l.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Logf is Log with fmt.Sprintf formatting.
func (l *Logger) Logf(format string, args ...any) {
	l.Log(fmt.Sprintf(format, args...))
}

func appendLine(path, entry string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	_, werr := f.WriteString(entry)
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	return werr
}
