package chat

import (
	"errors"
	"fmt"
	"time"

	"github.com/hongjun500/linechat/internal/chatlog"
	"github.com/hongjun500/linechat/internal/command"
)

type Option func(s *Server) error

func setup(s *Server, options ...Option) error {
	for _, option := range options {
		if option == nil {
			continue
		}
		if err := option(s); err != nil {
			return err
		}
	}
	return nil
}

// WithRecvBuffer sets the size of a single receive; longer input is split.
func WithRecvBuffer(size int) Option {
	return func(s *Server) error {
		if size <= 0 {
			return fmt.Errorf("chat.WithRecvBuffer: invalid size (%d)", size)
		}
		s.recvBuffer = size
		return nil
	}
}

// WithOutBuffer sets how many outgoing units a slow client may have queued.
func WithOutBuffer(size int) Option {
	return func(s *Server) error {
		if size <= 0 {
			return fmt.Errorf("chat.WithOutBuffer: invalid size (%d)", size)
		}
		s.outBuffer = size
		return nil
	}
}

// WithWriteTimeout bounds each socket write; 0 disables the deadline.
func WithWriteTimeout(timeout time.Duration) Option {
	return func(s *Server) error {
		if timeout < 0 {
			return fmt.Errorf("chat.WithWriteTimeout: invalid timeout (%v)", timeout)
		}
		s.writeTimeout = timeout
		return nil
	}
}

// WithMOTD sets the lines sent to every session right after it joins.
func WithMOTD(lines []string) Option {
	return func(s *Server) error {
		s.motd = append([]string(nil), lines...)
		return nil
	}
}

// WithTranscript replaces the default console-only transcript.
func WithTranscript(l *chatlog.Logger) Option {
	return func(s *Server) error {
		if l == nil {
			return errors.New("chat.WithTranscript: logger is nil")
		}
		s.log = l
		return nil
	}
}

// WithMaxNameAttempts closes sessions after n rejected nicknames; 0 means unlimited.
func WithMaxNameAttempts(n int) Option {
	return func(s *Server) error {
		if n < 0 {
			return fmt.Errorf("chat.WithMaxNameAttempts: invalid value (%d)", n)
		}
		s.maxNameAttempts = n
		return nil
	}
}

// WithCommands replaces the builtin command table.
func WithCommands(r *command.Registry) Option {
	return func(s *Server) error {
		if r == nil {
			return errors.New("chat.WithCommands: registry is nil")
		}
		s.cmds = r
		return nil
	}
}
