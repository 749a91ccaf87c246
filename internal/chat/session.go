package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hongjun500/linechat/internal/command"
	"github.com/hongjun500/linechat/internal/observe"
	"github.com/hongjun500/linechat/internal/transport"
	"github.com/hongjun500/linechat/pkg/logger"
)

const (
	msgGreeting      = "Welcome!"
	msgNamePrompt    = "Please enter your name."
	msgNameRejected  = "Your chosen nick name is either empty, too long or contains invalid characters."
	msgTooManyTries  = "Too many invalid nick names, bye."
	rejectFlushLimit = time.Second
)

// State is the lifecycle stage of a session.
type State int32

const (
	StateConnected State = iota
	StateNamePending
	StateActive
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateConnected:
		return "CONNECTED"
	case StateNamePending:
		return "NAME_PENDING"
	case StateActive:
		return "ACTIVE"
	case StateTerminated:
		return "TERMINATED"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Session drives one connection from accept to teardown. Only its own
// goroutine reads the connection or mutates its registry entries.
type Session struct {
	srv    *Server
	conn   *transport.Conn
	client *Client

	state    atomic.Int32
	nick     string
	attempts int
	leaving  bool
	backlog  []string

	teardown sync.Once
}

func newSession(srv *Server, conn *transport.Conn, id string) *Session {
	addr := conn.RemoteAddr().String()
	s := &Session{
		srv:    srv,
		conn:   conn,
		client: NewClient(id, addr, conn, srv.outBuffer),
	}
	s.setState(StateConnected)
	return s
}

func (s *Session) ID() string       { return s.client.ID }
func (s *Session) Addr() string     { return s.client.Addr }
func (s *Session) Nickname() string { return s.nick }
func (s *Session) State() State     { return State(s.state.Load()) }

// Leave marks the session for the clean-leave path; called by the /leave command.
func (s *Session) Leave() { s.leaving = true }

func (s *Session) setState(st State) { s.state.Store(int32(st)) }

// run is the whole state machine; it returns once the session is TERMINATED.
func (s *Session) run() {
	s.srv.reg.TrackAddr(s.client, s.Addr())
	s.srv.log.Logf("%s has connected", s.Addr())

	s.client.Send(msgGreeting)
	s.client.Send(msgNamePrompt)
	s.setState(StateNamePending)

	nick, err := s.negotiate()
	if err != nil {
		s.terminate(err)
		return
	}
	if err := s.join(nick); err != nil {
		s.terminate(err)
		return
	}
	s.terminate(s.receive())
}

// next returns the following message unit. A receive that carried only
// whitespace yields "".
func (s *Session) next() (string, error) {
	if len(s.backlog) == 0 {
		msgs, err := s.conn.ReadMessages()
		if err != nil {
			return "", err
		}
		if len(msgs) == 0 {
			return "", nil
		}
		s.backlog = msgs
	}
	msg := s.backlog[0]
	s.backlog = s.backlog[1:]
	return msg, nil
}

func (s *Session) negotiate() (string, error) {
	for {
		name, err := s.next()
		if err != nil {
			return "", err
		}
		if ValidNickname(name) {
			return name, nil
		}
		s.attempts++
		observe.IncNicknameRejected()
		logger.S().Debugw("nickname_rejected", "session", s.ID(), "attempt", s.attempts)
		s.client.Send(msgNameRejected)
		if s.srv.maxNameAttempts > 0 && s.attempts >= s.srv.maxNameAttempts {
			s.client.Send(msgTooManyTries)
			ctx, cancel := context.WithTimeout(context.Background(), rejectFlushLimit)
			_ = s.client.Flush(ctx)
			cancel()
			return "", ErrTooManyAttempts
		}
	}
}

func (s *Session) join(nick string) error {
	s.nick = nick
	s.setState(StateActive)
	s.client.Send(fmt.Sprintf("Welcome, %s!", nick))
	for _, line := range s.srv.motd {
		s.client.Send(line)
	}
	if err := s.srv.reg.Register(s.client, nick); err != nil {
		return err
	}
	logger.S().Infow("session_joined", "session", s.ID(), "addr", s.Addr(), "nick", nick)
	s.srv.bc.Notify(nick + " has joined the server.")
	return nil
}

// receive is the ACTIVE loop. It returns nil after /leave and the read error otherwise.
func (s *Session) receive() error {
	for {
		msg, err := s.next()
		if err != nil {
			return err
		}
		if msg == "" {
			continue
		}
		handled, err := s.srv.cmds.Execute(msg, &command.Context{Target: s})
		if err != nil {
			logger.S().Warnw("command_error", "session", s.ID(), "cmd", msg, "err", err)
		}
		if s.leaving {
			return nil
		}
		if handled {
			continue
		}
		s.srv.bc.Broadcast(From(s.nick, msg))
	}
}

// terminate runs teardown once, whichever path reached it. cause is nil for a clean leave.
func (s *Session) terminate(cause error) {
	s.teardown.Do(func() {
		s.setState(StateTerminated)
		s.client.Close()
		removed := s.srv.reg.Unregister(s.client)
		s.srv.reg.ForgetAddr(s.client)

		switch {
		case removed && cause == nil:
			observe.IncDisconnect("leave")
			s.srv.bc.Notify(s.nick + " left the server")
		case removed:
			observe.IncDisconnect("lost")
			s.srv.bc.Notify(s.nick + " has lost connection")
		default:
			observe.IncDisconnect("aborted")
			s.srv.log.Logf("%s connection aborted", s.Addr())
		}

		if cause != nil && !errors.Is(cause, io.EOF) && !errors.Is(cause, ErrTooManyAttempts) {
			logger.S().Debugw("session_read_error", "session", s.ID(), "err", cause)
		}
		logger.S().Infow("session_closed", "session", s.ID(), "addr", s.Addr(), "nick", s.nick, "clean", cause == nil)
	})
}
