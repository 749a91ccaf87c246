package chat

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hongjun500/linechat/internal/chatlog"
	"github.com/hongjun500/linechat/internal/command"
	"github.com/hongjun500/linechat/internal/observe"
	"github.com/hongjun500/linechat/internal/transport"
	"github.com/hongjun500/linechat/pkg/logger"
)

// Server runs one Session per accepted connection over a shared Registry.
type Server struct {
	recvBuffer      int
	outBuffer       int
	writeTimeout    time.Duration
	maxNameAttempts int
	motd            []string

	reg  *Registry
	bc   *Broadcaster
	log  *chatlog.Logger
	cmds *command.Registry

	mu        sync.Mutex
	closed    bool
	listeners map[net.Listener]struct{}
}

// NewServer builds a server; without options it uses a 1024 byte receive
// buffer, an empty MOTD and a console transcript.
func NewServer(options ...Option) (*Server, error) {
	s := &Server{
		recvBuffer:   1024,
		outBuffer:    256,
		writeTimeout: 10 * time.Second,
		motd:         []string{},
		reg:          NewRegistry(),
		log:          chatlog.New(),
		cmds:         command.Builtins(),
		listeners:    make(map[net.Listener]struct{}),
	}
	if err := setup(s, options...); err != nil {
		return nil, err
	}
	s.bc = NewBroadcaster(s.reg, s.log)
	return s, nil
}

func (s *Server) Registry() *Registry { return s.reg }

func (s *Server) Broadcaster() *Broadcaster { return s.bc }

// Serve accepts on ln until it is closed, ctx is done or Shutdown is called.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		_ = ln.Close()
		return ErrServerClosed
	}
	s.listeners[ln] = struct{}{}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.listeners, ln)
		s.mu.Unlock()
	}()
	return transport.Serve(ctx, ln, s)
}

// ServeConn implements transport.ConnHandler; it blocks until the session ends.
func (s *Server) ServeConn(conn net.Conn) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		_ = conn.Close()
		return
	}
	s.mu.Unlock()

	observe.IncSession()
	tc, err := transport.NewConn(conn, s.recvBuffer, s.writeTimeout)
	if err != nil {
		logger.S().Errorw("session_setup_error", "addr", conn.RemoteAddr().String(), "err", err)
		_ = conn.Close()
		return
	}
	newSession(s, tc, uuid.New().String()).run()
}

// Shutdown announces the shutdown to every session, stops accepting and waits,
// bounded by ctx, for queued messages to reach their sockets. Sessions are left
// to end on their own.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrServerClosed
	}
	s.closed = true
	listeners := make([]net.Listener, 0, len(s.listeners))
	for ln := range s.listeners {
		listeners = append(listeners, ln)
	}
	s.mu.Unlock()

	logger.S().Infow("server_shutdown", "members", s.reg.Nicknames(), "connections", s.reg.Connections())
	s.bc.Notify("Server is closing")
	for _, ln := range listeners {
		_ = ln.Close()
	}
	return s.bc.Drain(ctx)
}
