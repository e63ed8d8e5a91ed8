package net

import (
	"fmt"
	"net"

	"go.uber.org/zap"
)

// acceptor turns an accepted Conn into a registered, running Session.
// Both listeners share one so IDs and bookkeeping stay in one place.
type acceptor struct {
	opts  SessionOptions
	store *SessionStore
	hooks Hooks
	log   *zap.Logger
}

func newAcceptor(opts SessionOptions, store *SessionStore, hooks Hooks, log *zap.Logger) *acceptor {
	return &acceptor{opts: opts, store: store, hooks: hooks, log: log}
}

func (a *acceptor) open(conn Conn) *Session {
	id := a.store.NextID()
	hooks := a.hooks
	onClose := a.hooks.OnClose
	hooks.OnClose = func(sess *Session) {
		if onClose != nil {
			onClose(sess)
		}
		a.store.Remove(sess.ID)
		a.log.Info(fmt.Sprintf("玩家斷線  session=%d  ip=%s", sess.ID, sess.IP))
	}

	sess := NewSession(conn, id, a.opts, hooks, a.log)
	a.store.Add(sess)
	a.log.Info(fmt.Sprintf("玩家連線  session=%d  ip=%s", id, sess.IP))
	sess.Start()
	return sess
}

// Server accepts TCP connections and creates Sessions.
type Server struct {
	listener net.Listener
	accept   *acceptor
	log      *zap.Logger
	closeCh  chan struct{}
}

func NewServer(bindAddr string, opts SessionOptions, store *SessionStore, hooks Hooks, log *zap.Logger) (*Server, error) {
	ln, err := net.Listen("tcp", bindAddr)
	if err != nil {
		return nil, fmt.Errorf("listen tcp %s: %w", bindAddr, err)
	}
	s := &Server{
		listener: ln,
		accept:   newAcceptor(opts, store, hooks, log),
		log:      log,
		closeCh:  make(chan struct{}),
	}
	return s, nil
}

// AcceptLoop runs in its own goroutine until Shutdown.
func (s *Server) AcceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.closeCh:
				return // server shutting down
			default:
			}
			s.log.Error("連線接受失敗", zap.Error(err))
			continue
		}
		s.accept.open(newTCPConn(conn, s.accept.opts.ReadTimeout))
	}
}

// Shutdown stops accepting new connections.
func (s *Server) Shutdown() {
	close(s.closeCh)
	s.listener.Close()
}

// Addr returns the listener's address.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}
