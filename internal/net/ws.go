package net

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// wsConn carries one packet per binary WebSocket message, without the
// 2-byte length header used on TCP.
type wsConn struct {
	conn        *websocket.Conn
	readTimeout time.Duration
}

func (c *wsConn) ReadPacket() ([]byte, error) {
	for {
		if c.readTimeout > 0 {
			c.conn.SetReadDeadline(time.Now().Add(c.readTimeout))
		}
		kind, data, err := c.conn.ReadMessage()
		if err != nil {
			return nil, fmt.Errorf("read ws message: %w", err)
		}
		if kind != websocket.BinaryMessage {
			continue
		}
		if len(data) == 0 {
			return nil, fmt.Errorf("empty ws message")
		}
		return data, nil
	}
}

func (c *wsConn) WritePacket(data []byte, deadline time.Time) error {
	c.conn.SetWriteDeadline(deadline)
	if err := c.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
		return fmt.Errorf("write ws message: %w", err)
	}
	return nil
}

func (c *wsConn) Close() error { return c.conn.Close() }
func (c *wsConn) RemoteAddr() string { return c.conn.RemoteAddr().String() }

// WSServer accepts browser clients over WebSocket and feeds them into the
// same session pipeline as the TCP server.
type WSServer struct {
	httpSrv  *http.Server
	listener net.Listener
	upgrader websocket.Upgrader
	accept   *acceptor
	log      *zap.Logger
}

// NewWSServer listens on bindAddr and upgrades requests on path.
func NewWSServer(bindAddr, path string, opts SessionOptions, store *SessionStore, hooks Hooks, log *zap.Logger) (*WSServer, error) {
	ln, err := net.Listen("tcp", bindAddr)
	if err != nil {
		return nil, fmt.Errorf("listen ws %s: %w", bindAddr, err)
	}
	s := &WSServer{
		listener: ln,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		accept: newAcceptor(opts, store, hooks, log),
		log:    log,
	}
	mux := http.NewServeMux()
	mux.HandleFunc(path, s.handle)
	s.httpSrv = &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	return s, nil
}

func (s *WSServer) handle(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Debug("websocket 升級失敗", zap.Error(err))
		return
	}
	s.accept.open(&wsConn{conn: conn, readTimeout: s.accept.opts.ReadTimeout})
}

// Serve blocks until Shutdown.
func (s *WSServer) Serve() error {
	if err := s.httpSrv.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve ws: %w", err)
	}
	return nil
}

// Shutdown stops accepting and closes the listener.
func (s *WSServer) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

func (s *WSServer) Addr() net.Addr {
	return s.listener.Addr()
}
