package net

import (
	"bytes"
	"context"
	"net"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jpsworld/server/internal/net/packet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, []byte{1, 2, 3}))
	assert.Equal(t, []byte{5, 0, 1, 2, 3}, buf.Bytes())

	payload, err := ReadFrame(&buf)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, payload)
}

func TestFrameRejects(t *testing.T) {
	_, err := ReadFrame(bytes.NewReader([]byte{2, 0}))
	assert.Error(t, err, "header-only frame")

	_, err = ReadFrame(bytes.NewReader([]byte{9, 0, 1}))
	assert.Error(t, err, "truncated payload")

	assert.Error(t, WriteFrame(&bytes.Buffer{}, make([]byte, maxFrame)))
}

type pipeHarness struct {
	store   *SessionStore
	client  net.Conn
	sess    *Session
	packets chan []byte
	closed  chan uint64
}

func newPipeHarness(t *testing.T, opts SessionOptions) *pipeHarness {
	t.Helper()
	server, client := net.Pipe()
	h := &pipeHarness{
		store:   NewSessionStore(zap.NewNop()),
		client:  client,
		packets: make(chan []byte, 8),
		closed:  make(chan uint64, 1),
	}
	hooks := Hooks{
		OnPacket: func(s *Session, data []byte) { h.packets <- data },
		OnClose:  func(s *Session) { h.closed <- s.ID },
	}
	a := newAcceptor(opts, h.store, hooks, zap.NewNop())
	h.sess = a.open(newTCPConn(server, 0))
	t.Cleanup(func() { client.Close() })
	return h
}

func (h *pipeHarness) waitClosed(t *testing.T) {
	t.Helper()
	select {
	case id := <-h.closed:
		assert.Equal(t, h.sess.ID, id)
	case <-time.After(2 * time.Second):
		t.Fatal("session was not released")
	}
	assert.Eventually(t, func() bool { return h.store.Count() == 0 }, time.Second, 5*time.Millisecond)
}

func TestSessionReadWrite(t *testing.T) {
	h := newPipeHarness(t, SessionOptions{OutQueueSize: 4})
	assert.Equal(t, uint64(1), h.sess.ID)
	assert.Equal(t, 1, h.store.Count())

	require.NoError(t, WriteFrame(h.client, []byte{7, 8}))
	select {
	case got := <-h.packets:
		assert.Equal(t, []byte{7, 8}, got)
	case <-time.After(2 * time.Second):
		t.Fatal("packet not delivered")
	}

	h.store.Send(h.sess.ID, []byte{9})
	got, err := ReadFrame(h.client)
	require.NoError(t, err)
	assert.Equal(t, []byte{9}, got)

	h.client.Close()
	h.waitClosed(t)
	assert.True(t, h.sess.IsClosed())
}

func TestSessionRateLimit(t *testing.T) {
	h := newPipeHarness(t, SessionOptions{OutQueueSize: 4, PacketsPerSecond: 1})

	for i := 0; i < 3; i++ {
		if err := WriteFrame(h.client, []byte{byte(i + 1)}); err != nil {
			break
		}
	}
	h.waitClosed(t)
}

func TestStoreDisconnect(t *testing.T) {
	h := newPipeHarness(t, SessionOptions{OutQueueSize: 4})

	h.store.Disconnect(h.sess.ID)
	h.waitClosed(t)

	// Sends after close are dropped silently.
	h.store.Send(h.sess.ID, []byte{1})
	h.sess.Send([]byte{1})
}

func TestSendOverflowDisconnects(t *testing.T) {
	server, client := net.Pipe()
	defer client.Close()
	sess := NewSession(newTCPConn(server, 0), 5, SessionOptions{OutQueueSize: 1}, Hooks{}, zap.NewNop())

	// Writer not started, so the second send overflows the queue.
	sess.Send([]byte{1})
	sess.Send([]byte{2})
	assert.True(t, sess.IsClosed())
}

func TestWSServerRoundTrip(t *testing.T) {
	store := NewSessionStore(zap.NewNop())
	packets := make(chan []byte, 4)
	closed := make(chan uint64, 1)
	hooks := Hooks{
		OnOpen: func(s *Session) {
			w := packet.NewWriterWithOpcode(packet.S_OPCODE_CREATE_SELF)
			w.WriteD(int32(s.ID))
			w.WriteF(3)
			w.WriteF(4)
			s.Send(w.Bytes())
		},
		OnPacket: func(s *Session, data []byte) { packets <- data },
		OnClose:  func(s *Session) { closed <- s.ID },
	}
	opts := SessionOptions{OutQueueSize: 4, ReadTimeout: 5 * time.Second, WriteTimeout: time.Second}

	srv, err := NewWSServer("127.0.0.1:0", "/ws", opts, store, hooks, zap.NewNop())
	require.NoError(t, err)
	go srv.Serve()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}()

	client, _, err := websocket.DefaultDialer.Dial("ws://"+srv.Addr().String()+"/ws", nil)
	require.NoError(t, err)
	defer client.Close()
	client.SetReadDeadline(time.Now().Add(2 * time.Second))

	kind, data, err := client.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, websocket.BinaryMessage, kind)
	r := packet.NewReader(data)
	assert.Equal(t, packet.S_OPCODE_CREATE_SELF, r.Opcode())
	assert.Equal(t, int32(1), r.ReadD())
	assert.Equal(t, float32(3), r.ReadF())
	assert.Equal(t, float32(4), r.ReadF())

	// Text messages are skipped; one binary message is one packet.
	require.NoError(t, client.WriteMessage(websocket.TextMessage, []byte("hello")))
	require.NoError(t, client.WriteMessage(websocket.BinaryMessage, []byte{packet.C_OPCODE_HEARTBEAT}))
	select {
	case got := <-packets:
		assert.Equal(t, []byte{packet.C_OPCODE_HEARTBEAT}, got)
	case <-time.After(2 * time.Second):
		t.Fatal("heartbeat not delivered")
	}
	assert.Equal(t, 1, store.Count())

	client.Close()
	select {
	case id := <-closed:
		assert.Equal(t, uint64(1), id)
	case <-time.After(2 * time.Second):
		t.Fatal("ws session was not released")
	}
	assert.Eventually(t, func() bool { return store.Count() == 0 }, time.Second, 5*time.Millisecond)
}
