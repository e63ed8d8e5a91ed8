package net

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jpsworld/server/internal/net/packet"
	"go.uber.org/zap"
)

// SessionOptions are the per-connection limits from [network].
type SessionOptions struct {
	OutQueueSize     int
	PacketsPerSecond int // 0 = unlimited
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
}

// Hooks connect sessions to the game. OnOpen runs before the session's
// goroutines start; OnPacket and OnClose run on the session's reader
// goroutine, OnClose exactly once.
type Hooks struct {
	OnOpen   func(*Session)
	OnPacket func(*Session, []byte)
	OnClose  func(*Session)
}

// Session represents a single client connection. Reads are dispatched
// inline on the reader goroutine; writes go through OutQueue to the
// writer goroutine so game code never blocks on a socket.
type Session struct {
	ID   uint64
	conn Conn

	state atomic.Int32 // packet.SessionState stored as int32

	OutQueue chan []byte // writer goroutine reads from here
	IP       string

	closeCh     chan struct{}
	closeOnce   sync.Once
	releaseOnce sync.Once
	closed      atomic.Bool

	// Per-second packet rate limiter (reader goroutine only, no lock needed)
	pktPerSec  int
	pktCount   int
	pktResetAt int64

	writeTimeout time.Duration
	hooks        Hooks
	log          *zap.Logger
}

func NewSession(conn Conn, id uint64, opts SessionOptions, hooks Hooks, log *zap.Logger) *Session {
	s := &Session{
		ID:           id,
		conn:         conn,
		OutQueue:     make(chan []byte, opts.OutQueueSize),
		IP:           conn.RemoteAddr(),
		closeCh:      make(chan struct{}),
		pktPerSec:    opts.PacketsPerSecond,
		writeTimeout: opts.WriteTimeout,
		hooks:        hooks,
		log:          log.With(zap.Uint64("session", id)),
	}
	s.state.Store(int32(packet.StateConnected))
	return s
}

func (s *Session) State() packet.SessionState {
	return packet.SessionState(s.state.Load())
}

func (s *Session) SetState(st packet.SessionState) {
	s.state.Store(int32(st))
}

// Start runs OnOpen and launches the reader and writer goroutines.
func (s *Session) Start() {
	if s.hooks.OnOpen != nil {
		s.hooks.OnOpen(s)
	}
	go s.readLoop()
	go s.writeLoop()
}

// Send queues a packet for the writer. Never blocks: a full queue means
// the client cannot keep up and the session is dropped.
func (s *Session) Send(data []byte) {
	if s.closed.Load() {
		return
	}
	select {
	case s.OutQueue <- data:
	default:
		s.log.Warn("輸出佇列已滿，斷開慢速連線")
		s.Close()
	}
}

// Close marks the session closed. The writer flushes what is already
// queued and then closes the connection, which ends the reader and
// runs OnClose.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		s.SetState(packet.StateDisconnecting)
		close(s.closeCh)
	})
}

func (s *Session) IsClosed() bool {
	return s.closed.Load()
}

func (s *Session) release() {
	s.Close()
	s.releaseOnce.Do(func() {
		if s.hooks.OnClose != nil {
			s.hooks.OnClose(s)
		}
	})
}

// readLoop reads packets and hands each to OnPacket.
func (s *Session) readLoop() {
	defer s.release()

	for {
		payload, err := s.conn.ReadPacket()
		if err != nil {
			if !s.closed.Load() {
				s.log.Debug("讀取錯誤", zap.Error(err))
			}
			return
		}

		if s.pktPerSec > 0 {
			now := time.Now().Unix()
			if now != s.pktResetAt {
				s.pktCount = 0
				s.pktResetAt = now
			}
			s.pktCount++
			if s.pktCount > s.pktPerSec {
				s.log.Warn("封包速率超限，斷開連線", zap.Int("pps", s.pktCount))
				return
			}
		}

		if s.closed.Load() {
			return
		}
		if s.hooks.OnPacket != nil {
			s.hooks.OnPacket(s, payload)
		}
	}
}

// writeLoop drains OutQueue to the connection and owns closing it.
func (s *Session) writeLoop() {
	defer func() {
		s.Close()
		s.conn.Close()
	}()

	for {
		select {
		case data := <-s.OutQueue:
			if !s.writeOnePacket(data) {
				return
			}
		case <-s.closeCh:
			s.flush()
			return
		}
	}
}

// flush writes whatever is still queued, so a notice sent just before a
// kick still reaches the client when the socket allows it.
func (s *Session) flush() {
	for {
		select {
		case data := <-s.OutQueue:
			if !s.writeOnePacket(data) {
				return
			}
		default:
			return
		}
	}
}

func (s *Session) writeOnePacket(data []byte) bool {
	if len(data) > 0 {
		s.log.Debug("TX",
			zap.String("op", fmt.Sprintf("0x%02X(%d)", data[0], data[0])),
			zap.Int("len", len(data)),
		)
	}
	timeout := s.writeTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if err := s.conn.WritePacket(data, time.Now().Add(timeout)); err != nil {
		if !s.closed.Load() {
			s.log.Debug("寫入錯誤", zap.Error(err))
		}
		return false
	}
	return true
}
