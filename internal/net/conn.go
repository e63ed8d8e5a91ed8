package net

import (
	"bufio"
	"net"
	"time"
)

// Conn is one client transport carrying whole packets.
type Conn interface {
	ReadPacket() ([]byte, error)
	WritePacket(data []byte, deadline time.Time) error
	Close() error
	RemoteAddr() string
}

// tcpConn frames packets over a stream socket.
type tcpConn struct {
	conn        net.Conn
	r           *bufio.Reader
	readTimeout time.Duration
}

func newTCPConn(conn net.Conn, readTimeout time.Duration) *tcpConn {
	return &tcpConn{conn: conn, r: bufio.NewReader(conn), readTimeout: readTimeout}
}

func (c *tcpConn) ReadPacket() ([]byte, error) {
	if c.readTimeout > 0 {
		c.conn.SetReadDeadline(time.Now().Add(c.readTimeout))
	}
	return ReadFrame(c.r)
}

func (c *tcpConn) WritePacket(data []byte, deadline time.Time) error {
	c.conn.SetWriteDeadline(deadline)
	return WriteFrame(c.conn, data)
}

func (c *tcpConn) Close() error { return c.conn.Close() }
func (c *tcpConn) RemoteAddr() string { return c.conn.RemoteAddr().String() }
