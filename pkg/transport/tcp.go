package transport

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/bromq-dev/client/pkg/packet"
)

// TCPConfig holds configuration for TCP links.
type TCPConfig struct {
	// DialTimeout bounds the TCP handshake (0 = only the context).
	DialTimeout time.Duration

	// ReadBufferSize is the initial framing buffer size.
	ReadBufferSize int

	// MaxPacketSize limits inbound remaining length (0 = protocol max).
	MaxPacketSize uint32
}

// TCP dials plain TCP links. addr is host:port.
type TCP struct {
	config *TCPConfig
}

// NewTCP creates a new TCP dialer.
func NewTCP(config *TCPConfig) *TCP {
	if config == nil {
		config = &TCPConfig{}
	}
	return &TCP{config: config}
}

// Dial opens a TCP connection to addr.
func (t *TCP) Dial(ctx context.Context, addr string) (Conn, error) {
	d := net.Dialer{Timeout: t.config.DialTimeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrConnectFailed, addr, err)
	}
	return NewStreamConn(conn, t.config.ReadBufferSize, t.config.MaxPacketSize), nil
}

// StreamConn frames an MQTT byte stream into packets.
type StreamConn struct {
	conn   net.Conn
	reader *packet.Reader

	writeMu sync.Mutex
	readMu  sync.Mutex
}

// NewStreamConn wraps an established net.Conn.
func NewStreamConn(conn net.Conn, bufSize int, maxPacketSize uint32) *StreamConn {
	reader := packet.NewReader(conn, bufSize)
	reader.SetMaxPacketSize(maxPacketSize)
	return &StreamConn{
		conn:   conn,
		reader: reader,
	}
}

// Send writes pkt in full. The context deadline, if any, bounds the write.
func (c *StreamConn) Send(ctx context.Context, pkt []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	deadline, _ := ctx.Deadline()
	c.conn.SetWriteDeadline(deadline)

	// net.Conn.Write returns an error on any short write.
	if _, err := c.conn.Write(pkt); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	return nil
}

// Receive returns the next complete packet.
func (c *StreamConn) Receive(ctx context.Context) ([]byte, error) {
	c.readMu.Lock()
	defer c.readMu.Unlock()

	deadline, _ := ctx.Deadline()
	c.conn.SetReadDeadline(deadline)
	return c.reader.ReadFrame()
}

// Close closes the underlying connection.
func (c *StreamConn) Close() error {
	return c.conn.Close()
}

// RemoteAddr returns the broker address.
func (c *StreamConn) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}
