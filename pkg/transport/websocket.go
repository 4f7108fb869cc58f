package transport

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// WebSocketConfig holds configuration for WebSocket links.
type WebSocketConfig struct {
	// TLSConfig is used for wss:// URLs.
	TLSConfig *tls.Config

	// Header is sent with the upgrade request.
	Header http.Header

	// HandshakeTimeout bounds the HTTP upgrade (default: 10s).
	HandshakeTimeout time.Duration

	// ReadBufferSize is the initial framing buffer size.
	ReadBufferSize int

	// MaxPacketSize limits inbound remaining length (0 = protocol max).
	MaxPacketSize uint32
}

// WebSocket dials MQTT-over-WebSocket links. addr is a ws:// or wss:// URL.
type WebSocket struct {
	config *WebSocketConfig
	dialer websocket.Dialer
}

// NewWebSocket creates a new WebSocket dialer.
func NewWebSocket(config *WebSocketConfig) *WebSocket {
	if config == nil {
		config = &WebSocketConfig{}
	}
	if config.HandshakeTimeout == 0 {
		config.HandshakeTimeout = 10 * time.Second
	}
	return &WebSocket{
		config: config,
		dialer: websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: config.HandshakeTimeout,
			TLSClientConfig:  config.TLSConfig,
			Subprotocols:     []string{"mqtt"},
		},
	}
}

// Dial performs the WebSocket upgrade against addr.
func (w *WebSocket) Dial(ctx context.Context, addr string) (Conn, error) {
	ws, resp, err := w.dialer.DialContext(ctx, addr, w.config.Header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("%w: %s: %s: %w", ErrConnectFailed, addr, resp.Status, err)
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrConnectFailed, addr, err)
	}
	if ws.Subprotocol() != "mqtt" {
		ws.Close()
		return nil, fmt.Errorf("%w: %s: server did not accept the mqtt subprotocol", ErrConnectFailed, addr)
	}
	return NewStreamConn(&wsConn{Conn: ws}, w.config.ReadBufferSize, w.config.MaxPacketSize), nil
}

// wsConn wraps websocket.Conn to implement net.Conn.
// Each Write is sent as one binary message; Read flattens inbound binary
// messages into a byte stream, since a packet may span messages.
type wsConn struct {
	*websocket.Conn
	reader io.Reader
	mu     sync.Mutex
}

func (c *wsConn) Read(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for {
		if c.reader == nil {
			messageType, r, err := c.Conn.NextReader()
			if err != nil {
				return 0, err
			}
			// MQTT over WebSocket uses binary messages
			if messageType != websocket.BinaryMessage {
				continue
			}
			c.reader = r
		}

		n, err := c.reader.Read(p)
		if err == io.EOF {
			c.reader = nil
			if n > 0 {
				return n, nil
			}
			continue
		}
		return n, err
	}
}

func (c *wsConn) Write(p []byte) (int, error) {
	err := c.Conn.WriteMessage(websocket.BinaryMessage, p)
	if err != nil {
		return 0, err
	}
	return len(p), nil
}

func (c *wsConn) SetDeadline(t time.Time) error {
	if err := c.Conn.SetReadDeadline(t); err != nil {
		return err
	}
	return c.Conn.SetWriteDeadline(t)
}
