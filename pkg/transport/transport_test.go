package transport

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	connack  = []byte{0x20, 0x02, 0x00, 0x00}
	pingresp = []byte{0xD0, 0x00}
	pingreq  = []byte{0xC0, 0x00}
)

func testContext(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestTCPRoundTrip(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	got := make(chan []byte, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		buf := make([]byte, 2)
		if _, err := conn.Read(buf); err != nil {
			return
		}
		got <- buf

		// Two packets in one write, the second split across writes.
		conn.Write(append(append([]byte{}, connack...), pingresp[0]))
		time.Sleep(10 * time.Millisecond)
		conn.Write(pingresp[1:])
	}()

	ctx := testContext(t)
	conn, err := NewTCP(&TCPConfig{DialTimeout: time.Second}).Dial(ctx, ln.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.Send(ctx, pingreq))
	assert.Equal(t, pingreq, <-got)

	pkt, err := conn.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, connack, pkt)

	pkt, err = conn.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, pingresp, pkt)
}

func TestTCPConnectFailed(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	ln.Close()

	_, err = NewTCP(nil).Dial(testContext(t), addr)
	assert.ErrorIs(t, err, ErrConnectFailed)
}

func TestTCPWriteFailed(t *testing.T) {
	client, server := net.Pipe()
	server.Close()

	conn := NewStreamConn(client, 0, 0)
	err := conn.Send(testContext(t), pingreq)
	assert.ErrorIs(t, err, ErrWriteFailed)
}

func TestStreamConnCanceledContext(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewStreamConn(client, 0, 0).Send(ctx, pingreq)
	assert.ErrorIs(t, err, ErrWriteFailed)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStreamConnReceiveUnblocksOnClose(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()
	conn := NewStreamConn(client, 0, 0)

	errc := make(chan error, 1)
	go func() {
		_, err := conn.Receive(context.Background())
		errc <- err
	}()

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, conn.Close())

	select {
	case err := <-errc:
		assert.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Receive did not return after Close")
	}
}

func newWebSocketServer(t *testing.T, subprotocols []string, handle func(*websocket.Conn)) string {
	upgrader := websocket.Upgrader{
		Subprotocols: subprotocols,
		CheckOrigin:  func(r *http.Request) bool { return true },
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer ws.Close()
		handle(ws)
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/mqtt"
}

func TestWebSocketRoundTrip(t *testing.T) {
	got := make(chan []byte, 1)
	url := newWebSocketServer(t, []string{"mqtt"}, func(ws *websocket.Conn) {
		_, msg, err := ws.ReadMessage()
		if err != nil {
			return
		}
		got <- msg

		// A text frame is skipped; a packet split over two binary messages is joined.
		ws.WriteMessage(websocket.TextMessage, []byte("noise"))
		ws.WriteMessage(websocket.BinaryMessage, connack[:1])
		ws.WriteMessage(websocket.BinaryMessage, append(append([]byte{}, connack[1:]...), pingresp...))

		// Wait for the client to hang up.
		ws.ReadMessage()
	})

	ctx := testContext(t)
	conn, err := NewWebSocket(nil).Dial(ctx, url)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.Send(ctx, pingreq))
	assert.Equal(t, pingreq, <-got)

	pkt, err := conn.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, connack, pkt)

	pkt, err = conn.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, pingresp, pkt)
}

func TestWebSocketSubprotocolRequired(t *testing.T) {
	url := newWebSocketServer(t, nil, func(ws *websocket.Conn) {
		ws.ReadMessage()
	})

	_, err := NewWebSocket(nil).Dial(testContext(t), url)
	assert.ErrorIs(t, err, ErrConnectFailed)
}

func TestWebSocketConnectFailed(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := NewWebSocket(&WebSocketConfig{HandshakeTimeout: time.Second}).
		Dial(testContext(t), "ws"+strings.TrimPrefix(srv.URL, "http"))
	assert.ErrorIs(t, err, ErrConnectFailed)
}
