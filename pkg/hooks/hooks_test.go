package hooks

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/bromq-dev/client/pkg/client"
	"github.com/bromq-dev/client/pkg/packet"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

var info = client.Info{ClientID: "sensor-1", Addr: "localhost:1883"}

func newTestLogger(level LogLevel) (*LoggerHook, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return NewLoggerHook(LoggerConfig{Logger: logger, Level: level}), &buf
}

func TestLoggerHookConnection(t *testing.T) {
	h, buf := newTestLogger(LogLevelAll)
	ctx := context.Background()

	h.OnConnected(ctx, info)
	assert.Contains(t, buf.String(), "msg=connected")
	assert.Contains(t, buf.String(), "client_id=sensor-1")
	assert.Contains(t, buf.String(), "addr=localhost:1883")

	buf.Reset()
	h.OnDisconnect(ctx, info, errors.New("broken pipe"))
	assert.Contains(t, buf.String(), "msg=disconnected")
	assert.Contains(t, buf.String(), `error="broken pipe"`)

	buf.Reset()
	h.OnDisconnect(ctx, info, nil)
	assert.NotContains(t, buf.String(), "error=")
}

func TestLoggerHookEvents(t *testing.T) {
	h, buf := newTestLogger(LogLevelAll)
	ctx := context.Background()

	h.OnEvent(ctx, info, client.Event{Kind: client.EventHandshakeRejected, Code: packet.ConnackNotAuthorized})
	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "code=5")

	buf.Reset()
	h.OnEvent(ctx, info, client.Event{Kind: client.EventPongReceived})
	assert.Contains(t, buf.String(), `event="pong received"`)

	buf.Reset()
	h.OnPublish(ctx, info, "temp/random", []byte("15.0"))
	assert.Contains(t, buf.String(), "topic=temp/random")
	assert.Contains(t, buf.String(), "payload_size=4")
}

func TestLoggerHookLevelMask(t *testing.T) {
	h, buf := newTestLogger(LogLevelPublish)
	ctx := context.Background()

	h.OnConnected(ctx, info)
	h.OnDisconnect(ctx, info, nil)
	h.OnEvent(ctx, info, client.Event{Kind: client.EventPongReceived})
	assert.Empty(t, buf.String())

	h.OnPublish(ctx, info, "a", nil)
	assert.NotEmpty(t, buf.String())
}

func TestLoggerHookRegisters(t *testing.T) {
	hooks := client.NewHooks()
	require.NoError(t, hooks.Register(NewLoggerHook(LoggerConfig{})))
	assert.Error(t, hooks.Register(NewLoggerHook(LoggerConfig{})))
}

func newTestRedisHook(t *testing.T) (*RedisHook, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	h, err := NewRedisHook(context.Background(), &RedisConfig{
		Addr:      mr.Addr(),
		MaxEvents: 3,
	})
	require.NoError(t, err)
	t.Cleanup(func() { h.Stop() })
	return h, mr
}

func TestRedisHookConnectionState(t *testing.T) {
	h, mr := newTestRedisHook(t)
	ctx := context.Background()

	connected, err := h.Connected(ctx, info.ClientID)
	require.NoError(t, err)
	assert.False(t, connected)

	h.OnConnected(ctx, info)
	assert.True(t, mr.Exists("mqtt:state:sensor-1"))
	connected, err = h.Connected(ctx, info.ClientID)
	require.NoError(t, err)
	assert.True(t, connected)

	h.OnDisconnect(ctx, info, errors.New("EOF"))
	connected, err = h.Connected(ctx, info.ClientID)
	require.NoError(t, err)
	assert.False(t, connected)

	events, err := h.Events(ctx, info.ClientID, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"disconnected", "connected"}, events)
}

func TestRedisHookEventsTrimmed(t *testing.T) {
	h, _ := newTestRedisHook(t)
	ctx := context.Background()

	h.OnConnected(ctx, info)
	h.OnEvent(ctx, info, client.Event{Kind: client.EventHandshakeAccepted})
	h.OnEvent(ctx, info, client.Event{Kind: client.EventIgnored})
	h.OnEvent(ctx, info, client.Event{Kind: client.EventPongReceived})
	h.OnEvent(ctx, info, client.Event{Kind: client.EventPongReceived})

	events, err := h.Events(ctx, info.ClientID, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"pong received", "pong received", "handshake accepted"}, events)
}

func TestRedisHookPublishChannel(t *testing.T) {
	h, mr := newTestRedisHook(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rc.Close()
	sub := rc.Subscribe(ctx, h.PublishChannel())
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	h.OnPublish(ctx, info, "temp/random", []byte("15.0"))

	msg, err := sub.ReceiveMessage(ctx)
	require.NoError(t, err)
	assert.Equal(t, "mqtt:publish", msg.Channel)

	var rec PublishRecord
	require.NoError(t, msgpack.Unmarshal([]byte(msg.Payload), &rec))
	assert.Equal(t, "sensor-1", rec.ClientID)
	assert.Equal(t, "temp/random", rec.Topic)
	assert.Equal(t, []byte("15.0"), rec.Payload)
}

func TestRedisHookUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedisHook(context.Background(), &RedisConfig{Addr: addr})
	assert.Error(t, err)
}

func TestRedisHookErrorsDoNotPanic(t *testing.T) {
	h, mr := newTestRedisHook(t)
	mr.Close()

	ctx := context.Background()
	h.OnConnected(ctx, info)
	h.OnEvent(ctx, info, client.Event{Kind: client.EventPongReceived})
	h.OnPublish(ctx, info, "t", nil)
}
