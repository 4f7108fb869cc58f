package hooks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bromq-dev/client/pkg/client"
	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"
)

// RedisHook records client activity in Redis/Valkey.
//
// Key layout (with the default prefix):
//
//	mqtt:events:{client_id}  → LIST   - recent events, newest first (msgpack)
//	mqtt:state:{client_id}   → STRING - current link state (msgpack)
//	mqtt:publish             → CHANNEL - every sent message (msgpack)
//
// Redis errors are logged and never fail the client operation.
type RedisHook struct {
	client    redis.UniversalClient
	keyPrefix string
	maxEvents int64
	timeout   time.Duration
	log       *slog.Logger
}

// RedisConfig configures the Redis hook.
type RedisConfig struct {
	// Addr is the Redis server address (default: "localhost:6379").
	Addr string

	// Password for Redis authentication (optional).
	Password string

	// DB is the Redis database number (default: 0).
	DB int

	// KeyPrefix is prepended to all Redis keys (default: "mqtt:").
	KeyPrefix string

	// MaxEvents caps each client's event list (default: 100).
	MaxEvents int64

	// Timeout bounds each Redis round trip (default: 2s).
	Timeout time.Duration

	// Client allows providing a pre-configured Redis client.
	// If set, Addr/Password/DB are ignored.
	Client redis.UniversalClient

	// Logger for Redis errors. If nil, uses slog.Default().
	Logger *slog.Logger
}

// eventRecord is one entry of a client's event list.
type eventRecord struct {
	Kind           string `msgpack:"k"`
	Code           byte   `msgpack:"c,omitempty"`
	SessionPresent bool   `msgpack:"s,omitempty"`
	Error          string `msgpack:"e,omitempty"`
	At             int64  `msgpack:"t"`
}

// stateRecord describes the current link of a client.
type stateRecord struct {
	Addr      string `msgpack:"a"`
	Connected bool   `msgpack:"c"`
	Since     int64  `msgpack:"t"`
}

// PublishRecord is the message sent on the publish channel.
type PublishRecord struct {
	ClientID string `msgpack:"i"`
	Topic    string `msgpack:"t"`
	Payload  []byte `msgpack:"p"`
	At       int64  `msgpack:"a"`
}

// NewRedisHook connects to Redis and returns the hook.
func NewRedisHook(ctx context.Context, cfg *RedisConfig) (*RedisHook, error) {
	if cfg == nil {
		cfg = &RedisConfig{}
	}
	if cfg.Addr == "" {
		cfg.Addr = "localhost:6379"
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "mqtt:"
	}
	if cfg.MaxEvents <= 0 {
		cfg.MaxEvents = 100
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 2 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	rc := cfg.Client
	if rc == nil {
		rc = redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		})
	}

	// Test connection
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rc.Ping(pingCtx).Err(); err != nil {
		if cfg.Client == nil {
			rc.Close()
		}
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	cfg.Logger.Info("redis hook initialized",
		"addr", cfg.Addr,
		"prefix", cfg.KeyPrefix,
	)

	return &RedisHook{
		client:    rc,
		keyPrefix: cfg.KeyPrefix,
		maxEvents: cfg.MaxEvents,
		timeout:   cfg.Timeout,
		log:       cfg.Logger,
	}, nil
}

func (h *RedisHook) ID() string { return "redis" }

// Stop closes the Redis connection.
func (h *RedisHook) Stop() error {
	return h.client.Close()
}

// Client returns the underlying Redis client for advanced usage.
func (h *RedisHook) Client() redis.UniversalClient {
	return h.client
}

// EventsKey returns the key of a client's event list.
func (h *RedisHook) EventsKey(clientID string) string {
	return h.keyPrefix + "events:" + clientID
}

// StateKey returns the key of a client's link state.
func (h *RedisHook) StateKey(clientID string) string {
	return h.keyPrefix + "state:" + clientID
}

// PublishChannel returns the channel sent messages are mirrored to.
func (h *RedisHook) PublishChannel() string {
	return h.keyPrefix + "publish"
}

// ConnectionHook implementation

func (h *RedisHook) OnConnected(ctx context.Context, info client.Info) {
	now := time.Now().UnixMilli()
	h.setState(ctx, info.ClientID, stateRecord{Addr: info.Addr, Connected: true, Since: now})
	h.pushEvent(ctx, info.ClientID, eventRecord{Kind: "connected", At: now})
}

func (h *RedisHook) OnDisconnect(ctx context.Context, info client.Info, err error) {
	now := time.Now().UnixMilli()
	rec := eventRecord{Kind: "disconnected", At: now}
	if err != nil {
		rec.Error = err.Error()
	}
	h.setState(ctx, info.ClientID, stateRecord{Addr: info.Addr, Since: now})
	h.pushEvent(ctx, info.ClientID, rec)
}

// EventHook implementation

func (h *RedisHook) OnEvent(ctx context.Context, info client.Info, ev client.Event) {
	if ev.Kind == client.EventIgnored {
		return
	}
	h.pushEvent(ctx, info.ClientID, eventRecord{
		Kind:           ev.Kind.String(),
		Code:           byte(ev.Code),
		SessionPresent: ev.SessionPresent,
		At:             time.Now().UnixMilli(),
	})
}

// PublishHook implementation

func (h *RedisHook) OnPublish(ctx context.Context, info client.Info, topic string, payload []byte) {
	data, err := msgpack.Marshal(PublishRecord{
		ClientID: info.ClientID,
		Topic:    topic,
		Payload:  payload,
		At:       time.Now().UnixMilli(),
	})
	if err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()
	if err := h.client.Publish(ctx, h.PublishChannel(), data).Err(); err != nil {
		h.log.Warn("redis publish failed", "client_id", info.ClientID, "error", err)
	}
}

// Events returns up to n of a client's most recent event kinds, newest first.
func (h *RedisHook) Events(ctx context.Context, clientID string, n int64) ([]string, error) {
	raw, err := h.client.LRange(ctx, h.EventsKey(clientID), 0, n-1).Result()
	if err != nil {
		return nil, err
	}

	kinds := make([]string, 0, len(raw))
	for _, data := range raw {
		var rec eventRecord
		if err := msgpack.Unmarshal([]byte(data), &rec); err != nil {
			continue
		}
		kinds = append(kinds, rec.Kind)
	}
	return kinds, nil
}

// Connected reports the last link state recorded for a client.
func (h *RedisHook) Connected(ctx context.Context, clientID string) (bool, error) {
	data, err := h.client.Get(ctx, h.StateKey(clientID)).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	var rec stateRecord
	if err := msgpack.Unmarshal(data, &rec); err != nil {
		return false, err
	}
	return rec.Connected, nil
}

func (h *RedisHook) pushEvent(ctx context.Context, clientID string, rec eventRecord) {
	data, err := msgpack.Marshal(rec)
	if err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	key := h.EventsKey(clientID)
	pipe := h.client.Pipeline()
	pipe.LPush(ctx, key, data)
	pipe.LTrim(ctx, key, 0, h.maxEvents-1)
	if _, err := pipe.Exec(ctx); err != nil {
		h.log.Warn("redis event write failed", "client_id", clientID, "error", err)
	}
}

func (h *RedisHook) setState(ctx context.Context, clientID string, rec stateRecord) {
	data, err := msgpack.Marshal(rec)
	if err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()
	if err := h.client.Set(ctx, h.StateKey(clientID), data, 0).Err(); err != nil {
		h.log.Warn("redis state write failed", "client_id", clientID, "error", err)
	}
}
