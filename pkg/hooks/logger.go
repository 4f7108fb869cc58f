// Package hooks provides ready-made client hooks.
package hooks

import (
	"context"
	"log/slog"

	"github.com/bromq-dev/client/pkg/client"
)

// LoggerHook logs client events using slog.
type LoggerHook struct {
	logger *slog.Logger
	level  LogLevel
}

// LogLevel controls which events are logged.
type LogLevel int

const (
	// LogLevelConnection logs connect/disconnect events.
	LogLevelConnection LogLevel = 1 << iota
	// LogLevelEvent logs every parsed inbound packet.
	LogLevelEvent
	// LogLevelPublish logs sent messages.
	LogLevelPublish
	// LogLevelAll logs all events.
	LogLevelAll = LogLevelConnection | LogLevelEvent | LogLevelPublish
)

// LoggerConfig configures the logger hook.
type LoggerConfig struct {
	// Logger is the slog.Logger to use (default: slog.Default()).
	Logger *slog.Logger

	// Level controls which events are logged (default: LogLevelAll).
	Level LogLevel
}

// NewLoggerHook creates a new logging hook.
func NewLoggerHook(cfg LoggerConfig) *LoggerHook {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Level == 0 {
		cfg.Level = LogLevelAll
	}
	return &LoggerHook{
		logger: cfg.Logger,
		level:  cfg.Level,
	}
}

func (h *LoggerHook) ID() string { return "logger" }

// ConnectionHook implementation

func (h *LoggerHook) OnConnected(ctx context.Context, info client.Info) {
	if h.level&LogLevelConnection == 0 {
		return
	}
	h.logger.Info("connected",
		"client_id", info.ClientID,
		"addr", info.Addr,
	)
}

func (h *LoggerHook) OnDisconnect(ctx context.Context, info client.Info, err error) {
	if h.level&LogLevelConnection == 0 {
		return
	}
	if err != nil {
		h.logger.Info("disconnected",
			"client_id", info.ClientID,
			"addr", info.Addr,
			"error", err.Error(),
		)
	} else {
		h.logger.Info("disconnected",
			"client_id", info.ClientID,
			"addr", info.Addr,
		)
	}
}

// EventHook implementation

func (h *LoggerHook) OnEvent(ctx context.Context, info client.Info, ev client.Event) {
	if h.level&LogLevelEvent == 0 {
		return
	}
	switch ev.Kind {
	case client.EventHandshakeRejected:
		h.logger.Warn("handshake rejected",
			"client_id", info.ClientID,
			"code", byte(ev.Code),
			"reason", ev.Code.String(),
		)
	case client.EventHandshakeAccepted:
		h.logger.Debug("handshake accepted",
			"client_id", info.ClientID,
			"session_present", ev.SessionPresent,
		)
	default:
		h.logger.Debug("packet handled",
			"client_id", info.ClientID,
			"event", ev.Kind.String(),
		)
	}
}

// PublishHook implementation

func (h *LoggerHook) OnPublish(ctx context.Context, info client.Info, topic string, payload []byte) {
	if h.level&LogLevelPublish == 0 {
		return
	}
	h.logger.Debug("message sent",
		"client_id", info.ClientID,
		"topic", topic,
		"payload_size", len(payload),
	)
}
