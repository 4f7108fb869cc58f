package client

import (
	"log/slog"
	"time"
)

// DefaultKeepAlive is the keep-alive interval, in seconds, sent in CONNECT.
const DefaultKeepAlive = 300

// Config holds client configuration.
type Config struct {
	// KeepAlive is written into every CONNECT variable header (seconds).
	// No timer is run for it.
	KeepAlive uint16

	// ConnectTimeout bounds dial plus handshake when the caller's context
	// has no deadline (0 = no bound).
	ConnectTimeout time.Duration

	// OutboundQueue is the capacity of the queue between packet assembly
	// and the transport writer.
	OutboundQueue int

	// Logger is the slog.Logger to use (default: slog.Default()).
	Logger *slog.Logger
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		KeepAlive:      DefaultKeepAlive,
		ConnectTimeout: 10 * time.Second,
		OutboundQueue:  64,
		Logger:         slog.Default(),
	}
}
