package client

import (
	"context"
)

// Info identifies the client a hook is called for.
type Info struct {
	ClientID string
	Addr     string
}

// Hook provides extension points for observing client behavior.
// Implementations pick the events they care about by implementing one or
// more of the interfaces below.
//
// Hook methods are called synchronously from the goroutine that produced
// the event, never while the client holds its lock.
type Hook interface {
	// ID returns a unique identifier for this hook.
	ID() string
}

// ConnectionHook handles link lifecycle events.
type ConnectionHook interface {
	Hook

	// OnConnected is called after the broker accepted the handshake.
	OnConnected(ctx context.Context, info Info)

	// OnDisconnect is called when the link goes away. err is nil for a
	// clean Disconnect.
	OnDisconnect(ctx context.Context, info Info, err error)
}

// EventHook receives every event produced by the response parser.
type EventHook interface {
	Hook

	OnEvent(ctx context.Context, info Info, ev Event)
}

// PublishHook is called after a PUBLISH was handed to the transport.
type PublishHook interface {
	Hook

	OnPublish(ctx context.Context, info Info, topic string, payload []byte)
}

// StopHook is implemented by hooks holding resources released on Client.Close.
type StopHook interface {
	Hook

	Stop() error
}
