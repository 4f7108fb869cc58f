package client

import "github.com/bromq-dev/client/pkg/packet"

// EventKind identifies what an inbound packet meant to the session.
type EventKind int

const (
	// EventIgnored is reported for short, malformed or unhandled packets.
	EventIgnored EventKind = iota
	// EventHandshakeAccepted is reported for a CONNACK with return code 0.
	EventHandshakeAccepted
	// EventHandshakeRejected is reported for a CONNACK with a non-zero return code.
	EventHandshakeRejected
	// EventPongReceived is reported for a PINGRESP.
	EventPongReceived
)

// String returns the string representation of the event kind.
func (k EventKind) String() string {
	switch k {
	case EventIgnored:
		return "ignored"
	case EventHandshakeAccepted:
		return "handshake accepted"
	case EventHandshakeRejected:
		return "handshake rejected"
	case EventPongReceived:
		return "pong received"
	default:
		return "unknown"
	}
}

// Event is the result of handling one inbound packet.
type Event struct {
	Kind EventKind

	// Set for CONNACK events only.
	Code           packet.ConnackReturnCode
	SessionPresent bool
}
