package client

import (
	"errors"
	"fmt"

	"github.com/bromq-dev/client/pkg/packet"
)

var (
	// ErrSessionNotReady is returned when a packet other than CONNECT is
	// assembled before the handshake completed, or any packet before the
	// link is open.
	ErrSessionNotReady = errors.New("session not ready")

	// ErrHandshakeRejected is matched by every RejectedError.
	ErrHandshakeRejected = errors.New("handshake rejected")

	// ErrAlreadyConnected is returned by Connect while a link is open.
	ErrAlreadyConnected = errors.New("already connected")

	// ErrClientClosed is returned when the link went away while waiting,
	// or by Connect once Close was called.
	ErrClientClosed = errors.New("client closed")
)

// RejectedError carries the return code of a refused CONNACK.
type RejectedError struct {
	Code packet.ConnackReturnCode
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("handshake rejected: %s (code %d)", e.Code, byte(e.Code))
}

// Unwrap lets errors.Is match ErrHandshakeRejected.
func (e *RejectedError) Unwrap() error {
	return ErrHandshakeRejected
}
