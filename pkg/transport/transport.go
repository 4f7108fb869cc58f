// Package transport provides the byte-stream links the MQTT client runs over.
package transport

import (
	"context"
	"errors"
)

var (
	// ErrConnectFailed wraps any failure to open a link.
	ErrConnectFailed = errors.New("connect failed")

	// ErrWriteFailed wraps any failure to hand a packet to the link.
	ErrWriteFailed = errors.New("write failed")
)

// Dialer opens links to a broker.
type Dialer interface {
	// Dial opens a link to addr. Errors wrap ErrConnectFailed.
	Dial(ctx context.Context, addr string) (Conn, error)
}

// Conn is one open link.
//
// Send accepts exactly one complete packet per call and Receive returns
// exactly one complete packet per call; partial writes and reads are the
// link's business. Send and Receive may be called concurrently with each
// other but not with themselves.
type Conn interface {
	// Send writes one packet. Errors wrap ErrWriteFailed.
	Send(ctx context.Context, pkt []byte) error

	// Receive blocks until one packet arrived, the link failed or Close was
	// called.
	Receive(ctx context.Context) ([]byte, error)

	// Close releases the link and unblocks pending calls.
	Close() error
}
