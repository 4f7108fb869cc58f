package packet

import "errors"

// Sentinel errors for packet parsing and encoding.
var (
	// ErrMalformedLength indicates a variable byte integer that runs past
	// four bytes or ends before its terminating byte.
	ErrMalformedLength = errors.New("malformed remaining length")

	// ErrStringTooLong indicates a string longer than a 2-byte length prefix allows.
	ErrStringTooLong = errors.New("string exceeds 65535 bytes")

	// ErrTruncatedBuffer indicates a declared length larger than the bytes available.
	ErrTruncatedBuffer = errors.New("truncated buffer")

	// ErrMissingClientID indicates a CONNECT without a client identifier.
	ErrMissingClientID = errors.New("missing client identifier")

	// ErrPacketTooLarge indicates the packet exceeds maximum allowed size.
	ErrPacketTooLarge = errors.New("packet too large")

	// ErrMalformedPacket indicates the packet structure is invalid.
	ErrMalformedPacket = errors.New("malformed packet")

	// ErrInvalidPacketType indicates an unknown or reserved packet type.
	ErrInvalidPacketType = errors.New("invalid packet type")

	// ErrInvalidProtocolName indicates an unrecognized protocol name.
	ErrInvalidProtocolName = errors.New("invalid protocol name")

	// ErrInvalidProtocolVersion indicates an unsupported protocol version.
	ErrInvalidProtocolVersion = errors.New("invalid protocol version")

	// ErrIncompletePacket indicates more data is needed to complete the packet.
	ErrIncompletePacket = errors.New("incomplete packet")
)
