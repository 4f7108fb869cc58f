package packet

import (
	"io"
)

// Reader splits an MQTT byte stream into complete packets.
// Partial reads are buffered until the fixed header's remaining length is
// satisfied; several packets arriving in one read are returned one at a time.
type Reader struct {
	r             io.Reader
	buf           []byte
	pos           int
	end           int
	maxPacketSize uint32
}

// NewReader creates a new packet reader.
func NewReader(r io.Reader, bufSize int) *Reader {
	if bufSize < 1024 {
		bufSize = 1024
	}
	return &Reader{
		r:   r,
		buf: make([]byte, bufSize),
	}
}

// SetMaxPacketSize limits the remaining length accepted by ReadFrame.
// Zero means the protocol maximum.
func (r *Reader) SetMaxPacketSize(size uint32) {
	r.maxPacketSize = size
}

// fill reads more data into the buffer.
func (r *Reader) fill() error {
	// Shift remaining data to the beginning
	if r.pos > 0 {
		copy(r.buf, r.buf[r.pos:r.end])
		r.end -= r.pos
		r.pos = 0
	}

	// Grow buffer if needed
	if r.end == len(r.buf) {
		newBuf := make([]byte, len(r.buf)*2)
		copy(newBuf, r.buf)
		r.buf = newBuf
	}

	n, err := r.r.Read(r.buf[r.end:])
	if n > 0 {
		r.end += n
		return nil
	}
	if err == nil {
		return io.ErrNoProgress
	}
	if err == io.EOF && r.available() > 0 {
		return io.ErrUnexpectedEOF
	}
	return err
}

// available returns the number of unread bytes in the buffer.
func (r *Reader) available() int {
	return r.end - r.pos
}

// Buffered returns the number of bytes read from the stream but not yet
// returned as part of a packet.
func (r *Reader) Buffered() int {
	return r.available()
}

// ReadFrame reads the next complete packet, fixed header included.
// The returned slice is owned by the caller.
func (r *Reader) ReadFrame() ([]byte, error) {
	// Read until we have at least 2 bytes for the fixed header
	for r.available() < 2 {
		if err := r.fill(); err != nil {
			return nil, err
		}
	}

	// Parse fixed header
	_, _, remainingLength, headerLen, err := DecodeFixedHeader(r.buf[r.pos:r.end])
	for err == ErrMalformedLength && r.available() < 5 {
		// Need more data for remaining length
		if ferr := r.fill(); ferr != nil {
			return nil, ferr
		}
		_, _, remainingLength, headerLen, err = DecodeFixedHeader(r.buf[r.pos:r.end])
	}
	if err != nil {
		return nil, err
	}

	// Check packet size
	if r.maxPacketSize > 0 && remainingLength > r.maxPacketSize {
		return nil, ErrPacketTooLarge
	}

	totalLen := headerLen + int(remainingLength)

	// Read until we have the complete packet
	for r.available() < totalLen {
		if err := r.fill(); err != nil {
			return nil, err
		}
	}

	frame := make([]byte, totalLen)
	copy(frame, r.buf[r.pos:r.pos+totalLen])
	r.pos += totalLen
	return frame, nil
}
