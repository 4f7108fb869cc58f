package packet

import (
	"encoding/binary"
)

// EncodeVarInt encodes a remaining length as a variable byte integer.
// The result is 1 to 4 bytes, seven value bits each, with the continuation
// bit set on every byte but the last.
// MQTT 3.1.1 Section 2.2.3
func EncodeVarInt(value uint32) ([]byte, error) {
	return AppendVarInt(make([]byte, 0, VarIntSize(value)), value)
}

// AppendVarInt appends the variable byte integer encoding of value to dst.
func AppendVarInt(dst []byte, value uint32) ([]byte, error) {
	if value > MaxRemainingLength {
		return dst, ErrPacketTooLarge
	}

	for {
		encodedByte := byte(value % 128)
		value /= 128
		if value > 0 {
			encodedByte |= 0x80
		}
		dst = append(dst, encodedByte)
		if value == 0 {
			return dst, nil
		}
	}
}

// DecodeVarInt decodes a variable byte integer from the start of buf.
// Returns the value and the number of bytes consumed.
// MQTT 3.1.1 Section 2.2.3
func DecodeVarInt(buf []byte) (value uint32, n int, err error) {
	var multiplier uint32 = 1

	for i := 0; i < len(buf); i++ {
		encodedByte := buf[i]
		value += uint32(encodedByte&0x7F) * multiplier

		if encodedByte&0x80 == 0 {
			return value, i + 1, nil
		}

		if i == 3 {
			return 0, 0, ErrMalformedLength // more than 4 bytes
		}
		multiplier *= 128
	}

	return 0, 0, ErrMalformedLength // no terminating byte
}

// VarIntSize returns the number of bytes needed to encode a value as a variable byte integer.
func VarIntSize(value uint32) int {
	switch {
	case value < 128:
		return 1
	case value < 16384:
		return 2
	case value < 2097152:
		return 3
	default:
		return 4
	}
}

// AppendUint16 appends a 16-bit unsigned integer in big-endian order.
func AppendUint16(dst []byte, value uint16) []byte {
	return binary.BigEndian.AppendUint16(dst, value)
}

// DecodeUint16 decodes a 16-bit unsigned integer from big-endian bytes.
func DecodeUint16(buf []byte) (uint16, error) {
	if len(buf) < 2 {
		return 0, ErrTruncatedBuffer
	}
	return binary.BigEndian.Uint16(buf), nil
}

// EncodeString encodes a string with a 2-byte big-endian length prefix.
// MQTT 3.1.1 Section 1.5.3
func EncodeString(s string) ([]byte, error) {
	return AppendString(make([]byte, 0, 2+len(s)), s)
}

// AppendString appends the length-prefixed encoding of s to dst.
func AppendString(dst []byte, s string) ([]byte, error) {
	if len(s) > MaxStringLength {
		return dst, ErrStringTooLong
	}
	dst = binary.BigEndian.AppendUint16(dst, uint16(len(s)))
	return append(dst, s...), nil
}

// DecodeString decodes a length-prefixed string starting at buf[offset].
// Returns a copied string and the bytes consumed, prefix included.
func DecodeString(buf []byte, offset int) (s string, n int, err error) {
	if offset < 0 || offset > len(buf) {
		return "", 0, ErrTruncatedBuffer
	}
	buf = buf[offset:]
	if len(buf) < 2 {
		return "", 0, ErrTruncatedBuffer
	}
	slen := int(binary.BigEndian.Uint16(buf))
	if len(buf) < 2+slen {
		return "", 0, ErrTruncatedBuffer
	}
	return string(buf[2 : 2+slen]), 2 + slen, nil
}

// FixedHeaderSize calculates the size of the fixed header for a given remaining length.
func FixedHeaderSize(remainingLength uint32) int {
	return 1 + VarIntSize(remainingLength)
}

// DecodeFixedHeader decodes the fixed header from buf.
// Returns packet type, flags, remaining length and bytes consumed.
func DecodeFixedHeader(buf []byte) (packetType Type, flags byte, remainingLength uint32, n int, err error) {
	if len(buf) < 2 {
		return 0, 0, 0, 0, ErrIncompletePacket
	}

	packetType = Type(buf[0] >> 4)
	flags = buf[0] & 0x0F

	remainingLength, varIntLen, err := DecodeVarInt(buf[1:])
	if err != nil {
		return 0, 0, 0, 0, err
	}

	return packetType, flags, remainingLength, 1 + varIntLen, nil
}
