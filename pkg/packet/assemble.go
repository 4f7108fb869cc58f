package packet

// Assemble builds a complete control packet from its type, variable header
// and payload. Absent parts are passed as nil.
//
// The result is exactly 1 + VarIntSize(rl) + rl bytes long, where rl is
// len(variableHeader) + len(payload). Flag bits of the first byte are zero.
func Assemble(t Type, variableHeader, payload []byte) ([]byte, error) {
	if !t.Valid() {
		return nil, ErrInvalidPacketType
	}

	remaining := uint64(len(variableHeader)) + uint64(len(payload))
	if remaining > MaxRemainingLength {
		return nil, ErrPacketTooLarge
	}
	remainingLength := uint32(remaining)

	buf := make([]byte, 0, FixedHeaderSize(remainingLength)+int(remainingLength))
	buf = append(buf, byte(t)<<4)

	buf, err := AppendVarInt(buf, remainingLength)
	if err != nil {
		return nil, err
	}

	buf = append(buf, variableHeader...)
	buf = append(buf, payload...)
	return buf, nil
}
