package packet

// Connack represents an MQTT CONNACK packet.
// MQTT 3.1.1 Section 3.2
type Connack struct {
	// Session present flag
	SessionPresent bool

	// Return code
	ReturnCode ConnackReturnCode
}

// Type returns TypeConnack.
func (c *Connack) Type() Type {
	return TypeConnack
}

// Parts returns the acknowledge flags and return code. CONNACK has no payload.
func (c *Connack) Parts() (variableHeader, payload []byte, err error) {
	var ackFlags byte
	if c.SessionPresent {
		ackFlags = 0x01
	}
	return []byte{ackFlags, byte(c.ReturnCode)}, nil, nil
}

// DecodeConnack decodes a CONNACK packet from buf.
// buf should contain the packet data starting after the fixed header.
func DecodeConnack(buf []byte) (*Connack, error) {
	if len(buf) < 2 {
		return nil, ErrIncompletePacket
	}

	// Bits 7-1 of the acknowledge flags must be 0
	if buf[0]&0xFE != 0 {
		return nil, ErrMalformedPacket
	}

	return &Connack{
		SessionPresent: buf[0]&0x01 != 0,
		ReturnCode:     ConnackReturnCode(buf[1]),
	}, nil
}
