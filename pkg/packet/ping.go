package packet

// Pingreq represents an MQTT PINGREQ packet.
// MQTT 3.1.1 Section 3.12
type Pingreq struct{}

// Type returns TypePingreq.
func (p *Pingreq) Type() Type {
	return TypePingreq
}

// Parts returns nothing: PINGREQ is a fixed header only.
func (p *Pingreq) Parts() (variableHeader, payload []byte, err error) {
	return nil, nil, nil
}

// Pingresp represents an MQTT PINGRESP packet.
// MQTT 3.1.1 Section 3.13
type Pingresp struct{}

// Type returns TypePingresp.
func (p *Pingresp) Type() Type {
	return TypePingresp
}

// Parts returns nothing: PINGRESP is a fixed header only.
func (p *Pingresp) Parts() (variableHeader, payload []byte, err error) {
	return nil, nil, nil
}

// DecodePingresp decodes a PINGRESP packet.
// PINGRESP has no variable header or payload, so buf should be empty.
func DecodePingresp(buf []byte) (*Pingresp, error) {
	if len(buf) != 0 {
		return nil, ErrMalformedPacket
	}
	return &Pingresp{}, nil
}
