package packet

// Publish represents an MQTT PUBLISH packet at QoS 0.
// MQTT 3.1.1 Section 3.3
type Publish struct {
	// Variable header
	Topic string

	// Payload, carried without any framing
	Payload []byte
}

// Type returns TypePublish.
func (p *Publish) Type() Type {
	return TypePublish
}

// Parts returns the length-prefixed topic and the raw payload.
func (p *Publish) Parts() (variableHeader, payload []byte, err error) {
	variableHeader, err = EncodeString(p.Topic)
	if err != nil {
		return nil, nil, err
	}
	return variableHeader, p.Payload, nil
}

// DecodePublish decodes a QoS 0 PUBLISH packet from buf.
// buf should contain the packet data starting after the fixed header.
func DecodePublish(buf []byte) (*Publish, error) {
	topic, n, err := DecodeString(buf, 0)
	if err != nil {
		return nil, err
	}

	p := &Publish{Topic: topic}
	if n < len(buf) {
		p.Payload = make([]byte, len(buf)-n)
		copy(p.Payload, buf[n:])
	}
	return p, nil
}
