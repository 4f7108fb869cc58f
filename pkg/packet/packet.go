package packet

// Packet is the interface implemented by all outbound MQTT control packets.
type Packet interface {
	// Type returns the packet type.
	Type() Type

	// Parts returns the variable header and payload of the packet.
	// Either may be nil.
	Parts() (variableHeader, payload []byte, err error)
}

// Encode assembles p into a complete packet.
func Encode(p Packet) ([]byte, error) {
	vh, payload, err := p.Parts()
	if err != nil {
		return nil, err
	}
	return Assemble(p.Type(), vh, payload)
}
