package packet

// Disconnect represents an MQTT DISCONNECT packet.
// MQTT 3.1.1 Section 3.14
type Disconnect struct{}

// Type returns TypeDisconnect.
func (d *Disconnect) Type() Type {
	return TypeDisconnect
}

// Parts returns nothing: DISCONNECT is a fixed header only.
func (d *Disconnect) Parts() (variableHeader, payload []byte, err error) {
	return nil, nil, nil
}
