package packet

// Connect represents an MQTT CONNECT packet.
// MQTT 3.1.1 Section 3.1
type Connect struct {
	// Keep alive (seconds)
	KeepAlive uint16

	// Payload fields
	ClientID     string
	UsernameFlag bool
	Username     string
	PasswordFlag bool
	Password     string
}

// connectFlagBits defines the bit positions in the connect flags byte.
const (
	connectFlagCleanSession = 1 << 1
	connectFlagWill         = 1 << 2
	connectFlagWillRetain   = 1 << 5
	connectFlagPassword     = 1 << 6
	connectFlagUsername     = 1 << 7
)

// connectHeaderSize is the fixed size of the CONNECT variable header:
// protocol name (2 + 4) + level (1) + flags (1) + keep alive (2).
const connectHeaderSize = 10

// BuildConnect returns a CONNECT for clientID. A nil username or password
// leaves the corresponding flag clear.
func BuildConnect(clientID string, username, password *string, keepAlive uint16) *Connect {
	c := &Connect{
		ClientID:  clientID,
		KeepAlive: keepAlive,
	}
	if username != nil {
		c.UsernameFlag = true
		c.Username = *username
	}
	if password != nil {
		c.PasswordFlag = true
		c.Password = *password
	}
	return c
}

// Type returns TypeConnect.
func (c *Connect) Type() Type {
	return TypeConnect
}

// Flags returns the connect flags byte. Only the username and password bits
// are ever set.
func (c *Connect) Flags() byte {
	var flags byte
	if c.UsernameFlag {
		flags |= connectFlagUsername
	}
	if c.PasswordFlag {
		flags |= connectFlagPassword
	}
	return flags
}

// Parts returns the 10-byte variable header and the payload: client ID,
// then username, then password, each length-prefixed.
func (c *Connect) Parts() (variableHeader, payload []byte, err error) {
	if c.ClientID == "" {
		return nil, nil, ErrMissingClientID
	}

	variableHeader = make([]byte, 0, connectHeaderSize)
	variableHeader, _ = AppendString(variableHeader, ProtocolName)
	variableHeader = append(variableHeader, byte(Version311), c.Flags())
	variableHeader = AppendUint16(variableHeader, c.KeepAlive)

	size := 2 + len(c.ClientID)
	if c.UsernameFlag {
		size += 2 + len(c.Username)
	}
	if c.PasswordFlag {
		size += 2 + len(c.Password)
	}

	payload = make([]byte, 0, size)
	if payload, err = AppendString(payload, c.ClientID); err != nil {
		return nil, nil, err
	}
	if c.UsernameFlag {
		if payload, err = AppendString(payload, c.Username); err != nil {
			return nil, nil, err
		}
	}
	if c.PasswordFlag {
		if payload, err = AppendString(payload, c.Password); err != nil {
			return nil, nil, err
		}
	}

	return variableHeader, payload, nil
}

// DecodeConnect decodes a CONNECT packet from buf.
// buf should contain the packet data starting after the fixed header.
func DecodeConnect(buf []byte) (*Connect, error) {
	if len(buf) < connectHeaderSize {
		return nil, ErrIncompletePacket
	}

	c := &Connect{}

	name, pos, err := DecodeString(buf, 0)
	if err != nil {
		return nil, err
	}
	if name != ProtocolName {
		return nil, ErrInvalidProtocolName
	}

	if Version(buf[pos]) != Version311 {
		return nil, ErrInvalidProtocolVersion
	}
	pos++

	flags := buf[pos]
	pos++

	// Reserved bit must be 0, and this client never sets session, will or retain bits.
	if flags&(0x01|connectFlagCleanSession|connectFlagWill|0x18|connectFlagWillRetain) != 0 {
		return nil, ErrMalformedPacket
	}
	c.UsernameFlag = flags&connectFlagUsername != 0
	c.PasswordFlag = flags&connectFlagPassword != 0

	if c.KeepAlive, err = DecodeUint16(buf[pos:]); err != nil {
		return nil, err
	}
	pos += 2

	var n int
	if c.ClientID, n, err = DecodeString(buf, pos); err != nil {
		return nil, err
	}
	pos += n

	if c.UsernameFlag {
		if c.Username, n, err = DecodeString(buf, pos); err != nil {
			return nil, err
		}
		pos += n
	}

	if c.PasswordFlag {
		if c.Password, n, err = DecodeString(buf, pos); err != nil {
			return nil, err
		}
		pos += n
	}

	if pos != len(buf) {
		return nil, ErrMalformedPacket
	}

	return c, nil
}
