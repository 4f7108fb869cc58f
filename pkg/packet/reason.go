package packet

// ConnackReturnCode is the last byte of a CONNACK. MQTT 3.1.1 Section 3.2.2.3
type ConnackReturnCode byte

const (
	ConnackAccepted ConnackReturnCode = iota
	ConnackUnacceptableProtocolVersion
	ConnackIdentifierRejected
	ConnackServerUnavailable
	ConnackBadUsernameOrPassword
	ConnackNotAuthorized
)

var returnCodeText = [...]string{
	ConnackAccepted:                    "accepted",
	ConnackUnacceptableProtocolVersion: "unacceptable protocol version",
	ConnackIdentifierRejected:          "identifier rejected",
	ConnackServerUnavailable:           "server unavailable",
	ConnackBadUsernameOrPassword:       "bad user name or password",
	ConnackNotAuthorized:               "not authorized",
}

// IsAccepted reports whether the broker accepted the connection.
func (c ConnackReturnCode) IsAccepted() bool {
	return c == ConnackAccepted
}

// Known reports whether c is one of the return codes 3.1.1 defines.
// Codes 6-255 are reserved.
func (c ConnackReturnCode) Known() bool {
	return int(c) < len(returnCodeText)
}

func (c ConnackReturnCode) String() string {
	if c.Known() {
		return returnCodeText[c]
	}
	return "reserved"
}
