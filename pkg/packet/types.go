// Package packet provides MQTT 3.1.1 packet encoding and decoding for a
// publishing client: the fixed header, variable byte integers, length-prefixed
// strings and the CONNECT, CONNACK, PUBLISH, PINGREQ, PINGRESP and DISCONNECT
// packets.
package packet

// Type is the control packet type carried in the top four bits of the first
// byte of every packet. MQTT 3.1.1 Section 2.2.1
type Type byte

const (
	TypeReserved0 Type = iota
	TypeConnect
	TypeConnack
	TypePublish
	TypePuback
	TypePubrec
	TypePubrel
	TypePubcomp
	TypeSubscribe
	TypeSuback
	TypeUnsubscribe
	TypeUnsuback
	TypePingreq
	TypePingresp
	TypeDisconnect
	TypeReserved15
)

var typeNames = [...]string{
	TypeConnect:     "CONNECT",
	TypeConnack:     "CONNACK",
	TypePublish:     "PUBLISH",
	TypePuback:      "PUBACK",
	TypePubrec:      "PUBREC",
	TypePubrel:      "PUBREL",
	TypePubcomp:     "PUBCOMP",
	TypeSubscribe:   "SUBSCRIBE",
	TypeSuback:      "SUBACK",
	TypeUnsubscribe: "UNSUBSCRIBE",
	TypeUnsuback:    "UNSUBACK",
	TypePingreq:     "PINGREQ",
	TypePingresp:    "PINGRESP",
	TypeDisconnect:  "DISCONNECT",
}

func (t Type) String() string {
	if t.Valid() {
		return typeNames[t]
	}
	return "RESERVED"
}

// Valid reports whether t is one of the 14 types a 3.1.1 packet may carry.
func (t Type) Valid() bool {
	return t >= TypeConnect && t <= TypeDisconnect
}

// Version is the protocol level byte of CONNECT.
type Version byte

// Version311 is the only protocol level spoken here.
const Version311 Version = 4

func (v Version) String() string {
	if v == Version311 {
		return "3.1.1"
	}
	return "unknown"
}

const (
	// ProtocolName opens every CONNECT variable header.
	ProtocolName = "MQTT"

	// MaxRemainingLength is the largest value four varint bytes hold.
	MaxRemainingLength = 1<<28 - 1

	// MaxStringLength is the largest length a 2-byte prefix can state.
	MaxStringLength = 1<<16 - 1

	// MaxPacketSize is MaxRemainingLength plus the largest fixed header.
	MaxPacketSize = MaxRemainingLength + 5
)
