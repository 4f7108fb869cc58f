package client

import (
	"github.com/bromq-dev/client/pkg/packet"
)

// Session owns the State of one logical MQTT session and is the only thing
// allowed to change it. It performs no I/O and no locking: callers that
// share a Session between goroutines must serialize access themselves.
type Session struct {
	state     State
	keepAlive uint16
}

// NewSession creates a session whose CONNECT packets carry keepAlive.
func NewSession(keepAlive uint16) *Session {
	return &Session{keepAlive: keepAlive}
}

// State returns a copy of the current state.
func (s *Session) State() State {
	return s.state
}

// MarkConnected records that the transport link opened.
func (s *Session) MarkConnected() {
	s.state.connected = true
}

// Reset drops both flags.
func (s *Session) Reset() {
	s.state = State{}
}

// Assemble encodes p if the current state allows sending it.
// Nothing but CONNECT may be assembled before the handshake is accepted,
// and nothing at all before the link is open.
func (s *Session) Assemble(p packet.Packet) ([]byte, error) {
	if !s.state.connected {
		return nil, ErrSessionNotReady
	}
	if !s.state.ready && p.Type() != packet.TypeConnect {
		return nil, ErrSessionNotReady
	}
	return packet.Encode(p)
}

// BuildConnect assembles a CONNECT for c using the session's keep-alive.
// c is not modified.
func (s *Session) BuildConnect(c *packet.Connect) ([]byte, error) {
	pkt := *c
	pkt.KeepAlive = s.keepAlive
	return s.Assemble(&pkt)
}

// Publish assembles a QoS 0 PUBLISH of msg to topic.
func (s *Session) Publish(topic string, msg []byte) ([]byte, error) {
	return s.Assemble(&packet.Publish{Topic: topic, Payload: msg})
}

// Ping assembles a PINGREQ.
func (s *Session) Ping() ([]byte, error) {
	return s.Assemble(&packet.Pingreq{})
}

// Disconnect assembles a DISCONNECT and resets the state, whether or not
// assembly succeeded.
func (s *Session) Disconnect() ([]byte, error) {
	raw, err := s.Assemble(&packet.Disconnect{})
	s.Reset()
	return raw, err
}

// Handle interprets one complete inbound packet. CONNACK with return code 0
// marks the session ready. Packets shorter than two bytes, CONNACKs too short
// to carry a return code and any type other than CONNACK or PINGRESP are
// ignored.
func (s *Session) Handle(pkt []byte) Event {
	if len(pkt) < 2 {
		return Event{Kind: EventIgnored}
	}

	switch packet.Type(pkt[0] >> 4) {
	case packet.TypeConnack:
		// Return code sits at offset 3: type, remaining length, ack flags.
		if len(pkt) < 4 {
			return Event{Kind: EventIgnored}
		}
		ev := Event{
			Code:           packet.ConnackReturnCode(pkt[3]),
			SessionPresent: pkt[2]&0x01 != 0,
		}
		if ev.Code.IsAccepted() {
			s.state.ready = true
			ev.Kind = EventHandshakeAccepted
		} else {
			ev.Kind = EventHandshakeRejected
		}
		return ev

	case packet.TypePingresp:
		return Event{Kind: EventPongReceived}

	default:
		return Event{Kind: EventIgnored}
	}
}
