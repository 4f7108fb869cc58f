package client

// State is the session's view of the link.
// connected means the transport opened; ready means the broker accepted the
// handshake. Only Session changes it.
type State struct {
	connected bool
	ready     bool
}

// Connected reports whether the transport link is open.
func (s State) Connected() bool {
	return s.connected
}

// Ready reports whether the broker accepted the CONNECT.
func (s State) Ready() bool {
	return s.ready
}

func (s State) String() string {
	switch {
	case s.connected && s.ready:
		return "ready"
	case s.connected:
		return "connected"
	default:
		return "disconnected"
	}
}
