package client

import (
	"testing"

	"github.com/bromq-dev/client/pkg/packet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readySession(t *testing.T) *Session {
	t.Helper()
	s := NewSession(DefaultKeepAlive)
	s.MarkConnected()
	ev := s.Handle([]byte{0x20, 0x02, 0x00, 0x00})
	require.Equal(t, EventHandshakeAccepted, ev.Kind)
	return s
}

func TestSessionStartsDisconnected(t *testing.T) {
	s := NewSession(DefaultKeepAlive)
	assert.False(t, s.State().Connected())
	assert.False(t, s.State().Ready())
	assert.Equal(t, "disconnected", s.State().String())
}

func TestSessionHandleConnack(t *testing.T) {
	s := NewSession(DefaultKeepAlive)
	s.MarkConnected()

	ev := s.Handle([]byte{0x20, 0x02, 0x00, 0x05})
	assert.Equal(t, EventHandshakeRejected, ev.Kind)
	assert.Equal(t, packet.ConnackNotAuthorized, ev.Code)
	assert.False(t, s.State().Ready())

	ev = s.Handle([]byte{0x20, 0x02, 0x01, 0x00})
	assert.Equal(t, EventHandshakeAccepted, ev.Kind)
	assert.True(t, ev.SessionPresent)
	assert.True(t, s.State().Ready())
	assert.Equal(t, "ready", s.State().String())
}

func TestSessionHandleIgnored(t *testing.T) {
	tests := []struct {
		name string
		pkt  []byte
	}{
		{"empty", nil},
		{"one byte", []byte{0x20}},
		{"short connack", []byte{0x20, 0x02, 0x00}},
		{"publish", []byte{0x30, 0x03, 0x00, 0x01, 'a'}},
		{"pingreq", []byte{0xC0, 0x00}},
		{"reserved", []byte{0x00, 0x00}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSession(DefaultKeepAlive)
			s.MarkConnected()
			ev := s.Handle(tt.pkt)
			assert.Equal(t, EventIgnored, ev.Kind)
			assert.False(t, s.State().Ready())
		})
	}
}

func TestSessionHandlePingresp(t *testing.T) {
	s := readySession(t)
	assert.Equal(t, EventPongReceived, s.Handle([]byte{0xD0, 0x00}).Kind)
}

func TestSessionGate(t *testing.T) {
	s := NewSession(DefaultKeepAlive)

	// Nothing before the link is open, not even CONNECT.
	_, err := s.BuildConnect(&packet.Connect{ClientID: "c"})
	assert.ErrorIs(t, err, ErrSessionNotReady)

	s.MarkConnected()
	raw, err := s.Publish("temp/random", []byte("15.0"))
	assert.ErrorIs(t, err, ErrSessionNotReady)
	assert.Nil(t, raw)

	_, err = s.Ping()
	assert.ErrorIs(t, err, ErrSessionNotReady)

	raw, err = s.BuildConnect(&packet.Connect{ClientID: "c"})
	require.NoError(t, err)
	assert.Equal(t, byte(0x10), raw[0])
}

func TestSessionBuildConnectKeepAlive(t *testing.T) {
	s := NewSession(42)
	s.MarkConnected()

	pkt := &packet.Connect{ClientID: "c", KeepAlive: 7}
	raw, err := s.BuildConnect(pkt)
	require.NoError(t, err)

	got, err := packet.DecodeConnect(raw[2:])
	require.NoError(t, err)
	assert.Equal(t, uint16(42), got.KeepAlive)
	assert.Equal(t, uint16(7), pkt.KeepAlive, "caller's packet is not modified")
}

func TestSessionBuildConnectMissingClientID(t *testing.T) {
	s := NewSession(DefaultKeepAlive)
	s.MarkConnected()
	_, err := s.BuildConnect(&packet.Connect{})
	assert.ErrorIs(t, err, packet.ErrMissingClientID)
}

func TestSessionPublish(t *testing.T) {
	s := readySession(t)

	raw, err := s.Publish("temp/random", []byte("15.0"))
	require.NoError(t, err)

	want := append([]byte{0x30, 0x11, 0x00, 0x0B}, "temp/random15.0"...)
	assert.Equal(t, want, raw)
}

func TestSessionPing(t *testing.T) {
	s := readySession(t)
	raw, err := s.Ping()
	require.NoError(t, err)
	assert.Equal(t, []byte{0xC0, 0x00}, raw)
}

func TestSessionDisconnect(t *testing.T) {
	s := readySession(t)

	raw, err := s.Disconnect()
	require.NoError(t, err)
	assert.Equal(t, []byte{0xE0, 0x00}, raw)
	assert.False(t, s.State().Connected())
	assert.False(t, s.State().Ready())

	// A second disconnect has nothing to send but still leaves the state reset.
	_, err = s.Disconnect()
	assert.ErrorIs(t, err, ErrSessionNotReady)
	assert.False(t, s.State().Connected())
}

func TestSessionDisconnectBeforeHandshake(t *testing.T) {
	s := NewSession(DefaultKeepAlive)
	s.MarkConnected()

	_, err := s.Disconnect()
	assert.ErrorIs(t, err, ErrSessionNotReady)
	assert.False(t, s.State().Connected())
}

func TestRejectedError(t *testing.T) {
	var err error = &RejectedError{Code: packet.ConnackBadUsernameOrPassword}
	assert.ErrorIs(t, err, ErrHandshakeRejected)
	assert.Contains(t, err.Error(), "bad user name or password")
}
