// Package client provides the MQTT session state machine and a client that
// drives it over a transport link.
package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"

	"github.com/bromq-dev/client/pkg/packet"
	"github.com/bromq-dev/client/pkg/transport"
)

// Client publishes messages over one MQTT session at a time.
// All methods are safe for concurrent use.
type Client struct {
	config *Config
	dialer transport.Dialer
	hooks  *Hooks
	log    *slog.Logger

	mu         sync.Mutex
	session    *Session
	link       *link
	info       Info
	connecting bool // a Connect is dialing without holding mu

	// Lifetime context for hook calls
	ctx    context.Context
	cancel context.CancelFunc
}

// link is one open transport connection with its read and write loops.
type link struct {
	conn      transport.Conn
	outbound  chan *outboundPacket
	handshake chan Event
	pong      chan struct{}

	// Closed when the write loop exited.
	writerDone chan struct{}

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	errOnce sync.Once
	err     error
}

// outboundPacket is an assembled packet waiting for the write loop.
type outboundPacket struct {
	data []byte
	done chan error
}

// New creates a client that opens links with dialer.
func New(dialer transport.Dialer, config *Config) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.OutboundQueue <= 0 {
		config.OutboundQueue = 1
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Client{
		config:  config,
		dialer:  dialer,
		hooks:   NewHooks(),
		log:     config.Logger,
		session: NewSession(config.KeepAlive),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// AddHook registers a hook for observing client behavior.
func (c *Client) AddHook(hook Hook) error {
	return c.hooks.Register(hook)
}

// State returns a copy of the session state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.State()
}

// IsConnected reports whether messages can be published: the link is open
// and the broker accepted the handshake.
func (c *Client) IsConnected() bool {
	s := c.State()
	return s.Connected() && s.Ready()
}

// Connect opens a link to addr, sends pkt and waits for the CONNACK.
//
// A rejected handshake returns a *RejectedError. Any failure after the link
// opened closes it again and leaves the session disconnected; nothing is
// retried.
func (c *Client) Connect(ctx context.Context, addr string, pkt *packet.Connect) error {
	if _, ok := ctx.Deadline(); !ok && c.config.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.ConnectTimeout)
		defer cancel()
	}

	// Close ends a pending Connect.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(c.ctx, cancel)
	defer stop()

	// Reject a bad CONNECT before opening anything.
	if _, _, err := pkt.Parts(); err != nil {
		return err
	}

	c.mu.Lock()
	if c.ctx.Err() != nil {
		c.mu.Unlock()
		return ErrClientClosed
	}
	if c.connecting || c.session.State().Connected() {
		c.mu.Unlock()
		return ErrAlreadyConnected
	}
	c.connecting = true
	c.mu.Unlock()

	conn, err := c.dialer.Dial(ctx, addr)

	c.mu.Lock()
	c.connecting = false
	if err != nil {
		c.mu.Unlock()
		if c.ctx.Err() != nil {
			return ErrClientClosed
		}
		return err
	}
	if c.ctx.Err() != nil {
		c.mu.Unlock()
		conn.Close()
		return ErrClientClosed
	}

	c.session.MarkConnected()
	raw, err := c.session.BuildConnect(pkt)
	if err != nil {
		c.session.Reset()
		c.mu.Unlock()
		conn.Close()
		return err
	}

	l := c.startLink(conn)
	c.link = l
	c.info = Info{ClientID: pkt.ClientID, Addr: addr}
	info := c.info
	c.mu.Unlock()

	c.log.Debug("sending CONNECT", "client_id", pkt.ClientID, "addr", addr)

	if err := c.send(ctx, l, raw); err != nil {
		c.abort(l, err)
		return err
	}

	select {
	case ev := <-l.handshake:
		if ev.Kind == EventHandshakeRejected {
			err := &RejectedError{Code: ev.Code}
			c.abort(l, err)
			return err
		}
		c.hooks.OnConnected(c.ctx, info)
		return nil

	case <-l.ctx.Done():
		c.abort(l, l.cause())

		// Brokers close the link right after a refusing CONNACK.
		select {
		case ev := <-l.handshake:
			if ev.Kind == EventHandshakeRejected {
				return &RejectedError{Code: ev.Code}
			}
		default:
		}
		return fmt.Errorf("waiting for CONNACK: %w", l.cause())

	case <-ctx.Done():
		c.abort(l, ctx.Err())
		if c.ctx.Err() != nil {
			return ErrClientClosed
		}
		return ctx.Err()
	}
}

// Publish sends payload to topic at QoS 0. Before the handshake completed it
// fails with ErrSessionNotReady and nothing reaches the transport.
func (c *Client) Publish(ctx context.Context, topic string, payload []byte) error {
	c.mu.Lock()
	raw, err := c.session.Publish(topic, payload)
	l, info := c.link, c.info
	c.mu.Unlock()
	if err != nil {
		return err
	}

	if err := c.send(ctx, l, raw); err != nil {
		return err
	}
	c.hooks.OnPublish(c.ctx, info, topic, payload)
	return nil
}

// Ping sends a PINGREQ and waits for the PINGRESP.
func (c *Client) Ping(ctx context.Context) error {
	c.mu.Lock()
	raw, err := c.session.Ping()
	l := c.link
	c.mu.Unlock()
	if err != nil {
		return err
	}

	// Drop a stale pong from an earlier, abandoned ping.
	select {
	case <-l.pong:
	default:
	}

	if err := c.send(ctx, l, raw); err != nil {
		return err
	}

	select {
	case <-l.pong:
		return nil
	case <-l.ctx.Done():
		return fmt.Errorf("waiting for PINGRESP: %w", l.cause())
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Disconnect sends a DISCONNECT, resets the session and closes the link.
// The session is reset even when the DISCONNECT could not be sent.
func (c *Client) Disconnect(ctx context.Context) error {
	c.mu.Lock()
	raw, err := c.session.Disconnect()
	l, info := c.link, c.info
	c.link = nil
	c.mu.Unlock()

	if l == nil {
		return err
	}
	if err == nil {
		err = c.send(ctx, l, raw)
	}

	l.close(ErrClientClosed)
	l.wg.Wait()
	c.hooks.OnDisconnect(c.ctx, info, nil)
	return err
}

// Close disconnects if needed, ends a pending Connect and stops all hooks.
// The client cannot be reused afterwards.
func (c *Client) Close() error {
	var err error
	if c.State().Connected() {
		// A handshake still in flight has nothing to say goodbye to.
		if derr := c.Disconnect(context.Background()); !errors.Is(derr, ErrSessionNotReady) {
			err = derr
		}
	}
	err = errors.Join(err, c.hooks.Stop())
	c.cancel()
	return err
}

// startLink starts the read and write loops for conn.
func (c *Client) startLink(conn transport.Conn) *link {
	ctx, cancel := context.WithCancel(context.Background())
	l := &link{
		conn:       conn,
		outbound:   make(chan *outboundPacket, c.config.OutboundQueue),
		handshake:  make(chan Event, 1),
		pong:       make(chan struct{}, 1),
		writerDone: make(chan struct{}),
		ctx:        ctx,
		cancel:     cancel,
	}

	l.wg.Add(2)
	go c.writeLoop(l)
	go c.readLoop(l)
	return l
}

// send queues raw on l and waits until the write loop handed it to the
// transport. Once queued, a packet is written even if ctx ends.
func (c *Client) send(ctx context.Context, l *link, raw []byte) error {
	if l == nil {
		return ErrSessionNotReady
	}

	op := &outboundPacket{data: raw, done: make(chan error, 1)}

	select {
	case l.outbound <- op:
	case <-l.ctx.Done():
		return l.cause()
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-op.done:
		return err
	case <-l.writerDone:
		// The write loop reports every packet it took before exiting.
		select {
		case err := <-op.done:
			return err
		default:
			return l.cause()
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// abort closes l after a failed handshake and resets the session if l is
// still the current link.
func (c *Client) abort(l *link, err error) {
	l.close(err)
	l.wg.Wait()

	c.mu.Lock()
	if c.link == l {
		c.link = nil
		c.session.Reset()
	}
	c.mu.Unlock()
}

// fail is called by a loop that hit a transport error.
func (c *Client) fail(l *link, err error) {
	if l.ctx.Err() != nil {
		return // closed on purpose
	}
	l.close(err)

	c.mu.Lock()
	current := c.link == l
	wasReady := c.session.State().Ready()
	if current {
		c.link = nil
		c.session.Reset()
	}
	info := c.info
	c.mu.Unlock()

	// Disconnect detaches the link before the broker hangs up.
	if !current {
		c.log.Debug("detached link closed", "client_id", info.ClientID, "addr", info.Addr, "error", err)
		return
	}

	c.log.Error("link failed", "client_id", info.ClientID, "addr", info.Addr, "error", err)
	if wasReady {
		c.hooks.OnDisconnect(c.ctx, info, err)
	}
}

// readLoop feeds inbound packets to the session.
func (c *Client) readLoop(l *link) {
	defer l.wg.Done()

	for {
		frame, err := l.conn.Receive(l.ctx)
		if err != nil {
			c.fail(l, err)
			return
		}

		c.mu.Lock()
		if c.link != l {
			c.mu.Unlock()
			return
		}
		ev := c.session.Handle(frame)
		info := c.info
		c.mu.Unlock()

		c.log.Debug("received packet",
			"client_id", info.ClientID,
			"type", frameType(frame),
			"size", len(frame),
			"event", ev.Kind,
		)
		c.hooks.OnEvent(c.ctx, info, ev)

		switch ev.Kind {
		case EventHandshakeAccepted, EventHandshakeRejected:
			select {
			case l.handshake <- ev:
			default:
			}
		case EventPongReceived:
			select {
			case l.pong <- struct{}{}:
			default:
			}
		}
	}
}

// writeLoop hands queued packets to the transport one at a time.
func (c *Client) writeLoop(l *link) {
	defer l.wg.Done()
	defer close(l.writerDone)
	defer func() {
		if r := recover(); r != nil {
			c.log.Error("panic in write loop",
				"panic", r,
				"stack", string(debug.Stack()),
			)
			c.fail(l, fmt.Errorf("write loop panic: %v", r))
		}
	}()

	for {
		select {
		case <-l.ctx.Done():
			return
		case op := <-l.outbound:
			err := l.conn.Send(l.ctx, op.data)
			op.done <- err
			if err != nil {
				c.fail(l, err)
				return
			}
			c.log.Debug("sent packet", "type", frameType(op.data), "size", len(op.data))
		}
	}
}

// close records err as the reason and tears the link down. Only the first
// call has any effect.
func (l *link) close(err error) {
	l.errOnce.Do(func() {
		l.err = err
		l.cancel()
		l.conn.Close()
	})
}

// cause returns why the link closed.
func (l *link) cause() error {
	if l.err != nil {
		return l.err
	}
	return ErrClientClosed
}

func frameType(frame []byte) packet.Type {
	if len(frame) == 0 {
		return packet.TypeReserved0
	}
	return packet.Type(frame[0] >> 4)
}
