package client

import (
	"context"
	"errors"
	"sync"
)

// Hooks manages registered hooks and dispatches events.
type Hooks struct {
	mu sync.RWMutex

	ids        map[string]struct{}
	connection []ConnectionHook
	event      []EventHook
	publish    []PublishHook
	stop       []StopHook
}

// NewHooks creates a new hook manager.
func NewHooks() *Hooks {
	return &Hooks{ids: make(map[string]struct{})}
}

// Register registers a hook. The hook is checked for all supported interfaces.
// Registering two hooks with the same ID is an error.
func (h *Hooks) Register(hook Hook) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.ids[hook.ID()]; ok {
		return errors.New("hook already registered: " + hook.ID())
	}
	h.ids[hook.ID()] = struct{}{}

	if ch, ok := hook.(ConnectionHook); ok {
		h.connection = append(h.connection, ch)
	}
	if eh, ok := hook.(EventHook); ok {
		h.event = append(h.event, eh)
	}
	if ph, ok := hook.(PublishHook); ok {
		h.publish = append(h.publish, ph)
	}
	if sh, ok := hook.(StopHook); ok {
		h.stop = append(h.stop, sh)
	}
	return nil
}

// OnConnected notifies all connection hooks of an accepted handshake.
func (h *Hooks) OnConnected(ctx context.Context, info Info) {
	h.mu.RLock()
	hooks := h.connection
	h.mu.RUnlock()

	for _, hook := range hooks {
		hook.OnConnected(ctx, info)
	}
}

// OnDisconnect notifies all connection hooks that the link went away.
func (h *Hooks) OnDisconnect(ctx context.Context, info Info, err error) {
	h.mu.RLock()
	hooks := h.connection
	h.mu.RUnlock()

	for _, hook := range hooks {
		hook.OnDisconnect(ctx, info, err)
	}
}

// OnEvent passes a parser event to all event hooks.
func (h *Hooks) OnEvent(ctx context.Context, info Info, ev Event) {
	h.mu.RLock()
	hooks := h.event
	h.mu.RUnlock()

	for _, hook := range hooks {
		hook.OnEvent(ctx, info, ev)
	}
}

// OnPublish notifies all publish hooks of a sent message.
func (h *Hooks) OnPublish(ctx context.Context, info Info, topic string, payload []byte) {
	h.mu.RLock()
	hooks := h.publish
	h.mu.RUnlock()

	for _, hook := range hooks {
		hook.OnPublish(ctx, info, topic, payload)
	}
}

// Stop stops every hook that holds resources and joins their errors.
func (h *Hooks) Stop() error {
	h.mu.RLock()
	hooks := h.stop
	h.mu.RUnlock()

	var errs []error
	for _, hook := range hooks {
		if err := hook.Stop(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
