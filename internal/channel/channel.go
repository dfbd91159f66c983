package channel

import (
	"context"

	"github.com/SIDHANTH-S/Voigent/internal/bus"
)

// Channel is one way a caller reaches the assistant: a phone line, a chat
// bot, or the web console. Start must not block; receive loops run in their
// own goroutines and stop when ctx is done or Stop is called.
type Channel interface {
	Name() string
	Start(ctx context.Context) error
	Stop() error
	Send(msg bus.OutboundMessage) error
}

// BaseChannel carries the name, bus handle, and sender allowlist every
// channel shares.
type BaseChannel struct {
	name      string
	bus       *bus.MessageBus
	allowFrom map[string]bool
}

func NewBaseChannel(name string, b *bus.MessageBus, allowFrom []string) BaseChannel {
	allowed := make(map[string]bool, len(allowFrom))
	for _, id := range allowFrom {
		allowed[id] = true
	}
	return BaseChannel{name: name, bus: b, allowFrom: allowed}
}

func (c *BaseChannel) Name() string { return c.name }

// IsAllowed reports whether a sender passes the allowlist. An empty
// allowlist admits everyone.
func (c *BaseChannel) IsAllowed(senderID string) bool {
	if len(c.allowFrom) == 0 {
		return true
	}
	return c.allowFrom[senderID]
}

// Publish forwards an inbound message onto the bus.
func (c *BaseChannel) Publish(msg bus.InboundMessage) {
	c.bus.PublishInbound(msg)
}
