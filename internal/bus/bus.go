package bus

import (
	"context"
	"log"
	"sync"
)

// MessageBus decouples channels from the dialogue engine. Channels publish
// inbound utterances; the gateway consumes them, and replies fan back out to
// the channel that subscribed for them.
type MessageBus struct {
	inbound  chan InboundMessage
	outbound chan OutboundMessage

	mu   sync.RWMutex
	subs map[string]func(OutboundMessage)
}

func NewMessageBus(bufSize int) *MessageBus {
	return &MessageBus{
		inbound:  make(chan InboundMessage, bufSize),
		outbound: make(chan OutboundMessage, bufSize),
		subs:     make(map[string]func(OutboundMessage)),
	}
}

// PublishInbound enqueues a user message; drops it when the bus is saturated
// rather than blocking the channel's receive loop.
func (b *MessageBus) PublishInbound(msg InboundMessage) {
	select {
	case b.inbound <- msg:
	default:
		log.Printf("[bus] inbound queue full, dropping message from %s", msg.Channel)
	}
}

// PublishOutbound enqueues an assistant reply.
func (b *MessageBus) PublishOutbound(msg OutboundMessage) {
	select {
	case b.outbound <- msg:
	default:
		log.Printf("[bus] outbound queue full, dropping message for %s", msg.Channel)
	}
}

// Inbound exposes the consume side for the gateway's process loop.
func (b *MessageBus) Inbound() <-chan InboundMessage {
	return b.inbound
}

// SubscribeOutbound registers a channel's delivery handler. One handler per
// channel name; a second registration replaces the first.
func (b *MessageBus) SubscribeOutbound(channel string, handler func(OutboundMessage)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[channel] = handler
}

// DispatchOutbound routes replies to their channel's handler until ctx is
// done. Intended to run as a goroutine.
func (b *MessageBus) DispatchOutbound(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-b.outbound:
			b.mu.RLock()
			handler, ok := b.subs[msg.Channel]
			b.mu.RUnlock()
			if !ok {
				log.Printf("[bus] no subscriber for channel %s", msg.Channel)
				continue
			}
			handler(msg)
		}
	}
}
