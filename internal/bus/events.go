package bus

import "time"

// InboundMessage is one user utterance arriving from a channel.
type InboundMessage struct {
	Channel   string
	SenderID  string
	ChatID    string
	Content   string
	Timestamp time.Time
	Metadata  map[string]any
}

// SessionKey identifies the dialogue session a message belongs to. One chat
// per channel maps to one session.
func (m *InboundMessage) SessionKey() string {
	return m.Channel + ":" + m.ChatID
}

// OutboundMessage is one assistant reply heading back to a channel.
type OutboundMessage struct {
	Channel string
	ChatID  string
	Content string
	// SessionEnded tells the channel to close the conversation after
	// delivering the content.
	SessionEnded bool
	Metadata     map[string]any
}
