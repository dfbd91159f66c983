package dialog

// DetailLevel is a user preference for how verbose replies should be. It is
// recorded but not yet acted on; reserved for personalization.
type DetailLevel string

const (
	DetailConcise  DetailLevel = "concise"
	DetailBalanced DetailLevel = "balanced"
	DetailDetailed DetailLevel = "detailed"
)

// Preferences is the read-only personalization sub-record.
type Preferences struct {
	DetailLevel DetailLevel
	FocusAreas  []string
}

// Memory is the per-conversation context record. One instance per session,
// owned exclusively by that session's Conversation; no operation can fail.
type Memory struct {
	// DiscussedTopics is an insertion-ordered set: each topic appears at
	// most once, in the order it first came up.
	DiscussedTopics []string
	LastIntent      string
	LastEntity      string
	// Flow records the intent label of every turn, duplicates allowed.
	Flow  []string
	Prefs Preferences
}

func NewMemory() *Memory {
	return &Memory{Prefs: Preferences{DetailLevel: DetailBalanced}}
}

// RecordTopic appends a topic unless it is already present.
func (m *Memory) RecordTopic(topic string) {
	for _, t := range m.DiscussedTopics {
		if t == topic {
			return
		}
	}
	m.DiscussedTopics = append(m.DiscussedTopics, topic)
}

// RecordTurn appends an intent label to the flow history.
func (m *Memory) RecordTurn(intent string) {
	m.Flow = append(m.Flow, intent)
	m.LastIntent = intent
}

func (m *Memory) SetLastEntity(name string) {
	m.LastEntity = name
}

// LastTopic returns the most recently recorded topic, or "" when none.
func (m *Memory) LastTopic() string {
	if len(m.DiscussedTopics) == 0 {
		return ""
	}
	return m.DiscussedTopics[len(m.DiscussedTopics)-1]
}

// HasTopic reports whether a topic has been discussed this conversation.
func (m *Memory) HasTopic(topic string) bool {
	for _, t := range m.DiscussedTopics {
		if t == topic {
			return true
		}
	}
	return false
}

// ClearTopics empties the discussed-topics set. A fresh greeting resets topic
// tracking without touching the rest of the record.
func (m *Memory) ClearTopics() {
	m.DiscussedTopics = nil
}

// Reset returns the memory to its initial empty state.
func (m *Memory) Reset() {
	*m = *NewMemory()
}
