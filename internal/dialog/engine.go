package dialog

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/SIDHANTH-S/Voigent/internal/facts"
	"github.com/SIDHANTH-S/Voigent/internal/metrics"
)

// ErrSessionNotFound is returned when a turn references an unknown session id.
var ErrSessionNotFound = errors.New("session not found")

// Role tags a transcript turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one transcript entry.
type Turn struct {
	Role Role
	Text string
	At   time.Time
}

// Reply is the engine's answer for one turn. SessionEnded signals the caller
// should close the conversation (hang up, end the chat).
type Reply struct {
	Text         string
	SessionEnded bool
}

// Conversation is one live session: its memory, transcript, and activity
// timestamp. Each conversation has its own lock so long bridge calls on one
// session never block turns on another.
type Conversation struct {
	ID         string
	Memory     *Memory
	Transcript []Turn
	LastActive time.Time

	mu sync.Mutex
}

// Engine is the dialogue decision core. It owns the session registry and runs
// the classify / compute / respond pipeline for every turn. Safe for
// concurrent use by multiple channels.
type Engine struct {
	store      *facts.Store
	classifier *Classifier
	responder  *Responder
	bridge     *Bridge

	mu       sync.Mutex
	sessions map[string]*Conversation
}

// NewEngine wires an engine over a fact store. completer may be nil; complex
// questions then answer locally. pick may be nil for random phrasing choice.
func NewEngine(store *facts.Store, completer Completer, pick func(n int) int, bridgeTimeout time.Duration) *Engine {
	responder := NewResponder(store, pick)
	return &Engine{
		store:      store,
		classifier: NewClassifier(store),
		responder:  responder,
		bridge:     NewBridge(completer, responder, store, bridgeTimeout),
		sessions:   make(map[string]*Conversation),
	}
}

// StartSession registers a new conversation and returns the opening line. A
// duplicate id is an error: session lifecycles come from the channel layer,
// which must not silently merge two calls.
func (e *Engine) StartSession(id string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.sessions[id]; ok {
		return "", fmt.Errorf("session %q already active", id)
	}

	conv := &Conversation{
		ID:         id,
		Memory:     NewMemory(),
		LastActive: time.Now(),
	}
	opening := e.responder.Opening()
	conv.Transcript = append(conv.Transcript, Turn{Role: RoleAssistant, Text: opening, At: time.Now()})
	e.sessions[id] = conv

	log.Printf("[engine] session %s started", id)
	return opening, nil
}

// HandleTurn processes one user utterance for an existing session and returns
// the reply. The turn sequence: record the utterance, classify, compute a
// fresh metrics snapshot, generate or bridge the reply, then update memory
// and the transcript.
func (e *Engine) HandleTurn(ctx context.Context, id, utterance string) (Reply, error) {
	conv, err := e.lookup(id)
	if err != nil {
		return Reply{}, err
	}

	conv.mu.Lock()
	defer conv.mu.Unlock()

	now := time.Now()
	conv.LastActive = now
	conv.Transcript = append(conv.Transcript, Turn{Role: RoleUser, Text: utterance, At: now})
	turns := len(conv.Transcript)

	intent := e.classifier.Classify(utterance, conv.Memory, turns)
	snap := metrics.Compute(e.store)

	var text string
	if intent.Kind == Complex {
		text = e.bridge.Answer(ctx, id, utterance, snap, conv.Memory, turns)
	} else {
		text = e.responder.Generate(intent, snap, utterance, conv.Memory, turns)
	}

	if topic := topicFor(intent.Kind); topic != "" {
		conv.Memory.RecordTopic(topic)
	}
	conv.Memory.RecordTurn(intent.Kind.String())
	conv.Transcript = append(conv.Transcript, Turn{Role: RoleAssistant, Text: text, At: time.Now()})

	return Reply{Text: text, SessionEnded: intent.Kind == Goodbye}, nil
}

// EndSession removes a conversation from the registry. Ending an unknown
// session is a no-op: status callbacks and explicit goodbyes can race.
func (e *Engine) EndSession(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.sessions[id]; ok {
		delete(e.sessions, id)
		log.Printf("[engine] session %s ended", id)
	}
}

// Reset clears a session's conversational memory while keeping the session
// and its transcript alive. The transcript is an audit record; only the
// derived context is wiped.
func (e *Engine) Reset(id string) error {
	conv, err := e.lookup(id)
	if err != nil {
		return err
	}
	conv.mu.Lock()
	defer conv.mu.Unlock()
	conv.Memory.Reset()
	return nil
}

// Transcript returns a copy of a session's transcript.
func (e *Engine) Transcript(id string) ([]Turn, error) {
	conv, err := e.lookup(id)
	if err != nil {
		return nil, err
	}
	conv.mu.Lock()
	defer conv.mu.Unlock()
	out := make([]Turn, len(conv.Transcript))
	copy(out, conv.Transcript)
	return out, nil
}

// IdleSessions returns ids of sessions inactive longer than maxIdle. The
// registry lock is dropped before any session lock is taken: a sweep waiting
// on one busy session must not hold up lookups for the others.
func (e *Engine) IdleSessions(maxIdle time.Duration) []string {
	e.mu.Lock()
	convs := make([]*Conversation, 0, len(e.sessions))
	for _, conv := range e.sessions {
		convs = append(convs, conv)
	}
	e.mu.Unlock()

	cutoff := time.Now().Add(-maxIdle)
	var idle []string
	for _, conv := range convs {
		conv.mu.Lock()
		last := conv.LastActive
		conv.mu.Unlock()
		if last.Before(cutoff) {
			idle = append(idle, conv.ID)
		}
	}
	return idle
}

// ActiveSessions reports the current session count.
func (e *Engine) ActiveSessions() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.sessions)
}

func (e *Engine) lookup(id string) (*Conversation, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	conv, ok := e.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return conv, nil
}
