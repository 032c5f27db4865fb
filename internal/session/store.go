// Package session keeps per-interview conversational context in memory:
// the facts established at session start and the transcript of questions
// and answers exchanged so far.
package session

import (
	"errors"
	"log/slog"
	"sync"
)

// Role identifies who authored a transcript message.
type Role string

const (
	RoleAssistant Role = "assistant" // generated questions
	RoleUser      Role = "user"      // candidate answers
)

// Fact is a key-value datum attached to a session at creation, e.g. the
// technology stack or experience level. Keys are unique within a session.
type Fact struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Message is one transcript entry. The transcript usually alternates
// assistant/user but the store does not enforce that; callers must not
// assume it.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Context is the accumulated state of one session. Appends and reads on the
// same context are safe from concurrent requests.
type Context struct {
	mu       sync.Mutex
	subject  string
	facts    []Fact
	messages []Message
}

// Subject returns the identity subject the session was created for.
func (c *Context) Subject() string {
	return c.subject
}

// Facts returns a copy of the session's facts in creation order.
func (c *Context) Facts() []Fact {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Fact, len(c.facts))
	copy(out, c.facts)
	return out
}

// FactValue looks up a fact by key.
func (c *Context) FactValue(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, f := range c.facts {
		if f.Key == key {
			return f.Value, true
		}
	}
	return "", false
}

// Messages returns a copy of the transcript in append order.
func (c *Context) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

func (c *Context) append(role Role, content string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, Message{Role: role, Content: content})
}

// ErrSessionExists is returned when creating a session with an id that is
// already registered.
var ErrSessionExists = errors.New("session already exists")

// Store is a concurrent registry of active session contexts. The store lock
// only guards the map itself; per-session appends take the context's own
// lock, so unrelated sessions never serialize on each other.
//
// Sessions live for the process lifetime; there is no automatic eviction.
type Store struct {
	mu       sync.RWMutex
	contexts map[string]*Context
	logger   *slog.Logger
}

// NewStore creates an empty session store.
func NewStore(logger *slog.Logger) *Store {
	return &Store{
		contexts: make(map[string]*Context),
		logger:   logger,
	}
}

// Create registers a new session. Duplicate facts by key are dropped,
// keeping the first occurrence. Fails with ErrSessionExists on a duplicate
// session id.
func (s *Store) Create(sessionID, subject string, facts []Fact) error {
	deduped := make([]Fact, 0, len(facts))
	seen := make(map[string]struct{}, len(facts))
	for _, f := range facts {
		if _, ok := seen[f.Key]; ok {
			continue
		}
		seen[f.Key] = struct{}{}
		deduped = append(deduped, f)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.contexts[sessionID]; ok {
		return ErrSessionExists
	}
	s.contexts[sessionID] = &Context{
		subject: subject,
		facts:   deduped,
	}
	s.logger.Info("session context created", "session_id", sessionID, "subject", subject)
	return nil
}

// Get returns the context for a session, or false when it is unknown.
func (s *Store) Get(sessionID string) (*Context, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ctx, ok := s.contexts[sessionID]
	return ctx, ok
}

// AppendMessage records a transcript entry. An unknown session is logged and
// ignored so a late-arriving answer for an expired session never crashes the
// caller.
func (s *Store) AppendMessage(sessionID string, role Role, content string) {
	ctx, ok := s.Get(sessionID)
	if !ok {
		s.logger.Warn("append to unknown session ignored", "session_id", sessionID, "role", role)
		return
	}
	ctx.append(role, content)
}

// Facts returns the session's facts, or an empty slice for an unknown
// session.
func (s *Store) Facts(sessionID string) []Fact {
	ctx, ok := s.Get(sessionID)
	if !ok {
		return []Fact{}
	}
	return ctx.Facts()
}

// Messages returns the session's transcript, or an empty slice for an
// unknown session.
func (s *Store) Messages(sessionID string) []Message {
	ctx, ok := s.Get(sessionID)
	if !ok {
		return []Message{}
	}
	return ctx.Messages()
}
