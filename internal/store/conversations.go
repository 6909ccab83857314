// ABOUTME: In-memory conversation store with message upsert semantics
// ABOUTME: One process-wide instance owns all conversations, reset on restart

package store

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"
)

// ConversationStore owns the set of conversations and their message lists.
// All operations are synchronous and serialized by a single lock; at demo
// scale that is cheaper than per-conversation locking and just as correct.
type ConversationStore struct {
	mu            sync.RWMutex
	conversations map[string]*Conversation
	messages      map[string][]Message
	counter       int
	logger        *slog.Logger
}

// NewConversationStore creates an empty store. Pass nil logger for default.
func NewConversationStore(logger *slog.Logger) *ConversationStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConversationStore{
		conversations: make(map[string]*Conversation),
		messages:      make(map[string][]Message),
		logger:        logger.With("component", "conversations"),
	}
}

// Create allocates a new conversation with a fresh id, a derived thread id,
// and an auto-incrementing display name. The name counter is process-lifetime
// monotonic and never reused, even after deletions.
func (s *ConversationStore) Create() Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counter++
	id := newID("conv")
	conv := &Conversation{
		ID:        id,
		Name:      fmt.Sprintf("Conversation %d", s.counter),
		ThreadID:  "thread_" + id,
		CreatedAt: time.Now(),
	}
	s.conversations[id] = conv
	s.messages[id] = nil

	s.logger.Debug("conversation created", "id", id, "thread_id", conv.ThreadID)
	return *conv
}

// Get retrieves a conversation by id.
func (s *ConversationStore) Get(id string) (Conversation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, ok := s.conversations[id]
	if !ok {
		return Conversation{}, false
	}
	return *conv, true
}

// List returns all conversations, newest first.
func (s *ConversationStore) List() []Conversation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]Conversation, 0, len(s.conversations))
	for _, conv := range s.conversations {
		result = append(result, *conv)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result
}

// UpdateParams holds the mutable conversation fields. ID, ThreadID and
// CreatedAt are deliberately absent so callers cannot touch them.
type UpdateParams struct {
	Name *string
}

// Update merges the provided fields into the conversation.
func (s *ConversationStore) Update(id string, params UpdateParams) (Conversation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[id]
	if !ok {
		return Conversation{}, false
	}
	if params.Name != nil {
		conv.Name = *params.Name
	}
	return *conv, true
}

// Delete removes a conversation and its messages. Returns false if the
// conversation did not exist; calling twice is not an error. Event cleanup is
// the caller's responsibility (the gateway clears the event log after a
// successful delete).
func (s *ConversationStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.conversations[id]; !ok {
		return false
	}
	delete(s.conversations, id)
	delete(s.messages, id)

	s.logger.Debug("conversation deleted", "id", id)
	return true
}

// AddMessage appends a message to the conversation. Returns false if the
// conversation does not exist.
func (s *ConversationStore) AddMessage(id string, msg Message) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[id]
	if !ok {
		return false
	}
	s.messages[id] = append(s.messages[id], msg)
	conv.MessageCount = len(s.messages[id])
	return true
}

// UpsertMessage replaces the message with the same id in place, preserving
// its position, or appends if no such message exists. This is the write path
// for streaming updates, where the same message id recurs with longer content.
func (s *ConversationStore) UpsertMessage(id string, msg Message) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[id]
	if !ok {
		return false
	}
	msgs := s.messages[id]
	for i := range msgs {
		if msgs[i].ID == msg.ID {
			msgs[i] = msg
			conv.MessageCount = len(msgs)
			return true
		}
	}
	s.messages[id] = append(msgs, msg)
	conv.MessageCount = len(s.messages[id])
	return true
}

// GetMessages returns the conversation's messages in insertion order. A
// missing conversation yields an empty list, not an error, so callers on the
// read path do not need an existence pre-check.
func (s *ConversationStore) GetMessages(id string) []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msgs, ok := s.messages[id]
	if !ok {
		return []Message{}
	}
	result := make([]Message, len(msgs))
	copy(result, msgs)
	return result
}
