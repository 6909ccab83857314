// ABOUTME: Shared types and id generation for the in-memory stores
// ABOUTME: Defines Conversation, Message and the not-found sentinel

package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// Conversation is a named container of chat messages. Its event log lives in
// the EventStore, keyed by the conversation id.
type Conversation struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	ThreadID     string    `json:"threadId"`
	CreatedAt    time.Time `json:"createdAt"`
	MessageCount int       `json:"messageCount"`
}

// MessageRole identifies the author side of a chat message
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Message is a single chat message. The id is assigned by the upstream chat
// session, not by this process, so it is only unique within a conversation.
type Message struct {
	ID      string      `json:"id"`
	Role    MessageRole `json:"role"`
	Content string      `json:"content"`
}

// newID generates a time-prefixed identifier. The millisecond prefix keeps
// ids roughly sortable; the uuid suffix makes them unique within the process.
func newID(prefix string) string {
	return fmt.Sprintf("%s_%d_%s", prefix, time.Now().UnixMilli(), uuid.NewString()[:8])
}
