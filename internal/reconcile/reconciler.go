// ABOUTME: Converts polled snapshots of a live message list into store writes
// ABOUTME: Guarantees no duplicate events and no empty-placeholder pollution

package reconcile

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/2389/a2a-bridge/internal/store"
)

// MessageKind distinguishes plain chat text from structural messages the
// live session may interleave (tool invocations are handled by the bridge
// package, not here).
type MessageKind string

const (
	KindText       MessageKind = "text"
	KindToolCall   MessageKind = "tool_call"
	KindToolResult MessageKind = "tool_result"
)

// LiveMessage is one entry of the live session's message list as observed in
// a snapshot. An empty Kind means plain text.
type LiveMessage struct {
	ID      string
	Role    store.MessageRole
	Content string
	Kind    MessageKind
}

// EventSink is what the reconciler needs from the event layer. Satisfied by
// *store.EventStore and by *conversation.Log.
type EventSink interface {
	AddEvent(conversationID string, event store.Event) (store.Event, bool)
	UpdateEvent(conversationID, eventID string, update store.EventUpdate) bool
}

// Reconciler observes repeated full snapshots of one conversation's live
// message list (the streaming session reports the same message id over and
// over with progressively longer content) and turns them into exactly the
// right message upserts and event writes.
//
// Known limitation: an assistant message whose final content is genuinely
// empty is indistinguishable from one that has not started streaming, so it
// is never persisted.
type Reconciler struct {
	mu             sync.Mutex
	conversationID string
	conversations  *store.ConversationStore
	events         EventSink

	lastSaved map[string]string // message id -> last persisted content
	eventIDs  map[string]string // message id -> message event id
	logger    *slog.Logger
}

// New creates a reconciler for one conversation, seeded from whatever that
// conversation already has persisted so a resumed conversation does not
// re-emit historical events.
func New(conversationID string, conversations *store.ConversationStore, eventStore *store.EventStore, events EventSink, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Reconciler{
		conversationID: conversationID,
		conversations:  conversations,
		events:         events,
		lastSaved:      make(map[string]string),
		eventIDs:       make(map[string]string),
		logger: logger.With(
			"component", "reconciler",
			"conversation_id", conversationID),
	}

	for _, msg := range conversations.GetMessages(conversationID) {
		r.lastSaved[msg.ID] = msg.Content
	}
	for _, event := range eventStore.GetEvents(conversationID) {
		if event.Type == store.EventTypeUserMessage || event.Type == store.EventTypeAssistantMessage {
			r.eventIDs[event.MessageID] = event.ID
		}
	}
	return r
}

// Observe processes one snapshot of the live message list, in list order so
// event ordering stays deterministic when several messages change in the same
// tick. It is safe to call with overlapping or identical snapshots; unchanged
// messages produce no writes. Returns how many events were created and how
// many updated.
func (r *Reconciler) Observe(messages []LiveMessage) (created, updated int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, msg := range messages {
		if msg.Kind != "" && msg.Kind != KindText {
			continue
		}
		if last, seen := r.lastSaved[msg.ID]; seen && last == msg.Content {
			continue
		}

		// A streaming assistant message starts life as an empty placeholder.
		// Persisting it would create a spurious empty event, and recording it
		// in lastSaved would make the first real content look unchanged.
		if msg.Role == store.RoleAssistant && msg.Content == "" {
			continue
		}

		r.conversations.UpsertMessage(r.conversationID, store.Message{
			ID:      msg.ID,
			Role:    msg.Role,
			Content: msg.Content,
		})
		r.lastSaved[msg.ID] = msg.Content

		if strings.TrimSpace(msg.Content) == "" {
			continue
		}

		switch msg.Role {
		case store.RoleUser:
			// User messages do not stream; one event per message id, ever.
			if _, exists := r.eventIDs[msg.ID]; exists {
				continue
			}
			event, ok := r.events.AddEvent(r.conversationID, store.Event{
				Type:      store.EventTypeUserMessage,
				MessageID: msg.ID,
				Content:   msg.Content,
			})
			r.eventIDs[msg.ID] = event.ID
			if ok {
				created++
			}

		case store.RoleAssistant:
			if eventID, exists := r.eventIDs[msg.ID]; exists {
				content := msg.Content
				if r.events.UpdateEvent(r.conversationID, eventID, store.EventUpdate{Content: &content}) {
					updated++
				}
				continue
			}
			event, ok := r.events.AddEvent(r.conversationID, store.Event{
				Type:      store.EventTypeAssistantMessage,
				MessageID: msg.ID,
				Content:   msg.Content,
			})
			r.eventIDs[msg.ID] = event.ID
			if ok {
				created++
			}
		}
	}

	if created > 0 || updated > 0 {
		r.logger.Debug("snapshot reconciled", "created", created, "updated", updated)
	}
	return created, updated
}
