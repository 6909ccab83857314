// ABOUTME: In-memory event log per conversation with message-level dedup
// ABOUTME: Events carry a Type discriminant plus per-variant optional fields

package store

import (
	"log/slog"
	"sync"
	"time"
)

// EventType categorizes the kind of event
type EventType string

const (
	EventTypeUserMessage      EventType = "user_message"
	EventTypeAssistantMessage EventType = "assistant_message"
	EventTypeA2ACall          EventType = "a2a_call"
	EventTypeA2AResponse      EventType = "a2a_response"
	EventTypeError            EventType = "error"
)

// ResponseStatus is the outcome of a delegated agent call
type ResponseStatus string

const (
	ResponseSuccess ResponseStatus = "success"
	ResponseError   ResponseStatus = "error"
)

// Event is a record of something that happened in a conversation. One flat
// struct covers all variants; Type selects which optional fields are set.
// Only AssistantMessage content is ever mutated after creation (streaming
// updates); every other variant is append-only.
type Event struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversationId"`
	Type           EventType `json:"type"`
	Timestamp      string    `json:"timestamp"`

	// user_message / assistant_message
	MessageID string `json:"messageId,omitempty"`
	Content   string `json:"content,omitempty"`

	// a2a_call / a2a_response
	ActionID   string         `json:"actionId,omitempty"`
	AgentName  string         `json:"agentName,omitempty"`
	Task       string         `json:"task,omitempty"`
	Result     string         `json:"result,omitempty"`
	DurationMs int64          `json:"durationMs,omitempty"`
	Status     ResponseStatus `json:"status,omitempty"`

	// error
	ErrorMessage   string `json:"errorMessage,omitempty"`
	Details        string `json:"details,omitempty"`
	RelatedEventID string `json:"relatedEventId,omitempty"`
}

// EventUpdate holds the fields updateable after creation. The Type
// discriminant is deliberately absent so an update can never change it.
type EventUpdate struct {
	Content    *string
	Result     *string
	DurationMs *int64
	Status     *ResponseStatus
}

// EventStore owns an ordered, append-mostly event log per conversation.
type EventStore struct {
	mu     sync.RWMutex
	events map[string][]*Event
	logger *slog.Logger
}

// NewEventStore creates an empty store. Pass nil logger for default.
func NewEventStore(logger *slog.Logger) *EventStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventStore{
		events: make(map[string][]*Event),
		logger: logger.With("component", "events"),
	}
}

// AddEvent appends an event to the conversation's log and returns the stored
// event with its generated id and timestamp filled in.
//
// Message-derived events (user_message, assistant_message) are deduplicated
// by (conversation, type, messageId): if such an event already exists the new
// one is silently discarded and the existing event is returned with ok=false.
// This is an at-most-once guard, not an upsert; streaming content updates go
// through UpdateEvent instead. Call and response events are never
// deduplicated; repeated calls to the same agent are legitimate and distinct.
func (s *EventStore) AddEvent(conversationID string, event Event) (Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if event.Type == EventTypeUserMessage || event.Type == EventTypeAssistantMessage {
		for _, existing := range s.events[conversationID] {
			if existing.Type == event.Type && existing.MessageID == event.MessageID {
				s.logger.Debug("duplicate message event discarded",
					"conversation_id", conversationID,
					"message_id", event.MessageID,
					"type", event.Type)
				return *existing, false
			}
		}
	}

	event.ID = newID("evt")
	event.ConversationID = conversationID
	event.Timestamp = time.Now().Format(time.RFC3339Nano)

	stored := event
	s.events[conversationID] = append(s.events[conversationID], &stored)
	return stored, true
}

// UpdateEvent merges the provided fields into the event with the given id.
// Returns false if the conversation or event is not found. Repeated calls
// with the same update are idempotent.
func (s *EventStore) UpdateEvent(conversationID, eventID string, update EventUpdate) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, event := range s.events[conversationID] {
		if event.ID != eventID {
			continue
		}
		if update.Content != nil {
			event.Content = *update.Content
		}
		if update.Result != nil {
			event.Result = *update.Result
		}
		if update.DurationMs != nil {
			event.DurationMs = *update.DurationMs
		}
		if update.Status != nil {
			event.Status = *update.Status
		}
		return true
	}
	return false
}

// GetEvent returns a single event by id within the conversation's log.
func (s *EventStore) GetEvent(conversationID, eventID string) (Event, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, event := range s.events[conversationID] {
		if event.ID == eventID {
			return *event, true
		}
	}
	return Event{}, false
}

// GetEvents returns the full log in insertion order, empty if none.
func (s *EventStore) GetEvents(conversationID string) []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(conversationID, func(*Event) bool { return true })
}

// GetEventsByType filters the log to a single event type.
func (s *EventStore) GetEventsByType(conversationID string, eventType EventType) []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(conversationID, func(e *Event) bool { return e.Type == eventType })
}

// GetTasks filters the log to agent delegation events (calls and responses),
// preserving their original relative order.
func (s *EventStore) GetTasks(conversationID string) []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(conversationID, isTask)
}

// GetEventCount returns the number of events in the conversation's log.
func (s *EventStore) GetEventCount(conversationID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events[conversationID])
}

// GetTaskCount returns the number of delegation events in the log.
func (s *EventStore) GetTaskCount(conversationID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, event := range s.events[conversationID] {
		if isTask(event) {
			count++
		}
	}
	return count
}

// ClearEvents wipes the log for one conversation. Used both for explicit
// clears and as the cascade when a conversation is deleted.
func (s *EventStore) ClearEvents(conversationID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.events, conversationID)
}

// ClearAll wipes every conversation's log.
func (s *EventStore) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = make(map[string][]*Event)
}

// collect returns copies of matching events. Must be called with mu held.
func (s *EventStore) collect(conversationID string, match func(*Event) bool) []Event {
	result := []Event{}
	for _, event := range s.events[conversationID] {
		if match(event) {
			result = append(result, *event)
		}
	}
	return result
}

func isTask(e *Event) bool {
	return e.Type == EventTypeA2ACall || e.Type == EventTypeA2AResponse
}
