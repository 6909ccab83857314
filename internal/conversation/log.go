// ABOUTME: Event log facade pairing persistence with live broadcast
// ABOUTME: Every event write flows through here so subscribers never miss one

package conversation

import (
	"log/slog"

	"github.com/2389/a2a-bridge/internal/store"
)

// Log wraps the event store so that every successful write is also published
// to live subscribers. All event-producing paths (reconciler, bridge, HTTP
// handlers) write through a Log; the store itself stays broadcast-unaware.
type Log struct {
	events      *store.EventStore
	broadcaster *EventBroadcaster
	logger      *slog.Logger
}

// NewLog creates the facade. Pass nil logger for default.
func NewLog(events *store.EventStore, broadcaster *EventBroadcaster, logger *slog.Logger) *Log {
	if logger == nil {
		logger = slog.Default()
	}
	return &Log{
		events:      events,
		broadcaster: broadcaster,
		logger:      logger.With("component", "conversation"),
	}
}

// AddEvent persists the event and, if it was actually stored (not discarded
// as a duplicate), publishes it.
func (l *Log) AddEvent(conversationID string, event store.Event) (store.Event, bool) {
	stored, ok := l.events.AddEvent(conversationID, event)
	if ok {
		l.broadcaster.Publish(stored)
	}
	return stored, ok
}

// UpdateEvent applies the update in place and re-publishes the event with its
// current content so streaming subscribers see the growth.
func (l *Log) UpdateEvent(conversationID, eventID string, update store.EventUpdate) bool {
	if !l.events.UpdateEvent(conversationID, eventID, update) {
		return false
	}
	if event, ok := l.events.GetEvent(conversationID, eventID); ok {
		l.broadcaster.Publish(event)
	}
	return true
}
