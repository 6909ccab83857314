// ABOUTME: Per-invocation state machine logging agent call/response events
// ABOUTME: Edge-triggered so repeated status observations log exactly once

package bridge

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/2389/a2a-bridge/internal/store"
)

// Status is an observed tool invocation status as reported by the
// orchestration layer.
type Status string

const (
	StatusPending   Status = "pending"
	StatusExecuting Status = "executing"
	StatusComplete  Status = "complete"
	StatusFailed    Status = "failed"
)

// Terminal reports whether the status ends the invocation.
func (s Status) Terminal() bool {
	return s == StatusComplete || s == StatusFailed
}

// EventSink is what the bridge needs from the event layer.
type EventSink interface {
	AddEvent(conversationID string, event store.Event) (store.Event, bool)
}

// Tracker follows one tool invocation through idle → executing →
// complete|failed. Entry into executing logs an a2a_call event exactly once,
// even if "executing" is reported on several consecutive observations; the
// terminal transition logs an a2a_response carrying the elapsed duration.
// Both events share the tracker's actionID so the UI can correlate them.
type Tracker struct {
	conversationID string
	agentName      string
	task           string
	actionID       string

	events    EventSink
	logger    *slog.Logger
	started   time.Time
	executing bool
	done      bool
}

// NewTracker creates a tracker for a single invocation. An empty actionID
// gets a generated one, stable for the tracker's lifetime.
func NewTracker(conversationID, actionID, agentName, task string, events EventSink, logger *slog.Logger) *Tracker {
	if actionID == "" {
		actionID = "action_" + uuid.NewString()[:8]
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{
		conversationID: conversationID,
		agentName:      agentName,
		task:           task,
		actionID:       actionID,
		events:         events,
		logger:         logger.With("component", "bridge", "action_id", actionID),
	}
}

// ActionID returns the invocation's correlation id.
func (t *Tracker) ActionID() string {
	return t.actionID
}

// Done reports whether the invocation has reached a terminal state.
func (t *Tracker) Done() bool {
	return t.done
}

// Observe feeds one status observation into the state machine. Observations
// after the terminal transition are ignored.
func (t *Tracker) Observe(status Status, result any) {
	if t.done {
		return
	}

	switch {
	case status == StatusExecuting && !t.executing:
		t.executing = true
		t.started = time.Now()
		t.events.AddEvent(t.conversationID, store.Event{
			Type:      store.EventTypeA2ACall,
			ActionID:  t.actionID,
			AgentName: t.agentName,
			Task:      t.task,
		})
		t.logger.Debug("delegation started", "agent", t.agentName)

	case status.Terminal():
		t.done = true
		var durationMs int64
		if !t.started.IsZero() {
			durationMs = time.Since(t.started).Milliseconds()
		}
		responseStatus := store.ResponseSuccess
		if status == StatusFailed {
			responseStatus = store.ResponseError
		}
		t.events.AddEvent(t.conversationID, store.Event{
			Type:       store.EventTypeA2AResponse,
			ActionID:   t.actionID,
			AgentName:  t.agentName,
			Task:       t.task,
			Result:     formatResult(result),
			DurationMs: durationMs,
			Status:     responseStatus,
		})
		t.logger.Debug("delegation finished",
			"agent", t.agentName,
			"status", status,
			"duration_ms", durationMs)
	}
}

// formatResult renders an invocation result for display. Strings pass
// through unchanged; anything else is serialized as indented JSON.
func formatResult(result any) string {
	switch v := result.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(data)
	}
}
