// ABOUTME: Tests for EventStore
// ABOUTME: Covers message dedup, in-place updates, task filtering, and clears

package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventStore_AddEvent_AssignsIDAndTimestamp(t *testing.T) {
	s := NewEventStore(nil)

	event, ok := s.AddEvent("conv-1", Event{Type: EventTypeUserMessage, MessageID: "m1", Content: "hi"})
	require.True(t, ok)
	assert.NotEmpty(t, event.ID)
	assert.NotEmpty(t, event.Timestamp)
	assert.Equal(t, "conv-1", event.ConversationID)
}

func TestEventStore_AddEvent_DedupsMessageEvents(t *testing.T) {
	s := NewEventStore(nil)

	first, ok := s.AddEvent("conv-1", Event{Type: EventTypeUserMessage, MessageID: "m1", Content: "hi"})
	require.True(t, ok)

	dup, ok := s.AddEvent("conv-1", Event{Type: EventTypeUserMessage, MessageID: "m1", Content: "hi again"})
	assert.False(t, ok, "duplicate message event must be discarded")
	assert.Equal(t, first.ID, dup.ID)
	assert.Equal(t, 1, s.GetEventCount("conv-1"))

	// Same messageId in a different conversation is not a duplicate
	_, ok = s.AddEvent("conv-2", Event{Type: EventTypeUserMessage, MessageID: "m1", Content: "hi"})
	assert.True(t, ok)

	// Same messageId with a different type is not a duplicate either
	_, ok = s.AddEvent("conv-1", Event{Type: EventTypeAssistantMessage, MessageID: "m1", Content: "hello"})
	assert.True(t, ok)
}

func TestEventStore_AddEvent_NeverDedupsCalls(t *testing.T) {
	s := NewEventStore(nil)

	for i := 0; i < 2; i++ {
		_, ok := s.AddEvent("conv-1", Event{
			Type:      EventTypeA2ACall,
			ActionID:  "act-1",
			AgentName: "weather",
			Task:      "forecast for Berlin",
		})
		assert.True(t, ok, "repeated calls are legitimate and distinct")
	}
	assert.Equal(t, 2, s.GetEventCount("conv-1"))
}

func TestEventStore_UpdateEvent(t *testing.T) {
	s := NewEventStore(nil)

	event, _ := s.AddEvent("conv-1", Event{Type: EventTypeAssistantMessage, MessageID: "m1", Content: "Hel"})

	content := "Hello"
	require.True(t, s.UpdateEvent("conv-1", event.ID, EventUpdate{Content: &content}))

	events := s.GetEvents("conv-1")
	require.Len(t, events, 1)
	assert.Equal(t, "Hello", events[0].Content)
	assert.Equal(t, EventTypeAssistantMessage, events[0].Type, "type discriminant must be preserved")

	assert.False(t, s.UpdateEvent("conv-1", "evt_missing", EventUpdate{Content: &content}))
	assert.False(t, s.UpdateEvent("conv_missing", event.ID, EventUpdate{Content: &content}))
}

func TestEventStore_GetEventsByType(t *testing.T) {
	s := NewEventStore(nil)

	s.AddEvent("conv-1", Event{Type: EventTypeUserMessage, MessageID: "m1", Content: "hi"})
	s.AddEvent("conv-1", Event{Type: EventTypeAssistantMessage, MessageID: "m2", Content: "hello"})
	s.AddEvent("conv-1", Event{Type: EventTypeError, ErrorMessage: "boom"})

	errs := s.GetEventsByType("conv-1", EventTypeError)
	require.Len(t, errs, 1)
	assert.Equal(t, "boom", errs[0].ErrorMessage)
}

func TestEventStore_GetTasks_PreservesOrder(t *testing.T) {
	s := NewEventStore(nil)

	s.AddEvent("conv-1", Event{Type: EventTypeUserMessage, MessageID: "m1", Content: "plan my weekend"})
	s.AddEvent("conv-1", Event{Type: EventTypeA2ACall, ActionID: "act-1", AgentName: "weather", Task: "forecast"})
	s.AddEvent("conv-1", Event{Type: EventTypeAssistantMessage, MessageID: "m2", Content: "checking..."})
	s.AddEvent("conv-1", Event{Type: EventTypeA2AResponse, ActionID: "act-1", AgentName: "weather", Task: "forecast", Result: "sunny", Status: ResponseSuccess})
	s.AddEvent("conv-1", Event{Type: EventTypeError, ErrorMessage: "unrelated"})

	tasks := s.GetTasks("conv-1")
	require.Len(t, tasks, 2)
	assert.Equal(t, EventTypeA2ACall, tasks[0].Type)
	assert.Equal(t, EventTypeA2AResponse, tasks[1].Type)
	assert.Equal(t, tasks[0].ActionID, tasks[1].ActionID)

	assert.Equal(t, 2, s.GetTaskCount("conv-1"))
	assert.Equal(t, 5, s.GetEventCount("conv-1"))
}

func TestEventStore_ClearEvents(t *testing.T) {
	s := NewEventStore(nil)

	s.AddEvent("conv-1", Event{Type: EventTypeUserMessage, MessageID: "m1"})
	s.AddEvent("conv-2", Event{Type: EventTypeUserMessage, MessageID: "m1"})

	s.ClearEvents("conv-1")
	assert.Empty(t, s.GetEvents("conv-1"))
	assert.Len(t, s.GetEvents("conv-2"), 1)

	s.ClearAll()
	assert.Empty(t, s.GetEvents("conv-2"))
}

func TestEventStore_GetEvents_MissingConversation(t *testing.T) {
	s := NewEventStore(nil)
	assert.Empty(t, s.GetEvents("conv_missing"))
	assert.Zero(t, s.GetEventCount("conv_missing"))
}
