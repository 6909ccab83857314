// ABOUTME: Tests for the call/response tracker and status observer
// ABOUTME: Verifies edge-triggered logging and actionId correlation

package bridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/a2a-bridge/internal/store"
)

func TestTracker_CallResponseCorrelation(t *testing.T) {
	events := store.NewEventStore(nil)
	tracker := NewTracker("conv-1", "", "weather", "forecast for Berlin", events, nil)

	tracker.Observe(StatusPending, nil)
	assert.Zero(t, events.GetEventCount("conv-1"), "pending logs nothing")

	tracker.Observe(StatusExecuting, nil)
	tracker.Observe(StatusExecuting, nil) // level-triggered repeat
	tracker.Observe(StatusComplete, "sunny, 21C")

	tasks := events.GetTasks("conv-1")
	require.Len(t, tasks, 2, "exactly one call and one response")

	call, response := tasks[0], tasks[1]
	assert.Equal(t, store.EventTypeA2ACall, call.Type)
	assert.Equal(t, store.EventTypeA2AResponse, response.Type)
	assert.Equal(t, call.ActionID, response.ActionID)
	assert.Equal(t, "weather", call.AgentName)
	assert.Equal(t, "forecast for Berlin", call.Task)
	assert.Equal(t, "sunny, 21C", response.Result)
	assert.Equal(t, store.ResponseSuccess, response.Status)
	assert.GreaterOrEqual(t, response.DurationMs, int64(0))
}

func TestTracker_FailedInvocation(t *testing.T) {
	events := store.NewEventStore(nil)
	tracker := NewTracker("conv-1", "act-1", "weather", "forecast", events, nil)

	tracker.Observe(StatusExecuting, nil)
	tracker.Observe(StatusFailed, map[string]any{"error": "upstream timeout"})

	tasks := events.GetTasks("conv-1")
	require.Len(t, tasks, 2)
	assert.Equal(t, store.ResponseError, tasks[1].Status)
	assert.Contains(t, tasks[1].Result, "upstream timeout")
	assert.Equal(t, "act-1", tasks[1].ActionID, "provided actionId is kept")
}

func TestTracker_IgnoresObservationsAfterTerminal(t *testing.T) {
	events := store.NewEventStore(nil)
	tracker := NewTracker("conv-1", "", "weather", "forecast", events, nil)

	tracker.Observe(StatusExecuting, nil)
	tracker.Observe(StatusComplete, "done")
	tracker.Observe(StatusComplete, "done again")
	tracker.Observe(StatusExecuting, nil)

	assert.Equal(t, 2, events.GetTaskCount("conv-1"))
	assert.True(t, tracker.Done())
}

func TestTracker_CompleteWithoutExecuting(t *testing.T) {
	events := store.NewEventStore(nil)
	tracker := NewTracker("conv-1", "", "weather", "forecast", events, nil)

	// Some upstreams skip straight to terminal; the response is still logged
	// with a zero duration, without a matching call.
	tracker.Observe(StatusComplete, "cached")

	tasks := events.GetTasks("conv-1")
	require.Len(t, tasks, 1)
	assert.Equal(t, store.EventTypeA2AResponse, tasks[0].Type)
	assert.Zero(t, tasks[0].DurationMs)
}

func TestFormatResult(t *testing.T) {
	assert.Equal(t, "plain text", formatResult("plain text"))
	assert.Equal(t, "", formatResult(nil))

	structured := formatResult(map[string]any{"temp": 21})
	assert.Contains(t, structured, `"temp": 21`)
}

func TestObserver_GeneratesAndReusesActionID(t *testing.T) {
	events := store.NewEventStore(nil)
	o := NewObserver(events, nil)
	defer o.Close()

	actionID := o.Observe("conv-1", StatusUpdate{AgentName: "weather", Task: "forecast", Status: StatusExecuting})
	require.NotEmpty(t, actionID)

	got := o.Observe("conv-1", StatusUpdate{ActionID: actionID, AgentName: "weather", Task: "forecast", Status: StatusComplete, Result: "sunny"})
	assert.Equal(t, actionID, got)

	tasks := events.GetTasks("conv-1")
	require.Len(t, tasks, 2)
	assert.Equal(t, actionID, tasks[0].ActionID)
	assert.Equal(t, actionID, tasks[1].ActionID)
}

func TestObserver_DropsRedeliveredTerminalStatus(t *testing.T) {
	events := store.NewEventStore(nil)
	o := NewObserver(events, nil)
	defer o.Close()

	actionID := o.Observe("conv-1", StatusUpdate{AgentName: "weather", Task: "forecast", Status: StatusExecuting})
	o.Observe("conv-1", StatusUpdate{ActionID: actionID, Status: StatusComplete, Result: "sunny"})

	// The upstream redelivers the terminal status; no new tracker, no events.
	o.Observe("conv-1", StatusUpdate{ActionID: actionID, Status: StatusComplete, Result: "sunny"})
	assert.Equal(t, 2, events.GetTaskCount("conv-1"))
}

func TestObserver_ConcurrentInvocationsStayDistinct(t *testing.T) {
	events := store.NewEventStore(nil)
	o := NewObserver(events, nil)
	defer o.Close()

	a := o.Observe("conv-1", StatusUpdate{AgentName: "weather", Task: "forecast", Status: StatusExecuting})
	b := o.Observe("conv-1", StatusUpdate{AgentName: "activities", Task: "things to do", Status: StatusExecuting})
	require.NotEqual(t, a, b)

	o.Observe("conv-1", StatusUpdate{ActionID: b, Status: StatusComplete, Result: "museum day"})
	o.Observe("conv-1", StatusUpdate{ActionID: a, Status: StatusComplete, Result: "rain"})

	assert.Equal(t, 4, events.GetTaskCount("conv-1"))
}
