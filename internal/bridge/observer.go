// ABOUTME: Routes observed tool-call status updates to per-invocation trackers
// ABOUTME: A dedupe cache swallows redelivered terminal statuses

package bridge

import (
	"log/slog"
	"sync"
	"time"

	"github.com/2389/a2a-bridge/internal/dedupe"
)

const (
	// completedTTL bounds how long a finished actionID is remembered for
	// duplicate suppression.
	completedTTL = 10 * time.Minute
	// completedMax caps the dedupe cache size.
	completedMax = 1000
)

// Observer owns the live trackers, one per in-flight invocation, keyed by
// actionID. Terminal statuses retire the tracker; redeliveries of a terminal
// status for a retired actionID are dropped via the dedupe cache rather than
// spawning a fresh tracker and a spurious event pair.
type Observer struct {
	mu        sync.Mutex
	trackers  map[string]*Tracker
	events    EventSink
	completed *dedupe.Cache
	logger    *slog.Logger
}

// NewObserver creates an observer. Pass nil logger for default.
func NewObserver(events EventSink, logger *slog.Logger) *Observer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Observer{
		trackers:  make(map[string]*Tracker),
		events:    events,
		completed: dedupe.New(completedTTL, completedMax),
		logger:    logger.With("component", "bridge"),
	}
}

// StatusUpdate is one observed transition of a tool invocation.
type StatusUpdate struct {
	ActionID  string // empty on the first observation of a new invocation
	AgentName string
	Task      string
	Status    Status
	Result    any
}

// Observe feeds a status update to the invocation's tracker, creating the
// tracker on first sight. Returns the (possibly generated) actionID so the
// caller can correlate subsequent updates.
func (o *Observer) Observe(conversationID string, update StatusUpdate) string {
	o.mu.Lock()
	defer o.mu.Unlock()

	if update.ActionID != "" && o.completed.Check(update.ActionID) {
		o.logger.Debug("status update for retired invocation dropped",
			"action_id", update.ActionID, "status", update.Status)
		return update.ActionID
	}

	tracker, ok := o.trackers[update.ActionID]
	if !ok {
		tracker = NewTracker(conversationID, update.ActionID, update.AgentName, update.Task, o.events, o.logger)
		o.trackers[tracker.ActionID()] = tracker
	}

	tracker.Observe(update.Status, update.Result)

	if tracker.Done() {
		delete(o.trackers, tracker.ActionID())
		o.completed.Mark(tracker.ActionID())
	}
	return tracker.ActionID()
}

// Close releases the dedupe cache's background goroutine.
func (o *Observer) Close() {
	o.completed.Close()
}
