// ABOUTME: HTTP handlers for the conversation, message, and event surface
// ABOUTME: JSON request/response bodies; stores return booleans, handlers map to status codes

package gateway

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/2389/a2a-bridge/internal/bridge"
	"github.com/2389/a2a-bridge/internal/reconcile"
	"github.com/2389/a2a-bridge/internal/store"
)

// ConversationResponse is the JSON envelope for a single conversation.
type ConversationResponse struct {
	Conversation store.Conversation `json:"conversation"`
}

// ListConversationsResponse is the JSON response for GET /conversations.
type ListConversationsResponse struct {
	Conversations []store.Conversation `json:"conversations"`
}

// UpdateConversationRequest is the JSON request body for PATCH /conversations/{id}.
// MessageCount is accepted for wire compatibility but ignored: the count is
// derived from the message list and never independently settable.
type UpdateConversationRequest struct {
	Name         *string `json:"name,omitempty"`
	MessageCount *int    `json:"messageCount,omitempty"`
}

// MessagesResponse is the JSON response for GET /conversations/{id}/messages.
type MessagesResponse struct {
	Messages []store.Message `json:"messages"`
}

// PostMessagesRequest is the JSON request body for POST /conversations/{id}/messages.
// Exactly one of Message or Messages is set; Upsert selects replace-by-id
// semantics for the single-message form.
type PostMessagesRequest struct {
	Message  *store.Message  `json:"message,omitempty"`
	Messages []store.Message `json:"messages,omitempty"`
	Upsert   bool            `json:"upsert,omitempty"`
}

// EventsResponse is the JSON response for GET /conversations/{id}/events.
type EventsResponse struct {
	Events []store.Event `json:"events"`
	Count  int           `json:"count"`
}

// PostEventRequest is the JSON request body for POST /conversations/{id}/events.
type PostEventRequest struct {
	Event store.Event `json:"event"`
}

// PatchEventRequest is the JSON request body for PATCH /conversations/{id}/events.
type PatchEventRequest struct {
	EventID string       `json:"eventId"`
	Updates EventUpdates `json:"updates"`
}

// EventUpdates mirrors store.EventUpdate on the wire.
type EventUpdates struct {
	Content    *string               `json:"content,omitempty"`
	Result     *string               `json:"result,omitempty"`
	DurationMs *int64                `json:"durationMs,omitempty"`
	Status     *store.ResponseStatus `json:"status,omitempty"`
}

// SyncRequest is the JSON request body for POST /conversations/{id}/sync:
// one snapshot of the live session's message list.
type SyncRequest struct {
	Messages []SyncMessage `json:"messages"`
}

// SyncMessage is one live message in a sync snapshot.
type SyncMessage struct {
	ID      string `json:"id"`
	Role    string `json:"role"`
	Content string `json:"content"`
	Kind    string `json:"kind,omitempty"`
}

// SyncResponse reports what a snapshot changed.
type SyncResponse struct {
	Success bool `json:"success"`
	Created int  `json:"created"`
	Updated int  `json:"updated"`
}

// ActionStatusRequest is the JSON request body for POST /conversations/{id}/actions:
// one observed status transition of a tool invocation.
type ActionStatusRequest struct {
	ActionID  string `json:"actionId,omitempty"`
	AgentName string `json:"agentName"`
	Task      string `json:"task"`
	Status    string `json:"status"`
	Result    any    `json:"result,omitempty"`
}

// handleConversations handles /conversations (list and create).
func (g *Gateway) handleConversations(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		g.writeJSON(w, http.StatusOK, ListConversationsResponse{Conversations: g.conversations.List()})
	case http.MethodPost:
		conv := g.conversations.Create()
		g.metrics.conversationsCreated.Inc()
		g.writeJSON(w, http.StatusCreated, ConversationResponse{Conversation: conv})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handleConversationRoutes dispatches /conversations/{id} and its subroutes.
func (g *Gateway) handleConversationRoutes(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/conversations/")
	id, sub, _ := strings.Cut(rest, "/")
	if id == "" {
		http.NotFound(w, r)
		return
	}

	switch sub {
	case "":
		g.handleConversation(w, r, id)
	case "messages":
		g.handleMessages(w, r, id)
	case "events":
		g.handleEvents(w, r, id)
	case "events/stream":
		g.handleEventStream(w, r, id)
	case "sync":
		g.handleSync(w, r, id)
	case "actions":
		g.handleActions(w, r, id)
	default:
		http.NotFound(w, r)
	}
}

// handleConversation handles PATCH and DELETE /conversations/{id}.
func (g *Gateway) handleConversation(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodGet:
		conv, ok := g.conversations.Get(id)
		if !ok {
			g.sendJSONError(w, http.StatusNotFound, "conversation not found")
			return
		}
		g.writeJSON(w, http.StatusOK, ConversationResponse{Conversation: conv})

	case http.MethodPatch:
		var req UpdateConversationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			g.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		conv, ok := g.conversations.Update(id, store.UpdateParams{Name: req.Name})
		if !ok {
			g.sendJSONError(w, http.StatusNotFound, "conversation not found")
			return
		}
		g.writeJSON(w, http.StatusOK, ConversationResponse{Conversation: conv})

	case http.MethodDelete:
		if !g.conversations.Delete(id) {
			g.sendJSONError(w, http.StatusNotFound, "conversation not found")
			return
		}
		// Cascade: the conversation owns its events and reconciler state.
		g.events.ClearEvents(id)
		g.dropReconciler(id)
		g.writeJSON(w, http.StatusOK, map[string]bool{"success": true})

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handleMessages handles GET and POST /conversations/{id}/messages.
func (g *Gateway) handleMessages(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodGet:
		g.writeJSON(w, http.StatusOK, MessagesResponse{Messages: g.conversations.GetMessages(id)})

	case http.MethodPost:
		var req PostMessagesRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			g.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		switch {
		case req.Message != nil:
			var ok bool
			if req.Upsert {
				ok = g.conversations.UpsertMessage(id, *req.Message)
			} else {
				ok = g.conversations.AddMessage(id, *req.Message)
			}
			if !ok {
				g.sendJSONError(w, http.StatusNotFound, "conversation not found")
				return
			}
			g.metrics.messagesUpserted.Inc()
			g.writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": req.Message})

		case len(req.Messages) > 0:
			for _, msg := range req.Messages {
				if !g.conversations.AddMessage(id, msg) {
					g.sendJSONError(w, http.StatusNotFound, "conversation not found")
					return
				}
				g.metrics.messagesUpserted.Inc()
			}
			g.writeJSON(w, http.StatusOK, map[string]any{"success": true, "count": len(req.Messages)})

		default:
			g.sendJSONError(w, http.StatusBadRequest, "body must contain message or messages")
		}

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handleEvents handles GET, POST, and PATCH /conversations/{id}/events.
func (g *Gateway) handleEvents(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodGet:
		var events []store.Event
		switch filter := r.URL.Query().Get("filter"); filter {
		case "":
			events = g.events.GetEvents(id)
		case "tasks":
			events = g.events.GetTasks(id)
		default:
			events = g.events.GetEventsByType(id, store.EventType(filter))
		}
		g.writeJSON(w, http.StatusOK, EventsResponse{Events: events, Count: len(events)})

	case http.MethodPost:
		var req PostEventRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			g.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if req.Event.ConversationID != "" && req.Event.ConversationID != id {
			g.sendJSONError(w, http.StatusBadRequest,
				fmt.Sprintf("event conversationId %q does not match path", req.Event.ConversationID))
			return
		}
		if _, ok := g.conversations.Get(id); !ok {
			g.sendJSONError(w, http.StatusNotFound, "conversation not found")
			return
		}
		event, added := g.eventLog.AddEvent(id, req.Event)
		if added {
			g.metrics.eventsStored.Inc()
		}
		g.writeJSON(w, http.StatusOK, map[string]any{"success": true, "event": event})

	case http.MethodPatch:
		var req PatchEventRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			g.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		ok := g.eventLog.UpdateEvent(id, req.EventID, store.EventUpdate{
			Content:    req.Updates.Content,
			Result:     req.Updates.Result,
			DurationMs: req.Updates.DurationMs,
			Status:     req.Updates.Status,
		})
		if !ok {
			g.sendJSONError(w, http.StatusNotFound, "event not found")
			return
		}
		g.writeJSON(w, http.StatusOK, map[string]bool{"success": true})

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handleSync handles POST /conversations/{id}/sync: one snapshot of the live
// message list, reconciled into store mutations.
func (g *Gateway) handleSync(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req SyncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		g.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if _, ok := g.conversations.Get(id); !ok {
		g.sendJSONError(w, http.StatusNotFound, "conversation not found")
		return
	}

	live := make([]reconcile.LiveMessage, 0, len(req.Messages))
	for _, msg := range req.Messages {
		live = append(live, reconcile.LiveMessage{
			ID:      msg.ID,
			Role:    store.MessageRole(msg.Role),
			Content: msg.Content,
			Kind:    reconcile.MessageKind(msg.Kind),
		})
	}

	created, updated := g.reconcilerFor(id).Observe(live)
	for i := 0; i < created; i++ {
		g.metrics.eventsStored.Inc()
	}
	g.writeJSON(w, http.StatusOK, SyncResponse{Success: true, Created: created, Updated: updated})
}

// handleActions handles POST /conversations/{id}/actions: observed tool-call
// status transitions, fed into the bridge state machine.
func (g *Gateway) handleActions(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req ActionStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		g.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if _, ok := g.conversations.Get(id); !ok {
		g.sendJSONError(w, http.StatusNotFound, "conversation not found")
		return
	}

	status := bridgeStatus(req.Status)
	if status == "" {
		g.sendJSONError(w, http.StatusBadRequest, fmt.Sprintf("unknown status %q", req.Status))
		return
	}

	actionID := g.observer.Observe(id, bridge.StatusUpdate{
		ActionID:  req.ActionID,
		AgentName: req.AgentName,
		Task:      req.Task,
		Status:    status,
		Result:    req.Result,
	})
	g.writeJSON(w, http.StatusOK, map[string]any{"success": true, "actionId": actionID})
}

// bridgeStatus validates a wire status string, returning "" when unknown.
func bridgeStatus(s string) bridge.Status {
	switch status := bridge.Status(s); status {
	case bridge.StatusPending, bridge.StatusExecuting, bridge.StatusComplete, bridge.StatusFailed:
		return status
	}
	return ""
}

func (g *Gateway) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		g.logger.Error("failed to encode response", "error", err)
	}
}

func (g *Gateway) sendJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
