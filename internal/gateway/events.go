// ABOUTME: SSE endpoint streaming a conversation's events as they persist
// ABOUTME: Backed by the broadcaster; slow clients drop events, never block writes

package gateway

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// handleEventStream handles GET /conversations/{id}/events/stream. Every
// event persisted to the conversation after the subscription starts is pushed
// as one SSE message named after the event type. Clients catch up on history
// via GET /conversations/{id}/events first.
func (g *Gateway) handleEventStream(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := g.conversations.Get(id); !ok {
		g.sendJSONError(w, http.StatusNotFound, "conversation not found")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		g.logger.Error("streaming not supported")
		g.sendJSONError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	events, subID := g.broadcaster.Subscribe(r.Context(), id)
	g.logger.Debug("event stream opened", "conversation_id", id, "sub_id", subID)

	g.writeSSEEvent(w, "connected", map[string]string{"conversationId": id})
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			g.writeSSEEvent(w, string(event.Type), event)
			flusher.Flush()
		}
	}
}

func (g *Gateway) writeSSEEvent(w http.ResponseWriter, event string, data any) {
	dataJSON, err := json.Marshal(data)
	if err != nil {
		g.logger.Error("failed to marshal SSE data", "error", err)
		return
	}

	fmt.Fprintf(w, "event: %s\n", event)
	fmt.Fprintf(w, "data: %s\n\n", dataJSON)
}
