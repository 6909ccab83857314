// ABOUTME: HTTP handlers for agent registration and discovery
// ABOUTME: Maps registry errors onto 409/400/404 per the error taxonomy

package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/2389/a2a-bridge/internal/a2a"
	"github.com/2389/a2a-bridge/internal/registry"
)

// AgentURLRequest is the JSON request body for POST and DELETE /agents.
type AgentURLRequest struct {
	URL string `json:"url"`
}

// ListAgentsResponse is the JSON response for GET /agents.
type ListAgentsResponse struct {
	Agents []a2a.AgentCard `json:"agents"`
	Count  int             `json:"count"`
}

// RegisterAgentResponse is the JSON response for POST /agents.
type RegisterAgentResponse struct {
	Message string        `json:"message"`
	Agent   a2a.AgentCard `json:"agent"`
}

// RemoveAgentResponse is the JSON response for DELETE /agents.
type RemoveAgentResponse struct {
	Message string `json:"message"`
	URL     string `json:"url"`
}

// handleAgents handles GET, POST, and DELETE /agents.
func (g *Gateway) handleAgents(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		entries := g.registry.List(r.Context())
		cards := make([]a2a.AgentCard, 0, len(entries))
		for _, entry := range entries {
			card := *entry.Card
			if card.URL == "" {
				card.URL = entry.URL
			}
			cards = append(cards, card)
		}
		g.writeJSON(w, http.StatusOK, ListAgentsResponse{Agents: cards, Count: len(cards)})

	case http.MethodPost:
		var req AgentURLRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
			g.sendJSONError(w, http.StatusBadRequest, "body must contain url")
			return
		}

		card, err := g.registry.Add(r.Context(), req.URL)
		switch {
		case errors.Is(err, registry.ErrAlreadyRegistered):
			g.sendJSONError(w, http.StatusConflict, "agent already registered")
			return
		case err != nil:
			g.sendJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		g.metrics.agentRegistrations.Inc()
		g.writeJSON(w, http.StatusOK, RegisterAgentResponse{
			Message: fmt.Sprintf("agent %q registered", card.Name),
			Agent:   *card,
		})

	case http.MethodDelete:
		var req AgentURLRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
			g.sendJSONError(w, http.StatusBadRequest, "body must contain url")
			return
		}

		if err := g.registry.Remove(req.URL); err != nil {
			g.sendJSONError(w, http.StatusNotFound, "agent not found")
			return
		}
		g.writeJSON(w, http.StatusOK, RemoveAgentResponse{
			Message: "agent removed",
			URL:     registry.Normalize(req.URL),
		})

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}
