// ABOUTME: HTTP client for fetching agent cards from remote A2A agents
// ABOUTME: Timeout-bounded; a slow agent fails discovery instead of hanging it

package a2a

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultTimeout bounds a single card fetch.
const DefaultTimeout = 10 * time.Second

// Client fetches agent cards over HTTP.
type Client struct {
	httpClient *http.Client
}

// NewClient creates a card-fetching client. A zero timeout uses DefaultTimeout.
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
	}
}

// FetchCard retrieves the agent card from {baseURL}/.well-known/agent-card.json.
// The base URL must already be normalized (scheme present, no trailing slash).
func (c *Client) FetchCard(ctx context.Context, baseURL string) (*AgentCard, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+WellKnownPath, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch agent card: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("failed to get agent card: %s - %s", resp.Status, string(body))
	}

	var card AgentCard
	if err := json.NewDecoder(resp.Body).Decode(&card); err != nil {
		return nil, fmt.Errorf("failed to decode agent card: %w", err)
	}

	return &card, nil
}
