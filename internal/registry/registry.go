// ABOUTME: Registry of remote agent base URLs with card validation on entry
// ABOUTME: URLs are normalized so the same agent cannot register twice

package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/2389/a2a-bridge/internal/a2a"
)

// ErrAlreadyRegistered is returned when the normalized URL is already present
var ErrAlreadyRegistered = errors.New("agent already registered")

// ErrNotFound is returned when removing a URL that is not registered
var ErrNotFound = errors.New("agent not found")

// ErrInvalidCard is returned when a fetched card fails validation
var ErrInvalidCard = errors.New("invalid agent card")

// CardFetcher is the discovery dependency; satisfied by *a2a.Client.
type CardFetcher interface {
	FetchCard(ctx context.Context, baseURL string) (*a2a.AgentCard, error)
}

// Registry tracks the set of known remote agents by normalized base URL.
// Membership changes are synchronous set operations; the card fetch that
// gates registration happens before the lock is taken, so a slow agent never
// stalls other registry calls.
type Registry struct {
	mu      sync.RWMutex
	agents  map[string]struct{}
	fetcher CardFetcher
	logger  *slog.Logger
}

// New creates an empty registry. Pass nil logger for default.
func New(fetcher CardFetcher, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		agents:  make(map[string]struct{}),
		fetcher: fetcher,
		logger:  logger.With("component", "registry"),
	}
}

// Normalize canonicalizes an agent base URL: one trailing slash is stripped
// and a missing scheme defaults to http://.
func Normalize(url string) string {
	url = strings.TrimSuffix(url, "/")
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = "http://" + url
	}
	return url
}

// Add validates the agent at the given URL and registers it. The card must
// be reachable and carry a non-empty name and description. Returns the parsed
// card on success, ErrAlreadyRegistered if the normalized URL is present, or
// an error wrapping ErrInvalidCard when validation fails.
func (r *Registry) Add(ctx context.Context, url string) (*a2a.AgentCard, error) {
	normalized := Normalize(url)

	r.mu.RLock()
	_, exists := r.agents[normalized]
	r.mu.RUnlock()
	if exists {
		return nil, ErrAlreadyRegistered
	}

	card, err := r.fetcher.FetchCard(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCard, err)
	}
	if card.Name == "" || card.Description == "" {
		return nil, fmt.Errorf("%w: card must have a name and description", ErrInvalidCard)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// Re-check: another registration may have won while we were fetching.
	if _, exists := r.agents[normalized]; exists {
		return nil, ErrAlreadyRegistered
	}
	r.agents[normalized] = struct{}{}

	r.logger.Info("agent registered", "url", normalized, "name", card.Name)
	return card, nil
}

// Remove unregisters the agent at the given URL.
func (r *Registry) Remove(url string) error {
	normalized := Normalize(url)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.agents[normalized]; !exists {
		return ErrNotFound
	}
	delete(r.agents, normalized)

	r.logger.Info("agent removed", "url", normalized)
	return nil
}

// URLs returns the registered base URLs, sorted for reproducible reads.
func (r *Registry) URLs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	urls := make([]string, 0, len(r.agents))
	for url := range r.agents {
		urls = append(urls, url)
	}
	sort.Strings(urls)
	return urls
}

// Entry pairs a registered URL with its most recently fetched card.
type Entry struct {
	URL  string
	Card *a2a.AgentCard
}

// List re-fetches every registered agent's card, best effort. A fetch failure
// degrades that entry to a placeholder card rather than failing the call, so
// one offline agent cannot hide the rest.
func (r *Registry) List(ctx context.Context) []Entry {
	urls := r.URLs()

	entries := make([]Entry, 0, len(urls))
	for _, url := range urls {
		card, err := r.fetcher.FetchCard(ctx, url)
		if err != nil {
			r.logger.Warn("agent card fetch failed during listing", "url", url, "error", err)
			card = &a2a.AgentCard{
				Name:        "Unknown Agent",
				Description: "Could not fetch agent card",
				URL:         url,
			}
		}
		entries = append(entries, Entry{URL: url, Card: card})
	}
	return entries
}
