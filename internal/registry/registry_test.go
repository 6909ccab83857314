// ABOUTME: Tests for the agent registry
// ABOUTME: Covers URL normalization, duplicate detection, and degraded listing

package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/a2a-bridge/internal/a2a"
)

// mockFetcher implements CardFetcher for testing
type mockFetcher struct {
	cards map[string]*a2a.AgentCard
	errs  map[string]error
	calls []string
}

func (m *mockFetcher) FetchCard(ctx context.Context, baseURL string) (*a2a.AgentCard, error) {
	m.calls = append(m.calls, baseURL)
	if err, ok := m.errs[baseURL]; ok {
		return nil, err
	}
	if card, ok := m.cards[baseURL]; ok {
		return card, nil
	}
	return nil, errors.New("unreachable")
}

func validCard(name string) *a2a.AgentCard {
	return &a2a.AgentCard{Name: name, Description: name + " does things"}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"http://x:9000/", "http://x:9000"},
		{"http://x:9000", "http://x:9000"},
		{"x:9000", "http://x:9000"},
		{"https://agent.example.com/", "https://agent.example.com"},
		{"localhost:9001", "http://localhost:9001"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.input), "input %q", tt.input)
	}
}

func TestRegistry_Add(t *testing.T) {
	fetcher := &mockFetcher{cards: map[string]*a2a.AgentCard{
		"http://x:9000": validCard("Weather Agent"),
	}}
	r := New(fetcher, nil)

	card, err := r.Add(context.Background(), "x:9000/")
	require.NoError(t, err)
	assert.Equal(t, "Weather Agent", card.Name)
	assert.Equal(t, []string{"http://x:9000"}, r.URLs())
}

func TestRegistry_Add_DuplicateAfterNormalization(t *testing.T) {
	fetcher := &mockFetcher{cards: map[string]*a2a.AgentCard{
		"http://x:9000": validCard("Weather Agent"),
	}}
	r := New(fetcher, nil)

	_, err := r.Add(context.Background(), "http://x:9000/")
	require.NoError(t, err)

	for _, variant := range []string{"http://x:9000", "http://x:9000/", "x:9000"} {
		_, err = r.Add(context.Background(), variant)
		assert.ErrorIs(t, err, ErrAlreadyRegistered, "variant %q", variant)
	}
	assert.Len(t, r.URLs(), 1)
}

func TestRegistry_Add_InvalidCard(t *testing.T) {
	fetcher := &mockFetcher{cards: map[string]*a2a.AgentCard{
		"http://noname:9000": {Description: "no name"},
		"http://nodesc:9000": {Name: "No Description"},
	}}
	r := New(fetcher, nil)

	_, err := r.Add(context.Background(), "noname:9000")
	assert.ErrorIs(t, err, ErrInvalidCard)

	_, err = r.Add(context.Background(), "nodesc:9000")
	assert.ErrorIs(t, err, ErrInvalidCard)

	_, err = r.Add(context.Background(), "unreachable:9000")
	assert.ErrorIs(t, err, ErrInvalidCard)

	assert.Empty(t, r.URLs(), "failed validation must not mutate the registry")
}

func TestRegistry_Remove(t *testing.T) {
	fetcher := &mockFetcher{cards: map[string]*a2a.AgentCard{
		"http://x:9000": validCard("Weather Agent"),
	}}
	r := New(fetcher, nil)

	_, err := r.Add(context.Background(), "x:9000")
	require.NoError(t, err)

	require.NoError(t, r.Remove("http://x:9000/"))
	assert.Empty(t, r.URLs())

	assert.ErrorIs(t, r.Remove("http://x:9000"), ErrNotFound)
}

func TestRegistry_List_DegradesFailedFetches(t *testing.T) {
	fetcher := &mockFetcher{
		cards: map[string]*a2a.AgentCard{
			"http://up:9000":   validCard("Weather Agent"),
			"http://down:9001": validCard("Activities Agent"),
		},
	}
	r := New(fetcher, nil)

	_, err := r.Add(context.Background(), "up:9000")
	require.NoError(t, err)
	_, err = r.Add(context.Background(), "down:9001")
	require.NoError(t, err)

	// The second agent goes offline after registration
	fetcher.errs = map[string]error{"http://down:9001": errors.New("connection refused")}

	entries := r.List(context.Background())
	require.Len(t, entries, 2)

	byURL := make(map[string]*a2a.AgentCard)
	for _, e := range entries {
		byURL[e.URL] = e.Card
	}
	assert.Equal(t, "Weather Agent", byURL["http://up:9000"].Name)
	assert.Equal(t, "Unknown Agent", byURL["http://down:9001"].Name,
		"an offline agent degrades to a placeholder, it does not fail the listing")
}

func TestRegistry_URLs_Sorted(t *testing.T) {
	fetcher := &mockFetcher{cards: map[string]*a2a.AgentCard{
		"http://b:9001": validCard("B"),
		"http://a:9000": validCard("A"),
	}}
	r := New(fetcher, nil)

	_, err := r.Add(context.Background(), "b:9001")
	require.NoError(t, err)
	_, err = r.Add(context.Background(), "a:9000")
	require.NoError(t, err)

	assert.Equal(t, []string{"http://a:9000", "http://b:9001"}, r.URLs())
}
