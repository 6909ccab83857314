// ABOUTME: Tests for ConversationStore
// ABOUTME: Covers id uniqueness, message count invariant, and upsert semantics

package store

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConversationStore_Create_AssignsUniqueIDs(t *testing.T) {
	s := NewConversationStore(nil)

	seen := make(map[string]bool)
	threads := make(map[string]bool)
	for i := 0; i < 50; i++ {
		conv := s.Create()
		assert.False(t, seen[conv.ID], "duplicate conversation id %s", conv.ID)
		assert.False(t, threads[conv.ThreadID], "duplicate thread id %s", conv.ThreadID)
		seen[conv.ID] = true
		threads[conv.ThreadID] = true

		assert.Equal(t, "thread_"+conv.ID, conv.ThreadID)
		assert.Equal(t, fmt.Sprintf("Conversation %d", i+1), conv.Name)
		assert.Zero(t, conv.MessageCount)
	}
}

func TestConversationStore_Create_CounterSurvivesDeletes(t *testing.T) {
	s := NewConversationStore(nil)

	first := s.Create()
	assert.Equal(t, "Conversation 1", first.Name)

	require.True(t, s.Delete(first.ID))

	second := s.Create()
	assert.Equal(t, "Conversation 2", second.Name, "name counter must not reuse numbers after deletion")
}

func TestConversationStore_Create_Concurrent(t *testing.T) {
	s := NewConversationStore(nil)

	const n = 100
	ids := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids <- s.Create().ID
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]bool)
	for id := range ids {
		assert.False(t, seen[id], "duplicate id under concurrency: %s", id)
		seen[id] = true
	}

	names := make(map[string]bool)
	for _, conv := range s.List() {
		assert.False(t, names[conv.Name], "duplicate name under concurrency: %s", conv.Name)
		names[conv.Name] = true
	}
}

func TestConversationStore_Get(t *testing.T) {
	s := NewConversationStore(nil)
	conv := s.Create()

	got, ok := s.Get(conv.ID)
	require.True(t, ok)
	assert.Equal(t, conv, got)

	_, ok = s.Get("conv_missing")
	assert.False(t, ok)
}

func TestConversationStore_List_NewestFirst(t *testing.T) {
	s := NewConversationStore(nil)
	for i := 0; i < 5; i++ {
		s.Create()
	}

	list := s.List()
	require.Len(t, list, 5)
	for i := 1; i < len(list); i++ {
		assert.False(t, list[i].CreatedAt.After(list[i-1].CreatedAt),
			"list must be sorted by createdAt descending")
	}
}

func TestConversationStore_Update_NameOnly(t *testing.T) {
	s := NewConversationStore(nil)
	conv := s.Create()

	name := "Weekend planning"
	updated, ok := s.Update(conv.ID, UpdateParams{Name: &name})
	require.True(t, ok)
	assert.Equal(t, "Weekend planning", updated.Name)
	assert.Equal(t, conv.ID, updated.ID)
	assert.Equal(t, conv.ThreadID, updated.ThreadID)

	// Nil name leaves everything unchanged
	same, ok := s.Update(conv.ID, UpdateParams{})
	require.True(t, ok)
	assert.Equal(t, updated, same)

	_, ok = s.Update("conv_missing", UpdateParams{Name: &name})
	assert.False(t, ok)
}

func TestConversationStore_Delete_Idempotent(t *testing.T) {
	s := NewConversationStore(nil)
	conv := s.Create()

	assert.True(t, s.Delete(conv.ID))
	assert.False(t, s.Delete(conv.ID), "second delete returns false, not an error")

	_, ok := s.Get(conv.ID)
	assert.False(t, ok)
	assert.Empty(t, s.GetMessages(conv.ID))
}

func TestConversationStore_AddMessage_MaintainsCount(t *testing.T) {
	s := NewConversationStore(nil)
	conv := s.Create()

	for i := 0; i < 3; i++ {
		ok := s.AddMessage(conv.ID, Message{ID: fmt.Sprintf("msg-%d", i), Role: RoleUser, Content: "hi"})
		require.True(t, ok)

		got, _ := s.Get(conv.ID)
		assert.Equal(t, i+1, got.MessageCount)
		assert.Len(t, s.GetMessages(conv.ID), got.MessageCount)
	}

	assert.False(t, s.AddMessage("conv_missing", Message{ID: "m", Role: RoleUser}))
}

func TestConversationStore_UpsertMessage_ReplacesInPlace(t *testing.T) {
	s := NewConversationStore(nil)
	conv := s.Create()

	require.True(t, s.UpsertMessage(conv.ID, Message{ID: "m1", Role: RoleUser, Content: "question"}))
	require.True(t, s.UpsertMessage(conv.ID, Message{ID: "m2", Role: RoleAssistant, Content: "Hel"}))
	require.True(t, s.UpsertMessage(conv.ID, Message{ID: "m2", Role: RoleAssistant, Content: "Hello"}))

	msgs := s.GetMessages(conv.ID)
	require.Len(t, msgs, 2)
	assert.Equal(t, "m1", msgs[0].ID, "upsert must preserve position")
	assert.Equal(t, "Hello", msgs[1].Content)

	got, _ := s.Get(conv.ID)
	assert.Equal(t, 2, got.MessageCount)
}

func TestConversationStore_UpsertMessage_Idempotent(t *testing.T) {
	s := NewConversationStore(nil)
	conv := s.Create()

	msg := Message{ID: "m1", Role: RoleAssistant, Content: "done"}
	require.True(t, s.UpsertMessage(conv.ID, msg))
	before := s.GetMessages(conv.ID)

	require.True(t, s.UpsertMessage(conv.ID, msg))
	after := s.GetMessages(conv.ID)

	assert.Equal(t, before, after)
}

func TestConversationStore_GetMessages_MissingConversation(t *testing.T) {
	s := NewConversationStore(nil)
	assert.Empty(t, s.GetMessages("conv_missing"))
}

func TestConversationStore_GetMessages_ReturnsCopy(t *testing.T) {
	s := NewConversationStore(nil)
	conv := s.Create()
	require.True(t, s.AddMessage(conv.ID, Message{ID: "m1", Role: RoleUser, Content: "original"}))

	msgs := s.GetMessages(conv.ID)
	msgs[0].Content = "mutated"

	assert.Equal(t, "original", s.GetMessages(conv.ID)[0].Content)
}
