// Package store provides the in-memory state for the bridge: conversations,
// their message lists, and per-conversation event logs.
//
// # Lifetime
//
// Both stores are constructed once at process start and injected into the
// request handlers. There is no persistence: restarting the process resets
// all state. That is a deliberate property of the demo, not an omission.
//
// # Data Models
//
//   - Conversation: named container of messages, with a derived thread id
//     correlating it to the external chat session
//   - Message: a chat message whose id is assigned by the upstream session
//   - Event: a typed record in the conversation's log (user/assistant
//     message, outbound agent call, inbound agent response, error)
//
// # Concurrency
//
// Each store serializes access behind a single RWMutex. Operations are
// synchronous and never block on I/O, so a global lock is sufficient at this
// scale and makes every operation atomic with respect to the others.
//
// # Event Dedup
//
// Message-derived events are deduplicated at insertion by
// (conversation, type, messageId): the first event wins and later submissions
// are silently discarded. Delegation events (a2a_call/a2a_response) are never
// deduplicated.
package store
