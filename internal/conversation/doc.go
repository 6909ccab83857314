// Package conversation provides the live side of the event log.
//
// # Log
//
// Log is the single write path for events: it persists through the event
// store and publishes every stored or updated event to subscribers. Write
// through a Log, never through the store directly, or SSE clients will miss
// events.
//
// # EventBroadcaster
//
// The broadcaster is plain in-memory pub/sub keyed by conversation id.
// Subscriber channels are buffered; a slow subscriber loses events rather
// than stalling the write path.
package conversation
