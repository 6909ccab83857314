// Package gateway exposes the bridge over HTTP.
//
// # Surface
//
// Conversations and their messages:
//
//   - GET    /conversations                    list, newest first
//   - POST   /conversations                    create
//   - GET    /conversations/{id}               fetch one
//   - PATCH  /conversations/{id}               rename
//   - DELETE /conversations/{id}               delete, cascades to events
//   - GET    /conversations/{id}/messages      list messages
//   - POST   /conversations/{id}/messages      add or upsert message(s)
//
// Events:
//
//   - GET    /conversations/{id}/events        full log; ?filter=tasks or an event type
//   - POST   /conversations/{id}/events        append one event
//   - PATCH  /conversations/{id}/events        update event fields in place
//   - GET    /conversations/{id}/events/stream SSE push of new events
//
// Live session feeds:
//
//   - POST /conversations/{id}/sync            reconcile a message-list snapshot
//   - POST /conversations/{id}/actions         observe a tool-call status transition
//
// Agents:
//
//   - GET    /agents                           registered agents with live cards
//   - POST   /agents                           validate and register by URL
//   - DELETE /agents                           unregister by URL
//
// Plus /health and /health/ready, and a Prometheus /metrics server on its own
// address when enabled.
//
// # Error mapping
//
// Missing entities are 404, duplicate registration is 409, card validation
// and malformed bodies are 400. Store operations themselves never fail; the
// handlers translate their boolean returns.
package gateway
