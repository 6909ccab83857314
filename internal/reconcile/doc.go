// Package reconcile turns snapshot polling into event-sourced log semantics.
//
// The upstream chat session does not deliver deltas; it re-reports the whole
// message list, with streaming assistant messages recurring under the same id
// with progressively longer content. The Reconciler diffs each snapshot
// against the last content it persisted per message id and emits exactly the
// right store mutations: upsert the message, create a message event the first
// time meaningful content appears, and update that same event in place as the
// content grows. Empty assistant placeholders are skipped entirely, which
// also means a final response that is genuinely empty never reaches the log;
// see the Reconciler doc comment.
package reconcile
