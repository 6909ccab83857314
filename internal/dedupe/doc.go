// Package dedupe provides a time-bounded seen-key cache. The bridge uses it
// to remember retired invocation ids so redelivered terminal status updates
// do not produce duplicate call/response events.
package dedupe
