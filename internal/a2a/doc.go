// Package a2a holds the slice of the A2A protocol this bridge consumes: the
// agent card document and the client that fetches it from a remote agent's
// well-known path. Task execution and message transport stay with the
// external orchestrator; only discovery lives here.
package a2a
