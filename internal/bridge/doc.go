// Package bridge logs agent delegations as they are observed.
//
// The actual routing of tool calls to remote agents happens in the external
// orchestrator; this package only watches the status transitions it reports
// (pending → executing → complete|failed) and writes the matching a2a_call
// and a2a_response events. Correlation between the pair is by shared
// actionID, by convention rather than referential enforcement: the observer
// guards against redelivered terminal statuses but does not stop a
// misbehaving upstream from reusing an actionID.
package bridge
