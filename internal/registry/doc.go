// Package registry tracks which remote A2A agents the bridge knows about.
//
// Registration is gated on discovery: an agent enters the set only after its
// card has been fetched from the well-known path and found to carry a name
// and description. The fetch happens outside the registry lock, so
// registration of a slow agent never blocks reads or other mutations.
//
// Cards are not cached. Listing re-fetches each card best-effort and degrades
// unreachable agents to a placeholder entry.
package registry
