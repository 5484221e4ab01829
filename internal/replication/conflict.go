package replication

import (
	"causalkv/internal/kvstore"
	"causalkv/internal/op"
	"causalkv/internal/vclock"
)

// resolveConflict decides whether an incoming operation should
// overwrite the record currently stored at its key.
//
// A causally newer write always wins and a causally older or
// identical one is always rejected. Two writes that are concurrent —
// neither happened-before the other — have no causal order to fall
// back on, so ties are broken by comparing origin node ids: the
// higher id wins, consistently, on every node that sees both writes.
func resolveConflict(store *kvstore.Store, incoming op.Operation) bool {
	existing, ok := store.Get(incoming.Key)
	if !ok {
		return true
	}

	switch existing.VCWritten.Compare(incoming.VC) {
	case vclock.Less:
		// current < incoming: incoming causally supersedes.
		return true
	case vclock.Greater, vclock.Equal:
		// incoming is stale or an exact duplicate by clock: keep current.
		return false
	default: // vclock.Concurrent
		return incoming.Origin > existing.Origin
	}
}
