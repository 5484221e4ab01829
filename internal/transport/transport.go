// Package transport abstracts how an operation produced locally
// reaches a peer node, so tests can substitute a synchronous
// in-memory transport for deterministic reordering instead of real
// HTTP.
package transport

import (
	"context"

	"causalkv/internal/op"
)

// Peer identifies one other node in the membership.
type Peer struct {
	ID   string
	Addr string
}

// Transport sends an operation to a single peer and reports whether
// the peer accepted it. Errors are always transient from the sender's
// point of view — retry-with-backoff is the caller's job
// (internal/replication's outbound dispatcher), not the transport's.
type Transport interface {
	Send(ctx context.Context, peer Peer, o op.Operation) error
}
