// Package op defines Operation, the immutable message that describes
// a single mutation, and is shared by every layer that needs to name
// its shape: the replication controller, the hold-back queue, the
// operation log, the HTTP wire format, and the peer transport.
//
// Keeping this type in its own package (rather than inside
// internal/replication) avoids an import cycle: the hold-back queue
// needs to read Operation.Origin/VC to decide deliverability, but the
// replication controller owns the hold-back queue.
package op

import "causalkv/internal/vclock"

// Kind is the mutation this operation performs.
type Kind string

const (
	Create Kind = "CREATE"
	Update Kind = "UPDATE"
)

// Operation is an immutable description of one mutation, assigned a
// vector clock at the node that produced it.
type Operation struct {
	OpID    string         `json:"op_id"`
	Kind    Kind           `json:"kind"`
	Key     string         `json:"key"`
	Payload map[string]any `json:"payload"`
	Origin  string         `json:"origin"`
	VC      vclock.Clock   `json:"vc"`
}
