// Package replication implements the replication controller — the
// heart of the node. It serializes local writes, assigns vector
// clocks, applies or enqueues remote operations, and dispatches
// outbound replication to peers.
package replication

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"

	"causalkv/internal/errs"
	"causalkv/internal/holdback"
	"causalkv/internal/kvstore"
	"causalkv/internal/metrics"
	"causalkv/internal/op"
	"causalkv/internal/oplog"
	"causalkv/internal/transport"
	"causalkv/internal/vclock"
)

// Controller owns all four of a node's mutable state fields — vector
// clock, store, log, hold-back queue — behind a single exclusive
// lock. A write and a delivery can arrive concurrently from different
// HTTP handlers, and the clock, store, log, and hold-back queue all
// have to move together or the causal-delivery invariant breaks, so
// one lock covers all four rather than one per field.
type Controller struct {
	mu sync.Mutex

	selfID  string
	members []string
	vc      vclock.Clock
	seq     uint64

	store *kvstore.Store
	log   *oplog.Log
	queue *holdback.Queue

	outbound *outbound
	metrics  *metrics.Metrics // nil is valid: metrics are optional instrumentation, not a dependency of the protocol
}

// New builds a Controller for selfID, aware of the full membership
// (used to seed the zero clock and to validate incoming clock shapes)
// and the peers it must propagate writes to.
func New(selfID string, members []string, peers []transport.Peer, t transport.Transport, m *metrics.Metrics) *Controller {
	c := &Controller{
		selfID:  selfID,
		members: members,
		vc:      vclock.Zero(members),
		store:   kvstore.New(),
		log:     oplog.New(),
		queue:   holdback.New(),
		metrics: m,
	}
	c.outbound = newOutbound(t, peers)
	return c
}

// Close stops the outbound dispatcher's worker goroutines.
func (c *Controller) Close() {
	c.outbound.close()
}

// SelfID returns the node's own identifier.
func (c *Controller) SelfID() string { return c.selfID }

// nextOpID assigns a globally unique id: origin node id, a per-node
// monotonic sequence number, and a random UUID suffix so restarts
// (which reset the sequence counter, since state is not persisted)
// never collide with a pre-restart id still in flight across the
// cluster.
func (c *Controller) nextOpID() string {
	c.seq++
	return fmt.Sprintf("%s-%d-%s", c.selfID, c.seq, uuid.NewString())
}

// LocalWrite handles a CREATE or UPDATE issued by this node's own
// client API.
func (c *Controller) LocalWrite(kind op.Kind, key string, payload map[string]any) (op.Operation, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, exists := c.store.Get(key)
	switch kind {
	case op.Create:
		if exists {
			return op.Operation{}, errs.Validation("key %q already exists", key)
		}
	case op.Update:
		if !exists {
			return op.Operation{}, errs.NotFound("key %q not found", key)
		}
	default:
		return op.Operation{}, errs.Validation("unknown operation kind %q", kind)
	}

	c.vc.Increment(c.selfID)

	o := op.Operation{
		OpID:    c.nextOpID(),
		Kind:    kind,
		Key:     key,
		Payload: payload,
		Origin:  c.selfID,
		VC:      c.vc.Copy(),
	}

	c.store.Put(key, payload, o.VC, o.Origin)
	c.log.Append(oplog.Entry{OpID: o.OpID, Data: o})

	if c.metrics != nil {
		c.metrics.LocalWrites.Inc()
		c.metrics.ReplicationSends.Add(float64(len(c.outbound.peers)))
	}

	c.outbound.enqueue(o)

	return o, nil
}

// InboundReplicate handles delivery of a remote operation.
func (c *Controller) InboundReplicate(ctx context.Context, o op.Operation) (deliveredNow bool, err error) {
	if perr := c.validateShape(o); perr != nil {
		log.Printf("replication: dropping operation %q from %q: %v", o.OpID, o.Origin, perr)
		if c.metrics != nil {
			c.metrics.RemoteDropped.Inc()
		}
		return false, perr
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.log.Contains(o.OpID) {
		return true, nil // already delivered: drop silently so retransmits are harmless
	}

	if c.deliverable(o) {
		c.applyRemoteLocked(o)
		c.drainLocked()
		c.reportQueueDepthLocked()
		return true, nil
	}

	c.queue.Add(o)
	if c.metrics != nil {
		c.metrics.RemoteHeld.Inc()
	}
	c.reportQueueDepthLocked()
	return false, nil
}

func (c *Controller) reportQueueDepthLocked() {
	if c.metrics != nil {
		c.metrics.HoldBackDepth.Set(float64(c.queue.Size()))
	}
}

// validateShape rejects an operation whose clock references a node
// outside the known membership, or is otherwise malformed. Such an
// operation can never become deliverable — enqueueing it would hold
// it forever — so it is logged and dropped instead.
func (c *Controller) validateShape(o op.Operation) error {
	if o.OpID == "" || o.Origin == "" || o.Key == "" {
		return errs.Protocol("malformed operation: missing op_id/origin/key")
	}
	known := make(map[string]struct{}, len(c.members))
	for _, m := range c.members {
		known[m] = struct{}{}
	}

	if _, ok := known[o.Origin]; !ok {
		return errs.Protocol("operation references unknown origin %q", o.Origin)
	}
	for node := range o.VC {
		if _, ok := known[node]; !ok {
			return errs.Protocol("operation clock references unknown node %q", node)
		}
	}
	return nil
}

// deliverable reports whether o is the next operation this node can
// apply from its origin without skipping ahead of anything the origin
// depends on. Must be called with c.mu held: it reads c.vc.
func (c *Controller) deliverable(o op.Operation) bool {
	if o.VC.Get(o.Origin) != c.vc.Get(o.Origin)+1 {
		return false
	}
	for _, member := range c.members {
		if member == o.Origin {
			continue
		}
		if o.VC.Get(member) > c.vc.Get(member) {
			return false
		}
	}
	return true
}

// applyRemoteLocked applies a deliverable remote operation. Must be
// called with c.mu held.
func (c *Controller) applyRemoteLocked(o op.Operation) {
	if resolveConflict(c.store, o) {
		c.store.Put(o.Key, o.Payload, o.VC, o.Origin)
	}
	c.vc = c.vc.Merge(o.VC)
	c.log.Append(oplog.Entry{OpID: o.OpID, Data: o})

	if c.metrics != nil {
		c.metrics.RemoteDelivered.Inc()
	}
}

// drainLocked releases any now-deliverable held operations, applying
// each in turn so that releasing one can expose the next. Must be
// called with c.mu held.
func (c *Controller) drainLocked() {
	c.queue.DrainDeliverable(c.deliverable, c.applyRemoteLocked)
}

// Get forwards to the local store (GET /alumnos/{key}).
func (c *Controller) Get(key string) (kvstore.Record, bool) {
	return c.store.Get(key)
}

// List forwards to the local store (GET /alumnos).
func (c *Controller) List() []kvstore.Record {
	return c.store.List()
}

// LogSnapshot returns the operation log in delivery order (GET /log).
func (c *Controller) LogSnapshot() []oplog.Entry {
	return c.log.Snapshot()
}

// QueueSnapshot returns the currently held operations (GET /queue).
func (c *Controller) QueueSnapshot() []op.Operation {
	return c.queue.Snapshot()
}

// Health is the GET /health response shape.
type Health struct {
	NodeID      string       `json:"node_id"`
	VectorClock vclock.Clock `json:"vector_clock"`
	StoreSize   int          `json:"store_size"`
	QueueSize   int          `json:"queue_size"`
	LogSize     int          `json:"log_size"`
}

// HealthSnapshot reports the node's current health (GET /health).
func (c *Controller) HealthSnapshot() Health {
	c.mu.Lock()
	vc := c.vc.Copy()
	c.mu.Unlock()

	return Health{
		NodeID:      c.selfID,
		VectorClock: vc,
		StoreSize:   c.store.Size(),
		QueueSize:   c.queue.Size(),
		LogSize:     c.log.Len(),
	}
}
