package transport

import (
	"context"
	"fmt"
	"sync"

	"causalkv/internal/op"
)

// Receiver is the subset of a node's replication controller that the
// in-memory transport needs in order to hand a peer its operation
// directly, with no network hop — satisfied by
// (*replication.Controller).InboundReplicate.
type Receiver interface {
	InboundReplicate(ctx context.Context, o op.Operation) (deliveredNow bool, err error)
}

// Memory is a synchronous, in-process transport used by tests that
// need precise control over delivery order: pause a node, deliver
// operations to it in a chosen order, assert on queue/log contents at
// each step. Sending blocks until the receiving node has processed
// the operation.
type Memory struct {
	mu        sync.RWMutex
	receivers map[string]Receiver
	// paused nodes reject sends with an error until resumed, modeling a
	// node that is down or partitioned without a second goroutine to
	// hold the delivery back.
	paused map[string]bool
}

// NewMemory creates an in-memory transport with no registered peers.
func NewMemory() *Memory {
	return &Memory{
		receivers: make(map[string]Receiver),
		paused:    make(map[string]bool),
	}
}

// Register associates a peer ID with the controller that should
// receive operations addressed to it.
func (m *Memory) Register(id string, r Receiver) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.receivers[id] = r
}

// Pause makes subsequent sends to id fail with a transport error,
// simulating a node that is down or partitioned.
func (m *Memory) Pause(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paused[id] = true
}

// Resume undoes Pause.
func (m *Memory) Resume(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paused[id] = false
}

func (m *Memory) Send(ctx context.Context, peer Peer, o op.Operation) error {
	m.mu.RLock()
	r, ok := m.receivers[peer.ID]
	paused := m.paused[peer.ID]
	m.mu.RUnlock()

	if paused {
		return fmt.Errorf("peer %s is paused", peer.ID)
	}
	if !ok {
		return fmt.Errorf("peer %s is not registered", peer.ID)
	}

	_, err := r.InboundReplicate(ctx, o)
	return err
}
