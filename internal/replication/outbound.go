package replication

import (
	"context"
	"sync"
	"time"

	"causalkv/internal/op"
	"causalkv/internal/transport"
)

const (
	backoffBase   = 250 * time.Millisecond
	backoffFactor = 2
	backoffCap    = 30 * time.Second
	sendTimeout   = 5 * time.Second
)

// outbound dispatches every locally-produced operation to every peer,
// one durable retry loop per peer so a slow or down peer never
// head-of-line-blocks replication to a healthy one. Propagation is
// at-least-once to every peer — there is no quorum to wait for and no
// acknowledgment the node-wide lock needs to block on, so enqueueing
// work here never holds that lock.
type outbound struct {
	transport transport.Transport
	peers     []transport.Peer
	queues    map[string]chan op.Operation
	wg        sync.WaitGroup
}

func newOutbound(t transport.Transport, peers []transport.Peer) *outbound {
	o := &outbound{
		transport: t,
		peers:     peers,
		queues:    make(map[string]chan op.Operation, len(peers)),
	}
	for _, p := range peers {
		ch := make(chan op.Operation, 1024)
		o.queues[p.ID] = ch
		o.wg.Add(1)
		go o.worker(p, ch)
	}
	return o
}

// enqueue hands op to every peer's outbound queue without blocking
// the caller. No network I/O happens inside the node-wide lock:
// LocalWrite calls this after the operation is already durable in the
// local store and log.
func (o *outbound) enqueue(operation op.Operation) {
	for _, p := range o.peers {
		ch := o.queues[p.ID]
		go func() { ch <- operation }()
	}
}

func (o *outbound) worker(peer transport.Peer, ch chan op.Operation) {
	defer o.wg.Done()
	for operation := range ch {
		o.sendWithBackoff(peer, operation)
	}
}

// sendWithBackoff retries peer.Send until it succeeds. Peers
// deduplicate by op_id, so resending after a timeout that actually
// succeeded on the peer's side is always safe.
func (o *outbound) sendWithBackoff(peer transport.Peer, operation op.Operation) {
	delay := backoffBase
	for {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		err := o.transport.Send(ctx, peer, operation)
		cancel()
		if err == nil {
			return
		}

		time.Sleep(delay)
		delay *= backoffFactor
		if delay > backoffCap {
			delay = backoffCap
		}
	}
}

// close closes every peer's queue and waits for the workers to exit.
// Each worker first delivers whatever is still buffered for its peer,
// retrying every operation until it succeeds, so close does not return
// while a peer with pending work stays unreachable. An enqueue after
// close panics, because the per-peer channels are closed. Used by
// tests and graceful shutdown.
func (o *outbound) close() {
	for _, ch := range o.queues {
		close(ch)
	}
	o.wg.Wait()
}
