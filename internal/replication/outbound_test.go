package replication

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"causalkv/internal/op"
	"causalkv/internal/transport"
)

type recordingReceiver struct {
	received chan op.Operation
}

func (r *recordingReceiver) InboundReplicate(ctx context.Context, o op.Operation) (bool, error) {
	r.received <- o
	return true, nil
}

func TestOutboundDeliversToRegisteredPeer(t *testing.T) {
	mem := transport.NewMemory()
	recv := &recordingReceiver{received: make(chan op.Operation, 1)}
	mem.Register("n2", recv)

	o := newOutbound(mem, []transport.Peer{{ID: "n2", Addr: "n2"}})
	defer o.close()

	sent := op.Operation{OpID: "op-1", Key: "k1"}
	o.enqueue(sent)

	select {
	case got := <-recv.received:
		assert.Equal(t, "op-1", got.OpID)
	case <-time.After(2 * time.Second):
		t.Fatal("operation was never delivered to the peer")
	}
}

func TestOutboundRetriesAfterPeerResumes(t *testing.T) {
	mem := transport.NewMemory()
	recv := &recordingReceiver{received: make(chan op.Operation, 1)}
	mem.Register("n2", recv)
	mem.Pause("n2")

	o := newOutbound(mem, []transport.Peer{{ID: "n2", Addr: "n2"}})
	defer o.close()

	o.enqueue(op.Operation{OpID: "op-1", Key: "k1"})

	select {
	case <-recv.received:
		t.Fatal("a paused peer must not receive the operation")
	case <-time.After(200 * time.Millisecond):
	}

	mem.Resume("n2")

	select {
	case got := <-recv.received:
		require.Equal(t, "op-1", got.OpID)
	case <-time.After(5 * time.Second):
		t.Fatal("operation was never delivered after the peer resumed")
	}
}
