// Package vclock implements the vector-clock algebra used to order
// writes across the replica set.
//
// A vector clock is a map from node ID to a logical counter. Every
// time a node writes a key, it bumps its own counter. Comparing two
// clocks tells us whether one happened-before the other or whether
// they are concurrent:
//
//	Node1 writes:  {n1:1}
//	Node2 sees it, writes too:  {n1:1, n2:1}
//	Node1 sees node2's clock: n2 counter is new to it → n2's write is
//	not something node1 already knew about.
//
// Unlike a single Lamport timestamp, a vector clock captures the
// partial order exactly — it can tell "concurrent" apart from
// "stale", which is what the conflict-resolution policy in
// internal/replication needs.
package vclock

import (
	"fmt"
	"sort"
	"strings"
)

// Clock maps node ID to logical counter. A missing entry is zero.
type Clock map[string]uint64

// Relation is the causal relationship between two clocks.
type Relation int

const (
	Equal Relation = iota
	Less           // self happened-before other
	Greater        // self happened-after other
	Concurrent
)

func (r Relation) String() string {
	switch r {
	case Equal:
		return "Equal"
	case Less:
		return "Less"
	case Greater:
		return "Greater"
	default:
		return "Concurrent"
	}
}

// Zero constructs a clock with a zero entry for every member. This
// package does not itself restrict a clock to that set: Increment and
// Merge add whatever node ids they are given. Membership is fixed at
// node startup and never changes while the process runs.
func Zero(members []string) Clock {
	c := make(Clock, len(members))
	for _, m := range members {
		c[m] = 0
	}
	return c
}

// Copy returns a deep copy so callers can mutate the result without
// aliasing the original — the log and the store must never share a
// backing map with a clock still being incremented elsewhere.
func (c Clock) Copy() Clock {
	out := make(Clock, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Increment bumps nodeID's counter in place.
func (c Clock) Increment(nodeID string) {
	c[nodeID]++
}

// Get returns the counter for nodeID, treating a missing entry as zero.
func (c Clock) Get(nodeID string) uint64 {
	return c[nodeID]
}

// Compare returns the causal relationship of c relative to other,
// restricted to the known membership of both clocks (the union of
// their keys). A node id absent from a clock is treated as having
// counter zero — a node that has made no writes yet looks the same as
// one whose zero entry was never recorded.
func (c Clock) Compare(other Clock) Relation {
	less, greater := false, false

	seen := make(map[string]struct{}, len(c)+len(other))
	for k := range c {
		seen[k] = struct{}{}
	}
	for k := range other {
		seen[k] = struct{}{}
	}

	for node := range seen {
		a, b := c[node], other[node]
		switch {
		case a < b:
			less = true
		case a > b:
			greater = true
		}
	}

	switch {
	case !less && !greater:
		return Equal
	case less && !greater:
		return Less
	case !less && greater:
		return Greater
	default:
		return Concurrent
	}
}

// LessOrEqual reports whether c ≤ other componentwise.
func (c Clock) LessOrEqual(other Clock) bool {
	rel := c.Compare(other)
	return rel == Less || rel == Equal
}

// Merge returns a new clock with the componentwise max of c and other.
func (c Clock) Merge(other Clock) Clock {
	merged := c.Copy()
	for node, v := range other {
		if v > merged[node] {
			merged[node] = v
		}
	}
	return merged
}

// String renders the clock deterministically (sorted by node id) for
// logs and test failure messages.
func (c Clock) String() string {
	ids := make([]string, 0, len(c))
	for id := range c {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, fmt.Sprintf("%s:%d", id, c[id]))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
