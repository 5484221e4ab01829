package vclock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZero(t *testing.T) {
	c := Zero([]string{"n1", "n2", "n3"})
	assert.Equal(t, uint64(0), c.Get("n1"))
	assert.Equal(t, uint64(0), c.Get("n2"))
	assert.Equal(t, uint64(0), c.Get("n3"))
	assert.Equal(t, uint64(0), c.Get("unknown"))
}

func TestIncrementAndCopyAreIndependent(t *testing.T) {
	c := Zero([]string{"n1", "n2"})
	cp := c.Copy()
	c.Increment("n1")

	assert.Equal(t, uint64(1), c.Get("n1"))
	assert.Equal(t, uint64(0), cp.Get("n1"), "Copy must not alias the original map")
}

func TestCompare(t *testing.T) {
	cases := []struct {
		name string
		a, b Clock
		want Relation
	}{
		{"equal empty", Clock{}, Clock{}, Equal},
		{"equal explicit zero", Clock{"n1": 0}, Clock{}, Equal},
		{"less", Clock{"n1": 1}, Clock{"n1": 2}, Less},
		{"greater", Clock{"n1": 2}, Clock{"n1": 1}, Greater},
		{"concurrent", Clock{"n1": 1, "n2": 0}, Clock{"n1": 0, "n2": 1}, Concurrent},
		{"concurrent with disjoint members", Clock{"n1": 1}, Clock{"n2": 1}, Concurrent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.a.Compare(tc.b), "%v vs %v", tc.a, tc.b)
		})
	}
}

func TestLessOrEqual(t *testing.T) {
	a := Clock{"n1": 1, "n2": 0}
	b := Clock{"n1": 1, "n2": 1}
	assert.True(t, a.LessOrEqual(b))
	assert.False(t, b.LessOrEqual(a))
	assert.True(t, a.LessOrEqual(a))
}

func TestMerge(t *testing.T) {
	a := Clock{"n1": 2, "n2": 0}
	b := Clock{"n1": 1, "n2": 3}
	merged := a.Merge(b)

	require.Equal(t, uint64(2), merged.Get("n1"))
	require.Equal(t, uint64(3), merged.Get("n2"))

	assert.Equal(t, uint64(2), a.Get("n1"), "Merge must not mutate the receiver")
}

func TestString(t *testing.T) {
	c := Clock{"n2": 1, "n1": 3}
	assert.Equal(t, "{n1:3, n2:1}", c.String())
}
