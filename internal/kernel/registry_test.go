package kernel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpawnAssignsIncreasingPIDsAndTracksChildren(t *testing.T) {
	r := NewRegistry()
	init := r.Spawn(0, PriorityNormal, "init")
	child := r.Spawn(init.PID, PriorityNormal, "child")

	assert.NotEqual(t, init.PID, child.PID)
	assert.True(t, init.Children[child.PID])
}

func TestGetUnknownPIDFails(t *testing.T) {
	r := NewRegistry()
	_, err := r.Get(999)
	assert.Error(t, err)
}

func TestReparentOrphansMovesChildrenToPIDZero(t *testing.T) {
	r := NewRegistry()
	parent := r.Spawn(0, PriorityNormal, "parent")
	child := r.Spawn(parent.PID, PriorityNormal, "child")

	r.ReparentOrphans(parent.PID)

	got, err := r.Get(child.PID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.PPID)
	assert.Empty(t, parent.Children)
}

func TestDeregisterRemovesFromSnapshot(t *testing.T) {
	r := NewRegistry()
	p := r.Spawn(0, PriorityNormal, "p")
	r.Deregister(p.PID)

	for _, s := range r.Snapshot() {
		assert.NotEqual(t, p.PID, s.PID)
	}
}
