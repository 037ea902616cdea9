package kernel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpawnReturnsRunningChildWithName(t *testing.T) {
	k := newTestKernel(t)
	child, err := k.Spawn(1, PriorityNormal, "worker", -1, -1)
	require.NoError(t, err)
	assert.Equal(t, "worker", child.Name)
	assert.Equal(t, StatusRunning, child.Status)
}

func TestExitZombifiesAndPreservesExitCode(t *testing.T) {
	k := newTestKernel(t)
	child, err := k.Spawn(1, PriorityNormal, "worker", -1, -1)
	require.NoError(t, err)

	require.NoError(t, k.Exit(child.PID, 7))

	got, err := k.Registry.Get(child.PID)
	require.NoError(t, err)
	assert.Equal(t, StatusZombie, got.Status)
	assert.Equal(t, 7, got.ExitCode)
}

func TestWaitpidReapsZombieChild(t *testing.T) {
	k := newTestKernel(t)
	child, err := k.Spawn(1, PriorityNormal, "worker", -1, -1)
	require.NoError(t, err)
	require.NoError(t, k.Exit(child.PID, 3))

	pid, code, err := k.Waitpid(1, child.PID)
	require.NoError(t, err)
	assert.Equal(t, child.PID, pid)
	assert.Equal(t, 3, code)

	_, err = k.Registry.Get(child.PID)
	assert.Error(t, err)
}

func TestWaitpidNoZombieReturnsNoChildError(t *testing.T) {
	k := newTestKernel(t)
	child, err := k.Spawn(1, PriorityNormal, "worker", -1, -1)
	require.NoError(t, err)

	_, _, err = k.Waitpid(1, child.PID)
	assert.Error(t, err)
}

func TestWaitpidZeroReapsOldestZombieFirst(t *testing.T) {
	k := newTestKernel(t)
	first, err := k.Spawn(1, PriorityNormal, "first", -1, -1)
	require.NoError(t, err)
	second, err := k.Spawn(1, PriorityNormal, "second", -1, -1)
	require.NoError(t, err)

	require.NoError(t, k.Exit(second.PID, 2))
	require.NoError(t, k.Exit(first.PID, 1))

	pid, code, err := k.Waitpid(1, 0)
	require.NoError(t, err)
	assert.Equal(t, second.PID, pid)
	assert.Equal(t, 2, code)

	pid, code, err = k.Waitpid(1, 0)
	require.NoError(t, err)
	assert.Equal(t, first.PID, pid)
	assert.Equal(t, 1, code)

	_, _, err = k.Waitpid(1, 0)
	assert.Error(t, err)
}

func TestExitReparentsChildrenToPIDZero(t *testing.T) {
	k := newTestKernel(t)
	mid, err := k.Spawn(1, PriorityNormal, "mid", -1, -1)
	require.NoError(t, err)
	grandchild, err := k.Spawn(mid.PID, PriorityNormal, "grand", -1, -1)
	require.NoError(t, err)

	require.NoError(t, k.Exit(mid.PID, 0))

	got, err := k.Registry.Get(grandchild.PID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.PPID)
}

func TestNiceReturnsPreviousPriorityAndLogsChange(t *testing.T) {
	k := newTestKernel(t)
	child, err := k.Spawn(1, PriorityNormal, "worker", -1, -1)
	require.NoError(t, err)

	old, err := k.Nice(child.PID, PriorityHigh)
	require.NoError(t, err)
	assert.Equal(t, PriorityNormal, old)

	got, err := k.Registry.Get(child.PID)
	require.NoError(t, err)
	assert.Equal(t, PriorityHigh, got.Priority)
}

func TestKillStopAndContinueTransitions(t *testing.T) {
	k := newTestKernel(t)
	child, err := k.Spawn(1, PriorityNormal, "worker", -1, -1)
	require.NoError(t, err)

	require.NoError(t, k.Kill(child.PID, SignalStop))
	got, _ := k.Registry.Get(child.PID)
	assert.Equal(t, StatusStopped, got.Status)

	require.NoError(t, k.Kill(child.PID, SignalContinue))
	got, _ = k.Registry.Get(child.PID)
	assert.Equal(t, StatusRunning, got.Status)

	require.NoError(t, k.Kill(child.PID, SignalTerminate))
	got, _ = k.Registry.Get(child.PID)
	assert.Equal(t, StatusZombie, got.Status)
}

func TestBlockAndUnblock(t *testing.T) {
	k := newTestKernel(t)
	child, err := k.Spawn(1, PriorityNormal, "worker", -1, -1)
	require.NoError(t, err)

	require.NoError(t, k.Block(child.PID))
	got, _ := k.Registry.Get(child.PID)
	assert.Equal(t, StatusBlocked, got.Status)

	require.NoError(t, k.Unblock(child.PID))
	got, _ = k.Registry.Get(child.PID)
	assert.Equal(t, StatusRunning, got.Status)
}
