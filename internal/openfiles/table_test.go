package openfiles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAssignsIncreasingIDs(t *testing.T) {
	tbl := NewTable()
	f1, err := tbl.Open("a", ModeRead, 1, 0)
	require.NoError(t, err)
	f2, err := tbl.Open("b", ModeRead, 1, 0)
	require.NoError(t, err)
	assert.NotEqual(t, f1.ID, f2.ID)
}

func TestOpenReusesEntryForSameName(t *testing.T) {
	tbl := NewTable()
	f1, err := tbl.Open("a", ModeRead, 1, 0)
	require.NoError(t, err)
	f2, err := tbl.Open("a", ModeRead, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, f1.ID, f2.ID, "one entry per live file, not one per open() call")
}

func TestOpenRepositionsExistingPidInsteadOfStacking(t *testing.T) {
	tbl := NewTable()
	f, err := tbl.Open("a", ModeRead, 1, 0)
	require.NoError(t, err)
	require.NoError(t, tbl.Advance(f.ID, 1, 10))
	assert.EqualValues(t, 10, f.Offset(1))

	again, err := tbl.Open("a", ModeRead, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, f.ID, again.ID)
	assert.EqualValues(t, 0, again.Offset(1), "reopening resets this pid's offset rather than leaving the old one")
}

func TestOpenRejectsSecondWriter(t *testing.T) {
	tbl := NewTable()
	_, err := tbl.Open("a", ModeWrite, 1, 0)
	require.NoError(t, err)

	_, err = tbl.Open("a", ModeWrite, 2, 0)
	assert.Error(t, err)
}

func TestOpenAllowsSamePidToReopenItsOwnWrite(t *testing.T) {
	tbl := NewTable()
	_, err := tbl.Open("a", ModeWrite, 1, 0)
	require.NoError(t, err)

	_, err = tbl.Open("a", ModeWrite, 1, 0)
	assert.NoError(t, err)
}

func TestOpenAllowsConcurrentReaders(t *testing.T) {
	tbl := NewTable()
	f1, err := tbl.Open("a", ModeRead, 1, 0)
	require.NoError(t, err)
	f2, err := tbl.Open("a", ModeRead, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, f1.ID, f2.ID)
}

func TestCloseReleasesWriterSlot(t *testing.T) {
	tbl := NewTable()
	f, err := tbl.Open("a", ModeWrite, 1, 0)
	require.NoError(t, err)
	require.NoError(t, tbl.Close(f.ID, 1))

	_, err = tbl.Open("a", ModeWrite, 2, 0)
	assert.NoError(t, err)
}

func TestCloseRetiresEntryOnlyWhenNoPidRemains(t *testing.T) {
	tbl := NewTable()
	f, err := tbl.Open("a", ModeRead, 1, 0)
	require.NoError(t, err)
	_, err = tbl.Open("a", ModeRead, 2, 0)
	require.NoError(t, err)

	require.NoError(t, tbl.Close(f.ID, 1))
	got, err := tbl.Lookup(f.ID)
	require.NoError(t, err)
	assert.Equal(t, f.ID, got.ID)

	require.NoError(t, tbl.Close(f.ID, 2))
	_, err = tbl.Lookup(f.ID)
	assert.Error(t, err)
	_, ok := tbl.LookupByName("a")
	assert.False(t, ok)
}

func TestDupGivesChildItsOwnOffsetFromParents(t *testing.T) {
	tbl := NewTable()
	f, err := tbl.Open("a", ModeWrite, 1, 0)
	require.NoError(t, err)
	require.NoError(t, tbl.Advance(f.ID, 1, 10))

	require.NoError(t, tbl.Dup(f.ID, 1, 2))
	assert.EqualValues(t, 10, f.Offset(2))
	assert.True(t, f.IsWriter(2), "stdio redirection hands the writer slot to the child")
	assert.False(t, f.IsWriter(1))

	require.NoError(t, tbl.Advance(f.ID, 1, 5))
	assert.EqualValues(t, 15, f.Offset(1))
	assert.EqualValues(t, 10, f.Offset(2), "each pid's offset into a shared entry is independent")
}

func TestSeekWhenceVariants(t *testing.T) {
	f := &File{offsets: map[int]int64{}}
	size := func() (int64, error) { return 100, nil }

	pos, err := f.Seek(1, 10, 0, size)
	require.NoError(t, err)
	assert.EqualValues(t, 10, pos)

	pos, err = f.Seek(1, 5, 1, size)
	require.NoError(t, err)
	assert.EqualValues(t, 15, pos)

	pos, err = f.Seek(1, -10, 2, size)
	require.NoError(t, err)
	assert.EqualValues(t, 90, pos)
}

func TestSeekRejectsNegativeResult(t *testing.T) {
	f := &File{offsets: map[int]int64{}}
	size := func() (int64, error) { return 100, nil }

	_, err := f.Seek(1, -1, 0, size)
	assert.Error(t, err)
}

func TestSeekRejectsPastEndOfFile(t *testing.T) {
	f := &File{offsets: map[int]int64{}}
	size := func() (int64, error) { return 100, nil }

	_, err := f.Seek(1, 101, 0, size)
	assert.Error(t, err)
}

func TestCloseUnknownIDFails(t *testing.T) {
	tbl := NewTable()
	assert.Error(t, tbl.Close(999, 1))
}
