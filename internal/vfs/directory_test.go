package vfs

import (
	"path/filepath"
	"testing"

	"github.com/go-pennos/pennos/clock"
	"github.com/go-pennos/pennos/internal/block"
	"github.com/go-pennos/pennos/internal/fat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDirectory(t *testing.T) *Directory {
	t.Helper()
	path := filepath.Join(t.TempDir(), "disk.img")
	dev, err := block.Format(path, 1, 0)
	require.NoError(t, err)
	t.Cleanup(func() { dev.Close() })

	dir, err := NewDirectory(dev, &clock.FakeClock{})
	require.NoError(t, err)
	return dir
}

func TestTouchThenFind(t *testing.T) {
	d := newTestDirectory(t)

	e, err := d.Touch("a.txt", PermRead|PermWrite)
	require.NoError(t, err)
	assert.Equal(t, "a.txt", e.Name)
	assert.EqualValues(t, 0, e.Size)

	got, ok := d.Find("a.txt")
	require.True(t, ok)
	assert.Equal(t, e, got)
}

func TestTouchRejectsDuplicateName(t *testing.T) {
	d := newTestDirectory(t)
	_, err := d.Touch("a.txt", PermRead)
	require.NoError(t, err)

	_, err = d.Touch("a.txt", PermRead)
	assert.Error(t, err)
}

func TestListIsSortedAndOmitsFreeSlots(t *testing.T) {
	d := newTestDirectory(t)
	_, err := d.Touch("zeta", PermRead)
	require.NoError(t, err)
	_, err = d.Touch("alpha", PermRead)
	require.NoError(t, err)

	names := []string{}
	for _, e := range d.List() {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"alpha", "zeta"}, names)
}

func TestChmodReturnsPreviousPermission(t *testing.T) {
	d := newTestDirectory(t)
	_, err := d.Touch("a.txt", PermRead)
	require.NoError(t, err)

	prev, err := d.Chmod("a.txt", PermRead|PermWrite)
	require.NoError(t, err)
	assert.Equal(t, PermRead, prev)

	e, _ := d.Find("a.txt")
	assert.Equal(t, PermRead|PermWrite, e.Perm)
}

func TestRenameMovesEntry(t *testing.T) {
	d := newTestDirectory(t)
	_, err := d.Touch("old", PermRead)
	require.NoError(t, err)

	require.NoError(t, d.Rename("old", "new"))

	_, ok := d.Find("old")
	assert.False(t, ok)
	_, ok = d.Find("new")
	assert.True(t, ok)
}

func TestRenameFailsWhenTargetExists(t *testing.T) {
	d := newTestDirectory(t)
	_, err := d.Touch("a", PermRead)
	require.NoError(t, err)
	_, err = d.Touch("b", PermRead)
	require.NoError(t, err)

	assert.Error(t, d.Rename("a", "b"))
}

func TestRemoveFreesChainWhenUnpinned(t *testing.T) {
	d := newTestDirectory(t)
	e, err := d.Touch("a", PermRead)
	require.NoError(t, err)

	require.NoError(t, d.Remove("a"))

	_, ok := d.Find("a")
	assert.False(t, ok)
	assert.Equal(t, fat.FreeCell, d.dev.Cell(int(e.FirstBlock)))
}

func TestRemoveDefersFreeingWhilePinned(t *testing.T) {
	d := newTestDirectory(t)
	e, err := d.Touch("a", PermRead)
	require.NoError(t, err)

	d.Pin("a")
	require.NoError(t, d.Remove("a"))

	_, ok := d.Find("a")
	assert.False(t, ok)
	assert.NotEqual(t, fat.FreeCell, d.dev.Cell(int(e.FirstBlock)))

	require.NoError(t, d.Unpin("a", e.FirstBlock))
	assert.Equal(t, fat.FreeCell, d.dev.Cell(int(e.FirstBlock)))
}
