package vfs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentWriteThenReadBack(t *testing.T) {
	d := newTestDirectory(t)
	_, err := d.Touch("a.txt", PermRead|PermWrite)
	require.NoError(t, err)

	c := NewContent(d, "a.txt")
	n, err := c.WriteAt([]byte("hello"), 0)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	buf := make([]byte, 5)
	n, err = c.ReadAt(buf, 0)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "hello", string(buf))

	size, err := c.Size()
	require.NoError(t, err)
	assert.EqualValues(t, 5, size)
}

func TestContentWriteAtOffsetExtendsSize(t *testing.T) {
	d := newTestDirectory(t)
	_, err := d.Touch("a.txt", PermRead|PermWrite)
	require.NoError(t, err)

	c := NewContent(d, "a.txt")
	_, err = c.WriteAt([]byte("hello"), 0)
	require.NoError(t, err)
	_, err = c.WriteAt([]byte("!"), 10)
	require.NoError(t, err)

	size, err := c.Size()
	require.NoError(t, err)
	assert.EqualValues(t, 11, size)
}

func TestContentReadPastEndReturnsZero(t *testing.T) {
	d := newTestDirectory(t)
	_, err := d.Touch("a.txt", PermRead|PermWrite)
	require.NoError(t, err)

	c := NewContent(d, "a.txt")
	_, err = c.WriteAt([]byte("hi"), 0)
	require.NoError(t, err)

	buf := make([]byte, 10)
	n, err := c.ReadAt(buf, 5)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestContentTruncateUpdatesSize(t *testing.T) {
	d := newTestDirectory(t)
	_, err := d.Touch("a.txt", PermRead|PermWrite)
	require.NoError(t, err)

	c := NewContent(d, "a.txt")
	_, err = c.WriteAt([]byte("hello world"), 0)
	require.NoError(t, err)

	require.NoError(t, c.Truncate(5))
	size, err := c.Size()
	require.NoError(t, err)
	assert.EqualValues(t, 5, size)
}
