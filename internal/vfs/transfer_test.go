package vfs

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyCreatesNewDestination(t *testing.T) {
	d := newTestDirectory(t)
	_, err := d.Touch("src", PermRead|PermWrite)
	require.NoError(t, err)
	_, err = NewContent(d, "src").WriteAt([]byte("payload"), 0)
	require.NoError(t, err)

	require.NoError(t, Copy(d, "src", "dst"))

	buf := make([]byte, 7)
	_, err = NewContent(d, "dst").ReadAt(buf, 0)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(buf))
}

func TestCopyOverwritesExistingDestination(t *testing.T) {
	d := newTestDirectory(t)
	_, err := d.Touch("src", PermRead|PermWrite)
	require.NoError(t, err)
	_, err = NewContent(d, "src").WriteAt([]byte("new"), 0)
	require.NoError(t, err)
	_, err = d.Touch("dst", PermRead|PermWrite)
	require.NoError(t, err)
	_, err = NewContent(d, "dst").WriteAt([]byte("old-content"), 0)
	require.NoError(t, err)

	require.NoError(t, Copy(d, "src", "dst"))

	buf := make([]byte, 3)
	_, err = NewContent(d, "dst").ReadAt(buf, 0)
	require.NoError(t, err)
	assert.Equal(t, "new", string(buf))
}

func TestConcatenateJoinsInOrder(t *testing.T) {
	d := newTestDirectory(t)
	for _, pair := range [][2]string{{"a", "one-"}, {"b", "two-"}, {"c", "three"}} {
		_, err := d.Touch(pair[0], PermRead|PermWrite)
		require.NoError(t, err)
		_, err = NewContent(d, pair[0]).WriteAt([]byte(pair[1]), 0)
		require.NoError(t, err)
	}

	out, err := Concatenate(d, []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Equal(t, "one-two-three", string(out))
}

func TestConcatenateMissingNameFails(t *testing.T) {
	d := newTestDirectory(t)
	_, err := Concatenate(d, []string{"missing"})
	assert.Error(t, err)
}

func TestHexDumpFormatsOffsetAndAscii(t *testing.T) {
	out := HexDump([]byte("Hi!"))
	assert.True(t, strings.HasPrefix(out, "0000  "))
	assert.Contains(t, out, "48 69 21")
	assert.Contains(t, out, "|Hi!|")
}
