package vfs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntryMarshalUnmarshalRoundTrip(t *testing.T) {
	e := Entry{
		Name:       "hello.txt",
		Type:       TypeFile,
		Perm:       PermRead | PermWrite,
		Size:       1234,
		FirstBlock: 7,
		MTime:      999,
	}

	buf, err := e.Marshal()
	require.NoError(t, err)
	assert.Len(t, buf, EntrySize)

	got, ok, err := UnmarshalEntry(buf)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, e, got)
}

func TestUnmarshalEntryFreeSlot(t *testing.T) {
	buf := make([]byte, EntrySize)
	e, ok, err := UnmarshalEntry(buf)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, Entry{}, e)
}

func TestMarshalRejectsOverlongName(t *testing.T) {
	e := Entry{Name: "this-name-is-definitely-longer-than-32-bytes-allowed"}
	_, err := e.Marshal()
	assert.Error(t, err)
}

func TestPermString(t *testing.T) {
	assert.Equal(t, "rwx", (PermRead | PermWrite | PermExec).String())
	assert.Equal(t, "r--", PermRead.String())
	assert.Equal(t, "---", Perm(0).String())
}
