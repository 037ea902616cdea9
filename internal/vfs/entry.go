// Package vfs implements the single flat directory and file-content
// engine of spec.md §4.2/§4.3: fixed-size on-disk directory entries,
// chain-backed file content with splice writes, and the name
// resolution every syscall goes through.
package vfs

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/go-pennos/pennos/internal/errno"
)

// EntrySize is the fixed width of one on-disk directory entry.
const EntrySize = 64

const maxNameLen = 32

// EntryType is the type byte of a directory record. The single flat
// root directory only ever stores regular files (TypeFile); the type
// byte is carried for forward compatibility with the on-disk format
// described in spec.md §3.
type EntryType byte

const (
	TypeFile EntryType = 0
	// TypeDeleted is defined for a tombstone record but nothing writes
	// it: Directory.Remove zeroes the whole slot, pinned or not.
	TypeDeleted EntryType = 1
)

// Entry is the decoded form of one 64-byte directory record:
//
//	offset  size  field
//	0       32    name, NUL-padded
//	32      1     type
//	33      1     permission bits
//	34      2     reserved
//	36      4     size in bytes
//	40      2     first FAT block (head of chain); an empty file still owns one block
//	42      8     mtime, unix nanos
//	50      14    reserved
type Entry struct {
	Name       string
	Type       EntryType
	Perm       Perm
	Size       uint32
	FirstBlock uint16
	MTime      int64
}

// Perm mirrors spec.md's three-bit permission model: read, write, and
// executable-as-script.
type Perm byte

const (
	PermRead  Perm = 4
	PermWrite Perm = 2
	PermExec  Perm = 1
)

func (p Perm) String() string {
	r, w, x := '-', '-', '-'
	if p&PermRead != 0 {
		r = 'r'
	}
	if p&PermWrite != 0 {
		w = 'w'
	}
	if p&PermExec != 0 {
		x = 'x'
	}
	return fmt.Sprintf("%c%c%c", r, w, x)
}

// Marshal encodes e into a fresh EntrySize-byte record.
func (e Entry) Marshal() ([]byte, error) {
	if len(e.Name) > maxNameLen {
		return nil, errno.New(errno.IllegalMode, "vfs.Entry.Marshal: name too long")
	}
	buf := make([]byte, EntrySize)
	copy(buf[0:maxNameLen], e.Name)
	buf[32] = byte(e.Type)
	buf[33] = byte(e.Perm)
	binary.LittleEndian.PutUint32(buf[36:40], e.Size)
	binary.LittleEndian.PutUint16(buf[40:42], e.FirstBlock)
	binary.LittleEndian.PutUint64(buf[42:50], uint64(e.MTime))
	return buf, nil
}

// UnmarshalEntry decodes one EntrySize-byte record. A record whose
// first byte is NUL is a free slot and decodes to (Entry{}, false).
func UnmarshalEntry(buf []byte) (Entry, bool, error) {
	if len(buf) != EntrySize {
		return Entry{}, false, errno.New(errno.IllegalMode, "vfs.UnmarshalEntry: bad record size")
	}
	if buf[0] == 0 {
		return Entry{}, false, nil
	}
	nameEnd := bytes.IndexByte(buf[0:maxNameLen], 0)
	if nameEnd < 0 {
		nameEnd = maxNameLen
	}
	e := Entry{
		Name:       string(buf[0:nameEnd]),
		Type:       EntryType(buf[32]),
		Perm:       Perm(buf[33]),
		Size:       binary.LittleEndian.Uint32(buf[36:40]),
		FirstBlock: binary.LittleEndian.Uint16(buf[40:42]),
		MTime:      int64(binary.LittleEndian.Uint64(buf[42:50])),
	}
	return e, true, nil
}
