// Package openfiles implements the open-file table of spec.md §4.3: at
// most one entry per live file, shared across every process that has
// it open, with one byte offset per process rather than one per fd.
// Two fds in the same process that reference the same entry advance
// the same offset; two different processes each get their own.
package openfiles

import (
	"sync"

	"github.com/go-pennos/pennos/internal/errno"
)

// Mode is the access mode an open() call requested.
type Mode int

const (
	ModeRead Mode = iota
	ModeWrite
	ModeAppend
)

// File is one entry in the open-file table: a name, the pid currently
// holding write/append access (0 if none), and a per-pid offset map.
//
// Grounded on fs/inode/lookup_count.go's refcount-to-destroy pattern,
// generalized from "destroy inode when the last lookup drops" to
// "retire the entry once the last process's offset is gone".
type File struct {
	ID   int
	Name string

	mu      sync.Mutex
	writer  int // pid with write/append access, 0 if none
	offsets map[int]int64
}

// Offset returns pid's current byte offset into the entry.
func (f *File) Offset(pid int) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.offsets[pid]
}

// IsWriter reports whether pid holds the entry's write/append slot.
func (f *File) IsWriter(pid int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writer != 0 && f.writer == pid
}

// Seek repositions pid's offset per the given whence, mirroring
// lseek(2): 0=start, 1=current, 2=end. The result must land in
// [0, size] (spec.md §4.4's SeekOutOfBounds edge case covers both
// directions, not just negative results); sizeFn supplies the file's
// current size since the table itself doesn't track content.
func (f *File) Seek(pid int, offset int64, whence int, sizeFn func() (int64, error)) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	size, err := sizeFn()
	if err != nil {
		return 0, err
	}

	var base int64
	switch whence {
	case 0:
		base = 0
	case 1:
		base = f.offsets[pid]
	case 2:
		base = size
	default:
		return 0, errno.New(errno.IllegalMode, "openfiles.Seek: bad whence")
	}

	newOffset := base + offset
	if newOffset < 0 || newOffset > size {
		return 0, errno.New(errno.SeekOutOfBounds, "openfiles.Seek")
	}
	f.offsets[pid] = newOffset
	return newOffset, nil
}

// advance moves pid's offset forward by n bytes after a read or write.
func (f *File) advance(pid int, n int64) {
	f.mu.Lock()
	f.offsets[pid] += n
	f.mu.Unlock()
}

// Table is the process-independent registry of open files, keyed both
// by file ID (what fd tables store) and by name (so a second open of a
// live file finds the existing entry instead of minting another one).
type Table struct {
	mu     sync.Mutex
	files  map[int]*File
	byName map[string]*File
	nextID int
}

// NewTable constructs an empty open-file table.
func NewTable() *Table {
	return &Table{
		files:  make(map[int]*File),
		byName: make(map[string]*File),
	}
}

// Open registers name under mode for pid, reusing name's existing
// entry if one is already open rather than minting a second (spec.md
// §4.3: at most one entry per live file). offset is the position the
// caller's view of the file starts at: 0 for Read/Write, the file's
// current size for Append; it overwrites any offset pid already held
// on this entry, matching open(2)'s "reposition, don't stack" rule for
// a name a process already has open.
//
// Write/append access is exclusive across pids (spec.md §4.1); a pid
// reopening its own write is not contention.
func (t *Table) Open(name string, mode Mode, pid int, offset int64) (*File, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	f, ok := t.byName[name]
	if !ok {
		t.nextID++
		f = &File{ID: t.nextID, Name: name, offsets: make(map[int]int64)}
		t.files[f.ID] = f
		t.byName[name] = f
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if (mode == ModeWrite || mode == ModeAppend) && f.writer != 0 && f.writer != pid {
		return nil, errno.New(errno.WriteContended, "openfiles.Open: "+name)
	}
	if mode == ModeWrite || mode == ModeAppend {
		f.writer = pid
	}
	f.offsets[pid] = offset
	return f, nil
}

// Dup gives childPID a copy of parentPID's offset on id, used when a
// spawned child inherits a parent's fd (spec.md §4.4's spawn-time
// inheritance). If parentPID holds the write slot, it transfers to
// childPID, matching stdio-redirection-at-spawn handing the write off
// to whichever process will actually use the fd.
func (t *Table) Dup(id, parentPID, childPID int) error {
	t.mu.Lock()
	f, ok := t.files[id]
	t.mu.Unlock()
	if !ok {
		return errno.New(errno.NotFound, "openfiles.Dup")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	offset, ok := f.offsets[parentPID]
	if !ok {
		return errno.New(errno.NotFound, "openfiles.Dup: parent holds no offset")
	}
	f.offsets[childPID] = offset
	if f.writer == parentPID {
		f.writer = childPID
	}
	return nil
}

// Close drops pid's offset from id, clearing the writer slot if pid
// held it, and retires the entry once no process retains an offset on
// it (spec.md §4.4's close(fd) algorithm).
func (t *Table) Close(id, pid int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	f, ok := t.files[id]
	if !ok {
		return errno.New(errno.NotFound, "openfiles.Close")
	}

	f.mu.Lock()
	delete(f.offsets, pid)
	if f.writer == pid {
		f.writer = 0
	}
	empty := len(f.offsets) == 0
	f.mu.Unlock()

	if empty {
		delete(t.files, id)
		delete(t.byName, f.Name)
	}
	return nil
}

// Lookup returns the entry for id.
func (t *Table) Lookup(id int) (*File, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	f, ok := t.files[id]
	if !ok {
		return nil, errno.New(errno.NotFound, "openfiles.Lookup")
	}
	return f, nil
}

// LookupByName returns name's entry, if one is currently open.
func (t *Table) LookupByName(name string) (*File, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	f, ok := t.byName[name]
	return f, ok
}

// Advance moves pid's offset on id forward by n bytes, called after a
// successful read or write through it.
func (t *Table) Advance(id, pid int, n int64) error {
	f, err := t.Lookup(id)
	if err != nil {
		return err
	}
	f.advance(pid, n)
	return nil
}
