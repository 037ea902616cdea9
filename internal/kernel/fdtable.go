package kernel

import (
	"github.com/go-pennos/pennos/internal/errno"
)

// MaxFDs bounds the number of descriptors one process may hold open
// at once (spec.md §4.4).
const MaxFDs = 32

// Terminal sentinels occupy the fixed slots stdin/stdout/stderr map
// to by default; they never reference an openfiles.Table entry.
const (
	termNone   = 0
	TermStdin  = -1
	TermStdout = -2
	TermStderr = -3
)

// FDTable is one process's file descriptor table: a fixed-size array
// of slots, each either empty, a terminal sentinel, or an
// openfiles.Table file ID.
type FDTable struct {
	slots [MaxFDs]int // 0 = free, TermStdin/out/err, or a positive file ID
}

// NewFDTable returns a table with the standard three terminal
// descriptors pre-installed.
func NewFDTable() *FDTable {
	t := &FDTable{}
	t.slots[0] = TermStdin
	t.slots[1] = TermStdout
	t.slots[2] = TermStderr
	return t
}

// Install places fileID into the lowest free slot, POSIX-style, and
// returns the fd assigned.
func (t *FDTable) Install(fileID int) (int, error) {
	for fd := 3; fd < MaxFDs; fd++ {
		if t.slots[fd] == termNone {
			t.slots[fd] = fileID
			return fd, nil
		}
	}
	return 0, errno.New(errno.FdTableFull, "kernel.FDTable.Install")
}

// InstallAt forces fileID into a specific fd slot, used for stdio
// redirection at spawn time (spec.md §4.4).
func (t *FDTable) InstallAt(fd, fileID int) error {
	if fd < 0 || fd >= MaxFDs {
		return errno.New(errno.IllegalMode, "kernel.FDTable.InstallAt: fd out of range")
	}
	t.slots[fd] = fileID
	return nil
}

// Get returns the file ID (or terminal sentinel) at fd.
func (t *FDTable) Get(fd int) (int, error) {
	if fd < 0 || fd >= MaxFDs {
		return 0, errno.New(errno.IllegalMode, "kernel.FDTable.Get: fd out of range")
	}
	if t.slots[fd] == termNone {
		return 0, errno.New(errno.NotFound, "kernel.FDTable.Get: fd not open")
	}
	return t.slots[fd], nil
}

// IsTerminal reports whether fd refers to one of the three standard
// terminal streams rather than an open file.
func IsTerminal(fileID int) bool {
	return fileID == TermStdin || fileID == TermStdout || fileID == TermStderr
}

// Release frees fd, returning the file ID it held (0 if it was
// already free).
func (t *FDTable) Release(fd int) (int, error) {
	if fd < 0 || fd >= MaxFDs {
		return 0, errno.New(errno.IllegalMode, "kernel.FDTable.Release: fd out of range")
	}
	id := t.slots[fd]
	t.slots[fd] = termNone
	return id, nil
}

// Clone returns a copy of t with every non-free slot duplicated,
// sharing the same underlying file IDs — the caller is responsible
// for bumping openfiles.Table reference counts to match (spec.md
// §4.4's fork-inherits-fd-table semantics).
func (t *FDTable) Clone() *FDTable {
	c := &FDTable{}
	c.slots = t.slots
	return c
}

// OpenFileIDs returns every non-terminal, non-free file ID currently
// installed, used to drop openfiles.Table references on process exit.
func (t *FDTable) OpenFileIDs() []int {
	var out []int
	for _, id := range t.slots {
		if id > 0 {
			out = append(out, id)
		}
	}
	return out
}

// FindByFileID returns the lowest fd slot currently bound to fileID, if
// any. open() always allocates a fresh fd (spec.md §4.4 never reuses an
// existing slot, only the underlying table entry), so this exists for
// diagnostics and tests that need to locate a process's view of a file
// by its table identity rather than its fd number.
func (t *FDTable) FindByFileID(fileID int) (int, bool) {
	for fd, id := range t.slots {
		if id == fileID {
			return fd, true
		}
	}
	return 0, false
}

// CountFileID reports how many of this process's fd slots currently
// reference fileID, used by close(fd) to decide whether the process's
// offset on that entry should be dropped yet.
func (t *FDTable) CountFileID(fileID int) int {
	n := 0
	for _, id := range t.slots {
		if id == fileID {
			n++
		}
	}
	return n
}
