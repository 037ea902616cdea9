package kernel

import (
	"github.com/go-pennos/pennos/internal/errno"
	"github.com/go-pennos/pennos/internal/openfiles"
	"github.com/go-pennos/pennos/internal/vfs"
)

// permitsMode reports whether perm allows the access mode requested by
// an open() call (spec.md §4.4: Read requires R, Write/Append require
// both R and W).
func permitsMode(perm vfs.Perm, mode openfiles.Mode) bool {
	if mode == openfiles.ModeRead {
		return perm&vfs.PermRead != 0
	}
	return perm&vfs.PermRead != 0 && perm&vfs.PermWrite != 0
}

// Open resolves name through the directory (creating it if it does
// not exist and mode allows writing), registers it in the open-file
// table — reusing name's existing entry if pid or another process
// already has it open, rather than minting a second one — and binds a
// fresh fd in pid's table.
func (k *Kernel) Open(pid int, name string, mode openfiles.Mode) (int, error) {
	k.cs.Enter()
	defer k.cs.Exit()

	proc, err := k.Registry.Get(pid)
	if err != nil {
		return 0, err
	}

	k.Dir.Lock()
	entry, ok := k.Dir.Find(name)
	if !ok {
		if mode == openfiles.ModeRead {
			k.Dir.Unlock()
			return 0, errno.New(errno.NotFound, "kernel.Open: "+name)
		}
		var terr error
		entry, terr = k.Dir.Touch(name, vfs.PermRead|vfs.PermWrite)
		if terr != nil {
			k.Dir.Unlock()
			return 0, terr
		}
	}
	if !permitsMode(entry.Perm, mode) {
		k.Dir.Unlock()
		return 0, errno.New(errno.PermissionDenied, "kernel.Open: "+name)
	}
	k.Dir.Pin(name)
	k.Dir.Unlock()

	offset := int64(0)
	if mode == openfiles.ModeAppend {
		offset = int64(entry.Size)
	}

	f, err := k.Files.Open(name, mode, pid, offset)
	if err != nil {
		k.Dir.Lock()
		k.Dir.Unpin(name, entry.FirstBlock)
		k.Dir.Unlock()
		return 0, err
	}

	fd, err := proc.FDTable.Install(f.ID)
	if err != nil {
		k.Files.Close(f.ID, pid)
		k.Dir.Lock()
		k.Dir.Unpin(name, entry.FirstBlock)
		k.Dir.Unlock()
		return 0, err
	}
	return fd, nil
}

// Read copies up to len(buf) bytes from fd's current offset.
func (k *Kernel) Read(pid, fd int, buf []byte) (int, error) {
	k.cs.Enter()
	defer k.cs.Exit()

	proc, err := k.Registry.Get(pid)
	if err != nil {
		return 0, err
	}
	fileID, err := proc.FDTable.Get(fd)
	if err != nil {
		return 0, err
	}
	if fileID == TermStdout || fileID == TermStderr {
		return 0, errno.New(errno.ReadFromOutput, "kernel.Read")
	}
	if fileID == TermStdin {
		return 0, errno.New(errno.IllegalMode, "kernel.Read: terminal stdin reads go through the shell, not this syscall")
	}

	f, err := k.Files.Lookup(fileID)
	if err != nil {
		return 0, err
	}

	k.Dir.Lock()
	n, err := vfs.NewContent(k.Dir, f.Name).ReadAt(buf, f.Offset(pid))
	k.Dir.Unlock()
	if err != nil {
		return 0, err
	}
	k.Files.Advance(fileID, pid, int64(n))
	return n, nil
}

// Write copies buf to fd's current offset, failing with ReadOnly if
// pid does not hold the entry's write/append slot (spec.md §4.4: a
// Read-mode fd, or a second pid's Write-mode fd, can never write
// through to the backing file).
func (k *Kernel) Write(pid, fd int, buf []byte) (int, error) {
	k.cs.Enter()
	defer k.cs.Exit()

	proc, err := k.Registry.Get(pid)
	if err != nil {
		return 0, err
	}
	fileID, err := proc.FDTable.Get(fd)
	if err != nil {
		return 0, err
	}
	if fileID == TermStdin {
		return 0, errno.New(errno.WriteToInput, "kernel.Write")
	}
	if fileID == TermStdout || fileID == TermStderr {
		return 0, nil // terminal output is handled by the shell layer, not the file table
	}

	f, err := k.Files.Lookup(fileID)
	if err != nil {
		return 0, err
	}
	if !f.IsWriter(pid) {
		return 0, errno.New(errno.ReadOnly, "kernel.Write")
	}

	k.Dir.Lock()
	n, err := vfs.NewContent(k.Dir, f.Name).WriteAt(buf, f.Offset(pid))
	k.Dir.Unlock()
	if err != nil {
		return 0, err
	}
	k.Files.Advance(fileID, pid, int64(n))
	return n, nil
}

// Close releases fd from pid's table. Once pid's last fd aliasing the
// entry is gone, its offset (and write slot, if held) is dropped from
// the open-file table; the directory pin taken at Open always drops
// one-for-one with the fd, regardless of sharing.
func (k *Kernel) Close(pid, fd int) error {
	k.cs.Enter()
	defer k.cs.Exit()

	proc, err := k.Registry.Get(pid)
	if err != nil {
		return err
	}
	fileID, err := proc.FDTable.Get(fd)
	if err != nil {
		return err
	}
	if IsTerminal(fileID) {
		return errno.New(errno.CloseTerminal, "kernel.Close")
	}

	f, err := k.Files.Lookup(fileID)
	if err != nil {
		return err
	}
	name := f.Name

	if _, err := proc.FDTable.Release(fd); err != nil {
		return err
	}

	if proc.FDTable.CountFileID(fileID) == 0 {
		if err := k.Files.Close(fileID, pid); err != nil {
			return err
		}
	}

	k.Dir.Lock()
	entry, stillLive := k.Dir.Find(name)
	var head uint16
	if stillLive {
		head = entry.FirstBlock
	}
	err = k.Dir.Unpin(name, head)
	k.Dir.Unlock()
	return err
}

// Lseek repositions pid's offset on fd.
func (k *Kernel) Lseek(pid, fd int, offset int64, whence int) (int64, error) {
	k.cs.Enter()
	defer k.cs.Exit()

	proc, err := k.Registry.Get(pid)
	if err != nil {
		return 0, err
	}
	fileID, err := proc.FDTable.Get(fd)
	if err != nil {
		return 0, err
	}
	if IsTerminal(fileID) {
		return 0, errno.New(errno.SeekOnTerminal, "kernel.Lseek")
	}

	f, err := k.Files.Lookup(fileID)
	if err != nil {
		return 0, err
	}

	return f.Seek(pid, offset, whence, func() (int64, error) {
		k.Dir.Lock()
		defer k.Dir.Unlock()
		return vfs.NewContent(k.Dir, f.Name).Size()
	})
}

// Unlink removes name from the directory outright (used by shell "rm"
// and not gated by any open pid's fd table).
func (k *Kernel) Unlink(name string) error {
	k.cs.Enter()
	defer k.cs.Exit()

	k.Dir.Lock()
	defer k.Dir.Unlock()
	return k.Dir.Remove(name)
}

// Chmod sets name's permission bits, returning the previous bits
// (spec.md §4.7).
func (k *Kernel) Chmod(name string, perm vfs.Perm) (vfs.Perm, error) {
	k.cs.Enter()
	defer k.cs.Exit()

	k.Dir.Lock()
	defer k.Dir.Unlock()
	return k.Dir.Chmod(name, perm)
}
