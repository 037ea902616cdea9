package kernel

import (
	"github.com/go-pennos/pennos/internal/errno"
	"github.com/go-pennos/pennos/internal/logger"
)

// Signal is a kill(2)-style request delivered to a process.
type Signal int

const (
	SignalTerminate Signal = iota
	SignalStop
	SignalContinue
)

// Spawn registers a new child of ppid and logs its creation.
// stdinFileID and stdoutFileID, if non-negative, are file IDs from the parent's table
// to install as the child's fd 0/1 (spec.md §4.4's redirection at
// spawn); a negative value leaves the inherited terminal sentinel in
// place.
func (k *Kernel) Spawn(ppid, priority int, name string, stdinFileID, stdoutFileID int) (*PCB, error) {
	k.cs.Enter()
	defer k.cs.Exit()

	if ppid != 0 {
		if _, err := k.Registry.Get(ppid); err != nil {
			return nil, err
		}
	}

	child := k.Registry.Spawn(ppid, priority, name)

	if err := k.inheritFD(ppid, child, 0, stdinFileID); err != nil {
		return nil, err
	}
	if err := k.inheritFD(ppid, child, 1, stdoutFileID); err != nil {
		return nil, err
	}

	k.Log.Event(k.Tick(), logger.KindCreate, child.PID, child.Priority, child.Name)
	return child, nil
}

// inheritFD binds fileID into child's fd slot, giving child its own
// open-file offset seeded from the parent's (spec.md §4.4's
// spawn-time inheritance) and transferring write ownership to the
// child, since IO redirection at spawn hands the stream off rather
// than sharing it. A negative fileID leaves the inherited terminal
// sentinel in place.
func (k *Kernel) inheritFD(ppid int, child *PCB, slot, fileID int) error {
	if fileID < 0 {
		return nil
	}
	f, err := k.Files.Lookup(fileID)
	if err != nil {
		return err
	}
	if err := k.Files.Dup(fileID, ppid, child.PID); err != nil {
		return err
	}
	k.Dir.Lock()
	k.Dir.Pin(f.Name)
	k.Dir.Unlock()
	return child.FDTable.InstallAt(slot, fileID)
}

// Exit transitions pid to ZOMBIE, releases its open files, and
// re-parents any children to PID 0 (spec.md §4.7's orphan
// re-parenting supplement). The zombie stays in the registry until a
// waitpid reaps it.
func (k *Kernel) Exit(pid, exitCode int) error {
	k.cs.Enter()
	defer k.cs.Exit()

	proc, err := k.Registry.Get(pid)
	if err != nil {
		return err
	}

	for _, fileID := range proc.FDTable.OpenFileIDs() {
		f, err := k.Files.Lookup(fileID)
		if err == nil {
			k.Dir.Lock()
			entry, stillLive := k.Dir.Find(f.Name)
			var head uint16
			if stillLive {
				head = entry.FirstBlock
			}
			k.Files.Close(fileID, pid)
			k.Dir.Unpin(f.Name, head)
			k.Dir.Unlock()
		}
	}

	orphans := proc.Children
	k.Registry.ReparentOrphans(pid)
	for childPID := range orphans {
		k.Log.Event(k.Tick(), logger.KindOrphan, childPID, 0, "")
	}

	proc.Status = StatusZombie
	proc.ExitCode = exitCode
	k.Log.Event(k.Tick(), logger.KindExited, pid, proc.Priority, proc.Name)
	k.Log.Event(k.Tick(), logger.KindZombie, pid, proc.Priority, proc.Name)

	if parent, err := k.Registry.Get(proc.PPID); err == nil {
		parent.Zombies.Push(pid)
	}
	return nil
}

// Waitpid reaps a zombie child of ppid. If childPID is 0, the oldest
// zombie child that exited is reaped first, matching POSIX wait()'s
// FIFO order; otherwise exactly that child must be a zombie.
func (k *Kernel) Waitpid(ppid, childPID int) (int, int, error) {
	k.cs.Enter()
	defer k.cs.Exit()

	parent, err := k.Registry.Get(ppid)
	if err != nil {
		return 0, 0, err
	}

	if childPID != 0 {
		if !parent.Children[childPID] {
			return 0, 0, errno.New(errno.NoChild, "kernel.Waitpid")
		}
		child, err := k.Registry.Get(childPID)
		if err != nil || child.Status != StatusZombie {
			return 0, 0, errno.New(errno.NoChild, "kernel.Waitpid")
		}
		exitCode := child.ExitCode
		delete(parent.Children, childPID)
		k.Registry.Deregister(childPID)
		return childPID, exitCode, nil
	}

	// Drain only the entries queued as of this call; any left
	// unreaped stay in FIFO order for the next waitpid(0).
	for n := parent.Zombies.Len(); n > 0; n-- {
		pid := parent.Zombies.Pop()
		if !parent.Children[pid] {
			continue // already reaped by an explicit waitpid(pid)
		}
		child, err := k.Registry.Get(pid)
		if err != nil {
			continue
		}
		exitCode := child.ExitCode
		delete(parent.Children, pid)
		k.Registry.Deregister(pid)
		return pid, exitCode, nil
	}

	return 0, 0, errno.New(errno.NoChild, "kernel.Waitpid")
}

// Kill delivers sig to pid, updating its status and logging the
// corresponding event.
func (k *Kernel) Kill(pid int, sig Signal) error {
	k.cs.Enter()
	defer k.cs.Exit()

	proc, err := k.Registry.Get(pid)
	if err != nil {
		return err
	}

	switch sig {
	case SignalTerminate:
		return k.exitLocked(proc, -1)
	case SignalStop:
		proc.Status = StatusStopped
		k.Log.Event(k.Tick(), logger.KindStopped, pid, proc.Priority, proc.Name)
	case SignalContinue:
		proc.Status = StatusRunning
		k.Log.Event(k.Tick(), logger.KindContinued, pid, proc.Priority, proc.Name)
	}
	return nil
}

// exitLocked runs the same transition as Exit but without re-entering
// the critical section (Kill already holds it).
func (k *Kernel) exitLocked(proc *PCB, exitCode int) error {
	for _, fileID := range proc.FDTable.OpenFileIDs() {
		f, err := k.Files.Lookup(fileID)
		if err == nil {
			k.Dir.Lock()
			entry, stillLive := k.Dir.Find(f.Name)
			var head uint16
			if stillLive {
				head = entry.FirstBlock
			}
			k.Files.Close(fileID, proc.PID)
			k.Dir.Unpin(f.Name, head)
			k.Dir.Unlock()
		}
	}
	orphans := proc.Children
	k.Registry.ReparentOrphans(proc.PID)
	for childPID := range orphans {
		k.Log.Event(k.Tick(), logger.KindOrphan, childPID, 0, "")
	}
	proc.Status = StatusZombie
	proc.ExitCode = exitCode
	k.Log.Event(k.Tick(), logger.KindExited, proc.PID, proc.Priority, proc.Name)
	k.Log.Event(k.Tick(), logger.KindZombie, proc.PID, proc.Priority, proc.Name)

	if parent, err := k.Registry.Get(proc.PPID); err == nil {
		parent.Zombies.Push(proc.PID)
	}
	return nil
}

// Nice changes pid's scheduling priority, returning the previous
// value and logging a CHANGED record carrying both (spec.md §6).
func (k *Kernel) Nice(pid, newPriority int) (int, error) {
	k.cs.Enter()
	defer k.cs.Exit()

	proc, err := k.Registry.Get(pid)
	if err != nil {
		return 0, err
	}
	old := proc.Priority
	proc.Priority = newPriority
	k.Log.Event(k.Tick(), logger.KindChanged, pid, proc.Priority, proc.Name, old, newPriority)
	return old, nil
}

// Block marks pid as waiting on an event (e.g. sleep or a blocking
// waitpid) so the scheduler skips it until Unblock is called.
func (k *Kernel) Block(pid int) error {
	proc, err := k.Registry.Get(pid)
	if err != nil {
		return err
	}
	proc.Status = StatusBlocked
	k.Log.Event(k.Tick(), logger.KindBlocked, pid, proc.Priority, proc.Name)
	return nil
}

// Unblock returns pid to RUNNING so the scheduler resumes considering
// it.
func (k *Kernel) Unblock(pid int) error {
	proc, err := k.Registry.Get(pid)
	if err != nil {
		return err
	}
	proc.Status = StatusRunning
	k.Log.Event(k.Tick(), logger.KindContinued, pid, proc.Priority, proc.Name)
	return nil
}
