// Package kernel implements the process control block registry,
// per-process file descriptor tables, and the syscalls spec.md §4.4
// and §4.5 define, plus the re-entrant critical-section guard that
// stands in for the original program's signal masking (spec.md §5,
// §9).
package kernel

import "github.com/go-pennos/pennos/common"

// Status is a process's scheduling state.
type Status int

const (
	StatusRunning Status = iota
	StatusStopped
	StatusBlocked
	StatusZombie
)

func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "RUNNING"
	case StatusStopped:
		return "STOPPED"
	case StatusBlocked:
		return "BLOCKED"
	case StatusZombie:
		return "ZOMBIE"
	default:
		return "UNKNOWN"
	}
}

// Priority levels, weighted 9/6/4 in the scheduler's lottery (spec.md
// §4.6).
const (
	PriorityHigh   = -1
	PriorityNormal = 0
	PriorityLow    = 1
)

// PCB is one process's control block: the arena entry the registry
// indexes by PID, replacing the original circular-pointer list with
// a flat, GC-friendly slot (spec.md §9 redesign).
type PCB struct {
	PID      int
	PPID     int
	Priority int
	Status   Status
	Name     string
	ExitCode int

	Children map[int]bool

	// Zombies holds the PIDs of this process's children that have
	// exited but not yet been reaped, in exit order, so waitpid(0)
	// reaps the oldest zombie first the way POSIX wait() does.
	Zombies common.Queue[int]

	FDTable *FDTable

	// Next/Prev are PID-valued link fields set to -1 at creation;
	// nothing links them, and the scheduler draws from
	// Registry.Snapshot instead of walking a ready list.
	Next, Prev int
}

func newPCB(pid, ppid, priority int, name string) *PCB {
	return &PCB{
		PID:      pid,
		PPID:     ppid,
		Priority: priority,
		Status:   StatusRunning,
		Name:     name,
		Children: make(map[int]bool),
		Zombies:  common.NewLinkedListQueue[int](),
		FDTable:  NewFDTable(),
		Next:     -1,
		Prev:     -1,
	}
}
