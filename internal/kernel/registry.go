package kernel

import (
	"sync"

	"github.com/go-pennos/pennos/internal/errno"
)

// Registry is the arena of every live PCB, replacing the original
// circular linked list of PCB pointers with a PID-keyed map
// (spec.md §9 redesign flag: no raw pointers, so the structure is
// trivially safe to share across the scheduler and syscall goroutines
// behind a mutex). PCB.Next/Prev are not linked; callers that need
// every process iterate Snapshot.
type Registry struct {
	mu    sync.Mutex
	procs map[int]*PCB

	nextPID int
}

// NewRegistry returns an empty registry. PID 0 is reserved for the
// orphan-reparenting root and is never itself registered.
func NewRegistry() *Registry {
	return &Registry{procs: make(map[int]*PCB), nextPID: 1}
}

// Spawn allocates a new PID and registers a PCB for it under parent.
func (r *Registry) Spawn(ppid, priority int, name string) *PCB {
	r.mu.Lock()
	defer r.mu.Unlock()

	pid := r.nextPID
	r.nextPID++

	p := newPCB(pid, ppid, priority, name)
	r.procs[pid] = p

	if parent, ok := r.procs[ppid]; ok {
		parent.Children[pid] = true
	}
	return p
}

// Get returns the PCB for pid.
func (r *Registry) Get(pid int) (*PCB, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.procs[pid]
	if !ok {
		return nil, errno.New(errno.NotFound, "kernel.Registry.Get")
	}
	return p, nil
}

// Deregister removes pid from the arena entirely, used once a zombie
// has been reaped by waitpid.
func (r *Registry) Deregister(pid int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.procs, pid)
}

// ReparentOrphans walks pid's children and reassigns them to PID 0,
// the kernel's permanent orphan root (spec.md §4.7's orphan
// re-parenting supplement).
func (r *Registry) ReparentOrphans(pid int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	parent, ok := r.procs[pid]
	if !ok {
		return
	}
	for childPID := range parent.Children {
		if child, ok := r.procs[childPID]; ok {
			child.PPID = 0
		}
	}
	parent.Children = make(map[int]bool)
}

// Snapshot returns every live PCB, in no particular order, for
// "ps"-style listing and for the scheduler, which builds its lottery
// from it on every tick.
func (r *Registry) Snapshot() []*PCB {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*PCB, 0, len(r.procs))
	for _, p := range r.procs {
		out = append(out, p)
	}
	return out
}
