package kernel

import (
	"sync"

	"github.com/go-pennos/pennos/clock"
	"github.com/go-pennos/pennos/internal/logger"
	"github.com/go-pennos/pennos/internal/openfiles"
	"github.com/go-pennos/pennos/internal/vfs"
)

// criticalSection is a re-entrant nesting guard. The original program
// masked SIGALRM around non-preemptible sections; since the Go
// re-architecture drives preemption through channel hand-off rather
// than a signal handler (spec.md §9), a signal mask has no
// equivalent — what remains is just a nesting depth counter, which
// nothing outside the kernel reads: the scheduler only regains control
// when a task yields or returns. It is not a mutex: it assumes, as the
// cooperative scheduler guarantees, that only one goroutine is ever
// inside kernel code at a time.
type criticalSection struct {
	depth int
}

func (c *criticalSection) Enter() { c.depth++ }

func (c *criticalSection) Exit() {
	if c.depth == 0 {
		panic("kernel: criticalSection.Exit without matching Enter")
	}
	c.depth--
}

func (c *criticalSection) Active() bool { return c.depth > 0 }

// Kernel is the single object owning every piece of mutable
// simulator state: the process registry, the open-file table, the
// root directory, and the event log. Centralizing it here (rather
// than scattering globals, as the original program's ERRNO/PCB-list
// globals did) is the redesign spec.md §9 calls for.
type Kernel struct {
	mu sync.Mutex
	cs criticalSection

	Registry *Registry
	Files    *openfiles.Table
	Dir      *vfs.Directory
	Log      *logger.Logger
	Clock    clock.Clock

	tick uint64
}

// New builds a Kernel over an already-mounted directory.
func New(dir *vfs.Directory, log *logger.Logger, clk clock.Clock) *Kernel {
	return &Kernel{
		Registry: NewRegistry(),
		Files:    openfiles.NewTable(),
		Dir:      dir,
		Log:      log,
		Clock:    clk,
	}
}

// Tick returns the current scheduler tick, stamped into every log
// event (spec.md §6).
func (k *Kernel) Tick() uint64 {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.tick
}

// AdvanceTick is called once per scheduler quantum.
func (k *Kernel) AdvanceTick() uint64 {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.tick++
	return k.tick
}
