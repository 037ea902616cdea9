package sched

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/go-pennos/pennos/clock"
	"github.com/go-pennos/pennos/internal/kernel"
	"github.com/go-pennos/pennos/internal/logger"
	"golang.org/x/sync/errgroup"
)

// reapInterval is how often the orphan reaper sweeps the registry for
// zombies nobody will ever waitpid() on. It runs far less often than a
// scheduling tick since PID-0 orphans only accumulate when a parent
// exited before reaping one of its own children.
const reapInterval = 500 * time.Millisecond

// weight maps a process priority to its ticket count in the
// lottery, per spec.md §4.6: a high-priority process is 9/4 (2.25)
// times as likely to run as a low-priority one.
func weight(priority int) int {
	switch priority {
	case kernel.PriorityHigh:
		return 9
	case kernel.PriorityNormal:
		return 6
	case kernel.PriorityLow:
		return 4
	default:
		return 6
	}
}

// Scheduler runs a priority-weighted lottery over every RUNNING
// process once per tick, using math/rand seeded from configuration so
// a run is reproducible given the same seed.
type Scheduler struct {
	mu    sync.Mutex
	tasks map[int]*Task

	k   *kernel.Kernel
	clk clock.Clock
	rng *rand.Rand
}

// New builds a Scheduler over k, seeded with seed.
func New(k *kernel.Kernel, clk clock.Clock, seed int64) *Scheduler {
	return &Scheduler{
		tasks: make(map[int]*Task),
		k:     k,
		clk:   clk,
		rng:   rand.New(rand.NewSource(seed)),
	}
}

// Register adds pid's task to the lottery.
func (s *Scheduler) Register(pid int, fn TaskFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[pid] = NewTask(pid, fn)
}

// ticket is one (pid, cumulative weight) pair used to build the
// weighted lottery draw.
type ticket struct {
	pid        int
	cumulative int
}

// pickNext draws a PID from the weighted lottery over every currently
// RUNNING, registered process. It returns (0, false) when nothing is
// runnable.
func (s *Scheduler) pickNext() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var tickets []ticket
	total := 0
	for _, proc := range s.k.Registry.Snapshot() {
		if proc.Status != kernel.StatusRunning {
			continue
		}
		if _, ok := s.tasks[proc.PID]; !ok {
			continue
		}
		total += weight(proc.Priority)
		tickets = append(tickets, ticket{pid: proc.PID, cumulative: total})
	}
	if total == 0 {
		return 0, false
	}

	draw := s.rng.Intn(total)
	for _, tk := range tickets {
		if draw < tk.cumulative {
			return tk.pid, true
		}
	}
	return 0, false
}

// RunTick runs exactly one scheduling decision: pick a process,
// advance the tick counter, log the SCHEDULE event, and grant it one
// quantum. It returns false when there was nothing runnable.
func (s *Scheduler) RunTick() (bool, error) {
	pid, ok := s.pickNext()
	if !ok {
		return false, nil
	}

	tick := s.k.AdvanceTick()
	proc, err := s.k.Registry.Get(pid)
	if err != nil {
		return false, err
	}
	s.k.Log.Event(tick, logger.KindSchedule, pid, proc.Priority, proc.Name)

	s.mu.Lock()
	task := s.tasks[pid]
	s.mu.Unlock()

	finished := task.RunOne()
	if finished {
		s.mu.Lock()
		delete(s.tasks, pid)
		s.mu.Unlock()
		return true, s.k.Exit(pid, 0)
	}
	return true, nil
}

// RunLoop drives RunTick to completion alongside a background orphan
// reaper, sleeping via s.clk.After between iterations, until ctx is
// cancelled or the ready set goes empty. The two goroutines share one
// errgroup so a fatal tick-loop error, or the tick loop draining the
// ready set, tears the reaper down too. Tests that want deterministic
// ticks should drive RunTick directly against a clock.SimulatedClock
// instead of calling RunLoop.
func (s *Scheduler) RunLoop(ctx context.Context, period time.Duration) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		defer cancel()
		return s.runTickLoop(gctx, period)
	})
	g.Go(func() error {
		return s.runReapLoop(gctx)
	})
	return g.Wait()
}

func (s *Scheduler) runTickLoop(ctx context.Context, period time.Duration) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		ran, err := s.RunTick()
		if err != nil {
			return err
		}
		if !ran {
			return nil
		}

		select {
		case <-ctx.Done():
			return nil
		case <-s.clk.After(period):
		}
	}
}

// runReapLoop periodically deregisters zombie PCBs that were
// re-parented to PID 0 (spec.md §4.7's orphan supplement): nothing
// ever calls waitpid(0, ...) as PID 0, so without this they would sit
// in the registry forever once their exited parent's ORPHAN event
// fired.
func (s *Scheduler) runReapLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.clk.After(reapInterval):
		}
		s.reapOrphanedZombies()
	}
}

func (s *Scheduler) reapOrphanedZombies() {
	for _, proc := range s.k.Registry.Snapshot() {
		if proc.Status == kernel.StatusZombie && proc.PPID == 0 {
			s.k.Registry.Deregister(proc.PID)
			s.k.Log.Event(s.k.Tick(), logger.KindReaped, proc.PID, proc.Priority, proc.Name)
		}
	}
}
