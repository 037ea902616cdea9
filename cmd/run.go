package cmd

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-pennos/pennos/clock"
	"github.com/go-pennos/pennos/internal/block"
	"github.com/go-pennos/pennos/internal/kernel"
	"github.com/go-pennos/pennos/internal/logger"
	"github.com/go-pennos/pennos/internal/openfiles"
	"github.com/go-pennos/pennos/internal/sched"
	"github.com/go-pennos/pennos/internal/vfs"
	"github.com/spf13/cobra"
)

// sleepDemoDuration is how long the "sleep" demo process stays
// BLOCKED: within its own turn it blocks itself, waits on the clock
// for this long, then unblocks itself, so no other process is
// scheduled during the wait. It is short enough not to stall
// `pennos run` for long in a terminal.
const sleepDemoDuration = 200 * time.Millisecond

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Boot the kernel and scheduler against --image and run a demo workload",
	RunE:  runE,
}

func runE(cmd *cobra.Command, args []string) error {
	dev, err := block.Mount(Config.FileSystem.ImagePath)
	if err != nil {
		return err
	}
	defer dev.Close()

	clk := clock.RealClock{}

	dir, err := vfs.NewDirectory(dev, clk)
	if err != nil {
		return err
	}

	log, err := logger.New(Config.Logging)
	if err != nil {
		return err
	}

	k := kernel.New(dir, log, clk)
	initProc := k.Registry.Spawn(0, kernel.PriorityNormal, "init")

	seed := Config.Scheduler.Seed
	if seed == 0 {
		seed = clk.Now().UnixNano()
	}
	scheduler := sched.New(k, clk, seed)

	spawnDemoWorkload(k, scheduler, initProc.PID)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return scheduler.RunLoop(ctx, Config.Scheduler.TickPeriod)
}

// spawnDemoWorkload registers the canonical exercise processes named
// in spec.md §8's manual test scenarios: a process that exits and
// sits as a zombie until reaped, a process whose child outlives it
// and is re-parented to PID 0, a CPU-bound process the scheduler must
// keep fairly preempting, a process that blocks on a timed sleep, and
// one that writes a line to a file the way the shell's "echo" does.
func spawnDemoWorkload(k *kernel.Kernel, scheduler *sched.Scheduler, initPID int) {
	zombie, err := k.Spawn(initPID, kernel.PriorityNormal, "zombify", -1, -1)
	if err == nil {
		scheduler.Register(zombie.PID, func(yield sched.Yield) {})
	}

	orphanParent, err := k.Spawn(initPID, kernel.PriorityNormal, "orphanify", -1, -1)
	if err == nil {
		scheduler.Register(orphanParent.PID, func(yield sched.Yield) {
			child, err := k.Spawn(orphanParent.PID, kernel.PriorityNormal, "orphan-child", -1, -1)
			if err != nil {
				return
			}
			scheduler.Register(child.PID, func(yield sched.Yield) {
				for i := 0; i < 5; i++ {
					yield()
				}
			})
		})
	}

	busy, err := k.Spawn(initPID, kernel.PriorityLow, "busy", -1, -1)
	if err == nil {
		scheduler.Register(busy.PID, func(yield sched.Yield) {
			for i := 0; i < 50; i++ {
				yield()
			}
		})
	}

	sleeper, err := k.Spawn(initPID, kernel.PriorityNormal, "sleep", -1, -1)
	if err == nil {
		scheduler.Register(sleeper.PID, func(yield sched.Yield) {
			k.Block(sleeper.PID)
			<-k.Clock.After(sleepDemoDuration)
			k.Unblock(sleeper.PID)
		})
	}

	echoer, err := k.Spawn(initPID, kernel.PriorityHigh, "echo", -1, -1)
	if err == nil {
		scheduler.Register(echoer.PID, func(yield sched.Yield) {
			fd, err := k.Open(echoer.PID, "greeting.txt", openfiles.ModeWrite)
			if err != nil {
				return
			}
			k.Write(echoer.PID, fd, []byte(fmt.Sprintf("hello from pid %d\n", echoer.PID)))
			k.Close(echoer.PID, fd)
		})
	}
}
