// Package sched implements the cooperative priority-weighted
// scheduler of spec.md §4.6. The original program context-switched
// between processes with ucontext stack swaps under SIGALRM
// preemption; spec.md §9 redesigns that as goroutines handed control
// through a pair of unbuffered channels, since Go has no supported way
// to swap a goroutine's stack out from under it. Each task runs as its
// own goroutine that blocks until the scheduler grants it a turn.
package sched

// Yield is called by task code to voluntarily give up its turn,
// blocking until the scheduler grants the next one.
type Yield func()

// TaskFunc is one schedulable unit of work: it runs until it either
// calls yield() (giving control back for a tick) or returns (the task
// has exited).
type TaskFunc func(yield Yield)

// Task wraps a goroutine running a TaskFunc behind the resume/yielded
// hand-off channels that replace stack switching.
type Task struct {
	PID int

	resume  chan struct{}
	yielded chan bool // true on the final hand-off, meaning the task returned
}

// NewTask starts fn in a new goroutine, parked until the first call to
// RunOne.
func NewTask(pid int, fn TaskFunc) *Task {
	t := &Task{
		PID:     pid,
		resume:  make(chan struct{}),
		yielded: make(chan bool),
	}

	go func() {
		<-t.resume
		fn(func() {
			t.yielded <- false
			<-t.resume
		})
		t.yielded <- true
	}()

	return t
}

// RunOne grants the task one quantum: it resumes until the task next
// calls yield (returns false) or returns entirely (returns true).
func (t *Task) RunOne() (finished bool) {
	t.resume <- struct{}{}
	return <-t.yielded
}
