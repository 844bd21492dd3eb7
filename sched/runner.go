package sched

import (
	"sync"
	"sync/atomic"
	"time"

	"go-piano/debug"
)

// Runner fires queued tasks on the wall clock from a single goroutine.
// Tasks with the same due time run in the order they were scheduled.
type Runner struct {
	q     *Queue
	start time.Time

	interruptChan chan struct{} // wake the loop when the queue head changes
	stopChan      chan struct{}
	doneChan      chan struct{}

	running  atomic.Bool
	stopped  atomic.Bool
	stopOnce sync.Once
}

// NewRunner creates a stopped runner; call Start to begin firing tasks
func NewRunner() *Runner {
	return &Runner{
		q:             NewQueue(),
		start:         time.Now(),
		interruptChan: make(chan struct{}, 1),
		stopChan:      make(chan struct{}),
		doneChan:      make(chan struct{}),
	}
}

// Start launches the dispatch goroutine
func (r *Runner) Start() {
	if r.stopped.Load() || !r.running.CompareAndSwap(false, true) {
		return
	}
	go r.loop()
}

// After schedules fn to run d from now. Ignored once the runner is stopped.
func (r *Runner) After(d time.Duration, fn func()) {
	if r.stopped.Load() {
		return
	}
	r.q.At(r.elapsed()+max(d, 0), fn)
	r.interrupt()
}

// Pending returns the number of tasks still waiting
func (r *Runner) Pending() int {
	return r.q.Len()
}

// Stop drops every pending task and waits for a running task to return.
// Tasks that were already due but had not started are dropped as well.
// It must not be called from inside a task.
func (r *Runner) Stop() {
	r.stopOnce.Do(func() {
		r.stopped.Store(true)
		close(r.stopChan)
		if r.running.Load() {
			<-r.doneChan
		}
		dropped := r.q.Len()
		r.q.Clear()
		debug.Log("sched", "runner stopped, dropped %d pending tasks", dropped)
	})
}

func (r *Runner) live() bool {
	return !r.stopped.Load()
}

func (r *Runner) elapsed() time.Duration {
	return time.Since(r.start)
}

// interrupt signals the loop to recalculate its wait
func (r *Runner) interrupt() {
	select {
	case r.interruptChan <- struct{}{}:
	default:
	}
}

func (r *Runner) loop() {
	defer close(r.doneChan)

	for {
		select {
		case <-r.stopChan:
			return
		default:
		}

		r.q.RunWhile(r.elapsed(), r.live)

		due, ok := r.q.Next()
		if !ok {
			// Nothing queued: sleep until something is scheduled
			select {
			case <-r.stopChan:
				return
			case <-r.interruptChan:
			}
			continue
		}

		wait := due - r.elapsed()
		if wait <= 0 {
			continue
		}
		timer := time.NewTimer(wait)
		select {
		case <-r.stopChan:
			timer.Stop()
			return
		case <-r.interruptChan:
			// Queue changed, recalculate
			timer.Stop()
		case <-timer.C:
		}
	}
}
