// Package sched runs deferred callbacks off the audio thread. Queue orders
// tasks by due time; Runner drives a Queue from the wall clock on its own
// goroutine, while tests and offline renders advance a Queue by hand.
package sched

import (
	"container/heap"
	"sync"
	"time"
)

// Scheduler defers fn by at least d
type Scheduler interface {
	After(d time.Duration, fn func())
}

type task struct {
	due time.Duration
	seq uint64 // FIFO among equal due times
	fn  func()
}

type taskHeap []task

func (h taskHeap) Len() int { return len(h) }
func (h taskHeap) Less(i, j int) bool {
	if h[i].due != h[j].due {
		return h[i].due < h[j].due
	}
	return h[i].seq < h[j].seq
}
func (h taskHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *taskHeap) Push(x any)   { *h = append(*h, x.(task)) }
func (h *taskHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = task{}
	*h = old[:n-1]
	return t
}

// Queue is a virtual-time task queue. Time only moves when Advance or
// RunUntil is called. Safe for concurrent use; callbacks run without the lock
// held and may schedule further tasks.
type Queue struct {
	mu    sync.Mutex
	now   time.Duration
	seq   uint64
	tasks taskHeap
}

// NewQueue returns an empty queue at time zero
func NewQueue() *Queue {
	return &Queue{}
}

// Now returns the queue's current virtual time
func (q *Queue) Now() time.Duration {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.now
}

// After schedules fn at Now()+d. Negative delays count as zero.
func (q *Queue) After(d time.Duration, fn func()) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.push(q.now+max(d, 0), fn)
}

// At schedules fn at an absolute virtual time (clamped to Now)
func (q *Queue) At(due time.Duration, fn func()) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.push(max(due, q.now), fn)
}

func (q *Queue) push(due time.Duration, fn func()) {
	q.seq++
	heap.Push(&q.tasks, task{due: due, seq: q.seq, fn: fn})
}

// Next returns the due time of the earliest task
func (q *Queue) Next() (time.Duration, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.tasks) == 0 {
		return 0, false
	}
	return q.tasks[0].due, true
}

// Len returns the number of pending tasks
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}

// Clear drops every pending task
func (q *Queue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.tasks = nil
}

// RunUntil moves time forward to t, running every task due at or before t in
// order. Tasks scheduled by callbacks run too if they fall inside the window.
// Returns the number of tasks run.
func (q *Queue) RunUntil(t time.Duration) int {
	return q.RunWhile(t, nil)
}

// RunWhile is RunUntil that checks keep before each task and returns early,
// leaving time where the last task ran, once keep reports false. A nil keep
// always continues.
func (q *Queue) RunWhile(t time.Duration, keep func() bool) int {
	ran := 0
	for {
		if keep != nil && !keep() {
			return ran
		}
		q.mu.Lock()
		if len(q.tasks) == 0 || q.tasks[0].due > t {
			q.now = max(q.now, t)
			q.mu.Unlock()
			return ran
		}
		next := heap.Pop(&q.tasks).(task)
		q.now = max(q.now, next.due)
		q.mu.Unlock()

		next.fn()
		ran++
	}
}

// Advance moves time forward by d
func (q *Queue) Advance(d time.Duration) int {
	return q.RunUntil(q.Now() + d)
}

// Drain runs tasks until the queue is empty, jumping time to each due point.
// limit bounds the number of tasks so a self-rescheduling task cannot spin
// forever; it returns false when the limit was hit.
func (q *Queue) Drain(limit int) bool {
	for i := 0; i < limit; i++ {
		due, ok := q.Next()
		if !ok {
			return true
		}
		q.RunUntil(due)
	}
	_, pending := q.Next()
	return !pending
}
