package sched

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestQueue_RunsInDueOrder(t *testing.T) {
	q := NewQueue()
	var got []string
	q.After(30*time.Millisecond, func() { got = append(got, "c") })
	q.After(10*time.Millisecond, func() { got = append(got, "a") })
	q.After(20*time.Millisecond, func() { got = append(got, "b") })

	if n := q.Advance(15 * time.Millisecond); n != 1 {
		t.Fatalf("Advance(15ms) ran %d tasks, want 1", n)
	}
	if q.Now() != 15*time.Millisecond {
		t.Errorf("Now = %v, want 15ms", q.Now())
	}
	q.Advance(time.Second)

	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestQueue_FIFOForEqualDelays(t *testing.T) {
	q := NewQueue()
	var got []int
	for i := 0; i < 10; i++ {
		q.After(5*time.Millisecond, func() { got = append(got, i) })
	}
	q.Advance(5 * time.Millisecond)
	for i, v := range got {
		if v != i {
			t.Fatalf("got %v, want 0..9 in order", got)
		}
	}
	if len(got) != 10 {
		t.Fatalf("ran %d tasks, want 10", len(got))
	}
}

func TestQueue_NestedScheduling(t *testing.T) {
	q := NewQueue()
	var at []time.Duration
	q.After(10*time.Millisecond, func() {
		at = append(at, q.Now())
		q.After(0, func() { at = append(at, q.Now()) })
		q.After(5*time.Millisecond, func() { at = append(at, q.Now()) })
		q.After(50*time.Millisecond, func() { at = append(at, q.Now()) })
	})

	q.Advance(20 * time.Millisecond)
	want := []time.Duration{10 * time.Millisecond, 10 * time.Millisecond, 15 * time.Millisecond}
	if len(at) != len(want) {
		t.Fatalf("ran at %v, want %v", at, want)
	}
	for i := range want {
		if at[i] != want[i] {
			t.Errorf("task %d ran at %v, want %v", i, at[i], want[i])
		}
	}
	if q.Len() != 1 {
		t.Errorf("Len = %d, want 1 (the 60ms task)", q.Len())
	}
}

func TestQueue_ClearAndDrain(t *testing.T) {
	q := NewQueue()
	ran := 0
	q.After(time.Second, func() { ran++ })
	q.Clear()
	if !q.Drain(10) {
		t.Error("Drain on empty queue = false")
	}
	if ran != 0 {
		t.Errorf("cleared task ran")
	}

	var tick func()
	tick = func() { ran++; q.After(time.Millisecond, tick) }
	q.After(0, tick)
	if q.Drain(5) {
		t.Error("Drain of a self-rescheduling task should hit the limit")
	}
	if ran != 5 {
		t.Errorf("ran %d, want 5", ran)
	}
}

func TestQueue_AtClampsToNow(t *testing.T) {
	q := NewQueue()
	q.Advance(100 * time.Millisecond)
	ran := false
	q.At(10*time.Millisecond, func() { ran = true })
	if due, _ := q.Next(); due != 100*time.Millisecond {
		t.Errorf("past task due %v, want clamped to 100ms", due)
	}
	q.Advance(0)
	if !ran {
		t.Error("task at Now did not run on Advance(0)")
	}
}

func TestRunner_FiresInOrder(t *testing.T) {
	r := NewRunner()
	r.Start()
	defer r.Stop()

	var mu sync.Mutex
	var got []int
	done := make(chan struct{})
	r.After(20*time.Millisecond, func() {
		mu.Lock()
		got = append(got, 2)
		mu.Unlock()
		close(done)
	})
	r.After(5*time.Millisecond, func() {
		mu.Lock()
		got = append(got, 1)
		mu.Unlock()
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("tasks did not fire")
	}
	mu.Lock()
	defer mu.Unlock()
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("got %v, want [1 2]", got)
	}
}

func TestRunner_RespectsDelay(t *testing.T) {
	r := NewRunner()
	r.Start()
	defer r.Stop()

	start := time.Now()
	fired := make(chan time.Duration, 1)
	r.After(30*time.Millisecond, func() { fired <- time.Since(start) })

	select {
	case d := <-fired:
		if d < 30*time.Millisecond {
			t.Errorf("fired after %v, want at least 30ms", d)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("task did not fire")
	}
}

func TestRunner_StopDropsPending(t *testing.T) {
	r := NewRunner()
	r.Start()

	fired := make(chan struct{}, 1)
	r.After(200*time.Millisecond, func() { fired <- struct{}{} })
	r.Stop()

	if r.Pending() != 0 {
		t.Errorf("Pending after Stop = %d, want 0", r.Pending())
	}
	r.After(0, func() { fired <- struct{}{} })

	select {
	case <-fired:
		t.Error("task fired after Stop")
	case <-time.After(300 * time.Millisecond):
	}
	r.Stop() // idempotent
}

func TestQueue_RunWhileStopsBetweenTasks(t *testing.T) {
	q := NewQueue()
	ran := 0
	for i := 0; i < 3; i++ {
		q.After(10*time.Millisecond, func() { ran++ })
	}
	if n := q.RunWhile(time.Second, func() bool { return ran < 2 }); n != 2 {
		t.Errorf("RunWhile ran %d tasks, want 2", n)
	}
	if q.Len() != 1 {
		t.Errorf("Len = %d, want 1 left behind", q.Len())
	}
	if q.Now() != 10*time.Millisecond {
		t.Errorf("Now = %v, want 10ms", q.Now())
	}
}

func TestRunner_StopSkipsDueTasks(t *testing.T) {
	r := NewRunner()
	entered := make(chan struct{})
	release := make(chan struct{})
	var second atomic.Bool
	r.After(0, func() {
		close(entered)
		<-release
	})
	r.After(0, func() { second.Store(true) })
	r.Start()

	select {
	case <-entered:
	case <-time.After(2 * time.Second):
		t.Fatal("first task did not fire")
	}

	stopped := make(chan struct{})
	go func() {
		r.Stop()
		close(stopped)
	}()
	for !r.stopped.Load() {
		time.Sleep(time.Millisecond)
	}
	close(release)

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return")
	}
	if second.Load() {
		t.Error("due task ran after Stop")
	}
}
