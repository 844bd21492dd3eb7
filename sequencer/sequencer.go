// Package sequencer walks a playback plan in time, driving a voice pool with
// note-on/note-off through a deferred-task scheduler.
package sequencer

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"go-piano/debug"
	"go-piano/sched"
)

// ErrAlreadyStarted is returned when Start is called twice
var ErrAlreadyStarted = errors.New("sequencer already started")

// NoteSink receives the sequencer's note events (implemented by synth.Synth)
type NoteSink interface {
	NoteOn(channel, note int, velocity float64) error
	NoteOnHz(channel int, freq, velocity float64) error
	NoteOff(channel, note int, velocity float64, allowTailOff bool) error
	AllNotesOff(channel int, allowTailOff bool) error
}

// Options tune the timeline
type Options struct {
	Channel    int           // synth channel the notes are sent on
	Gap        time.Duration // silence between a note-off and the next note-on
	Tail       time.Duration // wait after the last note-off before finishing
	ExactPitch bool          // send plan frequencies as-is instead of rounding to semitones
}

// DefaultOptions is the stock timing: 50ms gap, 1s release tail
func DefaultOptions() Options {
	return Options{
		Channel: 1,
		Gap:     50 * time.Millisecond,
		Tail:    time.Second,
	}
}

// Sequencer plays a Plan once. Deferred steps run on the scheduler's goroutine;
// all state is guarded by mu.
type Sequencer struct {
	plan  Plan
	sink  NoteSink
	sched sched.Scheduler
	opts  Options

	mu     sync.Mutex
	state  State
	cursor int
	key    int
	held   bool
	gen    uint64 // bumped by Stop so stale callbacks do nothing

	done     chan struct{}
	doneOnce sync.Once

	// OnEvent, when set before Start, observes every event. It runs on the
	// scheduler goroutine without the lock held.
	OnEvent func(Event)

	// Notify TUI of updates
	UpdateChan chan struct{}
}

// New validates the plan and returns an idle sequencer
func New(plan Plan, sink NoteSink, s sched.Scheduler, opts Options) (*Sequencer, error) {
	if err := plan.Validate(); err != nil {
		return nil, fmt.Errorf("invalid plan: %w", err)
	}
	if opts.Gap < 0 || opts.Tail < 0 {
		return nil, fmt.Errorf("negative gap %v or tail %v", opts.Gap, opts.Tail)
	}
	return &Sequencer{
		plan:       append(Plan(nil), plan...),
		sink:       sink,
		sched:      s,
		opts:       opts,
		done:       make(chan struct{}),
		UpdateChan: make(chan struct{}, 1),
	}, nil
}

// Start fires the first note. An empty plan finishes immediately.
func (s *Sequencer) Start() error {
	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	var ev Event
	if len(s.plan) == 0 {
		ev = s.finishLocked()
	} else {
		ev = s.playLocked(0)
	}
	s.mu.Unlock()

	s.emit(ev)
	return nil
}

// Stop cancels the pending steps and releases any held note
func (s *Sequencer) Stop() {
	s.mu.Lock()
	if s.state.Done() {
		s.mu.Unlock()
		return
	}
	s.gen++
	s.state = StateStopped
	s.held = false
	if err := s.sink.AllNotesOff(s.opts.Channel, true); err != nil {
		debug.Log("seq", "all notes off: %v", err)
	}
	s.closeDone()
	cursor := s.cursor
	s.mu.Unlock()

	debug.Log("seq", "stopped at note %d/%d", cursor, len(s.plan))
	s.emit(Event{Kind: EventStopped, Index: -1})
}

// Done is closed once playback finishes or is stopped
func (s *Sequencer) Done() <-chan struct{} {
	return s.done
}

// Snapshot returns the current progress
func (s *Sequencer) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		State:  s.state,
		Cursor: s.cursor,
		Total:  len(s.plan),
		Key:    s.key,
		Held:   s.held,
	}
	if s.cursor < len(s.plan) && s.state == StatePlaying {
		snap.Current = s.plan[s.cursor]
	}
	return snap
}

// Plan returns a copy of the notes being played
func (s *Sequencer) Plan() Plan {
	return append(Plan(nil), s.plan...)
}

// playLocked strikes note i and schedules its release
func (s *Sequencer) playLocked(i int) Event {
	note := s.plan[i]
	key := note.Key()
	s.state = StatePlaying
	s.cursor = i
	s.key = key
	s.held = true

	var err error
	if s.opts.ExactPitch {
		err = s.sink.NoteOnHz(s.opts.Channel, note.Frequency, note.Velocity)
	} else {
		err = s.sink.NoteOn(s.opts.Channel, key, note.Velocity)
	}
	if err != nil {
		// The timeline keeps going; the slot just stays silent
		debug.Log("seq", "note %d rejected: %v", i, err)
	}
	debug.Log("seq", "note %d on key=%d freq=%.2fHz dur=%.3fs", i, key, note.Frequency, note.Duration)

	gen := s.gen
	s.sched.After(note.Length(), func() { s.release(gen, i) })
	return Event{Kind: EventNoteOn, Index: i, Note: note, Key: key}
}

// release lets go of note i, then queues either the next note or the end
func (s *Sequencer) release(gen uint64, i int) {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return
	}
	note := s.plan[i]
	key := s.key
	s.held = false
	if err := s.sink.NoteOff(s.opts.Channel, key, 0, true); err != nil {
		debug.Log("seq", "note %d off rejected: %v", i, err)
	}
	debug.Log("seq", "note %d off key=%d", i, key)

	if i == len(s.plan)-1 {
		// Last note: its tail rings out before we report completion
		s.state = StateDraining
		s.cursor = len(s.plan)
		s.sched.After(s.opts.Tail, func() { s.finish(gen) })
	} else {
		s.sched.After(s.opts.Gap, func() { s.advance(gen, i+1) })
	}
	s.mu.Unlock()

	s.emit(Event{Kind: EventNoteOff, Index: i, Note: note, Key: key})
}

func (s *Sequencer) advance(gen uint64, next int) {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return
	}
	ev := s.playLocked(next)
	s.mu.Unlock()

	s.emit(ev)
}

func (s *Sequencer) finish(gen uint64) {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return
	}
	ev := s.finishLocked()
	s.mu.Unlock()

	s.emit(ev)
}

func (s *Sequencer) finishLocked() Event {
	s.state = StateFinished
	s.cursor = len(s.plan)
	s.held = false
	s.closeDone()
	debug.Log("seq", "finished %d notes", len(s.plan))
	return Event{Kind: EventFinished, Index: -1}
}

func (s *Sequencer) closeDone() {
	s.doneOnce.Do(func() { close(s.done) })
}

// emit reports an event to the observer and pokes the UI
func (s *Sequencer) emit(ev Event) {
	if s.OnEvent != nil {
		s.OnEvent(ev)
	}
	select {
	case s.UpdateChan <- struct{}{}:
	default:
	}
}
