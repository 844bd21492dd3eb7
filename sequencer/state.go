package sequencer

// State is the sequencer's position in its playback lifecycle
type State int

const (
	StateIdle     State = iota // created, not started
	StatePlaying               // a note is held or the gap before the next one is running
	StateDraining              // last note released, waiting for its tail
	StateFinished              // done, completion signalled
	StateStopped               // cancelled by Stop
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePlaying:
		return "playing"
	case StateDraining:
		return "draining"
	case StateFinished:
		return "finished"
	case StateStopped:
		return "stopped"
	}
	return "unknown"
}

// Done reports whether the sequencer has reached a terminal state
func (s State) Done() bool {
	return s == StateFinished || s == StateStopped
}

// EventKind identifies sequencer events
type EventKind int

const (
	EventNoteOn EventKind = iota
	EventNoteOff
	EventFinished
	EventStopped
)

func (k EventKind) String() string {
	switch k {
	case EventNoteOn:
		return "note-on"
	case EventNoteOff:
		return "note-off"
	case EventFinished:
		return "finished"
	case EventStopped:
		return "stopped"
	}
	return "unknown"
}

// Event is reported to the OnEvent observer
type Event struct {
	Kind  EventKind
	Index int  // plan index, -1 for Finished/Stopped
	Note  Note // zero for Finished/Stopped
	Key   int  // MIDI note used with the synth
}

// Snapshot is a consistent copy of the sequencer's progress
type Snapshot struct {
	State   State
	Cursor  int // index of the current note; equals Total once draining
	Total   int
	Current Note
	Key     int
	Held    bool // the current note's key is down
}
