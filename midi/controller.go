package midi

import (
	"context"
	"fmt"

	"go-piano/debug"
)

// Controller is the interface for MIDI input devices
type Controller interface {
	ID() string

	// Decoded input, closed when the controller closes
	Events() <-chan Event

	Close() error
}

// Sink receives forwarded notes (implemented by synth.Synth)
type Sink interface {
	NoteOn(channel, note int, velocity float64) error
	NoteOff(channel, note int, velocity float64, allowTailOff bool) error
	AllNotesOff(channel int, allowTailOff bool) error
}

// Apply sends one event to the sink
func Apply(ev Event, sink Sink) error {
	switch ev.Type {
	case NoteOn:
		return sink.NoteOn(ev.SynthChannel(), int(ev.Note), ev.Gain())
	case NoteOff:
		return sink.NoteOff(ev.SynthChannel(), int(ev.Note), ev.Gain(), true)
	case CC:
		switch ev.Note {
		case AllNotesOff:
			return sink.AllNotesOff(ev.SynthChannel(), true)
		case AllSoundOff:
			return sink.AllNotesOff(ev.SynthChannel(), false)
		}
	}
	return fmt.Errorf("unhandled event %s", ev)
}

// forwardLogEvery thins out rejection logging while a key flurry hits a full queue
const forwardLogEvery = 32

// Forward applies events until the channel closes or ctx ends. Sink errors
// are logged and dropped so a full command queue never stalls the keyboard.
func Forward(ctx context.Context, events <-chan Event, sink Sink) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := Apply(ev, sink); err != nil {
				debug.LogEvery(forwardLogEvery, "midi", "forward rejected: %v", err)
			}
		}
	}
}
