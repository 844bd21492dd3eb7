package midi

import (
	"fmt"

	gomidi "gitlab.com/gomidi/midi/v2"

	"go-piano/dsp"
)

// MIDI message types
const (
	NoteOn  uint8 = 0x90
	NoteOff uint8 = 0x80
	CC      uint8 = 0xB0
)

// Channel mode controllers that the synth reacts to
const (
	AllSoundOff uint8 = 120
	AllNotesOff uint8 = 123
)

// Event is a decoded keyboard message
type Event struct {
	Type     uint8 // NoteOn, NoteOff, CC
	Channel  uint8 // MIDI channel 0-15
	Note     uint8 // key, or controller number for CC
	Velocity uint8 // velocity, or controller value for CC
}

// Decode turns a raw message into an Event. A note-on with velocity 0 is a
// note-off. Controllers other than the channel mode ones are ignored.
func Decode(msg gomidi.Message) (Event, bool) {
	var ch, key, vel uint8
	switch {
	case msg.GetNoteStart(&ch, &key, &vel):
		return Event{Type: NoteOn, Channel: ch, Note: key, Velocity: vel}, true
	case msg.GetNoteOff(&ch, &key, &vel):
		return Event{Type: NoteOff, Channel: ch, Note: key, Velocity: vel}, true
	case msg.GetNoteEnd(&ch, &key):
		return Event{Type: NoteOff, Channel: ch, Note: key}, true
	case msg.GetControlChange(&ch, &key, &vel):
		if key == AllNotesOff || key == AllSoundOff {
			return Event{Type: CC, Channel: ch, Note: key, Velocity: vel}, true
		}
	}
	return Event{}, false
}

// SynthChannel maps MIDI channel n to synth channel n+1
func (e Event) SynthChannel() int {
	return int(e.Channel) + 1
}

// Gain maps velocity 0-127 onto 0-1
func (e Event) Gain() float64 {
	return float64(e.Velocity) / 127
}

func (e Event) String() string {
	switch e.Type {
	case NoteOn:
		return fmt.Sprintf("ch%-2d on  %-4s %8.2f Hz  vel %d",
			e.SynthChannel(), dsp.NoteName(int(e.Note)), dsp.NoteToFrequency(int(e.Note)), e.Velocity)
	case NoteOff:
		return fmt.Sprintf("ch%-2d off %-4s", e.SynthChannel(), dsp.NoteName(int(e.Note)))
	case CC:
		return fmt.Sprintf("ch%-2d cc%d = %d", e.SynthChannel(), e.Note, e.Velocity)
	}
	return fmt.Sprintf("ch%-2d type %#x", e.SynthChannel(), e.Type)
}
