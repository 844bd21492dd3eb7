package midi

import (
	"errors"
	"fmt"
	"math"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"go-piano/dsp"
)

// ErrNoteRange is returned for keys outside 0-127
var ErrNoteRange = errors.New("note outside MIDI range")

// Output drives an external instrument with the same note calls the synth
// takes, so a sequencer can play through a MIDI port
type Output struct {
	send func(msg gomidi.Message) error
}

// NewOutput opens out for sending
func NewOutput(out drivers.Out) (*Output, error) {
	send, err := gomidi.SendTo(out)
	if err != nil {
		return nil, fmt.Errorf("open output: %w", err)
	}
	return NewOutputFunc(send), nil
}

// NewOutputFunc wraps any send function
func NewOutputFunc(send func(msg gomidi.Message) error) *Output {
	return &Output{send: send}
}

// midiChannel maps synth channel n (1-16) to MIDI channel n-1; Omni goes to 0
func midiChannel(channel int) uint8 {
	if channel < 1 || channel > 16 {
		return 0
	}
	return uint8(channel - 1)
}

func midiVelocity(v float64) uint8 {
	return uint8(min(max(math.Round(v*127), 1), 127))
}

func (o *Output) NoteOn(channel, note int, velocity float64) error {
	if note < 0 || note > 127 {
		return fmt.Errorf("%w: %d", ErrNoteRange, note)
	}
	return o.send(gomidi.NoteOn(midiChannel(channel), uint8(note), midiVelocity(velocity)))
}

// NoteOnHz plays the nearest key; MIDI has no free pitch without pitch bend
func (o *Output) NoteOnHz(channel int, freq, velocity float64) error {
	return o.NoteOn(channel, dsp.FrequencyToNote(freq), velocity)
}

func (o *Output) NoteOff(channel, note int, velocity float64, allowTailOff bool) error {
	if note < 0 || note > 127 {
		return fmt.Errorf("%w: %d", ErrNoteRange, note)
	}
	return o.send(gomidi.NoteOffVelocity(midiChannel(channel), uint8(note), uint8(min(max(velocity, 0), 1)*127)))
}

// AllNotesOff sends CC 123, or CC 120 when the tail is cut. Channel 0 covers
// all sixteen channels.
func (o *Output) AllNotesOff(channel int, allowTailOff bool) error {
	cc := AllNotesOff
	if !allowTailOff {
		cc = AllSoundOff
	}
	if channel >= 1 && channel <= 16 {
		return o.send(gomidi.ControlChange(midiChannel(channel), cc, 0))
	}
	var errs []error
	for ch := uint8(0); ch < 16; ch++ {
		errs = append(errs, o.send(gomidi.ControlChange(ch, cc, 0)))
	}
	return errors.Join(errs...)
}
