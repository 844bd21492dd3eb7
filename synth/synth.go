// Package synth is the polyphonic voice pool. Note events may arrive from any
// goroutine; they are queued and applied by the render goroutine at the start of
// the next block, so RenderBlock never waits on a lock.
package synth

import (
	"errors"
	"fmt"
	"math"
	"sync/atomic"

	"go-piano/dsp"
)

// Errors returned by the note and configuration calls
var (
	ErrNoVoices          = errors.New("synth needs at least one voice")
	ErrInvalidSampleRate = errors.New("sample rate must be positive")
	ErrInvalidFrequency  = errors.New("frequency must be positive")
	ErrInvalidVelocity   = errors.New("velocity must be within (0, 1]")
	ErrNotApplicable     = errors.New("sound does not apply to note")
	ErrBusy              = errors.New("note queue full")
)

// DefaultSampleRate is used until the audio backend reports its own
const DefaultSampleRate = 44100.0

// queueSize bounds the pending note events between two blocks
const queueSize = 256

type commandKind uint8

const (
	cmdNoteOn commandKind = iota
	cmdNoteOff
	cmdAllNotesOff
	cmdSampleRate
)

type command struct {
	kind     commandKind
	channel  int
	note     int
	freq     float64
	velocity float64
	tailOff  bool
}

// Synth owns a fixed set of voices and mixes them into stereo blocks
type Synth struct {
	voices []*Voice
	sound  Sound

	sampleRate atomic.Uint64 // float64 bits, readable from any goroutine
	cmds       chan command

	// render goroutine only
	triggers uint64

	active atomic.Int32
}

// New creates a synth with n voices sharing one timbre
func New(n int, timbre dsp.Timbre) (*Synth, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: %d", ErrNoVoices, n)
	}
	timbres := make([]dsp.Timbre, n)
	for i := range timbres {
		timbres[i] = timbre
	}
	return NewWithTimbres(timbres)
}

// NewWithTimbres creates one voice per timbre
func NewWithTimbres(timbres []dsp.Timbre) (*Synth, error) {
	if len(timbres) == 0 {
		return nil, ErrNoVoices
	}
	s := &Synth{
		voices: make([]*Voice, len(timbres)),
		sound:  AnySound(),
		cmds:   make(chan command, queueSize),
	}
	for i, tb := range timbres {
		if err := tb.Validate(); err != nil {
			return nil, fmt.Errorf("voice %d: %w", i, err)
		}
		s.voices[i] = newVoice(tb, DefaultSampleRate)
	}
	s.sampleRate.Store(math.Float64bits(DefaultSampleRate))
	return s, nil
}

// SetSound replaces the applicability rule. Call before playback starts.
func (s *Synth) SetSound(sound Sound) {
	s.sound = sound
}

// CanPlay reports whether a note on a channel would be accepted
func (s *Synth) CanPlay(channel, note int) bool {
	return s.sound.Applies(channel, note)
}

// NumVoices returns the fixed pool size
func (s *Synth) NumVoices() int {
	return len(s.voices)
}

// SampleRate returns the current sample rate
func (s *Synth) SampleRate() float64 {
	return math.Float64frombits(s.sampleRate.Load())
}

// SetSampleRate switches every voice to a new device rate before the next block
func (s *Synth) SetSampleRate(sampleRate float64) error {
	if !(sampleRate > 0) || math.IsInf(sampleRate, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidSampleRate, sampleRate)
	}
	if err := s.post(command{kind: cmdSampleRate, freq: sampleRate}); err != nil {
		return err
	}
	s.sampleRate.Store(math.Float64bits(sampleRate))
	return nil
}

// NoteOn plays a MIDI note number
func (s *Synth) NoteOn(channel, note int, velocity float64) error {
	return s.noteOn(channel, note, dsp.NoteToFrequency(note), velocity)
}

// NoteOnHz plays an exact frequency. Note-off matches it by its nearest semitone.
func (s *Synth) NoteOnHz(channel int, freq, velocity float64) error {
	if !(freq > 0) || math.IsInf(freq, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidFrequency, freq)
	}
	return s.noteOn(channel, dsp.FrequencyToNote(freq), freq, velocity)
}

func (s *Synth) noteOn(channel, note int, freq, velocity float64) error {
	if !(freq > 0) || math.IsInf(freq, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidFrequency, freq)
	}
	if !(velocity > 0 && velocity <= 1) {
		return fmt.Errorf("%w: %v", ErrInvalidVelocity, velocity)
	}
	if !s.CanPlay(channel, note) {
		return fmt.Errorf("%w: channel %d note %d", ErrNotApplicable, channel, note)
	}
	return s.post(command{kind: cmdNoteOn, channel: channel, note: note, freq: freq, velocity: velocity})
}

// NoteOff releases every held voice playing note on channel.
// Velocity is accepted for MIDI symmetry and ignored.
func (s *Synth) NoteOff(channel, note int, velocity float64, allowTailOff bool) error {
	return s.post(command{kind: cmdNoteOff, channel: channel, note: note, velocity: velocity, tailOff: allowTailOff})
}

// AllNotesOff releases every voice on channel (Omni for all channels)
func (s *Synth) AllNotesOff(channel int, allowTailOff bool) error {
	return s.post(command{kind: cmdAllNotesOff, channel: channel, tailOff: allowTailOff})
}

// post hands a command to the render goroutine without blocking
func (s *Synth) post(c command) error {
	select {
	case s.cmds <- c:
		return nil
	default:
		return ErrBusy
	}
}

// RenderBlock applies pending note events, then adds n frames of every voice
// into buf starting at start. The region must be cleared by the caller.
func (s *Synth) RenderBlock(buf Buffer, start, n int) {
	s.drain()

	active := int32(0)
	for _, v := range s.voices {
		v.render(buf, start, n)
		if v.state != VoiceIdle {
			active++
		}
	}
	s.active.Store(active)
}

func (s *Synth) drain() {
	for {
		select {
		case c := <-s.cmds:
			s.apply(c)
		default:
			return
		}
	}
}

func (s *Synth) apply(c command) {
	switch c.kind {
	case cmdNoteOn:
		s.startNote(c)
	case cmdNoteOff:
		for _, v := range s.voices {
			if v.state == VoiceHeld && v.channel == c.channel && v.note == c.note {
				v.stop(c.tailOff)
			}
		}
	case cmdAllNotesOff:
		for _, v := range s.voices {
			if c.channel == Omni || v.channel == c.channel {
				v.stop(c.tailOff)
			}
		}
	case cmdSampleRate:
		for _, v := range s.voices {
			v.setSampleRate(c.freq)
		}
	}
}

func (s *Synth) startNote(c command) {
	// A note that is still ringing on this key is released before it is struck again
	for _, v := range s.voices {
		if v.state == VoiceHeld && v.channel == c.channel && v.note == c.note {
			v.stop(true)
		}
	}

	v := s.freeVoice()
	if v == nil {
		v = s.silentVoice()
	}
	if v == nil {
		v = s.oldestVoice()
	}
	s.triggers++
	v.start(c.channel, c.note, c.freq, c.velocity, s.triggers)
}

// freeVoice returns the first idle voice, or nil when all are sounding
func (s *Synth) freeVoice() *Voice {
	for _, v := range s.voices {
		if v.state == VoiceIdle {
			return v
		}
	}
	return nil
}

// silentVoice returns the first voice whose envelope has died out while the
// key is still down
func (s *Synth) silentVoice() *Voice {
	for _, v := range s.voices {
		if v.isSilent() {
			return v
		}
	}
	return nil
}

// oldestVoice picks the voice to steal: the one triggered first
func (s *Synth) oldestVoice() *Voice {
	oldest := s.voices[0]
	for _, v := range s.voices[1:] {
		if v.started < oldest.started {
			oldest = v
		}
	}
	return oldest
}

// ActiveVoices returns how many voices were sounding after the last block
func (s *Synth) ActiveVoices() int {
	return int(s.active.Load())
}

// Levels copies the per-voice block peaks into dst and returns how many were written
func (s *Synth) Levels(dst []float64) int {
	n := min(len(dst), len(s.voices))
	for i := 0; i < n; i++ {
		dst[i] = s.voices[i].Level()
	}
	return n
}
