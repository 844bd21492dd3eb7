package synth

import (
	"math"
	"sync/atomic"

	"go-piano/dsp"
)

// VoiceState is the lifecycle stage of a voice
type VoiceState int

const (
	VoiceIdle VoiceState = iota // silent, free for a new note
	VoiceHeld                   // note-on received, no note-off yet
	VoiceTail                   // released, still decaying
)

func (s VoiceState) String() string {
	switch s {
	case VoiceHeld:
		return "held"
	case VoiceTail:
		return "tail"
	default:
		return "idle"
	}
}

// Voice renders one sounding note. All fields except level are owned by the
// render goroutine.
type Voice struct {
	timbre dsp.Timbre
	shaper dsp.Shaper

	sampleRate    float64
	attackSamples float64

	state     VoiceState
	channel   int
	note      int
	frequency float64
	amplitude float64
	elapsed   int64  // samples since note-on
	started   uint64 // trigger order, for stealing

	level atomic.Uint64 // float64 bits of the last block peak
}

func newVoice(timbre dsp.Timbre, sampleRate float64) *Voice {
	v := &Voice{timbre: timbre}
	v.setSampleRate(sampleRate)
	return v
}

func (v *Voice) setSampleRate(sampleRate float64) {
	v.sampleRate = sampleRate
	v.attackSamples = dsp.AttackSamples(sampleRate, v.timbre.AttackTime)
	v.shaper = dsp.NewShaper(v.timbre.Hollowness, v.timbre.Pan, sampleRate)
}

// start begins a new note; order is the pool's trigger counter
func (v *Voice) start(channel, note int, freq, velocity float64, order uint64) {
	v.channel = channel
	v.note = note
	v.frequency = freq
	v.amplitude = velocity
	v.elapsed = 0
	v.started = order
	v.state = VoiceHeld
}

// stop releases the note. With tailOff the envelope keeps decaying, otherwise
// the voice is cut immediately.
func (v *Voice) stop(tailOff bool) {
	if v.state == VoiceIdle {
		return
	}
	if tailOff {
		v.state = VoiceTail
		return
	}
	v.amplitude = 0
	v.state = VoiceIdle
	v.level.Store(0)
}

// isSilent is true once the voice has nothing left to add to the mix
func (v *Voice) isSilent() bool {
	return v.state == VoiceIdle || v.amplitude == 0
}

// render adds n frames into buf starting at start
func (v *Voice) render(buf Buffer, start, n int) {
	if v.isSilent() {
		if v.state == VoiceTail {
			v.state = VoiceIdle
		}
		v.level.Store(0)
		return
	}

	tb := &v.timbre
	peak := 0.0
	for i := 0; i < n; i++ {
		t := v.elapsed
		env := dsp.Envelope(t, v.sampleRate, tb.AttackTime, tb.ReleaseTime, v.amplitude)

		// Past the attack the gain only falls: once inaudible the note is over.
		// A held note keeps its slot (note-off must still find it) but stops counting.
		if float64(t) >= v.attackSamples && env < dsp.SilenceThreshold {
			v.amplitude = 0
			if v.state == VoiceTail {
				v.state = VoiceIdle
			}
			break
		}

		raw := dsp.Tone(v.frequency, t, v.sampleRate, tb.HammerStrength, tb.HarmonicMix)
		left, right := v.shaper.Process(raw * env)

		buf[start+i][0] += left
		buf[start+i][1] += right
		peak = max(peak, math.Abs(left), math.Abs(right))

		v.elapsed++
	}
	v.level.Store(math.Float64bits(peak))
}

// Level returns the peak output of the most recent block
func (v *Voice) Level() float64 {
	return math.Float64frombits(v.level.Load())
}

// State returns the lifecycle stage. Only meaningful from the render goroutine
// or when rendering is paused.
func (v *Voice) State() VoiceState {
	return v.state
}

// Elapsed returns the sample count since the last note-on
func (v *Voice) Elapsed() int64 {
	return v.elapsed
}
