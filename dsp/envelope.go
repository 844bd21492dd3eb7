// Package dsp holds the per-sample math of the piano voice: envelope, tone
// generator and the filter/pan shaper. Everything here is a pure function of
// its inputs so the voice can call it from the audio thread.
package dsp

import "math"

// SilenceThreshold is the gain below which a decaying voice counts as silent
const SilenceThreshold = 1e-4

// Envelope returns the gain at elapsed sample t for a note of peak amplitude amp.
// It ramps linearly to amp over the attack, then decays exponentially. There is
// no sustain stage: the decay starts right after the attack even while the note
// is held.
func Envelope(t int64, sampleRate, attackTime, releaseTime, amp float64) float64 {
	attack := attackTime * sampleRate
	ft := float64(t)
	if ft < attack {
		return amp * (ft / attack)
	}
	return amp * math.Exp(-ft/(releaseTime*sampleRate))
}

// AttackSamples is the sample index where the attack ramp ends
func AttackSamples(sampleRate, attackTime float64) float64 {
	return attackTime * sampleRate
}
