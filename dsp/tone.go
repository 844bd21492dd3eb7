package dsp

import "math"

// Mix weights of the tone and the hammer in the raw excitation
const (
	toneWeight   = 0.7
	hammerWeight = 0.3

	// hammer decay time constant, in seconds
	hammerDecay = 0.02
)

// Harmonics returns the fundamental plus the 2nd and 3rd harmonic, each
// harmonic at half the weight of the previous one.
func Harmonics(freq float64, t int64, sampleRate, mix float64) float64 {
	phase := 2 * math.Pi * freq * float64(t) / sampleRate
	return math.Sin(phase) + mix*math.Sin(2*phase) + 0.5*mix*math.Sin(3*phase)
}

// Hammer returns the strike transient: a burst at twice the fundamental that
// dies away within ~20ms.
func Hammer(freq float64, t int64, sampleRate, strength float64) float64 {
	ft := float64(t)
	return strength * math.Sin(2*math.Pi*(2*freq)*ft/sampleRate) * math.Exp(-ft/(hammerDecay*sampleRate))
}

// Tone returns the raw excitation for one sample
func Tone(freq float64, t int64, sampleRate, hammerStrength, harmonicMix float64) float64 {
	return toneWeight*Harmonics(freq, t, sampleRate, harmonicMix) +
		hammerWeight*Hammer(freq, t, sampleRate, hammerStrength)
}
