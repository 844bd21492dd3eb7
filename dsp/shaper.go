package dsp

import "math"

// Cutoff returns the high-pass cutoff in Hz for a hollowness in [0, 1]
func Cutoff(hollowness float64) float64 {
	return hollowness*2000 + 100
}

// HighPassCoeff is the gain the one-pole approximation applies to each sample.
// It scales the sample directly instead of keeping a delayed-sample history.
func HighPassCoeff(hollowness, sampleRate float64) float64 {
	return 1 - math.Exp(-2*math.Pi*Cutoff(hollowness)/sampleRate)
}

// Pan splits a mono sample into an unnormalized stereo pair
func Pan(s, pan float64) (left, right float64) {
	return s * (1 - pan), s * (1 + pan)
}

// Shaper applies the filter coefficient and panning with the exp precomputed
type Shaper struct {
	coeff float64
	pan   float64
}

// NewShaper builds a shaper for the given timbre settings and sample rate
func NewShaper(hollowness, pan, sampleRate float64) Shaper {
	return Shaper{
		coeff: HighPassCoeff(hollowness, sampleRate),
		pan:   pan,
	}
}

// Process filters and pans one sample
func (s Shaper) Process(x float64) (left, right float64) {
	return Pan(x*s.coeff, s.pan)
}

// Coeff returns the cached filter gain
func (s Shaper) Coeff() float64 {
	return s.coeff
}

// Shape filters and pans a single sample without a cached shaper
func Shape(x, hollowness, pan, sampleRate float64) (left, right float64) {
	return NewShaper(hollowness, pan, sampleRate).Process(x)
}
