package dsp

import (
	"errors"
	"fmt"
)

// Timbre validation errors
var (
	ErrAttackTime     = errors.New("attack time must be positive")
	ErrReleaseTime    = errors.New("release time must be positive")
	ErrPan            = errors.New("pan must be within [-1, 1]")
	ErrHollowness     = errors.New("hollowness must be within [0, 1]")
	ErrHammerStrength = errors.New("hammer strength must not be negative")
	ErrHarmonicMix    = errors.New("harmonic mix must not be negative")
)

// Timbre holds the per-voice tone parameters
type Timbre struct {
	AttackTime     float64 `json:"attackTime"`     // seconds
	ReleaseTime    float64 `json:"releaseTime"`    // seconds
	Pan            float64 `json:"pan"`            // -1 (left) .. 1 (right)
	Hollowness     float64 `json:"hollowness"`     // 0..1, drives the high-pass cutoff
	HammerStrength float64 `json:"hammerStrength"` // gain of the hammer transient
	HarmonicMix    float64 `json:"harmonicMix"`    // gain of the 2nd/3rd harmonics
}

// DefaultTimbre returns the stock voice settings
func DefaultTimbre() Timbre {
	return Timbre{
		AttackTime:     0.005,
		ReleaseTime:    0.8,
		Pan:            0,
		Hollowness:     0.3,
		HammerStrength: 0.3,
		HarmonicMix:    0.5,
	}
}

// SoftTimbre is a clearer, shorter-tailed preset that keeps consecutive notes from smearing
func SoftTimbre() Timbre {
	return Timbre{
		AttackTime:     0.01,
		ReleaseTime:    0.5,
		Pan:            0,
		Hollowness:     0.2,
		HammerStrength: 0.2,
		HarmonicMix:    0.4,
	}
}

// Validate rejects parameters that would push NaN or Inf through the voice
func (t Timbre) Validate() error {
	switch {
	case !(t.AttackTime > 0):
		return fmt.Errorf("%w: %v", ErrAttackTime, t.AttackTime)
	case !(t.ReleaseTime > 0):
		return fmt.Errorf("%w: %v", ErrReleaseTime, t.ReleaseTime)
	case !(t.Pan >= -1 && t.Pan <= 1):
		return fmt.Errorf("%w: %v", ErrPan, t.Pan)
	case !(t.Hollowness >= 0 && t.Hollowness <= 1):
		return fmt.Errorf("%w: %v", ErrHollowness, t.Hollowness)
	case !(t.HammerStrength >= 0):
		return fmt.Errorf("%w: %v", ErrHammerStrength, t.HammerStrength)
	case !(t.HarmonicMix >= 0):
		return fmt.Errorf("%w: %v", ErrHarmonicMix, t.HarmonicMix)
	}
	return nil
}
