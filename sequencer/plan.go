package sequencer

import (
	"errors"
	"fmt"
	"math"
	"time"

	"go-piano/dsp"
)

// Plan validation errors
var (
	ErrFrequency = errors.New("frequency must be positive")
	ErrVelocity  = errors.New("velocity must be within (0, 1]")
	ErrDuration  = errors.New("duration must not be negative")
)

// Note is one entry of a playback plan
type Note struct {
	Frequency float64 `json:"frequency"` // Hz
	Velocity  float64 `json:"velocity"`  // 0..1
	Duration  float64 `json:"duration"`  // seconds the key is held
}

// Length returns the hold time as a time.Duration
func (n Note) Length() time.Duration {
	return time.Duration(n.Duration * float64(time.Second))
}

// Key returns the nearest MIDI note number
func (n Note) Key() int {
	return dsp.FrequencyToNote(n.Frequency)
}

// Validate checks a single note
func (n Note) Validate() error {
	switch {
	case !(n.Frequency > 0) || math.IsInf(n.Frequency, 0):
		return fmt.Errorf("%w: %v", ErrFrequency, n.Frequency)
	case !(n.Velocity > 0 && n.Velocity <= 1):
		return fmt.Errorf("%w: %v", ErrVelocity, n.Velocity)
	case !(n.Duration >= 0) || math.IsInf(n.Duration, 0):
		return fmt.Errorf("%w: %v", ErrDuration, n.Duration)
	}
	return nil
}

// Plan is an ordered list of notes, immutable once handed to a Sequencer
type Plan []Note

// Validate checks every note and reports the first bad index
func (p Plan) Validate() error {
	for i, n := range p {
		if err := n.Validate(); err != nil {
			return fmt.Errorf("note %d: %w", i, err)
		}
	}
	return nil
}

// Duration is the nominal play time: holds plus the gaps between notes
func (p Plan) Duration(gap time.Duration) time.Duration {
	var total time.Duration
	for i, n := range p {
		total += n.Length()
		if i < len(p)-1 {
			total += gap
		}
	}
	return total
}
