package dsp

import (
	"fmt"
	"math"
)

// Concert pitch reference
const (
	A4Frequency = 440.0
	A4Note      = 69
)

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// NoteToFrequency converts a MIDI note number to Hz (equal temperament)
func NoteToFrequency(note int) float64 {
	return A4Frequency * math.Pow(2, float64(note-A4Note)/12)
}

// FrequencyToNote returns the nearest semitone for a frequency.
// freq must be positive.
func FrequencyToNote(freq float64) int {
	return int(math.Round(A4Note + 12*math.Log2(freq/A4Frequency)))
}

// NoteName formats a MIDI note as e.g. "C4" (middle C = 60)
func NoteName(note int) string {
	octave := note/12 - 1
	idx := note % 12
	if idx < 0 {
		idx += 12
		octave--
	}
	return fmt.Sprintf("%s%d", noteNames[idx], octave)
}
