// Package songs holds the built-in playback plans
package songs

import (
	"sort"

	"go-piano/sequencer"
)

// Note frequencies used by the built-in songs
const (
	C4  = 261.63
	D4  = 293.66
	E4  = 329.63
	F4  = 349.23
	G4  = 392.00
	A4  = 440.00
	As4 = 466.16
	B4  = 493.88
	C5  = 523.25
)

// Default is the song played when none is configured
const Default = "happy-birthday"

type song struct {
	title string
	plan  sequencer.Plan
}

var catalog = map[string]song{
	"scale": {
		title: "C major scale",
		plan:  evenly(0.8, 0.4, C4, D4, E4, F4, G4, A4, B4, C5),
	},
	"happy-birthday": {
		title: "Happy Birthday",
		plan:  happyBirthday(),
	},
}

// evenly builds a plan of equal-length notes
func evenly(velocity, duration float64, freqs ...float64) sequencer.Plan {
	plan := make(sequencer.Plan, len(freqs))
	for i, f := range freqs {
		plan[i] = sequencer.Note{Frequency: f, Velocity: velocity, Duration: duration}
	}
	return plan
}

func happyBirthday() sequencer.Plan {
	const (
		beat = 0.9
		long = 1.8
		vel  = 0.8
	)
	n := func(f, d float64) sequencer.Note {
		return sequencer.Note{Frequency: f, Velocity: vel, Duration: d}
	}
	return sequencer.Plan{
		// Happy birthday to you
		n(C4, beat), n(C4, beat), n(D4, beat), n(C4, beat), n(F4, beat), n(E4, long),
		// Happy birthday to you
		n(C4, beat), n(C4, beat), n(D4, beat), n(C4, beat), n(G4, beat), n(F4, long),
		// Happy birthday dear ...
		n(C4, beat), n(C4, beat), n(C5, beat), n(A4, beat), n(F4, beat), n(E4, beat), n(D4, long),
		// Happy birthday to you
		n(As4, beat), n(As4, beat), n(A4, beat), n(F4, beat), n(G4, beat), n(F4, long),
	}
}

// Lookup returns a copy of the named song's plan and its title
func Lookup(name string) (sequencer.Plan, string, bool) {
	s, ok := catalog[name]
	if !ok {
		return nil, "", false
	}
	return append(sequencer.Plan(nil), s.plan...), s.title, true
}

// Names lists the built-in songs alphabetically
func Names() []string {
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
