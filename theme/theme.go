package theme

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

type Theme struct {
	Palette *Palette
	Symbols Symbols
}

type Symbols struct {
	// Voice meters
	MeterFull  rune // █ filled cell
	MeterEmpty rune // · unfilled cell
	Held       rune // ● key down
	Tail       rune // ◌ releasing
	Idle       rune // ○ free

	// Progress
	Played  rune // ■ note already played
	Current rune // ▶ note sounding
	Pending rune // □ note still to come
}

func New(palette *Palette) *Theme {
	return &Theme{
		Palette: palette,
		Symbols: Symbols{
			MeterFull:  '█',
			MeterEmpty: '·',
			Held:       '●',
			Tail:       '◌',
			Idle:       '○',

			Played:  '■',
			Current: '▶',
			Pending: '□',
		},
	}
}

// Default uses the built-in palette
func Default() *Theme {
	return New(Ivory())
}

// Load builds a theme from a .gpl palette file, or the default theme when
// path is empty
func Load(path string) (*Theme, error) {
	if path == "" {
		return Default(), nil
	}
	p, err := LoadGPL(path)
	if err != nil {
		return nil, err
	}
	return New(p), nil
}

// Color roles mapped to palette positions (0-1)
const (
	RoleBG      = 0.0  // felt black
	RoleSurface = 0.1  // lid
	RoleMuted   = 0.25 // dust
	RoleActive  = 0.5  // hammer red
	RoleAccent  = 0.65 // brass
	RoleFG      = 0.9  // keys
)

// Style helpers

func (t *Theme) BG() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleBG))
}

func (t *Theme) FG() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleFG))
}

func (t *Theme) Accent() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleAccent))
}

func (t *Theme) Muted() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleMuted))
}

func (t *Theme) Active() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleActive))
}

// Color returns lipgloss color for any normalized value 0-1
func (t *Theme) Color(norm float64) lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(norm))
}

// Level colours a voice level: quiet voices sit low on the palette
func (t *Theme) Level(level float64) lipgloss.Color {
	return t.Color(RoleMuted + (RoleFG-RoleMuted)*min(max(level, 0), 1))
}

func rgbToLipgloss(c RGB) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2]))
}
