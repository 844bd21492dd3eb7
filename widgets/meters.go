package widgets

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"go-piano/theme"
)

// meterFloor is the quietest level a meter shows, in dB
const meterFloor = -48.0

// MeterFill maps a linear peak onto 0..width cells on a dB scale
func MeterFill(level float64, width int) int {
	if level <= 0 || width <= 0 {
		return 0
	}
	db := 20 * math.Log10(level)
	frac := (db - meterFloor) / -meterFloor
	return int(math.Round(min(max(frac, 0), 1) * float64(width)))
}

// RenderMeter renders one horizontal level bar
func RenderMeter(th *theme.Theme, level float64, width int) string {
	fill := MeterFill(level, width)
	on := lipgloss.NewStyle().Foreground(th.Level(level))
	off := lipgloss.NewStyle().Foreground(th.Muted())
	return on.Render(strings.Repeat(string(th.Symbols.MeterFull), fill)) +
		off.Render(strings.Repeat(string(th.Symbols.MeterEmpty), width-fill))
}

// RenderVoiceMeters renders one labelled meter per voice
func RenderVoiceMeters(th *theme.Theme, levels []float64, width int) string {
	label := lipgloss.NewStyle().Foreground(th.Muted())
	var lines []string
	for i, level := range levels {
		mark := th.Symbols.Idle
		if level > 0 {
			mark = th.Symbols.Held
		}
		lines = append(lines, fmt.Sprintf("%s %c %s",
			label.Render(fmt.Sprintf("v%-2d", i+1)), mark, RenderMeter(th, level, width)))
	}
	return strings.Join(lines, "\n")
}

// RenderProgress renders one cell per plan note. current is the sounding
// note or -1; notes before played are done.
func RenderProgress(th *theme.Theme, played, current, total int) string {
	done := lipgloss.NewStyle().Foreground(th.FG())
	now := lipgloss.NewStyle().Foreground(th.Active()).Bold(true)
	todo := lipgloss.NewStyle().Foreground(th.Muted())

	var out strings.Builder
	for i := 0; i < total; i++ {
		switch {
		case i == current:
			out.WriteString(now.Render(string(th.Symbols.Current)))
		case i < played:
			out.WriteString(done.Render(string(th.Symbols.Played)))
		default:
			out.WriteString(todo.Render(string(th.Symbols.Pending)))
		}
	}
	return out.String()
}

// RenderKeyHelp formats key bindings in a friendly way
func RenderKeyHelp(sections []KeySection) string {
	var lines []string
	for _, sec := range sections {
		if sec.Title != "" {
			lines = append(lines, sec.Title)
		}
		for _, k := range sec.Keys {
			lines = append(lines, fmt.Sprintf("  %-12s %s", k.Key, k.Desc))
		}
	}
	return strings.Join(lines, "\n")
}

// KeySection groups related key bindings
type KeySection struct {
	Title string
	Keys  []KeyBinding
}

// KeyBinding is a single key and its description
type KeyBinding struct {
	Key  string
	Desc string
}
