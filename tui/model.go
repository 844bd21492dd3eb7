package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"go-piano/dsp"
	"go-piano/midi"
	"go-piano/sequencer"
	"go-piano/synth"
	"go-piano/theme"
	"go-piano/widgets"
)

// frameRate is how often the voice meters redraw
const frameRate = 30

const meterWidth = 24

// Engine is the voice pool as the UI sees it (implemented by synth.Synth)
type Engine interface {
	midi.Sink
	Levels(dst []float64) int
	NumVoices() int
}

type Model struct {
	Seq       *sequencer.Sequencer
	Engine    Engine
	DeviceMgr *midi.DeviceManager // nil without live input
	Theme     *theme.Theme
	Title     string

	// StayOpen keeps the view up after the song ends so a keyboard can
	// still be played
	StayOpen bool

	levels    []float64
	keyboards map[string]bool
	quitting  bool
	finished  bool
}

type UpdateMsg struct{}

type DoneMsg struct{}

type TickMsg time.Time

type DeviceEventMsg midi.DeviceEvent

func NewModel(seq *sequencer.Sequencer, engine Engine, deviceMgr *midi.DeviceManager, th *theme.Theme, title string) Model {
	return Model{
		Seq:       seq,
		Engine:    engine,
		DeviceMgr: deviceMgr,
		Theme:     th,
		Title:     title,
		StayOpen:  deviceMgr != nil,
		levels:    make([]float64, engine.NumVoices()),
		keyboards: make(map[string]bool),
	}
}

func ListenForUpdates(seq *sequencer.Sequencer) tea.Cmd {
	return func() tea.Msg {
		<-seq.UpdateChan
		return UpdateMsg{}
	}
}

func WaitForDone(seq *sequencer.Sequencer) tea.Cmd {
	return func() tea.Msg {
		<-seq.Done()
		return DoneMsg{}
	}
}

func ListenForDevices(deviceMgr *midi.DeviceManager) tea.Cmd {
	if deviceMgr == nil {
		return nil
	}
	return func() tea.Msg {
		event, ok := <-deviceMgr.Events()
		if !ok {
			return nil
		}
		return DeviceEventMsg(event)
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/frameRate, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		ListenForUpdates(m.Seq),
		WaitForDone(m.Seq),
		ListenForDevices(m.DeviceMgr),
		tick(),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			m.Seq.Stop()
			return m, tea.Quit

		case " ", "s":
			m.Seq.Stop()

		case "p":
			m.Engine.AllNotesOff(synth.Omni, false)
		}

	case UpdateMsg:
		return m, ListenForUpdates(m.Seq)

	case TickMsg:
		m.Engine.Levels(m.levels)
		return m, tick()

	case DoneMsg:
		m.finished = true
		if !m.StayOpen {
			m.quitting = true
			return m, tea.Quit
		}

	case DeviceEventMsg:
		event := midi.DeviceEvent(msg)
		if event.Type == midi.DeviceConnected {
			m.keyboards[event.ID] = true

			// Forward until the controller closes its channel
			go midi.Forward(context.Background(), event.Controller.Events(), m.Engine)
		} else if event.Type == midi.DeviceDisconnected {
			delete(m.keyboards, event.ID)
		}
		return m, ListenForDevices(m.DeviceMgr)
	}

	return m, nil
}

// progress splits a snapshot into played notes and the sounding one
func progress(snap sequencer.Snapshot) (played, current int) {
	played, current = snap.Cursor, -1
	switch {
	case snap.State == sequencer.StateIdle:
		played = 0
	case snap.Held:
		current = snap.Cursor
	case snap.State == sequencer.StatePlaying:
		played = snap.Cursor + 1
	}
	return played, current
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	snap := m.Seq.Snapshot()

	// Styles
	headerStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent()).Bold(true)
	fgStyle := lipgloss.NewStyle().Foreground(m.Theme.FG())
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())

	header := headerStyle.Render(fmt.Sprintf("go-piano  %s  %s", m.Title, strings.ToUpper(snap.State.String())))

	played, current := progress(snap)
	status := fmt.Sprintf("note %d/%d", min(played+1, snap.Total), snap.Total)
	if current >= 0 {
		status = fmt.Sprintf("note %d/%d  %-4s %7.2f Hz  vel %.2f", current+1, snap.Total,
			dsp.NoteName(snap.Key), snap.Current.Frequency, snap.Current.Velocity)
	} else if snap.State.Done() || snap.State == sequencer.StateDraining {
		status = fmt.Sprintf("%d/%d notes", played, snap.Total)
	}

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n\n")
	out.WriteString(widgets.RenderProgress(m.Theme, played, current, snap.Total))
	out.WriteString("\n")
	out.WriteString(fgStyle.Render(status))
	out.WriteString("\n\n")
	out.WriteString(widgets.RenderVoiceMeters(m.Theme, m.levels, meterWidth))
	out.WriteString("\n\n")

	if m.DeviceMgr != nil {
		out.WriteString(dimStyle.Render("keyboards: " + m.keyboardList()))
		out.WriteString("\n")
	}

	// Help line
	help := "space:stop song  p:panic  q:quit"
	if m.finished && m.StayOpen {
		help = "song done, keyboard live  p:panic  q:quit"
	}
	out.WriteString(dimStyle.Render(help))

	return out.String()
}

func (m Model) keyboardList() string {
	if len(m.keyboards) == 0 {
		return "none"
	}
	names := make([]string, 0, len(m.keyboards))
	for id := range m.keyboards {
		names = append(names, id)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}
