package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver

	"go-piano/audio"
	"go-piano/config"
	"go-piano/debug"
	"go-piano/dsp"
	"go-piano/midi"
	"go-piano/sched"
	"go-piano/sequencer"
	"go-piano/songs"
	"go-piano/synth"
	"go-piano/theme"
	"go-piano/tui"
)

func main() {
	if err := run(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Flags default to the config file so they only override what is given
	backend := flag.String("backend", cfg.Backend, "audio backend: "+strings.Join(audio.Backends(), ", "))
	song := flag.String("song", cfg.Song, "built-in song, user song or path to a song file")
	voices := flag.Int("voices", cfg.Voices, "number of voices")
	sampleRate := flag.Int("rate", cfg.SampleRate, "sample rate in Hz")
	blockSize := flag.Int("block", cfg.BlockSize, "frames per render block")
	gap := flag.Int("gap", cfg.GapMs, "silence between notes in ms")
	tail := flag.Float64("tail", cfg.TailSeconds, "release tail after the last note in seconds")
	exact := flag.Bool("exact", cfg.ExactPitch, "play plan frequencies without rounding to semitones")
	palette := flag.String("palette", cfg.Palette, "GIMP .gpl palette for the terminal UI")
	useMIDI := flag.Bool("midi", false, "play along on a connected MIDI keyboard")
	port := flag.String("port", cfg.Keyboard.PortName, "MIDI input port name (substring match)")
	noTUI := flag.Bool("no-tui", false, "print events instead of the terminal UI")
	debugLog := flag.Bool("debug", false, "write "+debug.LogPath())
	list := flag.Bool("list", false, "list songs and audio backends")
	saveConfig := flag.Bool("save-config", false, "write the effective settings to the config file")
	flag.Parse()

	if *list {
		return printCatalog()
	}

	cfg.Backend = *backend
	cfg.Song = *song
	cfg.Voices = *voices
	cfg.SampleRate = *sampleRate
	cfg.BlockSize = *blockSize
	cfg.GapMs = *gap
	cfg.TailSeconds = *tail
	cfg.ExactPitch = *exact
	cfg.Palette = *palette
	cfg.Keyboard.PortName = *port
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	if *saveConfig {
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("save config: %w", err)
		}
		path, _ := config.ConfigPath()
		fmt.Printf("Saved %s\n", path)
	}

	if *debugLog {
		if err := debug.Enable(); err != nil {
			return err
		}
		defer debug.Disable()
	}

	plan, title, err := choosePlan(cfg)
	if err != nil {
		return err
	}

	sy, err := synth.New(cfg.Voices, cfg.Timbre)
	if err != nil {
		return err
	}
	if err := sy.SetSampleRate(float64(cfg.SampleRate)); err != nil {
		return err
	}

	runner := sched.NewRunner()
	runner.Start()

	seq, err := sequencer.New(plan, sy, runner, cfg.SequencerOptions())
	if err != nil {
		runner.Stop()
		return err
	}

	player, err := audio.Open(cfg.Backend, cfg.SampleRate, cfg.BlockSize, sy)
	if err != nil {
		runner.Stop()
		return err
	}
	if err := player.Start(); err != nil {
		runner.Stop()
		player.Close()
		return fmt.Errorf("start %s: %w", cfg.Backend, err)
	}
	debug.Log("main", "%s: %d notes, %d voices, %s at %d Hz", title, len(plan), cfg.Voices, cfg.Backend, cfg.SampleRate)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var deviceMgr *midi.DeviceManager
	if *useMIDI {
		deviceMgr = midi.NewDeviceManager(cfg.Keyboard.PortName, cfg.Keyboard.AutoConnect)
		go deviceMgr.Run(ctx)
	}

	if *noTUI {
		seq.OnEvent = printEvent
	}

	// Give the device a moment to start pulling before the first note
	runner.After(cfg.StartDelay(), func() {
		if err := seq.Start(); err != nil {
			debug.Log("main", "start: %v", err)
		}
	})

	if *noTUI {
		err = runPlain(ctx, seq, sy, deviceMgr, title)
	} else {
		th, terr := theme.Load(cfg.Palette)
		if terr != nil {
			debug.Log("main", "palette: %v, using built-in", terr)
			th = theme.Default()
		}
		m := tui.NewModel(seq, sy, deviceMgr, th, title)
		_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	}

	// Scheduler first so no note fires into a closed device
	seq.Stop()
	runner.Stop()
	player.Close()
	sy.AllNotesOff(synth.Omni, false)
	return err
}

func choosePlan(cfg *config.Config) (sequencer.Plan, string, error) {
	if cfg.Song == "" && len(cfg.Plan) > 0 {
		return cfg.Plan, "custom", nil
	}
	name := cfg.Song
	if name == "" {
		name = songs.Default
	}
	return songs.Resolve(name)
}

func printCatalog() error {
	fmt.Println("Built-in songs:")
	for _, name := range songs.Names() {
		_, title, _ := songs.Lookup(name)
		fmt.Printf("  %-16s %s\n", name, title)
	}

	user, err := songs.ListUser()
	if err != nil {
		return err
	}
	if len(user) > 0 {
		dir, _ := songs.Dir()
		fmt.Printf("\nUser songs (%s):\n", dir)
		for _, name := range user {
			fmt.Printf("  %s\n", name)
		}
	}

	fmt.Println("\nAudio backends:")
	for _, b := range audio.Backends() {
		fmt.Printf("  %s\n", b)
	}
	return nil
}

func printEvent(ev sequencer.Event) {
	switch ev.Kind {
	case sequencer.EventNoteOn:
		fmt.Printf("%3d  %-4s %7.2f Hz  vel %.2f  %.2fs\n", ev.Index+1,
			dsp.NoteName(ev.Key), ev.Note.Frequency, ev.Note.Velocity, ev.Note.Duration)
	case sequencer.EventFinished, sequencer.EventStopped:
		fmt.Println(ev.Kind)
	}
}

// runPlain waits for the song to end, or for a signal when a keyboard is live
func runPlain(ctx context.Context, seq *sequencer.Sequencer, sy *synth.Synth, deviceMgr *midi.DeviceManager, title string) error {
	fmt.Printf("go-piano  %s  (%d notes)\n", title, len(seq.Plan()))

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigs)

	if deviceMgr != nil {
		fmt.Println("Connect a MIDI keyboard any time - it will be detected automatically")
		go func() {
			for event := range deviceMgr.Events() {
				fmt.Printf("keyboard %s: %s\n", event.Type, event.ID)
				if event.Type == midi.DeviceConnected {
					go midi.Forward(ctx, event.Controller.Events(), sy)
				}
			}
		}()
	}

	done := seq.Done()
	for {
		select {
		case <-sigs:
			return nil
		case <-done:
			if deviceMgr == nil {
				return nil
			}
			done = nil
			fmt.Println("Song done, keyboard still live. Ctrl+C to quit.")
		}
	}
}
