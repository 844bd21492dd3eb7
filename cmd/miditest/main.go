package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"go-piano/midi"
	"go-piano/sched"
	"go-piano/sequencer"
	"go-piano/songs"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	arg := ""
	if len(os.Args) > 2 {
		arg = os.Args[2]
	}

	switch os.Args[1] {
	case "list":
		listPorts()
	case "monitor":
		monitor(arg)
	case "poll":
		pollDevices()
	case "send":
		song := songs.Default
		if len(os.Args) > 3 {
			song = os.Args[3]
		}
		send(arg, song)
	default:
		usage()
	}
}

func usage() {
	fmt.Println("MIDI Test Scripts")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  list                - List all MIDI ports")
	fmt.Println("  monitor [port]      - Print decoded notes from an input (first input if no port)")
	fmt.Println("  poll                - Poll for device changes")
	fmt.Println("  send <port> [song]  - Play a song out of a MIDI output")
}

func listPorts() {
	fmt.Println("=== MIDI Input Ports ===")
	fmt.Println("(waiting up to 3 seconds...)")

	type result struct {
		ins  []drivers.In
		outs []drivers.Out
	}
	ch := make(chan result, 1)
	go func() {
		ins := gomidi.GetInPorts()
		outs := gomidi.GetOutPorts()
		ch <- result{ins: ins, outs: outs}
	}()

	select {
	case r := <-ch:
		for i, p := range r.ins {
			fmt.Printf("  %d: %s\n", i, p.String())
		}
		fmt.Println("\n=== MIDI Output Ports ===")
		for i, p := range r.outs {
			fmt.Printf("  %d: %s\n", i, p.String())
		}
	case <-time.After(3 * time.Second):
		fmt.Println("\nTIMEOUT! CoreMIDI is hung.")
		fmt.Println("Fix: sudo killall coreaudiod midiserver")
	}
}

func findIn(name string) drivers.In {
	for _, p := range gomidi.GetInPorts() {
		if name == "" || strings.Contains(strings.ToLower(p.String()), strings.ToLower(name)) {
			return p
		}
	}
	return nil
}

func findOut(name string) drivers.Out {
	for _, p := range gomidi.GetOutPorts() {
		if strings.Contains(strings.ToLower(p.String()), strings.ToLower(name)) {
			return p
		}
	}
	return nil
}

func waitForInterrupt() {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt)
	<-sigs
}

func monitor(name string) {
	in := findIn(name)
	if in == nil {
		fmt.Println("No matching input port")
		return
	}

	kb, err := midi.NewKeyboardController(in.String(), in)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	fmt.Printf("Listening on %s. Ctrl+C to exit.\n", in.String())
	go func() {
		for ev := range kb.Events() {
			fmt.Printf("[%s] %s\n", time.Now().Format("15:04:05.000"), ev)
		}
	}()

	waitForInterrupt()
	kb.Close()
}

func pollDevices() {
	fmt.Println("Polling for device changes every 2 seconds...")
	fmt.Println("Connect/disconnect a keyboard to test. Ctrl+C to exit.")

	lastIn := ""
	lastOut := ""

	for {
		ins := gomidi.GetInPorts()
		outs := gomidi.GetOutPorts()

		// Build current state
		var inNames, outNames []string
		for _, p := range ins {
			inNames = append(inNames, p.String())
		}
		for _, p := range outs {
			outNames = append(outNames, p.String())
		}

		currentIn := strings.Join(inNames, ",")
		currentOut := strings.Join(outNames, ",")

		if currentIn != lastIn || currentOut != lastOut {
			fmt.Printf("\n[%s] Device change detected!\n", time.Now().Format("15:04:05"))
			fmt.Printf("  Inputs: %v\n", inNames)
			fmt.Printf("  Outputs: %v\n", outNames)

			lastIn = currentIn
			lastOut = currentOut
		}

		time.Sleep(2 * time.Second)
	}
}

func send(port, song string) {
	if port == "" {
		usage()
		return
	}
	out := findOut(port)
	if out == nil {
		fmt.Println("No matching output port")
		return
	}

	plan, title, err := songs.Resolve(song)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	output, err := midi.NewOutput(out)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	runner := sched.NewRunner()
	runner.Start()
	defer runner.Stop()

	seq, err := sequencer.New(plan, output, runner, sequencer.DefaultOptions())
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	seq.OnEvent = func(ev sequencer.Event) {
		if ev.Kind == sequencer.EventNoteOn {
			fmt.Printf("  %2d/%d key %d\n", ev.Index+1, len(plan), ev.Key)
		}
	}

	fmt.Printf("Sending %s to %s\n", title, out.String())
	seq.Start()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt)
	select {
	case <-seq.Done():
	case <-sigs:
		seq.Stop()
	}
	fmt.Println("Done!")
}
