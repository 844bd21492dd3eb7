package midi

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"

	"go-piano/debug"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		msg  gomidi.Message
		want Event
		ok   bool
	}{
		{"note on", gomidi.NoteOn(0, 60, 100), Event{NoteOn, 0, 60, 100}, true},
		{"note on ch10", gomidi.NoteOn(9, 36, 127), Event{NoteOn, 9, 36, 127}, true},
		{"note off", gomidi.NoteOffVelocity(2, 64, 40), Event{NoteOff, 2, 64, 40}, true},
		{"note on zero velocity", gomidi.NoteOn(0, 60, 0), Event{NoteOff, 0, 60, 0}, true},
		{"all notes off", gomidi.ControlChange(3, AllNotesOff, 0), Event{CC, 3, AllNotesOff, 0}, true},
		{"all sound off", gomidi.ControlChange(0, AllSoundOff, 0), Event{CC, 0, AllSoundOff, 0}, true},
		{"volume ignored", gomidi.ControlChange(0, 7, 90), Event{}, false},
		{"pitch bend ignored", gomidi.Pitchbend(0, 100), Event{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Decode(tt.msg)
			if ok != tt.ok || got != tt.want {
				t.Errorf("Decode = (%+v, %v), want (%+v, %v)", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestEventMapping(t *testing.T) {
	ev := Event{Type: NoteOn, Channel: 0, Note: 69, Velocity: 127}
	if ev.SynthChannel() != 1 {
		t.Errorf("SynthChannel = %d, want 1", ev.SynthChannel())
	}
	if ev.Gain() != 1 {
		t.Errorf("Gain = %v, want 1", ev.Gain())
	}
	if got := (Event{Velocity: 0}).Gain(); got != 0 {
		t.Errorf("Gain(0) = %v", got)
	}
	if s := ev.String(); s == "" {
		t.Error("empty String")
	}
}

type recordingSink struct {
	calls []string
}

func (r *recordingSink) NoteOn(channel, note int, velocity float64) error {
	r.calls = append(r.calls, fmt.Sprintf("on ch%d key%d vel%.2f", channel, note, velocity))
	return nil
}

func (r *recordingSink) NoteOff(channel, note int, velocity float64, allowTailOff bool) error {
	r.calls = append(r.calls, fmt.Sprintf("off ch%d key%d tail=%v", channel, note, allowTailOff))
	return nil
}

func (r *recordingSink) AllNotesOff(channel int, allowTailOff bool) error {
	r.calls = append(r.calls, fmt.Sprintf("all ch%d tail=%v", channel, allowTailOff))
	return nil
}

func TestApply(t *testing.T) {
	sink := &recordingSink{}
	events := []Event{
		{NoteOn, 0, 60, 127},
		{NoteOff, 0, 60, 0},
		{CC, 1, AllNotesOff, 0},
		{CC, 1, AllSoundOff, 0},
	}
	for _, ev := range events {
		if err := Apply(ev, sink); err != nil {
			t.Fatalf("Apply(%s): %v", ev, err)
		}
	}
	if err := Apply(Event{Type: CC, Note: 7}, sink); err == nil {
		t.Error("Apply accepted volume CC")
	}

	want := []string{
		"on ch1 key60 vel1.00",
		"off ch1 key60 tail=true",
		"all ch2 tail=true",
		"all ch2 tail=false",
	}
	if len(sink.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", sink.calls, want)
	}
	for i := range want {
		if sink.calls[i] != want[i] {
			t.Errorf("call %d = %q, want %q", i, sink.calls[i], want[i])
		}
	}
}

func TestForward(t *testing.T) {
	sink := &recordingSink{}
	events := make(chan Event, 2)
	events <- Event{NoteOn, 0, 64, 64}
	events <- Event{NoteOff, 0, 64, 0}
	close(events)

	done := make(chan struct{})
	go func() {
		Forward(context.Background(), events, sink)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Forward did not return after channel close")
	}
	if len(sink.calls) != 2 {
		t.Errorf("calls = %v", sink.calls)
	}
}

type busySink struct{}

var errFull = errors.New("note queue full")

func (busySink) NoteOn(channel, note int, velocity float64) error { return errFull }
func (busySink) NoteOff(channel, note int, velocity float64, allowTailOff bool) error {
	return errFull
}
func (busySink) AllNotesOff(channel int, allowTailOff bool) error { return errFull }

func TestForward_ThinsRejectionLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug.log")
	if err := debug.EnableAt(path); err != nil {
		t.Fatal(err)
	}
	defer debug.Disable()

	events := make(chan Event, 2*forwardLogEvery)
	for i := 0; i < 2*forwardLogEvery; i++ {
		events <- Event{NoteOn, 0, 60, 100}
	}
	close(events)
	Forward(context.Background(), events, busySink{})

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(string(data), "forward rejected"); n != 2 {
		t.Errorf("%d rejections logged %d lines, want 2:\n%s", 2*forwardLogEvery, n, data)
	}
}

func TestForward_ContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		Forward(ctx, make(chan Event), &recordingSink{})
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Forward ignored cancellation")
	}
}

func TestKeyboardController_Close(t *testing.T) {
	kb, err := NewKeyboardController("test", nil)
	if err != nil {
		t.Fatal(err)
	}
	kb.push(Event{NoteOn, 0, 60, 100})
	kb.Close()
	kb.push(Event{NoteOn, 0, 61, 100}) // after close: dropped

	var got []Event
	for ev := range kb.Events() {
		got = append(got, ev)
	}
	if len(got) != 17 {
		t.Fatalf("got %d events, want note plus 16 all-notes-off", len(got))
	}
	if got[0].Note != 60 {
		t.Errorf("first event = %s", got[0])
	}
	for _, ev := range got[1:] {
		if ev.Type != CC || ev.Note != AllNotesOff {
			t.Errorf("unexpected %s after close", ev)
		}
	}
	if err := kb.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

func TestWantPort(t *testing.T) {
	tests := []struct {
		name, portName string
		auto           bool
		want           bool
	}{
		{"Keystation 49 MK3:Keystation 49 MK3 MIDI 1 20:0", "keystation", false, true},
		{"Keystation 49 MK3", "launchkey", true, false},
		{"Midi Through:Midi Through Port-0 14:0", "", true, false},
		{"Digital Piano", "", true, true},
		{"Digital Piano", "", false, false},
	}
	for _, tt := range tests {
		if got := wantPort(tt.name, tt.portName, tt.auto); got != tt.want {
			t.Errorf("wantPort(%q, %q, %v) = %v, want %v", tt.name, tt.portName, tt.auto, got, tt.want)
		}
	}
}
