package sequencer

import (
	"sync/atomic"
	"testing"
	"time"

	"go-piano/dsp"
	"go-piano/sched"
	"go-piano/synth"
)

// A real synth fed from the runner's goroutine while another goroutine keeps
// rendering, the way the audio device pulls blocks during playback.
func TestSequencer_LiveSynthWhileRendering(t *testing.T) {
	sy, err := synth.New(4, dsp.SoftTimbre())
	if err != nil {
		t.Fatal(err)
	}
	runner := sched.NewRunner()
	runner.Start()
	defer runner.Stop()

	plan := Plan{
		{Frequency: 261.63, Velocity: 0.8, Duration: 0.01},
		{Frequency: 329.63, Velocity: 0.8, Duration: 0.01},
		{Frequency: 392.00, Velocity: 0.8, Duration: 0.01},
	}
	opts := DefaultOptions()
	opts.Gap = 5 * time.Millisecond
	opts.Tail = 20 * time.Millisecond
	seq, err := New(plan, sy, runner, opts)
	if err != nil {
		t.Fatal(err)
	}

	stop := make(chan struct{})
	rendered := make(chan struct{})
	var blocks, maxActive atomic.Int64
	var slowest atomic.Int64
	go func() {
		defer close(rendered)
		buf := synth.NewBuffer(256)
		for {
			select {
			case <-stop:
				return
			default:
			}
			buf.Clear(0, len(buf))
			start := time.Now()
			sy.RenderBlock(buf, 0, len(buf))
			if d := int64(time.Since(start)); d > slowest.Load() {
				slowest.Store(d)
			}
			if a := int64(sy.ActiveVoices()); a > maxActive.Load() {
				maxActive.Store(a)
			}
			blocks.Add(1)
			time.Sleep(time.Millisecond)
		}
	}()

	if err := seq.Start(); err != nil {
		t.Fatal(err)
	}
	select {
	case <-seq.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("sequence did not finish")
	}
	close(stop)
	<-rendered

	if st := seq.Snapshot().State; st != StateFinished {
		t.Errorf("state = %v, want finished", st)
	}
	if blocks.Load() == 0 {
		t.Fatal("no blocks rendered")
	}
	if maxActive.Load() == 0 {
		t.Error("no voice ever sounded")
	}
	if d := time.Duration(slowest.Load()); d > 100*time.Millisecond {
		t.Errorf("slowest block took %v", d)
	}
}
