package audio

import (
	"sync"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"

	"go-piano/synth"
)

// renderStreamer exposes a Renderer as an endless beep.Streamer.
// beep's [][2]float64 is a synth.Buffer, so blocks render in place.
type renderStreamer struct {
	r Renderer
}

func (s renderStreamer) Stream(samples [][2]float64) (n int, ok bool) {
	buf := synth.Buffer(samples)
	buf.Clear(0, len(buf))
	s.r.RenderBlock(buf, 0, len(buf))
	return len(samples), true
}

func (s renderStreamer) Err() error {
	return nil
}

// BeepPlayer plays through beep's global speaker
type BeepPlayer struct {
	sampleRate beep.SampleRate
	bufferSize int
	streamer   beep.Streamer
	started    bool
	mu         sync.Mutex
}

// NewBeepPlayer prepares a speaker player; the device opens on Start
func NewBeepPlayer(sampleRate, blockSize int, r Renderer) *BeepPlayer {
	return &BeepPlayer{
		sampleRate: beep.SampleRate(sampleRate),
		bufferSize: blockSize,
		streamer:   renderStreamer{r: r},
	}
}

// Start opens the speaker and begins streaming
func (bp *BeepPlayer) Start() error {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	if bp.started {
		return nil
	}
	if err := speaker.Init(bp.sampleRate, bp.bufferSize); err != nil {
		return err
	}
	speaker.Play(bp.streamer)
	bp.started = true
	return nil
}

// Close stops the speaker
func (bp *BeepPlayer) Close() error {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	if !bp.started {
		return nil
	}
	speaker.Clear()
	speaker.Close()
	bp.started = false
	return nil
}
