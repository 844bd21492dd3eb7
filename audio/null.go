package audio

import (
	"math"
	"sync"
	"sync/atomic"
	"time"

	"go-piano/synth"
)

// NullPlayer pulls blocks at real-time pace and discards them. It keeps the
// voice pool running on hosts without a sound device.
type NullPlayer struct {
	r      Renderer
	buf    synth.Buffer
	period time.Duration

	frames atomic.Int64
	peak   atomic.Uint32 // float32 bits of the loudest sample seen

	stopChan chan struct{}
	doneChan chan struct{}
	once     sync.Once
	started  atomic.Bool
}

// NewNullPlayer renders blockSize frames every blockSize/sampleRate seconds
func NewNullPlayer(sampleRate, blockSize int, r Renderer) *NullPlayer {
	blockSize = max(blockSize, 1)
	return &NullPlayer{
		r:        r,
		buf:      synth.NewBuffer(blockSize),
		period:   time.Duration(blockSize) * time.Second / time.Duration(max(sampleRate, 1)),
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
	}
}

// Start launches the pacing goroutine
func (np *NullPlayer) Start() error {
	if !np.started.CompareAndSwap(false, true) {
		return nil
	}
	go np.loop()
	return nil
}

func (np *NullPlayer) loop() {
	defer close(np.doneChan)

	ticker := time.NewTicker(np.period)
	defer ticker.Stop()

	for {
		select {
		case <-np.stopChan:
			return
		case <-ticker.C:
			np.buf.Clear(0, len(np.buf))
			np.r.RenderBlock(np.buf, 0, len(np.buf))
			np.frames.Add(int64(len(np.buf)))
			if p := float32(np.buf.Peak()); p > np.Peak() {
				np.peak.Store(math.Float32bits(p))
			}
		}
	}
}

// Close stops the goroutine and waits for it
func (np *NullPlayer) Close() error {
	np.once.Do(func() {
		close(np.stopChan)
		if np.started.Load() {
			<-np.doneChan
		}
	})
	return nil
}

// Frames returns how many frames have been rendered
func (np *NullPlayer) Frames() int64 {
	return np.frames.Load()
}

// Peak returns the loudest sample rendered so far
func (np *NullPlayer) Peak() float32 {
	return math.Float32frombits(np.peak.Load())
}
