package audio

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/ebitengine/oto/v3"
)

// OtoPlayer plays a Stream through an oto context. Only one oto context may
// exist per process.
type OtoPlayer struct {
	ctx     *oto.Context
	player  *oto.Player
	stream  atomic.Pointer[Stream] // Atomic for lock-free Read()
	started bool
	mutex   sync.Mutex // Only for setup/control operations
}

// NewOtoPlayer opens the default device at sampleRate with roughly bufferSize of latency
func NewOtoPlayer(sampleRate int, bufferSize time.Duration) (*OtoPlayer, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: Channels,
		Format:       oto.FormatFloat32LE,
		BufferSize:   bufferSize,
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, err
	}
	<-ready

	return &OtoPlayer{
		ctx: ctx,
	}, nil
}

// Setup attaches the stream the device will pull from
func (op *OtoPlayer) Setup(s *Stream) {
	op.mutex.Lock()
	defer op.mutex.Unlock()

	op.stream.Store(s)
	if op.player == nil {
		op.player = op.ctx.NewPlayer(op)
	}
}

// Read is called by oto on its own goroutine
func (op *OtoPlayer) Read(p []byte) (n int, err error) {
	// Load stream pointer atomically - no lock needed for the hot path
	s := op.stream.Load()
	if s == nil {
		clear(p)
		return len(p), nil
	}
	return s.Read(p)
}

// Start begins playback
func (op *OtoPlayer) Start() error {
	op.mutex.Lock()
	defer op.mutex.Unlock()

	if !op.started && op.player != nil {
		op.player.Play()
		op.started = true
	}
	return nil
}

// Close stops playback and releases the player
func (op *OtoPlayer) Close() error {
	op.mutex.Lock()
	defer op.mutex.Unlock()

	op.started = false
	if op.player == nil {
		return nil
	}
	err := op.player.Close()
	op.player = nil
	return err
}

// IsStarted reports whether the device is pulling audio
func (op *OtoPlayer) IsStarted() bool {
	op.mutex.Lock()
	defer op.mutex.Unlock()
	return op.started
}
