package audio

import (
	"encoding/binary"
	"errors"
	"io"
	"math"
	"sync/atomic"
	"testing"
	"time"

	"go-piano/dsp"
	"go-piano/synth"
)

// rampRenderer writes a running frame counter into both channels
type rampRenderer struct {
	next   int
	blocks []int
}

func (r *rampRenderer) RenderBlock(buf synth.Buffer, start, n int) {
	r.blocks = append(r.blocks, n)
	for i := 0; i < n; i++ {
		buf[start+i][0] += float64(r.next)
		buf[start+i][1] -= float64(r.next)
		r.next++
	}
}

func frameAt(p []byte, i int) (float32, float32) {
	l := math.Float32frombits(binary.LittleEndian.Uint32(p[i*8:]))
	r := math.Float32frombits(binary.LittleEndian.Uint32(p[i*8+4:]))
	return l, r
}

func TestStream_InterleavesFloat32LE(t *testing.T) {
	r := &rampRenderer{}
	s := NewStream(r, 4)

	p := make([]byte, 10*bytesPerFrame)
	n, err := s.Read(p)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if n != len(p) {
		t.Fatalf("Read = %d, want %d", n, len(p))
	}
	for i := 0; i < 10; i++ {
		l, rt := frameAt(p, i)
		if l != float32(i) || rt != -float32(i) {
			t.Errorf("frame %d = (%v, %v), want (%d, -%d)", i, l, rt, i, i)
		}
	}

	want := []int{4, 4, 2}
	if len(r.blocks) != len(want) {
		t.Fatalf("blocks = %v, want %v", r.blocks, want)
	}
	for i := range want {
		if r.blocks[i] != want[i] {
			t.Fatalf("blocks = %v, want %v", r.blocks, want)
		}
	}
}

func TestStream_ClearsBetweenBlocks(t *testing.T) {
	r := &rampRenderer{}
	s := NewStream(r, 2)
	p := make([]byte, 4*bytesPerFrame)
	s.Read(p)

	// frames 2 and 3 reuse buffer slots 0 and 1; they must not carry frames 0 and 1
	if l, _ := frameAt(p, 3); l != 3 {
		t.Errorf("frame 3 left = %v, want 3", l)
	}
}

func TestStream_PartialFrame(t *testing.T) {
	s := NewStream(&rampRenderer{}, 8)

	p := make([]byte, 3*bytesPerFrame+5)
	for i := range p {
		p[i] = 0xAA
	}
	n, err := s.Read(p)
	if err != nil || n != 3*bytesPerFrame {
		t.Errorf("Read = (%d, %v), want (%d, nil)", n, err, 3*bytesPerFrame)
	}
	for i, b := range p[3*bytesPerFrame:] {
		if b != 0xAA {
			t.Errorf("trailing byte %d = %#x, want untouched", i, b)
		}
	}
	if _, err := s.Read(make([]byte, 5)); !errors.Is(err, io.ErrShortBuffer) {
		t.Errorf("short Read error = %v, want io.ErrShortBuffer", err)
	}
}

func TestStream_FromSynth(t *testing.T) {
	sy, err := synth.New(2, dsp.SoftTimbre())
	if err != nil {
		t.Fatal(err)
	}
	sy.NoteOn(1, 69, 0.8)

	p := make([]byte, 1024*bytesPerFrame)
	if _, err := NewStream(sy, 256).Read(p); err != nil {
		t.Fatal(err)
	}
	nonZero := 0
	for i := 0; i < 1024; i++ {
		l, r := frameAt(p, i)
		if l != r {
			t.Fatalf("frame %d: centre-panned voice gave l=%v r=%v", i, l, r)
		}
		if l != 0 {
			nonZero++
		}
	}
	if nonZero == 0 {
		t.Error("stream carried no audio")
	}
}

func TestRenderStreamer(t *testing.T) {
	r := &rampRenderer{}
	st := renderStreamer{r: r}

	samples := make([][2]float64, 6)
	samples[0] = [2]float64{99, 99}
	n, ok := st.Stream(samples)
	if n != 6 || !ok {
		t.Fatalf("Stream = (%d, %v), want (6, true)", n, ok)
	}
	if samples[0] != [2]float64{0, 0} || samples[5] != [2]float64{5, -5} {
		t.Errorf("samples = %v", samples)
	}
	if st.Err() != nil {
		t.Errorf("Err = %v", st.Err())
	}
}

// countingRenderer counts blocks from the player goroutine
type countingRenderer struct {
	blocks atomic.Int64
}

func (c *countingRenderer) RenderBlock(buf synth.Buffer, start, n int) {
	c.blocks.Add(1)
	buf[start][0] += 0.5
}

func TestNullPlayer_PullsBlocks(t *testing.T) {
	r := &countingRenderer{}
	np := NewNullPlayer(44100, 441, r) // 10ms blocks
	if err := np.Start(); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for r.blocks.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	np.Close()

	if r.blocks.Load() < 3 {
		t.Fatalf("rendered %d blocks, want at least 3", r.blocks.Load())
	}
	if np.Frames() != r.blocks.Load()*441 {
		t.Errorf("Frames = %d, want %d", np.Frames(), r.blocks.Load()*441)
	}
	if np.Peak() != 0.5 {
		t.Errorf("Peak = %v, want 0.5", np.Peak())
	}

	after := r.blocks.Load()
	time.Sleep(30 * time.Millisecond)
	if r.blocks.Load() != after {
		t.Error("rendering continued after Close")
	}
	np.Close() // idempotent
}

func TestOpen(t *testing.T) {
	r := &countingRenderer{}
	if _, err := Open("jack", 44100, 512, r); !errors.Is(err, ErrUnknownBackend) {
		t.Errorf("Open(jack) error = %v, want ErrUnknownBackend", err)
	}
	if _, err := Open(BackendNull, 0, 512, r); err == nil {
		t.Error("Open with zero sample rate succeeded")
	}
	p, err := Open(BackendNull, 48000, 480, r)
	if err != nil {
		t.Fatalf("Open(null): %v", err)
	}
	if _, ok := p.(*NullPlayer); !ok {
		t.Errorf("Open(null) = %T", p)
	}
	if d := BlockDuration(48000, 480); d != 10*time.Millisecond {
		t.Errorf("BlockDuration = %v, want 10ms", d)
	}
}
