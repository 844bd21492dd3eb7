// Package audio connects a block renderer to an output device. Every backend
// pulls fixed-size blocks from the renderer on its own goroutine using
// buffers allocated up front.
package audio

import (
	"encoding/binary"
	"io"
	"math"

	"go-piano/synth"
)

// Renderer produces stereo blocks (implemented by synth.Synth).
// The caller clears the region before each call.
type Renderer interface {
	RenderBlock(buf synth.Buffer, start, n int)
}

// Output format: interleaved stereo float32, little endian
const (
	Channels      = 2
	bytesPerFrame = Channels * 4
)

// Stream adapts a Renderer to the io.Reader that byte-oriented device APIs pull from
type Stream struct {
	r   Renderer
	buf synth.Buffer
}

// NewStream renders in chunks of at most blockSize frames
func NewStream(r Renderer, blockSize int) *Stream {
	return &Stream{
		r:   r,
		buf: synth.NewBuffer(max(blockSize, 1)),
	}
}

// Read fills p with whole frames of interleaved little-endian float32 stereo
// and never blocks or allocates. Trailing bytes that do not make up a full
// 8-byte frame are left untouched and not counted, so n may be less than
// len(p) with a nil error. A p shorter than one frame returns
// io.ErrShortBuffer.
func (s *Stream) Read(p []byte) (int, error) {
	frames := len(p) / bytesPerFrame
	if frames == 0 {
		return 0, io.ErrShortBuffer
	}

	off := 0
	for frames > 0 {
		n := min(frames, len(s.buf))
		s.buf.Clear(0, n)
		s.r.RenderBlock(s.buf, 0, n)
		for i := 0; i < n; i++ {
			binary.LittleEndian.PutUint32(p[off:], math.Float32bits(float32(s.buf[i][0])))
			binary.LittleEndian.PutUint32(p[off+4:], math.Float32bits(float32(s.buf[i][1])))
			off += bytesPerFrame
		}
		frames -= n
	}
	return off, nil
}
