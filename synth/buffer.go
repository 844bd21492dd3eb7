package synth

// Buffer is a block of stereo frames, [0] left and [1] right.
// Its layout matches beep's [][2]float64 so a streamer can render in place.
type Buffer [][2]float64

// NewBuffer allocates a silent buffer of n frames
func NewBuffer(n int) Buffer {
	return make(Buffer, n)
}

// Clear zeroes n frames starting at start
func (b Buffer) Clear(start, n int) {
	clear(b[start : start+n])
}

// Peak returns the largest absolute sample in the buffer
func (b Buffer) Peak() float64 {
	peak := 0.0
	for _, f := range b {
		peak = max(peak, abs(f[0]), abs(f[1]))
	}
	return peak
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
