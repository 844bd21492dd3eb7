package audio

import (
	"errors"
	"fmt"
	"time"
)

// Backend names accepted by Open
const (
	BackendOto  = "oto"
	BackendBeep = "beep"
	BackendNull = "null"
)

// ErrUnknownBackend is returned by Open for an unrecognized name
var ErrUnknownBackend = errors.New("unknown audio backend")

// Player is a running audio output
type Player interface {
	Start() error
	Close() error
}

// Backends lists the names Open accepts
func Backends() []string {
	return []string{BackendOto, BackendBeep, BackendNull}
}

// BlockDuration is the wall time covered by one block
func BlockDuration(sampleRate, blockSize int) time.Duration {
	if sampleRate <= 0 {
		return 0
	}
	return time.Duration(blockSize) * time.Second / time.Duration(sampleRate)
}

// Open creates the named backend wired to r. The player is not started.
func Open(backend string, sampleRate, blockSize int, r Renderer) (Player, error) {
	if sampleRate <= 0 || blockSize <= 0 {
		return nil, fmt.Errorf("invalid sample rate %d or block size %d", sampleRate, blockSize)
	}
	switch backend {
	case BackendOto:
		op, err := NewOtoPlayer(sampleRate, BlockDuration(sampleRate, blockSize))
		if err != nil {
			return nil, fmt.Errorf("open oto: %w", err)
		}
		op.Setup(NewStream(r, blockSize))
		return op, nil
	case BackendBeep:
		return NewBeepPlayer(sampleRate, blockSize, r), nil
	case BackendNull:
		return NewNullPlayer(sampleRate, blockSize, r), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
}
