package audio

import (
	"errors"
	"fmt"

	"audiotest.click/internal/wav"
)

// Common errors for Backend implementations
var (
	ErrBackendNotAvailable = errors.New("audio backend not available")
	ErrBackendClosed       = errors.New("audio backend is closed")
	ErrBackendNotOpen      = errors.New("audio backend is not open")
	ErrUnsupportedSpec     = errors.New("audio backend does not support this stream format")
)

// FillFunc produces the next block of interleaved PCM in the spec the
// backend was opened with. It must fill all of out, writing silence where
// there is nothing to play. len(out) is always a whole number of frames.
type FillFunc func(out []byte)

// Backend is an output device that pulls PCM from a FillFunc
//
// Open configures the device for spec and records fill. Start and Stop
// resume and pause the pull; Close releases the device and may be called
// more than once.
type Backend interface {
	Open(spec wav.Spec, fill FillFunc) error
	Start() error
	Stop() error
	Close() error
	Name() string
}

// validateSpec rejects specs no backend can be configured for
func validateSpec(spec wav.Spec) error {
	if spec.FrameSize() <= 0 || spec.SampleRate <= 0 {
		return fmt.Errorf("%w: %s", ErrUnsupportedSpec, spec)
	}
	return nil
}

// blockBytes returns the size of one pull, in bytes
func blockBytes(spec wav.Spec) int {
	frames := spec.Samples
	if frames <= 0 {
		frames = wav.PreferredBufferFrames
	}
	return frames * spec.FrameSize()
}
