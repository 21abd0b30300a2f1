//go:build cgo

package audio

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/gen2brain/malgo"

	"audiotest.click/internal/wav"
)

const cgoEnabled = true

// MalgoBackend plays through a miniaudio playback device. The device
// callback pulls straight from the fill function.
type MalgoBackend struct {
	mu     sync.Mutex
	ctx    *malgo.AllocatedContext
	device *malgo.Device
	closed bool
}

func NewMalgoBackend() *MalgoBackend {
	slog.Debug("creating new MalgoBackend")
	return &MalgoBackend{}
}

func newMalgoBackend() (Backend, error) {
	return NewMalgoBackend(), nil
}

func (mb *MalgoBackend) Name() string {
	return BackendMalgo
}

// malgoFormat maps a WAV sample format to the device format
func malgoFormat(format wav.SampleFormat) (malgo.FormatType, error) {
	switch format {
	case wav.FormatU8:
		return malgo.FormatU8, nil
	case wav.FormatS16:
		return malgo.FormatS16, nil
	case wav.FormatS32:
		return malgo.FormatS32, nil
	default:
		return malgo.FormatUnknown, fmt.Errorf("%w: malgo with %s", ErrUnsupportedSpec, format)
	}
}

func (mb *MalgoBackend) Open(spec wav.Spec, fill FillFunc) error {
	if err := validateSpec(spec); err != nil {
		return err
	}
	format, err := malgoFormat(spec.Format)
	if err != nil {
		return err
	}

	mb.mu.Lock()
	defer mb.mu.Unlock()

	if mb.closed {
		return ErrBackendClosed
	}
	if mb.device != nil {
		return fmt.Errorf("malgo device already open")
	}

	slog.Debug("initializing malgo context")
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(message string) {
		slog.Debug("malgo internal", "message", message)
	})
	if err != nil {
		slog.Error("failed to initialize malgo context", "error", err)
		return fmt.Errorf("%w: %w", ErrBackendNotAvailable, err)
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.Playback.Format = format
	deviceConfig.Playback.Channels = uint32(spec.Channels)
	deviceConfig.SampleRate = uint32(spec.SampleRate)
	deviceConfig.PeriodSizeInFrames = uint32(blockBytes(spec) / spec.FrameSize())
	deviceConfig.Alsa.NoMMap = 1

	frameSize := spec.FrameSize()
	callbacks := malgo.DeviceCallbacks{
		Data: func(pOutputSample, pInputSamples []byte, framecount uint32) {
			n := int(framecount) * frameSize
			fill(pOutputSample[:min(n, len(pOutputSample))])
		},
	}

	device, err := malgo.InitDevice(ctx.Context, deviceConfig, callbacks)
	if err != nil {
		ctx.Uninit()
		ctx.Free()
		slog.Error("failed to initialize playback device", "spec", spec.String(), "error", err)
		return fmt.Errorf("initialize playback device: %w", err)
	}

	mb.ctx = ctx
	mb.device = device

	slog.Debug("malgo playback device initialized",
		"format", spec.Format.String(),
		"channels", spec.Channels,
		"sample_rate", spec.SampleRate)
	return nil
}

func (mb *MalgoBackend) Start() error {
	mb.mu.Lock()
	defer mb.mu.Unlock()

	if mb.closed {
		return ErrBackendClosed
	}
	if mb.device == nil {
		return ErrBackendNotOpen
	}
	if err := mb.device.Start(); err != nil {
		slog.Error("failed to start playback device", "error", err)
		return fmt.Errorf("start playback device: %w", err)
	}

	slog.Debug("MalgoBackend started")
	return nil
}

func (mb *MalgoBackend) Stop() error {
	mb.mu.Lock()
	defer mb.mu.Unlock()

	if mb.closed {
		return ErrBackendClosed
	}
	if mb.device == nil || !mb.device.IsStarted() {
		return nil
	}
	if err := mb.device.Stop(); err != nil {
		return fmt.Errorf("stop playback device: %w", err)
	}

	slog.Debug("MalgoBackend stopped")
	return nil
}

// Close uninitializes the device, then the context (Uninit and Free, as
// malgo requires both)
func (mb *MalgoBackend) Close() error {
	mb.mu.Lock()
	defer mb.mu.Unlock()

	if mb.closed {
		slog.Debug("MalgoBackend already closed")
		return nil
	}
	mb.closed = true

	if mb.device != nil {
		mb.device.Uninit()
		mb.device = nil
	}
	if mb.ctx != nil {
		err := mb.ctx.Uninit()
		mb.ctx.Free()
		mb.ctx = nil
		if err != nil {
			slog.Error("failed to uninitialize malgo context", "error", err)
			return fmt.Errorf("uninitialize malgo context: %w", err)
		}
	}

	slog.Debug("MalgoBackend closed")
	return nil
}
