//go:build cgo

package audio

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/ebitengine/oto/v3"

	"audiotest.click/internal/wav"
)

// oto allows a single context per process, so it is shared by every
// OtoBackend and fixed to the first stream format requested
var (
	otoMu       sync.Mutex
	otoContext  *oto.Context
	otoSpec     wav.Spec
	otoInitErr  error
	otoInitOnce sync.Once
)

// OtoBackend plays through an oto player that pulls from the fill function.
// Only signed 16-bit streams are accepted.
type OtoBackend struct {
	mu     sync.Mutex
	player *oto.Player
	closed bool
}

func NewOtoBackend() *OtoBackend {
	slog.Debug("creating new OtoBackend")
	return &OtoBackend{}
}

func newOtoBackend() (Backend, error) {
	return NewOtoBackend(), nil
}

func (ob *OtoBackend) Name() string {
	return BackendOto
}

func sharedOtoContext(spec wav.Spec) (*oto.Context, error) {
	otoMu.Lock()
	defer otoMu.Unlock()

	otoInitOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   spec.SampleRate,
			ChannelCount: spec.Channels,
			Format:       oto.FormatSignedInt16LE,
		}

		ctx, readyChan, err := oto.NewContext(op)
		if err != nil {
			otoInitErr = fmt.Errorf("create oto context: %w", err)
			return
		}
		<-readyChan

		otoContext = ctx
		otoSpec = spec
		slog.Debug("oto context initialized", "spec", spec.String())
	})

	if otoInitErr != nil {
		return nil, otoInitErr
	}
	if !otoSpec.Equal(spec) {
		return nil, fmt.Errorf("%w: oto context already running %s", ErrUnsupportedSpec, otoSpec)
	}
	return otoContext, nil
}

func (ob *OtoBackend) Open(spec wav.Spec, fill FillFunc) error {
	if err := validateSpec(spec); err != nil {
		return err
	}
	if spec.Format != wav.FormatS16 {
		return fmt.Errorf("%w: oto with %s", ErrUnsupportedSpec, spec.Format)
	}

	ob.mu.Lock()
	defer ob.mu.Unlock()

	if ob.closed {
		return ErrBackendClosed
	}
	if ob.player != nil {
		return fmt.Errorf("oto player already open")
	}

	ctx, err := sharedOtoContext(spec)
	if err != nil {
		slog.Error("failed to initialize oto context", "spec", spec.String(), "error", err)
		return err
	}
	if err := ctx.Resume(); err != nil {
		return fmt.Errorf("resume oto context: %w", err)
	}

	ob.player = ctx.NewPlayer(&pullReader{fill: fill, block: make([]byte, blockBytes(spec))})

	slog.Debug("OtoBackend opened", "spec", spec.String())
	return nil
}

func (ob *OtoBackend) Start() error {
	ob.mu.Lock()
	defer ob.mu.Unlock()

	if ob.closed {
		return ErrBackendClosed
	}
	if ob.player == nil {
		return ErrBackendNotOpen
	}
	ob.player.Play()

	slog.Debug("OtoBackend started")
	return nil
}

func (ob *OtoBackend) Stop() error {
	ob.mu.Lock()
	defer ob.mu.Unlock()

	if ob.closed {
		return ErrBackendClosed
	}
	if ob.player != nil {
		ob.player.Pause()
	}

	slog.Debug("OtoBackend stopped")
	return nil
}

func (ob *OtoBackend) Close() error {
	ob.mu.Lock()
	defer ob.mu.Unlock()

	if ob.closed {
		return nil
	}
	ob.closed = true

	if ob.player != nil {
		err := ob.player.Close()
		ob.player = nil
		if err != nil {
			return fmt.Errorf("close oto player: %w", err)
		}
	}

	slog.Debug("OtoBackend closed")
	return nil
}
