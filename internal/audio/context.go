package audio

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"audiotest.click/internal/wav"
)

var (
	ErrContextClosed  = errors.New("audio context is closed")
	ErrContextNotOpen = errors.New("audio context is not open")
	ErrSpecMismatch   = errors.New("audio format does not match the context")
)

// Context mixes every playing AudioObject into one backend stream. The
// backend pulls through Mix on its own goroutine.
type Context struct {
	backend Backend

	mu      sync.Mutex
	spec    wav.Spec
	open    bool
	closed  bool
	playing []*AudioObject
	scratch []byte
}

// NewContext creates a context that will output through backend
func NewContext(backend Backend) *Context {
	slog.Debug("creating audio context", "backend", backend.Name())
	return &Context{backend: backend}
}

// Open configures the backend for spec and starts pulling. Every object
// played afterwards must match spec.
func (c *Context) Open(spec wav.Spec) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrContextClosed
	}
	if c.open {
		c.mu.Unlock()
		return fmt.Errorf("audio context already open with %s", c.spec)
	}
	c.spec = spec
	c.mu.Unlock()

	if err := c.backend.Open(spec, c.Mix); err != nil {
		slog.Error("failed to open audio backend", "backend", c.backend.Name(), "spec", spec.String(), "error", err)
		return fmt.Errorf("open %s backend: %w", c.backend.Name(), err)
	}
	if err := c.backend.Start(); err != nil {
		c.backend.Close()
		slog.Error("failed to start audio backend", "backend", c.backend.Name(), "error", err)
		return fmt.Errorf("start %s backend: %w", c.backend.Name(), err)
	}

	c.mu.Lock()
	c.open = true
	c.mu.Unlock()

	slog.Info("audio context opened", "backend", c.backend.Name(), "spec", spec.String())
	return nil
}

// Spec returns the stream format the context was opened with
func (c *Context) Spec() wav.Spec {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.spec
}

// BufferPeriod is how long one pulled block plays for. A block handed to the
// backend is still being played for up to this long.
func (c *Context) BufferPeriod() time.Duration {
	spec := c.Spec()
	return spec.DurationOf(int64(blockBytes(spec)))
}

// PlayAudio starts obj, or resumes it from its position if it was paused.
// Playing an object that is already playing does nothing.
func (c *Context) PlayAudio(obj *AudioObject) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrContextClosed
	}
	if !c.open {
		return ErrContextNotOpen
	}
	if spec := obj.Data().Spec(); !spec.Equal(c.spec) {
		slog.Error("refusing to play audio with mismatched format",
			"path", obj.Data().Path(),
			"audio_spec", spec.String(),
			"context_spec", c.spec.String())
		return fmt.Errorf("%w: %s is %s, context is %s", ErrSpecMismatch, obj.Data().Path(), spec, c.spec)
	}

	if slices.Contains(c.playing, obj) {
		return nil
	}
	c.playing = append(c.playing, obj)

	slog.Debug("audio object playing", "path", obj.Data().Path(), "pos", obj.Pos(), "active", len(c.playing))
	return nil
}

// PauseAudio removes obj from the mix and keeps its position
func (c *Context) PauseAudio(obj *AudioObject) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.remove(obj) {
		slog.Debug("audio object paused", "path", obj.Data().Path(), "pos", obj.Pos())
	}
}

// StopAudio removes obj from the mix and rewinds it
func (c *Context) StopAudio(obj *AudioObject) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.remove(obj) {
		slog.Debug("audio object stopped", "path", obj.Data().Path())
	}
	obj.Reset()
}

func (c *Context) remove(obj *AudioObject) bool {
	i := slices.Index(c.playing, obj)
	if i < 0 {
		return false
	}
	c.playing = slices.Delete(c.playing, i, i+1)
	return true
}

// IsPlaying reports whether obj is part of the mix
func (c *Context) IsPlaying(obj *AudioObject) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Contains(c.playing, obj)
}

// Playing returns how many objects are being mixed
func (c *Context) Playing() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.playing)
}

// Mix fills out with the saturated sum of every playing object. Objects that
// reach the end of their data are dropped from the mix.
func (c *Context) Mix(out []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	format := c.spec.Format
	fillSilence(out, format)

	if len(c.playing) == 0 {
		return
	}
	if cap(c.scratch) < len(out) {
		c.scratch = make([]byte, len(out))
	}
	scratch := c.scratch[:len(out)]

	kept := c.playing[:0]
	for _, obj := range c.playing {
		n, done := obj.GenerateSamples(scratch, c.spec)
		mixSamples(out[:n], scratch[:n], format)

		if done {
			slog.Debug("audio object finished", "path", obj.Data().Path())
			continue
		}
		kept = append(kept, obj)
	}
	clear(c.playing[len(kept):])
	c.playing = kept
}

// Close stops every object and releases the backend
func (c *Context) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	wasOpen := c.open
	c.open = false
	c.playing = nil
	c.mu.Unlock()

	slog.Debug("closing audio context", "backend", c.backend.Name())

	var errs []error
	if wasOpen {
		if err := c.backend.Stop(); err != nil && !errors.Is(err, ErrBackendClosed) {
			errs = append(errs, fmt.Errorf("stop %s backend: %w", c.backend.Name(), err))
		}
	}
	if err := c.backend.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close %s backend: %w", c.backend.Name(), err))
	}

	if err := errors.Join(errs...); err != nil {
		slog.Error("audio context closed with errors", "error", err)
		return err
	}
	slog.Info("audio context closed")
	return nil
}
