package cli

import (
	"context"
	"log/slog"
	"time"

	"audiotest.click/internal/audio"
)

// pollInterval matches the TUI tick
const pollInterval = 16 * time.Millisecond

// session is one AudioObject playing on a Context. It implements ui.Playback.
type session struct {
	ctx    *audio.Context
	obj    *audio.AudioObject
	paused bool
}

func newSession(ctx *audio.Context, obj *audio.AudioObject) *session {
	return &session{ctx: ctx, obj: obj}
}

func (s *session) start() error {
	return s.ctx.PlayAudio(s.obj)
}

func (s *session) Progress() (int64, int64) {
	return s.obj.Pos(), s.obj.Data().Length()
}

func (s *session) Volume() float64 {
	return s.obj.Volume()
}

func (s *session) SetVolume(v float64) {
	s.obj.SetVolume(v)
	slog.Debug("volume changed", "volume", s.obj.Volume())
}

func (s *session) TogglePause() bool {
	if s.paused {
		if err := s.ctx.PlayAudio(s.obj); err != nil {
			slog.Error("failed to resume playback", "error", err)
			return true
		}
		s.paused = false
	} else {
		s.ctx.PauseAudio(s.obj)
		s.paused = true
	}
	return s.paused
}

func (s *session) Restart() {
	s.obj.Reset()
	s.paused = false
	if !s.ctx.IsPlaying(s.obj) {
		if err := s.ctx.PlayAudio(s.obj); err != nil {
			slog.Error("failed to restart playback", "error", err)
		}
	}
}

// Finished reports that the context dropped the object, which it does once
// the object runs out of samples
func (s *session) Finished() bool {
	return !s.paused && !s.ctx.IsPlaying(s.obj)
}

func (s *session) Stop() {
	s.ctx.StopAudio(s.obj)
}

// wait blocks until the clip finishes or ctx is cancelled, in which case the
// object is stopped
func (s *session) wait(ctx context.Context) error {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for !s.Finished() {
		select {
		case <-ctx.Done():
			s.Stop()
			return ctx.Err()
		case <-ticker.C:
		}
	}
	s.drain(ctx)
	return nil
}

// drain lets the last block reach the speakers before teardown
func (s *session) drain(ctx context.Context) {
	period := s.ctx.BufferPeriod()
	slog.Debug("draining final buffer", "period", period)

	timer := time.NewTimer(period)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
