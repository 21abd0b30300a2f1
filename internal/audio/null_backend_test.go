package audio

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"audiotest.click/internal/wav"
)

func TestNullBackendPullsInRealTime(t *testing.T) {
	// 64 frames at 8 kHz is an 8 ms period
	spec := wav.Spec{SampleRate: 8000, Format: wav.FormatS16, Channels: 1, Samples: 64}

	var calls atomic.Int32
	backend := NewNullBackend()
	if err := backend.Open(spec, func(out []byte) {
		if len(out) != 128 {
			t.Errorf("fill got %d bytes, want 128", len(out))
		}
		calls.Add(1)
	}); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := backend.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for calls.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if calls.Load() < 3 {
		t.Fatalf("expected at least 3 pulls, got %d", calls.Load())
	}

	if err := backend.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	stopped := calls.Load()
	time.Sleep(30 * time.Millisecond)
	if calls.Load() != stopped {
		t.Error("backend kept pulling after Stop")
	}
	if backend.Consumed() != int64(stopped)*128 {
		t.Errorf("Consumed() = %d, want %d", backend.Consumed(), int64(stopped)*128)
	}

	if err := backend.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if err := backend.Start(); !errors.Is(err, ErrBackendClosed) {
		t.Errorf("Start after Close error = %v, want ErrBackendClosed", err)
	}
}

func TestNullBackendLifecycleErrors(t *testing.T) {
	backend := NewNullBackend()

	if err := backend.Start(); !errors.Is(err, ErrBackendNotOpen) {
		t.Errorf("Start before Open error = %v, want ErrBackendNotOpen", err)
	}
	if err := backend.Open(wav.Spec{}, func([]byte) {}); !errors.Is(err, ErrUnsupportedSpec) {
		t.Errorf("Open with empty spec error = %v, want ErrUnsupportedSpec", err)
	}
	if err := backend.Stop(); err != nil {
		t.Errorf("Stop when idle error = %v", err)
	}
	if err := backend.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if err := backend.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestNullBackendDrivesContextToCompletion(t *testing.T) {
	// About 9 ms of 44.1 kHz stereo, pulled in 1 KiB blocks
	data := loadClip(t, rampPayload(1600), false)
	spec := data.Spec()
	spec.Samples = 256

	ctx := NewContext(NewNullBackend())
	defer ctx.Close()
	if err := ctx.Open(spec); err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	obj := NewAudioObject(data, nil)
	if err := ctx.PlayAudio(obj); err != nil {
		t.Fatalf("PlayAudio() error = %v", err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for ctx.IsPlaying(obj) && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if ctx.IsPlaying(obj) {
		t.Fatal("object still playing after deadline")
	}
	if !obj.Finished() {
		t.Errorf("object stopped at %d of %d", obj.Pos(), data.Length())
	}
}
