package audio

import (
	"errors"
	"testing"
	"time"

	"github.com/spf13/afero"

	"audiotest.click/internal/wav"
)

// recordingBackend is a Backend that never pulls on its own; tests drive Mix
type recordingBackend struct {
	spec                    wav.Spec
	fill                    FillFunc
	opened, started, closed int
	stopped                 int
	openErr                 error
}

func (b *recordingBackend) Open(spec wav.Spec, fill FillFunc) error {
	if b.openErr != nil {
		return b.openErr
	}
	b.spec, b.fill = spec, fill
	b.opened++
	return nil
}
func (b *recordingBackend) Start() error { b.started++; return nil }
func (b *recordingBackend) Stop() error  { b.stopped++; return nil }
func (b *recordingBackend) Close() error { b.closed++; return nil }
func (b *recordingBackend) Name() string { return "recording" }

func openContext(t *testing.T, spec wav.Spec) (*Context, *recordingBackend) {
	t.Helper()
	backend := &recordingBackend{}
	ctx := NewContext(backend)
	if err := ctx.Open(spec); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { ctx.Close() })
	return ctx, backend
}

func TestContextOpenStartsBackend(t *testing.T) {
	data := loadClip(t, rampPayload(8), false)
	ctx, backend := openContext(t, data.Spec())

	if backend.opened != 1 || backend.started != 1 {
		t.Errorf("backend opened %d started %d, want 1 and 1", backend.opened, backend.started)
	}
	if !backend.spec.Equal(data.Spec()) {
		t.Errorf("backend spec = %s", backend.spec)
	}
	if err := ctx.Open(data.Spec()); err == nil {
		t.Error("second Open should fail")
	}
}

func TestContextBufferPeriod(t *testing.T) {
	ctx, _ := openContext(t, wav.Spec{SampleRate: 8000, Format: wav.FormatS16, Channels: 2, Samples: 800})
	if got := ctx.BufferPeriod(); got != 100*time.Millisecond {
		t.Errorf("BufferPeriod() = %v, want 100ms", got)
	}

	ctx, _ = openContext(t, wav.Spec{SampleRate: 44100, Format: wav.FormatS16, Channels: 2})
	if got, want := ctx.BufferPeriod(), 4096*time.Second/44100; got != want {
		t.Errorf("BufferPeriod() with default buffer = %v, want %v", got, want)
	}
}

func TestContextOpenFailure(t *testing.T) {
	backend := &recordingBackend{openErr: ErrBackendNotAvailable}
	ctx := NewContext(backend)

	err := ctx.Open(wav.Spec{SampleRate: 8000, Format: wav.FormatS16, Channels: 1})
	if !errors.Is(err, ErrBackendNotAvailable) {
		t.Errorf("Open() error = %v, want ErrBackendNotAvailable", err)
	}

	data := loadClip(t, rampPayload(8), false)
	if err := ctx.PlayAudio(NewAudioObject(data, nil)); !errors.Is(err, ErrContextNotOpen) {
		t.Errorf("PlayAudio on unopened context error = %v", err)
	}
}

func TestContextMixSumsObjects(t *testing.T) {
	a := loadClip(t, s16Payload(100, 200, 300, 400), false)
	b := loadClip(t, s16Payload(1, 2, 3, 4, 5, 6, 7, 8), false)
	ctx, backend := openContext(t, a.Spec())

	objA := NewAudioObject(a, nil)
	objB := NewAudioObject(b, nil)
	if err := ctx.PlayAudio(objA); err != nil {
		t.Fatalf("PlayAudio(a) error = %v", err)
	}
	if err := ctx.PlayAudio(objB); err != nil {
		t.Fatalf("PlayAudio(b) error = %v", err)
	}
	if ctx.Playing() != 2 {
		t.Fatalf("Playing() = %d, want 2", ctx.Playing())
	}

	out := make([]byte, 8)
	backend.fill(out)
	got := s16Samples(out)
	want := []int16{101, 202, 303, 404}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("first block sample %d = %d, want %d", i, got[i], want[i])
		}
	}

	// a is exhausted and dropped; b continues alone
	if ctx.IsPlaying(objA) {
		t.Error("finished object should be removed from the mix")
	}
	if !ctx.IsPlaying(objB) {
		t.Error("unfinished object should keep playing")
	}

	backend.fill(out)
	got = s16Samples(out)
	want = []int16{5, 6, 7, 8}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("second block sample %d = %d, want %d", i, got[i], want[i])
		}
	}
	if ctx.Playing() != 0 {
		t.Errorf("Playing() = %d after both finished", ctx.Playing())
	}

	backend.fill(out)
	for i, s := range s16Samples(out) {
		if s != 0 {
			t.Errorf("idle mix sample %d = %d, want silence", i, s)
		}
	}
}

func TestContextMixPadsWithSilence(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeClip(t, fs, "/u8.wav", wavBytes(1, 8000, 8, []byte{0x90, 0xa0}))
	data, err := NewAudioData(fs, "/u8.wav", false)
	if err != nil {
		t.Fatalf("NewAudioData() error = %v", err)
	}
	ctx, backend := openContext(t, data.Spec())
	ctx.PlayAudio(NewAudioObject(data, nil))

	out := make([]byte, 4)
	backend.fill(out)
	want := []byte{0x90, 0xa0, 0x80, 0x80}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("byte %d = %#x, want %#x", i, out[i], want[i])
		}
	}
}

func TestContextRejectsMismatchedSpec(t *testing.T) {
	stereo := loadClip(t, rampPayload(8), false)

	fs := afero.NewMemMapFs()
	writeClip(t, fs, "/mono.wav", wavBytes(1, 22050, 16, rampPayload(8)))
	mono, err := NewAudioData(fs, "/mono.wav", false)
	if err != nil {
		t.Fatalf("NewAudioData() error = %v", err)
	}

	ctx, _ := openContext(t, stereo.Spec())
	err = ctx.PlayAudio(NewAudioObject(mono, nil))
	if !errors.Is(err, ErrSpecMismatch) {
		t.Errorf("PlayAudio() error = %v, want ErrSpecMismatch", err)
	}
	if ctx.Playing() != 0 {
		t.Error("mismatched object should not be added")
	}
}

func TestContextPauseAndStop(t *testing.T) {
	data := loadClip(t, rampPayload(64), false)
	ctx, backend := openContext(t, data.Spec())
	obj := NewAudioObject(data, nil)

	ctx.PlayAudio(obj)
	ctx.PlayAudio(obj)
	if ctx.Playing() != 1 {
		t.Errorf("playing an object twice should not duplicate it, Playing() = %d", ctx.Playing())
	}

	backend.fill(make([]byte, 16))
	ctx.PauseAudio(obj)
	if ctx.IsPlaying(obj) {
		t.Error("paused object should not be playing")
	}
	if obj.Pos() != 16 {
		t.Errorf("pause should keep position, Pos() = %d", obj.Pos())
	}

	// Paused objects do not advance
	backend.fill(make([]byte, 16))
	if obj.Pos() != 16 {
		t.Errorf("paused object advanced to %d", obj.Pos())
	}

	ctx.PlayAudio(obj)
	backend.fill(make([]byte, 16))
	if obj.Pos() != 32 {
		t.Errorf("resumed object at %d, want 32", obj.Pos())
	}

	ctx.StopAudio(obj)
	if ctx.IsPlaying(obj) || obj.Pos() != 0 {
		t.Errorf("stop should remove and rewind, playing=%v pos=%d", ctx.IsPlaying(obj), obj.Pos())
	}
}

func TestContextClose(t *testing.T) {
	data := loadClip(t, rampPayload(8), false)
	backend := &recordingBackend{}
	ctx := NewContext(backend)
	if err := ctx.Open(data.Spec()); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	obj := NewAudioObject(data, nil)
	ctx.PlayAudio(obj)

	if err := ctx.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if backend.stopped != 1 || backend.closed != 1 {
		t.Errorf("backend stopped %d closed %d, want 1 and 1", backend.stopped, backend.closed)
	}
	if err := ctx.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if backend.closed != 1 {
		t.Error("second Close should not close the backend again")
	}
	if err := ctx.PlayAudio(obj); !errors.Is(err, ErrContextClosed) {
		t.Errorf("PlayAudio after Close error = %v, want ErrContextClosed", err)
	}
	if err := ctx.Open(data.Spec()); !errors.Is(err, ErrContextClosed) {
		t.Errorf("Open after Close error = %v, want ErrContextClosed", err)
	}
}
