package audio

import (
	"context"
	"errors"
	"os/exec"
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	"audiotest.click/internal/wav"
)

func TestPlayerArgs(t *testing.T) {
	stereo16 := wav.Spec{SampleRate: 44100, Format: wav.FormatS16, Channels: 2}
	mono8 := wav.Spec{SampleRate: 8000, Format: wav.FormatU8, Channels: 1}
	s32 := wav.Spec{SampleRate: 96000, Format: wav.FormatS32, Channels: 6}

	tests := []struct {
		command string
		spec    wav.Spec
		want    []string
	}{
		{"paplay", stereo16, []string{"--raw", "--format=s16le", "--channels=2", "--rate=44100"}},
		{"paplay", mono8, []string{"--raw", "--format=u8", "--channels=1", "--rate=8000"}},
		{"aplay", stereo16, []string{"-q", "-t", "raw", "-f", "S16_LE", "-c", "2", "-r", "44100", "-"}},
		{"aplay", s32, []string{"-q", "-t", "raw", "-f", "S32_LE", "-c", "6", "-r", "96000", "-"}},
		{"ffplay", mono8, []string{"-nodisp", "-autoexit", "-loglevel", "quiet", "-f", "u8", "-ar", "8000", "-ch_layout", "1c", "-i", "-"}},
	}

	for _, tt := range tests {
		t.Run(tt.command+" "+tt.spec.String(), func(t *testing.T) {
			got, err := playerArgs(tt.command, tt.spec)
			if err != nil {
				t.Fatalf("playerArgs() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("playerArgs() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPlayerArgsRejects(t *testing.T) {
	spec := wav.Spec{SampleRate: 44100, Format: wav.FormatS16, Channels: 2}

	if _, err := playerArgs("afplay", spec); !errors.Is(err, ErrBackendNotAvailable) {
		t.Errorf("afplay error = %v, want ErrBackendNotAvailable", err)
	}

	spec.Format = wav.FormatUnknown
	if _, err := playerArgs("paplay", spec); !errors.Is(err, ErrUnsupportedSpec) {
		t.Errorf("unknown format error = %v, want ErrUnsupportedSpec", err)
	}
}

func TestSystemCommandBackendFeedsStdin(t *testing.T) {
	if !CommandExists("cat") {
		t.Skip("cat not available")
	}

	backend := NewSystemCommandBackend("paplay")
	backend.newCommand = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		return exec.CommandContext(ctx, "cat")
	}

	var pulls atomic.Int32
	spec := wav.Spec{SampleRate: 8000, Format: wav.FormatS16, Channels: 1, Samples: 32}
	if err := backend.Open(spec, func(out []byte) { pulls.Add(1) }); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := backend.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for pulls.Load() < 5 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if pulls.Load() < 5 {
		t.Fatalf("expected the feeder to pull, got %d pulls", pulls.Load())
	}

	if err := backend.Stop(); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
	if err := backend.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if err := backend.Start(); !errors.Is(err, ErrBackendClosed) {
		t.Errorf("Start after Close error = %v, want ErrBackendClosed", err)
	}
}

func TestSystemCommandBackendStartBeforeOpen(t *testing.T) {
	backend := NewSystemCommandBackend("paplay")
	if err := backend.Start(); !errors.Is(err, ErrBackendNotOpen) {
		t.Errorf("Start() error = %v, want ErrBackendNotOpen", err)
	}
	if backend.Name() != BackendSystemCommand || backend.Command() != "paplay" {
		t.Errorf("unexpected identity %s/%s", backend.Name(), backend.Command())
	}
}
