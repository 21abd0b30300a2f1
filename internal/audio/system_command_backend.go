package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strconv"
	"sync"

	"audiotest.click/internal/wav"
)

// SystemCommandBackend pipes raw PCM into the stdin of a command line player
// such as paplay. The pipe provides the pacing: writes block while the
// player's buffer is full.
type SystemCommandBackend struct {
	command string

	// newCommand builds the player process; replaced in tests
	newCommand func(ctx context.Context, name string, args ...string) *exec.Cmd

	mu      sync.Mutex
	spec    wav.Spec
	fill    FillFunc
	args    []string
	cancel  context.CancelFunc
	done    chan error
	running bool
	closed  bool
}

// NewSystemCommandBackend creates a SystemCommandBackend for a player command
func NewSystemCommandBackend(command string) *SystemCommandBackend {
	slog.Debug("creating new SystemCommandBackend", "command", command)
	return &SystemCommandBackend{
		command:    command,
		newCommand: exec.CommandContext,
	}
}

func (scb *SystemCommandBackend) Name() string {
	return BackendSystemCommand
}

// Command returns the player executable name
func (scb *SystemCommandBackend) Command() string {
	return scb.command
}

// Raw sample format names; paplay and ffplay share theirs
var (
	pulseFormats = map[wav.SampleFormat]string{wav.FormatU8: "u8", wav.FormatS16: "s16le", wav.FormatS32: "s32le"}
	alsaFormats  = map[wav.SampleFormat]string{wav.FormatU8: "U8", wav.FormatS16: "S16_LE", wav.FormatS32: "S32_LE"}
)

// playerArgs returns the arguments that make command read raw PCM in spec
// from stdin
func playerArgs(command string, spec wav.Spec) ([]string, error) {
	rate := strconv.Itoa(spec.SampleRate)
	channels := strconv.Itoa(spec.Channels)

	switch command {
	case "paplay":
		if format, ok := pulseFormats[spec.Format]; ok {
			return []string{"--raw", "--format=" + format, "--channels=" + channels, "--rate=" + rate}, nil
		}
	case "ffplay":
		if format, ok := pulseFormats[spec.Format]; ok {
			return []string{"-nodisp", "-autoexit", "-loglevel", "quiet",
				"-f", format, "-ar", rate, "-ch_layout", channels + "c", "-i", "-"}, nil
		}
	case "aplay":
		if format, ok := alsaFormats[spec.Format]; ok {
			return []string{"-q", "-t", "raw", "-f", format, "-c", channels, "-r", rate, "-"}, nil
		}
	default:
		return nil, fmt.Errorf("%w: %q cannot play raw PCM from stdin", ErrBackendNotAvailable, command)
	}
	return nil, fmt.Errorf("%w: %s with %s", ErrUnsupportedSpec, command, spec.Format)
}

func (scb *SystemCommandBackend) Open(spec wav.Spec, fill FillFunc) error {
	if err := validateSpec(spec); err != nil {
		return err
	}

	args, err := playerArgs(scb.command, spec)
	if err != nil {
		slog.Error("system command cannot play format", "command", scb.command, "spec", spec.String(), "error", err)
		return err
	}

	scb.mu.Lock()
	defer scb.mu.Unlock()

	if scb.closed {
		return ErrBackendClosed
	}

	scb.spec = spec
	scb.fill = fill
	scb.args = args

	slog.Debug("SystemCommandBackend opened", "command", scb.command, "args", args)
	return nil
}

// Start launches the player and a goroutine feeding it
func (scb *SystemCommandBackend) Start() error {
	scb.mu.Lock()
	defer scb.mu.Unlock()

	if scb.closed {
		return ErrBackendClosed
	}
	if scb.fill == nil {
		return ErrBackendNotOpen
	}
	if scb.running {
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	cmd := scb.newCommand(ctx, scb.command, scb.args...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		cancel()
		return fmt.Errorf("system command stdin: %w", err)
	}
	if err := cmd.Start(); err != nil {
		cancel()
		slog.Error("system command failed to start", "command", scb.command, "error", err)
		return fmt.Errorf("start %s: %w", scb.command, err)
	}

	scb.cancel = cancel
	scb.done = make(chan error, 1)
	scb.running = true

	go scb.feed(ctx, cmd, stdin, scb.fill, blockBytes(scb.spec), scb.done)

	slog.Debug("SystemCommandBackend started", "command", scb.command, "pid", cmd.Process.Pid)
	return nil
}

func (scb *SystemCommandBackend) feed(ctx context.Context, cmd *exec.Cmd, stdin io.WriteCloser, fill FillFunc, size int, done chan<- error) {
	buf := make([]byte, size)

	var writeErr error
	for ctx.Err() == nil {
		fill(buf)
		if _, err := stdin.Write(buf); err != nil {
			writeErr = err
			break
		}
	}

	stdin.Close()
	err := cmd.Wait()
	if ctx.Err() != nil {
		// Killed by Stop
		err = nil
	} else if err == nil {
		err = writeErr
	}
	if err != nil {
		slog.Error("system command exited", "command", scb.command, "error", err)
	}
	done <- err
}

// Stop kills the player and waits for the feeding goroutine
func (scb *SystemCommandBackend) Stop() error {
	scb.mu.Lock()
	if scb.closed {
		scb.mu.Unlock()
		return ErrBackendClosed
	}
	if !scb.running {
		scb.mu.Unlock()
		return nil
	}
	scb.running = false
	scb.cancel()
	done := scb.done
	scb.mu.Unlock()

	err := <-done
	slog.Debug("SystemCommandBackend stopped", "command", scb.command)
	if err != nil && !errors.Is(err, io.ErrClosedPipe) {
		return fmt.Errorf("%s: %w", scb.command, err)
	}
	return nil
}

func (scb *SystemCommandBackend) Close() error {
	scb.mu.Lock()
	if scb.closed {
		scb.mu.Unlock()
		return nil
	}
	running := scb.running
	scb.mu.Unlock()

	var err error
	if running {
		err = scb.Stop()
	}

	scb.mu.Lock()
	scb.closed = true
	scb.mu.Unlock()

	slog.Debug("SystemCommandBackend closed")
	return err
}
