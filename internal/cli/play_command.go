package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"audiotest.click/internal/audio"
	"audiotest.click/internal/ui"
)

func newPlayCommand(c *CLI) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play FILE",
		Short: "Play a WAV clip",
		Long: `Load a WAV clip and play it through the configured backend.

On a terminal the clip plays under an interactive display (up/down volume,
space pause, r restart, q quit). Otherwise the command returns when the clip ends.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stream, _ := cmd.Flags().GetBool("stream")
			return c.runPlay(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), args[0], stream || c.cfg.StreamFromFile)
		},
	}
	cmd.Flags().Bool("stream", false, "Stream the payload from disk instead of loading it whole")
	return cmd
}

func (c *CLI) runPlay(ctx context.Context, stdin io.Reader, stdout io.Writer, path string, stream bool) (err error) {
	device := audio.NewDevice(c.fsFactory.Clips())
	defer func() {
		err = errors.Join(err, device.Close())
	}()

	data, err := device.CreateAudioFromFile(path, stream)
	if err != nil {
		return err
	}

	backend, err := c.backendFactory.CreateBackend(c.cfg.AudioBackend)
	if err != nil {
		return fmt.Errorf("failed to create audio backend '%s': %w", c.cfg.AudioBackend, err)
	}

	actx := audio.NewContext(backend)
	if err := actx.Open(data.Spec()); err != nil {
		return errors.Join(err, actx.Close())
	}

	obj := audio.NewAudioObject(data, &audio.SampleInfo{Volume: c.cfg.VolumeOrDefault()})
	s := newSession(actx, obj)

	// Stop the object, release its data, then close the context
	defer func() {
		actx.StopAudio(obj)
		err = errors.Join(err, device.ReleaseAudio(data), actx.Close())
	}()

	if err := s.start(); err != nil {
		return err
	}

	slog.Info("playing clip",
		"path", path,
		"spec", data.Spec().String(),
		"duration", data.Duration(),
		"streaming", data.Streaming(),
		"backend", backend.Name(),
		"volume", obj.Volume())

	if c.isInteractive(stdout) {
		info := ui.ClipInfo{Path: path, Format: data.Spec().String(), Duration: data.Duration()}
		finished, err := ui.Run(s, info, stdin, stdout)
		if err != nil {
			return err
		}
		slog.Debug("interactive playback ended", "finished", finished)
		if finished {
			s.drain(ctx)
		}
		return nil
	}

	if err := s.wait(ctx); err != nil {
		slog.Info("playback interrupted", "path", path, "error", err)
		return nil
	}
	slog.Debug("playback finished", "path", path)
	return nil
}
