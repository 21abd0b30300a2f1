package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"audiotest.click/internal/wav"
)

// ErrInfoFailed is returned when at least one file could not be described
var ErrInfoFailed = errors.New("one or more files could not be parsed")

func newInfoCommand(c *CLI) *cobra.Command {
	return &cobra.Command{
		Use:   "info FILE...",
		Short: "Print the WAV header of each file",
		Long:  "Parse each file up to its data payload and print the format, payload size and layout. Files that fail are reported and the command exits non-zero.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInfo(cmd.OutOrStdout(), cmd.ErrOrStderr(), args)
		},
	}
}

func (c *CLI) runInfo(stdout, stderr io.Writer, paths []string) error {
	failed := 0
	for i, path := range paths {
		if i > 0 {
			fmt.Fprintln(stdout)
		}

		hdr, err := c.readHeader(path)
		if err != nil {
			failed++
			fmt.Fprintf(stderr, "%s: %v\n", path, err)
			slog.Error("failed to parse header", "path", path, "kind", wav.KindOf(err), "error", err)
			continue
		}
		printHeader(stdout, path, hdr)
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", ErrInfoFailed, failed, len(paths))
	}
	return nil
}

func (c *CLI) readHeader(path string) (*wav.Header, error) {
	f, err := c.fsFactory.Clips().Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return wav.ParseHeader(f)
}

func printHeader(w io.Writer, path string, hdr *wav.Header) {
	spec := hdr.Spec
	fmt.Fprintf(w, "%s\n", path)
	fmt.Fprintf(w, "  format:      %s\n", spec)
	fmt.Fprintf(w, "  sample rate: %d Hz\n", spec.SampleRate)
	fmt.Fprintf(w, "  channels:    %d\n", spec.Channels)
	fmt.Fprintf(w, "  bits:        %d\n", spec.Format.Bits())
	fmt.Fprintf(w, "  data length: %d bytes (declared %d)\n", hdr.DataLength, hdr.DeclaredDataLength)
	fmt.Fprintf(w, "  data offset: %d\n", hdr.DataOffset)
	fmt.Fprintf(w, "  duration:    %s\n", hdr.Duration())
	if hdr.Shifted {
		fmt.Fprintf(w, "  note:        missing RIFF tag, read shifted\n")
	}
	for _, chunk := range hdr.Skipped {
		fmt.Fprintf(w, "  skipped:     %s\n", chunk)
	}
}
