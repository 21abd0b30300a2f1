package wav

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"
)

// MaxFormatChunkSize caps the "fmt " buffer. A larger declared length is
// refused with KindAllocationFailure before anything is allocated.
const MaxFormatChunkSize = 64 * 1024

// Header is the result of a successful ParseHeader call
type Header struct {
	Spec       Spec
	Descriptor FormatDescriptor

	// DataLength is the playable payload size: DeclaredDataLength truncated
	// to a whole number of frames.
	DataLength         uint32
	DeclaredDataLength uint32

	// DataOffset is the absolute offset of the first payload byte
	DataOffset int64

	// Shifted is set when the leading "RIFF" tag was missing and the
	// container was read 4 bytes early
	Shifted bool

	// Skipped lists the fact/LIST chunks passed over before "fmt "
	Skipped []ChunkHeader
}

// Duration returns the playing time of DataLength bytes
func (h *Header) Duration() time.Duration {
	return h.Spec.DurationOf(int64(h.DataLength))
}

// ParseHeader walks a RIFF/WAVE container from the current position of src
// (expected to be offset 0) up to the start of the "data" payload.
//
// On success src is left at the first payload byte. On failure the position
// is unspecified; src is never closed.
func ParseHeader(src io.ReadSeeker) (*Header, error) {
	if src == nil {
		return nil, newParseError(KindIO, "open source", errors.New("nil source"))
	}

	slog.Debug("parsing WAV header")

	hdr := &Header{}

	shifted, err := readContainerHeader(src)
	if err != nil {
		slog.Debug("WAV container header rejected", "error", err)
		return nil, err
	}
	hdr.Shifted = shifted

	fmtChunk, err := findFormatChunk(src, hdr)
	if err != nil {
		slog.Debug("WAV format chunk not found", "error", err)
		return nil, err
	}

	desc, err := readFormatDescriptor(src, fmtChunk)
	if err != nil {
		slog.Debug("WAV format chunk rejected", "error", err)
		return nil, err
	}
	hdr.Descriptor = desc

	spec, err := specFromDescriptor(desc)
	if err != nil {
		slog.Debug("WAV format not supported",
			"encoding", desc.Encoding,
			"bits_per_sample", desc.BitsPerSample,
			"channels", desc.Channels)
		return nil, err
	}
	hdr.Spec = spec

	dataChunk, err := findDataChunk(src)
	if err != nil {
		slog.Debug("WAV data chunk not found", "error", err)
		return nil, err
	}

	offset, err := src.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, newParseError(KindIO, "locate data chunk", err)
	}

	hdr.DataOffset = offset
	hdr.DeclaredDataLength = dataChunk.Length
	hdr.DataLength = AlignToFrame(dataChunk.Length, spec.FrameSize())

	slog.Debug("WAV header parsed",
		"sample_rate", spec.SampleRate,
		"channels", spec.Channels,
		"format", spec.Format.String(),
		"data_length", hdr.DataLength,
		"declared_data_length", hdr.DeclaredDataLength,
		"data_offset", hdr.DataOffset,
		"shifted", hdr.Shifted,
		"skipped_chunks", len(hdr.Skipped))

	return hdr, nil
}

// readContainerHeader validates the RIFF/WAVE preamble. Some files lack the
// leading "RIFF" tag; the second word is then "WAVE" and the first is the
// RIFF size, and no third word is read.
func readContainerHeader(r io.Reader) (shifted bool, err error) {
	const op = "read container header"

	riffTag, err := readLE32(r)
	if err != nil {
		return false, containerReadError(op, err)
	}
	riffSize, err := readLE32(r)
	if err != nil {
		return false, containerReadError(op, err)
	}

	var waveTag uint32
	if FourCC(riffSize) == ChunkWAVE {
		waveTag = riffSize
		riffSize = riffTag
		riffTag = uint32(ChunkRIFF)
		shifted = true
		slog.Debug("WAV file is missing its RIFF tag, correcting 4-byte shift", "riff_size", riffSize)
	} else {
		waveTag, err = readLE32(r)
		if err != nil {
			return false, containerReadError(op, err)
		}
	}

	if FourCC(riffTag) != ChunkRIFF || FourCC(waveTag) != ChunkWAVE {
		return false, newParseError(KindNotAWavFile, op,
			fmt.Errorf("got tags %q/%q", FourCC(riffTag), FourCC(waveTag)))
	}
	return shifted, nil
}

func containerReadError(op string, err error) error {
	if isEOF(err) {
		return newParseError(KindNotAWavFile, op, err)
	}
	return newParseError(KindIO, op, err)
}

// findFormatChunk skips any run of fact/LIST chunks and requires the next
// chunk to be "fmt ". Its header is returned with src at the payload.
func findFormatChunk(src io.ReadSeeker, hdr *Header) (ChunkHeader, error) {
	const op = "find format chunk"

	for {
		chunk, err := ReadChunkHeader(src)
		if err != nil {
			if isEOF(err) {
				return ChunkHeader{}, newParseError(KindTruncatedFile, op, err)
			}
			return ChunkHeader{}, newParseError(KindIO, op, err)
		}

		if !chunk.ID.skippableBeforeFormat() {
			if chunk.ID != ChunkFmt {
				return ChunkHeader{}, newParseError(KindUnsupportedContainer, op,
					fmt.Errorf("chunk %s precedes \"fmt \"", chunk))
			}
			return chunk, nil
		}

		slog.Debug("skipping WAV metadata chunk", "chunk", chunk.ID.String(), "length", chunk.Length)
		hdr.Skipped = append(hdr.Skipped, chunk)

		if err := SkipChunk(src, chunk.Length); err != nil {
			return ChunkHeader{}, newParseError(KindIO, op, err)
		}
	}
}

// readFormatDescriptor reads exactly chunk.Length bytes and decodes them
func readFormatDescriptor(r io.Reader, chunk ChunkHeader) (FormatDescriptor, error) {
	const op = "read format chunk"

	if chunk.Length > MaxFormatChunkSize {
		return FormatDescriptor{}, newParseError(KindAllocationFailure, op,
			fmt.Errorf("declared length %d exceeds %d", chunk.Length, MaxFormatChunkSize))
	}

	buf := make([]byte, chunk.Length)
	if _, err := io.ReadFull(r, buf); err != nil {
		if isEOF(err) {
			return FormatDescriptor{}, newParseError(KindTruncatedFile, op, err)
		}
		return FormatDescriptor{}, newParseError(KindIO, op, err)
	}

	desc, err := DecodeFormat(buf)
	if err != nil {
		return FormatDescriptor{}, newParseError(KindTruncatedFile, op, err)
	}
	return desc, nil
}

// specFromDescriptor validates the encoding and derives the device spec
func specFromDescriptor(desc FormatDescriptor) (Spec, error) {
	const op = "validate format"

	if desc.Encoding != EncodingPCM {
		return Spec{}, newParseError(KindUnsupportedEncoding, op,
			fmt.Errorf("encoding 0x%04x, only PCM (0x%04x) is supported", desc.Encoding, EncodingPCM))
	}

	format, err := SampleFormatFromBits(desc.BitsPerSample)
	if err != nil {
		return Spec{}, newParseError(KindUnsupportedSampleFormat, op,
			fmt.Errorf("%d bits per sample", desc.BitsPerSample))
	}

	if desc.Channels == 0 {
		return Spec{}, newParseError(KindUnsupportedSampleFormat, op, errors.New("zero channels"))
	}

	return Spec{
		SampleRate: int(desc.SampleRate),
		Format:     format,
		Channels:   int(desc.Channels),
		Samples:    PreferredBufferFrames,
	}, nil
}

// findDataChunk skips whatever chunks follow the format payload until a
// "data" header is read. Its header is returned with src at the payload.
func findDataChunk(src io.ReadSeeker) (ChunkHeader, error) {
	const op = "find data chunk"

	var prev ChunkHeader
	for {
		if err := SkipChunk(src, prev.Length); err != nil {
			return ChunkHeader{}, newParseError(KindIO, op, err)
		}

		chunk, err := ReadChunkHeader(src)
		if err != nil {
			if isEOF(err) {
				return ChunkHeader{}, newParseError(KindMissingDataChunk, op, err)
			}
			return ChunkHeader{}, newParseError(KindIO, op, err)
		}

		if chunk.ID == ChunkData {
			return chunk, nil
		}

		slog.Debug("skipping WAV chunk before data", "chunk", chunk.ID.String(), "length", chunk.Length)
		prev = chunk
	}
}
