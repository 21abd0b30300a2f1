package wav

import (
	"encoding/binary"
	"fmt"
	"io"
	"time"
)

// EncodingPCM is the "fmt " encoding code for uncompressed linear PCM
const EncodingPCM uint16 = 0x0001

// FormatDescriptorSize is the number of "fmt " payload bytes the descriptor
// occupies. Longer payloads (extension fields) are accepted and ignored.
const FormatDescriptorSize = 16

// PreferredBufferFrames is the streaming chunk size, in frames, reported in
// every Spec. It is a constant and never read from the file.
const PreferredBufferFrames = 4096

// FormatDescriptor is the decoded "fmt " chunk payload
type FormatDescriptor struct {
	Encoding      uint16
	Channels      uint16
	SampleRate    uint32
	ByteRate      uint32 // informational only
	BlockAlign    uint16 // informational only
	BitsPerSample uint16
}

// DecodeFormat decodes a "fmt " payload field by field, little endian
func DecodeFormat(b []byte) (FormatDescriptor, error) {
	if len(b) < FormatDescriptorSize {
		return FormatDescriptor{}, fmt.Errorf("format payload is %d bytes, need %d: %w",
			len(b), FormatDescriptorSize, io.ErrUnexpectedEOF)
	}

	return FormatDescriptor{
		Encoding:      binary.LittleEndian.Uint16(b[0:2]),
		Channels:      binary.LittleEndian.Uint16(b[2:4]),
		SampleRate:    binary.LittleEndian.Uint32(b[4:8]),
		ByteRate:      binary.LittleEndian.Uint32(b[8:12]),
		BlockAlign:    binary.LittleEndian.Uint16(b[12:14]),
		BitsPerSample: binary.LittleEndian.Uint16(b[14:16]),
	}, nil
}

// SampleFormat is the width and signedness of one sample
type SampleFormat uint8

// Supported formats: unsigned 8-bit, signed 16-bit and signed 32-bit, both
// signed formats little endian
const (
	FormatUnknown SampleFormat = iota
	FormatU8
	FormatS16
	FormatS32
)

// SampleFormatFromBits maps a bits-per-sample value to a SampleFormat.
// Only 8, 16 and 32 are supported.
func SampleFormatFromBits(bits uint16) (SampleFormat, error) {
	switch bits {
	case 8:
		return FormatU8, nil
	case 16:
		return FormatS16, nil
	case 32:
		return FormatS32, nil
	default:
		return FormatUnknown, fmt.Errorf("%d bits per sample: %w", bits, ErrUnsupportedSampleFormat)
	}
}

// BytesPerSample returns the size of one sample, 0 for FormatUnknown
func (f SampleFormat) BytesPerSample() int {
	switch f {
	case FormatU8:
		return 1
	case FormatS16:
		return 2
	case FormatS32:
		return 4
	default:
		return 0
	}
}

// Bits returns the sample width in bits
func (f SampleFormat) Bits() int {
	return f.BytesPerSample() * 8
}

// Signed reports whether samples are two's complement
func (f SampleFormat) Signed() bool {
	return f == FormatS16 || f == FormatS32
}

func (f SampleFormat) String() string {
	switch f {
	case FormatU8:
		return "u8"
	case FormatS16:
		return "s16le"
	case FormatS32:
		return "s32le"
	default:
		return "unknown"
	}
}

// Spec describes a PCM stream the way an audio device consumes it
type Spec struct {
	SampleRate int
	Format     SampleFormat
	Channels   int
	Samples    int // preferred buffer size in frames
}

// FrameSize returns bytes per sample times channel count
func (s Spec) FrameSize() int {
	return s.Format.BytesPerSample() * s.Channels
}

// BytesPerSecond returns the payload byte rate implied by the spec
func (s Spec) BytesPerSecond() int {
	return s.FrameSize() * s.SampleRate
}

// DurationOf returns how long n payload bytes play for
func (s Spec) DurationOf(n int64) time.Duration {
	frameSize := s.FrameSize()
	if frameSize == 0 || s.SampleRate == 0 {
		return 0
	}
	frames := n / int64(frameSize)
	return time.Duration(frames * int64(time.Second) / int64(s.SampleRate))
}

// Equal reports whether two specs describe the same stream layout. The
// buffer size hint is ignored.
func (s Spec) Equal(o Spec) bool {
	return s.SampleRate == o.SampleRate && s.Format == o.Format && s.Channels == o.Channels
}

func (s Spec) String() string {
	return fmt.Sprintf("%d Hz %s %dch", s.SampleRate, s.Format, s.Channels)
}

// AlignToFrame truncates length down to the largest multiple of frameSize.
// A non-positive frameSize yields 0.
func AlignToFrame(length uint32, frameSize int) uint32 {
	if frameSize <= 0 {
		return 0
	}
	return length - length%uint32(frameSize)
}
