package wav

import (
	"errors"
	"io"
	"testing"
	"time"
)

func TestFourCC(t *testing.T) {
	testCases := []struct {
		tag  string
		want FourCC
	}{
		{"RIFF", ChunkRIFF},
		{"WAVE", ChunkWAVE},
		{"fact", ChunkFact},
		{"LIST", ChunkList},
		{"fmt ", ChunkFmt},
		{"fmt", ChunkFmt},
		{"data", ChunkData},
	}

	for _, tc := range testCases {
		if got := NewFourCC(tc.tag); got != tc.want {
			t.Errorf("NewFourCC(%q) = 0x%08x, want 0x%08x", tc.tag, uint32(got), uint32(tc.want))
		}
	}

	if ChunkFmt.String() != "fmt " {
		t.Errorf("ChunkFmt.String() = %q", ChunkFmt.String())
	}
	if got := FourCC(0x00414243).String(); got != "CBA?" {
		t.Errorf("non-printable tag rendered as %q, want %q", got, "CBA?")
	}
}

func TestSkippableBeforeFormat(t *testing.T) {
	for _, id := range []FourCC{ChunkFact, ChunkList} {
		if !id.skippableBeforeFormat() {
			t.Errorf("%s should be skippable", id)
		}
	}
	for _, id := range []FourCC{ChunkFmt, ChunkData, NewFourCC("junk"), NewFourCC("list")} {
		if id.skippableBeforeFormat() {
			t.Errorf("%s should not be skippable", id)
		}
	}
}

func TestDecodeFormat(t *testing.T) {
	desc, err := DecodeFormat(fmtPayload(EncodingPCM, 2, 44100, 16))
	if err != nil {
		t.Fatalf("DecodeFormat() error = %v", err)
	}

	want := FormatDescriptor{
		Encoding:      EncodingPCM,
		Channels:      2,
		SampleRate:    44100,
		ByteRate:      176400,
		BlockAlign:    4,
		BitsPerSample: 16,
	}
	if desc != want {
		t.Errorf("DecodeFormat() = %+v, want %+v", desc, want)
	}

	_, err = DecodeFormat(make([]byte, 15))
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("short payload error = %v, want io.ErrUnexpectedEOF", err)
	}
}

func TestSampleFormatFromBits(t *testing.T) {
	testCases := []struct {
		bits   uint16
		want   SampleFormat
		bytes  int
		signed bool
	}{
		{8, FormatU8, 1, false},
		{16, FormatS16, 2, true},
		{32, FormatS32, 4, true},
	}

	for _, tc := range testCases {
		got, err := SampleFormatFromBits(tc.bits)
		if err != nil {
			t.Fatalf("SampleFormatFromBits(%d) error = %v", tc.bits, err)
		}
		if got != tc.want {
			t.Errorf("SampleFormatFromBits(%d) = %s, want %s", tc.bits, got, tc.want)
		}
		if got.BytesPerSample() != tc.bytes {
			t.Errorf("%s.BytesPerSample() = %d, want %d", got, got.BytesPerSample(), tc.bytes)
		}
		if got.Bits() != int(tc.bits) {
			t.Errorf("%s.Bits() = %d, want %d", got, got.Bits(), tc.bits)
		}
		if got.Signed() != tc.signed {
			t.Errorf("%s.Signed() = %v, want %v", got, got.Signed(), tc.signed)
		}
	}

	for _, bits := range []uint16{0, 1, 12, 20, 24, 48, 64} {
		if _, err := SampleFormatFromBits(bits); !errors.Is(err, ErrUnsupportedSampleFormat) {
			t.Errorf("SampleFormatFromBits(%d) error = %v, want ErrUnsupportedSampleFormat", bits, err)
		}
	}

	if FormatUnknown.BytesPerSample() != 0 || FormatUnknown.String() != "unknown" {
		t.Error("FormatUnknown should have no width")
	}
}

func TestSpec(t *testing.T) {
	spec := Spec{SampleRate: 44100, Format: FormatS16, Channels: 2, Samples: PreferredBufferFrames}

	if spec.FrameSize() != 4 {
		t.Errorf("FrameSize() = %d, want 4", spec.FrameSize())
	}
	if spec.BytesPerSecond() != 176400 {
		t.Errorf("BytesPerSecond() = %d, want 176400", spec.BytesPerSecond())
	}
	if d := spec.DurationOf(176400); d != time.Second {
		t.Errorf("DurationOf(176400) = %v, want 1s", d)
	}
	if d := spec.DurationOf(88200 + 3); d != 500*time.Millisecond {
		t.Errorf("partial frames should not count, got %v", d)
	}
	if d := (Spec{}).DurationOf(100); d != 0 {
		t.Errorf("zero spec duration = %v, want 0", d)
	}
	if spec.String() != "44100 Hz s16le 2ch" {
		t.Errorf("String() = %q", spec.String())
	}

	other := spec
	other.Samples = 512
	if !spec.Equal(other) {
		t.Error("specs differing only in Samples should be equal")
	}
	other.Channels = 1
	if spec.Equal(other) {
		t.Error("specs with different channel counts should differ")
	}
}

func TestAlignToFrame(t *testing.T) {
	testCases := []struct {
		length    uint32
		frameSize int
		want      uint32
	}{
		{101, 4, 100},
		{100, 4, 100},
		{3, 4, 0},
		{0, 4, 0},
		{100, 6, 96},
		{17, 1, 17},
		{100, 0, 0},
		{100, -2, 0},
		{0xffffffff, 8, 0xfffffff8},
	}

	for _, tc := range testCases {
		got := AlignToFrame(tc.length, tc.frameSize)
		if got != tc.want {
			t.Errorf("AlignToFrame(%d, %d) = %d, want %d", tc.length, tc.frameSize, got, tc.want)
		}
		if tc.frameSize > 0 {
			if got > tc.length || tc.length-got >= uint32(tc.frameSize) {
				t.Errorf("AlignToFrame(%d, %d) = %d is not the largest multiple", tc.length, tc.frameSize, got)
			}
		}
	}
}
