package audio

import (
	"encoding/binary"
	"log/slog"
	"math"

	"audiotest.click/internal/wav"
)

// fillSilence writes the zero level of format into b. Unsigned 8-bit audio is
// centered on 0x80, every signed format on 0.
func fillSilence(b []byte, format wav.SampleFormat) {
	if format == wav.FormatU8 {
		for i := range b {
			b[i] = 0x80
		}
		return
	}
	clear(b)
}

// scaleSamples multiplies every sample in b by volume, which must be in [0, 1]
func scaleSamples(b []byte, format wav.SampleFormat, volume float64) {
	if volume >= 1.0 {
		return
	}
	if volume <= 0 {
		fillSilence(b, format)
		return
	}

	switch format {
	case wav.FormatU8:
		for i := range b {
			s := float64(int(b[i]) - 0x80)
			b[i] = byte(int(s*volume) + 0x80)
		}
	case wav.FormatS16:
		for i := 0; i+1 < len(b); i += 2 {
			s := int16(binary.LittleEndian.Uint16(b[i:]))
			s = int16(float64(s) * volume)
			binary.LittleEndian.PutUint16(b[i:], uint16(s))
		}
	case wav.FormatS32:
		for i := 0; i+3 < len(b); i += 4 {
			s := int32(binary.LittleEndian.Uint32(b[i:]))
			s = int32(float64(s) * volume)
			binary.LittleEndian.PutUint32(b[i:], uint32(s))
		}
	default:
		slog.Warn("volume adjustment not implemented for format", "format", format.String())
	}
}

// mixSamples adds src into dst sample by sample, saturating at the format's
// range. Only the overlapping prefix is mixed.
func mixSamples(dst, src []byte, format wav.SampleFormat) {
	n := min(len(dst), len(src))

	switch format {
	case wav.FormatU8:
		for i := 0; i < n; i++ {
			s := int(dst[i]) - 0x80 + int(src[i]) - 0x80
			dst[i] = byte(clamp(s, math.MinInt8, math.MaxInt8) + 0x80)
		}
	case wav.FormatS16:
		for i := 0; i+1 < n; i += 2 {
			a := int(int16(binary.LittleEndian.Uint16(dst[i:])))
			b := int(int16(binary.LittleEndian.Uint16(src[i:])))
			binary.LittleEndian.PutUint16(dst[i:], uint16(int16(clamp(a+b, math.MinInt16, math.MaxInt16))))
		}
	case wav.FormatS32:
		for i := 0; i+3 < n; i += 4 {
			a := int64(int32(binary.LittleEndian.Uint32(dst[i:])))
			b := int64(int32(binary.LittleEndian.Uint32(src[i:])))
			binary.LittleEndian.PutUint32(dst[i:], uint32(int32(clamp(a+b, math.MinInt32, math.MaxInt32))))
		}
	default:
		slog.Warn("mixing not implemented for format", "format", format.String())
	}
}

func clamp[T int | int64](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
