package audio

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/spf13/afero"

	"audiotest.click/internal/wav"
)

// wavBytes builds a canonical PCM WAV file around payload
func wavBytes(channels, rate, bits int, payload []byte) []byte {
	var buf bytes.Buffer
	blockAlign := channels * bits / 8

	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+len(payload)))
	buf.WriteString("WAVEfmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(wav.EncodingPCM))
	binary.Write(&buf, binary.LittleEndian, uint16(channels))
	binary.Write(&buf, binary.LittleEndian, uint32(rate))
	binary.Write(&buf, binary.LittleEndian, uint32(rate*blockAlign))
	binary.Write(&buf, binary.LittleEndian, uint16(blockAlign))
	binary.Write(&buf, binary.LittleEndian, uint16(bits))
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(len(payload)))
	buf.Write(payload)
	return buf.Bytes()
}

// rampPayload returns n bytes counting up from 0, wrapping at 251 so window
// boundaries never line up with the pattern
func rampPayload(n int) []byte {
	p := make([]byte, n)
	for i := range p {
		p[i] = byte(i % 251)
	}
	return p
}

func s16Payload(samples ...int16) []byte {
	p := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(p[i*2:], uint16(s))
	}
	return p
}

func s16Samples(p []byte) []int16 {
	out := make([]int16, len(p)/2)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(p[i*2:]))
	}
	return out
}

func writeClip(t *testing.T, fs afero.Fs, path string, data []byte) {
	t.Helper()
	if err := afero.WriteFile(fs, path, data, 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

// loadClip writes a 16-bit stereo 44.1 kHz clip and loads it
func loadClip(t *testing.T, payload []byte, stream bool) *AudioData {
	t.Helper()
	fs := afero.NewMemMapFs()
	writeClip(t, fs, "/clip.wav", wavBytes(2, 44100, 16, payload))

	data, err := NewAudioData(fs, "/clip.wav", stream)
	if err != nil {
		t.Fatalf("NewAudioData() error = %v", err)
	}
	t.Cleanup(func() { data.Close() })
	return data
}
