package wav

import "encoding/binary"

// FourCC is a RIFF chunk tag: four ASCII bytes read as a little-endian uint32
type FourCC uint32

// Chunk tags recognized by the parser
const (
	ChunkRIFF FourCC = 0x46464952 // "RIFF"
	ChunkWAVE FourCC = 0x45564157 // "WAVE"
	ChunkFact FourCC = 0x74636166 // "fact"
	ChunkList FourCC = 0x5453494c // "LIST"
	ChunkFmt  FourCC = 0x20746d66 // "fmt "
	ChunkData FourCC = 0x61746164 // "data"
)

// NewFourCC builds a tag from its four-character form. Shorter strings are
// padded with spaces, longer ones truncated.
func NewFourCC(s string) FourCC {
	var b [4]byte
	for i := range b {
		if i < len(s) {
			b[i] = s[i]
		} else {
			b[i] = ' '
		}
	}
	return FourCC(binary.LittleEndian.Uint32(b[:]))
}

// String returns the tag as four characters; non-printable bytes are shown as '?'
func (c FourCC) String() string {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(c))
	for i, ch := range b {
		if ch < 0x20 || ch > 0x7e {
			b[i] = '?'
		}
	}
	return string(b[:])
}

// skippableBeforeFormat reports whether a chunk may precede "fmt " and be skipped
func (c FourCC) skippableBeforeFormat() bool {
	return c == ChunkFact || c == ChunkList
}
