package wav

import (
	"encoding/binary"
	"fmt"
	"io"
)

// ChunkHeaderSize is the on-disk size of a chunk header
const ChunkHeaderSize = 8

// ChunkHeader is the tag and declared payload length preceding every chunk
type ChunkHeader struct {
	ID     FourCC
	Length uint32
}

func (h ChunkHeader) String() string {
	return fmt.Sprintf("%q (%d bytes)", h.ID.String(), h.Length)
}

// readLE32 reads one little-endian uint32. It returns io.EOF only when no
// byte was available, io.ErrUnexpectedEOF on a partial word.
func readLE32(r io.Reader) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

// ReadChunkHeader reads the next 8-byte chunk header from r
func ReadChunkHeader(r io.Reader) (ChunkHeader, error) {
	var b [ChunkHeaderSize]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return ChunkHeader{}, err
	}
	return ChunkHeader{
		ID:     FourCC(binary.LittleEndian.Uint32(b[0:4])),
		Length: binary.LittleEndian.Uint32(b[4:8]),
	}, nil
}

// SkipChunk moves s forward by exactly length bytes. A zero length does not
// touch the source.
func SkipChunk(s io.Seeker, length uint32) error {
	if length == 0 {
		return nil
	}
	if _, err := s.Seek(int64(length), io.SeekCurrent); err != nil {
		return fmt.Errorf("skip %d bytes: %w", length, err)
	}
	return nil
}

// isEOF reports whether err means the source ran out of bytes
func isEOF(err error) bool {
	return err == io.EOF || err == io.ErrUnexpectedEOF
}
