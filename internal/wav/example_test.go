package wav_test

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"audiotest.click/internal/wav"
)

func ExampleParseHeader() {
	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(40))
	buf.WriteString("WAVEfmt ")
	binary.Write(&buf, binary.LittleEndian, []uint32{16})
	binary.Write(&buf, binary.LittleEndian, []uint16{wav.EncodingPCM, 2})
	binary.Write(&buf, binary.LittleEndian, []uint32{22050, 88200})
	binary.Write(&buf, binary.LittleEndian, []uint16{4, 16})
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(6))
	buf.Write([]byte{1, 2, 3, 4, 5, 6})

	hdr, err := wav.ParseHeader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(hdr.Spec)
	fmt.Println(hdr.DataLength, hdr.DataOffset)
	// Output:
	// 22050 Hz s16le 2ch
	// 4 44
}

func ExampleKindOf() {
	_, err := wav.ParseHeader(bytes.NewReader([]byte("ID3\x04 not a wave")))

	fmt.Println(wav.KindOf(err) == wav.KindNotAWavFile)
	fmt.Println(errors.Is(err, wav.ErrNotAWavFile))
	// Output:
	// true
	// true
}
