package audio

import (
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// ErrUnsupportedFormat is returned for files recognized as some other audio format
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// sniffLength is how many leading bytes are handed to mimetype
const sniffLength = 512

const wavMIME = "audio/wav"

var wavExtensions = []string{".wav", ".wave"}

// Detection is the outcome of sniffing a file before it is parsed
type Detection struct {
	MIME        string // as reported by content sniffing
	WAV         bool   // worth handing to the WAV parser
	ByExtension bool   // WAV was decided by the file name, not the content
}

// DetectFormat classifies a file from its leading bytes, falling back to the
// extension when the content is not recognized as audio. Files missing their
// "RIFF" tag are not recognized by content and rely on the fallback.
func DetectFormat(filename string, head []byte) Detection {
	mtype := mimetype.Detect(head)
	det := Detection{MIME: mtype.String()}

	slog.Debug("magic byte detection result",
		"filename", filename,
		"detected_mime", det.MIME,
		"bytes_analyzed", len(head))

	if mtype.Is(wavMIME) {
		det.WAV = true
		return det
	}
	if strings.HasPrefix(det.MIME, "audio/") {
		return det
	}

	ext := strings.ToLower(filepath.Ext(filename))
	for _, e := range wavExtensions {
		if ext == e {
			slog.Debug("magic detection failed, WAV decided by extension", "filename", filename)
			det.WAV = true
			det.ByExtension = true
			return det
		}
	}
	return det
}

// IsOtherAudio reports whether the content was identified as a non-WAV
// audio format, such as MP3 or AIFF
func (d Detection) IsOtherAudio() bool {
	return !d.WAV && strings.HasPrefix(d.MIME, "audio/")
}

// readHead returns up to sniffLength bytes from r
func readHead(r io.Reader) ([]byte, error) {
	head := make([]byte, sniffLength)
	n, err := io.ReadFull(r, head)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		err = nil
	}
	return head[:n], err
}
