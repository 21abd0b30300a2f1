package audio

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/spf13/afero"

	"audiotest.click/internal/wav"
)

// StreamBufferSize is the read window used when streaming from file
const StreamBufferSize = 32 * 1024

var (
	ErrLoadFailed = errors.New("could not be loaded as a WAV audio file")
	ErrDataClosed = errors.New("audio data is closed")
)

// AudioData is the PCM payload of one WAV file, either held in memory or
// streamed from the open file through a fixed window.
//
// It has a cursor of its own (Read, LoadAudioData, MoveAudioPos) and also
// implements io.ReaderAt so several AudioObjects can share it.
type AudioData struct {
	mu     sync.Mutex
	path   string
	header *wav.Header
	length int64

	payload []byte

	file   afero.File
	window []byte
	winOff int64
	winLen int

	pos    int64
	closed bool
}

// NewAudioData opens path on fs and parses its header. With stream false the
// whole payload is read into memory and the file closed; otherwise the file
// stays open and is read on demand.
func NewAudioData(fs afero.Fs, path string, stream bool) (*AudioData, error) {
	slog.Debug("loading WAV audio data", "path", path, "stream", stream)

	f, err := fs.Open(path)
	if err != nil {
		slog.Error("failed to open audio file", "path", path, "error", err)
		return nil, loadError(path, err)
	}

	hdr, err := wav.ParseHeader(f)
	if err != nil {
		f.Close()
		slog.Error("failed to parse WAV header", "path", path, "kind", wav.KindOf(err).String(), "error", err)
		return nil, loadError(path, err)
	}

	d := &AudioData{
		path:   path,
		header: hdr,
		length: payloadLength(f, hdr),
	}

	if !stream {
		d.payload = make([]byte, d.length)
		_, err := io.ReadFull(f, d.payload)
		f.Close()
		if err != nil {
			slog.Error("failed to read WAV payload", "path", path, "error", err)
			return nil, loadError(path, fmt.Errorf("read payload: %w", err))
		}
	} else {
		d.file = f
		d.window = make([]byte, StreamBufferSize)
	}

	slog.Info("WAV audio data loaded",
		"path", path,
		"spec", hdr.Spec.String(),
		"length", d.length,
		"duration", d.Duration().String(),
		"stream", stream)

	return d, nil
}

func loadError(path string, err error) error {
	return fmt.Errorf("%s %w: %w", path, ErrLoadFailed, err)
}

// payloadLength caps the declared payload at what the file actually holds.
// Files whose writer never patched the data length would otherwise claim
// up to 4 GiB.
func payloadLength(f afero.File, hdr *wav.Header) int64 {
	length := int64(hdr.DataLength)

	info, err := f.Stat()
	if err != nil {
		slog.Debug("could not stat audio file, trusting declared length", "error", err)
		return length
	}

	available := info.Size() - hdr.DataOffset
	if available < 0 {
		available = 0
	}
	if available < length {
		slog.Warn("WAV payload shorter than declared",
			"declared", length,
			"available", available)
		length = int64(wav.AlignToFrame(uint32(available), hdr.Spec.FrameSize()))
	}
	return length
}

// ReadAt copies payload bytes starting at off into p
func (d *AudioData) ReadAt(p []byte, off int64) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.readAt(p, off)
}

func (d *AudioData) readAt(p []byte, off int64) (int, error) {
	if d.closed {
		return 0, ErrDataClosed
	}
	if off < 0 {
		return 0, fmt.Errorf("read %s: negative offset %d", d.path, off)
	}
	if off >= d.length {
		return 0, io.EOF
	}

	var atEnd bool
	if remaining := d.length - off; int64(len(p)) > remaining {
		p = p[:remaining]
		atEnd = true
	}

	var n int
	if d.payload != nil {
		n = copy(p, d.payload[off:])
	} else {
		for n < len(p) {
			cur := off + int64(n)
			if cur < d.winOff || cur >= d.winOff+int64(d.winLen) {
				if err := d.fillWindow(cur); err != nil {
					return n, err
				}
			}
			n += copy(p[n:], d.window[cur-d.winOff:d.winLen])
		}
	}

	if atEnd {
		return n, io.EOF
	}
	return n, nil
}

// fillWindow reads up to StreamBufferSize payload bytes starting at off
func (d *AudioData) fillWindow(off int64) error {
	want := min(int64(len(d.window)), d.length-off)

	n, err := d.file.ReadAt(d.window[:want], d.header.DataOffset+off)
	d.winOff, d.winLen = off, n
	if n > 0 {
		return nil
	}
	if err == nil || err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	slog.Error("failed to stream WAV payload", "path", d.path, "offset", off, "error", err)
	return fmt.Errorf("read %s: %w", d.path, err)
}

// Read reads from the cursor and advances it
func (d *AudioData) Read(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	n, err := d.readAt(p, d.pos)
	d.pos += int64(n)
	return n, err
}

// LoadAudioData fills buffer from the cursor. It fails with
// io.ErrUnexpectedEOF when the payload ends first.
func (d *AudioData) LoadAudioData(buffer []byte) (int, error) {
	return io.ReadFull(d, buffer)
}

// MoveAudioPos moves the cursor by delta bytes, clamped to the payload, and
// returns the new position
func (d *AudioData) MoveAudioPos(delta int64) int64 {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pos = min(max(d.pos+delta, 0), d.length)
	return d.pos
}

// Pos returns the cursor position within the payload
func (d *AudioData) Pos() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pos
}

// Rewind moves the cursor back to the first payload byte
func (d *AudioData) Rewind() {
	d.mu.Lock()
	d.pos = 0
	d.mu.Unlock()
}

func (d *AudioData) Spec() wav.Spec {
	return d.header.Spec
}

func (d *AudioData) Header() *wav.Header {
	return d.header
}

// Length returns the playable payload size in bytes
func (d *AudioData) Length() int64 {
	return d.length
}

func (d *AudioData) Duration() time.Duration {
	return d.header.Spec.DurationOf(d.length)
}

// Streaming reports whether the payload is read from file on demand
func (d *AudioData) Streaming() bool {
	return d.payload == nil
}

func (d *AudioData) Path() string {
	return d.path
}

// Close releases the payload and, when streaming, the file
func (d *AudioData) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil
	}
	d.closed = true

	slog.Debug("closing WAV audio data", "path", d.path)

	if d.file != nil {
		err := d.file.Close()
		d.file = nil
		if err != nil {
			return fmt.Errorf("close %s: %w", d.path, err)
		}
	}
	return nil
}
