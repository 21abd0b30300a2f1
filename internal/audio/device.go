package audio

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/spf13/afero"
)

var (
	ErrDeviceClosed = errors.New("audio device is closed")
	ErrUnknownAudio = errors.New("audio data was not created by this device")
)

// Device loads AudioData from a filesystem and owns what it loads until it
// is released
type Device struct {
	fs afero.Fs

	mu     sync.Mutex
	loaded map[*AudioData]struct{}
	closed bool
}

func NewDevice(fs afero.Fs) *Device {
	return &Device{
		fs:     fs,
		loaded: make(map[*AudioData]struct{}),
	}
}

// CreateAudioFromFile sniffs path, then loads it as WAV audio. Files whose
// content is identified as another audio format are refused without parsing.
func (d *Device) CreateAudioFromFile(path string, stream bool) (*AudioData, error) {
	d.mu.Lock()
	closed := d.closed
	d.mu.Unlock()
	if closed {
		return nil, ErrDeviceClosed
	}

	if err := d.checkFormat(path); err != nil {
		return nil, err
	}

	data, err := NewAudioData(d.fs, path, stream)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		data.Close()
		return nil, ErrDeviceClosed
	}
	d.loaded[data] = struct{}{}

	return data, nil
}

func (d *Device) checkFormat(path string) error {
	f, err := d.fs.Open(path)
	if err != nil {
		slog.Error("failed to open audio file", "path", path, "error", err)
		return loadError(path, err)
	}
	defer f.Close()

	head, err := readHead(f)
	if err != nil {
		slog.Error("failed to read header for magic detection", "path", path, "error", err)
		return loadError(path, err)
	}

	det := DetectFormat(path, head)
	if det.IsOtherAudio() {
		slog.Error("file is not WAV audio", "path", path, "mime", det.MIME)
		return loadError(path, fmt.Errorf("%w: %s", ErrUnsupportedFormat, det.MIME))
	}
	return nil
}

// ReleaseAudio closes data and forgets it
func (d *Device) ReleaseAudio(data *AudioData) error {
	d.mu.Lock()
	_, ok := d.loaded[data]
	delete(d.loaded, data)
	d.mu.Unlock()

	if !ok {
		return ErrUnknownAudio
	}
	slog.Debug("releasing audio data", "path", data.Path())
	return data.Close()
}

// Loaded returns how many AudioData are held
func (d *Device) Loaded() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.loaded)
}

// Close releases every AudioData still held
func (d *Device) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	loaded := d.loaded
	d.loaded = make(map[*AudioData]struct{})
	d.mu.Unlock()

	var errs []error
	for data := range loaded {
		if err := data.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	slog.Debug("audio device closed", "released", len(loaded))
	return errors.Join(errs...)
}
