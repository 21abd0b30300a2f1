package audio

import (
	"errors"
	"io"
	"log/slog"
	"sync"

	"audiotest.click/internal/wav"
)

// SampleInfo holds per-playback settings
type SampleInfo struct {
	Volume float64 // 0.0 to 1.0
}

// AudioObject is one playback of an AudioData with its own position and
// settings. Several objects may share the same data.
type AudioObject struct {
	mu   sync.Mutex
	data *AudioData
	info SampleInfo
	pos  int64
}

// NewAudioObject creates an object positioned at the start of data. A nil
// info means full volume; the settings are copied.
func NewAudioObject(data *AudioData, info *SampleInfo) *AudioObject {
	obj := &AudioObject{data: data, info: SampleInfo{Volume: 1.0}}
	if info != nil {
		obj.info.Volume = clampVolume(info.Volume)
	}
	return obj
}

func clampVolume(v float64) float64 {
	return min(max(v, 0), 1)
}

// GenerateSamples writes the next block of this object's audio into out,
// scaled by its volume, and advances its position. It returns the number of
// bytes written and whether the object has reached the end of its data.
func (o *AudioObject) GenerateSamples(out []byte, spec wav.Spec) (int, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	length := o.data.Length()
	if o.pos >= length {
		return 0, true
	}

	want := int64(len(out))
	if frame := spec.FrameSize(); frame > 0 {
		want -= want % int64(frame)
	}
	want = min(want, length-o.pos)

	n, err := o.data.ReadAt(out[:want], o.pos)
	o.pos += int64(n)
	scaleSamples(out[:n], spec.Format, o.info.Volume)

	if err != nil && !errors.Is(err, io.EOF) {
		slog.Error("audio object read failed, ending playback",
			"path", o.data.Path(),
			"pos", o.pos,
			"error", err)
		return n, true
	}
	return n, o.pos >= length
}

// SetPos moves to pos, clamped to the data and aligned down to a frame
func (o *AudioObject) SetPos(pos int64) {
	o.mu.Lock()
	defer o.mu.Unlock()

	pos = min(max(pos, 0), o.data.Length())
	if frame := int64(o.data.Spec().FrameSize()); frame > 0 {
		pos -= pos % frame
	}
	o.pos = pos
}

func (o *AudioObject) Pos() int64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.pos
}

// Reset moves back to the start of the data
func (o *AudioObject) Reset() {
	o.SetPos(0)
}

// Finished reports whether the whole payload has been generated
func (o *AudioObject) Finished() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.pos >= o.data.Length()
}

func (o *AudioObject) Volume() float64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.info.Volume
}

// SetVolume changes the volume, clamped to [0, 1]
func (o *AudioObject) SetVolume(v float64) {
	o.mu.Lock()
	o.info.Volume = clampVolume(v)
	o.mu.Unlock()
}

func (o *AudioObject) Data() *AudioData {
	return o.data
}
