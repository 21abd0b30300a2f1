package audio

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"audiotest.click/internal/wav"
)

// NullBackend pulls audio in real time and discards it. It keeps the mix
// advancing when no output device is wanted (--silent) or available.
type NullBackend struct {
	mu      sync.Mutex
	spec    wav.Spec
	fill    FillFunc
	buf     []byte
	period  time.Duration
	stop    chan struct{}
	done    chan struct{}
	running bool
	closed  bool

	consumed atomic.Int64
}

func NewNullBackend() *NullBackend {
	slog.Debug("creating new NullBackend")
	return &NullBackend{}
}

func (b *NullBackend) Name() string {
	return BackendNull
}

func (b *NullBackend) Open(spec wav.Spec, fill FillFunc) error {
	if err := validateSpec(spec); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrBackendClosed
	}

	b.spec = spec
	b.fill = fill
	b.buf = make([]byte, blockBytes(spec))
	frames := len(b.buf) / spec.FrameSize()
	b.period = max(time.Duration(frames)*time.Second/time.Duration(spec.SampleRate), time.Millisecond)

	slog.Debug("NullBackend opened", "spec", spec.String(), "period", b.period.String())
	return nil
}

// Start pulls one block per period on a background goroutine
func (b *NullBackend) Start() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrBackendClosed
	}
	if b.fill == nil {
		return ErrBackendNotOpen
	}
	if b.running {
		return nil
	}

	b.stop = make(chan struct{})
	b.done = make(chan struct{})
	b.running = true
	go b.loop(b.stop, b.done, b.period)

	slog.Debug("NullBackend started")
	return nil
}

func (b *NullBackend) loop(stop <-chan struct{}, done chan<- struct{}, period time.Duration) {
	defer close(done)

	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			b.pull()
		}
	}
}

// pull requests one block from the fill callback
func (b *NullBackend) pull() {
	b.fill(b.buf)
	b.consumed.Add(int64(len(b.buf)))
}

// Consumed returns how many bytes have been pulled and discarded
func (b *NullBackend) Consumed() int64 {
	return b.consumed.Load()
}

func (b *NullBackend) Stop() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrBackendClosed
	}
	if !b.running {
		b.mu.Unlock()
		return nil
	}
	b.running = false
	close(b.stop)
	done := b.done
	b.mu.Unlock()

	<-done
	slog.Debug("NullBackend stopped")
	return nil
}

func (b *NullBackend) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		slog.Debug("NullBackend already closed")
		return nil
	}
	running := b.running
	b.mu.Unlock()

	if running {
		b.Stop()
	}

	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()

	slog.Debug("NullBackend closed")
	return nil
}
