package audio

// pullReader adapts a FillFunc to io.Reader for players that read at their
// own pace and in arbitrary sizes. It never returns an error or io.EOF: the
// stream is silence once nothing is playing.
type pullReader struct {
	fill    FillFunc
	block   []byte
	pending []byte
}

func (r *pullReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if len(r.pending) == 0 {
		r.fill(r.block)
		r.pending = r.block
	}
	n := copy(p, r.pending)
	r.pending = r.pending[n:]
	return n, nil
}
