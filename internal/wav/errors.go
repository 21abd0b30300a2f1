package wav

import (
	"errors"
	"fmt"
)

// Sentinel errors, one per failure kind. A *ParseError matches its kind's
// sentinel under errors.Is.
var (
	ErrNotAWavFile             = errors.New("not a WAV file")
	ErrUnsupportedContainer    = errors.New("unsupported WAV container structure")
	ErrUnsupportedEncoding     = errors.New("unsupported WAV encoding")
	ErrUnsupportedSampleFormat = errors.New("unsupported WAV sample format")
	ErrTruncatedFile           = errors.New("truncated WAV file")
	ErrMissingDataChunk        = errors.New("WAV data chunk not found")
	ErrAllocationFailure       = errors.New("WAV chunk buffer allocation refused")
	ErrIO                      = errors.New("WAV source I/O error")
)

// Kind classifies a parse failure
type Kind int

const (
	KindNotAWavFile Kind = iota + 1
	KindUnsupportedContainer
	KindUnsupportedEncoding
	KindUnsupportedSampleFormat
	KindTruncatedFile
	KindMissingDataChunk
	KindAllocationFailure
	KindIO
)

func (k Kind) sentinel() error {
	switch k {
	case KindNotAWavFile:
		return ErrNotAWavFile
	case KindUnsupportedContainer:
		return ErrUnsupportedContainer
	case KindUnsupportedEncoding:
		return ErrUnsupportedEncoding
	case KindUnsupportedSampleFormat:
		return ErrUnsupportedSampleFormat
	case KindTruncatedFile:
		return ErrTruncatedFile
	case KindMissingDataChunk:
		return ErrMissingDataChunk
	case KindAllocationFailure:
		return ErrAllocationFailure
	case KindIO:
		return ErrIO
	default:
		return nil
	}
}

// String returns the kind's sentinel message
func (k Kind) String() string {
	if s := k.sentinel(); s != nil {
		return s.Error()
	}
	return fmt.Sprintf("wav.Kind(%d)", int(k))
}

// ParseError is returned by ParseHeader for every failure
type ParseError struct {
	Kind Kind   // failure class
	Op   string // parser step that failed, e.g. "read format chunk"
	Err  error  // underlying cause, may be nil
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("wav: %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("wav: %s: %s", e.Op, e.Kind)
}

// Unwrap exposes both the kind's sentinel and the underlying cause
func (e *ParseError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if s := e.Kind.sentinel(); s != nil {
		errs = append(errs, s)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// KindOf returns the Kind carried by err, or 0 if err is not a *ParseError
func KindOf(err error) Kind {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return 0
}

func newParseError(kind Kind, op string, err error) *ParseError {
	return &ParseError{Kind: kind, Op: op, Err: err}
}
