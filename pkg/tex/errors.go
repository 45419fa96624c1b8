package tex

import (
	"errors"
	"fmt"
)

// Sentinel errors. Every error returned by the decoder for malformed input
// wraps exactly one of these.
var (
	ErrUnknownMagic   = errors.New("tex: unknown magic")
	ErrUnsafeSize     = errors.New("tex: unsafe size")
	ErrTruncated      = errors.New("tex: truncated stream")
	ErrLengthMismatch = errors.New("tex: length mismatch")
	ErrInvalidFormat  = errors.New("tex: invalid format")
)

// MagicError reports an unrecognized magic string in one of the sections.
type MagicError struct {
	Section string
	Magic   string
}

func (e *MagicError) Error() string {
	return fmt.Sprintf("tex: unknown %s magic %q", e.Section, e.Magic)
}

func (e *MagicError) Unwrap() error { return ErrUnknownMagic }

// SizeError reports a declared count or length outside its safety ceiling.
// Callers should treat the input as corrupt or hostile.
type SizeError struct {
	Field string
	Value int64
	Limit int64
}

func (e *SizeError) Error() string {
	if e.Value < 0 {
		return fmt.Sprintf("tex: unsafe %s: negative value %d", e.Field, e.Value)
	}
	return fmt.Sprintf("tex: unsafe %s: %d exceeds limit %d", e.Field, e.Value, e.Limit)
}

func (e *SizeError) Unwrap() error { return ErrUnsafeSize }

// LengthError reports fewer bytes than a field requires (ErrTruncated) or a
// decompressed payload of the wrong size (ErrLengthMismatch).
type LengthError struct {
	Field string
	Want  int
	Got   int
	Err   error
}

func (e *LengthError) Error() string {
	return fmt.Sprintf("%v: %s: want %d bytes, got %d", e.Err, e.Field, e.Want, e.Got)
}

func (e *LengthError) Unwrap() error { return e.Err }

// FormatError reports an enum value outside the known set.
type FormatError struct {
	Field string
	Value int64
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("tex: invalid %s %d", e.Field, e.Value)
}

func (e *FormatError) Unwrap() error { return ErrInvalidFormat }
