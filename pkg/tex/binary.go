package tex

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// maxMagicLength bounds every NUL-terminated magic string.
const maxMagicLength = 16

// reader decodes little-endian primitives from a buffered stream.
type reader struct {
	br  *bufio.Reader
	buf [4]byte
}

func newReader(r io.Reader) *reader {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &reader{br: br}
}

func (r *reader) full(field string, p []byte) error {
	n, err := io.ReadFull(r.br, p)
	if err == nil {
		return nil
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return &LengthError{Field: field, Want: len(p), Got: n, Err: ErrTruncated}
	}
	return fmt.Errorf("read %s: %w", field, err)
}

func (r *reader) uint32(field string) (uint32, error) {
	if err := r.full(field, r.buf[:4]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(r.buf[:4]), nil
}

func (r *reader) int32(field string) (int32, error) {
	v, err := r.uint32(field)
	return int32(v), err
}

func (r *reader) float32(field string) (float32, error) {
	v, err := r.uint32(field)
	return math.Float32frombits(v), err
}

// bytes reads exactly n bytes. n must already be bounds-checked.
func (r *reader) bytes(field string, n int) ([]byte, error) {
	p := make([]byte, n)
	if err := r.full(field, p); err != nil {
		return nil, err
	}
	return p, nil
}

// magic reads the NUL-terminated magic of section. A magic is at most
// maxMagicLength bytes; anything longer cannot be a known magic and is
// reported as *MagicError holding the bytes read so far.
func (r *reader) magic(section string) (string, error) {
	field := section + " magic"
	var b []byte
	for {
		c, err := r.br.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return "", &LengthError{Field: field, Want: len(b) + 1, Got: len(b), Err: ErrTruncated}
			}
			return "", fmt.Errorf("read %s: %w", field, err)
		}
		if c == 0 {
			return string(b), nil
		}
		b = append(b, c)
		if len(b) > maxMagicLength {
			return "", &MagicError{Section: section, Magic: string(b)}
		}
	}
}

// more reports whether at least one byte remains in the stream.
func (r *reader) more() (bool, error) {
	_, err := r.br.Peek(1)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, io.EOF) {
		return false, nil
	}
	return false, fmt.Errorf("peek: %w", err)
}

// writer encodes little-endian primitives. The first error is sticky and
// returned by flush.
type writer struct {
	bw  *bufio.Writer
	buf [4]byte
	err error
}

func newWriter(w io.Writer) *writer {
	return &writer{bw: bufio.NewWriter(w)}
}

func (w *writer) write(p []byte) {
	if w.err != nil {
		return
	}
	_, w.err = w.bw.Write(p)
}

func (w *writer) uint32(v uint32) {
	binary.LittleEndian.PutUint32(w.buf[:4], v)
	w.write(w.buf[:4])
}

func (w *writer) int32(v int32) { w.uint32(uint32(v)) }

func (w *writer) float32(v float32) { w.uint32(math.Float32bits(v)) }

func (w *writer) bool32(v bool) {
	if v {
		w.uint32(1)
		return
	}
	w.uint32(0)
}

func (w *writer) bytes(p []byte) { w.write(p) }

func (w *writer) nstring(s string) {
	w.write([]byte(s))
	w.write([]byte{0})
}

func (w *writer) fail(err error) {
	if w.err == nil {
		w.err = err
	}
}

func (w *writer) flush() error {
	if w.err != nil {
		return w.err
	}
	return w.bw.Flush()
}
