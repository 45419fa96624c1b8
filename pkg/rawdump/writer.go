package rawdump

import (
	"fmt"
	"io"

	"github.com/DataDog/zstd"
	"github.com/EchoTools/texkit/pkg/tex"
)

// Writer compresses pixel data into a dump.
type Writer struct {
	dst     io.WriteSeeker
	zWriter *zstd.Writer
	header  *Header
	level   int
	written uint64
}

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// WithCompressionLevel sets the compression level for the writer.
func WithCompressionLevel(level int) WriterOption {
	return func(w *Writer) {
		w.level = level
	}
}

// NewWriter writes a placeholder header for p to dst and returns a writer for
// its pixel data. Close rewrites the header with the compressed size.
func NewWriter(dst io.WriteSeeker, p *tex.Pixels, opts ...WriterOption) (*Writer, error) {
	w := &Writer{
		dst:    dst,
		level:  DefaultCompressionLevel,
		header: NewHeader(p),
	}

	for _, opt := range opts {
		opt(w)
	}

	if p.Width < 0 || p.Height < 0 {
		return nil, fmt.Errorf("invalid dimensions %dx%d", p.Width, p.Height)
	}
	if err := w.header.validateContent(); err != nil {
		return nil, fmt.Errorf("invalid pixels: %w", err)
	}

	headerBytes, err := w.header.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("marshal header: %w", err)
	}
	if _, err := dst.Write(headerBytes); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	w.zWriter = zstd.NewWriterLevel(dst, w.level)
	return w, nil
}

// Write writes compressed data.
func (w *Writer) Write(p []byte) (n int, err error) {
	n, err = w.zWriter.Write(p)
	w.written += uint64(n)
	return n, err
}

// Close finalizes the dump by updating the header with the compressed size.
func (w *Writer) Close() error {
	if err := w.zWriter.Close(); err != nil {
		return fmt.Errorf("close compressor: %w", err)
	}
	if w.written != w.header.Length {
		return fmt.Errorf("wrote %d bytes, header declares %d", w.written, w.header.Length)
	}

	pos, err := w.dst.Seek(0, io.SeekCurrent)
	if err != nil {
		return fmt.Errorf("get position: %w", err)
	}

	w.header.CompressedLength = uint64(pos) - HeaderSize

	if _, err := w.dst.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("seek to start: %w", err)
	}

	headerBytes, err := w.header.MarshalBinary()
	if err != nil {
		return fmt.Errorf("marshal header: %w", err)
	}

	if _, err := w.dst.Write(headerBytes); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	if _, err := w.dst.Seek(pos, io.SeekStart); err != nil {
		return fmt.Errorf("seek to end: %w", err)
	}

	return nil
}

// Encode compresses p and writes it as a dump to dst. dst must be positioned
// at its start.
func Encode(dst io.WriteSeeker, p *tex.Pixels, opts ...WriterOption) error {
	w, err := NewWriter(dst, p, opts...)
	if err != nil {
		return err
	}

	if _, err := w.Write(p.Data); err != nil {
		return fmt.Errorf("write data: %w", err)
	}

	return w.Close()
}
