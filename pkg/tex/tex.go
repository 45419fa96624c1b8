// Package tex reads and writes Wallpaper Engine .tex texture containers.
//
// A .tex blob is laid out as:
//
//	"TEXV0005" "TEXI0001" header
//	image container ("TEXB0001".."TEXB0003")
//	    images, each a chain of mipmaps (optionally LZ4 compressed)
//	frame-info container ("TEXS0002"/"TEXS0003"), animated textures only
//
// All integers are little-endian. Decoding validates every magic and every
// declared count before allocating; failures are reported as *MagicError,
// *SizeError, *LengthError or *FormatError. A texture either decodes completely
// or Decode returns a nil *Texture.
//
// The package holds no shared state; concurrent decodes of different streams
// are safe.
package tex

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

// Safety ceilings applied by default.
const (
	MaximumImageCount      = 1000
	MaximumMipmapCount     = 32
	MaximumMipmapByteCount = 200 * 1024 * 1024
	MaximumFrameCount      = 65536
)

// Limits bounds the counts and lengths the decoder accepts.
type Limits struct {
	MaxImages      int
	MaxMipmaps     int
	MaxMipmapBytes int
	MaxFrames      int
}

// DefaultLimits returns the package ceilings.
func DefaultLimits() Limits {
	return Limits{
		MaxImages:      MaximumImageCount,
		MaxMipmaps:     MaximumMipmapCount,
		MaxMipmapBytes: MaximumMipmapByteCount,
		MaxFrames:      MaximumFrameCount,
	}
}

// Texture is a fully decoded .tex blob.
type Texture struct {
	Header         Header
	ImageContainer *ImageContainer
	FrameInfo      *FrameInfoContainer // nil for static textures
}

type decoder struct {
	r          *reader
	limits     Limits
	decompress bool
}

// Option configures decoding.
type Option func(*decoder)

// WithDecompression controls whether mipmaps are decompressed while reading.
// It is enabled by default; disable it to inspect or re-encode payloads
// without paying for pixel expansion.
func WithDecompression(enabled bool) Option {
	return func(d *decoder) {
		d.decompress = enabled
	}
}

// WithLimits replaces the default safety ceilings.
func WithLimits(l Limits) Option {
	return func(d *decoder) {
		d.limits = l
	}
}

// Decode reads one texture from r. The stream is expected to contain a single
// isolated .tex blob: bytes left after the image container are parsed as a
// frame-info container. Decode does not close r.
func Decode(r io.Reader, opts ...Option) (*Texture, error) {
	d := &decoder{
		r:          newReader(r),
		limits:     DefaultLimits(),
		decompress: true,
	}
	for _, opt := range opts {
		opt(d)
	}

	t, err := d.decode()
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (d *decoder) decode() (*Texture, error) {
	header, err := readHeader(d.r)
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	container, err := d.readImageContainer(header.Format)
	if err != nil {
		return nil, fmt.Errorf("read image container: %w", err)
	}

	t := &Texture{
		Header:         header,
		ImageContainer: container,
	}

	hasFrames := header.Flags.Has(FlagIsGif)
	if !hasFrames {
		if hasFrames, err = d.r.more(); err != nil {
			return nil, fmt.Errorf("read frame info: %w", err)
		}
	}

	if hasFrames {
		if t.FrameInfo, err = d.readFrameInfoContainer(); err != nil {
			return nil, fmt.Errorf("read frame info: %w", err)
		}
	}

	return t, nil
}

// DecodeBytes decodes a texture held in memory.
func DecodeBytes(data []byte, opts ...Option) (*Texture, error) {
	return Decode(bytes.NewReader(data), opts...)
}

// ReadFile reads and decodes a texture file.
func ReadFile(path string, opts ...Option) (*Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open texture: %w", err)
	}
	defer f.Close()

	t, err := Decode(f, opts...)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return t, nil
}

// Encode writes t to w. Mipmaps are written from their stored payloads, so
// Encode(Decode(b)) reproduces b byte for byte.
func Encode(w io.Writer, t *Texture) error {
	if t.ImageContainer == nil {
		return fmt.Errorf("tex: texture has no image container")
	}

	bw := newWriter(w)
	writeHeader(bw, &t.Header)
	writeImageContainer(bw, t.ImageContainer)
	if t.FrameInfo != nil {
		writeFrameInfoContainer(bw, t.FrameInfo)
	}

	if err := bw.flush(); err != nil {
		return fmt.Errorf("encode texture: %w", err)
	}
	return nil
}

// MarshalBinary encodes the texture.
func (t *Texture) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, t); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary decodes data into t with default options.
func (t *Texture) UnmarshalBinary(data []byte) error {
	decoded, err := DecodeBytes(data)
	if err != nil {
		return err
	}
	*t = *decoded
	return nil
}

// Images returns the images of the container.
func (t *Texture) Images() []*Image {
	if t.ImageContainer == nil {
		return nil
	}
	return t.ImageContainer.Images
}

// IsAnimated reports whether the texture carries frame information.
func (t *Texture) IsAnimated() bool {
	return t.FrameInfo != nil && len(t.FrameInfo.Frames) > 0
}

// Decompress decompresses every mipmap that is not decompressed yet.
func (t *Texture) Decompress() error {
	for i, img := range t.Images() {
		for j, m := range img.Mipmaps {
			if _, err := m.Decompress(); err != nil {
				return fmt.Errorf("image %d mipmap %d: %w", i, j, err)
			}
		}
	}
	return nil
}

// InvalidFrames returns the indices of frames whose ImageID does not refer to
// an image of the container. The decoder keeps such frames as data.
func (t *Texture) InvalidFrames() []int {
	if t.FrameInfo == nil {
		return nil
	}
	n := len(t.Images())
	var bad []int
	for i, f := range t.FrameInfo.Frames {
		if f.ImageID < 0 || int(f.ImageID) >= n {
			bad = append(bad, i)
		}
	}
	return bad
}

func wrapIndex(kind string, i int, err error) error {
	return fmt.Errorf("%s %d: %w", kind, i, err)
}
