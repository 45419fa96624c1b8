package tex

import (
	"fmt"
	"math"

	"github.com/EchoTools/texkit/pkg/dxt"
	"github.com/pierrec/lz4/v4"
)

// Decompress removes the LZ4 layer (if any) and expands DXT blocks to
// RGBA8888. Raw pixel formats and encoded image files pass through unchanged.
// The result is cached: later calls return the same Pixels.
//
// When no decompression step applies, Pixels.Data shares memory with m.Data.
func (m *Mipmap) Decompress() (*Pixels, error) {
	if m.pixels != nil {
		return m.pixels, nil
	}

	data, err := m.Unpack()
	if err != nil {
		return nil, err
	}

	format := m.Format
	if bf, ok := format.blockFormat(); ok {
		w, h := int(m.Width), int(m.Height)
		if need := dxt.CompressedSize(w, h, bf); len(data) < need {
			return nil, &LengthError{Field: format.String() + " block data", Want: need, Got: len(data), Err: ErrTruncated}
		}

		out, err := dxt.Decompress(w, h, data, bf)
		if err != nil {
			return nil, fmt.Errorf("expand %s: %w", format, err)
		}
		data = out
		format = MipmapFormatRGBA8888
	}

	if bpp := format.BytesPerPixel(); bpp > 0 {
		if err := checkPixelLength(format, int64(m.Width), int64(m.Height), int64(bpp), len(data)); err != nil {
			return nil, err
		}
	}

	m.pixels = &Pixels{
		Width:  int(m.Width),
		Height: int(m.Height),
		Format: format,
		Data:   data,
	}
	return m.pixels, nil
}

// Unpack returns the payload with the LZ4 layer removed. Block-compressed
// formats stay block-compressed. For uncompressed payloads the returned slice
// is m.Data itself.
func (m *Mipmap) Unpack() ([]byte, error) {
	if !m.Compressed {
		return m.Data, nil
	}
	return decompressLZ4(m.Data, int(m.DecompressedSize))
}

func decompressLZ4(src []byte, size int) ([]byte, error) {
	dst := make([]byte, size)
	n, err := lz4.UncompressBlock(src, dst)
	if err != nil {
		return nil, fmt.Errorf("%w: lz4 payload: %v", ErrLengthMismatch, err)
	}
	if n != size {
		return nil, &LengthError{Field: "lz4 payload", Want: size, Got: n, Err: ErrLengthMismatch}
	}
	return dst, nil
}

// checkPixelLength verifies that a raw pixel payload holds exactly w*h
// texels of bpp bytes. Dimensions are at most 2^31-1, so w*h fits in an
// int64; the byte count is compared per texel to avoid wrapping.
func checkPixelLength(f MipmapFormat, w, h, bpp int64, got int) error {
	texels := w * h
	if int64(got)%bpp == 0 && int64(got)/bpp == texels {
		return nil
	}
	want := math.MaxInt
	if texels <= int64(math.MaxInt)/bpp {
		want = int(texels * bpp)
	}
	return &LengthError{Field: f.String() + " pixel data", Want: want, Got: got, Err: ErrLengthMismatch}
}
