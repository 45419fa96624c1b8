// Package dxt expands DXT (S3TC / BC1-BC3) block-compressed pixel data into
// linear RGBA8888 buffers.
//
// Every format stores the image as 4x4 texel blocks, left to right and top to
// bottom. Images whose dimensions are not a multiple of four still occupy whole
// blocks; the texels that fall outside the image are decoded and discarded.
package dxt

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Format selects the block layout.
type Format int

const (
	// DXT1 stores RGB with 1-bit alpha in 8 bytes per block.
	DXT1 Format = iota + 1
	// DXT3 stores explicit 4-bit alpha followed by a DXT1 color block, 16 bytes per block.
	DXT3
	// DXT5 stores interpolated alpha (two references and a 3-bit index grid)
	// followed by a DXT1 color block, 16 bytes per block.
	DXT5
)

var (
	ErrUnknownFormat = errors.New("dxt: unknown format")
	ErrShortData     = errors.New("dxt: data too short")
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case DXT1:
		return "DXT1"
	case DXT3:
		return "DXT3"
	case DXT5:
		return "DXT5"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// BlockSize returns the number of bytes per 4x4 block, or 0 for an unknown format.
func BlockSize(f Format) int {
	switch f {
	case DXT1:
		return 8
	case DXT3, DXT5:
		return 16
	default:
		return 0
	}
}

// CompressedSize returns the number of bytes a width x height image occupies in format f.
func CompressedSize(width, height int, f Format) int {
	return ((width + 3) / 4) * ((height + 3) / 4) * BlockSize(f)
}

// Decompress expands data into a tightly packed width*height*4 RGBA buffer in
// row-major order.
func Decompress(width, height int, data []byte, f Format) ([]byte, error) {
	blockSize := BlockSize(f)
	if blockSize == 0 {
		return nil, fmt.Errorf("%w: %d", ErrUnknownFormat, int(f))
	}
	if width < 0 || height < 0 {
		return nil, fmt.Errorf("dxt: invalid dimensions %dx%d", width, height)
	}

	need := CompressedSize(width, height, f)
	if len(data) < need {
		return nil, fmt.Errorf("%w: need %d bytes for %dx%d %s, got %d",
			ErrShortData, need, width, height, f, len(data))
	}

	out := make([]byte, width*height*4)
	var block [64]byte // 16 texels * RGBA

	offset := 0
	for by := 0; by < height; by += 4 {
		for bx := 0; bx < width; bx += 4 {
			decodeBlock(&block, data[offset:offset+blockSize], f)
			offset += blockSize
			writeBlock(out, &block, bx, by, width, height)
		}
	}

	return out, nil
}

func decodeBlock(dst *[64]byte, src []byte, f Format) {
	switch f {
	case DXT1:
		decodeColor(dst, src, true)
	case DXT3:
		decodeColor(dst, src[8:], false)
		decodeExplicitAlpha(dst, src[:8])
	case DXT5:
		decodeColor(dst, src[8:], false)
		decodeInterpolatedAlpha(dst, src[:8])
	}
}

// writeBlock copies the texels of one decoded block that lie inside the image.
func writeBlock(out []byte, block *[64]byte, bx, by, width, height int) {
	for py := 0; py < 4; py++ {
		y := by + py
		if y >= height {
			return
		}
		for px := 0; px < 4; px++ {
			x := bx + px
			if x >= width {
				break
			}
			src := (py*4 + px) * 4
			dst := (y*width + x) * 4
			copy(out[dst:dst+4], block[src:src+4])
		}
	}
}

// decodeColor fills RGB and alpha from an 8-byte color block. In DXT1 mode a
// block whose first reference color is not greater than the second uses three
// colors plus transparent black.
func decodeColor(dst *[64]byte, src []byte, dxt1 bool) {
	c0 := binary.LittleEndian.Uint16(src[0:2])
	c1 := binary.LittleEndian.Uint16(src[2:4])
	indices := binary.LittleEndian.Uint32(src[4:8])

	palette := colorPalette(c0, c1, dxt1)

	for i := 0; i < 16; i++ {
		c := palette[(indices>>(2*i))&0x03]
		copy(dst[i*4:i*4+4], c[:])
	}
}

func colorPalette(c0, c1 uint16, dxt1 bool) [4][4]uint8 {
	r0, g0, b0 := rgb565(c0)
	r1, g1, b1 := rgb565(c1)

	p := [4][4]uint8{
		{r0, g0, b0, 255},
		{r1, g1, b1, 255},
	}

	if dxt1 && c0 <= c1 {
		p[2] = [4]uint8{mix(r0, r1, 1, 1, 2), mix(g0, g1, 1, 1, 2), mix(b0, b1, 1, 1, 2), 255}
		p[3] = [4]uint8{0, 0, 0, 0}
		return p
	}

	p[2] = [4]uint8{mix(r0, r1, 2, 1, 3), mix(g0, g1, 2, 1, 3), mix(b0, b1, 2, 1, 3), 255}
	p[3] = [4]uint8{mix(r0, r1, 1, 2, 3), mix(g0, g1, 1, 2, 3), mix(b0, b1, 1, 2, 3), 255}
	return p
}

// mix returns (wa*a + wb*b) / d without overflowing uint8.
func mix(a, b uint8, wa, wb, d int) uint8 {
	return uint8((wa*int(a) + wb*int(b)) / d)
}

// rgb565 expands a 16-bit RGB565 value to 8 bits per channel.
func rgb565(c uint16) (r, g, b uint8) {
	r = uint8((c >> 11) & 0x1F)
	g = uint8((c >> 5) & 0x3F)
	b = uint8(c & 0x1F)

	r = (r << 3) | (r >> 2)
	g = (g << 2) | (g >> 4)
	b = (b << 3) | (b >> 2)
	return
}

// decodeExplicitAlpha applies DXT3 alpha: 4 bits per texel, low nibble first.
func decodeExplicitAlpha(dst *[64]byte, src []byte) {
	for i := 0; i < 8; i++ {
		q := src[i]
		lo := q & 0x0F
		hi := q & 0xF0
		dst[(2*i)*4+3] = lo | lo<<4
		dst[(2*i+1)*4+3] = hi | hi>>4
	}
}

// decodeInterpolatedAlpha applies DXT5 alpha: two references followed by a
// 48-bit little-endian grid of 3-bit palette indices.
func decodeInterpolatedAlpha(dst *[64]byte, src []byte) {
	palette := alphaPalette(src[0], src[1])

	var bits uint64
	for i := 0; i < 6; i++ {
		bits |= uint64(src[2+i]) << (8 * i)
	}

	for i := 0; i < 16; i++ {
		dst[i*4+3] = palette[(bits>>(3*i))&0x07]
	}
}

func alphaPalette(a0, a1 uint8) [8]uint8 {
	var p [8]uint8
	p[0], p[1] = a0, a1

	if a0 > a1 {
		for i := 2; i < 8; i++ {
			p[i] = uint8(((8-i)*int(a0) + (i-1)*int(a1)) / 7)
		}
		return p
	}

	for i := 2; i < 6; i++ {
		p[i] = uint8(((6-i)*int(a0) + (i-1)*int(a1)) / 5)
	}
	p[6] = 0
	p[7] = 255
	return p
}
