// Package rawdump stores decompressed mipmap pixels as zstd-compressed dumps.
//
// A dump is a fixed header followed by a single Zstandard stream:
//
//	"TEXR" | headerLength u32 | format u32 | width u32 | height u32 |
//	length u64 | compressedLength u64 | zstd(pixels)
package rawdump

import (
	"encoding/binary"
	"fmt"

	"github.com/EchoTools/texkit/pkg/tex"
)

// Magic bytes identifying a raw pixel dump.
var Magic = [4]byte{0x54, 0x45, 0x58, 0x52} // "TEXR"

// HeaderSize is the fixed binary size of a dump header.
const HeaderSize = 36 // 4 + 4 + 4 + 4 + 4 + 8 + 8 bytes

// headerLength counts the header bytes after magic and length fields.
const headerLength = HeaderSize - 8

// Header describes the pixels stored in a dump.
type Header struct {
	Magic            [4]byte
	HeaderLength     uint32
	Format           tex.MipmapFormat
	Width            uint32
	Height           uint32
	Length           uint64 // Uncompressed size
	CompressedLength uint64 // Compressed size
}

// NewHeader creates a header for the given pixels. The compressed length is
// filled in by Writer.Close.
func NewHeader(p *tex.Pixels) *Header {
	return &Header{
		Magic:        Magic,
		HeaderLength: headerLength,
		Format:       p.Format,
		Width:        uint32(p.Width),
		Height:       uint32(p.Height),
		Length:       uint64(len(p.Data)),
	}
}

// Validate checks the header for validity.
func (h *Header) Validate() error {
	if h.Magic != Magic {
		return fmt.Errorf("invalid magic: expected %x, got %x", Magic, h.Magic)
	}
	if h.HeaderLength != headerLength {
		return fmt.Errorf("invalid header length: expected %d, got %d", headerLength, h.HeaderLength)
	}
	if h.Length > 0 && h.CompressedLength == 0 {
		return fmt.Errorf("compressed size is zero")
	}
	return h.validateContent()
}

// validateContent checks the uncompressed length against the format and
// dimensions. Raw pixel dumps of a 0-sized mipmap are empty; embedded image
// files never are.
func (h *Header) validateContent() error {
	if h.Length > tex.MaximumMipmapByteCount {
		return fmt.Errorf("uncompressed size %d exceeds %d", h.Length, tex.MaximumMipmapByteCount)
	}

	if h.Format.IsImage() {
		if h.Length == 0 {
			return fmt.Errorf("uncompressed size is zero")
		}
		return nil
	}
	bpp := h.Format.BytesPerPixel()
	if bpp == 0 {
		return fmt.Errorf("unsupported pixel format %s", h.Format)
	}
	if want := uint64(h.Width) * uint64(h.Height) * uint64(bpp); h.Length != want {
		return fmt.Errorf("length %d doesn't match %dx%d %s (%d)", h.Length, h.Width, h.Height, h.Format, want)
	}
	return nil
}

// MarshalBinary encodes the header to binary format.
func (h *Header) MarshalBinary() ([]byte, error) {
	buf := make([]byte, HeaderSize)
	h.EncodeTo(buf)
	return buf, nil
}

// EncodeTo writes the header to the given buffer.
// The buffer must be at least HeaderSize bytes.
func (h *Header) EncodeTo(buf []byte) {
	copy(buf[0:4], h.Magic[:])
	binary.LittleEndian.PutUint32(buf[4:8], h.HeaderLength)
	binary.LittleEndian.PutUint32(buf[8:12], uint32(h.Format))
	binary.LittleEndian.PutUint32(buf[12:16], h.Width)
	binary.LittleEndian.PutUint32(buf[16:20], h.Height)
	binary.LittleEndian.PutUint64(buf[20:28], h.Length)
	binary.LittleEndian.PutUint64(buf[28:36], h.CompressedLength)
}

// UnmarshalBinary decodes and validates the header.
func (h *Header) UnmarshalBinary(data []byte) error {
	if len(data) < HeaderSize {
		return fmt.Errorf("header data too short: need %d, got %d", HeaderSize, len(data))
	}
	h.DecodeFrom(data)
	return h.Validate()
}

// DecodeFrom reads the header from the given buffer.
// Does not validate - use UnmarshalBinary for validation.
func (h *Header) DecodeFrom(data []byte) {
	copy(h.Magic[:], data[0:4])
	h.HeaderLength = binary.LittleEndian.Uint32(data[4:8])
	h.Format = tex.MipmapFormat(binary.LittleEndian.Uint32(data[8:12]))
	h.Width = binary.LittleEndian.Uint32(data[12:16])
	h.Height = binary.LittleEndian.Uint32(data[16:20])
	h.Length = binary.LittleEndian.Uint64(data[20:28])
	h.CompressedLength = binary.LittleEndian.Uint64(data[28:36])
}
