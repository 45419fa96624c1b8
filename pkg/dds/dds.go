// Package dds writes texture images as DirectDraw Surface files.
//
// Mipmaps are copied from their stored payloads with only the LZ4 layer
// removed, so DXT1/DXT3/DXT5 data reaches the DDS file still block
// compressed. Every file carries a DX10 extension header:
//
//	"DDS " magic (4) + DDS_HEADER (124) + DDS_HEADER_DXT10 (20) + mip chain
package dds

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/EchoTools/texkit/pkg/dxt"
	"github.com/EchoTools/texkit/pkg/tex"
)

// DXGI_FORMAT constants for the formats a texture can carry
const (
	DXGI_FORMAT_UNKNOWN             = 0
	DXGI_FORMAT_R8G8B8A8_UNORM      = 28
	DXGI_FORMAT_R8G8B8A8_UNORM_SRGB = 29
	DXGI_FORMAT_R8G8_UNORM          = 49
	DXGI_FORMAT_R8_UNORM            = 61
	DXGI_FORMAT_BC1_UNORM           = 71
	DXGI_FORMAT_BC1_UNORM_SRGB      = 72
	DXGI_FORMAT_BC2_UNORM           = 74
	DXGI_FORMAT_BC2_UNORM_SRGB      = 75
	DXGI_FORMAT_BC3_UNORM           = 77
	DXGI_FORMAT_BC3_UNORM_SRGB      = 78
)

// DDS header constants
const (
	DDS_MAGIC                    = 0x20534444 // "DDS "
	DDS_HEADER_SIZE              = 124
	DDS_HEADER_FLAGS_CAPS        = 0x1
	DDS_HEADER_FLAGS_HEIGHT      = 0x2
	DDS_HEADER_FLAGS_WIDTH       = 0x4
	DDS_HEADER_FLAGS_PITCH       = 0x8
	DDS_HEADER_FLAGS_PIXELFORMAT = 0x1000
	DDS_HEADER_FLAGS_MIPMAPCOUNT = 0x20000
	DDS_HEADER_FLAGS_LINEARSIZE  = 0x80000

	DDS_SURFACE_FLAGS_TEXTURE = 0x1000
	DDS_SURFACE_FLAGS_COMPLEX = 0x8
	DDS_SURFACE_FLAGS_MIPMAP  = 0x400000

	DDS_PIXELFORMAT_SIZE = 32
	DDS_FOURCC           = 0x4

	DX10_FOURCC = 0x30315844 // "DX10"

	// D3D10_RESOURCE_DIMENSION_TEXTURE2D
	resourceDimensionTexture2D = 3
)

// HeaderSize is the size of magic, DDS_HEADER and the DX10 extension.
const HeaderSize = 4 + DDS_HEADER_SIZE + 20

var (
	// ErrUnsupportedFormat is returned for mipmaps that have no DXGI
	// equivalent, such as embedded image files.
	ErrUnsupportedFormat = errors.New("dds: unsupported format")

	// ErrBadHeader is returned by ParseHeader for data that is not a DX10 DDS file.
	ErrBadHeader = errors.New("dds: bad header")
)

// Metadata holds the fields of a DDS header that this package reads and writes.
type Metadata struct {
	Width      uint32
	Height     uint32
	MipLevels  uint32
	DXGIFormat uint32
	ArraySize  uint32
}

func (m *Metadata) String() string {
	return fmt.Sprintf("DDS: %dx%d, %d mips, format=%s", m.Width, m.Height, m.MipLevels, FormatName(m.DXGIFormat))
}

// FormatName returns a human-readable name for a DXGI_FORMAT value.
func FormatName(format uint32) string {
	switch format {
	case DXGI_FORMAT_R8G8B8A8_UNORM:
		return "R8G8B8A8_UNORM"
	case DXGI_FORMAT_R8G8B8A8_UNORM_SRGB:
		return "R8G8B8A8_UNORM_SRGB"
	case DXGI_FORMAT_R8G8_UNORM:
		return "R8G8_UNORM"
	case DXGI_FORMAT_R8_UNORM:
		return "R8_UNORM"
	case DXGI_FORMAT_BC1_UNORM:
		return "BC1_UNORM"
	case DXGI_FORMAT_BC1_UNORM_SRGB:
		return "BC1_UNORM_SRGB"
	case DXGI_FORMAT_BC2_UNORM:
		return "BC2_UNORM"
	case DXGI_FORMAT_BC2_UNORM_SRGB:
		return "BC2_UNORM_SRGB"
	case DXGI_FORMAT_BC3_UNORM:
		return "BC3_UNORM"
	case DXGI_FORMAT_BC3_UNORM_SRGB:
		return "BC3_UNORM_SRGB"
	default:
		return fmt.Sprintf("UNKNOWN(0x%x)", format)
	}
}

// DXGIFormat maps a stored mipmap format to its DXGI_FORMAT.
func DXGIFormat(f tex.MipmapFormat) (uint32, error) {
	switch f {
	case tex.MipmapFormatDXT1:
		return DXGI_FORMAT_BC1_UNORM, nil
	case tex.MipmapFormatDXT3:
		return DXGI_FORMAT_BC2_UNORM, nil
	case tex.MipmapFormatDXT5:
		return DXGI_FORMAT_BC3_UNORM, nil
	case tex.MipmapFormatRGBA8888:
		return DXGI_FORMAT_R8G8B8A8_UNORM, nil
	case tex.MipmapFormatRG88:
		return DXGI_FORMAT_R8G8_UNORM, nil
	case tex.MipmapFormatR8:
		return DXGI_FORMAT_R8_UNORM, nil
	default:
		return DXGI_FORMAT_UNKNOWN, fmt.Errorf("%w: %s", ErrUnsupportedFormat, f)
	}
}

// Encode writes img as a DDS file. All mipmaps must share the image format.
func Encode(w io.Writer, img *tex.Image) error {
	first := img.First()
	if first == nil {
		return fmt.Errorf("dds: image has no mipmaps")
	}

	format, err := DXGIFormat(first.Format)
	if err != nil {
		return err
	}

	meta := &Metadata{
		Width:      uint32(first.Width),
		Height:     uint32(first.Height),
		MipLevels:  uint32(len(img.Mipmaps)),
		DXGIFormat: format,
		ArraySize:  1,
	}

	if _, err := w.Write(EncodeHeader(meta)); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, m := range img.Mipmaps {
		if m.Format != first.Format {
			return fmt.Errorf("mipmap %d: format %s differs from %s", i, m.Format, first.Format)
		}

		data, err := m.Unpack()
		if err != nil {
			return fmt.Errorf("mipmap %d: %w", i, err)
		}

		want := linearSize(uint32(m.Width), uint32(m.Height), format)
		if uint64(len(data)) != want {
			return fmt.Errorf("mipmap %d: data size %d doesn't match %dx%d %s size %d",
				i, len(data), m.Width, m.Height, FormatName(format), want)
		}

		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("write mipmap %d: %w", i, err)
		}
	}

	return nil
}

// Marshal returns img encoded as a DDS file.
func Marshal(img *tex.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodeHeader creates a complete DDS header with DX10 extension.
func EncodeHeader(meta *Metadata) []byte {
	header := make([]byte, HeaderSize)

	binary.LittleEndian.PutUint32(header[0:4], DDS_MAGIC)

	// DDS_HEADER starts at offset 4
	offset := 4
	put := func(v uint32) {
		binary.LittleEndian.PutUint32(header[offset:offset+4], v)
		offset += 4
	}

	compressed := isBlockCompressed(meta.DXGIFormat)

	flags := uint32(DDS_HEADER_FLAGS_CAPS | DDS_HEADER_FLAGS_HEIGHT | DDS_HEADER_FLAGS_WIDTH |
		DDS_HEADER_FLAGS_PIXELFORMAT)
	if compressed {
		flags |= DDS_HEADER_FLAGS_LINEARSIZE
	} else {
		flags |= DDS_HEADER_FLAGS_PITCH
	}
	if meta.MipLevels > 1 {
		flags |= DDS_HEADER_FLAGS_MIPMAPCOUNT
	}

	put(DDS_HEADER_SIZE)
	put(flags)
	put(meta.Height)
	put(meta.Width)
	if compressed {
		put(LinearSize(meta.Width, meta.Height, meta.DXGIFormat))
	} else {
		put(meta.Width * bytesPerPixel(meta.DXGIFormat))
	}
	put(0) // dwDepth
	put(meta.MipLevels)

	// dwReserved1[11]
	offset += 44

	// DDS_PIXELFORMAT
	put(DDS_PIXELFORMAT_SIZE)
	put(DDS_FOURCC)
	put(DX10_FOURCC)
	// dwRGBBitCount and the four masks are zero for DX10
	offset += 20

	caps := uint32(DDS_SURFACE_FLAGS_TEXTURE)
	if meta.MipLevels > 1 {
		caps |= DDS_SURFACE_FLAGS_COMPLEX | DDS_SURFACE_FLAGS_MIPMAP
	}
	put(caps)

	// dwCaps2, dwCaps3, dwCaps4, dwReserved2
	offset += 16

	// DDS_HEADER_DXT10
	put(meta.DXGIFormat)
	put(resourceDimensionTexture2D)
	put(0) // miscFlag
	put(meta.ArraySize)
	put(0) // miscFlags2

	return header
}

// ParseHeader reads a DDS header with DX10 extension.
func ParseHeader(r io.Reader) (*Metadata, error) {
	data := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	u32 := func(off int) uint32 { return binary.LittleEndian.Uint32(data[off : off+4]) }

	if u32(0) != DDS_MAGIC {
		return nil, fmt.Errorf("%w: magic 0x%08x", ErrBadHeader, u32(0))
	}
	if u32(4) != DDS_HEADER_SIZE {
		return nil, fmt.Errorf("%w: header size %d", ErrBadHeader, u32(4))
	}
	if u32(84) != DX10_FOURCC {
		return nil, fmt.Errorf("%w: fourcc 0x%08x", ErrBadHeader, u32(84))
	}

	return &Metadata{
		Height:     u32(12),
		Width:      u32(16),
		MipLevels:  u32(28),
		DXGIFormat: u32(128),
		ArraySize:  u32(140),
	}, nil
}

// LinearSize returns the byte size of one mipmap level.
func LinearSize(width, height, format uint32) uint32 {
	return uint32(linearSize(width, height, format))
}

// linearSize is LinearSize without truncation to the header field width.
func linearSize(width, height, format uint32) uint64 {
	switch format {
	case DXGI_FORMAT_BC1_UNORM, DXGI_FORMAT_BC1_UNORM_SRGB:
		return uint64(dxt.CompressedSize(int(width), int(height), dxt.DXT1))
	case DXGI_FORMAT_BC2_UNORM, DXGI_FORMAT_BC2_UNORM_SRGB:
		return uint64(dxt.CompressedSize(int(width), int(height), dxt.DXT3))
	case DXGI_FORMAT_BC3_UNORM, DXGI_FORMAT_BC3_UNORM_SRGB:
		return uint64(dxt.CompressedSize(int(width), int(height), dxt.DXT5))
	default:
		return uint64(width) * uint64(height) * uint64(bytesPerPixel(format))
	}
}

func isBlockCompressed(format uint32) bool {
	switch format {
	case DXGI_FORMAT_BC1_UNORM, DXGI_FORMAT_BC1_UNORM_SRGB,
		DXGI_FORMAT_BC2_UNORM, DXGI_FORMAT_BC2_UNORM_SRGB,
		DXGI_FORMAT_BC3_UNORM, DXGI_FORMAT_BC3_UNORM_SRGB:
		return true
	}
	return false
}

func bytesPerPixel(format uint32) uint32 {
	switch format {
	case DXGI_FORMAT_R8G8B8A8_UNORM, DXGI_FORMAT_R8G8B8A8_UNORM_SRGB:
		return 4
	case DXGI_FORMAT_R8G8_UNORM:
		return 2
	case DXGI_FORMAT_R8_UNORM:
		return 1
	default:
		return 0
	}
}
