package tex

import (
	"fmt"
	"strings"

	"github.com/EchoTools/texkit/pkg/dxt"
)

// TexFormat is the pixel format declared in the texture header. It applies to
// mipmaps only when the image container does not carry an explicit
// FreeImageFormat.
type TexFormat int32

const (
	TexFormatRGBA8888 TexFormat = 0
	TexFormatDXT5     TexFormat = 4
	TexFormatDXT3     TexFormat = 6
	TexFormatDXT1     TexFormat = 7
	TexFormatRG88     TexFormat = 8
	TexFormatR8       TexFormat = 9
)

func (f TexFormat) String() string {
	switch f {
	case TexFormatRGBA8888:
		return "RGBA8888"
	case TexFormatDXT5:
		return "DXT5"
	case TexFormatDXT3:
		return "DXT3"
	case TexFormatDXT1:
		return "DXT1"
	case TexFormatRG88:
		return "RG88"
	case TexFormatR8:
		return "R8"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int32(f))
	}
}

// TexFlags are the top-level texture flags.
type TexFlags int32

const (
	FlagNoInterpolation TexFlags = 1 << 0
	FlagClampUVs        TexFlags = 1 << 1
	FlagIsGif           TexFlags = 1 << 2
	FlagUnk3            TexFlags = 1 << 3
	FlagUnk4            TexFlags = 1 << 4
	FlagIsVideoTexture  TexFlags = 1 << 5
	FlagUnk6            TexFlags = 1 << 6
	FlagUnk7            TexFlags = 1 << 7
)

var flagNames = []struct {
	flag TexFlags
	name string
}{
	{FlagNoInterpolation, "NoInterpolation"},
	{FlagClampUVs, "ClampUVs"},
	{FlagIsGif, "IsGif"},
	{FlagUnk3, "Unk3"},
	{FlagUnk4, "Unk4"},
	{FlagIsVideoTexture, "IsVideoTexture"},
	{FlagUnk6, "Unk6"},
	{FlagUnk7, "Unk7"},
}

// Has reports whether all bits of flag are set.
func (f TexFlags) Has(flag TexFlags) bool { return f&flag == flag }

func (f TexFlags) String() string {
	if f == 0 {
		return "None"
	}
	var parts []string
	rest := f
	for _, fn := range flagNames {
		if f.Has(fn.flag) {
			parts = append(parts, fn.name)
			rest &^= fn.flag
		}
	}
	if rest != 0 {
		parts = append(parts, fmt.Sprintf("0x%x", int32(rest)))
	}
	return strings.Join(parts, "|")
}

// FreeImageFormat identifies the file format of mipmaps that are stored as
// complete encoded image files. FIFUnknown means raw pixel data.
type FreeImageFormat int32

const (
	FIFUnknown FreeImageFormat = iota - 1
	FIFBMP
	FIFICO
	FIFJPEG
	FIFJNG
	FIFKOALA
	FIFLBM
	FIFMNG
	FIFPBM
	FIFPBMRAW
	FIFPCD
	FIFPCX
	FIFPGM
	FIFPGMRAW
	FIFPNG
	FIFPPM
	FIFPPMRAW
	FIFRAS
	FIFTARGA
	FIFTIFF
	FIFWBMP
	FIFPSD
	FIFCUT
	FIFXBM
	FIFXPM
	FIFDDS
	FIFGIF
	FIFHDR
	FIFFAXG3
	FIFSGI
	FIFEXR
	FIFJ2K
	FIFJP2
	FIFPFM
	FIFPICT
	FIFRAW
	FIFWEBP
	FIFJXR
)

var fifNames = [...]string{
	"BMP", "ICO", "JPEG", "JNG", "KOALA", "LBM", "MNG", "PBM", "PBMRAW", "PCD",
	"PCX", "PGM", "PGMRAW", "PNG", "PPM", "PPMRAW", "RAS", "TARGA", "TIFF", "WBMP",
	"PSD", "CUT", "XBM", "XPM", "DDS", "GIF", "HDR", "FAXG3", "SGI", "EXR",
	"J2K", "JP2", "PFM", "PICT", "RAW", "WEBP", "JXR",
}

// Valid reports whether f is FIFUnknown or a known format.
func (f FreeImageFormat) Valid() bool {
	return f >= FIFUnknown && f <= FIFJXR
}

func (f FreeImageFormat) String() string {
	switch {
	case f == FIFUnknown:
		return "UNKNOWN"
	case f.Valid():
		return fifNames[f]
	default:
		return fmt.Sprintf("FIF(%d)", int32(f))
	}
}

// MipmapFormat is the resolved format of a mipmap payload.
type MipmapFormat int

const (
	MipmapFormatInvalid MipmapFormat = iota
	MipmapFormatRGBA8888
	MipmapFormatR8
	MipmapFormatRG88
	MipmapFormatDXT5
	MipmapFormatDXT3
	MipmapFormatDXT1
)

// Encoded image file formats start at mipmapFormatImage; the offset is the
// FreeImageFormat.
const mipmapFormatImage = 1000

const (
	MipmapFormatImageBMP  = MipmapFormat(mipmapFormatImage + int(FIFBMP))
	MipmapFormatImageJPEG = MipmapFormat(mipmapFormatImage + int(FIFJPEG))
	MipmapFormatImagePNG  = MipmapFormat(mipmapFormatImage + int(FIFPNG))
	MipmapFormatImageTIFF = MipmapFormat(mipmapFormatImage + int(FIFTIFF))
	MipmapFormatImageGIF  = MipmapFormat(mipmapFormatImage + int(FIFGIF))
	MipmapFormatImageWEBP = MipmapFormat(mipmapFormatImage + int(FIFWEBP))
)

// ImageFormat returns the mipmap format for an encoded image file.
func ImageFormat(f FreeImageFormat) MipmapFormat {
	return MipmapFormat(mipmapFormatImage + int(f))
}

// IsImage reports whether payloads of this format are complete image files.
func (f MipmapFormat) IsImage() bool { return f >= mipmapFormatImage }

// FreeImage returns the image file format, or FIFUnknown for pixel formats.
func (f MipmapFormat) FreeImage() FreeImageFormat {
	if !f.IsImage() {
		return FIFUnknown
	}
	return FreeImageFormat(f - mipmapFormatImage)
}

// IsBlockCompressed reports whether the format stores 4x4 texel blocks.
func (f MipmapFormat) IsBlockCompressed() bool {
	_, ok := f.blockFormat()
	return ok
}

func (f MipmapFormat) blockFormat() (dxt.Format, bool) {
	switch f {
	case MipmapFormatDXT1:
		return dxt.DXT1, true
	case MipmapFormatDXT3:
		return dxt.DXT3, true
	case MipmapFormatDXT5:
		return dxt.DXT5, true
	default:
		return 0, false
	}
}

// BytesPerPixel returns the size of one texel for uncompressed pixel formats
// and 0 otherwise.
func (f MipmapFormat) BytesPerPixel() int {
	switch f {
	case MipmapFormatRGBA8888:
		return 4
	case MipmapFormatRG88:
		return 2
	case MipmapFormatR8:
		return 1
	default:
		return 0
	}
}

func (f MipmapFormat) String() string {
	switch f {
	case MipmapFormatRGBA8888:
		return "RGBA8888"
	case MipmapFormatR8:
		return "R8"
	case MipmapFormatRG88:
		return "RG88"
	case MipmapFormatDXT5:
		return "DXT5"
	case MipmapFormatDXT3:
		return "DXT3"
	case MipmapFormatDXT1:
		return "DXT1"
	}
	if f.IsImage() {
		return "Image" + f.FreeImage().String()
	}
	return fmt.Sprintf("Invalid(%d)", int(f))
}

// resolveFormat picks the mipmap format from the container's explicit image
// format, falling back to the header's pixel format.
func resolveFormat(fif FreeImageFormat, tf TexFormat) (MipmapFormat, error) {
	if fif != FIFUnknown {
		return ImageFormat(fif), nil
	}

	switch tf {
	case TexFormatRGBA8888:
		return MipmapFormatRGBA8888, nil
	case TexFormatDXT5:
		return MipmapFormatDXT5, nil
	case TexFormatDXT3:
		return MipmapFormatDXT3, nil
	case TexFormatDXT1:
		return MipmapFormatDXT1, nil
	case TexFormatRG88:
		return MipmapFormatRG88, nil
	case TexFormatR8:
		return MipmapFormatR8, nil
	default:
		return MipmapFormatInvalid, &FormatError{Field: "texture format", Value: int64(tf)}
	}
}
