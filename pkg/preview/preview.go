// Package preview turns decoded texture mipmaps into standard library images.
package preview

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/EchoTools/texkit/pkg/tex"
	"golang.org/x/image/draw"

	// Decoders for mipmaps stored as embedded image files.
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrUnsupported is returned for pixel data that has no image representation.
var ErrUnsupported = errors.New("preview: unsupported format")

// Image converts decompressed pixels to an image. Raw pixel formats share
// memory with p.Data where the layout allows it; embedded image files are
// decoded.
func Image(p *tex.Pixels) (image.Image, error) {
	if p.Format.IsImage() {
		img, _, err := image.Decode(bytes.NewReader(p.Data))
		if err != nil {
			return nil, fmt.Errorf("decode embedded %s: %w", p.Format.FreeImage(), err)
		}
		return img, nil
	}

	bpp := p.Format.BytesPerPixel()
	if bpp == 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, p.Format)
	}
	if !fits(p.Width, p.Height, bpp, len(p.Data)) {
		return nil, fmt.Errorf("%s pixel data: %dx%d does not fit in %d bytes", p.Format, p.Width, p.Height, len(p.Data))
	}

	rect := image.Rect(0, 0, p.Width, p.Height)

	switch p.Format {
	case tex.MipmapFormatRGBA8888:
		return &image.NRGBA{Pix: p.Data, Stride: p.Width * 4, Rect: rect}, nil
	case tex.MipmapFormatR8:
		return &image.Gray{Pix: p.Data, Stride: p.Width, Rect: rect}, nil
	case tex.MipmapFormatRG88:
		img := image.NewNRGBA(rect)
		for i := 0; i < p.Width*p.Height; i++ {
			img.Pix[i*4+0] = p.Data[i*2+0]
			img.Pix[i*4+1] = p.Data[i*2+1]
			img.Pix[i*4+3] = 0xFF
		}
		return img, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrUnsupported, p.Format)
}

// fits reports whether w*h texels of bpp bytes fit in n bytes, without
// forming the product.
func fits(w, h, bpp, n int) bool {
	if w < 0 || h < 0 {
		return false
	}
	if w == 0 || h == 0 {
		return true
	}
	return h <= n/bpp/w
}

// MipmapImage decompresses m if needed and converts it to an image.
func MipmapImage(m *tex.Mipmap) (image.Image, error) {
	p, err := m.Decompress()
	if err != nil {
		return nil, err
	}
	return Image(p)
}

// Extension returns the file extension, with leading dot, that the converted
// mipmap should be saved with. Raw pixel formats are saved as PNG; embedded
// image files keep their own format.
func Extension(f tex.MipmapFormat) string {
	if !f.IsImage() {
		return ".png"
	}

	switch fif := f.FreeImage(); fif {
	case tex.FIFJPEG:
		return ".jpg"
	case tex.FIFTIFF:
		return ".tif"
	case tex.FIFTARGA:
		return ".tga"
	default:
		return "." + strings.ToLower(fif.String())
	}
}

// Thumbnail scales img down so that neither side exceeds size. Images that
// already fit are returned unchanged.
func Thumbnail(img image.Image, size int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if size <= 0 || (w <= size && h <= size) {
		return img
	}

	if w >= h {
		h = max(1, h*size/w)
		w = size
	} else {
		w = max(1, w*size/h)
		h = size
	}

	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// toNRGBA returns img as *image.NRGBA, copying only when necessary.
func toNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok {
		return n
	}
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}
