package preview

import (
	"errors"
	"fmt"
	"image"
	"image/color/palette"
	"image/gif"
	"io"
	"math"
	"time"

	"github.com/EchoTools/texkit/pkg/tex"
	"golang.org/x/image/draw"
)

// ErrNotAnimated is returned by Frames for textures without frame information.
var ErrNotAnimated = errors.New("preview: texture is not animated")

// Frame is one animation frame cut out of its sprite sheet.
type Frame struct {
	ImageID  int
	Image    *image.NRGBA
	Duration time.Duration
}

// Frames cuts every frame of an animated texture out of the first mipmap of
// the image it references.
func Frames(t *tex.Texture) ([]Frame, error) {
	if !t.IsAnimated() {
		return nil, ErrNotAnimated
	}

	images := t.Images()
	sheets := make(map[int32]*image.NRGBA)
	frames := make([]Frame, 0, len(t.FrameInfo.Frames))

	for i, fi := range t.FrameInfo.Frames {
		if fi.ImageID < 0 || int(fi.ImageID) >= len(images) {
			return nil, fmt.Errorf("frame %d: image id %d out of range [0, %d)", i, fi.ImageID, len(images))
		}

		sheet, ok := sheets[fi.ImageID]
		if !ok {
			m := images[fi.ImageID].First()
			if m == nil {
				return nil, fmt.Errorf("frame %d: image %d has no mipmaps", i, fi.ImageID)
			}
			img, err := MipmapImage(m)
			if err != nil {
				return nil, fmt.Errorf("frame %d: %w", i, err)
			}
			sheet = toNRGBA(img)
			sheets[fi.ImageID] = sheet
		}

		r := frameRect(fi).Intersect(sheet.Bounds())
		if r.Empty() {
			return nil, fmt.Errorf("frame %d: rectangle %v outside %v sheet", i, frameRect(fi), sheet.Bounds().Size())
		}

		dst := image.NewNRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
		draw.Draw(dst, dst.Bounds(), sheet, r.Min, draw.Src)

		frames = append(frames, Frame{
			ImageID:  int(fi.ImageID),
			Image:    dst,
			Duration: time.Duration(float64(fi.FrameTime) * float64(time.Second)),
		})
	}

	return frames, nil
}

// frameRect returns the sprite-sheet rectangle of a frame. Negative sizes
// describe mirrored frames and are normalized.
func frameRect(fi tex.FrameInfo) image.Rectangle {
	x := int(math.Round(float64(fi.X)))
	y := int(math.Round(float64(fi.Y)))
	w := int(math.Round(float64(fi.Width)))
	h := int(math.Round(float64(fi.Height)))
	return image.Rect(x, y, x+w, y+h)
}

// GIFDelay converts a frame duration to GIF delay units of 1/100 s.
func GIFDelay(d time.Duration) int {
	return int((d + 5*time.Millisecond) / (10 * time.Millisecond))
}

// EncodeGIF writes frames as an endlessly looping animated GIF. Frames are
// dithered to the Plan 9 palette.
func EncodeGIF(w io.Writer, frames []Frame) error {
	if len(frames) == 0 {
		return fmt.Errorf("preview: no frames to encode")
	}

	anim := &gif.GIF{
		Image:     make([]*image.Paletted, 0, len(frames)),
		Delay:     make([]int, 0, len(frames)),
		LoopCount: 0,
	}

	for _, f := range frames {
		b := f.Image.Bounds()
		p := image.NewPaletted(image.Rect(0, 0, b.Dx(), b.Dy()), palette.Plan9)
		draw.FloydSteinberg.Draw(p, p.Bounds(), f.Image, b.Min)

		anim.Image = append(anim.Image, p)
		anim.Delay = append(anim.Delay, GIFDelay(f.Duration))

		anim.Config.Width = max(anim.Config.Width, b.Dx())
		anim.Config.Height = max(anim.Config.Height, b.Dy())
	}

	if err := gif.EncodeAll(w, anim); err != nil {
		return fmt.Errorf("encode gif: %w", err)
	}
	return nil
}
