// Package convert turns .tex files into previews, DDS files and raw dumps.
package convert

import (
	"encoding/json"
	"errors"
	"fmt"
	"image/png"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/EchoTools/texkit/internal/config"
	"github.com/EchoTools/texkit/pkg/dds"
	"github.com/EchoTools/texkit/pkg/preview"
	"github.com/EchoTools/texkit/pkg/rawdump"
	"github.com/EchoTools/texkit/pkg/tex"
)

// Extension is the file extension of texture files.
const Extension = ".tex"

// RawExtension is the file extension of raw pixel dumps.
const RawExtension = ".texr"

// ErrExists is returned when an output file exists and overwriting is off.
var ErrExists = errors.New("output exists")

// Limits returns the decoder ceilings for cfg. Zero fields keep the defaults.
func Limits(cfg *config.Config) tex.Limits {
	l := tex.DefaultLimits()
	if cfg.Limits.MaxImages > 0 {
		l.MaxImages = cfg.Limits.MaxImages
	}
	if cfg.Limits.MaxMipmaps > 0 {
		l.MaxMipmaps = cfg.Limits.MaxMipmaps
	}
	if cfg.Limits.MaxMipmapBytes > 0 {
		l.MaxMipmapBytes = cfg.Limits.MaxMipmapBytes
	}
	if cfg.Limits.MaxFrames > 0 {
		l.MaxFrames = cfg.Limits.MaxFrames
	}
	return l
}

// ConvertFile decodes the texture at inPath and writes the outputs selected by
// cfg.Format. outBase is the output path without extension; suffixes for
// image and mipmap indices are added as needed. It returns the written paths.
func ConvertFile(inPath, outBase string, cfg *config.Config) ([]string, error) {
	// DDS export copies payloads; skip the pixel expansion.
	decompress := cfg.Format != config.FormatDDS

	t, err := tex.ReadFile(inPath, tex.WithLimits(Limits(cfg)), tex.WithDecompression(decompress))
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(outBase), 0755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	c := &converter{tex: t, base: outBase, cfg: cfg}

	switch cfg.Format {
	case config.FormatGIF:
		if t.IsAnimated() {
			err = c.writeGIF()
		} else {
			err = c.writeImages()
		}
	case config.FormatDDS:
		err = c.writeDDS()
	case config.FormatRaw:
		err = c.writeRaw()
	default:
		err = c.writeImages()
	}
	if err != nil {
		return c.written, err
	}

	if cfg.Info {
		if err := c.writeInfo(); err != nil {
			return c.written, err
		}
	}

	return c.written, nil
}

type converter struct {
	tex     *tex.Texture
	base    string
	cfg     *config.Config
	written []string
}

// name returns the output path for image i, mipmap j.
func (c *converter) name(i, j int, ext string) string {
	name := c.base
	if len(c.tex.Images()) > 1 {
		name += fmt.Sprintf("_%d", i)
	}
	if c.cfg.AllMipmaps {
		name += fmt.Sprintf("_mip%d", j)
	}
	return name + ext
}

func (c *converter) mipmaps(img *tex.Image) []*tex.Mipmap {
	if c.cfg.AllMipmaps || len(img.Mipmaps) == 0 {
		return img.Mipmaps
	}
	return img.Mipmaps[:1]
}

// writeImages writes each selected mipmap as PNG, or as the embedded image
// file it already is.
func (c *converter) writeImages() error {
	for i, img := range c.tex.Images() {
		for j, m := range c.mipmaps(img) {
			p, err := m.Decompress()
			if err != nil {
				return fmt.Errorf("image %d mipmap %d: %w", i, j, err)
			}

			path := c.name(i, j, preview.Extension(p.Format))

			if p.Format.IsImage() {
				err = c.create(path, func(w io.Writer) error {
					_, err := w.Write(p.Data)
					return err
				})
			} else {
				pic, perr := preview.Image(p)
				if perr != nil {
					return fmt.Errorf("image %d mipmap %d: %w", i, j, perr)
				}
				if j == 0 && c.cfg.Thumbnail > 0 {
					pic = preview.Thumbnail(pic, c.cfg.Thumbnail)
				}
				err = c.create(path, func(w io.Writer) error {
					return png.Encode(w, pic)
				})
			}
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *converter) writeGIF() error {
	frames, err := preview.Frames(c.tex)
	if err != nil {
		return err
	}
	return c.create(c.base+".gif", func(w io.Writer) error {
		return preview.EncodeGIF(w, frames)
	})
}

func (c *converter) writeDDS() error {
	for i, img := range c.tex.Images() {
		// A DDS file always holds the whole mip chain.
		path := c.base
		if len(c.tex.Images()) > 1 {
			path += fmt.Sprintf("_%d", i)
		}
		path += ".dds"

		err := c.create(path, func(w io.Writer) error {
			return dds.Encode(w, img)
		})
		if err != nil {
			return fmt.Errorf("image %d: %w", i, err)
		}
	}
	return nil
}

func (c *converter) writeRaw() error {
	for i, img := range c.tex.Images() {
		for j, m := range c.mipmaps(img) {
			p, err := m.Decompress()
			if err != nil {
				return fmt.Errorf("image %d mipmap %d: %w", i, j, err)
			}

			path := c.name(i, j, RawExtension)
			if err := c.createFile(path, func(f *os.File) error {
				return rawdump.Encode(f, p, rawdump.WithCompressionLevel(c.cfg.CompressionLevel))
			}); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *converter) writeInfo() error {
	data, err := json.MarshalIndent(c.tex.Info(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal info: %w", err)
	}
	return c.create(c.base+".json", func(w io.Writer) error {
		_, err := w.Write(append(data, '\n'))
		return err
	})
}

func (c *converter) create(path string, write func(w io.Writer) error) error {
	return c.createFile(path, func(f *os.File) error { return write(f) })
}

// createFile opens path honoring the overwrite setting, runs write and
// removes the file again if anything fails.
func (c *converter) createFile(path string, write func(f *os.File) error) error {
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !c.cfg.Overwrite {
		flags = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	}

	f, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%w: %s", ErrExists, path)
		}
		return fmt.Errorf("create %s: %w", path, err)
	}

	if err := write(f); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return fmt.Errorf("close %s: %w", path, err)
	}

	c.written = append(c.written, path)
	return nil
}
