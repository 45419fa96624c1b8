package convert

import (
	"context"
	"encoding/json"
	"errors"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/EchoTools/texkit/internal/config"
	"github.com/EchoTools/texkit/pkg/dds"
	"github.com/EchoTools/texkit/pkg/rawdump"
	"github.com/EchoTools/texkit/pkg/tex"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func rgbaMipmap(size int32, v byte) *tex.Mipmap {
	data := make([]byte, size*size*4)
	for i := range data {
		data[i] = v
	}
	return &tex.Mipmap{Width: size, Height: size, Format: tex.MipmapFormatRGBA8888, Data: data}
}

// staticTexture is a 4x4 RGBA texture with a 2x2 second mipmap.
func staticTexture() *tex.Texture {
	return &tex.Texture{
		Header: tex.NewHeader(tex.TexFormatRGBA8888, 0, 4, 4),
		ImageContainer: &tex.ImageContainer{
			Magic:       tex.MagicImageContainerV2,
			Version:     tex.ContainerV2,
			ImageFormat: tex.FIFUnknown,
			Images: []*tex.Image{{
				Format:  tex.MipmapFormatRGBA8888,
				Mipmaps: []*tex.Mipmap{rgbaMipmap(4, 0x80), rgbaMipmap(2, 0x40)},
			}},
		},
	}
}

func animatedTexture() *tex.Texture {
	t := staticTexture()
	t.Header.Flags = tex.FlagIsGif
	t.FrameInfo = &tex.FrameInfoContainer{
		Magic: tex.MagicFrameInfoV2,
		Frames: []tex.FrameInfo{
			{ImageID: 0, FrameTime: 0.1, X: 0, Y: 0, Width: 2, Height: 2},
			{ImageID: 0, FrameTime: 0.1, X: 2, Y: 2, Width: 2, Height: 2},
		},
	}
	return t
}

func dxt1Texture() *tex.Texture {
	block := []byte{0x00, 0xF8, 0x00, 0xF8, 0, 0, 0, 0}
	return &tex.Texture{
		Header: tex.NewHeader(tex.TexFormatDXT1, 0, 4, 4),
		ImageContainer: &tex.ImageContainer{
			Magic:       tex.MagicImageContainerV1,
			Version:     tex.ContainerV1,
			ImageFormat: tex.FIFUnknown,
			Images: []*tex.Image{{
				Format: tex.MipmapFormatDXT1,
				Mipmaps: []*tex.Mipmap{
					{Width: 4, Height: 4, Format: tex.MipmapFormatDXT1, Data: block},
				},
			}},
		},
	}
}

func writeTexture(t *testing.T, path string, tx *tex.Texture) {
	t.Helper()
	data, err := tx.MarshalBinary()
	if err != nil {
		t.Fatalf("marshal texture: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write texture: %v", err)
	}
}

func testConfig(format string) *config.Config {
	cfg := config.Default()
	cfg.Format = format
	return cfg
}

func TestConvertFilePNG(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "static.tex")
	writeTexture(t, in, staticTexture())

	out := filepath.Join(dir, "out", "static")
	written, err := ConvertFile(in, out, testConfig(config.FormatPNG))
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if len(written) != 1 || written[0] != out+".png" {
		t.Fatalf("unexpected outputs %v", written)
	}

	f, err := os.Open(written[0])
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	if img.Bounds().Dx() != 4 || img.Bounds().Dy() != 4 {
		t.Errorf("expected 4x4, got %v", img.Bounds())
	}
}

func TestConvertFileAllMipmaps(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "static.tex")
	writeTexture(t, in, staticTexture())

	cfg := testConfig(config.FormatPNG)
	cfg.AllMipmaps = true
	cfg.Info = true

	out := filepath.Join(dir, "static")
	written, err := ConvertFile(in, out, cfg)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}

	expected := []string{out + "_mip0.png", out + "_mip1.png", out + ".json"}
	if len(written) != len(expected) {
		t.Fatalf("expected %v, got %v", expected, written)
	}
	for i := range expected {
		if written[i] != expected[i] {
			t.Errorf("output %d: expected %s, got %s", i, expected[i], written[i])
		}
	}

	data, err := os.ReadFile(out + ".json")
	if err != nil {
		t.Fatalf("read info: %v", err)
	}
	var info tex.Info
	if err := json.Unmarshal(data, &info); err != nil {
		t.Fatalf("unmarshal info: %v", err)
	}
	if info.Container != tex.MagicImageContainerV2 || len(info.Images) != 1 || len(info.Images[0].Mipmaps) != 2 {
		t.Errorf("unexpected info: %+v", info)
	}
}

func TestConvertFileGIF(t *testing.T) {
	dir := t.TempDir()

	animated := filepath.Join(dir, "anim.tex")
	writeTexture(t, animated, animatedTexture())
	written, err := ConvertFile(animated, filepath.Join(dir, "anim"), testConfig(config.FormatGIF))
	if err != nil {
		t.Fatalf("convert animated: %v", err)
	}
	if len(written) != 1 || filepath.Ext(written[0]) != ".gif" {
		t.Errorf("expected one gif, got %v", written)
	}

	// Static textures fall back to png.
	static := filepath.Join(dir, "static.tex")
	writeTexture(t, static, staticTexture())
	written, err = ConvertFile(static, filepath.Join(dir, "static"), testConfig(config.FormatGIF))
	if err != nil {
		t.Fatalf("convert static: %v", err)
	}
	if len(written) != 1 || filepath.Ext(written[0]) != ".png" {
		t.Errorf("expected one png, got %v", written)
	}
}

func TestConvertFileDDS(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "block.tex")
	writeTexture(t, in, dxt1Texture())

	written, err := ConvertFile(in, filepath.Join(dir, "block"), testConfig(config.FormatDDS))
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if len(written) != 1 {
		t.Fatalf("expected one output, got %v", written)
	}

	f, err := os.Open(written[0])
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	meta, err := dds.ParseHeader(f)
	if err != nil {
		t.Fatalf("parse dds: %v", err)
	}
	if meta.DXGIFormat != dds.DXGI_FORMAT_BC1_UNORM || meta.Width != 4 || meta.MipLevels != 1 {
		t.Errorf("unexpected dds header: %s", meta)
	}

	st, err := f.Stat()
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if st.Size() != dds.HeaderSize+8 {
		t.Errorf("expected %d bytes, got %d", dds.HeaderSize+8, st.Size())
	}
}

func TestConvertFileRaw(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "block.tex")
	writeTexture(t, in, dxt1Texture())

	written, err := ConvertFile(in, filepath.Join(dir, "block"), testConfig(config.FormatRaw))
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if len(written) != 1 || filepath.Ext(written[0]) != RawExtension {
		t.Fatalf("unexpected outputs %v", written)
	}

	f, err := os.Open(written[0])
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	p, err := rawdump.ReadAll(f)
	if err != nil {
		t.Fatalf("read dump: %v", err)
	}
	if p.Format != tex.MipmapFormatRGBA8888 || p.Width != 4 || len(p.Data) != 64 {
		t.Errorf("unexpected dump: %s %dx%d %d bytes", p.Format, p.Width, p.Height, len(p.Data))
	}
	if p.Data[0] != 255 || p.Data[1] != 0 || p.Data[3] != 255 {
		t.Errorf("expected opaque red, got %v", p.Data[:4])
	}
}

func TestConvertFileOverwrite(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "static.tex")
	writeTexture(t, in, staticTexture())
	out := filepath.Join(dir, "static")

	cfg := testConfig(config.FormatPNG)
	if _, err := ConvertFile(in, out, cfg); err != nil {
		t.Fatalf("first convert: %v", err)
	}

	if _, err := ConvertFile(in, out, cfg); !errors.Is(err, ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}

	cfg.Overwrite = true
	if _, err := ConvertFile(in, out, cfg); err != nil {
		t.Fatalf("overwrite convert: %v", err)
	}
}

func TestConvertFileErrors(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.tex")
	if err := os.WriteFile(bad, []byte("TEXV0004\x00"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := ConvertFile(bad, filepath.Join(dir, "bad"), testConfig(config.FormatPNG)); !errors.Is(err, tex.ErrUnknownMagic) {
		t.Errorf("expected ErrUnknownMagic, got %v", err)
	}

	if _, err := ConvertFile(filepath.Join(dir, "missing.tex"), filepath.Join(dir, "x"), testConfig(config.FormatPNG)); err == nil {
		t.Error("expected error for missing input")
	}

	// A lowered ceiling applies to file conversion.
	in := filepath.Join(dir, "static.tex")
	writeTexture(t, in, staticTexture())
	cfg := testConfig(config.FormatPNG)
	cfg.Limits.MaxMipmaps = 1
	if _, err := ConvertFile(in, filepath.Join(dir, "static"), cfg); !errors.Is(err, tex.ErrUnsafeSize) {
		t.Errorf("expected ErrUnsafeSize, got %v", err)
	}
}

// hugeTexture declares a 0x7FFFFFFF-square RGBA mipmap backed by 16 bytes.
func hugeTexture() *tex.Texture {
	tx := staticTexture()
	tx.ImageContainer.Images[0].Mipmaps = []*tex.Mipmap{
		{Width: 0x7FFFFFFF, Height: 0x7FFFFFFF, Format: tex.MipmapFormatRGBA8888, Data: make([]byte, 16)},
	}
	return tx
}

func TestConvertFileHugeDimensions(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "huge.tex")
	writeTexture(t, in, hugeTexture())

	for _, format := range []string{config.FormatPNG, config.FormatRaw, config.FormatGIF, config.FormatDDS} {
		t.Run(format, func(t *testing.T) {
			out := filepath.Join(dir, format, "huge")
			written, err := ConvertFile(in, out, testConfig(format))
			if err == nil {
				t.Fatal("expected error for dimensions larger than the pixel data")
			}
			if format != config.FormatDDS && !errors.Is(err, tex.ErrLengthMismatch) {
				t.Errorf("expected ErrLengthMismatch, got %v", err)
			}
			if len(written) != 0 {
				t.Errorf("expected no outputs, got %v", written)
			}

			entries, _ := os.ReadDir(filepath.Dir(out))
			if len(entries) != 0 {
				t.Errorf("expected no files left behind, found %d", len(entries))
			}
		})
	}
}

func batchTree(t *testing.T) string {
	t.Helper()
	in := t.TempDir()
	writeTexture(t, filepath.Join(in, "a.tex"), staticTexture())
	writeTexture(t, filepath.Join(in, "sub", "b.TEX"), animatedTexture())
	if err := os.WriteFile(filepath.Join(in, "broken.tex"), []byte("garbage"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(filepath.Join(in, "notes.txt"), []byte("ignored"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return in
}

func TestBatch(t *testing.T) {
	in := batchTree(t)

	t.Run("Recursive", func(t *testing.T) {
		out := t.TempDir()
		stats, err := Batch(context.Background(), in, out, testConfig(config.FormatPNG), discardLogger())
		if err != nil {
			t.Fatalf("batch: %v", err)
		}
		if stats.Converted != 2 || stats.Failed != 1 || stats.Outputs != 2 {
			t.Errorf("unexpected stats %+v", stats)
		}
		if _, err := os.Stat(filepath.Join(out, "sub", "b.png")); err != nil {
			t.Errorf("expected nested output: %v", err)
		}

		// A second run without overwrite skips everything it already wrote.
		stats, err = Batch(context.Background(), in, out, testConfig(config.FormatPNG), discardLogger())
		if err != nil {
			t.Fatalf("second batch: %v", err)
		}
		if stats.Skipped != 2 || stats.Converted != 0 {
			t.Errorf("unexpected stats on rerun %+v", stats)
		}
	})

	t.Run("TopLevelOnly", func(t *testing.T) {
		cfg := testConfig(config.FormatPNG)
		cfg.Recursive = false

		stats, err := Batch(context.Background(), in, t.TempDir(), cfg, discardLogger())
		if err != nil {
			t.Fatalf("batch: %v", err)
		}
		if stats.Converted != 1 || stats.Failed != 1 {
			t.Errorf("unexpected stats %+v", stats)
		}
	})

	t.Run("Cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		stats, err := Batch(ctx, in, t.TempDir(), testConfig(config.FormatPNG), discardLogger())
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
		if stats.Converted != 0 {
			t.Errorf("expected no conversions, got %+v", stats)
		}
	})

	t.Run("MissingInput", func(t *testing.T) {
		_, err := Batch(context.Background(), filepath.Join(in, "nope"), t.TempDir(), testConfig(config.FormatPNG), discardLogger())
		if err == nil {
			t.Error("expected error for missing input directory")
		}
	})
}
