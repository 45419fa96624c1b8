package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/EchoTools/texkit/pkg/tex"
)

func writeSample(t *testing.T, path string) {
	t.Helper()
	tx := &tex.Texture{
		Header: tex.NewHeader(tex.TexFormatR8, tex.FlagClampUVs, 2, 2),
		ImageContainer: &tex.ImageContainer{
			Magic:       tex.MagicImageContainerV2,
			Version:     tex.ContainerV2,
			ImageFormat: tex.FIFUnknown,
			Images: []*tex.Image{{
				Format:  tex.MipmapFormatR8,
				Mipmaps: []*tex.Mipmap{{Width: 2, Height: 2, Format: tex.MipmapFormatR8, Data: []byte{0, 64, 128, 255}}},
			}},
		},
	}
	data, err := tx.MarshalBinary()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestRunCommands(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "sample.tex")
	writeSample(t, in)

	if err := run("decode", []string{in, filepath.Join(dir, "sample.png")}); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "sample.png")); err != nil {
		t.Errorf("expected png output: %v", err)
	}

	if err := run("raw", []string{"-level", "3", in, filepath.Join(dir, "sample")}); err != nil {
		t.Fatalf("raw: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "sample.texr")); err != nil {
		t.Errorf("expected raw output: %v", err)
	}

	if err := run("info", []string{in}); err != nil {
		t.Fatalf("info: %v", err)
	}

	out := filepath.Join(dir, "out")
	if err := run("batch", []string{"-format", "dds", "-log-level", "error", dir, out}); err != nil {
		t.Fatalf("batch: %v", err)
	}
	if _, err := os.Stat(filepath.Join(out, "sample.dds")); err != nil {
		t.Errorf("expected dds output: %v", err)
	}
}

func TestRunCommandFlags(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "sample.tex")
	writeSample(t, in)

	rejected := []struct {
		command string
		flag    []string
	}{
		{"dds", []string{"-gif"}},
		{"dds", []string{"-all-mipmaps"}},
		{"dds", []string{"-level", "3"}},
		{"raw", []string{"-gif"}},
		{"raw", []string{"-thumbnail", "8"}},
		{"decode", []string{"-level", "3"}},
	}
	for _, tt := range rejected {
		args := append(append([]string{}, tt.flag...), in, filepath.Join(dir, "rejected"))
		if err := run(tt.command, args); err == nil {
			t.Errorf("%s %v: expected unknown flag error", tt.command, tt.flag)
		}
	}

	if err := run("dds", []string{"-info", in, filepath.Join(dir, "sample.dds")}); err != nil {
		t.Fatalf("dds -info: %v", err)
	}
	for _, name := range []string{"sample.dds", "sample.json"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("expected %s: %v", name, err)
		}
	}
}

func TestRunErrors(t *testing.T) {
	if err := run("bogus", nil); err == nil {
		t.Error("expected error for unknown command")
	}
	if err := run("decode", []string{"only-one-arg"}); err == nil {
		t.Error("expected usage error")
	}
	if err := run("batch", []string{"-config", filepath.Join(t.TempDir(), "missing.yaml"), "a", "b"}); err == nil {
		t.Error("expected error for missing config")
	}
}
