// texconv - Wallpaper Engine .tex texture converter
//
// Decodes .tex containers (LZ4 + DXT1/3/5, raw RGBA/RG/R, embedded image
// files, animated sprite sheets) into PNG, GIF, DDS or zstd raw dumps.
//
// Usage:
//   texconv decode input.tex output        # first mipmap → output.png (or embedded format)
//   texconv info input.tex                 # JSON report
//   texconv dds input.tex output.dds       # mip chain without decompression
//   texconv raw input.tex output           # zstd raw pixel dump(s)
//   texconv batch in_dir/ out_dir/         # convert a directory tree

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/EchoTools/texkit/internal/config"
	"github.com/EchoTools/texkit/pkg/convert"
	"github.com/EchoTools/texkit/pkg/tex"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	if err := run(os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(command string, args []string) error {
	switch command {
	case "decode":
		return runConvert(command, config.FormatPNG, args)
	case "dds":
		return runConvert(command, config.FormatDDS, args)
	case "raw":
		return runConvert(command, config.FormatRaw, args)
	case "info":
		return runInfo(args)
	case "batch":
		return runBatch(args)
	case "help", "-h", "--help":
		printUsage()
		return nil
	default:
		printUsage()
		return fmt.Errorf("unknown command: %s", command)
	}
}

func printUsage() {
	fmt.Println("texconv - Wallpaper Engine texture converter")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  texconv decode [-gif] [-all-mipmaps] [-thumbnail N] [-info] <input.tex> <output>")
	fmt.Println("  texconv info <input.tex>")
	fmt.Println("  texconv dds [-info] <input.tex> <output.dds>")
	fmt.Println("  texconv raw [-all-mipmaps] [-level N] [-info] <input.tex> <output>")
	fmt.Println("  texconv batch [-config file.yaml] [flags] <input_dir> <output_dir>")
	fmt.Println()
	fmt.Println("Supported texture formats:")
	fmt.Println("  RGBA8888, RG88, R8         - raw pixels")
	fmt.Println("  DXT1, DXT3, DXT5           - block compressed (optionally LZ4 wrapped)")
	fmt.Println("  PNG, JPEG, BMP, TIFF, ...  - embedded image files")
}

// runConvert handles the single-file commands.
func runConvert(command, format string, args []string) error {
	cfg := config.Default()
	cfg.Format = format
	cfg.Overwrite = true

	fs := flag.NewFlagSet(command, flag.ContinueOnError)
	fs.BoolVar(&cfg.Info, "info", false, "Write a JSON report next to the output")

	// DDS output always carries the whole mip chain.
	var gifOut bool
	switch format {
	case config.FormatPNG:
		fs.BoolVar(&gifOut, "gif", false, "Write animated textures as GIF")
		fs.BoolVar(&cfg.AllMipmaps, "all-mipmaps", false, "Write every mipmap instead of only the first")
		fs.IntVar(&cfg.Thumbnail, "thumbnail", 0, "Scale PNG output so neither side exceeds N pixels")
	case config.FormatRaw:
		fs.BoolVar(&cfg.AllMipmaps, "all-mipmaps", false, "Write every mipmap instead of only the first")
		fs.IntVar(&cfg.CompressionLevel, "level", cfg.CompressionLevel, "zstd level for raw dumps")
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return fmt.Errorf("usage: texconv %s [flags] <input.tex> <output>", command)
	}
	if gifOut {
		cfg.Format = config.FormatGIF
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	input, output := fs.Arg(0), fs.Arg(1)
	base := strings.TrimSuffix(output, filepath.Ext(output))

	written, err := convert.ConvertFile(input, base, cfg)
	if err != nil {
		return err
	}
	for _, path := range written {
		fmt.Printf("Decoded %s → %s\n", input, path)
	}
	return nil
}

func runInfo(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: texconv info <input.tex>")
	}

	t, err := tex.ReadFile(args[0], tex.WithDecompression(false))
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(t.Info()); err != nil {
		return fmt.Errorf("encode info: %w", err)
	}

	if bad := t.InvalidFrames(); len(bad) > 0 {
		fmt.Fprintf(os.Stderr, "Warning: frames %v reference missing images\n", bad)
	}
	return nil
}

func runBatch(args []string) error {
	fs := flag.NewFlagSet("batch", flag.ContinueOnError)
	configPath := fs.String("config", "", "YAML configuration file")
	format := fs.String("format", "", "Output format: png, gif, dds, raw")
	recursive := fs.Bool("recursive", true, "Descend into subdirectories")
	overwrite := fs.Bool("force", false, "Overwrite existing outputs")
	logLevel := fs.String("log-level", "", "Log level: debug, info, warn, error")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return fmt.Errorf("usage: texconv batch [flags] <input_dir> <output_dir>")
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	// Flags given explicitly win over the file.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "format":
			cfg.Format = *format
		case "recursive":
			cfg.Recursive = *recursive
		case "force":
			cfg.Overwrite = *overwrite
		case "log-level":
			cfg.LogLevel = *logLevel
		}
	})
	if err := config.Validate(cfg); err != nil {
		return err
	}

	logger := newLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	inputDir, outputDir := fs.Arg(0), fs.Arg(1)
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	stats, err := convert.Batch(ctx, inputDir, outputDir, cfg, logger)
	fmt.Printf("\nCompleted: %d files converted, %d skipped, %d errors\n", stats.Converted, stats.Skipped, stats.Failed)
	return err
}

func newLogger(level string) *slog.Logger {
	var l slog.Level
	switch level {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}
