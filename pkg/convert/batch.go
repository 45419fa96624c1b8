package convert

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/EchoTools/texkit/internal/config"
)

// Stats counts the outcome of a batch run.
type Stats struct {
	Converted int // textures converted
	Skipped   int // textures whose outputs already existed
	Failed    int // textures that could not be decoded or written
	Outputs   int // files written
}

// Batch converts every .tex file under inDir into outDir, mirroring the
// directory layout. A failing file is logged and counted; the walk continues.
// Cancellation is checked between files: a cancelled ctx stops the walk and
// Batch returns the stats so far with ctx.Err().
func Batch(ctx context.Context, inDir, outDir string, cfg *config.Config, logger *slog.Logger) (Stats, error) {
	var stats Stats
	start := time.Now()

	logger.Info("texconv: batch started",
		"input", inDir,
		"output", outDir,
		"format", cfg.Format,
		"recursive", cfg.Recursive)

	err := filepath.WalkDir(inDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		if d.IsDir() {
			if path != inDir && !cfg.Recursive {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.EqualFold(filepath.Ext(path), Extension) {
			return nil
		}

		relPath, err := filepath.Rel(inDir, path)
		if err != nil {
			return err
		}
		outBase := filepath.Join(outDir, strings.TrimSuffix(relPath, filepath.Ext(relPath)))

		written, convErr := ConvertFile(path, outBase, cfg)
		stats.Outputs += len(written)

		switch {
		case convErr == nil:
			stats.Converted++
			logger.Debug("texconv: converted", "input", path, "outputs", len(written))
			if stats.Converted%100 == 0 {
				logger.Info("texconv: progress", "converted", stats.Converted, "failed", stats.Failed)
			}
		case errors.Is(convErr, ErrExists):
			stats.Skipped++
			logger.Debug("texconv: skipped, output exists", "input", path, "error", convErr)
		default:
			stats.Failed++
			logger.Error("texconv: convert failed", "input", path, "error", convErr)
		}

		return nil
	})

	logger.Info("texconv: batch finished",
		"converted", stats.Converted,
		"skipped", stats.Skipped,
		"failed", stats.Failed,
		"outputs", stats.Outputs,
		"elapsed", time.Since(start))

	if err != nil {
		return stats, fmt.Errorf("walk %s: %w", inDir, err)
	}
	return stats, nil
}
