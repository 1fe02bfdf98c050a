// Package assemble writes the final artifact: a standalone converted file or
// an archive of converted plus preserved entries.
package assemble

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/portmill/portmill/pkg/classify"
	"github.com/portmill/portmill/pkg/convert"
	"github.com/portmill/portmill/pkg/platform"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// ErrAssembly marks an output-write fault. It is fatal for the request; no
// partial artifact is returned.
var ErrAssembly = errors.Base("assembling output artifact")

// Artifact is the assembled output
type Artifact struct {
	// Path is where the artifact was written
	Path string
	// IsArchive reports whether the artifact is an archive container
	IsArchive bool
}

// Options configures assembly
type Options struct {
	// OutputDir is where the artifact is written
	OutputDir string
	// SourcePlatform and TargetPlatform name the conversion pair
	SourcePlatform platform.Platform
	TargetPlatform platform.Platform
	// OriginalName is the uploaded file's base name, used in archive naming
	OriginalName string
	// SingleInput is true when the request carried one non-archive upload
	SingleInput bool
}

// Assemble writes the output artifact. A single result from a single
// non-archive input becomes a standalone file; everything else becomes an
// archive holding every result at its remapped path plus every preserve
// entry byte-for-byte at its original path.
func Assemble(ctx context.Context, results []convert.Result, preserves []classify.SourceEntry, opts Options) (*Artifact, error) {
	logger := zerolog.Ctx(ctx)

	if len(results) == 0 && len(preserves) == 0 {
		return nil, errors.Errorf("%w: nothing to assemble", ErrAssembly)
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, errors.Errorf("%w: creating output dir: %w", ErrAssembly, err)
	}

	if len(results) == 1 && len(preserves) == 0 && opts.SingleInput {
		return assembleSingle(ctx, results[0], opts)
	}

	name := fmt.Sprintf("converted_%s_to_%s_%s.zip",
		opts.SourcePlatform, opts.TargetPlatform, archiveBaseName(opts.OriginalName))
	outPath := filepath.Join(opts.OutputDir, name)

	f, err := os.Create(outPath)
	if err != nil {
		return nil, errors.Errorf("%w: creating archive: %w", ErrAssembly, err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	for _, r := range results {
		w, err := zw.Create(r.OutputFilename)
		if err != nil {
			return nil, errors.Errorf("%w: adding entry %s: %w", ErrAssembly, r.OutputFilename, err)
		}
		if _, err := io.WriteString(w, r.Content); err != nil {
			return nil, errors.Errorf("%w: writing entry %s: %w", ErrAssembly, r.OutputFilename, err)
		}
		logger.Debug().Str("entry", r.OutputFilename).Str("status", r.Status.String()).Msg("added converted entry")
	}

	for _, p := range preserves {
		if err := addPreserved(zw, p); err != nil {
			return nil, errors.Errorf("%w: preserving entry %s: %w", ErrAssembly, p.RelativePath, err)
		}
		logger.Debug().Str("entry", p.RelativePath).Msg("added preserved entry")
	}

	if err := zw.Close(); err != nil {
		return nil, errors.Errorf("%w: finalizing archive: %w", ErrAssembly, err)
	}
	if err := f.Close(); err != nil {
		return nil, errors.Errorf("%w: closing archive: %w", ErrAssembly, err)
	}

	logger.Info().Str("path", outPath).Int("converted", len(results)).Int("preserved", len(preserves)).Msg("assembled archive artifact")
	return &Artifact{Path: outPath, IsArchive: true}, nil
}

// assembleSingle writes one result as a standalone file
func assembleSingle(ctx context.Context, result convert.Result, opts Options) (*Artifact, error) {
	name := path.Base(result.OutputFilename)
	outPath := filepath.Join(opts.OutputDir, name)

	if err := os.WriteFile(outPath, []byte(result.Content), 0644); err != nil {
		return nil, errors.Errorf("%w: writing %s: %w", ErrAssembly, name, err)
	}

	zerolog.Ctx(ctx).Info().Str("path", outPath).Msg("assembled single-file artifact")
	return &Artifact{Path: outPath, IsArchive: false}, nil
}

// addPreserved copies one staged entry into the archive unmodified
func addPreserved(zw *zip.Writer, entry classify.SourceEntry) error {
	src, err := os.Open(entry.StagingPath)
	if err != nil {
		return errors.Errorf("opening staged entry: %w", err)
	}
	defer src.Close()

	w, err := zw.Create(entry.RelativePath)
	if err != nil {
		return errors.Errorf("creating archive entry: %w", err)
	}
	if _, err := io.Copy(w, src); err != nil {
		return errors.Errorf("copying entry bytes: %w", err)
	}
	return nil
}

// archiveBaseName strips the extension from the uploaded file's name,
// falling back to a default when the name is unusable
func archiveBaseName(original string) string {
	base := path.Base(strings.TrimSpace(original))
	if base == "" || base == "." || base == "/" {
		return "conversion"
	}
	return strings.TrimSuffix(base, path.Ext(base))
}
