// Package staging manages the request-local scratch storage that classified
// entries are extracted into before conversion.
package staging

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// Dir is a request-scoped staging directory. It is acquired once per request
// and must be released on every exit path; Release is idempotent.
type Dir struct {
	path string

	mu       sync.Mutex
	released bool
}

// New creates a staging directory under root, creating root if needed
func New(ctx context.Context, root string) (*Dir, error) {
	logger := zerolog.Ctx(ctx)

	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, errors.Errorf("creating staging root: %w", err)
	}

	path, err := os.MkdirTemp(root, "request-")
	if err != nil {
		return nil, errors.Errorf("creating staging dir: %w", err)
	}

	logger.Debug().Str("path", path).Msg("acquired staging dir")
	return &Dir{path: path}, nil
}

// Path returns the absolute path of the staging directory
func (d *Dir) Path() string {
	return d.path
}

// Join resolves a path inside the staging directory
func (d *Dir) Join(parts ...string) string {
	return filepath.Join(append([]string{d.path}, parts...)...)
}

// Release removes the staging directory and everything under it. Safe to
// call more than once, including via defer alongside an explicit call.
func (d *Dir) Release(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.released {
		return nil
	}
	d.released = true

	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", d.path).Msg("releasing staging dir")

	if err := os.RemoveAll(d.path); err != nil {
		return errors.Errorf("removing staging dir: %w", err)
	}
	return nil
}

// Sweep removes staging directories under root older than maxAge and returns
// how many were removed. Orphans accumulate when a process dies between
// acquisition and release, so callers run this periodically.
func Sweep(ctx context.Context, root string, maxAge time.Duration) (int, error) {
	logger := zerolog.Ctx(ctx)

	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, errors.Errorf("reading staging root: %w", err)
	}

	cutoff := time.Now().Add(-maxAge)

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(4)

	var mu sync.Mutex
	removed := 0

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			logger.Warn().Str("entry", entry.Name()).Err(err).Msg("skipping unreadable staging entry")
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}

		path := filepath.Join(root, entry.Name())
		g.Go(func() error {
			if err := os.RemoveAll(path); err != nil {
				return errors.Errorf("removing stale staging dir %s: %w", path, err)
			}
			logger.Debug().Str("path", path).Msg("removed stale staging dir")
			mu.Lock()
			removed++
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return removed, err
	}
	return removed, nil
}
