// Package classify partitions the entries of an uploaded archive into code,
// preserve, skipped, and errored sets ahead of conversion.
package classify

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/portmill/portmill/pkg/config"
	"github.com/portmill/portmill/pkg/platform"
	"github.com/portmill/portmill/pkg/staging"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// ErrInvalidArchive marks a corrupt archive container. It fails the whole
// request; per-entry failures never carry it.
var ErrInvalidArchive = errors.Base("invalid archive container")

// sampleSize is how many leading bytes are decoded to verify an extracted
// entry is text
const sampleSize = 512

// SourceEntry is a staged archive entry. Each entry is consumed exactly once
// by the orchestrator or the assembler.
type SourceEntry struct {
	// StagingPath is the absolute path of the extracted copy
	StagingPath string
	// RelativePath is the entry's path inside the archive
	RelativePath string
}

// Classification is the result of scanning one archive. Every non-directory
// entry lands in exactly one of Code, Skipped, or Errored; Preserve is
// evaluated independently and may overlap Skipped.
type Classification struct {
	Code     []SourceEntry
	Preserve []SourceEntry
	Skipped  []string
	Errored  []string
}

// Total returns how many non-directory entries were scanned
func (c *Classification) Total() int {
	return len(c.Code) + len(c.Skipped) + len(c.Errored)
}

// Merge appends another classification's sets onto this one
func (c *Classification) Merge(other *Classification) {
	c.Code = append(c.Code, other.Code...)
	c.Preserve = append(c.Preserve, other.Preserve...)
	c.Skipped = append(c.Skipped, other.Skipped...)
	c.Errored = append(c.Errored, other.Errored...)
}

// Classifier scans archives against an immutable rule set
type Classifier struct {
	rules *config.RuleSet
}

// New creates a classifier. A nil rule set falls back to the defaults.
func New(rules *config.RuleSet) *Classifier {
	if rules == nil {
		rules = config.DefaultRuleSet()
	}
	return &Classifier{rules: rules}
}

// ValidateArchive reports whether path is a readable archive container
func ValidateArchive(path string) error {
	r, err := zip.OpenReader(path)
	if err != nil {
		return errors.Errorf("%w: %w", ErrInvalidArchive, err)
	}
	return r.Close()
}

// Classify scans every entry of the archive at archivePath for the given
// source platform, extracting accepted entries into stage. A corrupt
// container fails the whole call; per-entry extraction failures are isolated
// and recorded in Errored.
func (c *Classifier) Classify(ctx context.Context, archivePath string, p platform.Platform, stage *staging.Dir) (*Classification, error) {
	logger := zerolog.Ctx(ctx)

	if !p.Valid() {
		return nil, errors.Errorf("unsupported platform: %q", p)
	}

	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, errors.Errorf("%w: opening %s: %w", ErrInvalidArchive, archivePath, err)
	}
	defer r.Close()

	logger.Info().Str("archive", archivePath).Int("entries", len(r.File)).Msg("scanning archive")

	result := &Classification{}
	for _, f := range r.File {
		if f.FileInfo().IsDir() || strings.HasSuffix(f.Name, "/") {
			continue
		}

		rel := path.Clean(f.Name)
		if path.IsAbs(rel) || rel == ".." || strings.HasPrefix(rel, "../") {
			// Traversal entries are never extracted
			logger.Warn().Str("entry", f.Name).Msg("rejecting traversal entry")
			result.Errored = append(result.Errored, f.Name)
			continue
		}

		errored := false
		if reason, skip := c.shouldSkip(rel); skip {
			logger.Debug().Str("entry", rel).Str("reason", reason).Msg("entry skipped")
			result.Skipped = append(result.Skipped, rel)
		} else if p.RecognizesExtension(path.Ext(rel)) {
			entry, err := c.extractCodeEntry(f, rel, stage)
			if err != nil {
				logger.Warn().Str("entry", rel).Err(err).Msg("entry extraction failed")
				result.Errored = append(result.Errored, rel)
				errored = true
			} else {
				logger.Debug().Str("entry", rel).Msg("entry accepted as code")
				result.Code = append(result.Code, entry)
			}
		} else {
			logger.Debug().Str("entry", rel).Msg("entry skipped: unrecognized extension")
			result.Skipped = append(result.Skipped, rel)
		}

		// Preserve membership is independent of the skip outcome: an icon
		// image is skipped from conversion but still belongs in the output.
		if !errored && c.shouldPreserve(rel) {
			dst := stage.Join("preserve", filepath.FromSlash(rel))
			if err := extractTo(f, dst); err != nil {
				logger.Warn().Str("entry", rel).Err(err).Msg("preserving entry failed")
				continue
			}
			logger.Debug().Str("entry", rel).Msg("entry preserved")
			result.Preserve = append(result.Preserve, SourceEntry{StagingPath: dst, RelativePath: rel})
		}
	}

	logger.Info().
		Int("code", len(result.Code)).
		Int("preserve", len(result.Preserve)).
		Int("skipped", len(result.Skipped)).
		Int("errored", len(result.Errored)).
		Msg("archive classified")

	return result, nil
}

// ClassifyFile stages a single loose (non-archive) upload as one code entry
// after the same verification an archive entry gets
func (c *Classifier) ClassifyFile(ctx context.Context, filePath, relName string, p platform.Platform, stage *staging.Dir) (SourceEntry, error) {
	if !p.Valid() {
		return SourceEntry{}, errors.Errorf("unsupported platform: %q", p)
	}
	if !p.RecognizesExtension(filepath.Ext(relName)) {
		return SourceEntry{}, errors.Errorf("file %s does not match %s extensions", relName, p)
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return SourceEntry{}, errors.Errorf("reading upload: %w", err)
	}
	if len(data) == 0 {
		return SourceEntry{}, errors.Errorf("upload %s is empty", relName)
	}
	if !looksLikeText(leadingSample(data)) {
		return SourceEntry{}, errors.Errorf("upload %s is not text", relName)
	}

	dst := stage.Join("code", filepath.FromSlash(relName))
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return SourceEntry{}, errors.Errorf("creating staging dirs: %w", err)
	}
	if err := os.WriteFile(dst, data, 0644); err != nil {
		return SourceEntry{}, errors.Errorf("staging upload: %w", err)
	}

	zerolog.Ctx(ctx).Debug().Str("entry", relName).Msg("staged loose upload")
	return SourceEntry{StagingPath: dst, RelativePath: relName}, nil
}

// FilterEntries applies the conversion-type filter to a code-entry list.
// This runs before the orchestrator, never inside it.
func FilterEntries(entries []SourceEntry, ct platform.ConversionType) []SourceEntry {
	if ct == platform.FullProject {
		return entries
	}
	filtered := make([]SourceEntry, 0, len(entries))
	for _, e := range entries {
		if ct.Matches(e.RelativePath) {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

// shouldSkip evaluates the skip predicate against a cleaned relative path
func (c *Classifier) shouldSkip(rel string) (string, bool) {
	lower := strings.ToLower(rel)
	base := path.Base(lower)

	for _, name := range c.rules.SkipBasenames {
		if base == name {
			return "denied basename", true
		}
	}

	for _, folder := range c.rules.SkipFolders {
		if ok, _ := doublestar.Match(folder+"/**", lower); ok {
			return "denied folder", true
		}
		if ok, _ := doublestar.Match("**/"+folder+"/**", lower); ok {
			return "denied folder", true
		}
	}

	for _, suffix := range c.rules.SkipSuffixes {
		if strings.HasSuffix(lower, suffix) || strings.Contains(lower, suffix) {
			return "denied suffix", true
		}
	}

	if strings.Count(rel, "/") > c.rules.MaxDepth {
		return "path too deep", true
	}

	for _, sub := range c.rules.SuspiciousSubstrings {
		if strings.Contains(lower, sub) {
			return "suspicious path", true
		}
	}

	return "", false
}

// shouldPreserve evaluates the preserve predicate against a cleaned relative
// path
func (c *Classifier) shouldPreserve(rel string) bool {
	lower := strings.ToLower(rel)
	base := path.Base(lower)

	for _, suffix := range c.rules.PreserveSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	for _, name := range c.rules.PreserveBasenames {
		if strings.Contains(base, name) {
			return true
		}
	}
	return false
}

// extractCodeEntry extracts one archive entry into staging and verifies it
// is non-empty text
func (c *Classifier) extractCodeEntry(f *zip.File, rel string, stage *staging.Dir) (SourceEntry, error) {
	dst := stage.Join("code", filepath.FromSlash(rel))
	if err := extractTo(f, dst); err != nil {
		return SourceEntry{}, err
	}

	info, err := os.Stat(dst)
	if err != nil {
		return SourceEntry{}, errors.Errorf("verifying extraction: %w", err)
	}
	if info.Size() == 0 {
		return SourceEntry{}, errors.Errorf("entry %s is empty", rel)
	}

	sample := make([]byte, sampleSize)
	src, err := os.Open(dst)
	if err != nil {
		return SourceEntry{}, errors.Errorf("verifying extraction: %w", err)
	}
	n, err := io.ReadFull(src, sample)
	src.Close()
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return SourceEntry{}, errors.Errorf("sampling entry: %w", err)
	}
	if !looksLikeText(sample[:n]) {
		return SourceEntry{}, errors.Errorf("entry %s is not text", rel)
	}

	return SourceEntry{StagingPath: dst, RelativePath: rel}, nil
}

// extractTo copies one archive entry to dst, creating parent directories
func extractTo(f *zip.File, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return errors.Errorf("creating staging dirs: %w", err)
	}

	src, err := f.Open()
	if err != nil {
		return errors.Errorf("opening archive entry: %w", err)
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return errors.Errorf("creating staged file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, src); err != nil {
		return errors.Errorf("extracting entry: %w", err)
	}
	return nil
}

// looksLikeText reports whether a leading byte sample decodes as text. A
// trailing rune may be cut mid-sequence by the sample boundary.
func looksLikeText(sample []byte) bool {
	if len(sample) == 0 {
		return false
	}
	if bytes.IndexByte(sample, 0) >= 0 {
		return false
	}
	for i := 0; i < utf8.UTFMax && len(sample) > 0; i++ {
		if utf8.Valid(sample) {
			return true
		}
		sample = sample[:len(sample)-1]
	}
	return false
}

// leadingSample returns the first sampleSize bytes of data
func leadingSample(data []byte) []byte {
	if len(data) > sampleSize {
		return data[:sampleSize]
	}
	return data
}
