// Copyright 2025 the portmill authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package convert orchestrates the translation of classified code entries,
// degrading to a deterministic local fallback when the capability fails.
package convert

import (
	"context"
	"os"
	"path"
	"strings"

	"github.com/portmill/portmill/pkg/classify"
	"github.com/portmill/portmill/pkg/platform"
	"github.com/portmill/portmill/pkg/retry"
	"github.com/portmill/portmill/pkg/translate"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 📊 Status marks how a conversion result was produced
type Status int

const (
	// StatusSuccess means the transformation capability produced the content
	StatusSuccess Status = iota
	// StatusFallback means the content was produced locally after the
	// capability was exhausted
	StatusFallback
)

// String returns a string representation of Status
func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusFallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// 📄 Result is the outcome for one code entry. Exactly one result is
// produced per entry that enters the orchestrator.
type Result struct {
	// OutputFilename is the entry's relative path remapped to the target
	// platform's canonical extension
	OutputFilename string
	// Content is the translated text, or the fallback payload
	Content string
	// Status marks success or fallback
	Status Status
	// Reason holds the failure description for fallback results
	Reason string
}

// 🔧 Options configures the converter
type Options struct {
	// Translator is the external transformation capability
	Translator translate.Translator
	// Policy bounds attempts per entry; the zero value means the default
	// policy (3 attempts, 2s base delay, doubling)
	Policy retry.Policy
}

// 🎯 Converter drives entries through the transformation capability one at a
// time
type Converter struct {
	translator translate.Translator
	policy     retry.Policy
}

// 🏭 New creates a converter with the given options
func New(opts Options) (*Converter, error) {
	if opts.Translator == nil {
		return nil, errors.Errorf("translator is required")
	}
	policy := opts.Policy
	if policy.MaxAttempts == 0 && policy.BaseDelay == 0 {
		policy = retry.Default()
	}
	if err := policy.Validate(); err != nil {
		return nil, errors.Errorf("invalid retry policy: %w", err)
	}
	return &Converter{translator: opts.Translator, policy: policy}, nil
}

// Convert translates every entry in input order, one result per entry. A
// failing entry degrades to a fallback result; the batch never aborts.
func (c *Converter) Convert(ctx context.Context, entries []classify.SourceEntry, source, target platform.Platform) []Result {
	logger := zerolog.Ctx(ctx)
	logger.Info().
		Int("entries", len(entries)).
		Str("source", string(source)).
		Str("target", string(target)).
		Msg("starting conversion")

	results := make([]Result, 0, len(entries))
	for _, entry := range entries {
		results = append(results, c.convertEntry(ctx, entry, source, target))
	}

	fallbacks := 0
	for _, r := range results {
		if r.Status == StatusFallback {
			fallbacks++
		}
	}
	logger.Info().
		Int("results", len(results)).
		Int("fallbacks", fallbacks).
		Msg("conversion finished")

	return results
}

// convertEntry produces exactly one result for one entry
func (c *Converter) convertEntry(ctx context.Context, entry classify.SourceEntry, source, target platform.Platform) Result {
	logger := zerolog.Ctx(ctx)
	outputName := RemapFilename(entry.RelativePath, target)

	data, err := os.ReadFile(entry.StagingPath)
	if err != nil {
		// The staged copy is gone or unreadable; the entry still gets a
		// result so the batch loses nothing silently.
		logger.Error().Str("entry", entry.RelativePath).Err(err).Msg("reading staged source failed")
		return Result{
			OutputFilename: outputName,
			Content:        fallbackContent("", source, target, entry.RelativePath, "reading staged source failed"),
			Status:         StatusFallback,
			Reason:         "reading staged source failed",
		}
	}
	sourceText := string(data)

	req := translate.Request{
		Source:         sourceText,
		SourcePlatform: source,
		TargetPlatform: target,
		Filename:       entry.RelativePath,
	}

	var translated string
	err = c.policy.Do(ctx, func(ctx context.Context) error {
		out, err := c.translator.Translate(ctx, req)
		if err != nil {
			return err
		}
		out = stripFences(strings.TrimSpace(out))
		if out == "" {
			// An empty answer is indistinguishable from a transport failure
			return errors.Errorf("empty response")
		}
		translated = out
		return nil
	})
	if err != nil {
		logger.Warn().Str("entry", entry.RelativePath).Err(err).Msg("translation exhausted, using fallback")
		return Result{
			OutputFilename: outputName,
			Content:        fallbackContent(sourceText, source, target, entry.RelativePath, err.Error()),
			Status:         StatusFallback,
			Reason:         err.Error(),
		}
	}

	logger.Debug().Str("entry", entry.RelativePath).Str("output", outputName).Msg("entry converted")
	return Result{
		OutputFilename: outputName,
		Content:        translated,
		Status:         StatusSuccess,
	}
}

// RemapFilename strips the entry's extension and applies the target
// platform's canonical extension; the base name is otherwise unchanged.
func RemapFilename(relativePath string, target platform.Platform) string {
	ext := path.Ext(relativePath)
	return strings.TrimSuffix(relativePath, ext) + target.CanonicalExtension()
}

// stripFences removes a fenced-code wrapper the capability may put around
// its answer
func stripFences(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	lines := strings.Split(s, "\n")
	if strings.HasPrefix(lines[0], "```") {
		lines = lines[1:]
	}
	if len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "```" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}
