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

// Package commands implements the portmill subcommands.
package commands

import (
	"os"
	"path/filepath"
	"time"

	"github.com/portmill/portmill/cmd/portmill/opts"
	"github.com/portmill/portmill/pkg/assemble"
	"github.com/portmill/portmill/pkg/classify"
	"github.com/portmill/portmill/pkg/convert"
	"github.com/portmill/portmill/pkg/log"
	"github.com/portmill/portmill/pkg/platform"
	"github.com/portmill/portmill/pkg/retry"
	"github.com/portmill/portmill/pkg/staging"
	"github.com/portmill/portmill/pkg/translate"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"
)

// apiKeyEnv is where the translation capability's credential is read from
const apiKeyEnv = "GEMINI_API_KEY"

// 🎯 NewConvertCmd creates the convert command
func NewConvertCmd(ro *opts.RootOpts) *cobra.Command {
	var (
		sourceFlag string
		targetFlag string
		typeFlag   string
		outputFlag string
	)

	cmd := &cobra.Command{
		Use:   "convert [flags] <input>...",
		Short: "Convert uploaded source files or archives to another platform",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, ro, convertFlags{
				source: sourceFlag,
				target: targetFlag,
				ctype:  typeFlag,
				output: outputFlag,
				inputs: args,
			})
		},
	}

	cmd.Flags().StringVarP(&sourceFlag, "source", "s", "", "source platform (android_java, android_kotlin, ios_swift)")
	cmd.Flags().StringVarP(&targetFlag, "target", "t", "", "target platform")
	cmd.Flags().StringVar(&typeFlag, "type", "full_project", "conversion type (full_project, logic_only, layouts_only)")
	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "output directory (overrides config)")
	_ = cmd.MarkFlagRequired("source")
	_ = cmd.MarkFlagRequired("target")

	return cmd
}

type convertFlags struct {
	source string
	target string
	ctype  string
	output string
	inputs []string
}

// runConvert drives the whole pipeline: validate, stage, classify, convert,
// assemble
func runConvert(cmd *cobra.Command, ro *opts.RootOpts, flags convertFlags) error {
	ctx := cmd.Context()
	logger := zerolog.Ctx(ctx)
	cfg := ro.Config
	console := ro.Logger
	started := time.Now()

	source, err := platform.Parse(flags.source)
	if err != nil {
		return errors.Errorf("parsing source platform: %w", err)
	}
	target, err := platform.Parse(flags.target)
	if err != nil {
		return errors.Errorf("parsing target platform: %w", err)
	}
	if source == target {
		return errors.Errorf("source and target platforms must differ: %s", source)
	}
	ctype, err := platform.ParseConversionType(flags.ctype)
	if err != nil {
		return errors.Errorf("parsing conversion type: %w", err)
	}

	for _, input := range flags.inputs {
		if !platform.IsAllowedUpload(input) {
			return errors.Errorf("unsupported input file type: %s", filepath.Base(input))
		}
	}

	outputDir := cfg.OutputDir
	if flags.output != "" {
		outputDir = flags.output
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return errors.Errorf("creating output dir: %w", err)
	}

	translator := ro.Translator
	if translator == nil {
		translator, err = translate.NewGeminiTranslator(ctx, os.Getenv(apiKeyEnv), cfg.Model)
		if err != nil {
			return errors.Errorf("creating translator: %w", err)
		}
	}

	stage, err := staging.New(ctx, cfg.StagingRoot)
	if err != nil {
		return errors.Errorf("creating staging dir: %w", err)
	}
	defer func() {
		if err := stage.Release(ctx); err != nil {
			logger.Warn().Err(err).Msg("releasing staging dir")
		}
	}()

	console.Header("converting sources")
	console.StartConversion(string(source), string(target), inputSummary(flags.inputs))

	classifier := classify.New(cfg.Rules)
	merged := &classify.Classification{}
	singleInput := len(flags.inputs) == 1 && !platform.IsArchive(flags.inputs[0])

	for _, input := range flags.inputs {
		if platform.IsArchive(input) {
			cls, err := classifier.Classify(ctx, input, source, stage)
			if err != nil {
				return errors.Errorf("classifying %s: %w", filepath.Base(input), err)
			}
			merged.Merge(cls)
			continue
		}
		entry, err := classifier.ClassifyFile(ctx, input, filepath.Base(input), source, stage)
		if err != nil {
			return errors.Errorf("staging %s: %w", filepath.Base(input), err)
		}
		merged.Code = append(merged.Code, entry)
	}

	for _, skipped := range merged.Skipped {
		console.LogEntry(log.EntryOperation{Path: skipped, Action: log.ActionSkipped})
	}
	for _, errored := range merged.Errored {
		console.LogEntry(log.EntryOperation{Path: errored, Action: log.ActionErrored})
	}

	code := classify.FilterEntries(merged.Code, ctype)
	if len(code) == 0 {
		return errors.Errorf("no convertible files matched conversion type %q", ctype)
	}

	converter, err := convert.New(convert.Options{
		Translator: translator,
		Policy: retry.Policy{
			MaxAttempts: cfg.MaxAttempts,
			BaseDelay:   cfg.BaseDelay(),
			Multiplier:  2,
		},
	})
	if err != nil {
		return errors.Errorf("creating converter: %w", err)
	}

	results := converter.Convert(ctx, code, source, target)
	for _, r := range results {
		action := log.ActionConverted
		detail := r.OutputFilename
		if r.Status == convert.StatusFallback {
			action = log.ActionFallback
			detail = r.Reason
		}
		console.LogEntry(log.EntryOperation{Path: r.OutputFilename, Action: action, Detail: detail})
	}
	for _, p := range merged.Preserve {
		console.LogEntry(log.EntryOperation{Path: p.RelativePath, Action: log.ActionPreserved})
	}

	artifact, err := assemble.Assemble(ctx, results, merged.Preserve, assemble.Options{
		OutputDir:      outputDir,
		SourcePlatform: source,
		TargetPlatform: target,
		OriginalName:   filepath.Base(flags.inputs[0]),
		SingleInput:    singleInput,
	})
	if err != nil {
		return errors.Errorf("assembling output: %w", err)
	}

	printSummary(console, results, merged, time.Since(started))
	console.Successf("wrote %s", artifact.Path)
	return nil
}

// inputSummary names the request for the conversion header
func inputSummary(inputs []string) string {
	if len(inputs) == 1 {
		return filepath.Base(inputs[0])
	}
	return filepath.Base(inputs[0]) + " (+more)"
}

// printSummary reports the request's outcome counts
func printSummary(console *log.Logger, results []convert.Result, cls *classify.Classification, elapsed time.Duration) {
	succeeded := 0
	for _, r := range results {
		if r.Status == convert.StatusSuccess {
			succeeded++
		}
	}
	fallbacks := len(results) - succeeded

	console.Successf("%d of %d entries converted in %s", succeeded, len(results), elapsed.Round(time.Millisecond))
	if fallbacks > 0 {
		console.Warningf("%d entries degraded to fallback content", fallbacks)
	}
	if len(cls.Errored) > 0 {
		console.Warningf("%d entries could not be read", len(cls.Errored))
	}
}
