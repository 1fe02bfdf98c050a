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

package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse parses the config from bytes
	Parse(ctx context.Context, data []byte) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 🚫 RuleSet holds the immutable skip/preserve pattern tables consumed by the
// classifier. Fields left empty in a loaded config fall back to the defaults.
type RuleSet struct {
	// SkipBasenames are exact basename matches, compared lowercased
	SkipBasenames []string `json:"skip_basenames" yaml:"skip_basenames" hcl:"skip_basenames,optional"`
	// SkipFolders are folder names excluded wherever they appear in a path
	SkipFolders []string `json:"skip_folders" yaml:"skip_folders" hcl:"skip_folders,optional"`
	// SkipSuffixes match as path suffix or substring, compared lowercased
	SkipSuffixes []string `json:"skip_suffixes" yaml:"skip_suffixes" hcl:"skip_suffixes,optional"`
	// SuspiciousSubstrings mark generated or build-output artifacts
	SuspiciousSubstrings []string `json:"suspicious_substrings" yaml:"suspicious_substrings" hcl:"suspicious_substrings,optional"`
	// MaxDepth is the maximum number of path segments before an entry is
	// treated as a build artifact
	MaxDepth int `json:"max_depth" yaml:"max_depth" hcl:"max_depth,optional"`
	// PreserveSuffixes match files copied verbatim into the output
	PreserveSuffixes []string `json:"preserve_suffixes" yaml:"preserve_suffixes" hcl:"preserve_suffixes,optional"`
	// PreserveBasenames are basename substring matches for preserved files
	PreserveBasenames []string `json:"preserve_basenames" yaml:"preserve_basenames" hcl:"preserve_basenames,optional"`
}

// 📚 Config represents the complete runtime configuration
type Config struct {
	Rules       *RuleSet `json:"rules,omitempty" yaml:"rules,omitempty" hcl:"rules,block"`
	StagingRoot string   `json:"staging_root,omitempty" yaml:"staging_root,omitempty" hcl:"staging_root,optional"`
	OutputDir   string   `json:"output_dir,omitempty" yaml:"output_dir,omitempty" hcl:"output_dir,optional"`

	// Model is the translation model identifier
	Model string `json:"model,omitempty" yaml:"model,omitempty" hcl:"model,optional"`

	// MaxAttempts bounds translation attempts per entry
	MaxAttempts int `json:"max_attempts,omitempty" yaml:"max_attempts,omitempty" hcl:"max_attempts,optional"`
	// BaseDelaySeconds is the initial retry backoff delay
	BaseDelaySeconds int `json:"base_delay_seconds,omitempty" yaml:"base_delay_seconds,omitempty" hcl:"base_delay_seconds,optional"`
}

// DefaultRuleSet returns the compiled-in skip/preserve tables
func DefaultRuleSet() *RuleSet {
	return &RuleSet{
		SkipBasenames: []string{
			"gradlew", "gradlew.bat", "local.properties", ".ds_store", "thumbs.db",
		},
		SkipFolders: []string{
			// Version control and IDE
			".git", ".idea", ".vscode", "__pycache__",
			// Build and cache folders
			".gradle", "build", "bin", "obj", "target",
			// Android specific
			"gradle",
			// iOS specific
			"pods", "deriveddata", "*.xcworkspace", "*.xcodeproj",
		},
		SkipSuffixes: []string{
			// Images and media
			".png", ".jpg", ".jpeg", ".gif", ".ico", ".svg", ".webp",
			".mp3", ".mp4", ".avi", ".mov", ".wav",
			// Configuration files that never need conversion
			"proguard-rules.pro", ".pro", ".properties",
			".gitignore", ".gitattributes",
			// Documentation
			".md", ".txt", ".pdf", ".docx",
			// Nested archives
			".zip", ".tar", ".gz", ".rar",
		},
		SuspiciousSubstrings: []string{
			"generated", "cache", "temp", "tmp", ".class", ".dex", ".o",
		},
		MaxDepth: 6,
		PreserveSuffixes: []string{
			".png", ".jpg", ".jpeg", ".gif", ".ico", ".svg", ".webp",
			".mp3", ".mp4", ".avi", ".mov", ".wav",
		},
		PreserveBasenames: []string{
			"androidmanifest.xml", "info.plist",
		},
	}
}

// DefaultConfig returns the configuration used when no config file is given
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// 🎯 Load loads the configuration from a file
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading configuration")

	// Read config file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	// Get parser
	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	// Parse config
	cfg, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// 🔍 Validate checks the configuration and fills in defaults
func (cfg *Config) Validate() error {
	if cfg.MaxAttempts < 0 {
		return errors.Errorf("max_attempts must not be negative")
	}
	if cfg.BaseDelaySeconds < 0 {
		return errors.Errorf("base_delay_seconds must not be negative")
	}

	cfg.applyDefaults()

	// Clean up paths
	cfg.StagingRoot = filepath.Clean(cfg.StagingRoot)
	cfg.OutputDir = filepath.Clean(cfg.OutputDir)

	return nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Rules == nil {
		cfg.Rules = DefaultRuleSet()
	} else {
		cfg.Rules.applyDefaults()
	}
	if cfg.StagingRoot == "" {
		cfg.StagingRoot = filepath.Join(os.TempDir(), "portmill-staging")
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "converted"
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.0-flash"
	}
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.BaseDelaySeconds == 0 {
		cfg.BaseDelaySeconds = 2
	}
}

func (rs *RuleSet) applyDefaults() {
	def := DefaultRuleSet()
	if rs.SkipBasenames == nil {
		rs.SkipBasenames = def.SkipBasenames
	}
	if rs.SkipFolders == nil {
		rs.SkipFolders = def.SkipFolders
	}
	if rs.SkipSuffixes == nil {
		rs.SkipSuffixes = def.SkipSuffixes
	}
	if rs.SuspiciousSubstrings == nil {
		rs.SuspiciousSubstrings = def.SuspiciousSubstrings
	}
	if rs.MaxDepth == 0 {
		rs.MaxDepth = def.MaxDepth
	}
	if rs.PreserveSuffixes == nil {
		rs.PreserveSuffixes = def.PreserveSuffixes
	}
	if rs.PreserveBasenames == nil {
		rs.PreserveBasenames = def.PreserveBasenames
	}
}

// BaseDelay returns the backoff base delay as a duration
func (cfg *Config) BaseDelay() time.Duration {
	return time.Duration(cfg.BaseDelaySeconds) * time.Second
}

// 📝 String returns a short description of the config
func (cfg *Config) String() string {
	return strings.Join([]string{
		"staging=" + cfg.StagingRoot,
		"output=" + cfg.OutputDir,
		"model=" + cfg.Model,
	}, " ")
}
