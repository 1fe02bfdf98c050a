// Package platform defines the supported mobile platforms and the
// conversion-type filters applied to classified entries.
package platform

import (
	"path/filepath"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// Platform identifies a supported mobile source/target ecosystem
type Platform string

const (
	AndroidJava   Platform = "android_java"
	AndroidKotlin Platform = "android_kotlin"
	IOSSwift      Platform = "ios_swift"
)

// all holds every supported platform in display order
var all = []Platform{AndroidJava, AndroidKotlin, IOSSwift}

// sourceExtensions maps each platform to the extensions it recognizes as code
var sourceExtensions = map[Platform][]string{
	AndroidJava:   {".java", ".xml"},
	AndroidKotlin: {".kt", ".xml"},
	IOSSwift:      {".swift", ".storyboard", ".xib"},
}

// canonicalExtensions maps each platform to its single output extension
var canonicalExtensions = map[Platform]string{
	AndroidJava:   ".java",
	AndroidKotlin: ".kt",
	IOSSwift:      ".swift",
}

// displayNames maps each platform to its human-readable name used in prompts
var displayNames = map[Platform]string{
	AndroidJava:   "Android Java",
	AndroidKotlin: "Android Kotlin",
	IOSSwift:      "iOS Swift",
}

// Parse converts a string into a Platform
func Parse(s string) (Platform, error) {
	p := Platform(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", errors.Errorf("unsupported platform: %q (supported: %s)", s, strings.Join(Names(), ", "))
	}
	return p, nil
}

// Valid reports whether the platform is one of the supported ecosystems
func (p Platform) Valid() bool {
	_, ok := sourceExtensions[p]
	return ok
}

// All returns every supported platform
func All() []Platform {
	out := make([]Platform, len(all))
	copy(out, all)
	return out
}

// Names returns the identifiers of every supported platform
func Names() []string {
	names := make([]string, 0, len(all))
	for _, p := range all {
		names = append(names, string(p))
	}
	return names
}

// SourceExtensions returns the extensions this platform recognizes as code,
// markup included
func (p Platform) SourceExtensions() []string {
	exts := sourceExtensions[p]
	out := make([]string, len(exts))
	copy(out, exts)
	return out
}

// CanonicalExtension returns the single output extension for this platform
func (p Platform) CanonicalExtension() string {
	return canonicalExtensions[p]
}

// DisplayName returns the human-readable platform name
func (p Platform) DisplayName() string {
	if name, ok := displayNames[p]; ok {
		return name
	}
	return string(p)
}

// RecognizesExtension reports whether ext belongs to this platform's
// recognized code-extension set. The extension is matched case-insensitively
// and must include the leading dot.
func (p Platform) RecognizesExtension(ext string) bool {
	ext = strings.ToLower(ext)
	for _, e := range sourceExtensions[p] {
		if e == ext {
			return true
		}
	}
	return false
}

// markupExtensions are the layout/interface description extensions across
// all platforms
var markupExtensions = map[string]bool{
	".xml":        true,
	".storyboard": true,
	".xib":        true,
}

// IsMarkupExtension reports whether ext is a markup extension
func IsMarkupExtension(ext string) bool {
	return markupExtensions[strings.ToLower(ext)]
}

// logicExtensions are the pure source-code extensions across all platforms
var logicExtensions = map[string]bool{
	".java":  true,
	".kt":    true,
	".swift": true,
}

// IsLogicExtension reports whether ext is a source-code (non-markup) extension
func IsLogicExtension(ext string) bool {
	return logicExtensions[strings.ToLower(ext)]
}

// ArchiveExtension is the accepted archive container extension
const ArchiveExtension = ".zip"

// IsAllowedUpload reports whether filename carries an extension accepted at
// the upload boundary: the archive extension or any platform's recognized
// source/markup extension.
func IsAllowedUpload(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == ArchiveExtension {
		return true
	}
	if markupExtensions[ext] || logicExtensions[ext] {
		return true
	}
	return false
}

// IsArchive reports whether filename names an archive container
func IsArchive(filename string) bool {
	return strings.ToLower(filepath.Ext(filename)) == ArchiveExtension
}

// ConversionType selects which classified entries are submitted for
// conversion
type ConversionType string

const (
	// FullProject converts every classified code entry
	FullProject ConversionType = "full_project"
	// LogicOnly converts only source-code entries, markup excluded
	LogicOnly ConversionType = "logic_only"
	// LayoutsOnly converts only markup entries or paths containing "layout"
	LayoutsOnly ConversionType = "layouts_only"
)

// ParseConversionType converts a string into a ConversionType, defaulting to
// FullProject when empty
func ParseConversionType(s string) (ConversionType, error) {
	switch ConversionType(strings.ToLower(strings.TrimSpace(s))) {
	case "", FullProject:
		return FullProject, nil
	case LogicOnly:
		return LogicOnly, nil
	case LayoutsOnly:
		return LayoutsOnly, nil
	default:
		return "", errors.Errorf("unsupported conversion type: %q", s)
	}
}

// Matches reports whether a relative path passes this conversion-type filter
func (ct ConversionType) Matches(relativePath string) bool {
	switch ct {
	case LogicOnly:
		return IsLogicExtension(filepath.Ext(relativePath))
	case LayoutsOnly:
		if IsMarkupExtension(filepath.Ext(relativePath)) {
			return true
		}
		return strings.Contains(strings.ToLower(relativePath), "layout")
	default:
		return true
	}
}
