// Package translate defines the translation capability boundary and the
// instruction payloads sent across it.
package translate

import (
	"context"
	"path"
	"strings"

	"github.com/portmill/portmill/pkg/platform"
)

// Translator is the external transformation capability. It carries no retry
// or fallback logic of its own; all resilience belongs to the orchestrator.
type Translator interface {
	// Translate converts one file's source text between platforms. An empty
	// result must be reported as an error by the implementation or treated
	// as one by the caller.
	Translate(ctx context.Context, req Request) (string, error)
}

// Request describes one file to translate
type Request struct {
	// Source is the full source text
	Source string
	// SourcePlatform is the platform the text is written for
	SourcePlatform platform.Platform
	// TargetPlatform is the platform to translate into
	TargetPlatform platform.Platform
	// Filename is the entry's relative path, used for file-type context
	Filename string
}

// Kind is the file-type context used to pick an instruction sub-template
type Kind int

const (
	// KindSource is ordinary source code
	KindSource Kind = iota
	// KindLayout is layout/interface markup
	KindLayout
	// KindManifest is a platform manifest (AndroidManifest.xml, Info.plist)
	KindManifest
	// KindMarkup is other markup or configuration
	KindMarkup
)

// String returns the kind's name
func (k Kind) String() string {
	switch k {
	case KindLayout:
		return "layout"
	case KindManifest:
		return "manifest"
	case KindMarkup:
		return "markup"
	default:
		return "source"
	}
}

// ClassifyKind selects the file-type context from basename heuristics
func ClassifyKind(filename string) Kind {
	base := strings.ToLower(path.Base(filename))
	ext := path.Ext(base)

	if strings.Contains(base, "androidmanifest") || base == "info.plist" {
		return KindManifest
	}
	if !platform.IsMarkupExtension(ext) {
		return KindSource
	}
	if strings.Contains(strings.ToLower(filename), "layout") ||
		strings.HasPrefix(base, "activity_") ||
		ext == ".storyboard" || ext == ".xib" {
		return KindLayout
	}
	return KindMarkup
}

// SystemInstruction returns the role instruction for a platform pair
func SystemInstruction(source, target platform.Platform) string {
	var b strings.Builder
	b.WriteString("You are an expert mobile app developer specializing in cross-platform code conversion.\n")
	b.WriteString("Your task is to convert " + source.DisplayName() + " code to " + target.DisplayName() + " code while maintaining the same functionality.\n\n")
	b.WriteString("Special handling for different file types:\n")
	b.WriteString("- For source files: convert class structures, methods, and platform-specific APIs\n")
	b.WriteString("- For layout markup: convert to the target platform's equivalent layout approach\n")
	b.WriteString("- For platform manifests: convert to the target platform's manifest equivalent\n\n")
	b.WriteString("Key guidelines:\n")
	b.WriteString("1. Preserve the original logic and functionality\n")
	b.WriteString("2. Use platform-appropriate naming conventions and patterns\n")
	b.WriteString("3. Convert UI components to their platform equivalents\n")
	b.WriteString("4. Handle platform-specific APIs appropriately\n")
	b.WriteString("5. Maintain code structure and organization\n\n")
	b.WriteString("Return only the converted code without any explanations or markdown formatting.")
	return b.String()
}

// BuildPrompt renders the context-aware instruction payload for one request
func BuildPrompt(req Request) string {
	sourceName := req.SourcePlatform.DisplayName()
	targetName := req.TargetPlatform.DisplayName()

	var fileType, note string
	switch ClassifyKind(req.Filename) {
	case KindLayout:
		fileType = sourceName + " layout markup"
		note = "Convert this layout to the equivalent " + targetName + " layout approach"
	case KindManifest:
		fileType = sourceName + " platform manifest"
		note = "Convert this manifest to the equivalent " + targetName + " manifest format"
	case KindMarkup:
		fileType = sourceName + " markup configuration"
		note = "Convert this configuration to the equivalent " + targetName + " format"
	default:
		fileType = sourceName + " code"
		note = "Convert this code to " + targetName + " while maintaining the same functionality and structure"
	}

	var b strings.Builder
	b.WriteString("Convert the following " + fileType + " to " + targetName + ":\n\n")
	b.WriteString("File: " + req.Filename + "\n\n")
	b.WriteString("Source Code:\n")
	b.WriteString(req.Source)
	b.WriteString("\n\nInstructions: " + note + "\n")
	b.WriteString("- Follow platform best practices and conventions\n")
	b.WriteString("- Maintain equivalent functionality\n")
	b.WriteString("- Provide only the converted code without explanations\n")
	return b.String()
}
