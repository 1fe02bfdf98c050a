package classify_test

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/portmill/portmill/pkg/classify"
	"github.com/portmill/portmill/pkg/config"
	"github.com/portmill/portmill/pkg/platform"
	"github.com/portmill/portmill/pkg/staging"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 🧪 createTestEnv creates a context, staging dir, and classifier
func createTestEnv(t *testing.T) (context.Context, *classify.Classifier, *staging.Dir) {
	logger := zerolog.New(zerolog.NewTestWriter(t))
	ctx := logger.WithContext(context.Background())

	stage, err := staging.New(ctx, t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { stage.Release(ctx) })

	return ctx, classify.New(config.DefaultRuleSet()), stage
}

// 🧪 writeZip builds an archive from entry name -> content. Entries whose
// name ends in "/" become directories.
func writeZip(t *testing.T, entries map[string][]byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "project.zip")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	for name, content := range entries {
		w, err := zw.Create(name)
		require.NoError(t, err)
		if content != nil {
			_, err = w.Write(content)
			require.NoError(t, err)
		}
	}
	require.NoError(t, zw.Close())
	return path
}

func relPaths(entries []classify.SourceEntry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.RelativePath)
	}
	return out
}

func TestClassifyProjectScenario(t *testing.T) {
	ctx, classifier, stage := createTestEnv(t)

	archive := writeZip(t, map[string][]byte{
		"app/":                      nil,
		"app/MainActivity.java":     []byte("public class MainActivity {}"),
		"app/res/activity_main.xml": []byte("<LinearLayout></LinearLayout>"),
		"app/res/icon.png":          {0x89, 0x50, 0x4E, 0x47},
		"gradlew":                   []byte("#!/bin/sh"),
	})

	result, err := classifier.Classify(ctx, archive, platform.AndroidJava, stage)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"app/MainActivity.java", "app/res/activity_main.xml"}, relPaths(result.Code))
	assert.ElementsMatch(t, []string{"app/res/icon.png"}, relPaths(result.Preserve))
	assert.Contains(t, result.Skipped, "gradlew")
	assert.Empty(t, result.Errored)

	// Staged code entries must exist and be readable
	for _, entry := range result.Code {
		content, err := os.ReadFile(entry.StagingPath)
		require.NoError(t, err)
		assert.NotEmpty(t, content)
	}
}

func TestClassifyExhaustive(t *testing.T) {
	ctx, classifier, stage := createTestEnv(t)

	archive := writeZip(t, map[string][]byte{
		"src/":              nil,
		"src/Main.java":     []byte("class Main {}"),
		"src/Empty.java":    {},
		"README.md":         []byte("docs"),
		"mystery.dat":       []byte("???"),
		"gradlew.bat":       []byte("@echo off"),
		".git/config":       []byte("[core]"),
		"a/b/c/d/e/f/g/h.java": []byte("class H {}"),
	})

	result, err := classifier.Classify(ctx, archive, platform.AndroidJava, stage)
	require.NoError(t, err)

	// Every non-directory entry lands in exactly one set
	assert.Equal(t, 7, result.Total(), "|code| + |skipped| + |errored| must equal non-directory entries")

	assert.ElementsMatch(t, []string{"src/Main.java"}, relPaths(result.Code))
	assert.ElementsMatch(t, []string{"src/Empty.java"}, result.Errored, "empty entries are extraction errors")
	assert.Contains(t, result.Skipped, "README.md", "documentation suffix is denied")
	assert.Contains(t, result.Skipped, "mystery.dat", "unrecognized extensions are counted as skipped")
	assert.Contains(t, result.Skipped, "gradlew.bat", "wrapper scripts are denied by basename")
	assert.Contains(t, result.Skipped, ".git/config", "version-control folders are denied")
	assert.Contains(t, result.Skipped, "a/b/c/d/e/f/g/h.java", "deep paths are denied regardless of extension")
}

func TestClassifySkipByExactBasenameBeatsExtension(t *testing.T) {
	ctx, classifier, stage := createTestEnv(t)

	// local.properties would never be code anyway; a denied basename with a
	// recognized extension is the interesting case
	archive := writeZip(t, map[string][]byte{
		"app/src/main/cached.xml":    []byte("<x/>"),
		"app/generated/pieces.java":  []byte("class P {}"),
		"app/local.properties":       []byte("sdk.dir=/opt"),
	})

	result, err := classifier.Classify(ctx, archive, platform.AndroidJava, stage)
	require.NoError(t, err)

	assert.Empty(t, result.Code)
	assert.Contains(t, result.Skipped, "app/src/main/cached.xml", "suspicious substring applies to any extension")
	assert.Contains(t, result.Skipped, "app/generated/pieces.java")
	assert.Contains(t, result.Skipped, "app/local.properties")
}

func TestClassifyPreserveOverlapsSkip(t *testing.T) {
	ctx, classifier, stage := createTestEnv(t)

	archive := writeZip(t, map[string][]byte{
		"res/icon.png":        {0x89, 0x50},
		"res/theme.mp3":       {0x00, 0x01},
		"AndroidManifest.xml": []byte("<manifest/>"),
	})

	result, err := classifier.Classify(ctx, archive, platform.AndroidJava, stage)
	require.NoError(t, err)

	// icon.png matches the skip-by-extension rule AND the preserve suffix
	assert.Contains(t, result.Skipped, "res/icon.png")
	assert.Contains(t, relPaths(result.Preserve), "res/icon.png",
		"preserve membership is independent of skip membership")
	assert.Contains(t, relPaths(result.Preserve), "res/theme.mp3")
	assert.Contains(t, relPaths(result.Preserve), "AndroidManifest.xml")

	// Manifest is markup, so it is also a code entry for android_java
	assert.Contains(t, relPaths(result.Code), "AndroidManifest.xml")
}

func TestClassifyPreserveBytesUntouched(t *testing.T) {
	ctx, classifier, stage := createTestEnv(t)

	raw := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0xFF, 0x00}
	archive := writeZip(t, map[string][]byte{"assets/logo.png": raw})

	result, err := classifier.Classify(ctx, archive, platform.AndroidJava, stage)
	require.NoError(t, err)
	require.Len(t, result.Preserve, 1)

	staged, err := os.ReadFile(result.Preserve[0].StagingPath)
	require.NoError(t, err)
	assert.Equal(t, raw, staged, "preserved bytes must round-trip exactly")
}

func TestClassifyPlatformExtensions(t *testing.T) {
	tests := []struct {
		name     string
		platform platform.Platform
		wantCode []string
	}{
		{
			name:     "android_java",
			platform: platform.AndroidJava,
			wantCode: []string{"Main.java", "view.xml"},
		},
		{
			name:     "android_kotlin",
			platform: platform.AndroidKotlin,
			wantCode: []string{"Main.kt", "view.xml"},
		},
		{
			name:     "ios_swift",
			platform: platform.IOSSwift,
			wantCode: []string{"Main.swift", "Main.storyboard", "View.xib"},
		},
	}

	entries := map[string][]byte{
		"Main.java":       []byte("class Main {}"),
		"Main.kt":         []byte("class Main"),
		"Main.swift":      []byte("struct Main {}"),
		"view.xml":        []byte("<view/>"),
		"Main.storyboard": []byte("<document/>"),
		"View.xib":        []byte("<document/>"),
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, classifier, stage := createTestEnv(t)

			result, err := classifier.Classify(ctx, writeZip(t, entries), tt.platform, stage)
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.wantCode, relPaths(result.Code))
		})
	}
}

func TestClassifyBinaryMasqueradingAsCode(t *testing.T) {
	ctx, classifier, stage := createTestEnv(t)

	archive := writeZip(t, map[string][]byte{
		"src/NotReally.java": {0x00, 0x01, 0x02, 0x03},
	})

	result, err := classifier.Classify(ctx, archive, platform.AndroidJava, stage)
	require.NoError(t, err)
	assert.Empty(t, result.Code)
	assert.Equal(t, []string{"src/NotReally.java"}, result.Errored)
}

func TestClassifyInvalidArchive(t *testing.T) {
	ctx, classifier, stage := createTestEnv(t)

	path := filepath.Join(t.TempDir(), "broken.zip")
	require.NoError(t, os.WriteFile(path, []byte("this is not a zip"), 0644))

	_, err := classifier.Classify(ctx, path, platform.AndroidJava, stage)
	require.Error(t, err)
	assert.ErrorIs(t, err, classify.ErrInvalidArchive)

	assert.Error(t, classify.ValidateArchive(path))
}

func TestClassifyTraversalEntry(t *testing.T) {
	ctx, classifier, stage := createTestEnv(t)

	archive := writeZip(t, map[string][]byte{
		"../escape.java": []byte("class Escape {}"),
		"ok/Fine.java":   []byte("class Fine {}"),
	})

	result, err := classifier.Classify(ctx, archive, platform.AndroidJava, stage)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"ok/Fine.java"}, relPaths(result.Code))
	assert.Equal(t, []string{"../escape.java"}, result.Errored)
}

func TestClassifyFile(t *testing.T) {
	ctx, classifier, stage := createTestEnv(t)

	src := filepath.Join(t.TempDir(), "MainActivity.java")
	require.NoError(t, os.WriteFile(src, []byte("public class MainActivity {}"), 0644))

	entry, err := classifier.ClassifyFile(ctx, src, "MainActivity.java", platform.AndroidJava, stage)
	require.NoError(t, err)
	assert.Equal(t, "MainActivity.java", entry.RelativePath)
	assert.FileExists(t, entry.StagingPath)

	// Wrong platform extension is rejected at the boundary
	_, err = classifier.ClassifyFile(ctx, src, "MainActivity.java", platform.IOSSwift, stage)
	require.Error(t, err)

	// Empty uploads are rejected
	empty := filepath.Join(t.TempDir(), "Empty.java")
	require.NoError(t, os.WriteFile(empty, nil, 0644))
	_, err = classifier.ClassifyFile(ctx, empty, "Empty.java", platform.AndroidJava, stage)
	require.Error(t, err)
}

func TestFilterEntries(t *testing.T) {
	entries := []classify.SourceEntry{
		{RelativePath: "src/Main.java"},
		{RelativePath: "res/strings.xml"},
		{RelativePath: "res/layout/activity_main.xml"},
		{RelativePath: "custom/layout_helper.java"},
	}

	tests := []struct {
		name string
		ct   platform.ConversionType
		want []string
	}{
		{
			name: "full_project",
			ct:   platform.FullProject,
			want: []string{"src/Main.java", "res/strings.xml", "res/layout/activity_main.xml", "custom/layout_helper.java"},
		},
		{
			name: "logic_only",
			ct:   platform.LogicOnly,
			want: []string{"src/Main.java", "custom/layout_helper.java"},
		},
		{
			name: "layouts_only",
			ct:   platform.LayoutsOnly,
			want: []string{"res/strings.xml", "res/layout/activity_main.xml", "custom/layout_helper.java"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify.FilterEntries(entries, tt.ct)
			assert.Equal(t, tt.want, relPaths(got))
		})
	}
}
